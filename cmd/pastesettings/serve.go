// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/pastesettings/pastesettings/pkg/settings"

	"github.com/spf13/cobra"
)

const (
	defaultServeAddr  = "127.0.0.1:8080"
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
)

func newServeCommand(app *App) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve <config-uri>",
		Short: "Load an application and serve it over HTTP",
		Long: `Serve applies the settings of an application to its settings module,
builds the application with the factory named by its "use" key and serves
it until interrupted. Descriptors without a registered factory get the
built-in settings inspector.

` + SubtitleStyle.Render("Examples:") + `
  pastesettings serve config:development.ini
  pastesettings serve development.ini#api --addr :9000`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.fail(app.runServe(cmd.Context(), args[0], addr))
		},
	}

	cmd.Flags().StringVar(&addr, "addr", defaultServeAddr, "address to listen on")
	return cmd
}

func (a *App) runServe(ctx context.Context, rawURI, addr string) error {
	loader := a.newLoader(settings.WithMarker(settings.EnvMarker()))

	handler, err := loader.LoadApp(rawURI)
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	if active := loader.Resolver().Active(); active != nil {
		a.logger.Info("settings applied", "settings_module", active.SettingsModule, "options", len(active.Options))
	}
	return a.serve(ctx, ln, handler)
}

// serve runs handler on ln until ctx is done, then shuts down gracefully.
func (a *App) serve(ctx context.Context, ln net.Listener, handler http.Handler) error {
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	a.logger.Info("serving", "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	a.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shut down server: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
