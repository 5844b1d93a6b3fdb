// SPDX-License-Identifier: MPL-2.0

package testrunner

import (
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

// Environment variables carrying Options into test binaries.
const (
	ConfigURIEnv = "PASTESETTINGS_CONFIG_URI"
	KeepDBEnv    = "PASTESETTINGS_KEEP_DB"
	NoDBEnv      = "PASTESETTINGS_NO_DB"
)

// Flag names registered by RegisterFlags.
const (
	ConfigURIFlag = "paste-config-uri"
	KeepDBFlag    = "keep-db"
	NoDBFlag      = "no-db"
)

// Options configures a Plugin.
type Options struct {
	// ConfigURI addresses the application to load. The plugin is enabled
	// only when it is set.
	ConfigURI string
	// KeepDB retains the test database between runs.
	KeepDB bool
	// NoDB skips database provisioning.
	NoDB bool
}

// RegisterFlags binds the plugin flags on fs to opts.
func RegisterFlags(fs *pflag.FlagSet, opts *Options) {
	fs.StringVar(&opts.ConfigURI, ConfigURIFlag, opts.ConfigURI,
		"load the application described by this PasteDeploy config URI before running the tests")
	fs.BoolVar(&opts.KeepDB, KeepDBFlag, opts.KeepDB, "keep the test database between runs")
	fs.BoolVar(&opts.NoDB, NoDBFlag, opts.NoDB, "do not set up a test database")
}

// OptionsFromEnv reads Options from the environment through getenv.
func OptionsFromEnv(getenv func(string) string) Options {
	return Options{
		ConfigURI: strings.TrimSpace(getenv(ConfigURIEnv)),
		KeepDB:    envBool(getenv(KeepDBEnv)),
		NoDB:      envBool(getenv(NoDBEnv)),
	}
}

// Environ returns the variables that make OptionsFromEnv reproduce o.
func (o Options) Environ() []string {
	return []string{
		ConfigURIEnv + "=" + o.ConfigURI,
		KeepDBEnv + "=" + strconv.FormatBool(o.KeepDB),
		NoDBEnv + "=" + strconv.FormatBool(o.NoDB),
	}
}

func envBool(s string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	return err == nil && b
}
