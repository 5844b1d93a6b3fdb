// SPDX-License-Identifier: MPL-2.0

package testdb

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"

	"github.com/docker/go-connections/nat"
	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	postgresDriver = "postgres"
	postgresPort   = nat.Port("5432/tcp")
)

// terminator is the part of a testcontainers.Container used to clean up.
type terminator interface {
	Terminate(ctx context.Context, opts ...testcontainers.TerminateOption) error
}

// abortStart terminates a container that started but cannot be used, and
// joins any cleanup failure to cause.
func abortStart(ctx context.Context, c terminator, cause error) error {
	if err := c.Terminate(ctx); err != nil {
		return errors.Join(cause, fmt.Errorf("terminate postgres test database: %w", err))
	}
	return cause
}

// Postgres provisions databases in a Postgres container.
type Postgres struct {
	opts Options
}

// ContainerName returns the name used for kept containers.
func (p *Postgres) ContainerName() string {
	return "pastesettings-testdb-" + p.opts.Name
}

// Setup starts the container and waits until it accepts SQL connections.
// Kept databases reuse the container named ContainerName.
func (p *Postgres) Setup(ctx context.Context) (*Database, error) {
	req := testcontainers.ContainerRequest{
		Image:        p.opts.Image,
		ExposedPorts: []string{string(postgresPort)},
		Env: map[string]string{
			"POSTGRES_DB":       p.opts.Name,
			"POSTGRES_USER":     p.opts.User,
			"POSTGRES_PASSWORD": p.opts.Password,
		},
		WaitingFor: wait.ForSQL(postgresPort, postgresDriver, func(host string, port nat.Port) string {
			return p.dsn(host, port.Port())
		}).WithStartupTimeout(p.opts.StartupTimeout),
	}
	if p.opts.Password == "" {
		req.Env["POSTGRES_HOST_AUTH_METHOD"] = "trust"
	}
	if p.opts.Keep {
		req.Name = p.ContainerName()
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
		Reuse:            p.opts.Keep,
	})
	if err != nil {
		return nil, fmt.Errorf("start postgres test database: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, abortStart(ctx, container, fmt.Errorf("postgres test database host: %w", err))
	}
	port, err := container.MappedPort(ctx, postgresPort)
	if err != nil {
		return nil, abortStart(ctx, container, fmt.Errorf("postgres test database port: %w", err))
	}

	db := &Database{
		Engine: EnginePostgres,
		Name:   p.opts.Name,
		Driver: postgresDriver,
		DSN:    p.dsn(host, port.Port()),
		Kept:   p.opts.Keep,
		cleanup: func(ctx context.Context) error {
			return container.Terminate(ctx)
		},
	}

	p.opts.Logger.Info("test database ready", "engine", db.Engine, "container", container.GetContainerID(), "address", net.JoinHostPort(host, port.Port()))
	return db, nil
}

// Teardown terminates the container unless the database is kept.
func (p *Postgres) Teardown(ctx context.Context, db *Database) error {
	return teardown(ctx, db, p.opts.Logger)
}

func (p *Postgres) dsn(host, port string) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(p.opts.User, p.opts.Password),
		Host:     net.JoinHostPort(host, port),
		Path:     "/" + p.opts.Name,
		RawQuery: "sslmode=disable",
	}
	if p.opts.Password == "" {
		u.User = url.User(p.opts.User)
	}
	return u.String()
}
