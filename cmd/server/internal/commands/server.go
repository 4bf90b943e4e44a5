package commands

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/cors"
	"github.com/taskplane/taskplane/internal/api"
	"github.com/taskplane/taskplane/internal/auth"
	"github.com/taskplane/taskplane/internal/logger"
	"github.com/taskplane/taskplane/internal/server"
	"github.com/taskplane/taskplane/internal/store"
	memorystore "github.com/taskplane/taskplane/internal/store/memory"
	postgresstore "github.com/taskplane/taskplane/internal/store/postgres"
)

type ServerCmd struct {
	Listen      string   `help:"HTTP server listen address" default:"localhost:8080" env:"TASKPLANE_LISTEN"`
	CORSOrigins []string `help:"allowed CORS origins for API requests" default:"http://localhost:4200" env:"TASKPLANE_CORS_ORIGINS"`

	JWTSecret string `help:"secret used to verify HS256 access tokens" env:"TASKPLANE_JWT_SECRET"`

	StoreType     string             `help:"store type (memory or postgres)" default:"memory" env:"TASKPLANE_STORE_TYPE" enum:"memory,postgres"`
	PostgresStore PostgresStoreFlags `embed:"" prefix:"postgres-"`
}

type PostgresStoreFlags struct {
	ConnString string `help:"PostgreSQL connection string" env:"POSTGRES_CONNECTION_STRING"`

	MaxConns        int32 `help:"maximum number of connections in pool" default:"20"`
	MinConns        int32 `help:"minimum number of connections in pool" default:"5"`
	MaxConnLifetime int32 `help:"maximum connection lifetime in seconds" default:"3600"`
	MaxConnIdleTime int32 `help:"maximum connection idle time in seconds" default:"1800"`

	AutoMigrate bool `help:"run database migrations on startup" default:"false" env:"TASKPLANE_POSTGRES_AUTO_MIGRATE"`
}

func (s *PostgresStoreFlags) validate() error {
	if s.ConnString == "" {
		return errors.New("PostgreSQL connection string is required (--postgres-conn-string or POSTGRES_CONNECTION_STRING)")
	}
	return nil
}

// connect dials the database with exponential backoff so the server
// tolerates a database that comes up slightly after it does.
func (s *PostgresStoreFlags) connect(ctx context.Context) (*pgxpool.Pool, error) {
	cfg := &postgresstore.PoolConfig{
		ConnString:      s.ConnString,
		MaxConns:        s.MaxConns,
		MinConns:        s.MinConns,
		MaxConnLifetime: s.MaxConnLifetime,
		MaxConnIdleTime: s.MaxConnIdleTime,
	}

	return backoff.Retry(ctx, func() (*pgxpool.Pool, error) {
		return postgresstore.NewPool(ctx, cfg)
	}, backoff.WithBackOff(backoff.NewExponentialBackOff()), backoff.WithMaxTries(5))
}

func (c *ServerCmd) Run(globals *Globals) error {
	log := logger.Setup(globals.Debug)
	ctx := context.Background()

	log.Info().Str("version", globals.Version).Bool("debug", globals.Debug).Msg("Starting server")

	if len(c.JWTSecret) < 32 {
		return errors.New("JWT secret must be at least 32 bytes (--jwt-secret or TASKPLANE_JWT_SECRET)")
	}

	var (
		orgStore   store.OrganizationStore
		taskStore  store.TaskStore
		auditStore store.AuditStore
	)

	switch c.StoreType {
	case "postgres":
		if err := c.PostgresStore.validate(); err != nil {
			return err
		}

		pool, err := c.PostgresStore.connect(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		if c.PostgresStore.AutoMigrate {
			if err := postgresstore.Migrate(ctx, pool); err != nil {
				return err
			}
		}

		orgStore = postgresstore.NewOrganizationStore(pool)
		taskStore = postgresstore.NewTaskStore(pool)
		auditStore = postgresstore.NewAuditStore(pool)

		log.Info().Msg("Using PostgreSQL store")
	default:
		orgStore = memorystore.NewOrganizationStore()
		taskStore = memorystore.NewTaskStore()
		auditStore = memorystore.NewAuditStore()

		log.Warn().Msg("Using in-memory store, data is lost on restart")
	}

	router := api.NewRouter(api.Config{
		Tasks:    server.NewTaskService(taskStore, orgStore),
		Audits:   server.NewAuditService(auditStore, orgStore),
		Verifier: auth.NewVerifier([]byte(c.JWTSecret)),
	})

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: c.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	})

	handler := corsHandler.Handler(logger.AccessLog(log)(router))
	srv := configureHTTPServer(c.Listen, handler)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("listen", c.Listen).Msg("Listening for HTTP connections")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Info().Msg("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	}
}
