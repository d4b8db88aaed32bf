package factory

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	psqlmod "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/example/container-harness/container"
)

const (
	DefaultPostgresImage = "docker.io/postgres:16-alpine"
	postgresPort         = "5432"
)

// PostgresSource declares a Postgres container.
type PostgresSource struct {
	Name     string
	Image    string
	Database string
	Username string
	Password string
	// InitScripts are copied into /docker-entrypoint-initdb.d.
	InitScripts []string
	// ReadyTimeout bounds the connection check after start.
	ReadyTimeout time.Duration
}

func (s PostgresSource) withDefaults() PostgresSource {
	if s.Image == "" {
		s.Image = DefaultPostgresImage
	}
	if s.Database == "" {
		s.Database = "test"
	}
	if s.Username == "" {
		s.Username = "test"
	}
	if s.Password == "" {
		s.Password = "test"
	}
	if s.ReadyTimeout <= 0 {
		s.ReadyTimeout = 30 * time.Second
	}
	return s
}

// DSN renders a connection string for the given host and port.
func (s PostgresSource) DSN(host, port string) string {
	s = s.withDefaults()
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", s.Username, s.Password, host, port, s.Database)
}

// PostgresFactory creates a Postgres container using the testcontainers postgres
// module options and checks readiness with a real connection.
type PostgresFactory struct {
	container.Configurable[PostgresSource]
}

func (f *PostgresFactory) ContainerName() (string, error) {
	src, err := f.Source()
	if err != nil {
		return "", err
	}
	return src.Name, nil
}

func (f *PostgresFactory) CreateContainer(ctx context.Context) (container.Container, error) {
	req, err := f.request()
	if err != nil {
		return nil, err
	}
	return create(ctx, req)
}

func (f *PostgresFactory) request() (testcontainers.GenericContainerRequest, error) {
	src, err := f.Source()
	if err != nil {
		return testcontainers.GenericContainerRequest{}, err
	}
	src = src.withDefaults()
	req := testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        src.Image,
			ExposedPorts: []string{postgresPort + "/tcp"},
			Env:          map[string]string{},
			Cmd:          []string{"postgres", "-c", "fsync=off"},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		},
		Started: false,
	}
	opts := []testcontainers.ContainerCustomizer{
		psqlmod.WithDatabase(src.Database),
		psqlmod.WithUsername(src.Username),
		psqlmod.WithPassword(src.Password),
	}
	if len(src.InitScripts) > 0 {
		opts = append(opts, psqlmod.WithInitScripts(src.InitScripts...))
	}
	for _, opt := range opts {
		if err := opt.Customize(&req); err != nil {
			return req, fmt.Errorf("customize postgres request: %w", err)
		}
	}
	return req, nil
}

// WaitReady connects with pgx and runs SELECT 1 until it succeeds.
func (f *PostgresFactory) WaitReady(ctx context.Context, c container.Container) error {
	src, err := f.Source()
	if err != nil {
		return err
	}
	src = src.withDefaults()
	host, port, err := mappedAddr(ctx, c, postgresPort)
	if err != nil {
		return err
	}
	dsn := src.DSN(host, port)
	return poll(ctx, src.ReadyTimeout, func(ctx context.Context) error {
		pool, err := pgxpool.New(ctx, dsn)
		if err != nil {
			return err
		}
		defer pool.Close()
		var one int
		if err := pool.QueryRow(ctx, "SELECT 1").Scan(&one); err != nil {
			return err
		}
		if one != 1 {
			return fmt.Errorf("unexpected probe result %d", one)
		}
		return nil
	})
}

// Postgres declares a Postgres container.
func Postgres(src PostgresSource) container.Declaration {
	return container.Declaration{
		New:    func() container.Factory { return &PostgresFactory{} },
		Source: src,
	}
}
