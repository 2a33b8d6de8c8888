package testhelpers

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver for database/sql (migrations)
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/ekaya-inc/aria-engine/pkg/adapters/datasource"
	"github.com/ekaya-inc/aria-engine/pkg/demo"
)

// WarehouseImage is the stock PostgreSQL image the demo warehouse runs on.
const WarehouseImage = "postgres:16-alpine"

// TestDB holds a shared warehouse container seeded with the retail demo data.
type TestDB struct {
	Container testcontainers.Container
	Pool      *pgxpool.Pool
	ConnStr   string

	Host     string
	Port     int
	User     string
	Password string
	Database string
}

// ConfigMap returns the datasource config for the container, in the shape
// the adapter factories accept.
func (db *TestDB) ConfigMap() map[string]any {
	return map[string]any{
		"host":     db.Host,
		"port":     db.Port,
		"user":     db.User,
		"password": db.Password,
		"database": db.Database,
		"ssl_mode": "disable",
	}
}

var (
	sharedWarehouseDB     *TestDB
	sharedWarehouseDBOnce sync.Once
	sharedWarehouseDBErr  error
)

// GetWarehouseDB returns a shared PostgreSQL container for integration tests.
// The container is created once and reused across all tests in the run.
// The retail schema is migrated and seeded before first use.
func GetWarehouseDB(t *testing.T) *TestDB {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode (requires Docker)")
	}

	sharedWarehouseDBOnce.Do(func() {
		sharedWarehouseDB, sharedWarehouseDBErr = setupWarehouseDB()
	})

	if sharedWarehouseDBErr != nil {
		t.Fatalf("Failed to setup warehouse database: %v", sharedWarehouseDBErr)
	}

	return sharedWarehouseDB
}

func setupWarehouseDB() (*TestDB, error) {
	ctx := context.Background()

	const (
		user     = "aria"
		password = "test_password"
		database = "retail"
	)

	req := testcontainers.ContainerRequest{
		Image:        WarehouseImage,
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       database,
			"POSTGRES_USER":     user,
			"POSTGRES_PASSWORD": password,
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start test container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return nil, fmt.Errorf("failed to get container port: %w", err)
	}

	connStr := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		user, password, host, port.Port(), database)

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Verify connection with retry
	for i := 0; i < 10; i++ {
		if err := pool.Ping(ctx); err == nil {
			break
		}
		time.Sleep(500 * time.Millisecond)
	}

	// Run migrations using database/sql (required by golang-migrate)
	sqlDB, err := sql.Open("pgx", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open sql connection: %w", err)
	}
	defer sqlDB.Close()

	if err := demo.Migrate(sqlDB, zap.NewNop()); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	if _, err := demo.Seed(ctx, sqlWarehouse{sqlDB}, zap.NewNop()); err != nil {
		return nil, fmt.Errorf("failed to seed demo data: %w", err)
	}

	return &TestDB{
		Container: container,
		Pool:      pool,
		ConnStr:   connStr,
		Host:      host,
		Port:      port.Int(),
		User:      user,
		Password:  password,
		Database:  database,
	}, nil
}

// sqlWarehouse seeds through database/sql so this package does not depend on
// the adapters whose tests use it.
type sqlWarehouse struct {
	db *sql.DB
}

func (w sqlWarehouse) Query(ctx context.Context, q string, limit int) (*datasource.QueryExecutionResult, error) {
	return datasource.QueryDB(ctx, w.db, q, limit)
}

func (w sqlWarehouse) Execute(ctx context.Context, stmt string) (*datasource.ExecuteResult, error) {
	return datasource.ExecDB(ctx, w.db, stmt)
}
