// Package integration runs the back office against a real PostgreSQL started
// with testcontainers.
package integration

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap/zaptest"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/autobargain/backend/internal/domain/trade"
	"github.com/autobargain/backend/internal/infrastructure/migration"
	"github.com/autobargain/backend/internal/infrastructure/persistence"
	"github.com/autobargain/backend/migrations"
)

// TestDB is a migrated database in its own container
type TestDB struct {
	DB        *gorm.DB
	SqlDB     *sql.DB
	Container testcontainers.Container
	DSN       string
	t         *testing.T
}

// NewTestDB starts PostgreSQL and applies the embedded migrations
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("bargain_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "Failed to get connection string")

	db, sqlDB := connectToDatabase(t, dsn)
	runMigrations(t, sqlDB)

	tdb := &TestDB{DB: db, SqlDB: sqlDB, Container: container, DSN: dsn, t: t}
	t.Cleanup(tdb.Close)
	return tdb
}

// Close closes the connection and terminates the container
func (tdb *TestDB) Close() {
	if tdb.SqlDB != nil {
		tdb.SqlDB.Close()
	}
	if tdb.Container != nil {
		if err := tdb.Container.Terminate(context.Background()); err != nil {
			tdb.t.Logf("Warning: Failed to terminate container: %v", err)
		}
	}
}

func connectToDatabase(t *testing.T, dsn string) (*gorm.DB, *sql.DB) {
	t.Helper()

	gormConfig := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}
	if os.Getenv("TEST_DB_DEBUG") != "" {
		gormConfig.Logger = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(gormpostgres.Open(dsn), gormConfig)
	require.NoError(t, err, "Failed to connect to database")

	sqlDB, err := db.DB()
	require.NoError(t, err, "Failed to get underlying SQL DB")
	sqlDB.SetMaxOpenConns(5)
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	return db, sqlDB
}

func runMigrations(t *testing.T, sqlDB *sql.DB) {
	t.Helper()

	m, err := migration.NewFromFS(sqlDB, migrations.FS, zaptest.NewLogger(t))
	require.NoError(t, err, "Failed to create migrator")
	require.NoError(t, m.Up(), "Failed to run migrations")

	version, dirty, err := m.Version()
	require.NoError(t, err)
	require.False(t, dirty)
	require.NotZero(t, version)
}

// CreateBargain stores a bargain; customers, vehicles and transactions
// reference it by foreign key
func (tdb *TestDB) CreateBargain(name string) *trade.Bargain {
	tdb.t.Helper()
	bargain, err := trade.NewBargain(name, "Owner", "0300-1234567")
	require.NoError(tdb.t, err)
	require.NoError(tdb.t, persistence.NewGormBargainRepository(tdb.DB).Save(context.Background(), bargain))
	return bargain
}

// CreateCustomer stores a customer of the bargain
func (tdb *TestDB) CreateCustomer(bargain *trade.Bargain, name string, customerType trade.CustomerType) *trade.Customer {
	tdb.t.Helper()
	customer, err := trade.NewCustomer(bargain.ID, name, "0321-7654321", customerType)
	require.NoError(tdb.t, err)
	require.NoError(tdb.t, persistence.NewGormCustomerRepository(tdb.DB).Save(context.Background(), customer))
	return customer
}

// CreateVehicle stores an available vehicle of the bargain
func (tdb *TestDB) CreateVehicle(bargain *trade.Bargain, registration string) *trade.Vehicle {
	tdb.t.Helper()
	vehicle, err := trade.NewVehicle(bargain.ID, "Toyota", "Corolla", 2021, registration)
	require.NoError(tdb.t, err)
	require.NoError(tdb.t, persistence.NewGormVehicleRepository(tdb.DB).Save(context.Background(), vehicle))
	return vehicle
}
