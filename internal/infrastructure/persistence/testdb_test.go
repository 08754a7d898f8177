package persistence

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/autobargain/backend/internal/infrastructure/persistence/models"
)

// setupTestDB creates an in-memory SQLite database with every table migrated
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.BargainModel{},
		&models.CustomerModel{},
		&models.VehicleModel{},
		&models.TransactionModel{},
		&models.CommissionModel{},
		&models.CommissionSettingsModel{},
		&models.CommissionOverrideModel{},
		&models.InstallmentModel{},
		&models.PaymentModel{},
		&models.SubscriptionModel{},
	))
	return db
}
