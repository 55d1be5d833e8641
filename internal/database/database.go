package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"workbridge/internal/config"
)

var DB *gorm.DB

func Connect(cfg config.DBConfig) error {
	dsn := cfg.DSN()
	if dsn == "" {
		return fmt.Errorf("database configuration not provided: set DATABASE_URL or DB_HOST, DB_USER, DB_PASSWORD, DB_NAME and DB_PORT")
	}

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	return nil
}

func Close() error {
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
