package database

import (
	"fmt"

	"workbridge/internal/models"
)

func Migrate() error {
	err := DB.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.Bid{},
		&models.Contract{},
		&models.Attachment{},
		&models.ApprovalLog{},
		&models.Transaction{},
		&models.Ticket{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
