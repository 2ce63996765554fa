// Package infra wires external infrastructure: the database connection and
// schema migration.
package infra

import (
	infraaccount "github.com/amirasaad/pinbank/infra/repository/account"
	infratransaction "github.com/amirasaad/pinbank/infra/repository/transaction"
	"github.com/amirasaad/pinbank/pkg/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewDBConnection opens the configured Postgres database and migrates the
// schema.
func NewDBConnection(cfg *config.DB) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.Url), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&infraaccount.Account{}, &infratransaction.Transaction{}); err != nil {
		return nil, err
	}
	return db, nil
}
