package db

import (
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmehdipour/contact-gateway/internal/config"
	"github.com/jmoiron/sqlx"
)

// NewMySQLConnection opens the pool holding the runs audit table and the
// outbox. The DSN needs parseTime=true for created_at scans.
func NewMySQLConnection(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	return open("mysql", cfg, 5*time.Second)
}
