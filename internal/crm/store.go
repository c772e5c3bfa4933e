package crm

import (
	"database/sql"
)

// Store provides database operations for CRM entities
type Store struct {
	db *sql.DB
}

// NewStore creates a new CRM store
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying handle for collaborators that need raw access
// (advisory locks, health checks).
func (s *Store) DB() *sql.DB {
	return s.db
}
