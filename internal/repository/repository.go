package repository

import (
	"context"
	"database/sql"
	"time"

	vending "vending_control"
	"vending_control/internal/repository/db"
)

// InitDB opens the SQLite database and ensures the schema exists.
func InitDB(path string) (*sql.DB, error) {
	return db.InitDB(path)
}

type Authorization interface {
	Create(username, hash string) (int, error)
	GetByUsername(username string) (*vending.User, error)
}

// EventRepo is the append-only audit log of machine activity.
type EventRepo interface {
	Append(ctx context.Context, e vending.MachineEvent) error
	List(ctx context.Context, from, to time.Time, typ string) ([]vending.MachineEvent, error)
}

type Repository struct {
	EventRepo EventRepo
	Auth      Authorization
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		EventRepo: NewEventSQLite(db),
		Auth:      NewUserRepository(db),
	}
}
