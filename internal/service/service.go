package service

import (
	"context"
	"time"

	vending "vending_control"

	"vending_control/internal/repository"
)

type Authorization interface {
	SignUp(username, password string) (int, error)
	GenerateToken(username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Monitoring exposes the read-only machine view for the HTTP surface.
// The controller pushes snapshots; readers never touch the machine.
type Monitoring interface {
	Status() vending.MachineSnapshot
}

// EventLog exposes the append-only audit trail with filtering access.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]vending.MachineEvent, error)
}

// Service aggregates all sub-services.
type Service struct {
	Monitoring
	EventLog
	Authorization
}

// NewService wires the repository layer and the snapshot store into
// concrete services. The snapshot store is shared with the controller,
// which writes into it after every state change.
func NewService(repos *repository.Repository, store *SnapshotStore, signingKey string, tokenTTL time.Duration) *Service {
	return &Service{
		Monitoring:    store,
		EventLog:      NewEventLogService(repos.EventRepo),
		Authorization: NewAuthService(repos.Auth, signingKey, tokenTTL),
	}
}
