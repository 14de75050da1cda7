package domain

import "github.com/google/uuid"

// ActorType classifies the principal responsible for an event.
type ActorType string

const (
	ActorUser      ActorType = "user"
	ActorSystem    ActorType = "system"
	ActorAPI       ActorType = "api"
	ActorWebhook   ActorType = "webhook"
	ActorScheduler ActorType = "scheduler"
)

func (t ActorType) Valid() bool {
	switch t {
	case ActorUser, ActorSystem, ActorAPI, ActorWebhook, ActorScheduler:
		return true
	}
	return false
}

// Actor identifies the principal behind a ledger record. ID and Email are
// only set for user actors; both are snapshots, not foreign keys.
type Actor struct {
	Type  ActorType
	ID    *uuid.UUID
	Email string
}
