package identity

import "github.com/google/uuid"

// SessionHooks is told when a user's session opens and closes. The
// notification center implements it to create and drop toast queues.
type SessionHooks interface {
	Init(userID uuid.UUID) error
	Reset(userID uuid.UUID)
}

type noopSessionHooks struct{}

func (noopSessionHooks) Init(uuid.UUID) error { return nil }
func (noopSessionHooks) Reset(uuid.UUID)      {}
