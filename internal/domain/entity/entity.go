package entity

import "github.com/google/uuid"

// Entity carries the opaque identity shared by every aggregate.
// Two entities are equal iff their OIDs are equal.
type Entity struct {
	OID string
}

func newEntity() Entity { return Entity{OID: uuid.NewString()} }

func (e Entity) Equal(other Entity) bool { return e.OID == other.OID }
