package shared

import "github.com/google/uuid"

// AggregateRoot is an entity that carries an optimistic lock version and
// queues the events it raises until the application layer publishes them.
type AggregateRoot interface {
	Entity
	GetVersion() int
	IncrementVersion()
	AddDomainEvent(event DomainEvent)
	GetDomainEvents() []DomainEvent
	ClearDomainEvents()
}

type BaseAggregateRoot struct {
	BaseEntity
	Version int
	// stored is the version last read from or written to storage, zero for
	// an aggregate that was never persisted.
	stored  int
	pending []DomainEvent
}

// NewBaseAggregateRoot starts at version 1 with nothing pending
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: NewBaseEntity(), Version: 1}
}

// RestoreAggregateRoot rebuilds a root loaded from storage at version.
func RestoreAggregateRoot(entity BaseEntity, version int) BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: entity, Version: version, stored: version}
}

// StoredVersion is the version the stored row is expected to carry.
func (a *BaseAggregateRoot) StoredVersion() int { return a.stored }

// MarkStored records that the current version has been written.
func (a *BaseAggregateRoot) MarkStored() { a.stored = a.Version }

func (a *BaseAggregateRoot) GetVersion() int                  { return a.Version }
func (a *BaseAggregateRoot) IncrementVersion()                { a.Version++ }
func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) { a.pending = append(a.pending, event) }
func (a *BaseAggregateRoot) GetDomainEvents() []DomainEvent   { return a.pending }
func (a *BaseAggregateRoot) ClearDomainEvents()               { a.pending = nil }

// Bump marks a state change: the version moves on, UpdatedAt is refreshed
// and events are queued in order.
func (a *BaseAggregateRoot) Bump(events ...DomainEvent) {
	a.Version++
	a.Touch()
	a.pending = append(a.pending, events...)
}

// OwnedAggregateRoot is created on behalf of a staff user. Non-admin users
// only see what they own.
type OwnedAggregateRoot struct {
	BaseAggregateRoot
	CreatedBy uuid.UUID
}

func NewOwnedAggregateRoot(createdBy uuid.UUID) OwnedAggregateRoot {
	return OwnedAggregateRoot{BaseAggregateRoot: NewBaseAggregateRoot(), CreatedBy: createdBy}
}

func (o *OwnedAggregateRoot) IsOwnedBy(userID uuid.UUID) bool { return o.CreatedBy == userID }
