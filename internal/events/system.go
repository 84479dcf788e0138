package events

import (
	"context"

	"github.com/google/uuid"

	"github.com/lodestar-watch/lodestar/internal/links"
	"github.com/lodestar-watch/lodestar/pkg/pagination"
)

// System defines the public contract for event domain operations.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Event], error)

	Find(ctx context.Context, id uuid.UUID) (*Event, error)

	// FindByIdentityKey looks up an event by its deduplication key.
	// Used by the ingest pipeline to detect repeats before inserting.
	FindByIdentityKey(ctx context.Context, key string) (*Event, error)

	Create(ctx context.Context, cmd CreateCommand) (*Event, error)

	// Retract marks the event retracted and cascades to its live links,
	// delegating the link transitions to the link system so every retraction
	// lands in the moderation changelog.
	Retract(ctx context.Context, id uuid.UUID, cmd RetractCommand) ([]links.ModerationResult, error)
}
