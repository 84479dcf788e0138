package links

import (
	"context"

	"github.com/google/uuid"

	"github.com/lodestar-watch/lodestar/pkg/pagination"
)

// System defines the public contract for link domain operations.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Link], error)

	Find(ctx context.Context, id uuid.UUID) (*Link, error)
	ListForEvent(ctx context.Context, eventID uuid.UUID) ([]Link, error)
	ListChangelog(ctx context.Context, linkID uuid.UUID) ([]ChangelogEntry, error)

	// Create persists a candidate link in its initial disposition and
	// appends the system-actor changelog entry in the same transaction.
	Create(ctx context.Context, cmd CreateCommand) (*Link, error)

	// Approve transitions needs_review → approved.
	Approve(ctx context.Context, id uuid.UUID, cmd ModerationCommand) (*ModerationResult, error)
	// Reject transitions needs_review → rejected. Reason is mandatory.
	Reject(ctx context.Context, id uuid.UUID, cmd ModerationCommand) (*ModerationResult, error)
	// Retract transitions a live link → retracted. Reason is mandatory.
	Retract(ctx context.Context, id uuid.UUID, cmd ModerationCommand) (*ModerationResult, error)

	// RetractEvent marks the event retracted and retracts each of its live
	// links atomically, one changelog entry per link.
	RetractEvent(ctx context.Context, eventID uuid.UUID, actor, reason string) ([]ModerationResult, error)
}
