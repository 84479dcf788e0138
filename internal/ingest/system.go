package ingest

import (
	"context"

	"github.com/google/uuid"

	"github.com/lodestar-watch/lodestar/pkg/pagination"
)

// RunStore defines the persistence contract for ingest run records.
// The pipeline writes them; the HTTP surface reads them.
type RunStore interface {
	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[IngestRun], error)

	Find(ctx context.Context, id uuid.UUID) (*IngestRun, error)

	// Begin records the start of a connector run in the running state.
	Begin(ctx context.Context, connector string) (*IngestRun, error)

	// Finish records a run's terminal status and final counters.
	// An empty errMsg stores NULL.
	Finish(ctx context.Context, id uuid.UUID, status RunStatus, counts Counts, errMsg string) (*IngestRun, error)
}
