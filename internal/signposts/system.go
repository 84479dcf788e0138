package signposts

import "context"

// System defines the public contract for signpost reference operations.
type System interface {
	Handler() *Handler

	List(ctx context.Context) ([]Signpost, error)
	Find(ctx context.Context, code string) (*Signpost, error)
	// Codes returns all signpost codes, sorted.
	Codes(ctx context.Context) ([]string, error)
	// CategoryLoads returns, per signpost code, the number of approved or
	// auto-approved links across the signpost's whole category. The mapper
	// uses it to break confidence ties toward less-evidenced categories.
	CategoryLoads(ctx context.Context) (map[string]int, error)
}
