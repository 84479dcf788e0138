// Package signposts implements the signpost reference domain: the tracked
// progress milestones that evidence links point at, grouped into categories
// used by the mapper's load-balancing tie-break.
package signposts

// Signpost is a tracked, measurable progress milestone.
type Signpost struct {
	Code     string `json:"code"`
	Title    string `json:"title"`
	Category string `json:"category"`
}
