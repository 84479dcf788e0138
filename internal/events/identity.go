package events

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"time"

	"github.com/lodestar-watch/lodestar/internal/registry"
)

// NewIdentityKey derives the deduplication key for a piece of evidence:
// a SHA-256 over the normalized title, the source URL host, and the
// publication day truncated to UTC. Two feeds carrying the same story from
// the same host on the same day collapse to one event; the same story
// syndicated by a different host does not.
func NewIdentityKey(title, sourceURL string, publishedAt time.Time) string {
	host := ""
	if u, err := url.Parse(sourceURL); err == nil {
		host = u.Hostname()
	}

	day := publishedAt.UTC().Format("2006-01-02")
	payload := fmt.Sprintf("%s|%s|%s", registry.Normalize(title), host, day)

	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}
