// Package signedlink reads the expiry metadata a V4 storage signer
// embeds in its URLs, so clients can decide locally whether a link is
// still usable without a server round-trip.
package signedlink

import (
	"net/url"
	"strconv"
	"time"
)

const (
	dateParam    = "X-Goog-Date"
	expiresParam = "X-Goog-Expires"

	// Compact UTC timestamp used by the signer, e.g. 20250405T120000Z.
	dateLayout = "20060102T150405Z"
)

// Metadata is the typed expiry information carried by a signed link.
type Metadata struct {
	IssuedAt time.Time
	Validity time.Duration
}

// Deadline is the instant after which the link no longer authorizes
// access.
func (m Metadata) Deadline() time.Time {
	return m.IssuedAt.Add(m.Validity)
}

// Parse extracts the issuance timestamp and validity duration from a
// signed link's query parameters. ok is false when the link carries no
// usable expiry metadata; such links must be treated as already
// expired.
func Parse(link string) (Metadata, bool) {
	u, err := url.Parse(link)
	if err != nil {
		return Metadata{}, false
	}

	values := u.Query()
	rawDate := values.Get(dateParam)
	rawExpires := values.Get(expiresParam)
	if rawDate == "" || rawExpires == "" {
		return Metadata{}, false
	}

	issuedAt, err := time.Parse(dateLayout, rawDate)
	if err != nil {
		return Metadata{}, false
	}

	seconds, err := strconv.Atoi(rawExpires)
	if err != nil || seconds <= 0 {
		return Metadata{}, false
	}

	return Metadata{
		IssuedAt: issuedAt,
		Validity: time.Duration(seconds) * time.Second,
	}, true
}

// Expired reports whether the link's authorization window has elapsed
// at the given instant. Links without parseable metadata are always
// expired: the fail-safe direction is a redundant re-fetch, never
// serving bytes through a dead link.
func Expired(link string, now time.Time) bool {
	meta, ok := Parse(link)
	if !ok {
		return true
	}
	return now.After(meta.Deadline())
}
