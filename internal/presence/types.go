// Package presence resolves where users currently are on the site. Individual
// lookups are coalesced into throttled bulk calls through the batching
// package: at most one call in flight, 100 users per call, 10 seconds apart.
package presence

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrLookupFailed is returned to every request of a batch whose bulk call
// failed at the transport level or answered with a non-2xx status.
var ErrLookupFailed = errors.New("failed to load user presence")

// ErrInvalidUserID is returned for user IDs that cannot exist.
var ErrInvalidUserID = errors.New("invalid user id")

// PresenceType is the coarse state of a user.
type PresenceType int

const (
	Offline PresenceType = iota
	Online
	Experience
	Studio
)

var presenceTypeNames = map[PresenceType]string{
	Offline:    "Offline",
	Online:     "Online",
	Experience: "Experience",
	Studio:     "Studio",
}

func (t PresenceType) String() string {
	if name, ok := presenceTypeNames[t]; ok {
		return name
	}
	return presenceTypeNames[Offline]
}

// MarshalText encodes the type by name so API responses stay readable.
func (t PresenceType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText accepts the names produced by MarshalText, case-insensitively.
func (t *PresenceType) UnmarshalText(text []byte) error {
	for value, name := range presenceTypeNames {
		if strings.EqualFold(name, string(text)) {
			*t = value
			return nil
		}
	}
	return fmt.Errorf("unknown presence type %q", text)
}

// typeFromWire maps the site's numeric userPresenceType. Unknown values are
// treated as Offline.
func typeFromWire(v int) PresenceType {
	switch v {
	case 1:
		return Online
	case 2:
		return Experience
	case 3:
		return Studio
	default:
		return Offline
	}
}

// Location is the place a user is playing or editing.
type Location struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// UserPresence is the resolved presence of one user. Location is only set
// for Experience and Studio when the site disclosed the place.
type UserPresence struct {
	Type     PresenceType `json:"type"`
	Location *Location    `json:"location,omitempty"`
}

var studioPrefix = regexp.MustCompile(`^Studio\s+-\s*`)

// locationName strips the "Studio - " prefix the site puts in front of
// places opened in Studio.
func locationName(t PresenceType, name string) string {
	if name == "" {
		return ""
	}
	if t == Studio {
		return studioPrefix.ReplaceAllString(name, "")
	}
	return name
}
