// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package ids generates and parses the ULID-based identifiers used for
// ContentVersionID and PlaysetID.
package ids

import (
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	entropy     = ulid.Monotonic(rand.Reader, 0)
	entropyLock sync.Mutex
)

// ContentVersionID identifies a sealed, content-addressed snapshot of a
// single mod source at a point in time.
type ContentVersionID struct{ ulid.ULID }

// PlaysetID identifies an ordered collection of content versions.
type PlaysetID struct{ ulid.ULID }

// NewContentVersionID generates a new, time-sortable ContentVersionID.
func NewContentVersionID() ContentVersionID {
	return ContentVersionID{newULID()}
}

// NewPlaysetID generates a new, time-sortable PlaysetID.
func NewPlaysetID() PlaysetID {
	return PlaysetID{newULID()}
}

func newULID() ulid.ULID {
	entropyLock.Lock()
	defer entropyLock.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy)
}

// ParseContentVersionID parses a ContentVersionID from its string form.
func ParseContentVersionID(s string) (ContentVersionID, error) {
	id, err := ulid.Parse(s)
	if err != nil {
		return ContentVersionID{}, fmt.Errorf("invalid content version id %q: %w", s, err)
	}
	return ContentVersionID{id}, nil
}

// ParsePlaysetID parses a PlaysetID from its string form.
func ParsePlaysetID(s string) (PlaysetID, error) {
	id, err := ulid.Parse(s)
	if err != nil {
		return PlaysetID{}, fmt.Errorf("invalid playset id %q: %w", s, err)
	}
	return PlaysetID{id}, nil
}

func (id ContentVersionID) String() string { return id.ULID.String() }
func (id PlaysetID) String() string        { return id.ULID.String() }

// IsZero reports whether id is the zero-value ULID (never issued).
func (id ContentVersionID) IsZero() bool { return id.ULID == (ulid.ULID{}) }

// IsZero reports whether id is the zero-value ULID (never issued).
func (id PlaysetID) IsZero() bool { return id.ULID == (ulid.ULID{}) }
