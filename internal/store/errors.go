// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package store

import "errors"

// ErrNotFound is returned when a content hash, content version, or
// playset does not exist in the store.
var ErrNotFound = errors.New("not found")
