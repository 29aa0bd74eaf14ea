// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package script

// ParserVersion is the process-wide parser version. It is bumped
// whenever the grammar or a normalization rule changes; the AST cache
// (see internal/astcache) is keyed on (content_hash, ParserVersion), so
// a bump invalidates every previously cached tree without mutating it —
// old entries simply stop being looked up.
const ParserVersion = 1
