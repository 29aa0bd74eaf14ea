// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"

	"github.com/modcore/modcore/internal/ids"
)

// pgxIface is the subset of *pgxpool.Pool's surface ContentStore uses.
// Narrowing to an interface lets tests substitute pgxmock's pool
// without a real database.
type pgxIface interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// ContentStore persists content-addressed bytes, file membership,
// content versions, playsets, and the symbol/reference tables, backed
// by PostgreSQL.
type ContentStore struct {
	pool    pgxIface
	rawPool *pgxpool.Pool // non-nil only when constructed against a real database
}

// NewContentStore creates a new ContentStore.
func NewContentStore(ctx context.Context, dsn string) (*ContentStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, oops.Code("STORE_CONNECT_FAILED").Wrap(err)
	}
	return &ContentStore{pool: pool, rawPool: pool}, nil
}

// NewContentStoreWithPool wraps an existing pool-like implementation,
// used by tests to substitute a pgxmock pool.
func NewContentStoreWithPool(pool pgxIface) *ContentStore {
	return &ContentStore{pool: pool}
}

// Close closes the underlying connection pool, if this store owns one.
func (s *ContentStore) Close() {
	if s.rawPool != nil {
		s.rawPool.Close()
	}
}

// HashContent computes the content-addressing hash for bytes, per
// spec: SHA-256 of the normalized (line-ending/BOM-stripped) bytes.
// Callers are responsible for normalizing before calling HashContent.
func HashContent(normalized []byte) string {
	sum := sha256.Sum256(normalized)
	return hex.EncodeToString(sum[:])
}

// PutContent stores bytes under their content hash, idempotently. If
// the hash already exists the call is a no-op.
func (s *ContentStore) PutContent(ctx context.Context, normalized []byte) (string, error) {
	hash := HashContent(normalized)
	err := s.withRetry(ctx, func(ctx context.Context) error {
		_, err := s.pool.Exec(ctx, `
			INSERT INTO content (content_hash, byte_size, data)
			VALUES ($1, $2, $3)
			ON CONFLICT (content_hash) DO NOTHING
		`, hash, len(normalized), normalized)
		return err
	})
	if err != nil {
		return "", oops.With("operation", "put content").With("hash", hash).Wrap(err)
	}
	return hash, nil
}

// GetContent retrieves bytes by content hash.
func (s *ContentStore) GetContent(ctx context.Context, hash string) ([]byte, error) {
	var data []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM content WHERE content_hash = $1`, hash).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("CONTENT_NOT_FOUND").With("hash", hash).Wrap(ErrNotFound)
	}
	if err != nil {
		return nil, oops.With("operation", "get content").With("hash", hash).Wrap(err)
	}
	return data, nil
}

// CreateContentVersion inserts an unsealed content version shell;
// RecordFile calls populate its membership, and VersionRoot computes
// and persists its root hash.
func (s *ContentStore) CreateContentVersion(ctx context.Context, sourceName, versionTag string) (ids.ContentVersionID, error) {
	id := ids.NewContentVersionID()
	_, err := s.pool.Exec(ctx, `
		INSERT INTO content_version (content_version_id, source_name, version_tag, root_hash)
		VALUES ($1, $2, $3, '')
	`, id.String(), sourceName, versionTag)
	if err != nil {
		return ids.ContentVersionID{}, oops.With("operation", "create content version").
			With("source_name", sourceName).With("version_tag", versionTag).Wrap(err)
	}
	return id, nil
}

// RecordFile declares a (relpath → content_hash) membership within a
// content version, or marks relpath deleted. Within a version, one
// relpath has at most one current mapping.
func (s *ContentStore) RecordFile(ctx context.Context, versionID ids.ContentVersionID, relpath, contentHash string, deleted bool) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO file (content_version_id, relpath, content_hash, deleted)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (content_version_id, relpath) DO UPDATE
			SET content_hash = EXCLUDED.content_hash, deleted = EXCLUDED.deleted
	`, versionID.String(), relpath, contentHash, deleted)
	if err != nil {
		return oops.With("operation", "record file").
			With("version_id", versionID.String()).With("relpath", relpath).Wrap(err)
	}
	return nil
}

// fileHashPair is a (relpath, content_hash) tuple used to compute a
// content version's root hash.
type fileHashPair struct {
	RelPath     string
	ContentHash string
}

// VersionRoot computes and persists a content version's root hash: the
// SHA-256 of the lexicographically sorted sequence of
// (relpath, content_hash) pairs for all non-deleted files. It is the
// sealing operation; nothing locks a sealed version, so calling it
// again after further RecordFile calls recomputes and overwrites the
// root, which is what playset drift detection then observes.
func (s *ContentStore) VersionRoot(ctx context.Context, versionID ids.ContentVersionID) (string, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT relpath, content_hash FROM file
		WHERE content_version_id = $1 AND deleted = FALSE
		ORDER BY relpath
	`, versionID.String())
	if err != nil {
		return "", oops.With("operation", "list files for root").With("version_id", versionID.String()).Wrap(err)
	}
	defer rows.Close()

	var pairs []fileHashPair
	for rows.Next() {
		var p fileHashPair
		if err := rows.Scan(&p.RelPath, &p.ContentHash); err != nil {
			return "", oops.With("operation", "scan file row").Wrap(err)
		}
		pairs = append(pairs, p)
	}
	if err := rows.Err(); err != nil {
		return "", oops.With("operation", "iterate file rows").Wrap(err)
	}

	root := computeRootHash(pairs)

	_, err = s.pool.Exec(ctx, `UPDATE content_version SET root_hash = $2 WHERE content_version_id = $1`,
		versionID.String(), root)
	if err != nil {
		return "", oops.With("operation", "persist root hash").With("version_id", versionID.String()).Wrap(err)
	}
	return root, nil
}

// computeRootHash hashes the sorted (relpath, content_hash) pairs.
// Rows are already ordered by the SQL query, but sorting defensively
// keeps the function correct independent of caller ordering.
func computeRootHash(pairs []fileHashPair) string {
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].RelPath < pairs[j].RelPath })
	var sb strings.Builder
	for _, p := range pairs {
		sb.WriteString(p.RelPath)
		sb.WriteByte('\x00')
		sb.WriteString(p.ContentHash)
		sb.WriteByte('\n')
	}
	sum := sha256.Sum256([]byte(sb.String()))
	return hex.EncodeToString(sum[:])
}

// GetContentVersion retrieves a content version by id.
func (s *ContentStore) GetContentVersion(ctx context.Context, id ids.ContentVersionID) (*ContentVersion, error) {
	var cv ContentVersion
	var idStr string
	err := s.pool.QueryRow(ctx, `
		SELECT content_version_id, source_name, version_tag, root_hash, sealed_at
		FROM content_version WHERE content_version_id = $1
	`, id.String()).Scan(&idStr, &cv.SourceName, &cv.VersionTag, &cv.RootHash, &cv.SealedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("CONTENT_VERSION_NOT_FOUND").With("id", id.String()).Wrap(ErrNotFound)
	}
	if err != nil {
		return nil, oops.With("operation", "get content version").With("id", id.String()).Wrap(err)
	}
	cv.ID = id
	return &cv, nil
}

// ListFiles returns the non-deleted files recorded for a content
// version, ordered lexicographically by relpath.
func (s *ContentStore) ListFiles(ctx context.Context, versionID ids.ContentVersionID) ([]File, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT relpath, content_hash, deleted FROM file
		WHERE content_version_id = $1 AND deleted = FALSE
		ORDER BY relpath
	`, versionID.String())
	if err != nil {
		return nil, oops.With("operation", "list files").With("version_id", versionID.String()).Wrap(err)
	}
	defer rows.Close()

	var files []File
	for rows.Next() {
		f := File{ContentVersionID: versionID}
		if err := rows.Scan(&f.RelPath, &f.ContentHash, &f.Deleted); err != nil {
			return nil, oops.With("operation", "scan file").Wrap(err)
		}
		files = append(files, f)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate files").Wrap(err)
	}
	return files, nil
}

// GetFile looks up relpath's membership within a single content
// version, including deleted markers that ListFiles omits. It returns
// ErrNotFound if the version never recorded anything for relpath.
func (s *ContentStore) GetFile(ctx context.Context, versionID ids.ContentVersionID, relpath string) (*File, error) {
	var f File
	f.ContentVersionID = versionID
	f.RelPath = relpath
	err := s.pool.QueryRow(ctx, `
		SELECT content_hash, deleted FROM file
		WHERE content_version_id = $1 AND relpath = $2
	`, versionID.String(), relpath).Scan(&f.ContentHash, &f.Deleted)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("FILE_NOT_FOUND").With("version_id", versionID.String()).
			With("relpath", relpath).Wrap(ErrNotFound)
	}
	if err != nil {
		return nil, oops.With("operation", "get file").
			With("version_id", versionID.String()).With("relpath", relpath).Wrap(err)
	}
	return &f, nil
}

// CreatePlayset persists an ordered list of content versions as a
// playset, the base version first, and computes the playset hash from
// the ordered version roots.
func (s *ContentStore) CreatePlayset(ctx context.Context, entries []PlaysetEntry) (*Playset, error) {
	if len(entries) == 0 {
		return nil, oops.Code("EMPTY_PLAYSET").Errorf("a playset must contain at least one content version")
	}

	roots := make([]string, 0, len(entries))
	sealed := make([]PlaysetEntry, len(entries))
	copy(sealed, entries)
	for i, e := range sealed {
		cv, err := s.GetContentVersion(ctx, e.ContentVersionID)
		if err != nil {
			return nil, oops.With("operation", "create playset").Wrap(err)
		}
		roots = append(roots, cv.RootHash)
		sealed[i].RootHash = cv.RootHash
	}
	playsetHash := ComputePlaysetHash(roots)

	id := ids.NewPlaysetID()
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, oops.With("operation", "begin playset transaction").Wrap(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
		INSERT INTO playset (playset_id, playset_hash) VALUES ($1, $2)
	`, id.String(), playsetHash); err != nil {
		return nil, oops.With("operation", "insert playset").Wrap(err)
	}

	for _, e := range sealed {
		if _, err := tx.Exec(ctx, `
			INSERT INTO playset_entry (playset_id, position, content_version_id, role, root_hash)
			VALUES ($1, $2, $3, $4, $5)
		`, id.String(), e.Position, e.ContentVersionID.String(), string(e.Role), e.RootHash); err != nil {
			return nil, oops.With("operation", "insert playset entry").With("position", e.Position).Wrap(err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, oops.With("operation", "commit playset transaction").Wrap(err)
	}

	return &Playset{ID: id, PlaysetHash: playsetHash, Entries: sealed, CreatedAt: time.Now()}, nil
}

// ComputePlaysetHash hashes the ordered list of content-version roots.
func ComputePlaysetHash(roots []string) string {
	var sb strings.Builder
	for _, r := range roots {
		sb.WriteString(r)
		sb.WriteByte('\n')
	}
	sum := sha256.Sum256([]byte(sb.String()))
	return hex.EncodeToString(sum[:])
}

// GetPlayset retrieves a playset and its ordered entries by id.
func (s *ContentStore) GetPlayset(ctx context.Context, id ids.PlaysetID) (*Playset, error) {
	var p Playset
	var createdAt time.Time
	err := s.pool.QueryRow(ctx, `
		SELECT playset_hash, created_at FROM playset WHERE playset_id = $1
	`, id.String()).Scan(&p.PlaysetHash, &createdAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("PLAYSET_NOT_FOUND").With("id", id.String()).Wrap(ErrNotFound)
	}
	if err != nil {
		return nil, oops.With("operation", "get playset").With("id", id.String()).Wrap(err)
	}
	p.ID = id
	p.CreatedAt = createdAt

	rows, err := s.pool.Query(ctx, `
		SELECT position, content_version_id, role, root_hash FROM playset_entry
		WHERE playset_id = $1 ORDER BY position
	`, id.String())
	if err != nil {
		return nil, oops.With("operation", "list playset entries").With("id", id.String()).Wrap(err)
	}
	defer rows.Close()

	for rows.Next() {
		var e PlaysetEntry
		var cvIDStr, role string
		if err := rows.Scan(&e.Position, &cvIDStr, &role, &e.RootHash); err != nil {
			return nil, oops.With("operation", "scan playset entry").Wrap(err)
		}
		cvID, err := ids.ParseContentVersionID(cvIDStr)
		if err != nil {
			return nil, oops.With("operation", "parse playset entry version id").Wrap(err)
		}
		e.ContentVersionID = cvID
		e.Role = PlaysetRole(role)
		p.Entries = append(p.Entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate playset entries").Wrap(err)
	}
	return &p, nil
}

// InsertSymbols batch-persists extracted symbol definitions.
func (s *ContentStore) InsertSymbols(ctx context.Context, symbols []Symbol) error {
	if len(symbols) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, sym := range symbols {
		batch.Queue(`
			INSERT INTO symbol (symbol_type, scope, name, content_version_id, relpath, line)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, sym.SymbolType, sym.Scope, sym.Name, sym.ContentVersionID.String(), sym.RelPath, sym.Line)
	}
	br := s.pool.SendBatch(ctx, batch)
	defer func() { _ = br.Close() }()
	for range symbols {
		if _, err := br.Exec(); err != nil {
			return oops.With("operation", "insert symbol batch").Wrap(err)
		}
	}
	return nil
}

// InsertReferences batch-persists extracted reference use-sites.
func (s *ContentStore) InsertReferences(ctx context.Context, refs []Reference) error {
	if len(refs) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, ref := range refs {
		batch.Queue(`
			INSERT INTO reference (ref_type, name, content_version_id, relpath, line)
			VALUES ($1, $2, $3, $4, $5)
		`, ref.RefType, ref.Name, ref.ContentVersionID.String(), ref.RelPath, ref.Line)
	}
	br := s.pool.SendBatch(ctx, batch)
	defer func() { _ = br.Close() }()
	for range refs {
		if _, err := br.Exec(); err != nil {
			return oops.With("operation", "insert reference batch").Wrap(err)
		}
	}
	return nil
}

// SymbolsByIdentity returns all symbols matching the closed identity
// (symbol_type, scope, name) across the given content versions —
// multiple matches represent override, not duplication.
func (s *ContentStore) SymbolsByIdentity(ctx context.Context, versionIDs []ids.ContentVersionID, symbolType, scope, name string) ([]Symbol, error) {
	idStrs := make([]string, len(versionIDs))
	for i, v := range versionIDs {
		idStrs[i] = v.String()
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, symbol_type, scope, name, content_version_id, relpath, line FROM symbol
		WHERE symbol_type = $1 AND scope = $2 AND name = $3 AND content_version_id = ANY($4)
	`, symbolType, scope, name, idStrs)
	if err != nil {
		return nil, oops.With("operation", "symbols by identity").With("name", name).Wrap(err)
	}
	defer rows.Close()
	return scanSymbols(rows)
}

// ListSymbols returns every symbol row recorded against the given
// content versions — the full records AllSymbolNames discards in
// favor of just the distinct name, needed to rebuild a playset's
// search index (spec.md §4.8).
func (s *ContentStore) ListSymbols(ctx context.Context, versionIDs []ids.ContentVersionID) ([]Symbol, error) {
	idStrs := make([]string, len(versionIDs))
	for i, v := range versionIDs {
		idStrs[i] = v.String()
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, symbol_type, scope, name, content_version_id, relpath, line FROM symbol
		WHERE content_version_id = ANY($1)
	`, idStrs)
	if err != nil {
		return nil, oops.With("operation", "list symbols").Wrap(err)
	}
	defer rows.Close()
	return scanSymbols(rows)
}

// AllSymbolNames returns the distinct symbol names across the given
// content versions — the corpus that search and fuzzy-matching
// operate over.
func (s *ContentStore) AllSymbolNames(ctx context.Context, versionIDs []ids.ContentVersionID) ([]string, error) {
	idStrs := make([]string, len(versionIDs))
	for i, v := range versionIDs {
		idStrs[i] = v.String()
	}
	rows, err := s.pool.Query(ctx, `
		SELECT DISTINCT name FROM symbol WHERE content_version_id = ANY($1)
	`, idStrs)
	if err != nil {
		return nil, oops.With("operation", "all symbol names").Wrap(err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, oops.With("operation", "scan symbol name").Wrap(err)
		}
		names = append(names, n)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate symbol names").Wrap(err)
	}
	return names, nil
}

func scanSymbols(rows pgx.Rows) ([]Symbol, error) {
	var symbols []Symbol
	for rows.Next() {
		var sym Symbol
		var cvIDStr string
		if err := rows.Scan(&sym.ID, &sym.SymbolType, &sym.Scope, &sym.Name, &cvIDStr, &sym.RelPath, &sym.Line); err != nil {
			return nil, oops.With("operation", "scan symbol").Wrap(err)
		}
		cvID, err := ids.ParseContentVersionID(cvIDStr)
		if err != nil {
			return nil, oops.With("operation", "parse symbol version id").Wrap(err)
		}
		sym.ContentVersionID = cvID
		symbols = append(symbols, sym)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate symbols").Wrap(err)
	}
	return symbols, nil
}

// withRetry retries transient errors (connection resets, serialization
// failures under concurrent ingest writers) with capped exponential
// backoff. Non-transient errors return immediately.
func (s *ContentStore) withRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	backoff := retry.NewExponential(20 * time.Millisecond)
	backoff = retry.WithMaxRetries(5, backoff)
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if isTransientPostgresError(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}

// isTransientPostgresError reports whether err looks like a
// connection-level failure worth retrying rather than a data error.
func isTransientPostgresError(err error) bool {
	var pgErr interface{ SQLState() string }
	if errors.As(err, &pgErr) {
		switch pgErr.SQLState() {
		case "40001", "40P01", "08006", "08003":
			return true
		}
	}
	return false
}
