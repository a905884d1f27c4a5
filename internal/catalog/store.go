package catalog

import (
	"context"
	"fmt"

	"agstrans/internal/stringmap"
	"agstrans/internal/textutil"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

const schema = `
CREATE TABLE IF NOT EXISTS pack_entries (
	pack        TEXT  NOT NULL,
	hash        TEXT  NOT NULL,
	source      BYTEA NOT NULL,
	translated  BYTEA NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (pack, hash)
);
CREATE TABLE IF NOT EXISTS untranslated_strings (
	pack        TEXT  NOT NULL,
	hash        TEXT  NOT NULL,
	source      BYTEA NOT NULL,
	first_seen  TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (pack, hash)
);`

const upsertEntrySQL = `
INSERT INTO pack_entries (pack, hash, source, translated)
VALUES ($1, $2, $3, $4)
ON CONFLICT (pack, hash) DO UPDATE
SET translated = EXCLUDED.translated, updated_at = now()
WHERE pack_entries.translated <> EXCLUDED.translated`

const insertUntranslatedSQL = `
INSERT INTO untranslated_strings (pack, hash, source)
VALUES ($1, $2, $3)
ON CONFLICT (pack, hash) DO NOTHING`

// Store keeps packs and untranslated strings in PostgreSQL so translators
// can share them. Strings are stored as raw bytes in the game's code page.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a store backed by pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Connect opens and pings a pool for databaseURL.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect PostgreSQL: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping PostgreSQL: %w", err)
	}
	log.Info().Msg("Connected to PostgreSQL")
	return pool, nil
}

// EnsureSchema creates the catalog tables if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure catalog schema: %w", err)
	}
	return nil
}

// UpsertPack stores every entry of m under pack and returns how many rows
// were inserted or changed.
func (s *Store) UpsertPack(ctx context.Context, pack string, m *stringmap.Map) (int, error) {
	batch := &pgx.Batch{}
	m.Each(func(original, translated string) {
		batch.Queue(upsertEntrySQL, pack, textutil.Hash(original), []byte(original), []byte(translated))
	})
	if batch.Len() == 0 {
		return 0, nil
	}

	changed, err := s.runBatch(ctx, batch)
	if err != nil {
		return changed, fmt.Errorf("upsert pack %s: %w", pack, err)
	}

	log.Info().Str("pack", pack).Int("entries", m.Len()).Int("changed", changed).Msg("Upserted pack entries")
	return changed, nil
}

// RecordUntranslated stores texts as untranslated for pack, skipping any
// already recorded, and returns how many were new.
func (s *Store) RecordUntranslated(ctx context.Context, pack string, texts []string) (int, error) {
	batch := &pgx.Batch{}
	for _, text := range texts {
		batch.Queue(insertUntranslatedSQL, pack, textutil.Hash(text), []byte(text))
	}
	if batch.Len() == 0 {
		return 0, nil
	}

	added, err := s.runBatch(ctx, batch)
	if err != nil {
		return added, fmt.Errorf("record untranslated for %s: %w", pack, err)
	}
	return added, nil
}

// ListUntranslated returns the untranslated strings of pack that still
// have no non-empty translation, oldest first.
func (s *Store) ListUntranslated(ctx context.Context, pack string) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT u.source
		FROM untranslated_strings u
		LEFT JOIN pack_entries e ON e.pack = u.pack AND e.hash = u.hash AND e.translated <> ''::bytea
		WHERE u.pack = $1 AND e.hash IS NULL
		ORDER BY u.first_seen, u.hash`, pack)
	if err != nil {
		return nil, fmt.Errorf("list untranslated: %w", err)
	}

	sources, err := pgx.CollectRows(rows, pgx.RowTo[[]byte])
	if err != nil {
		return nil, fmt.Errorf("scan untranslated: %w", err)
	}

	texts := make([]string, len(sources))
	for i, src := range sources {
		texts[i] = string(src)
	}
	return texts, nil
}

// LoadPack reads every stored entry of pack into a fresh map.
func (s *Store) LoadPack(ctx context.Context, pack string) (*stringmap.Map, error) {
	rows, err := s.pool.Query(ctx, `SELECT source, translated FROM pack_entries WHERE pack = $1`, pack)
	if err != nil {
		return nil, fmt.Errorf("load pack %s: %w", pack, err)
	}
	defer rows.Close()

	m := stringmap.New()
	for rows.Next() {
		var source, translated []byte
		if err := rows.Scan(&source, &translated); err != nil {
			return nil, fmt.Errorf("scan pack entry: %w", err)
		}
		m.Insert(string(source), string(translated))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load pack %s: %w", pack, err)
	}
	return m, nil
}

func (s *Store) runBatch(ctx context.Context, batch *pgx.Batch) (int, error) {
	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	affected := 0
	for i := 0; i < batch.Len(); i++ {
		tag, err := br.Exec()
		if err != nil {
			return affected, err
		}
		affected += int(tag.RowsAffected())
	}
	return affected, nil
}
