package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/toshokan/internal/models"
)

// docStore keeps chunk text and attribution in SQLite so search results can
// be rehydrated from vector IDs.
type docStore struct {
	db *sql.DB
}

func newDocStore(dbPath string) (*docStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open chunk database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &docStore{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS chunks (
		id TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		page INTEGER NOT NULL DEFAULT 0,
		sheet TEXT NOT NULL DEFAULT '',
		file_type TEXT NOT NULL DEFAULT '',
		encoding TEXT NOT NULL DEFAULT '',
		encoding_confidence REAL NOT NULL DEFAULT 0,
		content TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_chunks_source ON chunks(source);
	`
	_, err := db.Exec(schema)
	return err
}

func (d *docStore) begin(ctx context.Context) (*sql.Tx, error) {
	return d.db.BeginTx(ctx, nil)
}

// stageChunks inserts chunk rows inside tx; the caller commits after the
// vector index is durable.
func (d *docStore) stageChunks(ctx context.Context, tx *sql.Tx, chunks []*models.Chunk) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO chunks (id, source, page, sheet, file_type, encoding, encoding_confidence, content)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, c := range chunks {
		m := c.Meta
		if _, err := stmt.ExecContext(ctx, c.ID, m.Source, m.Page, m.Sheet, m.FileType, m.Encoding, m.EncodingConfidence, c.Content); err != nil {
			return err
		}
	}
	return nil
}

// sources returns the set of indexed source basenames.
func (d *docStore) sources(ctx context.Context) (map[string]struct{}, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT DISTINCT source FROM chunks`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	set := make(map[string]struct{})
	for rows.Next() {
		var source string
		if err := rows.Scan(&source); err != nil {
			return nil, err
		}
		set[source] = struct{}{}
	}
	return set, rows.Err()
}

// stats returns per-source chunk counts and the number of distinct pages
// (zero when the source has no page numbers).
func (d *docStore) stats(ctx context.Context) (models.CollectionStats, error) {
	stats := models.CollectionStats{Sources: make(map[string]models.SourceStats)}

	rows, err := d.db.QueryContext(ctx,
		`SELECT source, COUNT(*), COUNT(DISTINCT CASE WHEN page > 0 THEN page END)
		 FROM chunks GROUP BY source`)
	if err != nil {
		return stats, err
	}
	defer rows.Close()

	for rows.Next() {
		var source string
		var chunks, pages int
		if err := rows.Scan(&source, &chunks, &pages); err != nil {
			return stats, err
		}
		stats.Sources[source] = models.SourceStats{Chunks: chunks, Pages: pages}
		stats.TotalChunks += chunks
	}
	return stats, rows.Err()
}

// chunksByID fetches the given chunks keyed by ID. Missing IDs are absent
// from the result rather than an error.
func (d *docStore) chunksByID(ctx context.Context, ids []string) (map[string]models.Chunk, error) {
	out := make(map[string]models.Chunk, len(ids))
	stmt, err := d.db.PrepareContext(ctx,
		`SELECT id, source, page, sheet, file_type, encoding, encoding_confidence, content
		 FROM chunks WHERE id = ?`)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	for _, id := range ids {
		var c models.Chunk
		err := stmt.QueryRowContext(ctx, id).Scan(
			&c.ID, &c.Meta.Source, &c.Meta.Page, &c.Meta.Sheet,
			&c.Meta.FileType, &c.Meta.Encoding, &c.Meta.EncodingConfidence, &c.Content,
		)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return nil, err
		}
		out[c.ID] = c
	}
	return out, nil
}

func (d *docStore) close() error {
	return d.db.Close()
}
