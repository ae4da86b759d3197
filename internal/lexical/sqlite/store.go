// Package sqlite serves a WordNet-style sense inventory from a SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // driver

	"github.com/kailas-cloud/wsdlab/internal/lexical"
)

const schema = `
CREATE TABLE IF NOT EXISTS synsets (
	id TEXT PRIMARY KEY,
	pos TEXT NOT NULL,
	definition TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS lemmas (
	synset_id TEXT NOT NULL,
	lemma TEXT NOT NULL,
	rank INTEGER NOT NULL DEFAULT 0,
	UNIQUE(synset_id, lemma),
	FOREIGN KEY(synset_id) REFERENCES synsets(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_lemmas_lemma ON lemmas(lemma);

CREATE TABLE IF NOT EXISTS examples (
	synset_id TEXT NOT NULL,
	text TEXT NOT NULL,
	position INTEGER NOT NULL DEFAULT 0,
	FOREIGN KEY(synset_id) REFERENCES synsets(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_examples_synset ON examples(synset_id);
`

// Store reads lexical entries from SQLite. It is read-only after import and
// safe for concurrent lookups.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) a lexical database and ensures the schema exists.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open lexical db: %w", err)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init lexical schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks database availability.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Add imports one synset under the given lemma rank. Forms are the lemmas
// that index the entry; rank orders senses of the same lemma.
func (s *Store) Add(ctx context.Context, e lexical.Entry, rank int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO synsets (id, pos, definition) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET pos = excluded.pos, definition = excluded.definition`,
		e.ID, string(e.Category), e.Definition,
	); err != nil {
		return fmt.Errorf("insert synset %s: %w", e.ID, err)
	}

	for _, form := range e.Forms {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO lemmas (synset_id, lemma, rank) VALUES (?, ?, ?)
			 ON CONFLICT(synset_id, lemma) DO UPDATE SET rank = excluded.rank`,
			e.ID, lexical.Headword(form), rank,
		); err != nil {
			return fmt.Errorf("insert lemma %s: %w", form, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM examples WHERE synset_id = ?`, e.ID); err != nil {
		return fmt.Errorf("clear examples %s: %w", e.ID, err)
	}
	for i, ex := range e.Examples {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO examples (synset_id, text, position) VALUES (?, ?, ?)`,
			e.ID, ex, i,
		); err != nil {
			return fmt.Errorf("insert example %s: %w", e.ID, err)
		}
	}

	return tx.Commit()
}

// Lookup returns all senses of word in sense-rank order, filtered by the
// category hint.
func (s *Store) Lookup(ctx context.Context, word string, hint lexical.Category) ([]lexical.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT s.id, s.pos, s.definition
FROM lemmas l
JOIN synsets s ON s.id = l.synset_id
WHERE l.lemma = ?
ORDER BY l.rank, s.id`, lexical.Headword(word))
	if err != nil {
		return nil, fmt.Errorf("query senses: %w", err)
	}

	var entries []lexical.Entry
	for rows.Next() {
		var e lexical.Entry
		var pos string
		if err := rows.Scan(&e.ID, &pos, &e.Definition); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan sense: %w", err)
		}
		e.Category = lexical.Category(pos)
		if hint.Matches(e.Category) {
			entries = append(entries, e)
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate senses: %w", err)
	}
	rows.Close()

	for i := range entries {
		if entries[i].Forms, err = s.strings(ctx,
			`SELECT lemma FROM lemmas WHERE synset_id = ? ORDER BY rank, lemma`, entries[i].ID); err != nil {
			return nil, err
		}
		if entries[i].Examples, err = s.strings(ctx,
			`SELECT text FROM examples WHERE synset_id = ? ORDER BY position`, entries[i].ID); err != nil {
			return nil, err
		}
	}

	return entries, nil
}

func (s *Store) strings(ctx context.Context, query, id string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", id, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan %s: %w", id, err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
