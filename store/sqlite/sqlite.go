// Package sqlite implements the Archive on a single sqlite database, using
// the CGO-free modernc.org/sqlite driver. Each accepted schema version is one
// row with the document serialized as JSON; the (major, minor) primary key is
// the version-uniqueness check-and-set.
package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	templateguard "github.com/templateguard/templateguard"
	jsonsrc "github.com/templateguard/templateguard/source/json"
)

const ddl = `
CREATE TABLE IF NOT EXISTS schema_versions (
	major INTEGER NOT NULL,
	minor INTEGER NOT NULL,
	doc   TEXT NOT NULL,
	PRIMARY KEY (major, minor)
);`

// Store is a sqlite-backed Archive.
type Store struct {
	db *sql.DB
}

// Open opens (and if needed initializes) the archive database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	dsn := path
	if !strings.Contains(dsn, "?") {
		dsn += "?_busy_timeout=5000"
	} else {
		dsn += "&_busy_timeout=5000"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open archive db %s", path)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "failed to ping archive db %s", path)
	}
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to initialize archive schema")
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// Latest returns the highest archived version.
func (s *Store) Latest(ctx context.Context) (*templateguard.Schema, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT doc FROM schema_versions ORDER BY major DESC, minor DESC LIMIT 1`)
	return s.scanSchema(row, templateguard.ErrEmptyArchive)
}

// Get returns the schema archived under v.
func (s *Store) Get(ctx context.Context, v templateguard.Version) (*templateguard.Schema, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT doc FROM schema_versions WHERE major = ? AND minor = ?`, v.Major, v.Minor)
	return s.scanSchema(row, templateguard.ErrUnknownVersion)
}

func (s *Store) scanSchema(row *sql.Row, missing error) (*templateguard.Schema, error) {
	var doc string
	if err := row.Scan(&doc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, missing
		}
		return nil, errors.Wrap(err, "failed to read archived schema")
	}
	raw, err := jsonsrc.Decode([]byte(doc))
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode archived schema")
	}
	return templateguard.Load(raw)
}

// Append archives a new schema version. INSERT OR IGNORE keeps the write
// race-safe: of two concurrent writers with the same version exactly one row
// lands, and the other observes ErrDuplicateVersion via RowsAffected.
func (s *Store) Append(ctx context.Context, schema *templateguard.Schema) error {
	doc, err := jsonsrc.Encode(schema.Raw())
	if err != nil {
		return errors.Wrapf(err, "failed to encode schema v%s", schema.Version)
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO schema_versions (major, minor, doc) VALUES (?, ?, ?)`,
		schema.Version.Major, schema.Version.Minor, string(doc))
	if err != nil {
		return errors.Wrapf(err, "failed to archive schema v%s", schema.Version)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to confirm archive write")
	}
	if n == 0 {
		return templateguard.ErrDuplicateVersion
	}
	return nil
}

// Versions enumerates archived versions in ascending order.
func (s *Store) Versions(ctx context.Context) ([]templateguard.Version, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT major, minor FROM schema_versions ORDER BY major, minor`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list archived versions")
	}
	defer rows.Close()
	var out []templateguard.Version
	for rows.Next() {
		var v templateguard.Version
		if err := rows.Scan(&v.Major, &v.Minor); err != nil {
			return nil, errors.Wrap(err, "failed to scan archived version")
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
