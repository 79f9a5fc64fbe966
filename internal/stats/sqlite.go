// SPDX-License-Identifier: Apache-2.0

package stats

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/aletheiaproj/aletheia/internal/provenance"
)

const schema = `
CREATE TABLE IF NOT EXISTS verification_stats (
	id                INTEGER PRIMARY KEY CHECK (id = 1),
	images_checked    INTEGER NOT NULL DEFAULT 0,
	credentials_found INTEGER NOT NULL DEFAULT 0
);
INSERT OR IGNORE INTO verification_stats (id, images_checked, credentials_found) VALUES (1, 0, 0);
`

// SQLite keeps Stats in a single-row table so they survive restarts.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens or creates the database at path.
func OpenSQLite(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create stats dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create stats schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Load(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.db.QueryRowContext(ctx,
		"SELECT images_checked, credentials_found FROM verification_stats WHERE id = 1",
	).Scan(&st.ImagesChecked, &st.CredentialsFound)
	if err != nil {
		return Stats{}, fmt.Errorf("load stats: %w", err)
	}
	return st, nil
}

func (s *SQLite) Record(ctx context.Context, status provenance.StatusCode) (Stats, error) {
	found := 0
	if status.HasCredentials() {
		found = 1
	}
	_, err := s.db.ExecContext(ctx,
		"UPDATE verification_stats SET images_checked = images_checked + 1, credentials_found = credentials_found + ? WHERE id = 1",
		found,
	)
	if err != nil {
		return Stats{}, fmt.Errorf("record stats: %w", err)
	}
	return s.Load(ctx)
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

var _ Store = (*SQLite)(nil)
