package sqlstore

import (
	"context"
	"fmt"

	"github.com/hanpama/membergraph/internal/model"
	"github.com/hanpama/membergraph/internal/store"
)

type columnTypes struct {
	id, text, float, integer, boolean string
}

var dialectTypes = map[string]columnTypes{
	SQLite:   {id: "TEXT", text: "TEXT", float: "REAL", integer: "INTEGER", boolean: "BOOLEAN"},
	Postgres: {id: "TEXT", text: "TEXT", float: "DOUBLE PRECISION", integer: "INTEGER", boolean: "BOOLEAN"},
	MySQL:    {id: "VARCHAR(36)", text: "TEXT", float: "DOUBLE", integer: "INT", boolean: "BOOLEAN"},
}

// schemaStatements returns the DDL for dialect in dependency order.
func schemaStatements(dialect string) ([]string, error) {
	t, ok := dialectTypes[dialect]
	if !ok {
		return nil, fmt.Errorf("sqlstore: no schema for dialect %q", dialect)
	}
	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS member_types (
	id %s NOT NULL PRIMARY KEY,
	discount %s NOT NULL,
	posts_limit_per_month %s NOT NULL
)`, t.id, t.float, t.integer),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS users (
	id %s NOT NULL PRIMARY KEY,
	name %s NOT NULL,
	balance %s NOT NULL
)`, t.id, t.text, t.float),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS profiles (
	id %s NOT NULL PRIMARY KEY,
	is_male %s NOT NULL,
	year_of_birth %s NOT NULL,
	user_id %s NOT NULL UNIQUE,
	member_type_id %s NOT NULL,
	FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE,
	FOREIGN KEY (member_type_id) REFERENCES member_types (id)
)`, t.id, t.boolean, t.integer, t.id, t.id),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS posts (
	id %s NOT NULL PRIMARY KEY,
	title %s NOT NULL,
	content %s NOT NULL,
	author_id %s NOT NULL,
	FOREIGN KEY (author_id) REFERENCES users (id) ON DELETE CASCADE
)`, t.id, t.text, t.text, t.id),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS subscribers_on_authors (
	subscriber_id %s NOT NULL,
	author_id %s NOT NULL,
	PRIMARY KEY (subscriber_id, author_id),
	FOREIGN KEY (subscriber_id) REFERENCES users (id) ON DELETE CASCADE,
	FOREIGN KEY (author_id) REFERENCES users (id) ON DELETE CASCADE
)`, t.id, t.id),
	}, nil
}

// Migrate creates missing tables and inserts the default member types that
// are not present yet. It is safe to run repeatedly.
func (s *Store) Migrate(ctx context.Context) error {
	stmts, err := schemaStatements(s.db.DriverName())
	if err != nil {
		return err
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sqlstore: migrate: %w", err)
		}
	}

	var existing []model.MemberTypeID
	if err := s.db.SelectContext(ctx, &existing, "SELECT id FROM member_types"); err != nil {
		return fmt.Errorf("sqlstore: migrate: %w", err)
	}
	have := make(map[model.MemberTypeID]bool, len(existing))
	for _, id := range existing {
		have[id] = true
	}
	for _, mt := range store.DefaultMemberTypes {
		if have[mt.ID] {
			continue
		}
		_, err := s.db.NamedExecContext(ctx,
			"INSERT INTO member_types (id, discount, posts_limit_per_month) VALUES (:id, :discount, :posts_limit_per_month)", mt)
		if err != nil {
			return fmt.Errorf("sqlstore: seed member type %s: %w", mt.ID, err)
		}
	}
	return nil
}
