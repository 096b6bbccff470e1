// Package sqlstore implements store.Store over a relational database through
// sqlx. Supported drivers are sqlite (modernc.org/sqlite), postgres (lib/pq)
// and mysql (go-sql-driver/mysql).
package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	// database drivers
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/hanpama/membergraph/internal/store"
)

// Driver names accepted by Open.
const (
	SQLite   = "sqlite"
	Postgres = "postgres"
	MySQL    = "mysql"
)

func init() {
	sqlx.BindDriver(SQLite, sqlx.QUESTION)
}

type Option func(*options)

type options struct {
	maxOpenConns int
}

// WithMaxOpenConns bounds the connection pool. sqlite is always held to one
// connection so in-memory databases survive between queries.
func WithMaxOpenConns(n int) Option { return func(o *options) { o.maxOpenConns = n } }

type Store struct {
	db    *sqlx.DB
	newID func() string
}

var _ store.Store = (*Store)(nil)

// Open connects to dsn with the named driver and verifies the connection.
func Open(ctx context.Context, driver, dsn string, opts ...Option) (*Store, error) {
	switch driver {
	case SQLite, Postgres, MySQL:
	default:
		return nil, fmt.Errorf("sqlstore: unsupported driver %q", driver)
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if driver == SQLite {
		dsn = sqliteDSN(dsn)
	}
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open %s: %w", driver, err)
	}
	if driver == SQLite {
		db.SetMaxOpenConns(1)
	} else if o.maxOpenConns > 0 {
		db.SetMaxOpenConns(o.maxOpenConns)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlstore: ping %s: %w", driver, err)
	}
	return New(db), nil
}

// sqliteDSN turns on foreign keys for every connection the pool opens unless
// dsn already sets the pragma.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "foreign_keys") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)"
}

// New wraps an existing connection. The bind style follows db.DriverName().
func New(db *sqlx.DB) *Store {
	return &Store{db: db, newID: uuid.NewString}
}

func (s *Store) Users() store.UserRepository                 { return users{s} }
func (s *Store) Profiles() store.ProfileRepository           { return profiles{s} }
func (s *Store) Posts() store.PostRepository                 { return posts{s} }
func (s *Store) MemberTypes() store.MemberTypeRepository     { return memberTypes{s} }
func (s *Store) Subscriptions() store.SubscriptionRepository { return subscriptions{s} }
func (s *Store) Close() error                                { return s.db.Close() }

// track starts timing one facade call. The returned func classifies err,
// publishes the StoreQuery event and hands the classified error back.
func (s *Store) track(ctx context.Context, entity, op string) func(rows int, err error) error {
	start := time.Now()
	return func(rows int, err error) error {
		err = classify(entity, op, err)
		store.Observe(ctx, entity, op, start, rows, err)
		return err
	}
}

// selectIn runs query with its single IN (?) placeholder expanded to args.
// An empty key list returns without a round-trip.
func selectIn[T any, K any](ctx context.Context, q sqlx.QueryerContext, query string, keys []K, extra ...any) ([]T, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	args := append([]any{keys}, extra...)
	expanded, params, err := sqlx.In(query, args...)
	if err != nil {
		return nil, err
	}
	var out []T
	if err := sqlx.SelectContext(ctx, q, &out, rebind(q, expanded), params...); err != nil {
		return nil, err
	}
	return out, nil
}

func rebind(q sqlx.QueryerContext, query string) string {
	if b, ok := q.(interface{ Rebind(string) string }); ok {
		return b.Rebind(query)
	}
	return query
}
