package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/hanpama/membergraph/internal/model"
	"github.com/hanpama/membergraph/internal/store"
)

const userColumns = "id, name, balance"

type users struct{ s *Store }

func (r users) FindByID(ctx context.Context, id string, include model.UserInclude) (*model.User, error) {
	done := r.s.track(ctx, store.EntityUser, store.OpFindByID)
	var u model.User
	err := r.s.db.GetContext(ctx, &u, r.s.db.Rebind("SELECT "+userColumns+" FROM users WHERE id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, done(0, store.NewNotFoundError(store.EntityUser, id))
	}
	if err != nil {
		return nil, done(0, err)
	}
	if err := r.s.attach(ctx, []*model.User{&u}, include); err != nil {
		return nil, done(0, err)
	}
	return &u, done(1, nil)
}

func (r users) FindByIDs(ctx context.Context, ids []string) ([]*model.User, error) {
	done := r.s.track(ctx, store.EntityUser, store.OpFindByIDs)
	out, err := selectIn[*model.User](ctx, r.s.db, "SELECT "+userColumns+" FROM users WHERE id IN (?)", ids)
	if err != nil {
		return nil, done(0, err)
	}
	return out, done(len(out), nil)
}

func (r users) FindAll(ctx context.Context, include model.UserInclude) ([]*model.User, error) {
	done := r.s.track(ctx, store.EntityUser, store.OpFindAll)
	var out []*model.User
	if err := r.s.db.SelectContext(ctx, &out, "SELECT "+userColumns+" FROM users"); err != nil {
		return nil, done(0, err)
	}
	if err := r.s.attach(ctx, out, include); err != nil {
		return nil, done(0, err)
	}
	return out, done(len(out), nil)
}

func (r users) Create(ctx context.Context, in model.CreateUserInput) (*model.User, error) {
	done := r.s.track(ctx, store.EntityUser, store.OpCreate)
	u := &model.User{ID: r.s.newID(), Name: in.Name, Balance: in.Balance}
	_, err := r.s.db.NamedExecContext(ctx, "INSERT INTO users (id, name, balance) VALUES (:id, :name, :balance)", u)
	if err != nil {
		return nil, done(0, err)
	}
	return u, done(1, nil)
}

func (r users) Update(ctx context.Context, id string, in model.ChangeUserInput) (*model.User, error) {
	done := r.s.track(ctx, store.EntityUser, store.OpUpdate)
	var set setClause
	if in.Name != nil {
		set.add("name", *in.Name)
	}
	if in.Balance != nil {
		set.add("balance", *in.Balance)
	}
	u, err := updateAndGet[model.User](ctx, r.s.db, "users", userColumns, id, set)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, done(0, store.NewNotFoundError(store.EntityUser, id))
	}
	if err != nil {
		return nil, done(0, err)
	}
	return u, done(1, nil)
}

// Delete removes the user together with its profile, posts and subscription
// edges in one transaction.
func (r users) Delete(ctx context.Context, id string) error {
	done := r.s.track(ctx, store.EntityUser, store.OpDelete)
	err := r.s.inTx(ctx, func(tx *sqlx.Tx) error {
		stmts := []struct {
			query string
			args  []any
		}{
			{"DELETE FROM subscribers_on_authors WHERE subscriber_id = ? OR author_id = ?", []any{id, id}},
			{"DELETE FROM posts WHERE author_id = ?", []any{id}},
			{"DELETE FROM profiles WHERE user_id = ?", []any{id}},
		}
		for _, st := range stmts {
			if _, err := tx.ExecContext(ctx, tx.Rebind(st.query), st.args...); err != nil {
				return err
			}
		}
		return deleteByID(ctx, tx, "users", store.EntityUser, id)
	})
	if err != nil {
		return done(0, err)
	}
	return done(1, nil)
}

// attach eager-loads the requested relations of out with one query per
// relation.
func (s *Store) attach(ctx context.Context, out []*model.User, include model.UserInclude) error {
	if len(out) == 0 || !include.Any() {
		return nil
	}
	ids := make([]string, len(out))
	for i, u := range out {
		ids[i] = u.ID
	}
	if include.Profile {
		rows, err := selectIn[*model.Profile](ctx, s.db, "SELECT "+profileColumns+" FROM profiles WHERE user_id IN (?)", ids)
		if err != nil {
			return err
		}
		byUser := make(map[string]*model.Profile, len(rows))
		for _, p := range rows {
			byUser[p.UserID] = p
		}
		for _, u := range out {
			u.Edges.SetProfile(byUser[u.ID])
		}
	}
	if include.Posts {
		rows, err := selectIn[*model.Post](ctx, s.db, "SELECT "+postColumns+" FROM posts WHERE author_id IN (?)", ids)
		if err != nil {
			return err
		}
		byAuthor := make(map[string][]*model.Post)
		for _, p := range rows {
			byAuthor[p.AuthorID] = append(byAuthor[p.AuthorID], p)
		}
		for _, u := range out {
			u.Edges.SetPosts(byAuthor[u.ID])
		}
	}
	if include.SubscribedTo {
		rows, err := subscriptions{s}.EdgesBySubscriberIDs(ctx, ids)
		if err != nil {
			return err
		}
		bySubscriber := make(map[string][]model.SubscriptionEdge)
		for _, e := range rows {
			bySubscriber[e.SubscriberID] = append(bySubscriber[e.SubscriberID], e)
		}
		for _, u := range out {
			u.Edges.SetSubscribedTo(bySubscriber[u.ID])
		}
	}
	if include.Subscribers {
		rows, err := subscriptions{s}.EdgesByAuthorIDs(ctx, ids)
		if err != nil {
			return err
		}
		byAuthor := make(map[string][]model.SubscriptionEdge)
		for _, e := range rows {
			byAuthor[e.AuthorID] = append(byAuthor[e.AuthorID], e)
		}
		for _, u := range out {
			u.Edges.SetSubscribers(byAuthor[u.ID])
		}
	}
	return nil
}

func (s *Store) inTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// setClause accumulates the assignments of a partial UPDATE.
type setClause struct {
	cols []string
	args []any
}

func (c *setClause) add(col string, v any) {
	c.cols = append(c.cols, col+" = ?")
	c.args = append(c.args, v)
}

func (c setClause) empty() bool { return len(c.cols) == 0 }

// updateAndGet applies set to the row with id and reads it back. A missing
// row yields sql.ErrNoRows. An empty set only reads.
func updateAndGet[T any](ctx context.Context, db *sqlx.DB, table, columns, id string, set setClause) (*T, error) {
	if !set.empty() {
		q := "UPDATE " + table + " SET " + strings.Join(set.cols, ", ") + " WHERE id = ?"
		if _, err := db.ExecContext(ctx, db.Rebind(q), append(set.args, id)...); err != nil {
			return nil, err
		}
	}
	var row T
	if err := db.GetContext(ctx, &row, db.Rebind("SELECT "+columns+" FROM "+table+" WHERE id = ?"), id); err != nil {
		return nil, err
	}
	return &row, nil
}

// deleteByID deletes one row and reports a NotFoundError when nothing
// matched.
func deleteByID(ctx context.Context, ex sqlx.ExtContext, table, entity, id string) error {
	res, err := ex.ExecContext(ctx, ex.Rebind("DELETE FROM "+table+" WHERE id = ?"), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.NewNotFoundError(entity, id)
	}
	return nil
}
