package sqlstore

import (
	"context"

	"github.com/hanpama/membergraph/internal/model"
	"github.com/hanpama/membergraph/internal/store"
)

const edgeColumns = "subscriber_id, author_id"

type subscriptions struct{ s *Store }

// joinRow is one edge joined with the user on its far end.
type joinRow struct {
	SubscriberID string  `db:"subscriber_id"`
	AuthorID     string  `db:"author_id"`
	UserID       string  `db:"user_id"`
	UserName     string  `db:"user_name"`
	UserBalance  float64 `db:"user_balance"`
}

func (j joinRow) subscribed() model.SubscribedUser {
	return model.SubscribedUser{
		Edge: model.SubscriptionEdge{SubscriberID: j.SubscriberID, AuthorID: j.AuthorID},
		User: &model.User{ID: j.UserID, Name: j.UserName, Balance: j.UserBalance},
	}
}

const joinSelect = `SELECT s.subscriber_id, s.author_id, u.id AS user_id, u.name AS user_name, u.balance AS user_balance
FROM subscribers_on_authors s JOIN users u ON u.id = `

func (r subscriptions) AuthorsOf(ctx context.Context, subscriberIDs []string) ([]model.SubscribedUser, error) {
	return r.join(ctx, store.OpAuthorsOf, joinSelect+"s.author_id WHERE s.subscriber_id IN (?)", subscriberIDs)
}

func (r subscriptions) SubscribersOf(ctx context.Context, authorIDs []string) ([]model.SubscribedUser, error) {
	return r.join(ctx, store.OpSubscribersOf, joinSelect+"s.subscriber_id WHERE s.author_id IN (?)", authorIDs)
}

func (r subscriptions) join(ctx context.Context, op, query string, ids []string) ([]model.SubscribedUser, error) {
	done := r.s.track(ctx, store.EntitySubscription, op)
	rows, err := selectIn[joinRow](ctx, r.s.db, query, ids)
	if err != nil {
		return nil, done(0, err)
	}
	out := make([]model.SubscribedUser, len(rows))
	for i, row := range rows {
		out[i] = row.subscribed()
	}
	return out, done(len(out), nil)
}

func (r subscriptions) EdgesBySubscriberIDs(ctx context.Context, subscriberIDs []string) ([]model.SubscriptionEdge, error) {
	return r.edges(ctx, "subscriber_id", subscriberIDs)
}

func (r subscriptions) EdgesByAuthorIDs(ctx context.Context, authorIDs []string) ([]model.SubscriptionEdge, error) {
	return r.edges(ctx, "author_id", authorIDs)
}

func (r subscriptions) edges(ctx context.Context, column string, ids []string) ([]model.SubscriptionEdge, error) {
	done := r.s.track(ctx, store.EntitySubscription, store.OpFindByForeignKey)
	out, err := selectIn[model.SubscriptionEdge](ctx, r.s.db,
		"SELECT "+edgeColumns+" FROM subscribers_on_authors WHERE "+column+" IN (?)", ids)
	if err != nil {
		return nil, done(0, err)
	}
	return out, done(len(out), nil)
}

func (r subscriptions) Subscribe(ctx context.Context, subscriberID, authorID string) error {
	done := r.s.track(ctx, store.EntitySubscription, store.OpSubscribe)
	_, err := r.s.db.ExecContext(ctx,
		r.s.db.Rebind("INSERT INTO subscribers_on_authors (subscriber_id, author_id) VALUES (?, ?)"), subscriberID, authorID)
	if err != nil {
		return done(0, err)
	}
	return done(1, nil)
}

func (r subscriptions) Unsubscribe(ctx context.Context, subscriberID, authorID string) error {
	done := r.s.track(ctx, store.EntitySubscription, store.OpUnsubscribe)
	res, err := r.s.db.ExecContext(ctx,
		r.s.db.Rebind("DELETE FROM subscribers_on_authors WHERE subscriber_id = ? AND author_id = ?"), subscriberID, authorID)
	if err != nil {
		return done(0, err)
	}
	n, _ := res.RowsAffected()
	return done(int(n), nil)
}
