package sqlstore

import (
	"context"
	"database/sql"
	"errors"

	"github.com/hanpama/membergraph/internal/model"
	"github.com/hanpama/membergraph/internal/store"
)

const postColumns = "id, title, content, author_id"

type posts struct{ s *Store }

func (r posts) FindByID(ctx context.Context, id string) (*model.Post, error) {
	done := r.s.track(ctx, store.EntityPost, store.OpFindByID)
	var p model.Post
	err := r.s.db.GetContext(ctx, &p, r.s.db.Rebind("SELECT "+postColumns+" FROM posts WHERE id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, done(0, store.NewNotFoundError(store.EntityPost, id))
	}
	if err != nil {
		return nil, done(0, err)
	}
	return &p, done(1, nil)
}

func (r posts) FindByAuthorIDs(ctx context.Context, authorIDs []string) ([]*model.Post, error) {
	done := r.s.track(ctx, store.EntityPost, store.OpFindByForeignKey)
	out, err := selectIn[*model.Post](ctx, r.s.db, "SELECT "+postColumns+" FROM posts WHERE author_id IN (?)", authorIDs)
	if err != nil {
		return nil, done(0, err)
	}
	return out, done(len(out), nil)
}

func (r posts) FindAll(ctx context.Context) ([]*model.Post, error) {
	done := r.s.track(ctx, store.EntityPost, store.OpFindAll)
	var out []*model.Post
	if err := r.s.db.SelectContext(ctx, &out, "SELECT "+postColumns+" FROM posts"); err != nil {
		return nil, done(0, err)
	}
	return out, done(len(out), nil)
}

func (r posts) Create(ctx context.Context, in model.CreatePostInput) (*model.Post, error) {
	done := r.s.track(ctx, store.EntityPost, store.OpCreate)
	p := &model.Post{ID: r.s.newID(), Title: in.Title, Content: in.Content, AuthorID: in.AuthorID}
	_, err := r.s.db.NamedExecContext(ctx,
		"INSERT INTO posts ("+postColumns+") VALUES (:id, :title, :content, :author_id)", p)
	if err != nil {
		return nil, done(0, err)
	}
	return p, done(1, nil)
}

func (r posts) Update(ctx context.Context, id string, in model.ChangePostInput) (*model.Post, error) {
	done := r.s.track(ctx, store.EntityPost, store.OpUpdate)
	var set setClause
	if in.Title != nil {
		set.add("title", *in.Title)
	}
	if in.Content != nil {
		set.add("content", *in.Content)
	}
	p, err := updateAndGet[model.Post](ctx, r.s.db, "posts", postColumns, id, set)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, done(0, store.NewNotFoundError(store.EntityPost, id))
	}
	if err != nil {
		return nil, done(0, err)
	}
	return p, done(1, nil)
}

func (r posts) Delete(ctx context.Context, id string) error {
	done := r.s.track(ctx, store.EntityPost, store.OpDelete)
	if err := deleteByID(ctx, r.s.db, "posts", store.EntityPost, id); err != nil {
		return done(0, err)
	}
	return done(1, nil)
}
