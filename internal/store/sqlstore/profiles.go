package sqlstore

import (
	"context"
	"database/sql"
	"errors"

	"github.com/hanpama/membergraph/internal/model"
	"github.com/hanpama/membergraph/internal/store"
)

const profileColumns = "id, is_male, year_of_birth, user_id, member_type_id"

type profiles struct{ s *Store }

func (r profiles) FindByID(ctx context.Context, id string) (*model.Profile, error) {
	done := r.s.track(ctx, store.EntityProfile, store.OpFindByID)
	var p model.Profile
	err := r.s.db.GetContext(ctx, &p, r.s.db.Rebind("SELECT "+profileColumns+" FROM profiles WHERE id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, done(0, store.NewNotFoundError(store.EntityProfile, id))
	}
	if err != nil {
		return nil, done(0, err)
	}
	return &p, done(1, nil)
}

func (r profiles) FindByUserIDs(ctx context.Context, userIDs []string) ([]*model.Profile, error) {
	done := r.s.track(ctx, store.EntityProfile, store.OpFindByForeignKey)
	out, err := selectIn[*model.Profile](ctx, r.s.db, "SELECT "+profileColumns+" FROM profiles WHERE user_id IN (?)", userIDs)
	if err != nil {
		return nil, done(0, err)
	}
	return out, done(len(out), nil)
}

func (r profiles) FindAll(ctx context.Context) ([]*model.Profile, error) {
	done := r.s.track(ctx, store.EntityProfile, store.OpFindAll)
	var out []*model.Profile
	if err := r.s.db.SelectContext(ctx, &out, "SELECT "+profileColumns+" FROM profiles"); err != nil {
		return nil, done(0, err)
	}
	return out, done(len(out), nil)
}

func (r profiles) Create(ctx context.Context, in model.CreateProfileInput) (*model.Profile, error) {
	done := r.s.track(ctx, store.EntityProfile, store.OpCreate)
	p := &model.Profile{
		ID:           r.s.newID(),
		IsMale:       in.IsMale,
		YearOfBirth:  in.YearOfBirth,
		UserID:       in.UserID,
		MemberTypeID: in.MemberTypeID,
	}
	_, err := r.s.db.NamedExecContext(ctx, `INSERT INTO profiles (`+profileColumns+`)
VALUES (:id, :is_male, :year_of_birth, :user_id, :member_type_id)`, p)
	if err != nil {
		return nil, done(0, err)
	}
	return p, done(1, nil)
}

func (r profiles) Update(ctx context.Context, id string, in model.ChangeProfileInput) (*model.Profile, error) {
	done := r.s.track(ctx, store.EntityProfile, store.OpUpdate)
	var set setClause
	if in.IsMale != nil {
		set.add("is_male", *in.IsMale)
	}
	if in.YearOfBirth != nil {
		set.add("year_of_birth", *in.YearOfBirth)
	}
	if in.MemberTypeID != nil {
		set.add("member_type_id", string(*in.MemberTypeID))
	}
	p, err := updateAndGet[model.Profile](ctx, r.s.db, "profiles", profileColumns, id, set)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, done(0, store.NewNotFoundError(store.EntityProfile, id))
	}
	if err != nil {
		return nil, done(0, err)
	}
	return p, done(1, nil)
}

func (r profiles) Delete(ctx context.Context, id string) error {
	done := r.s.track(ctx, store.EntityProfile, store.OpDelete)
	if err := deleteByID(ctx, r.s.db, "profiles", store.EntityProfile, id); err != nil {
		return done(0, err)
	}
	return done(1, nil)
}
