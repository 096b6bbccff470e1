package sqlstore

import (
	"context"
	"database/sql"
	"errors"

	"github.com/hanpama/membergraph/internal/model"
	"github.com/hanpama/membergraph/internal/store"
)

const memberTypeColumns = "id, discount, posts_limit_per_month"

type memberTypes struct{ s *Store }

func (r memberTypes) FindByID(ctx context.Context, id model.MemberTypeID) (*model.MemberType, error) {
	done := r.s.track(ctx, store.EntityMemberType, store.OpFindByID)
	var mt model.MemberType
	err := r.s.db.GetContext(ctx, &mt, r.s.db.Rebind("SELECT "+memberTypeColumns+" FROM member_types WHERE id = ?"), string(id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, done(0, store.NewNotFoundError(store.EntityMemberType, id))
	}
	if err != nil {
		return nil, done(0, err)
	}
	return &mt, done(1, nil)
}

func (r memberTypes) FindByIDs(ctx context.Context, ids []model.MemberTypeID) ([]*model.MemberType, error) {
	done := r.s.track(ctx, store.EntityMemberType, store.OpFindByIDs)
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = string(id)
	}
	out, err := selectIn[*model.MemberType](ctx, r.s.db, "SELECT "+memberTypeColumns+" FROM member_types WHERE id IN (?)", keys)
	if err != nil {
		return nil, done(0, err)
	}
	return out, done(len(out), nil)
}

func (r memberTypes) FindAll(ctx context.Context) ([]*model.MemberType, error) {
	done := r.s.track(ctx, store.EntityMemberType, store.OpFindAll)
	var out []*model.MemberType
	if err := r.s.db.SelectContext(ctx, &out, "SELECT "+memberTypeColumns+" FROM member_types ORDER BY id"); err != nil {
		return nil, done(0, err)
	}
	return out, done(len(out), nil)
}
