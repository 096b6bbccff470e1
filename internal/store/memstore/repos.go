package memstore

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/hanpama/membergraph/internal/model"
	"github.com/hanpama/membergraph/internal/store"
)

type users struct{ s *Store }

func (r users) FindByID(ctx context.Context, id string, include model.UserInclude) (*model.User, error) {
	start := time.Now()
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(store.EntityUser, store.OpFindByID, []string{id})
	i := s.userIndex(id)
	if i < 0 {
		err := store.NewNotFoundError(store.EntityUser, id)
		observe(ctx, store.EntityUser, store.OpFindByID, start, 0, err)
		return nil, err
	}
	u := copyUser(s.users[i])
	s.attach([]*model.User{u}, include)
	observe(ctx, store.EntityUser, store.OpFindByID, start, 1, nil)
	return u, nil
}

func (r users) FindByIDs(ctx context.Context, ids []string) ([]*model.User, error) {
	start := time.Now()
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(store.EntityUser, store.OpFindByIDs, ids)
	var out []*model.User
	for _, u := range s.users {
		if contains(ids, u.ID) {
			out = append(out, copyUser(u))
		}
	}
	observe(ctx, store.EntityUser, store.OpFindByIDs, start, len(out), nil)
	return out, nil
}

func (r users) FindAll(ctx context.Context, include model.UserInclude) ([]*model.User, error) {
	start := time.Now()
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(store.EntityUser, store.OpFindAll, nil)
	out := make([]*model.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, copyUser(u))
	}
	s.attach(out, include)
	observe(ctx, store.EntityUser, store.OpFindAll, start, len(out), nil)
	return out, nil
}

func (r users) Create(ctx context.Context, in model.CreateUserInput) (*model.User, error) {
	start := time.Now()
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(store.EntityUser, store.OpCreate, nil)
	u := &model.User{ID: s.newID(), Name: in.Name, Balance: in.Balance}
	s.users = append(s.users, u)
	observe(ctx, store.EntityUser, store.OpCreate, start, 1, nil)
	return copyUser(u), nil
}

func (r users) Update(ctx context.Context, id string, in model.ChangeUserInput) (*model.User, error) {
	start := time.Now()
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(store.EntityUser, store.OpUpdate, []string{id})
	i := s.userIndex(id)
	if i < 0 {
		err := store.NewNotFoundError(store.EntityUser, id)
		observe(ctx, store.EntityUser, store.OpUpdate, start, 0, err)
		return nil, err
	}
	u := s.users[i]
	if in.Name != nil {
		u.Name = *in.Name
	}
	if in.Balance != nil {
		u.Balance = *in.Balance
	}
	observe(ctx, store.EntityUser, store.OpUpdate, start, 1, nil)
	return copyUser(u), nil
}

// Delete removes the user together with its profile, posts and edges.
func (r users) Delete(ctx context.Context, id string) error {
	start := time.Now()
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(store.EntityUser, store.OpDelete, []string{id})
	i := s.userIndex(id)
	if i < 0 {
		err := store.NewNotFoundError(store.EntityUser, id)
		observe(ctx, store.EntityUser, store.OpDelete, start, 0, err)
		return err
	}
	s.users = slices.Delete(s.users, i, i+1)
	s.profiles = slices.DeleteFunc(s.profiles, func(p *model.Profile) bool { return p.UserID == id })
	s.posts = slices.DeleteFunc(s.posts, func(p *model.Post) bool { return p.AuthorID == id })
	s.edges = slices.DeleteFunc(s.edges, func(e model.SubscriptionEdge) bool {
		return e.SubscriberID == id || e.AuthorID == id
	})
	observe(ctx, store.EntityUser, store.OpDelete, start, 1, nil)
	return nil
}

type profiles struct{ s *Store }

func (r profiles) index(id string) int {
	return slices.IndexFunc(r.s.profiles, func(p *model.Profile) bool { return p.ID == id })
}

func (r profiles) FindByID(ctx context.Context, id string) (*model.Profile, error) {
	start := time.Now()
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(store.EntityProfile, store.OpFindByID, []string{id})
	i := r.index(id)
	if i < 0 {
		err := store.NewNotFoundError(store.EntityProfile, id)
		observe(ctx, store.EntityProfile, store.OpFindByID, start, 0, err)
		return nil, err
	}
	cp := *s.profiles[i]
	observe(ctx, store.EntityProfile, store.OpFindByID, start, 1, nil)
	return &cp, nil
}

func (r profiles) FindByUserIDs(ctx context.Context, userIDs []string) ([]*model.Profile, error) {
	start := time.Now()
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(store.EntityProfile, store.OpFindByForeignKey, userIDs)
	var out []*model.Profile
	for _, p := range s.profiles {
		if contains(userIDs, p.UserID) {
			cp := *p
			out = append(out, &cp)
		}
	}
	observe(ctx, store.EntityProfile, store.OpFindByForeignKey, start, len(out), nil)
	return out, nil
}

func (r profiles) FindAll(ctx context.Context) ([]*model.Profile, error) {
	start := time.Now()
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(store.EntityProfile, store.OpFindAll, nil)
	out := make([]*model.Profile, 0, len(s.profiles))
	for _, p := range s.profiles {
		cp := *p
		out = append(out, &cp)
	}
	observe(ctx, store.EntityProfile, store.OpFindAll, start, len(out), nil)
	return out, nil
}

func (r profiles) Create(ctx context.Context, in model.CreateProfileInput) (*model.Profile, error) {
	start := time.Now()
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(store.EntityProfile, store.OpCreate, []string{in.UserID})
	var err error
	switch {
	case !s.hasUser(in.UserID):
		err = store.NewConstraintError(fmt.Sprintf("user %s does not exist", in.UserID), nil)
	case !s.hasMemberType(in.MemberTypeID):
		err = store.NewConstraintError(fmt.Sprintf("member type %s does not exist", in.MemberTypeID), nil)
	case slices.ContainsFunc(s.profiles, func(p *model.Profile) bool { return p.UserID == in.UserID }):
		err = store.NewConstraintError(fmt.Sprintf("user %s already has a profile", in.UserID), nil)
	}
	if err != nil {
		observe(ctx, store.EntityProfile, store.OpCreate, start, 0, err)
		return nil, err
	}
	p := &model.Profile{
		ID:           s.newID(),
		IsMale:       in.IsMale,
		YearOfBirth:  in.YearOfBirth,
		UserID:       in.UserID,
		MemberTypeID: in.MemberTypeID,
	}
	s.profiles = append(s.profiles, p)
	cp := *p
	observe(ctx, store.EntityProfile, store.OpCreate, start, 1, nil)
	return &cp, nil
}

func (r profiles) Update(ctx context.Context, id string, in model.ChangeProfileInput) (*model.Profile, error) {
	start := time.Now()
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(store.EntityProfile, store.OpUpdate, []string{id})
	i := r.index(id)
	if i < 0 {
		err := store.NewNotFoundError(store.EntityProfile, id)
		observe(ctx, store.EntityProfile, store.OpUpdate, start, 0, err)
		return nil, err
	}
	if in.MemberTypeID != nil && !s.hasMemberType(*in.MemberTypeID) {
		err := store.NewConstraintError(fmt.Sprintf("member type %s does not exist", *in.MemberTypeID), nil)
		observe(ctx, store.EntityProfile, store.OpUpdate, start, 0, err)
		return nil, err
	}
	p := s.profiles[i]
	if in.IsMale != nil {
		p.IsMale = *in.IsMale
	}
	if in.YearOfBirth != nil {
		p.YearOfBirth = *in.YearOfBirth
	}
	if in.MemberTypeID != nil {
		p.MemberTypeID = *in.MemberTypeID
	}
	cp := *p
	observe(ctx, store.EntityProfile, store.OpUpdate, start, 1, nil)
	return &cp, nil
}

func (r profiles) Delete(ctx context.Context, id string) error {
	start := time.Now()
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(store.EntityProfile, store.OpDelete, []string{id})
	i := r.index(id)
	if i < 0 {
		err := store.NewNotFoundError(store.EntityProfile, id)
		observe(ctx, store.EntityProfile, store.OpDelete, start, 0, err)
		return err
	}
	s.profiles = slices.Delete(s.profiles, i, i+1)
	observe(ctx, store.EntityProfile, store.OpDelete, start, 1, nil)
	return nil
}

type posts struct{ s *Store }

func (r posts) index(id string) int {
	return slices.IndexFunc(r.s.posts, func(p *model.Post) bool { return p.ID == id })
}

func (r posts) FindByID(ctx context.Context, id string) (*model.Post, error) {
	start := time.Now()
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(store.EntityPost, store.OpFindByID, []string{id})
	i := r.index(id)
	if i < 0 {
		err := store.NewNotFoundError(store.EntityPost, id)
		observe(ctx, store.EntityPost, store.OpFindByID, start, 0, err)
		return nil, err
	}
	cp := *s.posts[i]
	observe(ctx, store.EntityPost, store.OpFindByID, start, 1, nil)
	return &cp, nil
}

func (r posts) FindByAuthorIDs(ctx context.Context, authorIDs []string) ([]*model.Post, error) {
	start := time.Now()
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(store.EntityPost, store.OpFindByForeignKey, authorIDs)
	var out []*model.Post
	for _, p := range s.posts {
		if contains(authorIDs, p.AuthorID) {
			cp := *p
			out = append(out, &cp)
		}
	}
	observe(ctx, store.EntityPost, store.OpFindByForeignKey, start, len(out), nil)
	return out, nil
}

func (r posts) FindAll(ctx context.Context) ([]*model.Post, error) {
	start := time.Now()
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(store.EntityPost, store.OpFindAll, nil)
	out := make([]*model.Post, 0, len(s.posts))
	for _, p := range s.posts {
		cp := *p
		out = append(out, &cp)
	}
	observe(ctx, store.EntityPost, store.OpFindAll, start, len(out), nil)
	return out, nil
}

func (r posts) Create(ctx context.Context, in model.CreatePostInput) (*model.Post, error) {
	start := time.Now()
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(store.EntityPost, store.OpCreate, []string{in.AuthorID})
	if !s.hasUser(in.AuthorID) {
		err := store.NewConstraintError(fmt.Sprintf("user %s does not exist", in.AuthorID), nil)
		observe(ctx, store.EntityPost, store.OpCreate, start, 0, err)
		return nil, err
	}
	p := &model.Post{ID: s.newID(), Title: in.Title, Content: in.Content, AuthorID: in.AuthorID}
	s.posts = append(s.posts, p)
	cp := *p
	observe(ctx, store.EntityPost, store.OpCreate, start, 1, nil)
	return &cp, nil
}

func (r posts) Update(ctx context.Context, id string, in model.ChangePostInput) (*model.Post, error) {
	start := time.Now()
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(store.EntityPost, store.OpUpdate, []string{id})
	i := r.index(id)
	if i < 0 {
		err := store.NewNotFoundError(store.EntityPost, id)
		observe(ctx, store.EntityPost, store.OpUpdate, start, 0, err)
		return nil, err
	}
	p := s.posts[i]
	if in.Title != nil {
		p.Title = *in.Title
	}
	if in.Content != nil {
		p.Content = *in.Content
	}
	cp := *p
	observe(ctx, store.EntityPost, store.OpUpdate, start, 1, nil)
	return &cp, nil
}

func (r posts) Delete(ctx context.Context, id string) error {
	start := time.Now()
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(store.EntityPost, store.OpDelete, []string{id})
	i := r.index(id)
	if i < 0 {
		err := store.NewNotFoundError(store.EntityPost, id)
		observe(ctx, store.EntityPost, store.OpDelete, start, 0, err)
		return err
	}
	s.posts = slices.Delete(s.posts, i, i+1)
	observe(ctx, store.EntityPost, store.OpDelete, start, 1, nil)
	return nil
}

type memberTypes struct{ s *Store }

func (r memberTypes) FindByID(ctx context.Context, id model.MemberTypeID) (*model.MemberType, error) {
	start := time.Now()
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(store.EntityMemberType, store.OpFindByID, []string{string(id)})
	for _, mt := range s.memberTypes {
		if mt.ID == id {
			cp := *mt
			observe(ctx, store.EntityMemberType, store.OpFindByID, start, 1, nil)
			return &cp, nil
		}
	}
	err := store.NewNotFoundError(store.EntityMemberType, id)
	observe(ctx, store.EntityMemberType, store.OpFindByID, start, 0, err)
	return nil, err
}

func (r memberTypes) FindByIDs(ctx context.Context, ids []model.MemberTypeID) ([]*model.MemberType, error) {
	start := time.Now()
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = string(id)
	}
	s.record(store.EntityMemberType, store.OpFindByIDs, keys)
	var out []*model.MemberType
	for _, mt := range s.memberTypes {
		if slices.Contains(ids, mt.ID) {
			cp := *mt
			out = append(out, &cp)
		}
	}
	observe(ctx, store.EntityMemberType, store.OpFindByIDs, start, len(out), nil)
	return out, nil
}

func (r memberTypes) FindAll(ctx context.Context) ([]*model.MemberType, error) {
	start := time.Now()
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(store.EntityMemberType, store.OpFindAll, nil)
	out := make([]*model.MemberType, 0, len(s.memberTypes))
	for _, mt := range s.memberTypes {
		cp := *mt
		out = append(out, &cp)
	}
	observe(ctx, store.EntityMemberType, store.OpFindAll, start, len(out), nil)
	return out, nil
}

type subscriptions struct{ s *Store }

func (r subscriptions) AuthorsOf(ctx context.Context, subscriberIDs []string) ([]model.SubscribedUser, error) {
	return r.join(ctx, store.OpAuthorsOf, subscriberIDs,
		func(e model.SubscriptionEdge) string { return e.SubscriberID },
		func(e model.SubscriptionEdge) string { return e.AuthorID })
}

func (r subscriptions) SubscribersOf(ctx context.Context, authorIDs []string) ([]model.SubscribedUser, error) {
	return r.join(ctx, store.OpSubscribersOf, authorIDs,
		func(e model.SubscriptionEdge) string { return e.AuthorID },
		func(e model.SubscriptionEdge) string { return e.SubscriberID })
}

func (r subscriptions) join(ctx context.Context, op string, ids []string, near, far func(model.SubscriptionEdge) string) ([]model.SubscribedUser, error) {
	start := time.Now()
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(store.EntitySubscription, op, ids)
	var out []model.SubscribedUser
	for _, e := range s.edges {
		if !contains(ids, near(e)) {
			continue
		}
		if i := s.userIndex(far(e)); i >= 0 {
			out = append(out, model.SubscribedUser{Edge: e, User: copyUser(s.users[i])})
		}
	}
	observe(ctx, store.EntitySubscription, op, start, len(out), nil)
	return out, nil
}

func (r subscriptions) EdgesBySubscriberIDs(ctx context.Context, subscriberIDs []string) ([]model.SubscriptionEdge, error) {
	return r.edges(ctx, subscriberIDs, func(e model.SubscriptionEdge) string { return e.SubscriberID })
}

func (r subscriptions) EdgesByAuthorIDs(ctx context.Context, authorIDs []string) ([]model.SubscriptionEdge, error) {
	return r.edges(ctx, authorIDs, func(e model.SubscriptionEdge) string { return e.AuthorID })
}

func (r subscriptions) edges(ctx context.Context, ids []string, key func(model.SubscriptionEdge) string) ([]model.SubscriptionEdge, error) {
	start := time.Now()
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(store.EntitySubscription, store.OpFindByForeignKey, ids)
	var out []model.SubscriptionEdge
	for _, e := range s.edges {
		if contains(ids, key(e)) {
			out = append(out, e)
		}
	}
	observe(ctx, store.EntitySubscription, store.OpFindByForeignKey, start, len(out), nil)
	return out, nil
}

func (r subscriptions) Subscribe(ctx context.Context, subscriberID, authorID string) error {
	start := time.Now()
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(store.EntitySubscription, store.OpSubscribe, []string{subscriberID, authorID})
	edge := model.SubscriptionEdge{SubscriberID: subscriberID, AuthorID: authorID}
	var err error
	switch {
	case !s.hasUser(subscriberID):
		err = store.NewConstraintError(fmt.Sprintf("user %s does not exist", subscriberID), nil)
	case !s.hasUser(authorID):
		err = store.NewConstraintError(fmt.Sprintf("user %s does not exist", authorID), nil)
	case slices.Contains(s.edges, edge):
		err = store.NewConstraintError(fmt.Sprintf("%s already subscribed to %s", subscriberID, authorID), nil)
	}
	if err != nil {
		observe(ctx, store.EntitySubscription, store.OpSubscribe, start, 0, err)
		return err
	}
	s.edges = append(s.edges, edge)
	observe(ctx, store.EntitySubscription, store.OpSubscribe, start, 1, nil)
	return nil
}

func (r subscriptions) Unsubscribe(ctx context.Context, subscriberID, authorID string) error {
	start := time.Now()
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(store.EntitySubscription, store.OpUnsubscribe, []string{subscriberID, authorID})
	edge := model.SubscriptionEdge{SubscriberID: subscriberID, AuthorID: authorID}
	before := len(s.edges)
	s.edges = slices.DeleteFunc(s.edges, func(e model.SubscriptionEdge) bool { return e == edge })
	observe(ctx, store.EntitySubscription, store.OpUnsubscribe, start, before-len(s.edges), nil)
	return nil
}
