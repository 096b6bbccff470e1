package memstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanpama/membergraph/internal/model"
	"github.com/hanpama/membergraph/internal/store"
)

func TestUsers_CRUD(t *testing.T) {
	ctx := context.Background()
	s := New()

	u, err := s.Users().Create(ctx, model.CreateUserInput{Name: "ann", Balance: 3.5})
	require.NoError(t, err)
	require.NotEmpty(t, u.ID)

	name := "anne"
	u2, err := s.Users().Update(ctx, u.ID, model.ChangeUserInput{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "anne", u2.Name)
	assert.Equal(t, 3.5, u2.Balance)

	got, err := s.Users().FindByID(ctx, u.ID, model.UserInclude{})
	require.NoError(t, err)
	assert.Equal(t, "anne", got.Name)
	_, err = got.Edges.ProfileOrErr()
	assert.True(t, model.IsNotLoaded(err))

	_, err = s.Users().FindByID(ctx, "nope", model.UserInclude{})
	assert.True(t, store.IsNotFound(err))
	_, err = s.Users().Update(ctx, "nope", model.ChangeUserInput{Name: &name})
	assert.True(t, store.IsNotFound(err))
	assert.True(t, store.IsNotFound(s.Users().Delete(ctx, "nope")))
}

func TestUsers_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	s := New()
	a, _ := s.Users().Create(ctx, model.CreateUserInput{Name: "a"})
	b, _ := s.Users().Create(ctx, model.CreateUserInput{Name: "b"})
	_, err := s.Profiles().Create(ctx, model.CreateProfileInput{UserID: a.ID, MemberTypeID: model.MemberTypeBasic})
	require.NoError(t, err)
	_, err = s.Posts().Create(ctx, model.CreatePostInput{AuthorID: a.ID, Title: "t"})
	require.NoError(t, err)
	require.NoError(t, s.Subscriptions().Subscribe(ctx, b.ID, a.ID))

	require.NoError(t, s.Users().Delete(ctx, a.ID))

	profiles, _ := s.Profiles().FindAll(ctx)
	posts, _ := s.Posts().FindAll(ctx)
	edges, _ := s.Subscriptions().EdgesBySubscriberIDs(ctx, []string{b.ID})
	assert.Empty(t, profiles)
	assert.Empty(t, posts)
	assert.Empty(t, edges)
}

func TestProfiles_Constraints(t *testing.T) {
	ctx := context.Background()
	s := New()
	u, _ := s.Users().Create(ctx, model.CreateUserInput{Name: "a"})

	_, err := s.Profiles().Create(ctx, model.CreateProfileInput{UserID: "ghost", MemberTypeID: model.MemberTypeBasic})
	assert.True(t, store.IsConstraintError(err))
	_, err = s.Profiles().Create(ctx, model.CreateProfileInput{UserID: u.ID, MemberTypeID: "GOLD"})
	assert.True(t, store.IsConstraintError(err))

	p, err := s.Profiles().Create(ctx, model.CreateProfileInput{UserID: u.ID, MemberTypeID: model.MemberTypeBasic})
	require.NoError(t, err)
	_, err = s.Profiles().Create(ctx, model.CreateProfileInput{UserID: u.ID, MemberTypeID: model.MemberTypeBasic})
	assert.True(t, store.IsConstraintError(err))

	biz := model.MemberTypeBusiness
	p2, err := s.Profiles().Update(ctx, p.ID, model.ChangeProfileInput{MemberTypeID: &biz})
	require.NoError(t, err)
	assert.Equal(t, model.MemberTypeBusiness, p2.MemberTypeID)
}

func TestSubscriptions(t *testing.T) {
	ctx := context.Background()
	s := New()
	a, _ := s.Users().Create(ctx, model.CreateUserInput{Name: "a"})
	b, _ := s.Users().Create(ctx, model.CreateUserInput{Name: "b"})

	require.NoError(t, s.Subscriptions().Subscribe(ctx, a.ID, b.ID))
	assert.True(t, store.IsConstraintError(s.Subscriptions().Subscribe(ctx, a.ID, b.ID)))
	assert.True(t, store.IsConstraintError(s.Subscriptions().Subscribe(ctx, a.ID, "ghost")))

	authors, err := s.Subscriptions().AuthorsOf(ctx, []string{a.ID})
	require.NoError(t, err)
	require.Len(t, authors, 1)
	assert.Equal(t, "b", authors[0].User.Name)

	u, err := s.Users().FindByID(ctx, b.ID, model.UserInclude{Subscribers: true, SubscribedTo: true})
	require.NoError(t, err)
	subs, err := u.Edges.SubscribersOrErr()
	require.NoError(t, err)
	assert.Equal(t, []model.SubscriptionEdge{{SubscriberID: a.ID, AuthorID: b.ID}}, subs)
	to, err := u.Edges.SubscribedToOrErr()
	require.NoError(t, err)
	assert.NotNil(t, to)
	assert.Empty(t, to)

	require.NoError(t, s.Subscriptions().Unsubscribe(ctx, a.ID, b.ID))
	require.NoError(t, s.Subscriptions().Unsubscribe(ctx, a.ID, b.ID))
	authors, _ = s.Subscriptions().AuthorsOf(ctx, []string{a.ID})
	assert.Empty(t, authors)
}

func TestCallLog(t *testing.T) {
	ctx := context.Background()
	s := New()
	_, _ = s.Users().FindByIDs(ctx, []string{"x", "y"})
	_, _ = s.MemberTypes().FindAll(ctx)

	calls := s.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, Call{Entity: store.EntityUser, Op: store.OpFindByIDs, Keys: []string{"x", "y"}}, calls[0])
	assert.Len(t, s.CallsTo(store.EntityMemberType, store.OpFindAll), 1)

	s.ResetCalls()
	assert.Empty(t, s.Calls())
}
