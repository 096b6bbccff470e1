package loader

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanpama/membergraph/internal/model"
	"github.com/hanpama/membergraph/internal/store"
	"github.com/hanpama/membergraph/internal/store/memstore"
)

type fixture struct {
	st                *memstore.Store
	alice, bob, carol *model.User
	aliceProfile      *model.Profile
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	st := memstore.New()
	mk := func(name string) *model.User {
		u, err := st.Users().Create(ctx, model.CreateUserInput{Name: name, Balance: 1})
		require.NoError(t, err)
		return u
	}
	f := &fixture{st: st, alice: mk("alice"), bob: mk("bob"), carol: mk("carol")}

	p, err := st.Profiles().Create(ctx, model.CreateProfileInput{
		UserID: f.alice.ID, YearOfBirth: 1990, MemberTypeID: model.MemberTypeBasic,
	})
	require.NoError(t, err)
	f.aliceProfile = p

	for _, title := range []string{"one", "two"} {
		_, err := st.Posts().Create(ctx, model.CreatePostInput{AuthorID: f.alice.ID, Title: title})
		require.NoError(t, err)
	}
	require.NoError(t, st.Subscriptions().Subscribe(ctx, f.alice.ID, f.bob.ID))
	require.NoError(t, st.Subscriptions().Subscribe(ctx, f.carol.ID, f.bob.ID))
	require.NoError(t, st.Subscriptions().Subscribe(ctx, f.alice.ID, f.carol.ID))
	st.ResetCalls()
	return f
}

func names(users []*model.User) []string {
	out := make([]string, len(users))
	for i, u := range users {
		out[i] = u.Name
	}
	return out
}

func TestLoaders_UserByID(t *testing.T) {
	f := newFixture(t)
	l := New(f.st)
	ctx := context.Background()

	got, err := l.UserByID.LoadMany(ctx, []string{f.bob.ID, "ghost", f.alice.ID})()
	require.NoError(t, err)
	assert.Equal(t, "bob", got[0].Name)
	assert.Nil(t, got[1])
	assert.Equal(t, "alice", got[2].Name)
	assert.Len(t, f.st.CallsTo(store.EntityUser, store.OpFindByIDs), 1)
}

func TestLoaders_ProfileAndPostsPerKind(t *testing.T) {
	f := newFixture(t)
	l := New(f.st)
	ctx := context.Background()

	pa := l.ProfileByUserID.Load(ctx, f.alice.ID)
	pb := l.ProfileByUserID.Load(ctx, f.bob.ID)
	posts := l.PostsByAuthorID.LoadMany(ctx, []string{f.alice.ID, f.bob.ID})
	l.Dispatch(ctx)

	assert.Empty(t, f.st.CallsTo(store.EntityProfile, store.OpFindByID))
	require.Len(t, f.st.CallsTo(store.EntityProfile, store.OpFindByForeignKey), 1)
	require.Len(t, f.st.CallsTo(store.EntityPost, store.OpFindByForeignKey), 1)

	p, err := pa()
	require.NoError(t, err)
	assert.Equal(t, f.aliceProfile.ID, p.ID)
	p, err = pb()
	require.NoError(t, err)
	assert.Nil(t, p)

	ps, err := posts()
	require.NoError(t, err)
	assert.Len(t, ps[0], 2)
	assert.NotNil(t, ps[1])
	assert.Empty(t, ps[1])
}

func TestLoaders_MemberTypeByID(t *testing.T) {
	f := newFixture(t)
	l := New(f.st)

	got, err := l.MemberTypeByID.LoadMany(context.Background(),
		[]model.MemberTypeID{model.MemberTypeBusiness, model.MemberTypeBasic, model.MemberTypeBusiness})()
	require.NoError(t, err)
	assert.Equal(t, 7.7, got[0].Discount)
	assert.Equal(t, 20, got[1].PostsLimitPerMonth)
	assert.Same(t, got[0], got[2])
	calls := f.st.CallsTo(store.EntityMemberType, store.OpFindByIDs)
	require.Len(t, calls, 1)
	assert.Equal(t, []string{"BUSINESS", "BASIC"}, calls[0].Keys)
}

func TestLoaders_SubscriptionsGroupedByNearEnd(t *testing.T) {
	f := newFixture(t)
	l := New(f.st)
	ctx := context.Background()

	to, err := l.SubscribedToBySubscriberID.LoadMany(ctx, []string{f.alice.ID, f.bob.ID})()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"bob", "carol"}, names(to[0]))
	assert.Empty(t, to[1])

	subs, err := l.SubscribersByAuthorID.LoadMany(ctx, []string{f.bob.ID, f.carol.ID, f.alice.ID})()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"alice", "carol"}, names(subs[0]))
	assert.Equal(t, []string{"alice"}, names(subs[1]))
	assert.Empty(t, subs[2])

	assert.Len(t, f.st.CallsTo(store.EntitySubscription, store.OpAuthorsOf), 1)
	assert.Len(t, f.st.CallsTo(store.EntitySubscription, store.OpSubscribersOf), 1)
}

func TestLoaders_PrimeUsers(t *testing.T) {
	f := newFixture(t)
	l := New(f.st)

	n := l.PrimeUsers(f.alice, nil, f.bob, f.alice)
	assert.Equal(t, 2, n)
	u, err := l.UserByID.Load(context.Background(), f.bob.ID)()
	require.NoError(t, err)
	assert.Same(t, f.bob, u)
	assert.Empty(t, f.st.Calls())
}

func TestFor(t *testing.T) {
	assert.Nil(t, For(context.Background()))
	l := New(memstore.New())
	ctx := WithLoaders(context.Background(), l)
	assert.Same(t, l, For(ctx))
}
