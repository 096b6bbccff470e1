package store_test

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanpama/membergraph/internal/model"
	"github.com/hanpama/membergraph/internal/store"
	"github.com/hanpama/membergraph/internal/store/memstore"
)

func TestDecodeFixtures(t *testing.T) {
	f, err := os.Open("testdata/fixtures.yaml")
	require.NoError(t, err)
	defer f.Close()

	fx, err := store.DecodeFixtures(f)
	require.NoError(t, err)
	require.Len(t, fx.Users, 3)
	assert.Equal(t, "alice", fx.Users[0].Ref)
	assert.Equal(t, model.MemberTypeBusiness, fx.Users[0].Profile.MemberTypeID)
	assert.Len(t, fx.Users[0].Posts, 2)
	assert.Nil(t, fx.Users[2].Profile)
	assert.Len(t, fx.Subscriptions, 3)
}

func TestDecodeFixtures_Rejects(t *testing.T) {
	cases := map[string]string{
		"unknown field":   "users:\n  - ref: a\n    nickname: x\n",
		"missing ref":     "users:\n  - name: a\n",
		"duplicate ref":   "users:\n  - ref: a\n  - ref: a\n",
		"bad member type": "users:\n  - ref: a\n    profile: {memberTypeId: GOLD}\n",
		"dangling edge":   "users:\n  - ref: a\nsubscriptions:\n  - {subscriber: a, author: b}\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := store.DecodeFixtures(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}

func TestSeed(t *testing.T) {
	f, err := os.Open("testdata/fixtures.yaml")
	require.NoError(t, err)
	defer f.Close()
	fx, err := store.DecodeFixtures(f)
	require.NoError(t, err)

	ctx := context.Background()
	st := memstore.New()
	ids, err := store.Seed(ctx, st, fx)
	require.NoError(t, err)
	require.Len(t, ids, 3)

	users, err := st.Users().FindAll(ctx, model.UserInclude{Profile: true, Posts: true, Subscribers: true})
	require.NoError(t, err)
	require.Len(t, users, 3)

	byID := map[string]*model.User{}
	for _, u := range users {
		byID[u.ID] = u
	}
	alice := byID[ids["alice"]]
	require.NotNil(t, alice)
	posts, err := alice.Edges.PostsOrErr()
	require.NoError(t, err)
	assert.Len(t, posts, 2)

	bob := byID[ids["bob"]]
	subs, err := bob.Edges.SubscribersOrErr()
	require.NoError(t, err)
	assert.ElementsMatch(t, []model.SubscriptionEdge{
		{SubscriberID: ids["alice"], AuthorID: ids["bob"]},
		{SubscriberID: ids["carol"], AuthorID: ids["bob"]},
	}, subs)

	carol := byID[ids["carol"]]
	p, err := carol.Edges.ProfileOrErr()
	require.NoError(t, err)
	assert.Nil(t, p)
}
