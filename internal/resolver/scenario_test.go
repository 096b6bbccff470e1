package resolver

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanpama/membergraph/internal/language"
	"github.com/hanpama/membergraph/internal/model"
	"github.com/hanpama/membergraph/internal/store"
	"github.com/hanpama/membergraph/internal/store/memstore"
)

func TestUserPostsAndProfile_ThreeBackendCalls(t *testing.T) {
	h := newHarness(t, nil)

	got := h.data(`query($id: UUID!) {
  user(id: $id) { name posts { title } profile { yearOfBirth } }
}`, map[string]any{"id": h.ids["alice"]})

	assert.JSONEq(t, `{"user": {
  "name": "Alice",
  "posts": [{"title": "Hello"}, {"title": "Again"}],
  "profile": {"yearOfBirth": 1991}
}}`, got)
	assert.Len(t, h.mem.Calls(), 3)
	assert.Equal(t, 1, h.calls(store.EntityUser, store.OpFindByID))
	assert.Equal(t, 1, h.calls(store.EntityPost, store.OpFindByForeignKey))
	assert.Equal(t, 1, h.calls(store.EntityProfile, store.OpFindByForeignKey))
}

func TestProfile_FetchedOnceAcrossRootFields(t *testing.T) {
	h := newHarness(t, nil)
	vars := map[string]any{"id": h.ids["bob"]}

	h.data(`query($id: UUID!) { users { id } user(id: $id) { profile { id } } }`, vars)
	assert.Equal(t, 1, h.calls(store.EntityProfile, store.OpFindByForeignKey))

	h.mem.ResetCalls()
	got := h.data(`query($id: UUID!) {
  users { name profile { yearOfBirth } }
  user(id: $id) { profile { isMale } }
}`, vars)
	assert.JSONEq(t, `{
  "users": [
    {"name": "Alice", "profile": {"yearOfBirth": 1991}},
    {"name": "Bob", "profile": {"yearOfBirth": 1985}},
    {"name": "Carol", "profile": null}
  ],
  "user": {"profile": {"isMale": true}}
}`, got)
	assert.Zero(t, h.calls(store.EntityProfile, store.OpFindByForeignKey))
	assert.Equal(t, 1, h.calls(store.EntityUser, store.OpFindAll))
}

func TestSubscribedTo_ServedFromUserCache(t *testing.T) {
	h := newHarness(t, nil)
	vars := map[string]any{"id": h.ids["alice"]}

	got := h.data(`query($id: UUID!) {
  users { id }
  user(id: $id) { userSubscribedTo { name } subscribedToUser { name } }
}`, vars)
	assert.JSONEq(t, `{"users": [{"id": "`+h.ids["alice"]+`"}, {"id": "`+h.ids["bob"]+`"}, {"id": "`+h.ids["carol"]+`"}],
"user": {"userSubscribedTo": [{"name": "Bob"}], "subscribedToUser": [{"name": "Bob"}]}}`, got)
	assert.Zero(t, h.calls(store.EntityUser, store.OpFindByIDs))
	assert.Equal(t, 1, h.calls(store.EntityUser, store.OpFindByID))
}

func TestSubscribedTo_BatchesUncachedAuthors(t *testing.T) {
	h := newHarness(t, nil)

	got := h.data(`query($id: UUID!) { user(id: $id) { subscribedToUser { name } } }`,
		map[string]any{"id": h.ids["bob"]})
	assert.JSONEq(t, `{"user": {"subscribedToUser": [{"name": "Alice"}, {"name": "Carol"}]}}`, got)

	calls := h.mem.CallsTo(store.EntityUser, store.OpFindByIDs)
	require.Len(t, calls, 1)
	assert.ElementsMatch(t, []string{h.ids["alice"], h.ids["carol"]}, calls[0].Keys)
	assert.Equal(t, 1, h.calls(store.EntityUser, store.OpFindByID))
}

func TestSubscriptionLoaders_WithoutEmbeddedEdges(t *testing.T) {
	h := newHarness(t, nil)

	// Only the root user embeds edges. Bob, loaded through the user cache,
	// has none, so his relations go through the group loaders.
	got := h.data(`query($id: UUID!) {
  user(id: $id) { userSubscribedTo { name userSubscribedTo { name } subscribedToUser { name } } }
}`, map[string]any{"id": h.ids["carol"]})
	assert.JSONEq(t, `{"user": {"userSubscribedTo": [
  {"name": "Bob", "userSubscribedTo": [{"name": "Alice"}], "subscribedToUser": [{"name": "Alice"}, {"name": "Carol"}]}
]}}`, got)
	assert.Len(t, h.mem.CallsTo(store.EntitySubscription, store.OpAuthorsOf), 1)
	assert.Len(t, h.mem.CallsTo(store.EntitySubscription, store.OpSubscribersOf), 1)
}

// lossyUsers hides rows from the batch lookup, as a lagging replica would.
// Rows in gone are hidden from every lookup.
type lossyUsers struct {
	store.UserRepository
	hidden map[string]bool
	gone   map[string]bool
}

func (u lossyUsers) FindByIDs(ctx context.Context, ids []string) ([]*model.User, error) {
	users, err := u.UserRepository.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := users[:0]
	for _, x := range users {
		if !u.hidden[x.ID] && !u.gone[x.ID] {
			out = append(out, x)
		}
	}
	return out, nil
}

func (u lossyUsers) FindByID(ctx context.Context, id string, include model.UserInclude) (*model.User, error) {
	if u.gone[id] {
		return nil, store.NewNotFoundError(store.EntityUser, id)
	}
	return u.UserRepository.FindByID(ctx, id, include)
}

type lossyStore struct {
	*memstore.Store
	users lossyUsers
}

func (s lossyStore) Users() store.UserRepository { return s.users }

func TestSubscribedTo_DirectFallbackPrimesCache(t *testing.T) {
	hidden := map[string]bool{}
	h := newHarness(t, func(m *memstore.Store) store.Store {
		return lossyStore{Store: m, users: lossyUsers{UserRepository: m.Users(), hidden: hidden}}
	})
	hidden[h.ids["bob"]] = true

	got := h.data(`query($id: UUID!) {
  user(id: $id) { userSubscribedTo { name userSubscribedTo { name } } }
}`, map[string]any{"id": h.ids["alice"]})

	assert.JSONEq(t, `{"user": {"userSubscribedTo": [{"name": "Bob", "userSubscribedTo": [{"name": "Alice"}]}]}}`, got)
	assert.Equal(t, 1, h.calls(store.EntityUser, store.OpFindByIDs))
	// Root lookup of alice plus the direct fetch of bob. Bob's own edge back
	// to alice is served from the cache.
	assert.Equal(t, 2, h.calls(store.EntityUser, store.OpFindByID))
}

func TestSubscribedTo_DropsUsersMissingEverywhere(t *testing.T) {
	gone := map[string]bool{}
	h := newHarness(t, func(m *memstore.Store) store.Store {
		return lossyStore{Store: m, users: lossyUsers{UserRepository: m.Users(), gone: gone}}
	})
	gone[h.ids["bob"]] = true

	got := h.data(`query($id: UUID!) { user(id: $id) { name userSubscribedTo { name } } }`,
		map[string]any{"id": h.ids["alice"]})
	assert.JSONEq(t, `{"user": {"name": "Alice", "userSubscribedTo": []}}`, got)
}

func TestMemberTypes_BatchedAndPrimed(t *testing.T) {
	h := newHarness(t, nil)

	got := h.data(`{ users { profile { memberType { id discount postsLimitPerMonth } } } }`, nil)
	assert.JSONEq(t, `{"users": [
  {"profile": {"memberType": {"id": "BUSINESS", "discount": 7.7, "postsLimitPerMonth": 100}}},
  {"profile": {"memberType": {"id": "BASIC", "discount": 2.3, "postsLimitPerMonth": 20}}},
  {"profile": null}
]}`, got)
	calls := h.mem.CallsTo(store.EntityMemberType, store.OpFindByIDs)
	require.Len(t, calls, 1)
	assert.ElementsMatch(t, []string{"BUSINESS", "BASIC"}, calls[0].Keys)

	h.mem.ResetCalls()
	got = h.data(`{ memberTypes { id } users { profile { memberType { discount } } } }`, nil)
	assert.JSONEq(t, `{"memberTypes": [{"id": "BASIC"}, {"id": "BUSINESS"}], "users": [
  {"profile": {"memberType": {"discount": 7.7}}},
  {"profile": {"memberType": {"discount": 2.3}}},
  {"profile": null}
]}`, got)
	assert.Zero(t, h.calls(store.EntityMemberType, store.OpFindByIDs))
}

func TestPosts_OneBatchForAllAuthors(t *testing.T) {
	h := newHarness(t, nil)

	got := h.data(`{ users { name posts { title } } }`, nil)
	assert.JSONEq(t, `{"users": [
  {"name": "Alice", "posts": [{"title": "Hello"}, {"title": "Again"}]},
  {"name": "Bob", "posts": []},
  {"name": "Carol", "posts": []}
]}`, got)
	calls := h.mem.CallsTo(store.EntityPost, store.OpFindByForeignKey)
	require.Len(t, calls, 1)
	assert.Len(t, calls[0].Keys, 3)
}

func TestRootLookups_MissingIsNull(t *testing.T) {
	h := newHarness(t, nil)
	missing := map[string]any{"id": "00000000-0000-4000-8000-000000000000"}

	assert.JSONEq(t, `{"user": null}`, h.data(`query($id: UUID!) { user(id: $id) { id } }`, missing))
	assert.JSONEq(t, `{"post": null}`, h.data(`query($id: UUID!) { post(id: $id) { id } }`, missing))
	assert.JSONEq(t, `{"profile": null}`, h.data(`query($id: UUID!) { profile(id: $id) { id } }`, missing))
}

func TestProfiles_PrimeProfileCache(t *testing.T) {
	h := newHarness(t, nil)

	got := h.data(`query($id: UUID!) { profiles { yearOfBirth } user(id: $id) { profile { yearOfBirth } } }`,
		map[string]any{"id": h.ids["bob"]})
	assert.JSONEq(t, `{"profiles": [{"yearOfBirth": 1991}, {"yearOfBirth": 1985}], "user": {"profile": {"yearOfBirth": 1985}}}`, got)
	assert.Zero(t, h.calls(store.EntityProfile, store.OpFindByForeignKey))
}

type failingPosts struct {
	store.PostRepository
	err error
}

func (p failingPosts) FindByAuthorIDs(context.Context, []string) ([]*model.Post, error) {
	return nil, p.err
}

type failingStore struct {
	*memstore.Store
	posts failingPosts
}

func (s failingStore) Posts() store.PostRepository { return s.posts }

func TestBackendFailure_NullsNearestNullableAncestor(t *testing.T) {
	boom := errors.New("connection reset")
	h := newHarness(t, func(m *memstore.Store) store.Store {
		return failingStore{Store: m, posts: failingPosts{PostRepository: m.Posts(), err: boom}}
	})

	res := h.run(`query($id: UUID!) {
  user(id: $id) { name posts { title } }
  memberType(id: BASIC) { discount }
}`, map[string]any{"id": h.ids["alice"]})

	require.Len(t, res.Errors, 1)
	assert.Equal(t, "connection reset", res.Errors[0].Message)
	assert.Equal(t, map[string]any{"code": CodeInternal}, res.Errors[0].Extensions)
	data := res.Data.(map[string]any)
	assert.Nil(t, data["user"])
	assert.Equal(t, map[string]any{"discount": 2.3}, data["memberType"])
}

func TestBatchResolveAsync_RequiresScope(t *testing.T) {
	h := newHarness(t, nil)
	doc, errs := language.ParseAndValidate(h.schema, `{ memberTypes { id } }`)
	require.Empty(t, errs)

	res := h.exec.ExecuteRequest(context.Background(), doc, "", nil, nil)
	assert.Nil(t, res.Data)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0].Message, "no loaders in context")
}
