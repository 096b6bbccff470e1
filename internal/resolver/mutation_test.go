package resolver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanpama/membergraph/internal/model"
	"github.com/hanpama/membergraph/internal/store"
)

func TestSubscribeThenUnsubscribe_LeavesNoEdge(t *testing.T) {
	h := newHarness(t, nil)
	vars := map[string]any{"user": h.ids["carol"], "author": h.ids["alice"]}

	got := h.data(`mutation($user: UUID!, $author: UUID!) { subscribeTo(userId: $user, authorId: $author) }`, vars)
	assert.JSONEq(t, `{"subscribeTo": "`+h.ids["alice"]+`"}`, got)

	got = h.data(`query($id: UUID!) { user(id: $id) { subscribedToUser { name } } }`, map[string]any{"id": h.ids["alice"]})
	assert.JSONEq(t, `{"user": {"subscribedToUser": [{"name": "Bob"}, {"name": "Carol"}]}}`, got)

	got = h.data(`mutation($user: UUID!, $author: UUID!) { unsubscribeFrom(userId: $user, authorId: $author) }`, vars)
	assert.JSONEq(t, `{"unsubscribeFrom": "`+h.ids["alice"]+`"}`, got)

	edges, err := h.mem.Subscriptions().EdgesByAuthorIDs(context.Background(), []string{h.ids["alice"]})
	require.NoError(t, err)
	for _, e := range edges {
		assert.NotEqual(t, h.ids["carol"], e.SubscriberID)
	}

	// Unsubscribing again is a no-op.
	h.data(`mutation($user: UUID!, $author: UUID!) { unsubscribeFrom(userId: $user, authorId: $author) }`, vars)
}

func TestSubscribe_DuplicateIsConstraintError(t *testing.T) {
	h := newHarness(t, nil)
	res := h.run(`mutation($user: UUID!, $author: UUID!) { subscribeTo(userId: $user, authorId: $author) }`,
		map[string]any{"user": h.ids["alice"], "author": h.ids["bob"]})

	assert.Nil(t, res.Data)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, map[string]any{"code": CodeConstraint}, res.Errors[0].Extensions)
}

func TestUserLifecycle(t *testing.T) {
	h := newHarness(t, nil)

	res := h.run(`mutation { createUser(dto: {name: "Dan", balance: 5}) { id name balance } }`, nil)
	require.Empty(t, res.Errors)
	created := res.Data.(map[string]any)["createUser"].(map[string]any)
	id := created["id"].(string)
	assert.Equal(t, "Dan", created["name"])
	assert.Equal(t, 5.0, created["balance"])

	got := h.data(`mutation($id: UUID!) { changeUser(id: $id, dto: {name: "Daniel"}) { name balance } }`, map[string]any{"id": id})
	assert.JSONEq(t, `{"changeUser": {"name": "Daniel", "balance": 5}}`, got)

	got = h.data(`mutation($id: UUID!) { createPost(dto: {authorId: $id, title: "t", content: "c"}) { title authorId } }`, map[string]any{"id": id})
	assert.JSONEq(t, `{"createPost": {"title": "t", "authorId": "`+id+`"}}`, got)

	got = h.data(`mutation($id: UUID!) { deleteUser(id: $id) }`, map[string]any{"id": id})
	assert.JSONEq(t, `{"deleteUser": "Deleted successfully"}`, got)

	got = h.data(`query($id: UUID!) { user(id: $id) { id } }`, map[string]any{"id": id})
	assert.JSONEq(t, `{"user": null}`, got)
}

func TestProfileLifecycle(t *testing.T) {
	h := newHarness(t, nil)
	carol := map[string]any{"id": h.ids["carol"]}

	res := h.run(`mutation($id: UUID!) {
  createProfile(dto: {userId: $id, isMale: false, yearOfBirth: 2000, memberTypeId: BASIC}) { id memberType { id } }
}`, carol)
	require.Empty(t, res.Errors)
	profileID := res.Data.(map[string]any)["createProfile"].(map[string]any)["id"].(string)

	got := h.data(`mutation($id: UUID!) { changeProfile(id: $id, dto: {memberTypeId: BUSINESS}) { yearOfBirth memberTypeId } }`,
		map[string]any{"id": profileID})
	assert.JSONEq(t, `{"changeProfile": {"yearOfBirth": 2000, "memberTypeId": "BUSINESS"}}`, got)

	// A user has at most one profile.
	res = h.run(`mutation($id: UUID!) {
  createProfile(dto: {userId: $id, isMale: true, yearOfBirth: 1999, memberTypeId: BASIC}) { id }
}`, carol)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, CodeConstraint, res.Errors[0].Extensions["code"])

	got = h.data(`mutation($id: UUID!) { deleteProfile(id: $id) }`, map[string]any{"id": profileID})
	assert.JSONEq(t, `{"deleteProfile": "Deleted successfully"}`, got)
}

func TestPostLifecycle(t *testing.T) {
	h := newHarness(t, nil)

	res := h.run(`query { posts { id title } }`, nil)
	require.Empty(t, res.Errors)
	posts := res.Data.(map[string]any)["posts"].([]any)
	require.Len(t, posts, 2)
	postID := posts[0].(map[string]any)["id"].(string)

	got := h.data(`mutation($id: UUID!) { changePost(id: $id, dto: {content: "edited"}) { title content } }`, map[string]any{"id": postID})
	assert.JSONEq(t, `{"changePost": {"title": "Hello", "content": "edited"}}`, got)

	got = h.data(`query($id: UUID!) { post(id: $id) { content } }`, map[string]any{"id": postID})
	assert.JSONEq(t, `{"post": {"content": "edited"}}`, got)

	got = h.data(`mutation($id: UUID!) { deletePost(id: $id) }`, map[string]any{"id": postID})
	assert.JSONEq(t, `{"deletePost": "Deleted successfully"}`, got)
}

func TestMutationErrors(t *testing.T) {
	h := newHarness(t, nil)
	missing := "00000000-0000-4000-8000-000000000000"

	tests := []struct {
		name  string
		query string
		vars  map[string]any
		code  string
	}{
		{
			name:  "change missing user",
			query: `mutation($id: UUID!) { changeUser(id: $id, dto: {name: "x"}) { id } }`,
			vars:  map[string]any{"id": missing},
			code:  CodeNotFound,
		},
		{
			name:  "delete missing post",
			query: `mutation($id: UUID!) { deletePost(id: $id) }`,
			vars:  map[string]any{"id": missing},
			code:  CodeNotFound,
		},
		{
			name:  "malformed id",
			query: `mutation { deleteUser(id: "not-a-uuid") }`,
			code:  CodeBadUserInput,
		},
		{
			name:  "post for missing author",
			query: `mutation($id: UUID!) { createPost(dto: {authorId: $id, title: "t", content: "c"}) { id } }`,
			vars:  map[string]any{"id": missing},
			code:  CodeConstraint,
		},
		{
			name:  "malformed author id",
			query: `mutation { createPost(dto: {authorId: "42", title: "t", content: "c"}) { id } }`,
			code:  CodeBadUserInput,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := h.run(tt.query, tt.vars)
			assert.Nil(t, res.Data)
			require.Len(t, res.Errors, 1)
			assert.Equal(t, tt.code, res.Errors[0].Extensions["code"])
		})
	}
}

func TestMutations_RunInDocumentOrder(t *testing.T) {
	h := newHarness(t, nil)

	res := h.run(`mutation($a: UUID!, $b: UUID!) {
  first: subscribeTo(userId: $a, authorId: $b)
  second: unsubscribeFrom(userId: $a, authorId: $b)
  third: subscribeTo(userId: $a, authorId: $b)
}`, map[string]any{"a": h.ids["carol"], "b": h.ids["alice"]})
	require.Empty(t, res.Errors)

	var ops []string
	for _, c := range h.mem.Calls() {
		if c.Entity == store.EntitySubscription {
			ops = append(ops, c.Op)
		}
	}
	assert.Equal(t, []string{store.OpSubscribe, store.OpUnsubscribe, store.OpSubscribe}, ops)
}

func TestMutations_SubSelectionSeesStateBeforeLaterFields(t *testing.T) {
	h := newHarness(t, nil)

	got := h.data(`mutation($a: UUID!) {
  first: changeUser(id: $a, dto: {name: "Z"}) { name posts { title } }
  second: deleteUser(id: $a)
}`, map[string]any{"a": h.ids["alice"]})
	assert.JSONEq(t, `{
  "first": {"name": "Z", "posts": [{"title": "Hello"}, {"title": "Again"}]},
  "second": "Deleted successfully"
}`, got)

	users, err := h.mem.Users().FindAll(context.Background(), model.UserInclude{})
	require.NoError(t, err)
	for _, u := range users {
		assert.NotEqual(t, h.ids["alice"], u.ID)
	}
}
