package sqlstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanpama/membergraph/internal/model"
	"github.com/hanpama/membergraph/internal/store"
)

// openSQLite returns a migrated store backed by a private in-memory database.
func openSQLite(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared&_pragma=foreign_keys(1)"
	s, err := Open(ctx, SQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(ctx))
	return s
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), "oracle", "")
	assert.ErrorContains(t, err, "unsupported driver")
}

func TestSQLiteDSN(t *testing.T) {
	cases := map[string]string{
		"file:a.db":                            "file:a.db?_pragma=foreign_keys(1)",
		"file:a.db?mode=memory":                "file:a.db?mode=memory&_pragma=foreign_keys(1)",
		"file:a.db?_pragma=foreign_keys(0)":    "file:a.db?_pragma=foreign_keys(0)",
		"file:a.db?_pragma=busy_timeout(5000)": "file:a.db?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)",
	}
	for in, want := range cases {
		assert.Equal(t, want, sqliteDSN(in), in)
	}
}

func TestOpen_ForeignKeysOnEveryConnection(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, SQLite, "file:"+filepath.Join(t.TempDir(), "fk.db"))
	require.NoError(t, err)
	defer s.Close()
	// No idle connections: each query below runs on a freshly opened one.
	s.db.SetMaxIdleConns(0)

	for range 2 {
		var on int
		require.NoError(t, s.db.GetContext(ctx, &on, "PRAGMA foreign_keys"))
		assert.Equal(t, 1, on)
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	s := openSQLite(t)
	require.NoError(t, s.Migrate(context.Background()))

	mts, err := s.MemberTypes().FindAll(context.Background())
	require.NoError(t, err)
	require.Len(t, mts, 2)
	assert.Equal(t, &model.MemberType{ID: model.MemberTypeBasic, Discount: 2.3, PostsLimitPerMonth: 20}, mts[0])
	assert.Equal(t, &model.MemberType{ID: model.MemberTypeBusiness, Discount: 7.7, PostsLimitPerMonth: 100}, mts[1])
}

func TestUsers_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openSQLite(t)

	u, err := s.Users().Create(ctx, model.CreateUserInput{Name: "ann", Balance: 12.25})
	require.NoError(t, err)

	got, err := s.Users().FindByID(ctx, u.ID, model.UserInclude{})
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "ann", got.Name)
	assert.Equal(t, 12.25, got.Balance)

	bal := 1.5
	upd, err := s.Users().Update(ctx, u.ID, model.ChangeUserInput{Balance: &bal})
	require.NoError(t, err)
	assert.Equal(t, "ann", upd.Name)
	assert.Equal(t, 1.5, upd.Balance)

	_, err = s.Users().Update(ctx, "missing", model.ChangeUserInput{Balance: &bal})
	assert.True(t, store.IsNotFound(err))
	_, err = s.Users().FindByID(ctx, "missing", model.UserInclude{})
	assert.True(t, store.IsNotFound(err))

	many, err := s.Users().FindByIDs(ctx, []string{u.ID, "missing"})
	require.NoError(t, err)
	require.Len(t, many, 1)

	none, err := s.Users().FindByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestUsers_Include(t *testing.T) {
	ctx := context.Background()
	s := openSQLite(t)
	a, _ := s.Users().Create(ctx, model.CreateUserInput{Name: "a"})
	b, _ := s.Users().Create(ctx, model.CreateUserInput{Name: "b"})
	_, err := s.Profiles().Create(ctx, model.CreateProfileInput{UserID: a.ID, IsMale: true, YearOfBirth: 1980, MemberTypeID: model.MemberTypeBusiness})
	require.NoError(t, err)
	_, err = s.Posts().Create(ctx, model.CreatePostInput{AuthorID: a.ID, Title: "t", Content: "c"})
	require.NoError(t, err)
	require.NoError(t, s.Subscriptions().Subscribe(ctx, b.ID, a.ID))

	all, err := s.Users().FindAll(ctx, model.UserInclude{Profile: true, Posts: true, SubscribedTo: true, Subscribers: true})
	require.NoError(t, err)
	require.Len(t, all, 2)
	byName := map[string]*model.User{}
	for _, u := range all {
		byName[u.Name] = u
	}

	p, err := byName["a"].Edges.ProfileOrErr()
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.True(t, p.IsMale)
	assert.Equal(t, 1980, p.YearOfBirth)
	posts, _ := byName["a"].Edges.PostsOrErr()
	assert.Len(t, posts, 1)
	subs, _ := byName["a"].Edges.SubscribersOrErr()
	assert.Equal(t, []model.SubscriptionEdge{{SubscriberID: b.ID, AuthorID: a.ID}}, subs)

	p, err = byName["b"].Edges.ProfileOrErr()
	require.NoError(t, err)
	assert.Nil(t, p)
	posts, _ = byName["b"].Edges.PostsOrErr()
	assert.NotNil(t, posts)
	assert.Empty(t, posts)
}

func TestUsers_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	s := openSQLite(t)
	a, _ := s.Users().Create(ctx, model.CreateUserInput{Name: "a"})
	b, _ := s.Users().Create(ctx, model.CreateUserInput{Name: "b"})
	_, err := s.Profiles().Create(ctx, model.CreateProfileInput{UserID: a.ID, MemberTypeID: model.MemberTypeBasic})
	require.NoError(t, err)
	_, err = s.Posts().Create(ctx, model.CreatePostInput{AuthorID: a.ID, Title: "t"})
	require.NoError(t, err)
	require.NoError(t, s.Subscriptions().Subscribe(ctx, a.ID, b.ID))

	require.NoError(t, s.Users().Delete(ctx, a.ID))
	assert.True(t, store.IsNotFound(s.Users().Delete(ctx, a.ID)))

	profiles, err := s.Profiles().FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, profiles)
	posts, err := s.Posts().FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, posts)
	edges, err := s.Subscriptions().EdgesByAuthorIDs(ctx, []string{b.ID})
	require.NoError(t, err)
	assert.Empty(t, edges)
}

func TestProfiles_Constraints(t *testing.T) {
	ctx := context.Background()
	s := openSQLite(t)
	u, _ := s.Users().Create(ctx, model.CreateUserInput{Name: "a"})

	p, err := s.Profiles().Create(ctx, model.CreateProfileInput{UserID: u.ID, MemberTypeID: model.MemberTypeBasic})
	require.NoError(t, err)

	_, err = s.Profiles().Create(ctx, model.CreateProfileInput{UserID: u.ID, MemberTypeID: model.MemberTypeBasic})
	assert.True(t, store.IsConstraintError(err), "duplicate profile: %v", err)
	_, err = s.Profiles().Create(ctx, model.CreateProfileInput{UserID: "ghost", MemberTypeID: model.MemberTypeBasic})
	assert.True(t, store.IsConstraintError(err), "missing user: %v", err)

	year := 2001
	p2, err := s.Profiles().Update(ctx, p.ID, model.ChangeProfileInput{YearOfBirth: &year})
	require.NoError(t, err)
	assert.Equal(t, 2001, p2.YearOfBirth)
	assert.Equal(t, model.MemberTypeBasic, p2.MemberTypeID)

	got, err := s.Profiles().FindByUserIDs(ctx, []string{u.ID})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, p.ID, got[0].ID)

	require.NoError(t, s.Profiles().Delete(ctx, p.ID))
	_, err = s.Profiles().FindByID(ctx, p.ID)
	assert.True(t, store.IsNotFound(err))
}

func TestPosts_CRUD(t *testing.T) {
	ctx := context.Background()
	s := openSQLite(t)
	u, _ := s.Users().Create(ctx, model.CreateUserInput{Name: "a"})

	_, err := s.Posts().Create(ctx, model.CreatePostInput{AuthorID: "ghost", Title: "x"})
	assert.True(t, store.IsConstraintError(err))

	p, err := s.Posts().Create(ctx, model.CreatePostInput{AuthorID: u.ID, Title: "x", Content: "y"})
	require.NoError(t, err)
	title := "z"
	p2, err := s.Posts().Update(ctx, p.ID, model.ChangePostInput{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "z", p2.Title)
	assert.Equal(t, "y", p2.Content)

	byAuthor, err := s.Posts().FindByAuthorIDs(ctx, []string{u.ID})
	require.NoError(t, err)
	assert.Len(t, byAuthor, 1)

	require.NoError(t, s.Posts().Delete(ctx, p.ID))
	assert.True(t, store.IsNotFound(s.Posts().Delete(ctx, p.ID)))
}

func TestMemberTypes_FindByIDs(t *testing.T) {
	s := openSQLite(t)
	got, err := s.MemberTypes().FindByIDs(context.Background(), []model.MemberTypeID{model.MemberTypeBusiness, "GOLD"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 100, got[0].PostsLimitPerMonth)

	_, err = s.MemberTypes().FindByID(context.Background(), "GOLD")
	assert.True(t, store.IsNotFound(err))
}
