package loader

import (
	"context"

	"github.com/hanpama/membergraph/internal/model"
	"github.com/hanpama/membergraph/internal/store"
)

// Loaders is the set of loaders owned by one GraphQL operation.
type Loaders struct {
	UserByID       *Loader[string, *model.User]
	MemberTypeByID *Loader[model.MemberTypeID, *model.MemberType]
	// ProfileByUserID resolves the 0..1 profile owned by a user.
	ProfileByUserID *Loader[string, *model.Profile]
	PostsByAuthorID *Loader[string, []*model.Post]
	// SubscribedToBySubscriberID resolves the authors a user follows.
	SubscribedToBySubscriberID *Loader[string, []*model.User]
	// SubscribersByAuthorID resolves the users following an author.
	SubscribersByAuthorID *Loader[string, []*model.User]
}

// New builds a fresh loader set over st.
func New(st store.Store, opts ...Option) *Loaders {
	return &Loaders{
		UserByID: NewLoader("user_by_id", func(ctx context.Context, ids []string) (map[string]*model.User, error) {
			users, err := st.Users().FindByIDs(ctx, ids)
			if err != nil {
				return nil, err
			}
			return IndexBy(users, userID), nil
		}, opts...),

		MemberTypeByID: NewLoader("member_type_by_id", func(ctx context.Context, ids []model.MemberTypeID) (map[model.MemberTypeID]*model.MemberType, error) {
			mts, err := st.MemberTypes().FindByIDs(ctx, ids)
			if err != nil {
				return nil, err
			}
			return IndexBy(mts, func(mt *model.MemberType) model.MemberTypeID { return mt.ID }), nil
		}, opts...),

		ProfileByUserID: NewLoader("profile_by_user_id", func(ctx context.Context, ids []string) (map[string]*model.Profile, error) {
			profiles, err := st.Profiles().FindByUserIDs(ctx, ids)
			if err != nil {
				return nil, err
			}
			return IndexBy(profiles, func(p *model.Profile) string { return p.UserID }), nil
		}, opts...),

		PostsByAuthorID: NewGroupLoader("posts_by_author_id", func(ctx context.Context, ids []string) (map[string][]*model.Post, error) {
			posts, err := st.Posts().FindByAuthorIDs(ctx, ids)
			if err != nil {
				return nil, err
			}
			return GroupByKey(posts, func(p *model.Post) string { return p.AuthorID }, identity[*model.Post]), nil
		}, opts...),

		SubscribedToBySubscriberID: NewGroupLoader("subscribed_to_by_subscriber_id", func(ctx context.Context, ids []string) (map[string][]*model.User, error) {
			rows, err := st.Subscriptions().AuthorsOf(ctx, ids)
			if err != nil {
				return nil, err
			}
			return GroupByKey(rows, func(r model.SubscribedUser) string { return r.Edge.SubscriberID }, farUser), nil
		}, opts...),

		SubscribersByAuthorID: NewGroupLoader("subscribers_by_author_id", func(ctx context.Context, ids []string) (map[string][]*model.User, error) {
			rows, err := st.Subscriptions().SubscribersOf(ctx, ids)
			if err != nil {
				return nil, err
			}
			return GroupByKey(rows, func(r model.SubscribedUser) string { return r.Edge.AuthorID }, farUser), nil
		}, opts...),
	}
}

// Dispatch flushes every loader's pending keys.
func (l *Loaders) Dispatch(ctx context.Context) {
	l.UserByID.Dispatch(ctx)
	l.MemberTypeByID.Dispatch(ctx)
	l.ProfileByUserID.Dispatch(ctx)
	l.PostsByAuthorID.Dispatch(ctx)
	l.SubscribedToBySubscriberID.Dispatch(ctx)
	l.SubscribersByAuthorID.Dispatch(ctx)
}

// PrimeUsers primes the user cache with every non-nil user.
func (l *Loaders) PrimeUsers(users ...*model.User) int {
	n := 0
	for _, u := range users {
		if u != nil && l.UserByID.Prime(u.ID, u) {
			n++
		}
	}
	return n
}

func userID(u *model.User) string { return u.ID }

func farUser(r model.SubscribedUser) *model.User { return r.User }

func identity[T any](v T) T { return v }
