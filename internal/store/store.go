// Package store defines the backend query facade: one repository per entity
// kind, each exposing set-based lookups and mutation primitives.
//
// Set lookups (FindByIDs, FindByUserIDs, FindByAuthorIDs, AuthorsOf,
// SubscribersOf) return rows in unspecified order and silently omit keys with
// no row. Single-row operations report a missing row as *NotFoundError.
package store

import (
	"context"

	"github.com/hanpama/membergraph/internal/model"
)

type Store interface {
	Users() UserRepository
	Profiles() ProfileRepository
	Posts() PostRepository
	MemberTypes() MemberTypeRepository
	Subscriptions() SubscriptionRepository
	Close() error
}

type UserRepository interface {
	FindByID(ctx context.Context, id string, include model.UserInclude) (*model.User, error)
	FindByIDs(ctx context.Context, ids []string) ([]*model.User, error)
	FindAll(ctx context.Context, include model.UserInclude) ([]*model.User, error)
	Create(ctx context.Context, in model.CreateUserInput) (*model.User, error)
	Update(ctx context.Context, id string, in model.ChangeUserInput) (*model.User, error)
	Delete(ctx context.Context, id string) error
}

type ProfileRepository interface {
	FindByID(ctx context.Context, id string) (*model.Profile, error)
	FindByUserIDs(ctx context.Context, userIDs []string) ([]*model.Profile, error)
	FindAll(ctx context.Context) ([]*model.Profile, error)
	Create(ctx context.Context, in model.CreateProfileInput) (*model.Profile, error)
	Update(ctx context.Context, id string, in model.ChangeProfileInput) (*model.Profile, error)
	Delete(ctx context.Context, id string) error
}

type PostRepository interface {
	FindByID(ctx context.Context, id string) (*model.Post, error)
	FindByAuthorIDs(ctx context.Context, authorIDs []string) ([]*model.Post, error)
	FindAll(ctx context.Context) ([]*model.Post, error)
	Create(ctx context.Context, in model.CreatePostInput) (*model.Post, error)
	Update(ctx context.Context, id string, in model.ChangePostInput) (*model.Post, error)
	Delete(ctx context.Context, id string) error
}

type MemberTypeRepository interface {
	FindByID(ctx context.Context, id model.MemberTypeID) (*model.MemberType, error)
	FindByIDs(ctx context.Context, ids []model.MemberTypeID) ([]*model.MemberType, error)
	FindAll(ctx context.Context) ([]*model.MemberType, error)
}

type SubscriptionRepository interface {
	// AuthorsOf returns the edges leaving each subscriber joined with the
	// author they point to.
	AuthorsOf(ctx context.Context, subscriberIDs []string) ([]model.SubscribedUser, error)
	// SubscribersOf returns the edges arriving at each author joined with
	// the subscriber they come from.
	SubscribersOf(ctx context.Context, authorIDs []string) ([]model.SubscribedUser, error)
	// EdgesBySubscriberIDs and EdgesByAuthorIDs return bare edges. The SQL
	// store eager-loads UserInclude.SubscribedTo and Subscribers with them.
	EdgesBySubscriberIDs(ctx context.Context, subscriberIDs []string) ([]model.SubscriptionEdge, error)
	EdgesByAuthorIDs(ctx context.Context, authorIDs []string) ([]model.SubscriptionEdge, error)
	Subscribe(ctx context.Context, subscriberID, authorID string) error
	// Unsubscribe deletes the edge with exactly this pair. Deleting an
	// absent edge is not an error.
	Unsubscribe(ctx context.Context, subscriberID, authorID string) error
}

// Entity labels used in errors and events.
const (
	EntityUser         = "user"
	EntityProfile      = "profile"
	EntityPost         = "post"
	EntityMemberType   = "member_type"
	EntitySubscription = "subscription"
)

// DefaultMemberTypes is the static lookup table every store starts with.
var DefaultMemberTypes = []*model.MemberType{
	{ID: model.MemberTypeBasic, Discount: 2.3, PostsLimitPerMonth: 20},
	{ID: model.MemberTypeBusiness, Discount: 7.7, PostsLimitPerMonth: 100},
}
