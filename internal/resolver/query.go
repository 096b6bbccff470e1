package resolver

import (
	"context"

	"github.com/hanpama/membergraph/internal/executor"
	"github.com/hanpama/membergraph/internal/language"
	"github.com/hanpama/membergraph/internal/loader"
	"github.com/hanpama/membergraph/internal/model"
	"github.com/hanpama/membergraph/internal/store"
)

func (r *Runtime) queryMemberTypes(ctx context.Context, l *loader.Loaders, t executor.AsyncResolveTask) Pending {
	return func() (any, error) {
		mts, err := r.store.MemberTypes().FindAll(ctx)
		if err != nil {
			return nil, err
		}
		loader.PrimeMany(l.MemberTypeByID, mts, memberTypeKey)
		return orEmpty(mts), nil
	}
}

func (r *Runtime) queryMemberType(ctx context.Context, l *loader.Loaders, t executor.AsyncResolveTask) Pending {
	id, err := memberTypeArg(t.Args, "id")
	if err != nil {
		return failed(err)
	}
	return fromThunk(l.MemberTypeByID.Load(ctx, id))
}

// queryUsers fetches every user in one call, embedding the relations the
// selection asks for, and primes the caches with what it got.
func (r *Runtime) queryUsers(ctx context.Context, l *loader.Loaders, t executor.AsyncResolveTask) Pending {
	selected := language.CollectFieldNames(t.Fields)
	include := model.UserInclude{
		Profile:      selected["profile"],
		SubscribedTo: selected["userSubscribedTo"],
		Subscribers:  selected["subscribedToUser"],
	}
	return func() (any, error) {
		users, err := r.store.Users().FindAll(ctx, include)
		if err != nil {
			return nil, err
		}
		primeUsers(l, users)
		return orEmpty(users), nil
	}
}

// queryUser embeds subscription edges only. Profile and posts go through
// the loaders.
func (r *Runtime) queryUser(ctx context.Context, l *loader.Loaders, t executor.AsyncResolveTask) Pending {
	id, err := idArg(t.Args, "id")
	if err != nil {
		return failed(err)
	}
	selected := language.CollectFieldNames(t.Fields)
	include := model.UserInclude{
		SubscribedTo: selected["userSubscribedTo"],
		Subscribers:  selected["subscribedToUser"],
	}
	return func() (any, error) {
		u, err := r.store.Users().FindByID(ctx, id, include)
		if store.IsNotFound(err) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		primeUsers(l, []*model.User{u})
		return u, nil
	}
}

func (r *Runtime) queryPosts(ctx context.Context, l *loader.Loaders, t executor.AsyncResolveTask) Pending {
	return func() (any, error) {
		posts, err := r.store.Posts().FindAll(ctx)
		if err != nil {
			return nil, err
		}
		return orEmpty(posts), nil
	}
}

func (r *Runtime) queryPost(ctx context.Context, l *loader.Loaders, t executor.AsyncResolveTask) Pending {
	id, err := idArg(t.Args, "id")
	if err != nil {
		return failed(err)
	}
	return func() (any, error) {
		p, err := r.store.Posts().FindByID(ctx, id)
		if store.IsNotFound(err) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return p, nil
	}
}

func (r *Runtime) queryProfiles(ctx context.Context, l *loader.Loaders, t executor.AsyncResolveTask) Pending {
	return func() (any, error) {
		profiles, err := r.store.Profiles().FindAll(ctx)
		if err != nil {
			return nil, err
		}
		loader.PrimeMany(l.ProfileByUserID, profiles, profileOwner)
		return orEmpty(profiles), nil
	}
}

func (r *Runtime) queryProfile(ctx context.Context, l *loader.Loaders, t executor.AsyncResolveTask) Pending {
	id, err := idArg(t.Args, "id")
	if err != nil {
		return failed(err)
	}
	return func() (any, error) {
		p, err := r.store.Profiles().FindByID(ctx, id)
		if store.IsNotFound(err) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return p, nil
	}
}
