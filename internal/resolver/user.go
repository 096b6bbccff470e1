package resolver

import (
	"context"

	"github.com/hanpama/membergraph/internal/executor"
	"github.com/hanpama/membergraph/internal/loader"
	"github.com/hanpama/membergraph/internal/model"
	"github.com/hanpama/membergraph/internal/store"
)

func (r *Runtime) userProfile(ctx context.Context, l *loader.Loaders, t executor.AsyncResolveTask) Pending {
	u := t.Source.(*model.User)
	if p, err := u.Edges.ProfileOrErr(); err == nil {
		return ready(p)
	}
	return fromThunk(l.ProfileByUserID.Load(ctx, u.ID))
}

func (r *Runtime) userPosts(ctx context.Context, l *loader.Loaders, t executor.AsyncResolveTask) Pending {
	u := t.Source.(*model.User)
	if posts, err := u.Edges.PostsOrErr(); err == nil {
		return ready(orEmpty(posts))
	}
	return fromThunk(l.PostsByAuthorID.Load(ctx, u.ID))
}

// userSubscribedTo resolves the authors u follows.
func (r *Runtime) userSubscribedTo(ctx context.Context, l *loader.Loaders, t executor.AsyncResolveTask) Pending {
	u := t.Source.(*model.User)
	if edges, err := u.Edges.SubscribedToOrErr(); err == nil {
		ids := make([]string, len(edges))
		for i, e := range edges {
			ids[i] = e.AuthorID
		}
		return r.usersByID(ctx, l, ids)
	}
	return primed(l, l.SubscribedToBySubscriberID.Load(ctx, u.ID))
}

// subscribedToUser resolves the users following u.
func (r *Runtime) subscribedToUser(ctx context.Context, l *loader.Loaders, t executor.AsyncResolveTask) Pending {
	u := t.Source.(*model.User)
	if edges, err := u.Edges.SubscribersOrErr(); err == nil {
		ids := make([]string, len(edges))
		for i, e := range edges {
			ids[i] = e.SubscriberID
		}
		return r.usersByID(ctx, l, ids)
	}
	return primed(l, l.SubscribersByAuthorID.Load(ctx, u.ID))
}

// usersByID resolves the far ends of embedded edges through the user cache.
// Ids the batch does not return are fetched one by one with their edges and
// replace the cached miss. Ids missing from the store as well are dropped.
func (r *Runtime) usersByID(ctx context.Context, l *loader.Loaders, ids []string) Pending {
	th := l.UserByID.LoadMany(ctx, ids)
	return func() (any, error) {
		users, err := th()
		if err != nil {
			return nil, err
		}
		out := make([]*model.User, 0, len(users))
		for i, u := range users {
			if u == nil {
				u, err = r.store.Users().FindByID(ctx, ids[i], model.UserInclude{SubscribedTo: true, Subscribers: true})
				if store.IsNotFound(err) {
					continue
				}
				if err != nil {
					return nil, err
				}
				l.UserByID.Clear(u.ID)
				l.UserByID.Prime(u.ID, u)
			}
			out = append(out, u)
		}
		return out, nil
	}
}

func primed(l *loader.Loaders, th loader.Thunk[[]*model.User]) Pending {
	return func() (any, error) {
		users, err := th()
		if err != nil {
			return nil, err
		}
		l.PrimeUsers(users...)
		return users, nil
	}
}

func (r *Runtime) profileMemberType(ctx context.Context, l *loader.Loaders, t executor.AsyncResolveTask) Pending {
	p := t.Source.(*model.Profile)
	return fromThunk(l.MemberTypeByID.Load(ctx, p.MemberTypeID))
}
