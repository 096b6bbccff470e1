package resolver

import (
	"context"

	"github.com/hanpama/membergraph/internal/executor"
	"github.com/hanpama/membergraph/internal/loader"
	"github.com/hanpama/membergraph/internal/model"
)

const deleted = "Deleted successfully"

// Mutations write through the store when forced. Loaders are not updated,
// so relationship fields under a mutation payload may serve values cached
// earlier in the same operation.

func (r *Runtime) createUser(ctx context.Context, l *loader.Loaders, t executor.AsyncResolveTask) Pending {
	var in model.CreateUserInput
	if err := decodeInput(t.Args, "dto", &in); err != nil {
		return failed(err)
	}
	return func() (any, error) {
		return r.store.Users().Create(ctx, in)
	}
}

func (r *Runtime) changeUser(ctx context.Context, l *loader.Loaders, t executor.AsyncResolveTask) Pending {
	id, err := idArg(t.Args, "id")
	if err != nil {
		return failed(err)
	}
	var in model.ChangeUserInput
	if err := decodeInput(t.Args, "dto", &in); err != nil {
		return failed(err)
	}
	return func() (any, error) {
		return r.store.Users().Update(ctx, id, in)
	}
}

func (r *Runtime) deleteUser(ctx context.Context, l *loader.Loaders, t executor.AsyncResolveTask) Pending {
	id, err := idArg(t.Args, "id")
	if err != nil {
		return failed(err)
	}
	return func() (any, error) {
		if err := r.store.Users().Delete(ctx, id); err != nil {
			return nil, err
		}
		return deleted, nil
	}
}

func (r *Runtime) createPost(ctx context.Context, l *loader.Loaders, t executor.AsyncResolveTask) Pending {
	var in model.CreatePostInput
	if err := decodeInput(t.Args, "dto", &in); err != nil {
		return failed(err)
	}
	if err := checkUUID("authorId", in.AuthorID); err != nil {
		return failed(err)
	}
	return func() (any, error) {
		return r.store.Posts().Create(ctx, in)
	}
}

func (r *Runtime) changePost(ctx context.Context, l *loader.Loaders, t executor.AsyncResolveTask) Pending {
	id, err := idArg(t.Args, "id")
	if err != nil {
		return failed(err)
	}
	var in model.ChangePostInput
	if err := decodeInput(t.Args, "dto", &in); err != nil {
		return failed(err)
	}
	return func() (any, error) {
		return r.store.Posts().Update(ctx, id, in)
	}
}

func (r *Runtime) deletePost(ctx context.Context, l *loader.Loaders, t executor.AsyncResolveTask) Pending {
	id, err := idArg(t.Args, "id")
	if err != nil {
		return failed(err)
	}
	return func() (any, error) {
		if err := r.store.Posts().Delete(ctx, id); err != nil {
			return nil, err
		}
		return deleted, nil
	}
}

func (r *Runtime) createProfile(ctx context.Context, l *loader.Loaders, t executor.AsyncResolveTask) Pending {
	var in model.CreateProfileInput
	if err := decodeInput(t.Args, "dto", &in); err != nil {
		return failed(err)
	}
	if err := checkUUID("userId", in.UserID); err != nil {
		return failed(err)
	}
	if !in.MemberTypeID.Valid() {
		return failed(badInput("memberTypeId: invalid member type %q", in.MemberTypeID))
	}
	return func() (any, error) {
		return r.store.Profiles().Create(ctx, in)
	}
}

func (r *Runtime) changeProfile(ctx context.Context, l *loader.Loaders, t executor.AsyncResolveTask) Pending {
	id, err := idArg(t.Args, "id")
	if err != nil {
		return failed(err)
	}
	var in model.ChangeProfileInput
	if err := decodeInput(t.Args, "dto", &in); err != nil {
		return failed(err)
	}
	if in.MemberTypeID != nil && !in.MemberTypeID.Valid() {
		return failed(badInput("memberTypeId: invalid member type %q", *in.MemberTypeID))
	}
	return func() (any, error) {
		return r.store.Profiles().Update(ctx, id, in)
	}
}

func (r *Runtime) deleteProfile(ctx context.Context, l *loader.Loaders, t executor.AsyncResolveTask) Pending {
	id, err := idArg(t.Args, "id")
	if err != nil {
		return failed(err)
	}
	return func() (any, error) {
		if err := r.store.Profiles().Delete(ctx, id); err != nil {
			return nil, err
		}
		return deleted, nil
	}
}

func (r *Runtime) subscribeTo(ctx context.Context, l *loader.Loaders, t executor.AsyncResolveTask) Pending {
	userID, authorID, err := edgeArgs(t.Args)
	if err != nil {
		return failed(err)
	}
	return func() (any, error) {
		if err := r.store.Subscriptions().Subscribe(ctx, userID, authorID); err != nil {
			return nil, err
		}
		return authorID, nil
	}
}

func (r *Runtime) unsubscribeFrom(ctx context.Context, l *loader.Loaders, t executor.AsyncResolveTask) Pending {
	userID, authorID, err := edgeArgs(t.Args)
	if err != nil {
		return failed(err)
	}
	return func() (any, error) {
		if err := r.store.Subscriptions().Unsubscribe(ctx, userID, authorID); err != nil {
			return nil, err
		}
		return authorID, nil
	}
}

func edgeArgs(args map[string]any) (userID, authorID string, err error) {
	if userID, err = idArg(args, "userId"); err != nil {
		return "", "", err
	}
	if authorID, err = idArg(args, "authorId"); err != nil {
		return "", "", err
	}
	return userID, authorID, nil
}
