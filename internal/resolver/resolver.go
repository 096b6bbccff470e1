// Package resolver binds the member graph schema to the store through the
// request-scoped loaders. It implements executor.Runtime.
//
// Scalar fields are projections of the model records and resolve
// synchronously. Root, mutation and relationship fields are async: for each
// execution depth the runtime first starts every task, which only enqueues
// loader keys, and then forces the tasks in order. Every loader therefore
// sees all keys of a depth before its first dispatch.
package resolver

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/hanpama/membergraph/internal/executor"
	"github.com/hanpama/membergraph/internal/language"
	"github.com/hanpama/membergraph/internal/loader"
	"github.com/hanpama/membergraph/internal/model"
	"github.com/hanpama/membergraph/internal/schema"
	"github.com/hanpama/membergraph/internal/store"
)

//go:embed schema.graphql
var SDL string

// Root type names of the schema.
const (
	QueryType    = "RootQueryType"
	MutationType = "Mutations"
)

var errNoScope = errors.New("resolver: no loaders in context; call Runtime.Scope first")

// Pending is a started field resolution. Calling it yields the value.
type Pending func() (any, error)

func ready(v any) Pending { return func() (any, error) { return v, nil } }

func failed(err error) Pending { return func() (any, error) { return nil, err } }

func fromThunk[V any](th loader.Thunk[V]) Pending {
	return func() (any, error) {
		v, err := th()
		if err != nil {
			return nil, err
		}
		return v, nil
	}
}

type fieldFunc func(r *Runtime, ctx context.Context, l *loader.Loaders, t executor.AsyncResolveTask) Pending

// asyncFields lists every field resolved through BatchResolveAsync.
var asyncFields = map[string]fieldFunc{
	QueryType + ".memberTypes": (*Runtime).queryMemberTypes,
	QueryType + ".memberType":  (*Runtime).queryMemberType,
	QueryType + ".users":       (*Runtime).queryUsers,
	QueryType + ".user":        (*Runtime).queryUser,
	QueryType + ".posts":       (*Runtime).queryPosts,
	QueryType + ".post":        (*Runtime).queryPost,
	QueryType + ".profiles":    (*Runtime).queryProfiles,
	QueryType + ".profile":     (*Runtime).queryProfile,

	MutationType + ".createUser":      (*Runtime).createUser,
	MutationType + ".changeUser":      (*Runtime).changeUser,
	MutationType + ".deleteUser":      (*Runtime).deleteUser,
	MutationType + ".createPost":      (*Runtime).createPost,
	MutationType + ".changePost":      (*Runtime).changePost,
	MutationType + ".deletePost":      (*Runtime).deletePost,
	MutationType + ".createProfile":   (*Runtime).createProfile,
	MutationType + ".changeProfile":   (*Runtime).changeProfile,
	MutationType + ".deleteProfile":   (*Runtime).deleteProfile,
	MutationType + ".subscribeTo":     (*Runtime).subscribeTo,
	MutationType + ".unsubscribeFrom": (*Runtime).unsubscribeFrom,

	"User.profile":          (*Runtime).userProfile,
	"User.posts":            (*Runtime).userPosts,
	"User.userSubscribedTo": (*Runtime).userSubscribedTo,
	"User.subscribedToUser": (*Runtime).subscribedToUser,
	"Profile.memberType":    (*Runtime).profileMemberType,
}

// IsAsync reports whether typeName.fieldName is resolved in batches.
func IsAsync(typeName, fieldName string) bool {
	_, ok := asyncFields[typeName+"."+fieldName]
	return ok
}

// LoadSchema parses the embedded SDL. It returns the schema used for
// validation and the executable schema with async flags set.
func LoadSchema() (*language.Schema, *schema.Schema, error) {
	doc, err := language.LoadSchema("schema.graphql", SDL)
	if err != nil {
		return nil, nil, err
	}
	exec, err := schema.BuildFromAST(doc, IsAsync)
	if err != nil {
		return nil, nil, err
	}
	return doc, exec, nil
}

// Runtime implements executor.Runtime over a store.
type Runtime struct {
	store store.Store
	opts  []loader.Option
}

var _ executor.Runtime = (*Runtime)(nil)

// New returns a runtime reading from st. opts apply to every loader it
// creates.
func New(st store.Store, opts ...loader.Option) *Runtime {
	return &Runtime{store: st, opts: opts}
}

// Scope returns ctx carrying a fresh set of loaders. Call it once per
// operation.
func (r *Runtime) Scope(ctx context.Context) context.Context {
	return loader.WithLoaders(ctx, loader.New(r.store, r.opts...))
}

// ResolveSync projects a scalar field from a model record.
func (r *Runtime) ResolveSync(ctx context.Context, objectType string, field string, source any, args map[string]any) (any, error) {
	switch src := source.(type) {
	case *model.User:
		switch field {
		case "id":
			return src.ID, nil
		case "name":
			return src.Name, nil
		case "balance":
			return src.Balance, nil
		}
	case *model.Post:
		switch field {
		case "id":
			return src.ID, nil
		case "title":
			return src.Title, nil
		case "content":
			return src.Content, nil
		case "authorId":
			return src.AuthorID, nil
		}
	case *model.Profile:
		switch field {
		case "id":
			return src.ID, nil
		case "isMale":
			return src.IsMale, nil
		case "yearOfBirth":
			return src.YearOfBirth, nil
		case "userId":
			return src.UserID, nil
		case "memberTypeId":
			return src.MemberTypeID, nil
		}
	case *model.MemberType:
		switch field {
		case "id":
			return src.ID, nil
		case "discount":
			return src.Discount, nil
		case "postsLimitPerMonth":
			return src.PostsLimitPerMonth, nil
		}
	}
	return nil, fmt.Errorf("resolver: no field %s.%s on %T", objectType, field, source)
}

// BatchResolveAsync starts every task, then forces them in task order.
// Root mutation fields arrive one per batch.
func (r *Runtime) BatchResolveAsync(ctx context.Context, tasks []executor.AsyncResolveTask) []executor.AsyncResolveResult {
	results := make([]executor.AsyncResolveResult, len(tasks))
	l := loader.For(ctx)

	started := make([]Pending, len(tasks))
	for i, t := range tasks {
		f, ok := asyncFields[t.ObjectType+"."+t.Field]
		switch {
		case l == nil:
			started[i] = failed(errNoScope)
		case !ok:
			started[i] = failed(fmt.Errorf("resolver: no resolver for %s.%s", t.ObjectType, t.Field))
		default:
			started[i] = f(r, ctx, l, t)
		}
	}
	for i, p := range started {
		v, err := p()
		results[i] = executor.AsyncResolveResult{Value: v, Error: classify(err)}
	}
	return results
}

// SerializeLeafValue converts model scalars into JSON values.
func (r *Runtime) SerializeLeafValue(ctx context.Context, typeName string, value any) (any, error) {
	switch v := value.(type) {
	case model.MemberTypeID:
		return string(v), nil
	case string, bool, float64, int:
		return v, nil
	}
	return nil, fmt.Errorf("resolver: cannot serialize %T as %s", value, typeName)
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
