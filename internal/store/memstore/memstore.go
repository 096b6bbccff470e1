// Package memstore is an in-memory implementation of store.Store. It keeps a
// log of every facade call, which tests use to count backend round-trips.
package memstore

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hanpama/membergraph/internal/model"
	"github.com/hanpama/membergraph/internal/store"
)

// Call records one facade call.
type Call struct {
	Entity string
	Op     string
	Keys   []string
}

type Store struct {
	mu          sync.RWMutex
	users       []*model.User
	profiles    []*model.Profile
	posts       []*model.Post
	memberTypes []*model.MemberType
	edges       []model.SubscriptionEdge

	calls []Call
	newID func() string
}

var _ store.Store = (*Store)(nil)

// New returns an empty store holding the default member types.
func New() *Store {
	s := &Store{newID: uuid.NewString}
	for _, mt := range store.DefaultMemberTypes {
		cp := *mt
		s.memberTypes = append(s.memberTypes, &cp)
	}
	return s
}

func (s *Store) Users() store.UserRepository                 { return users{s} }
func (s *Store) Profiles() store.ProfileRepository           { return profiles{s} }
func (s *Store) Posts() store.PostRepository                 { return posts{s} }
func (s *Store) MemberTypes() store.MemberTypeRepository     { return memberTypes{s} }
func (s *Store) Subscriptions() store.SubscriptionRepository { return subscriptions{s} }
func (s *Store) Close() error                                { return nil }

// Calls returns a copy of the recorded facade calls in order.
func (s *Store) Calls() []Call {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.calls)
}

// CallsTo returns the recorded calls for one entity and operation.
func (s *Store) CallsTo(entity, op string) []Call {
	var out []Call
	for _, c := range s.Calls() {
		if c.Entity == entity && c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// ResetCalls clears the call log; data is kept.
func (s *Store) ResetCalls() {
	s.mu.Lock()
	s.calls = nil
	s.mu.Unlock()
}

// record must be called with s.mu held.
func (s *Store) record(entity, op string, keys []string) {
	s.calls = append(s.calls, Call{Entity: entity, Op: op, Keys: slices.Clone(keys)})
}

func (s *Store) userIndex(id string) int {
	return slices.IndexFunc(s.users, func(u *model.User) bool { return u.ID == id })
}

func (s *Store) hasUser(id string) bool { return s.userIndex(id) >= 0 }

func (s *Store) hasMemberType(id model.MemberTypeID) bool {
	return slices.ContainsFunc(s.memberTypes, func(mt *model.MemberType) bool { return mt.ID == id })
}

func copyUser(u *model.User) *model.User {
	return &model.User{ID: u.ID, Name: u.Name, Balance: u.Balance}
}

// attach loads the requested edges onto out. Called with s.mu held.
func (s *Store) attach(out []*model.User, include model.UserInclude) {
	for _, u := range out {
		if include.Profile {
			var p *model.Profile
			for _, row := range s.profiles {
				if row.UserID == u.ID {
					cp := *row
					p = &cp
					break
				}
			}
			u.Edges.SetProfile(p)
		}
		if include.Posts {
			var ps []*model.Post
			for _, row := range s.posts {
				if row.AuthorID == u.ID {
					cp := *row
					ps = append(ps, &cp)
				}
			}
			u.Edges.SetPosts(ps)
		}
		if include.SubscribedTo {
			var es []model.SubscriptionEdge
			for _, e := range s.edges {
				if e.SubscriberID == u.ID {
					es = append(es, e)
				}
			}
			u.Edges.SetSubscribedTo(es)
		}
		if include.Subscribers {
			var es []model.SubscriptionEdge
			for _, e := range s.edges {
				if e.AuthorID == u.ID {
					es = append(es, e)
				}
			}
			u.Edges.SetSubscribers(es)
		}
	}
}

func observe(ctx context.Context, entity, op string, start time.Time, rows int, err error) {
	store.Observe(ctx, entity, op, start, rows, err)
}

func contains(keys []string, k string) bool { return slices.Contains(keys, k) }
