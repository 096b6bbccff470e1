package store

import (
	"context"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/hanpama/membergraph/internal/model"
)

// Fixtures describes a data set loadable through any Store. Users are named
// by Ref so that posts, profiles and subscriptions can point at them before
// their ids exist.
type Fixtures struct {
	Users         []UserFixture         `yaml:"users"`
	Subscriptions []SubscriptionFixture `yaml:"subscriptions"`
}

type UserFixture struct {
	Ref     string          `yaml:"ref"`
	Name    string          `yaml:"name"`
	Balance float64         `yaml:"balance"`
	Profile *ProfileFixture `yaml:"profile"`
	Posts   []PostFixture   `yaml:"posts"`
}

type ProfileFixture struct {
	IsMale       bool               `yaml:"isMale"`
	YearOfBirth  int                `yaml:"yearOfBirth"`
	MemberTypeID model.MemberTypeID `yaml:"memberTypeId"`
}

type PostFixture struct {
	Title   string `yaml:"title"`
	Content string `yaml:"content"`
}

type SubscriptionFixture struct {
	Subscriber string `yaml:"subscriber"`
	Author     string `yaml:"author"`
}

// DecodeFixtures reads YAML fixtures from r and checks their references.
func DecodeFixtures(r io.Reader) (*Fixtures, error) {
	var f Fixtures
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode fixtures: %w", err)
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *Fixtures) validate() error {
	refs := make(map[string]bool, len(f.Users))
	for i, u := range f.Users {
		if u.Ref == "" {
			return fmt.Errorf("fixtures: users[%d]: missing ref", i)
		}
		if refs[u.Ref] {
			return fmt.Errorf("fixtures: duplicate user ref %q", u.Ref)
		}
		refs[u.Ref] = true
		if u.Profile != nil && !u.Profile.MemberTypeID.Valid() {
			return fmt.Errorf("fixtures: user %q: invalid member type %q", u.Ref, u.Profile.MemberTypeID)
		}
	}
	for i, s := range f.Subscriptions {
		if !refs[s.Subscriber] || !refs[s.Author] {
			return fmt.Errorf("fixtures: subscriptions[%d]: unknown user ref", i)
		}
	}
	return nil
}

// Seed writes the fixtures through st and returns the created user ids keyed
// by ref.
func Seed(ctx context.Context, st Store, f *Fixtures) (map[string]string, error) {
	ids := make(map[string]string, len(f.Users))
	for _, uf := range f.Users {
		u, err := st.Users().Create(ctx, model.CreateUserInput{Name: uf.Name, Balance: uf.Balance})
		if err != nil {
			return nil, fmt.Errorf("seed user %q: %w", uf.Ref, err)
		}
		ids[uf.Ref] = u.ID
		if p := uf.Profile; p != nil {
			_, err := st.Profiles().Create(ctx, model.CreateProfileInput{
				UserID:       u.ID,
				IsMale:       p.IsMale,
				YearOfBirth:  p.YearOfBirth,
				MemberTypeID: p.MemberTypeID,
			})
			if err != nil {
				return nil, fmt.Errorf("seed profile of %q: %w", uf.Ref, err)
			}
		}
		for _, pf := range uf.Posts {
			_, err := st.Posts().Create(ctx, model.CreatePostInput{AuthorID: u.ID, Title: pf.Title, Content: pf.Content})
			if err != nil {
				return nil, fmt.Errorf("seed post of %q: %w", uf.Ref, err)
			}
		}
	}
	for _, sf := range f.Subscriptions {
		if err := st.Subscriptions().Subscribe(ctx, ids[sf.Subscriber], ids[sf.Author]); err != nil {
			return nil, fmt.Errorf("seed subscription %s->%s: %w", sf.Subscriber, sf.Author, err)
		}
	}
	return ids, nil
}
