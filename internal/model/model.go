// Package model holds the entity records shared by the store, the loaders and
// the resolvers.
package model

import "fmt"

// MemberTypeID is the closed set of membership kinds.
type MemberTypeID string

const (
	MemberTypeBasic    MemberTypeID = "BASIC"
	MemberTypeBusiness MemberTypeID = "BUSINESS"
)

// MemberTypeIDs lists every valid MemberTypeID in declaration order.
var MemberTypeIDs = []MemberTypeID{MemberTypeBasic, MemberTypeBusiness}

// Valid reports whether id is one of the declared member types.
func (id MemberTypeID) Valid() bool {
	switch id {
	case MemberTypeBasic, MemberTypeBusiness:
		return true
	}
	return false
}

// ParseMemberTypeID converts an enum name into a MemberTypeID.
func ParseMemberTypeID(s string) (MemberTypeID, error) {
	id := MemberTypeID(s)
	if !id.Valid() {
		return "", fmt.Errorf("invalid member type %q", s)
	}
	return id, nil
}

type MemberType struct {
	ID                 MemberTypeID `db:"id" json:"id" yaml:"id"`
	Discount           float64      `db:"discount" json:"discount" yaml:"discount"`
	PostsLimitPerMonth int          `db:"posts_limit_per_month" json:"postsLimitPerMonth" yaml:"postsLimitPerMonth"`
}

type User struct {
	ID      string  `db:"id" json:"id" yaml:"id"`
	Name    string  `db:"name" json:"name" yaml:"name"`
	Balance float64 `db:"balance" json:"balance" yaml:"balance"`

	// Edges holds the relations eager-loaded together with the row.
	Edges UserEdges `db:"-" json:"-" yaml:"-"`
}

type Profile struct {
	ID           string       `db:"id" json:"id" yaml:"id"`
	IsMale       bool         `db:"is_male" json:"isMale" yaml:"isMale"`
	YearOfBirth  int          `db:"year_of_birth" json:"yearOfBirth" yaml:"yearOfBirth"`
	UserID       string       `db:"user_id" json:"userId" yaml:"userId"`
	MemberTypeID MemberTypeID `db:"member_type_id" json:"memberTypeId" yaml:"memberTypeId"`
}

type Post struct {
	ID       string `db:"id" json:"id" yaml:"id"`
	Title    string `db:"title" json:"title" yaml:"title"`
	Content  string `db:"content" json:"content" yaml:"content"`
	AuthorID string `db:"author_id" json:"authorId" yaml:"authorId"`
}

// SubscriptionEdge is a directed follow from SubscriberID to AuthorID.
// The pair is its identity.
type SubscriptionEdge struct {
	SubscriberID string `db:"subscriber_id" json:"subscriberId" yaml:"subscriberId"`
	AuthorID     string `db:"author_id" json:"authorId" yaml:"authorId"`
}

// SubscribedUser is an edge joined with the user on its far end.
type SubscribedUser struct {
	Edge SubscriptionEdge
	User *User
}

// UserInclude selects the relations a user query eager-loads.
type UserInclude struct {
	Profile      bool
	Posts        bool
	SubscribedTo bool
	Subscribers  bool
}

// Any reports whether at least one relation is requested.
func (i UserInclude) Any() bool {
	return i.Profile || i.Posts || i.SubscribedTo || i.Subscribers
}
