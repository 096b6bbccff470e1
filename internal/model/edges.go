package model

// UserEdges holds the relations of a User that were loaded with it.
// A relation that was loaded but is empty (no profile, no posts) still
// reports as loaded.
type UserEdges struct {
	Profile      *Profile
	Posts        []*Post
	SubscribedTo []SubscriptionEdge
	Subscribers  []SubscriptionEdge

	loadedTypes [4]bool
}

const (
	edgeProfile = iota
	edgePosts
	edgeSubscribedTo
	edgeSubscribers
)

// ProfileOrErr returns the Profile value or an error if the edge
// was not loaded in eager-loading. A nil profile means the user has none.
func (e UserEdges) ProfileOrErr() (*Profile, error) {
	if e.loadedTypes[edgeProfile] {
		return e.Profile, nil
	}
	return nil, &NotLoadedError{edge: "profile"}
}

// PostsOrErr returns the Posts value or an error if the edge
// was not loaded in eager-loading.
func (e UserEdges) PostsOrErr() ([]*Post, error) {
	if e.loadedTypes[edgePosts] {
		return e.Posts, nil
	}
	return nil, &NotLoadedError{edge: "posts"}
}

// SubscribedToOrErr returns the outgoing subscription edges or an error if
// the edge was not loaded in eager-loading.
func (e UserEdges) SubscribedToOrErr() ([]SubscriptionEdge, error) {
	if e.loadedTypes[edgeSubscribedTo] {
		return e.SubscribedTo, nil
	}
	return nil, &NotLoadedError{edge: "userSubscribedTo"}
}

// SubscribersOrErr returns the incoming subscription edges or an error if
// the edge was not loaded in eager-loading.
func (e UserEdges) SubscribersOrErr() ([]SubscriptionEdge, error) {
	if e.loadedTypes[edgeSubscribers] {
		return e.Subscribers, nil
	}
	return nil, &NotLoadedError{edge: "subscribedToUser"}
}

func (e *UserEdges) SetProfile(p *Profile) {
	e.Profile = p
	e.loadedTypes[edgeProfile] = true
}

func (e *UserEdges) SetPosts(posts []*Post) {
	if posts == nil {
		posts = []*Post{}
	}
	e.Posts = posts
	e.loadedTypes[edgePosts] = true
}

func (e *UserEdges) SetSubscribedTo(edges []SubscriptionEdge) {
	if edges == nil {
		edges = []SubscriptionEdge{}
	}
	e.SubscribedTo = edges
	e.loadedTypes[edgeSubscribedTo] = true
}

func (e *UserEdges) SetSubscribers(edges []SubscriptionEdge) {
	if edges == nil {
		edges = []SubscriptionEdge{}
	}
	e.Subscribers = edges
	e.loadedTypes[edgeSubscribers] = true
}
