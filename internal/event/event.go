package event

import "github.com/google/uuid"

// Event is a domain event raised by a collaborator after it mutates state.
// Events carry ids, never live entity references: the dispatcher re-resolves
// the entity on its own side of the commit boundary.
type Event interface {
	Name() string
}

// FollowCreated is raised when a follow relationship row has been inserted.
type FollowCreated struct {
	FollowID   uuid.UUID `json:"following_id"`
	FollowerID uuid.UUID `json:"follower_id"`
	FollowedID uuid.UUID `json:"followed_id"`
}

func (FollowCreated) Name() string { return "follow.created" }

// CommentCreated is raised when a comment has been added to a post.
type CommentCreated struct {
	CommentID uuid.UUID `json:"comment_id"`
	PostID    uuid.UUID `json:"post_id"`
	AuthorID  uuid.UUID `json:"author_id"`
}

func (CommentCreated) Name() string { return "comment.created" }

// FindDiscovered is raised when a proximity scan matches find posts near a
// user. A discovery may correspond to several candidate posts, so the event
// carries a ready-made message instead of a single post reference.
type FindDiscovered struct {
	UserID  uuid.UUID `json:"user_id"`
	Message string    `json:"message"`
}

func (FindDiscovered) Name() string { return "find.discovered" }

// ParkUpdated is raised when a park a user watches gets a new update.
type ParkUpdated struct {
	ParkUpdateID uuid.UUID `json:"park_update_id"`
	UserID       uuid.UUID `json:"user_id"`
}

func (ParkUpdated) Name() string { return "park.updated" }
