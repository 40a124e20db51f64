package domain

import "time"

// InteractionKind names a mirrored social flag.
type InteractionKind string

const (
	KindLike            InteractionKind = "like"
	KindSave            InteractionKind = "save"
	KindCommentsVisible InteractionKind = "commentsVisible"
)

// Valid reports whether k is a known kind.
func (k InteractionKind) Valid() bool {
	switch k {
	case KindLike, KindSave, KindCommentsVisible:
		return true
	}
	return false
}

// Comment is a comment on a post as returned by the backend.
type Comment struct {
	ID        string     `json:"_id"`
	PostID    string     `json:"postId,omitempty"`
	Author    string     `json:"author,omitempty"`
	Content   string     `json:"content"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// InteractionRecord is the locally mirrored social state of one entity.
//
// LikeCount is always the last value the backend reported. Liked, Saved and
// CommentsVisible are client-side annotations and may be stale until the
// next authoritative fetch.
type InteractionRecord struct {
	Liked           bool      `json:"liked"`
	LikeCount       int       `json:"likeCount"`
	Saved           bool      `json:"saved"`
	CommentsVisible bool      `json:"commentsVisible"`
	Comments        []Comment `json:"comments"`
}

// Authoritative carries values reported by the backend that overwrite the mirror.
// Nil fields are left untouched.
type Authoritative struct {
	LikeCount *int
	Liked     *bool
	Saved     *bool
	Comments  []Comment
	// ReplaceComments distinguishes "no comment info" from "empty list".
	ReplaceComments bool
}

// LikeResult is the backend reply to a like toggle.
type LikeResult struct {
	Liked      bool `json:"liked"`
	LikesCount int  `json:"likesCount"`
}

// ResetPasswordData bridges the forgot-password and reset-password screens.
type ResetPasswordData struct {
	Domain     IdentityDomain `json:"domain,omitempty"`
	Email      string         `json:"email"`
	ForgetCode string         `json:"forgetCode,omitempty"`
}
