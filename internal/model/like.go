package model

import "time"

// LikeTarget names the kind of content a like points at.
type LikeTarget string

const (
	LikeVideo   LikeTarget = "video"
	LikeRecipe  LikeTarget = "recipe"
	LikeComment LikeTarget = "comment"
)

// Like represents a row of the `likes` table. Exactly one of the target
// ids is set.
type Like struct {
	ID        uint64    `json:"_id"`
	LikedBy   uint64    `json:"likedBy"`
	VideoID   *uint64   `json:"video,omitempty"`
	RecipeID  *uint64   `json:"recipe,omitempty"`
	CommentID *uint64   `json:"comment,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// LikedVideo is one entry of the liked-videos listing.
type LikedVideo struct {
	ID           uint64 `json:"_id"` // like id
	VideoDetails Video  `json:"videoDetails"`
}
