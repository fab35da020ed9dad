package model

import "time"

// VideoDifficulties lists the accepted values of Video.Difficulty.
var VideoDifficulties = []string{"Easy", "Medium", "Hard"}

// Video represents a row of the `videos` table. Listings also return
// video-type recipes converted with RecipeAsVideo.
type Video struct {
	ID          uint64       `json:"_id"`
	OwnerID     uint64       `json:"-"`
	Owner       *UserSummary `json:"owner,omitempty"`
	VideoFile   string       `json:"videoFile"`
	Thumbnail   string       `json:"thumbnail"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Duration    float64      `json:"duration"` // seconds
	Views       int64        `json:"views"`
	IsPublished bool         `json:"isPublished"`
	Category    string       `json:"category"`
	Difficulty  string       `json:"difficulty"`
	PrepTime    int          `json:"prepTime"`
	CookTime    int          `json:"cookTime"`
	Ingredients []string     `json:"ingredients"`
	Steps       []string     `json:"steps"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// RecipeAsVideo presents a video-type recipe in the video listing. The media
// file doubles as the thumbnail and the duration is estimated from the
// preparation and cooking times.
func RecipeAsVideo(r Recipe) Video {
	return Video{
		ID:          r.ID,
		OwnerID:     r.OwnerID,
		Owner:       r.Owner,
		VideoFile:   r.MediaFile,
		Thumbnail:   r.MediaFile,
		Title:       r.Title,
		Description: r.Description,
		Duration:    float64((r.PrepTime + r.CookTime) * 60),
		IsPublished: true,
		Category:    r.Category,
		Difficulty:  r.Difficulty,
		PrepTime:    r.PrepTime,
		CookTime:    r.CookTime,
		Ingredients: r.Ingredients,
		Steps:       r.Steps,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// VideoQuery filters and paginates the video listing.
type VideoQuery struct {
	Query    string
	OwnerID  uint64
	Page     int
	Limit    int
	SortBy   string
	SortDesc bool
}

// VideoPage is one page of the merged video listing.
type VideoPage struct {
	Videos      []Video `json:"videos"`
	TotalVideos int64   `json:"totalVideos"`
	CurrentPage int     `json:"currentPage"`
	TotalPages  int     `json:"totalPages"`
}
