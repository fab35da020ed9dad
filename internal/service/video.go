package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/05Ashutosh/food-recipe/internal/apperror"
	"github.com/05Ashutosh/food-recipe/internal/media"
	"github.com/05Ashutosh/food-recipe/internal/model"
	"github.com/05Ashutosh/food-recipe/internal/repository"
)

const videoPageDefault = 100

// VideoStore persists videos.
type VideoStore interface {
	Create(ctx context.Context, v *model.Video) error
	GetByID(ctx context.Context, id uint64) (model.Video, error)
	List(ctx context.Context, q model.VideoQuery) ([]model.Video, int64, error)
	Delete(ctx context.Context, id uint64) error
}

// RecipeLister lists recipes; the video listing reads video-type recipes.
type RecipeLister interface {
	List(ctx context.Context, q model.RecipeQuery) ([]model.RecipeWithLikes, int64, error)
}

// PublishVideoInput is the video publish form. Duration, in seconds, is used
// when the media store cannot determine it.
type PublishVideoInput struct {
	Title         string
	Description   string
	Category      string
	Difficulty    string
	PrepTime      int
	CookTime      int
	Duration      float64
	Ingredients   []string
	Steps         []string
	VideoPath     string
	ThumbnailPath string
}

// VideoService implements the video endpoints.
type VideoService struct {
	videos  VideoStore
	recipes RecipeLister
	media   media.Store
}

func NewVideoService(videos VideoStore, recipes RecipeLister, store media.Store) *VideoService {
	return &VideoService{videos: videos, recipes: recipes, media: store}
}

// List returns videos followed by video-type recipes presented as videos.
// Both sources are paged with the same page and limit.
func (s *VideoService) List(ctx context.Context, q model.VideoQuery) (model.VideoPage, error) {
	normalizePage(&q.Page, &q.Limit, videoPageDefault)
	videos, nv, err := s.videos.List(ctx, q)
	if err != nil {
		return model.VideoPage{}, apperror.Internal("Failed to fetch videos", err)
	}
	rq := model.RecipeQuery{
		Query:    q.Query,
		OwnerID:  q.OwnerID,
		Type:     model.RecipeTypeVideo,
		Page:     q.Page,
		Limit:    q.Limit,
		SortBy:   q.SortBy,
		SortDesc: q.SortDesc,
	}
	if !repository.ValidRecipeSort(rq.SortBy) {
		rq.SortBy = ""
	}
	recipes, nr, err := s.recipes.List(ctx, rq)
	if err != nil {
		return model.VideoPage{}, apperror.Internal("Failed to fetch videos", err)
	}

	all := make([]model.Video, 0, len(videos)+len(recipes))
	all = append(all, videos...)
	for _, r := range recipes {
		all = append(all, model.RecipeAsVideo(r.Recipe))
	}
	total := nv + nr
	return model.VideoPage{
		Videos:      all,
		TotalVideos: total,
		CurrentPage: q.Page,
		TotalPages:  totalPages(total, q.Limit),
	}, nil
}

// Get returns one video.
func (s *VideoService) Get(ctx context.Context, id uint64) (model.Video, error) {
	v, err := s.videos.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Video{}, apperror.NotFound(fmt.Sprintf("Video with ID %d not found", id))
	}
	if err != nil {
		return model.Video{}, apperror.Internal("Failed to fetch video", err)
	}
	return v, nil
}

// Publish uploads the video and its thumbnail and stores the record.
func (s *VideoService) Publish(ctx context.Context, ownerID uint64, in PublishVideoInput) (model.Video, error) {
	files := []string{in.VideoPath, in.ThumbnailPath}
	var verr error
	switch {
	case strings.TrimSpace(in.Title) == "":
		verr = apperror.Validation("Title is required")
	case strings.TrimSpace(in.Description) == "":
		verr = apperror.Validation("Description is required")
	case in.VideoPath == "":
		verr = apperror.Validation("Video file is required")
	case in.ThumbnailPath == "":
		verr = apperror.Validation("Thumbnail is required")
	case in.Difficulty != "" && !containsString(model.VideoDifficulties, in.Difficulty):
		verr = apperror.Validation("Invalid video difficulty")
	}
	if verr != nil {
		removeTemp(files...)
		return model.Video{}, verr
	}

	video, err := s.media.Upload(ctx, in.VideoPath)
	if err != nil {
		removeTemp(in.ThumbnailPath)
		return model.Video{}, uploadError("Error uploading video file", err)
	}
	thumb, err := s.media.Upload(ctx, in.ThumbnailPath)
	if err != nil {
		discardMedia(ctx, s.media, video.URL)
		return model.Video{}, uploadError("Error uploading thumbnail", err)
	}

	v := model.Video{
		OwnerID:     ownerID,
		VideoFile:   video.URL,
		Thumbnail:   thumb.URL,
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Duration:    video.Duration,
		IsPublished: true,
		Category:    in.Category,
		Difficulty:  in.Difficulty,
		PrepTime:    in.PrepTime,
		CookTime:    in.CookTime,
		Ingredients: in.Ingredients,
		Steps:       in.Steps,
	}
	if v.Duration == 0 && in.Duration > 0 {
		v.Duration = in.Duration
	}
	if v.Category == "" {
		v.Category = "Cooking"
	}
	if v.Difficulty == "" {
		v.Difficulty = model.VideoDifficulties[0]
	}
	if err := s.videos.Create(ctx, &v); err != nil {
		discardMedia(ctx, s.media, video.URL, thumb.URL)
		return model.Video{}, apperror.Internal("Something went wrong while creating video", err)
	}
	created, err := s.videos.GetByID(ctx, v.ID)
	if err != nil {
		return model.Video{}, apperror.Internal("Something went wrong while creating video", err)
	}
	return created, nil
}

// Delete removes a video owned by userID. Media deletion failures are
// logged only.
func (s *VideoService) Delete(ctx context.Context, userID, id uint64) error {
	v, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if v.OwnerID != userID {
		return apperror.Permission("You do not have permission to delete this video")
	}
	discardMedia(ctx, s.media, v.VideoFile, v.Thumbnail)
	if err := s.videos.Delete(ctx, id); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return apperror.Internal("Failed to delete video", err)
	}
	return nil
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
