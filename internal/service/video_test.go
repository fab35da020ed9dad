package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/05Ashutosh/food-recipe/internal/apperror"
	"github.com/05Ashutosh/food-recipe/internal/model"
)

func TestVideoListMergesVideoRecipes(t *testing.T) {
	videos := newFakeVideos()
	recs := newFakeRecipes()
	require.NoError(t, videos.Create(context.Background(), &model.Video{Title: "Knife skills"}))
	recs.put(model.Recipe{Title: "Omelette", Type: model.RecipeTypeVideo, MediaFile: "https://media.test/o.mp4", PrepTime: 2, CookTime: 3})
	recs.put(model.Recipe{Title: "Bread", Type: model.RecipeTypeImage})

	page, err := NewVideoService(videos, recs, &fakeMedia{}).List(context.Background(), model.VideoQuery{Limit: 1})
	require.NoError(t, err)

	assert.Equal(t, int64(2), page.TotalVideos)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Videos, 2)
	v := page.Videos[1]
	assert.Equal(t, "Omelette", v.Title)
	assert.Equal(t, v.VideoFile, v.Thumbnail)
	assert.InDelta(t, 300.0, v.Duration, 0.001)
}

func TestPublishVideo(t *testing.T) {
	videos := newFakeVideos()
	m := &fakeMedia{}
	svc := NewVideoService(videos, newFakeRecipes(), m)

	v, err := svc.Publish(context.Background(), 3, PublishVideoInput{
		Title: "Dumplings", Description: "Folding", Duration: 95,
		VideoPath: tempFile(t, "v.mp4"), ThumbnailPath: tempFile(t, "t.jpg"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Cooking", v.Category)
	assert.Equal(t, "Easy", v.Difficulty)
	assert.InDelta(t, 95.0, v.Duration, 0.001)
	assert.Len(t, m.uploaded, 2)
}

func TestPublishVideoRequiresThumbnail(t *testing.T) {
	m := &fakeMedia{}
	video := tempFile(t, "v.mp4")

	_, err := NewVideoService(newFakeVideos(), newFakeRecipes(), m).Publish(context.Background(), 3, PublishVideoInput{
		Title: "x", Description: "y", VideoPath: video,
	})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	assert.NoFileExists(t, video)
	assert.Empty(t, m.uploaded)
}

func TestDeleteVideoOwnerOnly(t *testing.T) {
	ctx := context.Background()
	videos := newFakeVideos()
	v := &model.Video{OwnerID: 1, VideoFile: "https://media.test/v", Thumbnail: "https://media.test/t"}
	require.NoError(t, videos.Create(ctx, v))
	m := &fakeMedia{}
	svc := NewVideoService(videos, newFakeRecipes(), m)

	assert.Equal(t, apperror.KindPermission, apperror.KindOf(svc.Delete(ctx, 2, v.ID)))
	require.NoError(t, svc.Delete(ctx, 1, v.ID))
	assert.ElementsMatch(t, []string{v.VideoFile, v.Thumbnail}, m.deleted)
}
