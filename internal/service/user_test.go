package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/05Ashutosh/food-recipe/internal/apperror"
	"github.com/05Ashutosh/food-recipe/internal/model"
)

type userFixture struct {
	svc    *UserService
	users  *fakeUsers
	tokens *fakeTokens
	media  *fakeMedia
	follow *fakeFollows
	recs   *fakeRecipes
}

func newUserFixture() *userFixture {
	tokens := newFakeTokens()
	f := &userFixture{
		tokens: tokens,
		users:  newFakeUsers(tokens),
		media:  &fakeMedia{failOn: map[string]bool{}},
		follow: newFakeFollows(),
		recs:   newFakeRecipes(),
	}
	f.svc = NewUserService(f.users, f.follow, f.recs, newTokenService(tokens), f.media, bcrypt.MinCost)
	return f
}

// tempFile creates a non-empty upload in the test's temp dir.
func tempFile(t *testing.T, name string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte("payload"), 0o600))
	return p
}

func (f *userFixture) register(t *testing.T, username string) model.User {
	t.Helper()
	u, err := f.svc.Register(context.Background(), RegisterInput{
		FullName:   "Full " + username,
		Email:      username + "@example.com",
		Username:   username,
		Password:   "secret-pw",
		AvatarPath: tempFile(t, username+"-avatar.png"),
	})
	require.NoError(t, err)
	return u
}

func TestRegisterThenLogin(t *testing.T) {
	f := newUserFixture()
	u := f.register(t, "Chef")
	assert.Equal(t, "chef", u.Username)
	assert.Equal(t, "chef@example.com", u.Email)
	assert.NotEmpty(t, u.Avatar)
	assert.Empty(t, u.PasswordHash)

	res, err := f.svc.Login(context.Background(), "Chef@Example.com", "secret-pw")
	require.NoError(t, err)
	assert.Equal(t, u.ID, res.User.ID)
	assert.Empty(t, res.User.PasswordHash)
	assert.Empty(t, res.User.RefreshTokenHash)
	assert.NotEmpty(t, res.Tokens.AccessToken)
	assert.NotEmpty(t, f.tokens.hashes[u.ID])
}

func TestLoginWrongPasswordStoresNoTokens(t *testing.T) {
	f := newUserFixture()
	u := f.register(t, "amy")

	res, err := f.svc.Login(context.Background(), "amy", "nope")
	assert.Equal(t, apperror.KindAuth, apperror.KindOf(err))
	assert.Empty(t, res.Tokens.AccessToken)
	assert.Empty(t, f.tokens.hashes[u.ID])
}

func TestLoginErrors(t *testing.T) {
	f := newUserFixture()

	_, err := f.svc.Login(context.Background(), "  ", "x")
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	_, err = f.svc.Login(context.Background(), "ghost", "x")
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestRegisterValidationRemovesTempFiles(t *testing.T) {
	f := newUserFixture()
	avatar := tempFile(t, "a.png")

	_, err := f.svc.Register(context.Background(), RegisterInput{Email: "x@y.z", AvatarPath: avatar})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	assert.NoFileExists(t, avatar)
	assert.Empty(t, f.media.uploaded)
}

func TestRegisterRequiresAvatar(t *testing.T) {
	f := newUserFixture()
	_, err := f.svc.Register(context.Background(), RegisterInput{
		FullName: "A", Email: "a@b.c", Username: "a", Password: "p",
	})
	require.Error(t, err)
	assert.Equal(t, "Avatar file is required", err.Error())
}

func TestRegisterDuplicate(t *testing.T) {
	f := newUserFixture()
	f.register(t, "amy")
	cover := tempFile(t, "c.png")

	_, err := f.svc.Register(context.Background(), RegisterInput{
		FullName: "Other", Email: "amy@example.com", Username: "other", Password: "p",
		AvatarPath: tempFile(t, "a.png"), CoverPath: cover,
	})
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
	assert.NoFileExists(t, cover)
}

func TestRegisterCoverFailureDeletesAvatar(t *testing.T) {
	f := newUserFixture()
	cover := tempFile(t, "cover.png")
	f.media.failOn[cover] = true

	_, err := f.svc.Register(context.Background(), RegisterInput{
		FullName: "A", Email: "a@b.c", Username: "a", Password: "p",
		AvatarPath: tempFile(t, "a.png"), CoverPath: cover,
	})
	require.Error(t, err)
	require.Len(t, f.media.uploaded, 1)
	assert.Equal(t, f.media.uploaded, f.media.deleted)
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	f := newUserFixture()
	u := f.register(t, "amy")

	err := f.svc.ChangePassword(ctx, u.ID, "wrong", "new-pw")
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	require.NoError(t, f.svc.ChangePassword(ctx, u.ID, "secret-pw", "new-pw"))
	_, err = f.svc.Login(ctx, "amy", "new-pw")
	assert.NoError(t, err)
}

func TestCurrentStripsSecrets(t *testing.T) {
	ctx := context.Background()
	f := newUserFixture()
	u := f.register(t, "amy")
	_, err := f.svc.Login(ctx, "amy", "secret-pw")
	require.NoError(t, err)

	cur, err := f.svc.Current(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "amy", cur.Username)
	assert.Empty(t, cur.PasswordHash)
	assert.Empty(t, cur.RefreshTokenHash)

	_, err = f.svc.Current(ctx, 999)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestUpdateAccountReplacesAvatar(t *testing.T) {
	ctx := context.Background()
	f := newUserFixture()
	u := f.register(t, "amy")
	bio := "I bake"
	name := "amy2"

	updated, err := f.svc.UpdateAccount(ctx, u.ID, UpdateAccountInput{
		Bio:        &bio,
		Username:   &name,
		AvatarPath: tempFile(t, "new.png"),
	})
	require.NoError(t, err)

	assert.Equal(t, "I bake", updated.Bio)
	assert.Equal(t, "amy2", updated.Username)
	assert.NotEqual(t, u.Avatar, updated.Avatar)
	assert.Equal(t, []string{u.Avatar}, f.media.deleted)
}

func TestUpdateAccountUsernameTaken(t *testing.T) {
	f := newUserFixture()
	f.register(t, "amy")
	bob := f.register(t, "bob")
	taken := "amy"

	_, err := f.svc.UpdateAccount(context.Background(), bob.ID, UpdateAccountInput{Username: &taken})
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
}

func TestProfile(t *testing.T) {
	ctx := context.Background()
	f := newUserFixture()
	chef := f.register(t, "chef")
	amy := f.register(t, "amy")
	_, _, _ = f.follow.Follow(ctx, amy.ID, chef.ID)
	f.recs.put(model.Recipe{OwnerID: chef.ID, Title: "Soup", Type: model.RecipeTypeImage, CreatedAt: time.Now()})

	p, err := f.svc.Profile(ctx, "CHEF")
	require.NoError(t, err)
	assert.Equal(t, chef.ID, p.User.ID)
	assert.Equal(t, int64(1), p.User.FollowersCount)
	require.Len(t, p.Recipes, 1)
	assert.Equal(t, "Soup", p.Recipes[0].Title)

	_, err = f.svc.Profile(ctx, "ghost")
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}
