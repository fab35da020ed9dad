package service

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/05Ashutosh/food-recipe/internal/apperror"
	"github.com/05Ashutosh/food-recipe/internal/logging"
	"github.com/05Ashutosh/food-recipe/internal/media"
	"github.com/05Ashutosh/food-recipe/internal/model"
	"github.com/05Ashutosh/food-recipe/internal/repository"
	"github.com/05Ashutosh/food-recipe/internal/utils"
)

// UserStore is the credential store.
type UserStore interface {
	Create(ctx context.Context, u *model.User) (uint64, error)
	Exists(ctx context.Context, username, email string) (bool, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	GetByUsername(ctx context.Context, username string) (model.User, error)
	GetByLogin(ctx context.Context, login string) (model.User, error)
	UpdateProfile(ctx context.Context, id uint64, p repository.ProfileUpdate) error
	UpdatePassword(ctx context.Context, id uint64, hash string) error
}

// FollowCounter reads follower and following counts.
type FollowCounter interface {
	Counts(ctx context.Context, userID uint64) (model.FollowCounts, error)
}

// OwnerRecipes lists the recipes of one user.
type OwnerRecipes interface {
	ListByOwner(ctx context.Context, ownerID uint64) ([]model.RecipeWithLikes, error)
}

// RegisterInput carries the registration form. AvatarPath and CoverPath are
// local temp files written by the upload handler.
type RegisterInput struct {
	FullName   string
	Email      string
	Username   string
	Password   string
	AvatarPath string
	CoverPath  string
}

// UpdateAccountInput carries the optional fields of an account update.
type UpdateAccountInput struct {
	FullName   *string
	Email      *string
	Bio        *string
	Username   *string
	AvatarPath string
	CoverPath  string
}

// LoginResult is returned by Login.
type LoginResult struct {
	User   model.User
	Tokens model.TokenPair
}

// UserService implements registration, login and account management.
type UserService struct {
	users      UserStore
	follows    FollowCounter
	recipes    OwnerRecipes
	tokens     *TokenService
	media      media.Store
	bcryptCost int
}

func NewUserService(users UserStore, follows FollowCounter, recipes OwnerRecipes, tokens *TokenService, store media.Store, bcryptCost int) *UserService {
	return &UserService{users: users, follows: follows, recipes: recipes, tokens: tokens, media: store, bcryptCost: bcryptCost}
}

// Register creates an account. Uploaded assets are deleted again when the
// account cannot be created.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (model.User, error) {
	files := []string{in.AvatarPath, in.CoverPath}
	for _, f := range []string{in.FullName, in.Email, in.Username, in.Password} {
		if strings.TrimSpace(f) == "" {
			removeTemp(files...)
			return model.User{}, apperror.Validation("All fields are required")
		}
	}
	exists, err := s.users.Exists(ctx, in.Username, in.Email)
	if err != nil {
		removeTemp(files...)
		return model.User{}, apperror.Internal("User lookup failed", err)
	}
	if exists {
		removeTemp(files...)
		return model.User{}, apperror.Conflict("User with email or username already exists")
	}
	if in.AvatarPath == "" {
		removeTemp(files...)
		return model.User{}, apperror.Validation("Avatar file is required")
	}

	hash, err := utils.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		removeTemp(files...)
		return model.User{}, apperror.Internal("Password hashing failed", err)
	}

	avatar, err := s.media.Upload(ctx, in.AvatarPath)
	if err != nil {
		removeTemp(in.CoverPath)
		return model.User{}, uploadError("Avatar upload failed", err)
	}
	uploaded := []string{avatar.URL}
	var cover media.Asset
	if in.CoverPath != "" {
		if cover, err = s.media.Upload(ctx, in.CoverPath); err != nil {
			s.discard(ctx, uploaded...)
			return model.User{}, uploadError("Cover image upload failed", err)
		}
		uploaded = append(uploaded, cover.URL)
	}

	u := model.User{
		Username:     in.Username,
		Email:        in.Email,
		FullName:     in.FullName,
		Avatar:       avatar.URL,
		CoverImage:   cover.URL,
		PasswordHash: hash,
	}
	if _, err := s.users.Create(ctx, &u); err != nil {
		s.discard(ctx, uploaded...)
		if errors.Is(err, repository.ErrDuplicate) {
			return model.User{}, apperror.Conflict("User with email or username already exists")
		}
		return model.User{}, apperror.Internal("User registration failed", err)
	}
	created, err := s.users.GetByID(ctx, u.ID)
	if err != nil {
		return model.User{}, apperror.Internal("User registration failed", err)
	}
	logging.Ctx(ctx).Info().Uint64("user_id", created.ID).Msg("user registered")
	return created.WithoutSecrets(), nil
}

// Login accepts a username or an email. Unknown users yield NotFound, a
// wrong password yields Auth and stores no tokens.
func (s *UserService) Login(ctx context.Context, login, password string) (LoginResult, error) {
	login = strings.TrimSpace(login)
	if login == "" {
		return LoginResult{}, apperror.Validation("Username or email is required")
	}
	u, err := s.users.GetByLogin(ctx, login)
	if errors.Is(err, repository.ErrNotFound) {
		return LoginResult{}, apperror.NotFound("User not found")
	}
	if err != nil {
		return LoginResult{}, apperror.Internal("User lookup failed", err)
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return LoginResult{}, apperror.Auth("Invalid credentials")
	}
	pair, err := s.tokens.Issue(ctx, u.ID)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{User: u.WithoutSecrets(), Tokens: pair}, nil
}

// Logout revokes the stored refresh token.
func (s *UserService) Logout(ctx context.Context, userID uint64) error {
	return s.tokens.Revoke(ctx, userID)
}

// Current loads the session user without its secret fields. Used by the
// session middleware.
func (s *UserService) Current(ctx context.Context, userID uint64) (model.User, error) {
	u, err := s.load(ctx, userID)
	if err != nil {
		return model.User{}, err
	}
	return u.WithoutSecrets(), nil
}

func (s *UserService) load(ctx context.Context, userID uint64) (model.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return model.User{}, ErrInvalidToken
	}
	if err != nil {
		return model.User{}, apperror.Internal("User lookup failed", err)
	}
	return u, nil
}

// ChangePassword replaces the password after checking the old one.
func (s *UserService) ChangePassword(ctx context.Context, userID uint64, oldPassword, newPassword string) error {
	if oldPassword == "" || newPassword == "" {
		return apperror.Validation("Old Password and New Password are required")
	}
	u, err := s.load(ctx, userID)
	if err != nil {
		return err
	}
	if !utils.VerifyPassword(u.PasswordHash, oldPassword) {
		return apperror.Validation("Invalid old password")
	}
	hash, err := utils.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return apperror.Internal("Password hashing failed", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return apperror.Internal("Password update failed", err)
	}
	return nil
}

// UpdateAccount applies the provided fields. New avatar or cover images
// replace the old ones, which are deleted from the media store on a best
// effort basis.
func (s *UserService) UpdateAccount(ctx context.Context, userID uint64, in UpdateAccountInput) (model.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		removeTemp(in.AvatarPath, in.CoverPath)
		if errors.Is(err, repository.ErrNotFound) {
			return model.User{}, apperror.NotFound("User not found")
		}
		return model.User{}, apperror.Internal("User lookup failed", err)
	}

	var p repository.ProfileUpdate
	if in.FullName != nil && strings.TrimSpace(*in.FullName) != "" {
		v := strings.TrimSpace(*in.FullName)
		p.FullName = &v
	}
	if in.Email != nil && strings.TrimSpace(*in.Email) != "" {
		v := strings.TrimSpace(*in.Email)
		p.Email = &v
	}
	p.Bio = in.Bio
	if in.Username != nil {
		if v := strings.ToLower(strings.TrimSpace(*in.Username)); v != "" && v != u.Username {
			p.Username = &v
		}
	}

	var uploaded []string
	if in.AvatarPath != "" {
		a, err := s.media.Upload(ctx, in.AvatarPath)
		if err != nil {
			removeTemp(in.CoverPath)
			return model.User{}, uploadError("Avatar upload failed", err)
		}
		uploaded = append(uploaded, a.URL)
		p.Avatar = &a.URL
	}
	if in.CoverPath != "" {
		c, err := s.media.Upload(ctx, in.CoverPath)
		if err != nil {
			s.discard(ctx, uploaded...)
			return model.User{}, uploadError("Cover upload failed", err)
		}
		uploaded = append(uploaded, c.URL)
		p.CoverImage = &c.URL
	}

	if err := s.users.UpdateProfile(ctx, userID, p); err != nil {
		s.discard(ctx, uploaded...)
		if errors.Is(err, repository.ErrDuplicate) {
			return model.User{}, apperror.Conflict("Username or email already taken")
		}
		return model.User{}, apperror.Internal("Account update failed", err)
	}
	if p.Avatar != nil && u.Avatar != "" {
		s.discard(ctx, u.Avatar)
	}
	if p.CoverImage != nil && u.CoverImage != "" {
		s.discard(ctx, u.CoverImage)
	}
	return s.Current(ctx, userID)
}

// Profile returns the public profile of username with its recipes.
func (s *UserService) Profile(ctx context.Context, username string) (model.Profile, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Profile{}, apperror.NotFound("User not found")
	}
	if err != nil {
		return model.Profile{}, apperror.Internal("User lookup failed", err)
	}
	counts, err := s.follows.Counts(ctx, u.ID)
	if err != nil {
		return model.Profile{}, apperror.Internal("Profile lookup failed", err)
	}
	recipes, err := s.recipes.ListByOwner(ctx, u.ID)
	if err != nil {
		return model.Profile{}, apperror.Internal("Profile lookup failed", err)
	}
	return model.Profile{
		User: model.ProfileUser{
			ID:           u.ID,
			Username:     u.Username,
			FullName:     u.FullName,
			Avatar:       u.Avatar,
			CoverImage:   u.CoverImage,
			Bio:          u.Bio,
			FollowCounts: counts,
		},
		Recipes: recipes,
	}, nil
}

// discard deletes uploaded assets, logging failures.
func (s *UserService) discard(ctx context.Context, urls ...string) {
	discardMedia(ctx, s.media, urls...)
}

func discardMedia(ctx context.Context, store media.Store, urls ...string) {
	for _, u := range urls {
		if u == "" {
			continue
		}
		if err := store.Delete(ctx, u); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("url", u).Msg("media delete failed")
		}
	}
}

func uploadError(msg string, err error) error {
	if errors.Is(err, media.ErrEmptyFile) {
		return apperror.Validation("Invalid file content", err)
	}
	return apperror.Upstream(msg, err)
}

// removeTemp deletes local upload files that never reached the media store.
func removeTemp(paths ...string) {
	for _, p := range paths {
		if p != "" {
			_ = os.Remove(p)
		}
	}
}
