package model

import "time"

// User represents a row of the `users` table. The password hash and the
// refresh token hash never leave the process: both are tagged json:"-".
type User struct {
	ID               uint64    `json:"_id"`        // users.id
	Username         string    `json:"username"`   // users.username (lowercase, unique)
	Email            string    `json:"email"`      // users.email (unique)
	FullName         string    `json:"fullName"`   // users.full_name
	Bio              string    `json:"bio"`        // users.bio
	Avatar           string    `json:"avatar"`     // users.avatar (media URL)
	CoverImage       string    `json:"coverImage"` // users.cover_image (media URL, may be empty)
	PasswordHash     string    `json:"-"`          // users.password_hash
	RefreshTokenHash string    `json:"-"`          // users.refresh_token_hash, empty when logged out
	CreatedAt        time.Time `json:"createdAt"`  // users.created_at
	UpdatedAt        time.Time `json:"updatedAt"`  // users.updated_at
}

// UserSummary is the public slice of a user embedded in other resources
// (notification sender, recipe owner).
type UserSummary struct {
	ID       uint64 `json:"_id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	FullName string `json:"fullName,omitempty"`
	Avatar   string `json:"avatar"`
}

// Summary returns the public fields of u.
func (u User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Username: u.Username, Email: u.Email, FullName: u.FullName, Avatar: u.Avatar}
}

// WithoutSecrets returns a copy of u with both hashes cleared. Users
// handed to the session layer and to responses go through it.
func (u User) WithoutSecrets() User {
	u.PasswordHash, u.RefreshTokenHash = "", ""
	return u
}

// FollowCounts are the follower and following totals of one user.
type FollowCounts struct {
	FollowersCount int64 `json:"followersCount"`
	FollowingCount int64 `json:"followingCount"`
}

// Profile is the public view returned by GET /users/profile/:username.
type Profile struct {
	User    ProfileUser       `json:"user"`
	Recipes []RecipeWithLikes `json:"recipes"`
}

// ProfileUser is the user part of a Profile.
type ProfileUser struct {
	ID         uint64 `json:"_id"`
	Username   string `json:"username"`
	FullName   string `json:"fullName"`
	Avatar     string `json:"avatar"`
	CoverImage string `json:"coverImage"`
	Bio        string `json:"bio"`
	FollowCounts
}

// TokenPair is the result of a login or refresh.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}
