package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/05Ashutosh/food-recipe/internal/model"
)

// UserRepo reads and writes the users table.
type UserRepo struct{ db *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

const userColumns = `id, username, email, full_name, COALESCE(bio, ''), avatar, cover_image,
	password_hash, COALESCE(refresh_token_hash, ''), created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.FullName, &u.Bio, &u.Avatar, &u.CoverImage,
		&u.PasswordHash, &u.RefreshTokenHash, &u.CreatedAt, &u.UpdatedAt)
	return u, notFound(err)
}

// Create inserts u and returns its id. Username and email are normalized;
// a clash on either yields ErrDuplicate.
func (r *UserRepo) Create(ctx context.Context, u *model.User) (uint64, error) {
	const q = `INSERT INTO users (username, email, password_hash, full_name, bio, avatar, cover_image)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	u.Username = normalize(u.Username)
	u.Email = normalize(u.Email)
	res, err := r.db.ExecContext(ctx, q, u.Username, u.Email, u.PasswordHash, u.FullName, u.Bio, u.Avatar, u.CoverImage)
	if err != nil {
		if isDuplicate(err) {
			return 0, ErrDuplicate
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	u.ID = uint64(id)
	return u.ID, nil
}

// Exists reports whether a user already holds username or email.
func (r *UserRepo) Exists(ctx context.Context, username, email string) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM users WHERE username = ? OR email = ?)`
	var ok bool
	err := r.db.QueryRowContext(ctx, q, normalize(username), normalize(email)).Scan(&ok)
	return ok, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id = ? LIMIT 1`
	return scanUser(r.db.QueryRowContext(ctx, q, id))
}

// GetByUsername fetches a user by case-insensitive username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (model.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE username = ? LIMIT 1`
	return scanUser(r.db.QueryRowContext(ctx, q, normalize(username)))
}

// GetByLogin fetches a user whose username or email equals login.
func (r *UserRepo) GetByLogin(ctx context.Context, login string) (model.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE username = ? OR email = ? LIMIT 1`
	login = normalize(login)
	return scanUser(r.db.QueryRowContext(ctx, q, login, login))
}

// ProfileUpdate carries the optional fields of an account update. Nil
// pointers leave the column untouched.
type ProfileUpdate struct {
	FullName   *string
	Email      *string
	Bio        *string
	Username   *string
	Avatar     *string
	CoverImage *string
}

// normalize lower-cases usernames and emails; both are matched
// case-insensitively.
func normalize(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func normalized(s *string) *string {
	if s == nil {
		return nil
	}
	v := normalize(*s)
	return &v
}

func (p ProfileUpdate) empty() bool {
	return p.FullName == nil && p.Email == nil && p.Bio == nil && p.Username == nil && p.Avatar == nil && p.CoverImage == nil
}

// UpdateProfile applies the non-nil fields of p to user id. Concurrent
// updates are last-writer-wins.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uint64, p ProfileUpdate) error {
	if p.empty() {
		return nil
	}
	var (
		sets []string
		args []any
	)
	add := func(col string, v *string) {
		if v != nil {
			sets = append(sets, col+" = ?")
			args = append(args, *v)
		}
	}
	add("full_name", p.FullName)
	add("email", normalized(p.Email))
	add("bio", p.Bio)
	add("username", normalized(p.Username))
	add("avatar", p.Avatar)
	add("cover_image", p.CoverImage)
	args = append(args, id)

	res, err := r.db.ExecContext(ctx, `UPDATE users SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	// MySQL reports 0 affected rows when values are unchanged, so only a
	// missing row is worth checking for.
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// UpdatePassword stores a new password hash.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uint64, hash string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET password_hash = ? WHERE id = ?`, hash, id)
	return err
}
