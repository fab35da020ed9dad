package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/05Ashutosh/food-recipe/internal/middleware"
	"github.com/05Ashutosh/food-recipe/internal/model"
	"github.com/05Ashutosh/food-recipe/internal/service"
)

const refreshCookie = "refreshToken"

// CookieConfig controls the session cookies.
type CookieConfig struct {
	Secure     bool
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// AuthHandler serves the account endpoints under /users.
type AuthHandler struct {
	Users   *service.UserService
	Tokens  *service.TokenService
	Uploads Uploads
	Cookies CookieConfig
}

func NewAuthHandler(users *service.UserService, tokens *service.TokenService, uploads Uploads, cookies CookieConfig) *AuthHandler {
	return &AuthHandler{Users: users, Tokens: tokens, Uploads: uploads, Cookies: cookies}
}

// ----- DTOs -----

type loginReq struct {
	Username string `json:"username" form:"username" validate:"required_without=Email"`
	Email    string `json:"email" form:"email" validate:"required_without=Username"`
	Password string `json:"password" form:"password" validate:"required"`
}

type refreshReq struct {
	RefreshToken string `json:"refreshToken" form:"refreshToken"`
}

type changePasswordReq struct {
	OldPassword string `json:"oldPassword" form:"oldPassword"`
	NewPassword string `json:"newPassword" form:"newPassword"`
}

type loginResp struct {
	User         model.User `json:"user"`
	AccessToken  string     `json:"accessToken"`
	RefreshToken string     `json:"refreshToken"`
}

func dbCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), 5*time.Second)
}

// uploadCtx bounds handlers that talk to the media store.
func uploadCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), 60*time.Second)
}

// Register: multipart fullName, email, username, password, avatar, coverImage.
func (h *AuthHandler) Register(c echo.Context) error {
	files, err := h.Uploads.SaveAll(c, "avatar", "coverImage")
	if err != nil {
		return err
	}
	ctx, cancel := uploadCtx(c)
	defer cancel()

	u, err := h.Users.Register(ctx, service.RegisterInput{
		FullName:   c.FormValue("fullName"),
		Email:      c.FormValue("email"),
		Username:   c.FormValue("username"),
		Password:   c.FormValue("password"),
		AvatarPath: files["avatar"],
		CoverPath:  files["coverImage"],
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, u, "User registered successfully")
}

// Login accepts a username or an email and sets the session cookies.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := bindValid(c, &req); err != nil {
		return err
	}
	login := req.Username
	if login == "" {
		login = req.Email
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	res, err := h.Users.Login(ctx, login, req.Password)
	if err != nil {
		return err
	}
	h.setSession(c, res.Tokens)
	return respond(c, http.StatusOK, loginResp{
		User:         res.User,
		AccessToken:  res.Tokens.AccessToken,
		RefreshToken: res.Tokens.RefreshToken,
	}, "Login successful")
}

// Refresh rotates the session. The token comes from the cookie or the body.
func (h *AuthHandler) Refresh(c echo.Context) error {
	raw := ""
	if ck, err := c.Cookie(refreshCookie); err == nil {
		raw = ck.Value
	}
	if raw == "" {
		var req refreshReq
		_ = c.Bind(&req)
		raw = req.RefreshToken
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	pair, err := h.Tokens.Refresh(ctx, raw)
	if err != nil {
		return err
	}
	h.setSession(c, pair)
	return respond(c, http.StatusOK, pair, "Access token refreshed successfully")
}

// Logout revokes the refresh token and clears both cookies.
func (h *AuthHandler) Logout(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := h.Users.Logout(ctx, middleware.UserID(c)); err != nil {
		return err
	}
	h.clearSession(c)
	return respond(c, http.StatusOK, nil, "Logout successful")
}

func (h *AuthHandler) ChangePassword(c echo.Context) error {
	var req changePasswordReq
	if err := c.Bind(&req); err != nil {
		return err
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := h.Users.ChangePassword(ctx, middleware.UserID(c), req.OldPassword, req.NewPassword); err != nil {
		return err
	}
	return respond(c, http.StatusOK, nil, "Password changed successfully")
}

func (h *AuthHandler) CurrentUser(c echo.Context) error {
	u, _ := middleware.CurrentUser(c)
	return respond(c, http.StatusOK, echo.Map{"user": u}, "User details fetched successfully")
}

// UpdateAccount: multipart or JSON; absent fields stay unchanged.
func (h *AuthHandler) UpdateAccount(c echo.Context) error {
	files, err := h.Uploads.SaveAll(c, "avatar", "coverImage")
	if err != nil {
		return err
	}
	in := service.UpdateAccountInput{AvatarPath: files["avatar"], CoverPath: files["coverImage"]}
	var body struct {
		FullName *string `json:"fullName" form:"fullName"`
		Email    *string `json:"email" form:"email"`
		Bio      *string `json:"bio" form:"bio"`
		Username *string `json:"username" form:"username"`
	}
	if err := c.Bind(&body); err != nil {
		discardTemp(in.AvatarPath, in.CoverPath)
		return err
	}
	in.FullName, in.Email, in.Bio, in.Username = body.FullName, body.Email, body.Bio, body.Username

	ctx, cancel := uploadCtx(c)
	defer cancel()
	u, err := h.Users.UpdateAccount(ctx, middleware.UserID(c), in)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, u, "Account details updated successfully")
}

// Profile is public: GET /users/profile/:username.
func (h *AuthHandler) Profile(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()
	p, err := h.Users.Profile(ctx, c.Param("username"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, p, "Profile fetched")
}

func (h *AuthHandler) setSession(c echo.Context, pair model.TokenPair) {
	c.SetCookie(h.cookie(middleware.AccessCookie, pair.AccessToken, h.Cookies.AccessTTL))
	c.SetCookie(h.cookie(refreshCookie, pair.RefreshToken, h.Cookies.RefreshTTL))
}

func (h *AuthHandler) clearSession(c echo.Context) {
	for _, name := range []string{middleware.AccessCookie, refreshCookie} {
		ck := h.cookie(name, "", 0)
		ck.MaxAge = -1
		ck.Expires = time.Unix(0, 0)
		c.SetCookie(ck)
	}
}

func (h *AuthHandler) cookie(name, value string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.Cookies.Secure,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(ttl / time.Second),
	}
}
