package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"finance-tracker/internal/models"
	"finance-tracker/internal/store"
	"finance-tracker/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const (
	maxFailedLogins = 5
	lockDuration    = 10 * time.Minute
)

// UserStore is the persistence the auth endpoints need; *store.Users
// satisfies it.
type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	EmailExists(ctx context.Context, email string) (bool, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	Save(ctx context.Context, u *models.User) error
}

// AuthHandler serves registration, login and the current user's profile.
type AuthHandler struct {
	Users      UserStore
	JWTSecret  string
	Issuer     string
	TokenTTL   time.Duration
	BcryptCost int
	Log        zerolog.Logger
}

func NewAuthHandler(users UserStore, jwtSecret, issuer string, ttlHours, bcryptCost int, log zerolog.Logger) *AuthHandler {
	if ttlHours <= 0 {
		ttlHours = 24
	}
	return &AuthHandler{
		Users:      users,
		JWTSecret:  jwtSecret,
		Issuer:     issuer,
		TokenTTL:   time.Duration(ttlHours) * time.Hour,
		BcryptCost: bcryptCost,
		Log:        log,
	}
}

type userResp struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

func toUserResp(u *models.User) userResp {
	return userResp{ID: u.ID, Name: u.Name, Email: u.Email, CreatedAt: u.CreatedAt}
}

// ---------- register ----------

type registerReq struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, "Please provide name, email and password")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)

	if err := util.ValidateLength("Name", req.Name, 1, 64); err != nil {
		util.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := util.ValidateEmail(req.Email); err != nil {
		util.Error(c, http.StatusBadRequest, "Please provide a valid email")
		return
	}
	if err := util.ValidatePassword(req.Password); err != nil {
		util.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	ctx := c.Request.Context()
	exists, err := h.Users.EmailExists(ctx, req.Email)
	if err != nil {
		h.Log.Error().Err(err).Msg("check email")
		util.Error(c, http.StatusInternalServerError, "Server error during registration")
		return
	}
	if exists {
		util.Error(c, http.StatusBadRequest, "User already exists")
		return
	}

	hash, err := util.HashPassword(req.Password, h.BcryptCost)
	if err != nil {
		h.Log.Error().Err(err).Msg("hash password")
		util.Error(c, http.StatusInternalServerError, "Server error during registration")
		return
	}

	user := models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
	}
	if err := h.Users.Create(ctx, &user); err != nil {
		// lost a race with a concurrent registration of the same email
		if errors.Is(err, store.ErrDuplicate) {
			util.Error(c, http.StatusBadRequest, "User already exists")
			return
		}
		h.Log.Error().Err(err).Msg("create user")
		util.Error(c, http.StatusInternalServerError, "Server error during registration")
		return
	}

	token, err := util.GenerateToken(h.JWTSecret, h.Issuer, user.ID, h.TokenTTL)
	if err != nil {
		h.Log.Error().Err(err).Str("user_id", user.ID).Msg("sign token")
		util.Error(c, http.StatusInternalServerError, "Server error during registration")
		return
	}

	h.Log.Info().Str("user_id", user.ID).Msg("user registered")
	util.Success(c, http.StatusCreated, util.Response{
		"message": "User registered successfully",
		"token":   token,
		"user":    toUserResp(&user),
	})
}

// ---------- login ----------

type loginReq struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, "Please provide email and password")
		return
	}

	ctx := c.Request.Context()
	user, err := h.Users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			util.Error(c, http.StatusUnauthorized, "Invalid credentials")
		} else {
			h.Log.Error().Err(err).Msg("find user")
			util.Error(c, http.StatusInternalServerError, "Server error during login")
		}
		return
	}

	now := time.Now()

	if user.LockedUntil != nil && now.Before(*user.LockedUntil) {
		util.Error(c, http.StatusUnauthorized, "Account is locked, please try again later")
		return
	}

	if !util.CheckPassword(req.Password, user.PasswordHash) {
		// lock the account after too many consecutive failures
		user.FailedLoginAttempts++
		if user.FailedLoginAttempts >= maxFailedLogins {
			lockUntil := now.Add(lockDuration)
			user.LockedUntil = &lockUntil
			user.FailedLoginAttempts = 0
		}
		if err := h.Users.Save(ctx, user); err != nil {
			h.Log.Warn().Err(err).Str("user_id", user.ID).Msg("record failed login")
		}
		util.Error(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	user.FailedLoginAttempts = 0
	user.LockedUntil = nil
	user.LastLoginAt = &now
	user.LastLoginIP = c.ClientIP()
	if err := h.Users.Save(ctx, user); err != nil {
		h.Log.Warn().Err(err).Str("user_id", user.ID).Msg("record login")
	}

	token, err := util.GenerateToken(h.JWTSecret, h.Issuer, user.ID, h.TokenTTL)
	if err != nil {
		h.Log.Error().Err(err).Str("user_id", user.ID).Msg("sign token")
		util.Error(c, http.StatusInternalServerError, "Server error during login")
		return
	}

	util.OK(c, util.Response{
		"token": token,
		"user":  toUserResp(user),
	})
}
