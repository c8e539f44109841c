package handler

import (
	"errors"
	"net/http"
	"strings"

	"finance-tracker/internal/middleware"
	"finance-tracker/internal/models"
	"finance-tracker/internal/store"
	"finance-tracker/internal/util"

	"github.com/gin-gonic/gin"
)

// UpdateProfileReq is the body of PUT /auth/me.
type UpdateProfileReq struct {
	Name string `json:"name" binding:"required"`
}

// ChangePasswordReq is the body of PUT /auth/password.
type ChangePasswordReq struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

// currentUser loads the authenticated user, writing the error response
// itself when that fails.
func (h *AuthHandler) currentUser(c *gin.Context) (*models.User, bool) {
	id, ok := middleware.CurrentUserID(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, "No token, authorization denied")
		return nil, false
	}
	user, err := h.Users.FindByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			util.Error(c, http.StatusUnauthorized, "User no longer exists")
		} else {
			h.Log.Error().Err(err).Str("user_id", id).Msg("load current user")
			util.Error(c, http.StatusInternalServerError, "Server error fetching user")
		}
		return nil, false
	}
	return user, true
}

// Me returns the current user.
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	util.OK(c, util.Response{"user": toUserResp(user)})
}

// UpdateProfile renames the current user.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req UpdateProfileReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, "Please provide a name")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := util.ValidateLength("Name", req.Name, 1, 64); err != nil {
		util.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	user.Name = req.Name
	if err := h.Users.Save(c.Request.Context(), user); err != nil {
		h.Log.Error().Err(err).Str("user_id", user.ID).Msg("update profile")
		util.Error(c, http.StatusInternalServerError, "Server error updating profile")
		return
	}

	util.OK(c, util.Response{
		"message": "Profile updated successfully",
		"user":    toUserResp(user),
	})
}

// ChangePassword replaces the current user's password after checking the old one.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req ChangePasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, "Please provide the old and new password")
		return
	}
	if !util.CheckPassword(req.OldPassword, user.PasswordHash) {
		util.Error(c, http.StatusBadRequest, "Current password is incorrect")
		return
	}
	if err := util.ValidatePassword(req.NewPassword); err != nil {
		util.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	hash, err := util.HashPassword(req.NewPassword, h.BcryptCost)
	if err != nil {
		h.Log.Error().Err(err).Msg("hash password")
		util.Error(c, http.StatusInternalServerError, "Server error changing password")
		return
	}
	user.PasswordHash = hash
	if err := h.Users.Save(c.Request.Context(), user); err != nil {
		h.Log.Error().Err(err).Str("user_id", user.ID).Msg("change password")
		util.Error(c, http.StatusInternalServerError, "Server error changing password")
		return
	}

	util.OK(c, util.Response{"message": "Password changed successfully"})
}
