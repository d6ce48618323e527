package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"pacomprar/internal/authz"
	"pacomprar/internal/models"
	user "pacomprar/internal/userService"
	"pacomprar/services/auction/helpers"
	"pacomprar/utils"
)

type UserServiceInterface interface {
	Register(in user.RegisterInput) (models.User, error)
	Login(username, password string) (access, refresh string, u models.User, err error)
	Refresh(refreshToken string) (access, refresh string, err error)
	Logout(refreshToken string) error
	Profile(caller authz.Caller) (models.User, error)
	UpdateProfile(caller authz.Caller, in user.ProfileUpdate) (models.User, error)
	DeleteProfile(caller authz.Caller) error
	ChangePassword(caller authz.Caller, oldPassword, newPassword string) error
	ListUsers(caller authz.Caller) ([]models.User, error)
	GetUser(caller authz.Caller, id uint) (models.User, error)
	UpdateUser(caller authz.Caller, id uint, in user.ProfileUpdate) (models.User, error)
	DeleteUser(caller authz.Caller, id uint) error
}

type UserHandler struct {
	service UserServiceInterface
}

func NewUserHandler(service UserServiceInterface) *UserHandler {
	return &UserHandler{service: service}
}

// parseDate accepts a date-only value, falling back to RFC 3339.
func parseDate(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, true
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// RegisterHandler handles POST /api/usuarios/register
func (h *UserHandler) RegisterHandler(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "RegisterHandler", err)
		return
	}
	birthDate, ok := parseDate(req.BirthDate)
	if !ok {
		utils.JSONError(c, http.StatusBadRequest, "birth_date", "must be a valid date (YYYY-MM-DD)")
		return
	}
	u, err := h.service.Register(user.RegisterInput{
		Username:     req.Username,
		Email:        req.Email,
		Password:     req.Password,
		Password2:    req.Password2,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		BirthDate:    birthDate,
		Locality:     req.Locality,
		Municipality: req.Municipality,
	})
	if err != nil {
		helpers.RespondError(c, "RegisterHandler", err)
		return
	}
	c.JSON(http.StatusCreated, u)
	helpers.LogSuccess("RegisterHandler", "user registered successfully", map[string]any{
		"user_id":  u.ID,
		"username": u.Username,
	})
}

// TokenHandler handles POST /api/token
func (h *UserHandler) TokenHandler(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "TokenHandler", err)
		return
	}
	access, refresh, u, err := h.service.Login(req.Username, req.Password)
	if err != nil {
		helpers.RespondError(c, "TokenHandler", err)
		return
	}
	c.JSON(http.StatusOK, TokenPairResponse{Access: access, Refresh: refresh})
	helpers.LogSuccess("TokenHandler", "tokens issued successfully", map[string]any{"user_id": u.ID})
}

// TokenRefreshHandler handles POST /api/token/refresh
func (h *UserHandler) TokenRefreshHandler(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "TokenRefreshHandler", err)
		return
	}
	access, refresh, err := h.service.Refresh(req.Refresh)
	if err != nil {
		helpers.RespondError(c, "TokenRefreshHandler", err)
		return
	}
	c.JSON(http.StatusOK, TokenPairResponse{Access: access, Refresh: refresh})
	helpers.LogSuccess("TokenRefreshHandler", "tokens refreshed successfully", nil)
}

// LogoutHandler handles POST /api/usuarios/log-out
func (h *UserHandler) LogoutHandler(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "LogoutHandler", err)
		return
	}
	if err := h.service.Logout(req.Refresh); err != nil {
		helpers.RespondError(c, "LogoutHandler", err)
		return
	}
	c.Status(http.StatusNoContent)
	helpers.LogSuccess("LogoutHandler", "refresh token revoked", nil)
}

func profileUpdate(req ProfileUpdateRequest) (user.ProfileUpdate, string) {
	in := user.ProfileUpdate{
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Locality:     req.Locality,
		Municipality: req.Municipality,
	}
	if req.BirthDate != nil {
		t, ok := parseDate(*req.BirthDate)
		if !ok {
			return user.ProfileUpdate{}, "birth_date"
		}
		in.BirthDate = &t
	}
	return in, ""
}

// ProfileHandler handles GET /api/usuarios/profile
func (h *UserHandler) ProfileHandler(c *gin.Context) {
	u, err := h.service.Profile(helpers.CallerFrom(c))
	if err != nil {
		helpers.RespondError(c, "ProfileHandler", err)
		return
	}
	c.JSON(http.StatusOK, u)
	helpers.LogSuccess("ProfileHandler", "profile retrieved successfully", map[string]any{"user_id": u.ID})
}

// UpdateProfileHandler handles PATCH /api/usuarios/profile
func (h *UserHandler) UpdateProfileHandler(c *gin.Context) {
	var req ProfileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "UpdateProfileHandler", err)
		return
	}
	in, badField := profileUpdate(req)
	if badField != "" {
		utils.JSONError(c, http.StatusBadRequest, badField, "must be a valid date (YYYY-MM-DD)")
		return
	}
	u, err := h.service.UpdateProfile(helpers.CallerFrom(c), in)
	if err != nil {
		helpers.RespondError(c, "UpdateProfileHandler", err)
		return
	}
	c.JSON(http.StatusOK, u)
	helpers.LogSuccess("UpdateProfileHandler", "profile updated successfully", map[string]any{"user_id": u.ID})
}

// DeleteProfileHandler handles DELETE /api/usuarios/profile
func (h *UserHandler) DeleteProfileHandler(c *gin.Context) {
	caller := helpers.CallerFrom(c)
	if err := h.service.DeleteProfile(caller); err != nil {
		helpers.RespondError(c, "DeleteProfileHandler", err)
		return
	}
	c.Status(http.StatusNoContent)
	helpers.LogSuccess("DeleteProfileHandler", "account deleted successfully", map[string]any{"user_id": caller.ID})
}

// ChangePasswordHandler handles POST /api/usuarios/change-password
func (h *UserHandler) ChangePasswordHandler(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "ChangePasswordHandler", err)
		return
	}
	caller := helpers.CallerFrom(c)
	if err := h.service.ChangePassword(caller, req.OldPassword, req.NewPassword); err != nil {
		helpers.RespondError(c, "ChangePasswordHandler", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"detail": "password updated"})
	helpers.LogSuccess("ChangePasswordHandler", "password changed successfully", map[string]any{"user_id": caller.ID})
}

// ListUsersHandler handles GET /api/usuarios (admin area)
func (h *UserHandler) ListUsersHandler(c *gin.Context) {
	users, err := h.service.ListUsers(helpers.CallerFrom(c))
	if err != nil {
		helpers.RespondError(c, "ListUsersHandler", err)
		return
	}
	if users == nil {
		users = []models.User{}
	}
	c.JSON(http.StatusOK, users)
	helpers.LogSuccess("ListUsersHandler", "users retrieved successfully", map[string]any{"count": len(users)})
}

// GetUserHandler handles GET /api/usuarios/:id_usuario (admin area)
func (h *UserHandler) GetUserHandler(c *gin.Context) {
	id, ok := helpers.ParseID(c, "id_usuario")
	if !ok {
		return
	}
	u, err := h.service.GetUser(helpers.CallerFrom(c), id)
	if err != nil {
		helpers.RespondError(c, "GetUserHandler", err)
		return
	}
	c.JSON(http.StatusOK, u)
	helpers.LogSuccess("GetUserHandler", "user retrieved successfully", map[string]any{"user_id": u.ID})
}

// UpdateUserHandler handles PATCH /api/usuarios/:id_usuario (admin area)
func (h *UserHandler) UpdateUserHandler(c *gin.Context) {
	id, ok := helpers.ParseID(c, "id_usuario")
	if !ok {
		return
	}
	var req ProfileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "UpdateUserHandler", err)
		return
	}
	in, badField := profileUpdate(req)
	if badField != "" {
		utils.JSONError(c, http.StatusBadRequest, badField, "must be a valid date (YYYY-MM-DD)")
		return
	}
	u, err := h.service.UpdateUser(helpers.CallerFrom(c), id, in)
	if err != nil {
		helpers.RespondError(c, "UpdateUserHandler", err)
		return
	}
	c.JSON(http.StatusOK, u)
	helpers.LogSuccess("UpdateUserHandler", "user updated successfully", map[string]any{"user_id": u.ID})
}

// DeleteUserHandler handles DELETE /api/usuarios/:id_usuario (admin area)
func (h *UserHandler) DeleteUserHandler(c *gin.Context) {
	id, ok := helpers.ParseID(c, "id_usuario")
	if !ok {
		return
	}
	if err := h.service.DeleteUser(helpers.CallerFrom(c), id); err != nil {
		helpers.RespondError(c, "DeleteUserHandler", err)
		return
	}
	c.Status(http.StatusNoContent)
	helpers.LogSuccess("DeleteUserHandler", "user deleted successfully", map[string]any{"user_id": id})
}
