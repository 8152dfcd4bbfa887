package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/venduo/marketplace-identity/internal/application"
	"github.com/venduo/marketplace-identity/internal/domain/entity"
	"github.com/venduo/marketplace-identity/pkg/response"
	"github.com/venduo/marketplace-identity/pkg/validation"
)

type IdentityHandler struct {
	Svc    *app.IdentityService
	Logger *logrus.Logger
}

func NewIdentityHandler(svc *app.IdentityService, logger *logrus.Logger) *IdentityHandler {
	return &IdentityHandler{Svc: svc, Logger: logger}
}

type registerRequest struct {
	Email        string `json:"email" binding:"required,email"`
	Username     string `json:"username" binding:"required"`
	Password     string `json:"password" binding:"required,pwd"`
	Role         string `json:"role" binding:"required,oneof=customer vendor admin"`
	Address      string `json:"address"`
	MobileNumber string `json:"mobile_number"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required,oneof=customer vendor admin"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type updateProfileRequest struct {
	Username     string `json:"username"`
	Address      string `json:"address"`
	MobileNumber string `json:"mobile_number"`
}

type approvalRequest struct {
	Approved *bool `json:"approved" binding:"required"`
}

// userView shapes a user for API responses without the credential material.
func userView(u *entity.User) gin.H {
	v := gin.H{
		"id":            u.ID,
		"email":         u.Email,
		"username":      u.Username,
		"role":          u.Role,
		"is_approved":   u.IsApproved,
		"address":       u.Address,
		"mobile_number": u.MobileNumber,
		"created_at":    u.CreatedAt,
		"updated_at":    u.UpdatedAt,
	}
	if u.VendorDetails != nil {
		v["vendor_details"] = u.VendorDetails
	}
	return v
}

// Register responds with one uniform rejection for every failed check so a
// caller cannot probe which emails are taken.
func (h *IdentityHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Logger.WithFields(logrus.Fields{"details": validation.ToDetails(err)}).Debug("registration payload rejected")
		response.Error[any](c, http.StatusBadRequest, "registration rejected", nil)
		return
	}
	role, err := entity.ParseRole(req.Role)
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "registration rejected", nil)
		return
	}

	u, err := h.Svc.Register(c.Request.Context(), app.RegisterInput{
		Email:        req.Email,
		Username:     req.Username,
		Password:     req.Password,
		Role:         role,
		Address:      req.Address,
		MobileNumber: req.MobileNumber,
	})
	if err != nil {
		if errors.Is(err, app.ErrEmailTaken) {
			h.Logger.WithField("email", req.Email).Debug("duplicate registration attempt")
			response.Error[any](c, http.StatusBadRequest, "registration rejected", nil)
			return
		}
		response.Error[any](c, http.StatusInternalServerError, "registration failed", nil)
		return
	}
	response.Success(c, http.StatusCreated, userView(u), "registered", nil)
}

func (h *IdentityHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	role, err := entity.ParseRole(req.Role)
	if err != nil {
		response.Error[any](c, http.StatusUnauthorized, "invalid credentials", nil)
		return
	}

	u, pair, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password, role)
	if err != nil {
		response.Error[any](c, http.StatusUnauthorized, "invalid credentials", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"user":          userView(u),
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	}, "login successful", gin.H{
		"access_expires_at":  pair.AccessTokenExpiry,
		"refresh_expires_at": pair.RefreshTokenExpiry,
	})
}

func (h *IdentityHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	pair, err := h.Svc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		response.Error[any](c, http.StatusUnauthorized, "invalid refresh token", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	}, "token refreshed", gin.H{
		"access_expires_at":  pair.AccessTokenExpiry,
		"refresh_expires_at": pair.RefreshTokenExpiry,
	})
}

func (h *IdentityHandler) Logout(c *gin.Context) {
	uid := c.GetString("userID")
	if err := h.Svc.Logout(c.Request.Context(), uid); err != nil {
		response.Error[any](c, http.StatusInternalServerError, "logout failed", nil)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"logged_out": true}, "logged out", nil)
}

func (h *IdentityHandler) GetProfile(c *gin.Context) {
	uid := c.GetString("userID")
	u, err := h.Svc.GetUser(c.Request.Context(), uid)
	if err != nil {
		response.Error[any](c, http.StatusNotFound, "user not found", nil)
		return
	}
	response.Success(c, http.StatusOK, userView(u), "profile", nil)
}

func (h *IdentityHandler) UpdateProfile(c *gin.Context) {
	uid := c.GetString("userID")
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Svc.UpdateProfile(c.Request.Context(), uid, app.UpdateProfileInput{
		Username:     req.Username,
		Address:      req.Address,
		MobileNumber: req.MobileNumber,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrUserNotFound):
			response.Error[any](c, http.StatusNotFound, "user not found", nil)
		case errors.Is(err, app.ErrConflict):
			response.Error[any](c, http.StatusConflict, "profile changed concurrently, retry", nil)
		default:
			response.Error[any](c, http.StatusInternalServerError, "failed to update profile", nil)
		}
		return
	}
	response.Success(c, http.StatusOK, userView(u), "profile updated", nil)
}

// SetApproval flips the approval gate on a customer account. Unknown ids and
// non-customer accounts report modified=false rather than an error.
func (h *IdentityHandler) SetApproval(c *gin.Context) {
	var req approvalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	modified, err := h.Svc.SetCustomerApproval(c.Request.Context(), c.Param("id"), *req.Approved)
	if err != nil {
		response.Error[any](c, http.StatusInternalServerError, "approval update failed", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"modified": modified}, "approval state", nil)
}

func (h *IdentityHandler) ListUsers(c *gin.Context) {
	users, err := h.Svc.ListUsers(c.Request.Context())
	if err != nil {
		response.Error[any](c, http.StatusInternalServerError, "failed to list users", nil)
		return
	}
	out := make([]gin.H, 0, len(users))
	for _, u := range users {
		out = append(out, userView(u))
	}
	response.Success(c, http.StatusOK, out, "users", gin.H{"count": len(out)})
}

func (h *IdentityHandler) LookupByEmail(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		response.Error[any](c, http.StatusBadRequest, "email query parameter required", nil)
		return
	}
	u, err := h.Svc.LookupByEmail(c.Request.Context(), email)
	if err != nil {
		response.Error[any](c, http.StatusNotFound, "user not found", nil)
		return
	}
	response.Success(c, http.StatusOK, userView(u), "user", nil)
}

func (h *IdentityHandler) DeleteUser(c *gin.Context) {
	if err := h.Svc.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, app.ErrUserNotFound) {
			response.Error[any](c, http.StatusNotFound, "user not found", nil)
			return
		}
		response.Error[any](c, http.StatusInternalServerError, "failed to delete user", nil)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"deleted": true}, "user deleted", nil)
}

func (h *IdentityHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		response.Error[any](c, http.StatusBadRequest, "q query parameter required", nil)
		return
	}
	hits, err := h.Svc.SearchUsers(c.Request.Context(), q, 10)
	if err != nil {
		response.Error[any](c, http.StatusInternalServerError, "search failed", nil)
		return
	}
	response.Success(c, http.StatusOK, hits, "search results", gin.H{"count": len(hits)})
}
