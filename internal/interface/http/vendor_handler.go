package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/venduo/marketplace-identity/internal/application"
	"github.com/venduo/marketplace-identity/pkg/response"
	"github.com/venduo/marketplace-identity/pkg/validation"
)

type VendorHandler struct {
	Reputation *app.ReputationService
	Identity   *app.IdentityService
	Logger     *logrus.Logger
}

func NewVendorHandler(rep *app.ReputationService, ident *app.IdentityService, logger *logrus.Logger) *VendorHandler {
	return &VendorHandler{Reputation: rep, Identity: ident, Logger: logger}
}

type addCommentRequest struct {
	Text   string  `json:"text" binding:"required"`
	Rating float64 `json:"rating" binding:"required,gte=1,lte=5"`
}

type updateCommentRequest struct {
	Text string `json:"text" binding:"required"`
}

func (h *VendorHandler) AddComment(c *gin.Context) {
	var req addCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Reputation.AddComment(c.Request.Context(), c.Param("id"), req.Text, req.Rating)
	if err != nil {
		h.writeLedgerError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, userView(u), "comment added", gin.H{
		"average_rating": u.VendorDetails.Reputation.AverageRating,
	})
}

func (h *VendorHandler) UpdateComment(c *gin.Context) {
	var req updateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Reputation.UpdateComment(c.Request.Context(), c.Param("id"), c.Param("comment_id"), req.Text)
	if err != nil {
		h.writeLedgerError(c, err)
		return
	}
	response.Success(c, http.StatusOK, userView(u), "comment updated", gin.H{
		"average_rating": u.VendorDetails.Reputation.AverageRating,
	})
}

// UploadLogo accepts a multipart image and stores it against the calling
// vendor's own profile.
func (h *VendorHandler) UploadLogo(c *gin.Context) {
	uid := c.GetString("userID")

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "file field required", nil)
		return
	}
	defer func() { _ = file.Close() }()

	url, err := h.Identity.UploadVendorLogo(c.Request.Context(), uid, file, header.Filename, header.Header.Get("Content-Type"))
	if err != nil {
		if errors.Is(err, app.ErrUserNotFound) {
			response.Error[any](c, http.StatusNotFound, "vendor not found", nil)
			return
		}
		if errors.Is(err, app.ErrConflict) {
			response.Error[any](c, http.StatusConflict, "vendor changed concurrently, retry", nil)
			return
		}
		h.Logger.WithError(err).WithField("vendor_id", uid).Error("logo upload failed")
		response.Error[any](c, http.StatusInternalServerError, "upload failed", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"logo_url": url}, "logo uploaded", nil)
}

func (h *VendorHandler) writeLedgerError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, app.ErrVendorNotFound):
		response.Error[any](c, http.StatusNotFound, "vendor not found", nil)
	case errors.Is(err, app.ErrCommentNotFound):
		response.Error[any](c, http.StatusNotFound, "comment not found", nil)
	case errors.Is(err, app.ErrInvalidRating):
		response.Error[any](c, http.StatusBadRequest, "rating must be between 1 and 5", nil)
	case errors.Is(err, app.ErrConflict):
		response.Error[any](c, http.StatusConflict, "vendor changed concurrently, retry", nil)
	default:
		response.Error[any](c, http.StatusInternalServerError, "operation failed", nil)
	}
}
