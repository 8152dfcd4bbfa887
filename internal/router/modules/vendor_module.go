package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/venduo/marketplace-identity/internal/container"
	"github.com/venduo/marketplace-identity/internal/domain/entity"
	handlers "github.com/venduo/marketplace-identity/internal/interface/http"
	"github.com/venduo/marketplace-identity/internal/interface/middleware"
	"github.com/venduo/marketplace-identity/pkg/helpers"
)

// VendorModule wires the reputation ledger and vendor asset routes.
// Protected: POST /api/vendors/:id/comments, PUT /api/vendors/:id/comments/:comment_id
// Vendor-only: POST /api/vendors/logo
type VendorModule struct {
	Handler *handlers.VendorHandler
	JWT     *helpers.JWTManager
}

func NewVendorModule(h *handlers.VendorHandler, jwt *helpers.JWTManager) *VendorModule {
	return &VendorModule{Handler: h, JWT: jwt}
}

func (m *VendorModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()

	vendors := rg.Group("/vendors")
	vendors.Use(middleware.Auth(m.JWT))
	vendors.Use(middleware.RateLimit(rdb, 60, time.Minute, middleware.KeyByUserID()))
	{
		vendors.POST("/:id/comments", m.Handler.AddComment)
		vendors.PUT("/:id/comments/:comment_id", m.Handler.UpdateComment)
		vendors.POST("/logo", middleware.RequireRole(entity.RoleVendor), m.Handler.UploadLogo)
	}
}
