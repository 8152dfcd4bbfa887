package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/venduo/marketplace-identity/internal/container"
	handlers "github.com/venduo/marketplace-identity/internal/interface/http"
	"github.com/venduo/marketplace-identity/internal/interface/middleware"
	"github.com/venduo/marketplace-identity/pkg/helpers"
)

// IdentityModule wires registration, login and account management routes.
// Public: POST /api/register, POST /api/login, POST /api/refresh
// Protected: POST /api/logout, GET/PUT /api/profile
// Admin: GET /api/users, GET /api/users/lookup, GET /api/users/search,
// PATCH /api/users/:id/approval, DELETE /api/users/:id
type IdentityModule struct {
	Handler *handlers.IdentityHandler
	JWT     *helpers.JWTManager
}

func NewIdentityModule(h *handlers.IdentityHandler, jwt *helpers.JWTManager) *IdentityModule {
	return &IdentityModule{Handler: h, JWT: jwt}
}

func (m *IdentityModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()
	registerLimiter := middleware.RateLimit(rdb, 5, time.Minute, middleware.KeyByIP())
	loginLimiter := middleware.RateLimit(rdb, 10, time.Minute, middleware.KeyByIP())
	refreshLimiter := middleware.RateLimit(rdb, 60, time.Minute, middleware.KeyByIP())

	rg.POST("/register", registerLimiter, m.Handler.Register)
	rg.POST("/login", loginLimiter, m.Handler.Login)
	rg.POST("/refresh", refreshLimiter, m.Handler.Refresh)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.JWT))
	auth.Use(middleware.RateLimit(rdb, 120, time.Minute, middleware.KeyByUserID()))
	{
		auth.POST("/logout", m.Handler.Logout)
		auth.GET("/profile", m.Handler.GetProfile)
		auth.PUT("/profile", m.Handler.UpdateProfile)
	}

	admin := auth.Group("/users")
	admin.Use(middleware.RequireAdmin())
	{
		admin.GET("", m.Handler.ListUsers)
		admin.GET("/lookup", m.Handler.LookupByEmail)
		admin.GET("/search", m.Handler.Search)
		admin.PATCH("/:id/approval", m.Handler.SetApproval)
		admin.DELETE("/:id", m.Handler.DeleteUser)
	}
}
