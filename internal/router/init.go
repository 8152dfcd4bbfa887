package router

import (
	app "github.com/venduo/marketplace-identity/internal/application"
	"github.com/venduo/marketplace-identity/internal/container"
	pginfra "github.com/venduo/marketplace-identity/internal/infrastructure/postgres"
	"github.com/venduo/marketplace-identity/internal/infrastructure/queue"
	handlers "github.com/venduo/marketplace-identity/internal/interface/http"
	"github.com/venduo/marketplace-identity/internal/router/modules"
	"github.com/venduo/marketplace-identity/pkg/helpers"
)

// InitModules initializes all application modules and registers them with
// the router registry. Called once during application startup.
func InitModules(r *Registry) {
	repo := pginfra.NewUserRepository(container.GetPGPool())
	cfg := container.GetConfig()

	identity := app.NewIdentityService(
		repo,
		helpers.BcryptHasher{},
		container.GetJWT(),
		helpers.NewRefreshTokenStore(container.GetRedis()),
		queue.NewApprovalNotifier(container.GetRabbitPub()),
		container.GetLogger(),
	)
	identity.GCS = container.GetGCS()
	identity.GCSBucket = cfg.GCSBucket
	identity.ES = container.GetES()
	identity.ESUsersIndex = cfg.ESUsersIndex

	reputation := app.NewReputationService(repo, container.GetLogger())

	identityHandler := handlers.NewIdentityHandler(identity, container.GetLogger())
	vendorHandler := handlers.NewVendorHandler(reputation, identity, container.GetLogger())

	r.Add(modules.NewIdentityModule(identityHandler, container.GetJWT()))
	r.Add(modules.NewVendorModule(vendorHandler, container.GetJWT()))
}
