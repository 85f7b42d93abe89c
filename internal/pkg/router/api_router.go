package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/stratus-ventures/stratus-site/app/controllers"
	"github.com/stratus-ventures/stratus-site/internal/pkg/constants"
	"github.com/stratus-ventures/stratus-site/internal/pkg/middleware"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group(constants.APIRoot, limiter.New())
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	// Sync and dashboard endpoints
	api.Get(constants.SyncAllRoute, controllers.HandleSyncAll)
	api.Get(constants.SyncMetricsRoute, controllers.HandleSyncMetrics)
	api.Get(constants.GlobeEventsRoute, controllers.HandleGlobeEvents)
	api.Get(constants.MetricsSummaryRoute, controllers.HandleMetricsSummary)

	// Diagnostics, token-gated outside dev mode
	api.Get(constants.PollerStatusRoute,
		middleware.BearerTokenMiddleware(constants.EnvDevAPIToken),
		controllers.HandlePollerStatus)

	// Admin product CRUD
	adminAuth := middleware.BearerTokenMiddleware(constants.EnvAdminAPIToken)
	api.Get(constants.AdminProductsRoute, adminAuth, controllers.HandleListProducts)
	api.Post(constants.AdminProductsRoute, adminAuth, controllers.HandleCreateProduct)
	api.Put(constants.AdminProductIDParam, adminAuth, controllers.HandleUpdateProduct)
	api.Delete(constants.AdminProductIDParam, adminAuth, controllers.HandleDeleteProduct)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
