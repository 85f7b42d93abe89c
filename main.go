package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/stratus-ventures/stratus-site/app/controllers"
	"github.com/stratus-ventures/stratus-site/app/repository"
	"github.com/stratus-ventures/stratus-site/internal/pkg/cache"
	"github.com/stratus-ventures/stratus-site/internal/pkg/database"
	"github.com/stratus-ventures/stratus-site/internal/pkg/env"
	"github.com/stratus-ventures/stratus-site/internal/pkg/metricsync"
	"github.com/stratus-ventures/stratus-site/internal/pkg/middleware"
	"github.com/stratus-ventures/stratus-site/internal/pkg/poller"
	"github.com/stratus-ventures/stratus-site/internal/pkg/router"
	"github.com/stratus-ventures/stratus-site/internal/pkg/statistics"
	"github.com/stratus-ventures/stratus-site/internal/pkg/upstream"
)

func main() {
	app, p := NewApplication()

	go func() {
		addr := fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000"))
		if err := app.Listen(addr); err != nil {
			log.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	p.Stop()
	if err := app.Shutdown(); err != nil {
		log.Printf("Server shutdown: %v", err)
	}
}

func NewApplication() (*fiber.App, *poller.Poller) {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()
	repository.InitializeFactory(database.GetDB())

	repos := repository.GetGlobalRepositories()
	client := upstream.NewClient()
	syncer := metricsync.NewSyncer(repos.Product, repos.Metric, client, nil)
	p := poller.New(client, syncer, nil)

	app := fiber.New(fiber.Config{
		AppName: "stratus-site",
	})
	app.Use(recover.New(), logger.New())
	app.Use(middleware.SpamFilterMiddleware())
	app.Get("/metrics", monitor.New())

	// SWAGGER / OPENAPI
	openAPICfg := swagger.Config{
		BasePath: "/docs/api/",
		FilePath: "./public/docs/v1/openapi.yml",
		Path:     "v1",
	}
	app.Use(swagger.New(openAPICfg))

	controllers.InitializeSyncController(syncer, p, repos.Product, repos.Metric, statistics.GetEventTotals)
	controllers.InitializeProductController(repos.Product, syncer)

	// ROUTER
	router.InstallRouter(app)

	if env.GetEnv("POLLER_ENABLED", "true") != "false" {
		interval, err := strconv.Atoi(env.GetEnv("POLLER_INTERVAL", "10"))
		if err != nil {
			log.Fatalf("Invalid POLLER_INTERVAL: %v", err)
		}
		if err := p.Start(interval); err != nil {
			log.Fatalf("Failed to start poller: %v", err)
		}
	}

	return app, p
}
