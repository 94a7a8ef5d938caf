package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/travigo/idletracker/pkg/api/routes"
)

func NewApp(detector routes.Detector, datasourcesDirectory string) *fiber.App {
	webApp := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	webApp.Use(NewLogger())

	webApp.Get("health", routes.Health)
	webApp.Get("version", routes.APIVersion)

	routes.DetectorRouter(webApp.Group("/detector"), detector)
	routes.DatasourcesRouter(webApp.Group("/datasources"), datasourcesDirectory)

	return webApp
}

func SetupServer(listen string, detector routes.Detector, datasourcesDirectory string) error {
	return NewApp(detector, datasourcesDirectory).Listen(listen)
}
