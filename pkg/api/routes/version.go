package routes

import (
	"runtime/debug"

	"github.com/gofiber/fiber/v2"
)

func APIVersion(c *fiber.Ctx) error {
	response := fiber.Map{
		"version": "v0.1",
	}

	if info, ok := debug.ReadBuildInfo(); ok {
		response["go"] = info.GoVersion
		response["module"] = info.Main.Version
	}

	return c.JSON(response)
}

func Health(c *fiber.Ctx) error {
	return c.SendString("OK")
}
