package routes

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/travigo/idletracker/pkg/realtime/idledetector"
)

type Detector interface {
	Start() error
	Stop(ctx context.Context) error
	Status() idledetector.Status
}

const stopTimeout = 30 * time.Second

func DetectorRouter(router fiber.Router, detector Detector) {
	router.Get("/status", func(c *fiber.Ctx) error {
		return c.JSON(detector.Status())
	})

	router.Post("/start", func(c *fiber.Ctx) error {
		if err := detector.Start(); err != nil {
			status := fiber.StatusInternalServerError
			if errors.Is(err, idledetector.ErrAlreadyRunning) {
				status = fiber.StatusConflict
			}

			c.Status(status)
			return c.JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		c.Status(fiber.StatusAccepted)
		return c.JSON(detector.Status())
	})

	router.Post("/stop", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
		defer cancel()

		if err := detector.Stop(ctx); err != nil {
			status := fiber.StatusInternalServerError
			if errors.Is(err, idledetector.ErrNotRunning) {
				status = fiber.StatusConflict
			}

			c.Status(status)
			return c.JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		return c.JSON(detector.Status())
	})
}
