package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/liip/sheriff"
	"github.com/travigo/idletracker/pkg/dataimporter/manager"
)

func DatasourcesRouter(router fiber.Router, directory string) {
	router.Get("/", func(c *fiber.Ctx) error {
		return listDatasets(c, directory)
	})
	router.Get("/:identifier", func(c *fiber.Ctx) error {
		return getDataset(c, directory)
	})
}

func listDatasets(c *fiber.Ctx, directory string) error {
	registered, err := manager.GetRegisteredDataSets(directory)
	if err != nil {
		c.Status(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	datasetsReduced, err := sheriff.Marshal(&sheriff.Options{
		Groups: []string{"basic"},
	}, registered)
	if err != nil {
		c.Status(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Sherrif could not reduce DataSets",
		})
	}

	return c.JSON(datasetsReduced)
}

func getDataset(c *fiber.Ctx, directory string) error {
	dataset, err := manager.GetDataset(directory, c.Params("identifier"))
	if err != nil {
		c.Status(fiber.StatusNotFound)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	datasetReduced, err := sheriff.Marshal(&sheriff.Options{
		Groups: []string{"basic"},
	}, dataset)
	if err != nil {
		c.Status(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Sherrif could not reduce DataSet",
		})
	}

	return c.JSON(datasetReduced)
}
