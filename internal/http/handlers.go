package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/offgrid-solar-sizing/internal/catalog"
	"github.com/ANIKETSHETTY47/offgrid-solar-sizing/internal/domain"
	"github.com/ANIKETSHETTY47/offgrid-solar-sizing/internal/service"
	"github.com/ANIKETSHETTY47/offgrid-solar-sizing/internal/sizing"
)

func Register(app *fiber.App, svcs *service.Services) {
	app.Get("/health", func(c *fiber.Ctx) error { return c.SendString("ok") })

	g := app.Group("/sizing")
	g.Post("", func(c *fiber.Ctx) error {
		var req service.SizingRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		run, err := svcs.Sizing.Run(c.UserContext(), req)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(run)
	})
	g.Get("", func(c *fiber.Ctx) error {
		runs, err := svcs.Sizing.Recent(c.UserContext(), c.QueryInt("limit"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(runs)
	})
	g.Get("/:id", func(c *fiber.Ctx) error {
		run, err := svcs.Sizing.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(run)
	})

	cg := app.Group("/catalog")
	cg.Get("", func(c *fiber.Ctx) error {
		cat, err := svcs.Catalog.Current(c.UserContext())
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(cat)
	})
	cg.Get("/equipment", func(c *fiber.Ctx) error {
		cat, err := svcs.Catalog.Current(c.UserContext())
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(cat.Equipment)
	})
	cg.Get("/inverters", func(c *fiber.Ctx) error {
		cat, err := svcs.Catalog.Current(c.UserContext())
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(cat.Inverters)
	})
	cg.Get("/batteries", func(c *fiber.Ctx) error {
		cat, err := svcs.Catalog.Current(c.UserContext())
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(cat.Batteries)
	})
	cg.Post("/import", func(c *fiber.Ctx) error { return importCatalog(c, svcs) })
}

// importCatalog accepts either a multipart "file" upload or a JSON body
// {"source": "..."} naming an allowed URL or S3 location.
func importCatalog(c *fiber.Ctx, svcs *service.Services) error {
	var (
		cat *domain.Catalog
		err error
	)
	if fh, ferr := c.FormFile("file"); ferr == nil {
		f, oerr := fh.Open()
		if oerr != nil {
			return fail(c, oerr)
		}
		defer f.Close()
		cat, err = svcs.Catalog.Import(c.UserContext(), f)
	} else {
		var body struct {
			Source string `json:"source"`
		}
		if perr := c.BodyParser(&body); perr != nil || body.Source == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "expected multipart field \"file\" or a JSON source"})
		}
		cat, err = svcs.Catalog.ImportRemote(c.UserContext(), body.Source)
	}
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"equipment": len(cat.Equipment),
		"inverters": len(cat.Inverters),
		"batteries": len(cat.Batteries),
	})
}

func fail(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status >= fiber.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Msg("request failed")
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrRunNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, catalog.ErrNotAllowed):
		return fiber.StatusForbidden
	case errors.Is(err, catalog.ErrTooLarge):
		return fiber.StatusRequestEntityTooLarge
	case errors.Is(err, sizing.ErrInvalidParameter),
		errors.Is(err, service.ErrNoCatalogSource),
		errors.Is(err, catalog.ErrNotWorkbook),
		errors.Is(err, catalog.ErrMissingSheet),
		errors.Is(err, catalog.ErrMissingColumn),
		errors.Is(err, catalog.ErrInvalidCell):
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}
