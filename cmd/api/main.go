package main

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/offgrid-solar-sizing/internal/bootstrap"
	"github.com/ANIKETSHETTY47/offgrid-solar-sizing/internal/config"
	httpHandlers "github.com/ANIKETSHETTY47/offgrid-solar-sizing/internal/http"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	if err := config.Load(); err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	ctx := context.Background()
	svcs, closeDB, err := bootstrap.Services(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}
	defer closeDB()

	bootstrap.ImportConfiguredCatalog(ctx, svcs)

	app := fiber.New(fiber.Config{BodyLimit: 16 * 1024 * 1024})
	httpHandlers.Register(app, svcs)

	addr := config.APIAddr()
	log.Info().Str("addr", addr).Msg("api listening")
	log.Fatal().Err(app.Listen(addr)).Msg("server exit")
}
