package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/offgrid-solar-sizing/internal/bootstrap"
	"github.com/ANIKETSHETTY47/offgrid-solar-sizing/internal/config"
)

func main() {
	if err := config.Load(); err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svcs, closeDB, err := bootstrap.Services(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}
	defer closeDB()

	bootstrap.ImportConfiguredCatalog(ctx, svcs)

	opts := mqtt.NewClientOptions().
		AddBroker(config.MQTTBroker()).
		SetClientID("offgrid-sizing-worker").
		SetAutoReconnect(true).
		SetOrderMatters(false)
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.Fatal().Err(token.Error()).Msg("mqtt connect")
	}
	defer client.Disconnect(250)

	resultTopic := config.MQTTResultTopic()
	handler := resultHandler(ctx, svcs.Sizing, resultTopic)

	requestTopic := config.MQTTRequestTopic()
	if token := client.Subscribe(requestTopic, 1, handler); token.Wait() && token.Error() != nil {
		log.Fatal().Err(token.Error()).Msg("subscribe failed")
	}

	log.Info().Str("requests", requestTopic).Str("results", resultTopic).Msg("worker running; Ctrl+C to stop")
	<-ctx.Done()
	log.Info().Msg("worker stopping")
}
