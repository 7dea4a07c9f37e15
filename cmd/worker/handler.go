package main

import (
	"context"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"
)

type requestHandler interface {
	FromMQTT(ctx context.Context, topic string, payload []byte) ([]byte, error)
}

// resultHandler answers every sizing request on resultTopic. The callback
// never waits on a publish token: paho's incoming loop is blocked until it
// returns, and that loop is what delivers the PUBACK.
func resultHandler(ctx context.Context, h requestHandler, resultTopic string) mqtt.MessageHandler {
	return func(c mqtt.Client, msg mqtt.Message) {
		out, err := h.FromMQTT(ctx, msg.Topic(), msg.Payload())
		if err != nil {
			log.Error().Err(err).Str("topic", msg.Topic()).Msg("sizing request failed")
		}
		if out == nil {
			return
		}
		go func() {
			token := c.Publish(resultTopic, 1, false, out)
			if token.Wait() && token.Error() != nil {
				log.Error().Err(token.Error()).Str("topic", resultTopic).Msg("publish result")
			}
		}()
	}
}
