package main

import (
	"context"
	"errors"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSizer struct {
	out []byte
	err error
}

func (s stubSizer) FromMQTT(_ context.Context, _ string, _ []byte) ([]byte, error) {
	return s.out, s.err
}

type published struct {
	topic   string
	qos     byte
	payload []byte
}

// blockingClient records publishes and hands out tokens that stay pending
// until release is closed, like a QoS 1 publish waiting for its PUBACK.
type blockingClient struct {
	mqtt.Client
	release chan struct{}
	sent    chan published
}

func (c *blockingClient) Publish(topic string, qos byte, _ bool, payload interface{}) mqtt.Token {
	c.sent <- published{topic: topic, qos: qos, payload: payload.([]byte)}
	return &pendingToken{done: c.release}
}

type pendingToken struct {
	done chan struct{}
}

func (t *pendingToken) Wait() bool {
	<-t.done
	return true
}

func (t *pendingToken) WaitTimeout(d time.Duration) bool {
	select {
	case <-t.done:
		return true
	case <-time.After(d):
		return false
	}
}

func (t *pendingToken) Done() <-chan struct{} { return t.done }
func (t *pendingToken) Error() error          { return nil }

type request struct {
	mqtt.Message
	topic   string
	payload []byte
}

func (m request) Topic() string   { return m.topic }
func (m request) Payload() []byte { return m.payload }

func TestResultHandlerDoesNotWaitForPublish(t *testing.T) {
	client := &blockingClient{release: make(chan struct{}), sent: make(chan published, 1)}
	defer close(client.release)
	handler := resultHandler(context.Background(), stubSizer{out: []byte(`{"request_id":"r1"}`)}, "sizing/results")

	returned := make(chan struct{})
	go func() {
		handler(client, request{topic: "sizing/requests", payload: []byte(`{}`)})
		close(returned)
	}()

	select {
	case <-returned:
	case <-time.After(2 * time.Second):
		t.Fatal("handler blocked on the publish token")
	}

	select {
	case p := <-client.sent:
		assert.Equal(t, "sizing/results", p.topic)
		assert.Equal(t, byte(1), p.qos)
		assert.JSONEq(t, `{"request_id":"r1"}`, string(p.payload))
	case <-time.After(2 * time.Second):
		t.Fatal("result was never published")
	}
}

func TestResultHandlerSkipsEmptyReply(t *testing.T) {
	client := &blockingClient{release: make(chan struct{}), sent: make(chan published, 1)}
	defer close(client.release)
	handler := resultHandler(context.Background(), stubSizer{err: errors.New("bad payload")}, "sizing/results")

	handler(client, request{topic: "sizing/requests", payload: []byte(`not json`)})

	select {
	case p := <-client.sent:
		require.Failf(t, "unexpected publish", "topic %s", p.topic)
	case <-time.After(100 * time.Millisecond):
	}
}
