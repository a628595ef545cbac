package pubsub

import (
	"context"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// publishTimeout bounds how long a single publish may block on the broker.
const publishTimeout = 10 * time.Second

func New(projectID string) PubSubClient {
	pubSubC, err := pubsub.NewClient(context.Background(), projectID)
	if err != nil {
		log.Fatalf("Failed to create pubsub client: %v", err)
	}

	return &client{
		client: pubSubC,
		topics: make(map[string]*pubsub.Topic),
	}
}

// topic returns a cached topic handle, creating it on first use. Topic
// handles hold publish batching state, so one per name is kept for the
// lifetime of the client.
func (c *client) topic(name string) *pubsub.Topic {
	c.mu.Lock()
	defer c.mu.Unlock()

	t, ok := c.topics[name]
	if !ok {
		t = c.client.Topic(name)
		c.topics[name] = t
	}
	return t
}

func (c *client) SendMessage(topic string, data any) error {
	payload, err := msgpack.Marshal(data)
	if err != nil {
		log.Error("MessagePack marshal error", "error", err)
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	result := c.topic(topic).Publish(ctx, &pubsub.Message{Data: payload})
	serverID, err := result.Get(ctx)
	if err != nil {
		log.Error("Failed to publish message", "error", err, "topic", topic)
		return err
	}
	log.Debug("Published message", "topic", topic, "serverID", serverID)
	return nil
}

func (c *client) ProcessMessage(data []byte, returnValue any) error {
	if err := msgpack.Unmarshal(data, returnValue); err != nil {
		log.Error("MessagePack unmarshal error", "error", err)
		return err
	}
	return nil
}
