package pubsub

import (
	"sync"

	"cloud.google.com/go/pubsub"
)

type client struct {
	client *pubsub.Client

	mu     sync.Mutex
	topics map[string]*pubsub.Topic
}

// EventType represents the type of event/message sent via pubsub.
type EventType string

const (
	EventIngestMatch   EventType = "ingest-match"
	EventIngestPlayers EventType = "ingest-players"
	EventIngestElo     EventType = "ingest-elo"
)

// PushMessage is the JSON wrapper Google wraps around push-delivered
// messages; Data is base64-encoded msgpack.
type PushMessage struct {
	Subscription string `json:"subscription"`
	Message      struct {
		Data string `json:"data"`
	} `json:"message"`
}
