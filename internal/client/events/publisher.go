// Package events publishes note lifecycle events after committed mutations.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gocloud.dev/pubsub"
	_ "gocloud.dev/pubsub/mempubsub" // mem:// topics
)

// Event types.
const (
	NoteSaved    = "note.saved"
	NoteArchived = "note.archived"
	NoteRestored = "note.restored"
	NoteDeleted  = "note.deleted"
	BlobsSwept   = "blobs.swept"
)

type Event struct {
	Type   string    `json:"type"`
	NoteID string    `json:"note_id,omitempty"`
	At     time.Time `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Shutdown(ctx context.Context) error
}

// Open returns a topic publisher for url, or a no-op publisher when url is
// empty.
func Open(ctx context.Context, url string) (Publisher, error) {
	if url == "" {
		return Nop{}, nil
	}
	topic, err := pubsub.OpenTopic(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to open topic %q: %w", url, err)
	}
	return NewTopicPublisher(topic), nil
}

// TopicPublisher sends events as JSON messages to a gocloud.dev topic.
type TopicPublisher struct {
	topic *pubsub.Topic
}

func NewTopicPublisher(topic *pubsub.Topic) *TopicPublisher {
	return &TopicPublisher{topic: topic}
}

func (p *TopicPublisher) Publish(ctx context.Context, e Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	msg := &pubsub.Message{
		Body:     body,
		Metadata: map[string]string{"type": e.Type},
	}
	if err := p.topic.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s: %w", e.Type, err)
	}
	return nil
}

func (p *TopicPublisher) Shutdown(ctx context.Context) error {
	return p.topic.Shutdown(ctx)
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Shutdown(context.Context) error       { return nil }
