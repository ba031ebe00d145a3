package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocloud.dev/pubsub"
	"gocloud.dev/pubsub/mempubsub"
)

func TestTopicPublisher_DeliversJSON(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	topic := mempubsub.NewTopic()
	sub := mempubsub.NewSubscription(topic, time.Minute)
	defer func() { _ = sub.Shutdown(context.Background()) }()

	p := NewTopicPublisher(topic)
	defer func() { _ = p.Shutdown(context.Background()) }()

	at := time.UnixMilli(1700000000000).UTC()
	require.NoError(t, p.Publish(ctx, Event{Type: NoteArchived, NoteID: "note_1", At: at}))

	msg, err := sub.Receive(ctx)
	require.NoError(t, err)
	msg.Ack()

	assert.Equal(t, NoteArchived, msg.Metadata["type"])

	var got Event
	require.NoError(t, json.Unmarshal(msg.Body, &got))
	assert.Equal(t, Event{Type: NoteArchived, NoteID: "note_1", At: at}, got)
}

func TestOpen_EmptyURLIsNop(t *testing.T) {
	p, err := Open(context.Background(), "")
	require.NoError(t, err)
	assert.IsType(t, Nop{}, p)
	assert.NoError(t, p.Publish(context.Background(), Event{Type: NoteSaved}))
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestOpen_MemURL(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	p, err := Open(ctx, "mem://clipnote-events-test")
	require.NoError(t, err)
	defer func() { _ = p.Shutdown(context.Background()) }()

	sub, err := pubsub.OpenSubscription(ctx, "mem://clipnote-events-test")
	require.NoError(t, err)
	defer func() { _ = sub.Shutdown(context.Background()) }()

	require.NoError(t, p.Publish(ctx, Event{Type: NoteSaved, NoteID: "n"}))

	msg, err := sub.Receive(ctx)
	require.NoError(t, err)
	msg.Ack()
	assert.Contains(t, string(msg.Body), `"note_id":"n"`)
}

func TestOpen_BadScheme(t *testing.T) {
	_, err := Open(context.Background(), "nosuchscheme://x")
	require.ErrorContains(t, err, "failed to open topic")
}
