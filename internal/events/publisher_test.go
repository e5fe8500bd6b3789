package events_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campuspass/internal/events"
	"campuspass/internal/events/store"
	id "campuspass/pkg/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func TestPublisher_SyncMode(t *testing.T) {
	sink := store.NewInMemory()
	pub := events.NewPublisher(sink, testLogger())
	defer pub.Close()

	pub.Emit(context.Background(), events.Event{
		Type:     events.TypeDeviceRegistered,
		Serial:   id.StudentID("207100001"),
		DeviceID: "device-1",
	})

	emitted := sink.Events()
	require.Len(t, emitted, 1)
	assert.Equal(t, events.TypeDeviceRegistered, emitted[0].Type)
	assert.NotEqual(t, [16]byte{}, [16]byte(emitted[0].ID), "event ID must be stamped")
	assert.False(t, emitted[0].OccurredAt.IsZero(), "occurredAt must be stamped")
}

func TestPublisher_AsyncMode(t *testing.T) {
	sink := store.NewInMemory()
	pub := events.NewPublisher(sink, testLogger(), events.WithAsyncBuffer(10))

	pub.Emit(context.Background(), events.Event{
		Type:   events.TypePassIssued,
		Serial: id.StudentID("207100001"),
	})

	// Close flushes the buffer before returning.
	pub.Close()

	emitted := sink.Events()
	require.Len(t, emitted, 1)
	assert.Equal(t, events.TypePassIssued, emitted[0].Type)
}

func TestPublisher_PreservesOccurredAt(t *testing.T) {
	sink := store.NewInMemory()
	pub := events.NewPublisher(sink, testLogger())
	defer pub.Close()

	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	pub.Emit(context.Background(), events.Event{
		Type:       events.TypeDeviceUnregistered,
		Serial:     id.StudentID("117100001"),
		DeviceID:   "device-2",
		OccurredAt: at,
	})

	emitted := sink.Events()
	require.Len(t, emitted, 1)
	assert.Equal(t, at, emitted[0].OccurredAt)
}
