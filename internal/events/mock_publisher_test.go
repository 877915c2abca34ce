package events

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"testing"
)

func newTestPublisher() *MockEventPublisher {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewMockEventPublisher(logger)
}

func TestMockEventPublisher_EnvelopeStructure(t *testing.T) {
	publisher := newTestPublisher()
	ctx := context.Background()

	payload := AttemptCompletedEvent{
		AttemptID: 1,
		TestID:    7,
		UserID:    "user-1",
		Score:     85,
		Level:     "Advanced",
		Language:  "ASL",
	}
	if err := publisher.Publish(ctx, EventAttemptCompleted, payload); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	published := publisher.GetPublishedEvents()
	if len(published) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(published))
	}

	event := published[0]
	if event.ID == "" {
		t.Error("Event ID should not be empty")
	}
	if event.Type != EventAttemptCompleted {
		t.Errorf("Expected type %q, got %q", EventAttemptCompleted, event.Type)
	}
	if event.Source != "learning-service" {
		t.Errorf("Expected source 'learning-service', got %q", event.Source)
	}
	if event.Version != "1.0" {
		t.Errorf("Expected version '1.0', got %q", event.Version)
	}
	if event.Timestamp.IsZero() {
		t.Error("Event timestamp should not be zero")
	}

	data, ok := event.Data.(AttemptCompletedEvent)
	if !ok {
		t.Fatalf("Unexpected payload type %T", event.Data)
	}
	if data != payload {
		t.Errorf("Expected payload %+v, got %+v", payload, data)
	}
}

func TestMockEventPublisher_UniqueIDs(t *testing.T) {
	publisher := newTestPublisher()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := publisher.Publish(ctx, EventContentCompleted, nil); err != nil {
			t.Fatalf("Publish failed: %v", err)
		}
	}

	seen := make(map[string]bool)
	for _, event := range publisher.GetPublishedEvents() {
		if seen[event.ID] {
			t.Errorf("Duplicate event ID %s", event.ID)
		}
		seen[event.ID] = true
	}
}

func TestMockEventPublisher_ClearEvents(t *testing.T) {
	publisher := newTestPublisher()
	ctx := context.Background()

	if err := publisher.Publish(ctx, EventAttemptStarted, nil); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	publisher.ClearEvents()

	if got := len(publisher.GetPublishedEvents()); got != 0 {
		t.Errorf("Expected no events after clear, got %d", got)
	}
}

func TestMockEventPublisher_ConcurrentPublish(t *testing.T) {
	publisher := newTestPublisher()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = publisher.Publish(ctx, EventDifficultyAdjusted, nil)
		}()
	}
	wg.Wait()

	if got := len(publisher.GetPublishedEvents()); got != 20 {
		t.Errorf("Expected 20 events, got %d", got)
	}
}
