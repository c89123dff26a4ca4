package kafka

import (
	"encoding/json"
	"testing"
)

func TestNewOrderEvent(t *testing.T) {
	event := NewOrderEvent(EventTypeOrderRegistered, "o1", "incoming", 500)

	if event.EventType != EventTypeOrderRegistered {
		t.Errorf("expected %s, got %s", EventTypeOrderRegistered, event.EventType)
	}
	if event.OrderID != "o1" || event.Direction != "incoming" || event.TotalMinor != 500 {
		t.Errorf("unexpected event: %+v", event)
	}
	if event.Timestamp.IsZero() {
		t.Error("expected timestamp to be set")
	}

	data, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["event_type"] != "order.registered" {
		t.Errorf("unexpected event_type: %v", decoded["event_type"])
	}
}

func TestNewRequestEvent(t *testing.T) {
	event := NewRequestEvent(EventTypeRequestSettled, "r1", 2)

	if event.RequestID != "r1" || event.LinesLeft != 2 {
		t.Errorf("unexpected event: %+v", event)
	}
	if event.Timestamp.IsZero() {
		t.Error("expected timestamp to be set")
	}
}
