package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/Li-Yueting/agentbeats-tutorial/internal/domain"
)

// notify records a progress event and pushes it to stream watchers.
// Delivery is best-effort on both paths; a notification failure never
// blocks or fails the pipeline.
func (s *Service) notify(runID string, eventType domain.EventType, message string, payload interface{}) {
	var payloadBytes json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			log.Printf("ERROR: failed to marshal event payload: %v", err)
		} else {
			payloadBytes = b
		}
	}

	event := &domain.Event{
		EventID: "evt_" + uuid.New().String()[:8],
		RunID:   runID,
		Ts:      time.Now().UnixMilli(),
		Type:    eventType,
		Message: message,
		Payload: payloadBytes,
	}

	if err := s.store.CreateEvent(context.Background(), event); err != nil {
		log.Printf("ERROR: failed to record %s event: %v", eventType, err)
	}

	if s.hub != nil {
		if err := s.hub.BroadcastJSON(runID, event); err != nil {
			log.Printf("WARN: failed to broadcast %s event: %v", eventType, err)
		}
	}
}
