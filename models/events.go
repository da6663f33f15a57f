package models

import (
	"time"
)

// EventType is the kind of event emitted by a toolbox
type EventType string

const (
	// Toolbox events
	EventToolboxStarted   EventType = "toolbox.started"
	EventToolboxCompleted EventType = "toolbox.completed"
	EventToolboxError     EventType = "toolbox.error"

	// Processor events
	EventProcessorCreated    EventType = "processor.created"
	EventProcessorConfigured EventType = "processor.configured"
	EventProcessorStarted    EventType = "processor.started"
	EventProcessorCompleted  EventType = "processor.completed"
	EventProcessorError      EventType = "processor.error"
	EventProcessorDeleted    EventType = "processor.deleted"

	// Connection events
	EventConnectionResolved EventType = "connection.resolved"
)

// Event is a generic toolbox event
type Event struct {
	Type      EventType      `json:"type"`
	RunID     string         `json:"run_id"`
	Timestamp time.Time      `json:"timestamp"`
	Data      map[string]any `json:"data"`
}

// EventListener receives events from a toolbox
type EventListener interface {
	OnEvent(event Event)
}

// EventListenerFunc adapts a function to EventListener
type EventListenerFunc func(event Event)

func (f EventListenerFunc) OnEvent(event Event) {
	f(event)
}
