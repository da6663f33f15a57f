package morpho

import (
	"sync"
	"time"

	"github.com/project8/morpho/models"
)

// eventBus manages event distribution to registered listeners (private)
type eventBus struct {
	runID     string
	listeners []models.EventListener
	mutex     sync.RWMutex
	pendingWg sync.WaitGroup // Tracks events being processed
}

func newEventBus(runID string) *eventBus {
	return &eventBus{
		runID:     runID,
		listeners: make([]models.EventListener, 0),
	}
}

func (eb *eventBus) addListener(listener models.EventListener) {
	eb.mutex.Lock()
	defer eb.mutex.Unlock()
	eb.listeners = append(eb.listeners, listener)
}

// Emit sends an event to all registered listeners.
// Listeners are notified asynchronously so a slow listener never stalls the chain.
func (eb *eventBus) Emit(eventType models.EventType, data map[string]any) {
	eb.mutex.RLock()
	listeners := make([]models.EventListener, len(eb.listeners))
	copy(listeners, eb.listeners)
	eb.mutex.RUnlock()

	if len(listeners) == 0 {
		return
	}

	event := models.Event{
		Type:      eventType,
		RunID:     eb.runID,
		Timestamp: time.Now(),
		Data:      data,
	}

	for _, listener := range listeners {
		eb.pendingWg.Add(1)
		go func(l models.EventListener) {
			defer eb.pendingWg.Done()
			l.OnEvent(event)
		}(listener)
	}
}

// Wait waits for all pending events to be processed
func (eb *eventBus) Wait() {
	eb.pendingWg.Wait()
}

func (eb *eventBus) EmitToolboxStarted(chain []string) {
	eb.Emit(models.EventToolboxStarted, map[string]any{
		"chain": append([]string(nil), chain...),
	})
}

func (eb *eventBus) EmitToolboxCompleted(duration time.Duration) {
	eb.Emit(models.EventToolboxCompleted, map[string]any{
		"duration": duration,
	})
}

func (eb *eventBus) EmitToolboxError(err error) {
	eb.Emit(models.EventToolboxError, map[string]any{
		"error": err.Error(),
	})
}

func (eb *eventBus) EmitProcessor(eventType models.EventType, name string) {
	eb.Emit(eventType, map[string]any{
		"processor": name,
	})
}

func (eb *eventBus) EmitProcessorCompleted(name string, duration time.Duration) {
	eb.Emit(models.EventProcessorCompleted, map[string]any{
		"processor": name,
		"duration":  duration,
	})
}

func (eb *eventBus) EmitProcessorError(name string, err error) {
	eb.Emit(models.EventProcessorError, map[string]any{
		"processor": name,
		"error":     err.Error(),
	})
}

func (eb *eventBus) EmitConnectionResolved(c *Connection) {
	eb.Emit(models.EventConnectionResolved, map[string]any{
		"producer": c.Producer,
		"output":   c.Output,
		"consumer": c.Consumer,
		"input":    c.Input,
	})
}
