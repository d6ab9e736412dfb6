package entities

import "time"

// ViewerState is a snapshot of the shared navigation state sent to clients.
type ViewerState struct {
	CurrentSlide   int           `json:"currentSlide"`
	TotalSlides    int           `json:"totalSlides"`
	Progress       float64       `json:"progress"`
	Counter        string        `json:"counter"`
	NextSlideTitle string        `json:"nextSlideTitle"`
	ElapsedTime    time.Duration `json:"elapsedTime"`
	StartTime      time.Time     `json:"startTime"`
	IsPaused       bool          `json:"isPaused"`
}

// SyncEvent is a synchronization event fanned out to all connected viewers.
type SyncEvent struct {
	Type      string                 `json:"type"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
}

// NewSyncEvent creates a sync event stamped with the current time.
func NewSyncEvent(eventType string, data map[string]interface{}) SyncEvent {
	return SyncEvent{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now(),
	}
}
