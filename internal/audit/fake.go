package audit

import "sync"

// CaptureRecorder collects events in memory for test assertions.
type CaptureRecorder struct {
	mu     sync.Mutex
	events []Event
}

func NewCaptureRecorder() *CaptureRecorder { return &CaptureRecorder{} }

func (r *CaptureRecorder) Record(tenantID, actorID uint, eventType string, targetID uint, metadata map[string]interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	md := make(map[string]interface{}, len(metadata))
	for k, v := range metadata {
		md[k] = v
	}
	r.events = append(r.events, Event{
		TenantID:  tenantID,
		ActorID:   actorID,
		EventType: eventType,
		TargetID:  targetID,
		Metadata:  md,
	})
}

// Events returns a snapshot of everything recorded.
func (r *CaptureRecorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// ByType returns recorded events of one type.
func (r *CaptureRecorder) ByType(eventType string) []Event {
	var out []Event
	for _, ev := range r.Events() {
		if ev.EventType == eventType {
			out = append(out, ev)
		}
	}
	return out
}
