package toast

// Event is one emitted toast event.
type Event struct {
	Name string
	Data map[string]any
}

// Level returns the event's level field.
func (e Event) Level() string {
	s, _ := e.Data["level"].(string)
	return s
}

// Message returns the event's message field.
func (e Event) Message() string {
	s, _ := e.Data["message"].(string)
	return s
}

// Recorder is an Emitter that keeps every event. It backs the CLI's
// simulate command and tests.
type Recorder struct {
	Events []Event
}

// Emit records the event.
func (r *Recorder) Emit(name string, data any) {
	m, _ := data.(map[string]any)
	r.Events = append(r.Events, Event{Name: name, Data: m})
}

// Last returns the most recent event and whether there was one.
func (r *Recorder) Last() (Event, bool) {
	if len(r.Events) == 0 {
		return Event{}, false
	}
	return r.Events[len(r.Events)-1], true
}

// Reset forgets every recorded event.
func (r *Recorder) Reset() {
	r.Events = r.Events[:0]
}
