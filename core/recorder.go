package core

import "strings"

// EventKind identifies a recorded injector call
type EventKind uint8

const (
	EventPress EventKind = iota
	EventRelease
	EventReleaseAll
	EventText
)

// Event is one injector call captured by a Recorder
type Event struct {
	Kind EventKind
	Keys []Keycode
	Text string
}

// Recorder is an Injector that only records what it was asked to send.
// The host runner uses it for dry runs; tests use it to assert sequences.
type Recorder struct {
	Events []Event

	// OnText, when set, is called after every WriteText
	OnText func(s string)
}

// NewRecorder creates an empty Recorder
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Press(keys ...Keycode) error {
	r.Events = append(r.Events, Event{Kind: EventPress, Keys: append([]Keycode(nil), keys...)})
	return nil
}

func (r *Recorder) Release(keys ...Keycode) error {
	r.Events = append(r.Events, Event{Kind: EventRelease, Keys: append([]Keycode(nil), keys...)})
	return nil
}

func (r *Recorder) ReleaseAll() error {
	r.Events = append(r.Events, Event{Kind: EventReleaseAll})
	return nil
}

func (r *Recorder) WriteText(s string) error {
	r.Events = append(r.Events, Event{Kind: EventText, Text: s})
	if r.OnText != nil {
		r.OnText(s)
	}
	return nil
}

// Typed returns all text written so far, concatenated
func (r *Recorder) Typed() string {
	var sb strings.Builder
	for _, e := range r.Events {
		if e.Kind == EventText {
			sb.WriteString(e.Text)
		}
	}
	return sb.String()
}

// Pressed returns the key sets of every Press call, in order
func (r *Recorder) Pressed() [][]Keycode {
	var out [][]Keycode
	for _, e := range r.Events {
		if e.Kind == EventPress {
			out = append(out, e.Keys)
		}
	}
	return out
}

// Reset forgets all recorded events
func (r *Recorder) Reset() {
	r.Events = nil
}

func (e Event) String() string {
	switch e.Kind {
	case EventPress:
		return "press " + keysString(e.Keys)
	case EventRelease:
		return "release " + keysString(e.Keys)
	case EventReleaseAll:
		return "release-all"
	default:
		return "type " + Quote(e.Text)
	}
}

func keysString(keys []Keycode) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = "0x" + hexByte(uint8(k))
	}
	return strings.Join(parts, "+")
}

func hexByte(b uint8) string {
	const hex = "0123456789abcdef"
	return string([]byte{hex[b>>4], hex[b&0xf]})
}
