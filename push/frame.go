package push

import "encoding/json"

// Frame is one json message pushed down a websocket. Exactly one of the
// content fields is normally set.
type Frame struct {
	Message      string          `json:"message,omitempty"`
	LessonPlan   json.RawMessage `json:"lesson_plan,omitempty"`
	ConnectionID string          `json:"connectionId,omitempty"`
	Error        string          `json:"error,omitempty"`
	Done         bool            `json:"done,omitempty"`
}

// MessageFrame carries a chunk of streamed completion text.
func MessageFrame(text string) Frame {
	return Frame{Message: text}
}

// DoneFrame marks the end of a stream.
func DoneFrame() Frame {
	return Frame{Done: true}
}
