package websocket

import "encoding/json"

const (
	ActionActivity = "activity"
	ActionError    = "error"
	ActionPing     = "ping"
	ActionPong     = "pong"
)

// Message defines the structure for websocket messages.
type Message struct {
	Action  string `json:"action"`
	Payload any    `json:"payload,omitempty"`
}

// NewErrorMessage encodes an error reply for a client.
func NewErrorMessage(text string) []byte {
	return mustEncode(Message{Action: ActionError, Payload: map[string]string{"error": text}})
}

func mustEncode(msg Message) []byte {
	data, err := json.Marshal(msg)
	if err != nil {
		panic(err)
	}
	return data
}
