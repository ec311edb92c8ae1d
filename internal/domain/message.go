package domain

import "fmt"

const (
	WelcomeText = "Welcome to the chat room!"
	JoinedText  = "Someone joined the chat!"
	LeftText    = "Someone left the chat!"
)

// Payload is a free-form inbound or outbound record.
type Payload map[string]any

type Greeting struct {
	Greeting string `json:"greeting"`
}

// Counter carries the public participant count as a string, matching the wire format clients expect.
type Counter struct {
	Counter string `json:"counter"`
}

type Notice struct {
	Message string `json:"message"`
}

func NewCounter(n int) Counter {
	return Counter{Counter: fmt.Sprintf("%d", n)}
}

// Text returns the string value stored under key, if any.
func (p Payload) Text(key string) (string, bool) {
	v, ok := p[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Prefixed renders "<username>> <text>".
func Prefixed(username, text string) Notice {
	return Notice{Message: fmt.Sprintf("%s> %s", username, text)}
}
