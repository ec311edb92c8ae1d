package core

import (
	"encoding/json"
	"fmt"

	"github.com/dkeye/Duet/internal/domain"
)

// Encode marshals v into a Frame.
func Encode(v any) (Frame, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	return Frame(b), nil
}

// Fanout delivers data to every member in order. A failed send is
// recorded and skipped; the remaining members are still attempted.
func Fanout(members []Connection, data Frame) PublishResult {
	res := PublishResult{}
	for _, m := range members {
		if err := m.TrySend(data); err != nil {
			res.Dropped = append(res.Dropped, m)
			continue
		}
		res.SendTo++
	}
	return res
}

var (
	welcomeFrame = mustEncode(domain.Greeting{Greeting: domain.WelcomeText})
	joinedFrame  = mustEncode(domain.Greeting{Greeting: domain.JoinedText})
)

// Greet sends the welcome greeting to joiner and the joined notice to
// every other member. Members are matched by identity.
func Greet(members []Connection, joiner Connection) PublishResult {
	res := PublishResult{}
	for _, m := range members {
		frame := joinedFrame
		if m == joiner {
			frame = welcomeFrame
		}
		if err := m.TrySend(frame); err != nil {
			res.Dropped = append(res.Dropped, m)
			continue
		}
		res.SendTo++
	}
	return res
}

func mustEncode(v any) Frame {
	f, err := Encode(v)
	if err != nil {
		panic(err)
	}
	return f
}
