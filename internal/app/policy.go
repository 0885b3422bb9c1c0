package app

import (
	"fmt"

	"github.com/dkeye/coderoom/internal/core"
	"github.com/dkeye/coderoom/internal/domain"
)

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	KickMember
	DropFrame
)

// Policy decides what happens to a subscriber whose delivery failed.
type Policy interface {
	OnBackPressure(room domain.RoomName, sub core.Subscriber) BackpressureAction
}

// KickPolicy closes slow subscribers; their transport teardown then runs
// the usual disconnect path.
type KickPolicy struct{}

func (KickPolicy) OnBackPressure(domain.RoomName, core.Subscriber) BackpressureAction {
	return KickMember
}

// DropPolicy loses the frame and keeps the subscriber.
type DropPolicy struct{}

func (DropPolicy) OnBackPressure(domain.RoomName, core.Subscriber) BackpressureAction {
	return DropFrame
}

// PolicyByName maps the backpressure config value to a Policy.
func PolicyByName(name string) (Policy, error) {
	switch name {
	case "", "kick":
		return KickPolicy{}, nil
	case "drop":
		return DropPolicy{}, nil
	default:
		return nil, fmt.Errorf("unknown backpressure policy %q", name)
	}
}
