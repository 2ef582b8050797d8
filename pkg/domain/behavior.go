package domain

import "fmt"

// Behavior is the traversal mode attached to a navigation edge.
type Behavior string

const (
	BehaviorNormal  Behavior = "normal"
	BehaviorDoor    Behavior = "door"
	BehaviorJump    Behavior = "jump"
	BehaviorGrapple Behavior = "grapple"
	BehaviorSwim    Behavior = "swim"
	BehaviorCrawl   Behavior = "crawl"
)

// Behaviors lists every recognized edge behavior.
var Behaviors = []Behavior{
	BehaviorNormal, BehaviorDoor, BehaviorJump, BehaviorGrapple, BehaviorSwim, BehaviorCrawl,
}

// ParseBehavior converts a data-file tag into a Behavior.
// An empty tag is normal traversal.
func ParseBehavior(tag string) (Behavior, error) {
	if tag == "" {
		return BehaviorNormal, nil
	}
	b := Behavior(tag)
	if _, err := SteeringFor(b); err != nil {
		return "", err
	}
	return b, nil
}

// Steering is a movement mode an agent can switch on or off.
type Steering string

const (
	SteerSeek    Steering = "seek"
	SteerArrive  Steering = "arrive"
	SteerWander  Steering = "wander"
	SteerJump    Steering = "jump"
	SteerGrapple Steering = "grapple"
	SteerSwim    Steering = "swim"
	SteerCrawl   Steering = "crawl"
)

// SteeringFor maps an edge behavior to the movement mode used to traverse it.
func SteeringFor(b Behavior) (Steering, error) {
	switch b {
	case BehaviorNormal, BehaviorDoor:
		return SteerSeek, nil
	case BehaviorJump:
		return SteerJump, nil
	case BehaviorGrapple:
		return SteerGrapple, nil
	case BehaviorSwim:
		return SteerSwim, nil
	case BehaviorCrawl:
		return SteerCrawl, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownBehavior, string(b))
}
