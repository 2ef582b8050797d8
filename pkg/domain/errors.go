package domain

import "errors"

// ErrCapacityExceeded is returned when an insert would grow a bounded queue past its maximum size.
var ErrCapacityExceeded = errors.New("capacity exceeded")

// ErrEmptyQueue is returned when popping from an empty queue.
var ErrEmptyQueue = errors.New("empty queue")

// ErrNotQueued is returned when a priority update targets an index that is not in the queue.
var ErrNotQueued = errors.New("index not queued")

// ErrAtomicGoal is returned when a subgoal is added to a goal that cannot hold children.
var ErrAtomicGoal = errors.New("atomic goal cannot hold subgoals")

// ErrUnknownBehavior is returned when an edge carries a behavior tag with no traversal mapping.
var ErrUnknownBehavior = errors.New("unknown edge behavior")

// ErrAgentNotFound is returned when an agent ID is not registered with the scheduler.
var ErrAgentNotFound = errors.New("agent not found")

// ErrSnapshotNotFound is returned when no snapshot exists for an agent ID in the store.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// ErrUnknownEvaluator is returned when a scenario names an evaluator kind that is not registered.
var ErrUnknownEvaluator = errors.New("unknown evaluator")

// ErrInvalidGraph is returned when graph data breaks a structural rule (dangling edge, bad cost).
var ErrInvalidGraph = errors.New("invalid graph")
