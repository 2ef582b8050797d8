/*
Package domain contains the core value types shared by the tactic scheduler.

It defines goal statuses, messages, edge behaviors, positions and the
snapshot persisted per agent. The package is kept free of I/O and of any
dependency on the search or goal machinery, so adapters and the core can
both depend on it.

# Key Entities

  - Status: the lifecycle of a goal (inactive, active, completed, failed).
  - Message: a tagged record routed down the active goal chain.
  - Behavior: the traversal mode attached to a navigation edge.
  - Snapshot: the persisted view of an agent after a tick.
*/
package domain
