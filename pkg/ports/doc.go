/*
Package ports defines the driven ports (interfaces) for the tactic scheduler.

These interfaces decouple the goal and search core from the surrounding
simulation, storage backends and clocks.

# Key Interfaces

  - Agent: the capability set a goal uses to read and steer its owner.
  - Clock: the time source for stuck detection and delayed messages.
  - SnapshotStore: persists the per-agent snapshot taken after each tick.
  - DistributedLocker: serializes access to an agent across replicas.
*/
package ports
