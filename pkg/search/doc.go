/*
Package search implements time-sliced shortest-path search over a navigation graph.

A search is created with its source and target, then advanced one node
expansion at a time by calling Step once per update cycle. All suspended work
(frontier, costs, shortest-path tree) lives in the search value, so callers
can interleave many searches without blocking.

Both variants share one frontier model:

  - A* orders the frontier by cost-so-far plus a heuristic estimate and stops
    when the target is popped.
  - Dijkstra orders by cost-so-far only and stops when a termination predicate
    holds, which lets it stop on the first node carrying an item rather than a
    fixed target.

A node popped from the frontier is frozen into the shortest-path tree and
never revised, which is correct for non-negative edge costs.
*/
package search
