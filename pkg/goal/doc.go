/*
Package goal implements the hierarchical goal scheduler.

A Goal is a small state machine with an explicit status. The driver calls
Process once per tick on a root goal; composites delegate to their front
child only, so exactly one chain of goals does work each tick.

Lifecycle:

	inactive --Process--> Activate() --> active --> completed | failed

Every goal removed from a composite is terminated first, exactly once,
whatever its status. Removing a goal from the tree is the only way to cancel
it.

Composites run their children in front-to-back order. AddSubgoal pushes to
the front, so "do A, then B, then C" is expressed by adding C, then B, then A.

Think is the root arbitrator: whenever its chain drains it scores every
Evaluator and installs the goal of the most desirable one.
*/
package goal
