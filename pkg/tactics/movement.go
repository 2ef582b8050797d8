package tactics

import (
	"github.com/aretw0/tactic/pkg/domain"
	"github.com/aretw0/tactic/pkg/goal"
	"github.com/aretw0/tactic/pkg/search"
)

// FollowPath walks a planned path one edge at a time.
type FollowPath struct {
	goal.Composite
	kit  *Kit
	path []search.PathEdge
}

// NewFollowPath creates a goal that follows path from its first edge.
func NewFollowPath(kit *Kit, path []search.PathEdge) *FollowPath {
	return &FollowPath{
		Composite: goal.NewComposite(kit.Env, KindFollowPath),
		kit:       kit,
		path:      append([]search.PathEdge(nil), path...),
	}
}

// Activate takes the next edge off the path and queues a traversal for it.
func (g *FollowPath) Activate() {
	g.SetStatus(domain.StatusActive)
	g.RemoveAllSubgoals()
	if len(g.path) == 0 {
		g.SetStatus(domain.StatusCompleted)
		return
	}

	edge := g.path[0]
	g.path = g.path[1:]
	if _, err := domain.SteeringFor(edge.Behavior); err != nil {
		g.Logger().Error("path contains an untraversable edge", "agent", g.Agent().ID(), "err", err)
		g.SetStatus(domain.StatusFailed)
		return
	}
	_ = g.AddSubgoal(NewTraverseEdge(g.kit, edge, len(g.path) == 0))
}

func (g *FollowPath) Process() domain.Status {
	g.ActivateIfInactive(g)
	if g.Status().Finished() {
		return g.Status()
	}

	g.SetStatus(g.ProcessSubgoals())
	if g.IsComplete() && len(g.path) > 0 {
		g.SetStatus(domain.StatusInactive)
		g.ActivateIfInactive(g)
	}
	return g.Status()
}

// Remaining returns the edges not yet handed to a traversal.
func (g *FollowPath) Remaining() []search.PathEdge { return g.path }

// MoveToPosition plans a path to a destination and follows it, replanning
// when following fails. After Kit.MaxReplans replans the failure stands.
type MoveToPosition struct {
	goal.Composite
	kit     *Kit
	dest    domain.Vec2
	replans int
}

// NewMoveToPosition creates a goal that travels to dest.
func NewMoveToPosition(kit *Kit, dest domain.Vec2) *MoveToPosition {
	return &MoveToPosition{
		Composite: goal.NewComposite(kit.Env, KindMoveToPosition),
		kit:       kit,
		dest:      dest,
	}
}

func (g *MoveToPosition) Activate() {
	g.SetStatus(domain.StatusActive)
	g.RemoveAllSubgoals()
	if !g.kit.Planner.RequestPathToPosition(g.dest) {
		g.SetStatus(domain.StatusFailed)
		return
	}
	// Head for the destination while the search runs.
	if g.IsActive() && g.Front() == nil {
		_ = g.AddSubgoal(NewSeekToPosition(g.kit, g.dest))
	}
}

func (g *MoveToPosition) Process() domain.Status {
	g.ActivateIfInactive(g)
	if g.Status().Finished() {
		return g.Status()
	}

	g.SetStatus(g.ProcessSubgoals())
	if g.HasFailed() {
		if g.replans >= g.kit.MaxReplans {
			g.Logger().Debug("giving up on destination", "agent", g.Agent().ID(), "dest", g.dest, "replans", g.replans)
			return g.Status()
		}
		g.replans++
		g.ReactivateIfFailed()
	}
	return g.Status()
}

// Replans counts how many times the goal has planned again after failing.
func (g *MoveToPosition) Replans() int { return g.replans }

func (g *MoveToPosition) HandleMessage(msg domain.Message) bool {
	if g.ForwardToFront(msg) {
		return true
	}
	switch msg.Kind {
	case domain.MsgPathReady:
		g.RemoveAllSubgoals()
		_ = g.AddSubgoal(NewFollowPath(g.kit, g.kit.Planner.Path()))
		return true
	case domain.MsgNoPathAvailable:
		g.SetStatus(domain.StatusFailed)
		return true
	}
	return false
}

func (g *MoveToPosition) Terminate() {
	g.kit.Planner.Reset()
	g.Composite.Terminate()
}

// Destination returns where the goal is heading.
func (g *MoveToPosition) Destination() domain.Vec2 { return g.dest }

// Explore travels to a randomly chosen graph node.
type Explore struct {
	goal.Composite
	kit     *Kit
	dest    domain.Vec2
	destSet bool
}

// NewExplore creates an explore goal.
func NewExplore(kit *Kit) *Explore {
	return &Explore{
		Composite: goal.NewComposite(kit.Env, KindExplore),
		kit:       kit,
	}
}

func (g *Explore) Activate() {
	g.SetStatus(domain.StatusActive)
	g.RemoveAllSubgoals()

	if !g.destSet {
		gr := g.kit.Planner.Graph()
		if gr.NodeCount() == 0 {
			g.SetStatus(domain.StatusFailed)
			return
		}
		g.dest = gr.Node(g.kit.Rand.IntN(gr.NodeCount())).Pos
		g.destSet = true
	}
	_ = g.AddSubgoal(NewMoveToPosition(g.kit, g.dest))
}

func (g *Explore) Process() domain.Status {
	g.ActivateIfInactive(g)
	if g.Status().Finished() {
		return g.Status()
	}
	g.SetStatus(g.ProcessSubgoals())
	return g.Status()
}

// Destination returns the chosen target and whether one was picked yet.
func (g *Explore) Destination() (domain.Vec2, bool) { return g.dest, g.destSet }

// GetItem finds the nearest available item of a type and walks to it.
// It fails when the item is taken before the agent arrives.
type GetItem struct {
	goal.Composite
	kit    *Kit
	item   string
	target int
}

// NewGetItem creates a goal that fetches the nearest item of the given type.
func NewGetItem(kit *Kit, item string) *GetItem {
	return &GetItem{
		Composite: goal.NewComposite(kit.Env, KindGetItem(item)),
		kit:       kit,
		item:      item,
		target:    -1,
	}
}

func (g *GetItem) Activate() {
	g.SetStatus(domain.StatusActive)
	g.RemoveAllSubgoals()
	g.target = -1
	if !g.kit.Planner.RequestPathToItem(g.item) {
		g.SetStatus(domain.StatusFailed)
		return
	}
	// Wander until the search reports back.
	_ = g.AddSubgoal(NewWander(g.kit))
}

func (g *GetItem) Process() domain.Status {
	g.ActivateIfInactive(g)
	if g.Status().Finished() {
		return g.Status()
	}
	g.SetStatus(g.ProcessSubgoals())
	return g.Status()
}

func (g *GetItem) HandleMessage(msg domain.Message) bool {
	if g.ForwardToFront(msg) {
		return true
	}
	switch msg.Kind {
	case domain.MsgPathReady:
		path := g.kit.Planner.Path()
		if len(path) > 0 {
			g.target = path[len(path)-1].ToNode
		}
		g.RemoveAllSubgoals()
		_ = g.AddSubgoal(NewFollowPath(g.kit, path))
		return true
	case domain.MsgNoPathAvailable:
		g.SetStatus(domain.StatusFailed)
		return true
	case domain.MsgItemGone:
		node, ok := domain.PayloadInt(msg.Payload)
		if !ok || node != g.target || g.target < 0 {
			return false
		}
		g.Logger().Debug("item taken before arrival", "agent", g.Agent().ID(), "item", g.item, "node", node)
		g.SetStatus(domain.StatusFailed)
		return true
	}
	return false
}

func (g *GetItem) Terminate() {
	g.kit.Planner.Reset()
	g.Composite.Terminate()
}

// Item returns the item type being fetched.
func (g *GetItem) Item() string { return g.item }

// TargetNode returns the graph node of the chosen item, or -1 before a path is ready.
func (g *GetItem) TargetNode() int { return g.target }
