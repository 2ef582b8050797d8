package search

// Outcome is the result of advancing a search by one step.
type Outcome int

const (
	Incomplete Outcome = iota
	Found
	NotFound
)

func (o Outcome) String() string {
	switch o {
	case Found:
		return "found"
	case NotFound:
		return "not_found"
	}
	return "incomplete"
}

// Terminal reports whether the search has resolved.
func (o Outcome) Terminal() bool { return o != Incomplete }

// Algorithm names a search variant.
type Algorithm string

const (
	AlgorithmAStar    Algorithm = "astar"
	AlgorithmDijkstra Algorithm = "dijkstra"
)
