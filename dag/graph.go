package dag

// graph is an adjacency-list DAG over names. Vertices are node names
// or virtual-input names; edges point from a dependency to the vertex
// that depends on it. Insertion order is tracked for deterministic
// topological ordering.
type graph struct {
	succ map[string][]string
	pred map[string][]string
	seq  map[string]int
	next int
}

func newGraph() *graph {
	return &graph{
		succ: make(map[string][]string),
		pred: make(map[string][]string),
		seq:  make(map[string]int),
	}
}

func (g *graph) has(name string) bool {
	_, ok := g.seq[name]
	return ok
}

// ensure adds the vertex if it does not exist yet.
func (g *graph) ensure(name string) {
	if g.has(name) {
		return
	}
	g.seq[name] = g.next
	g.next++
}

func (g *graph) addEdge(from, to string) {
	g.ensure(from)
	g.ensure(to)
	g.succ[from] = append(g.succ[from], to)
	g.pred[to] = append(g.pred[to], from)
}

func (g *graph) removeEdge(from, to string) {
	g.succ[from] = removeOne(g.succ[from], to)
	g.pred[to] = removeOne(g.pred[to], from)
}

// remove deletes a vertex and every edge touching it.
func (g *graph) remove(name string) {
	for _, from := range g.pred[name] {
		g.succ[from] = removeOne(g.succ[from], name)
	}
	for _, to := range g.succ[name] {
		g.pred[to] = removeOne(g.pred[to], name)
	}
	delete(g.succ, name)
	delete(g.pred, name)
	delete(g.seq, name)
}

func removeOne(s []string, v string) []string {
	for i, e := range s {
		if e == v {
			return append(s[:i], s[i+1:]...)
		}
	}
	return s
}

// reachableFrom returns every vertex reachable from start along
// successor edges, excluding start itself unless it lies on a cycle.
func (g *graph) reachableFrom(start string) map[string]bool {
	seen := make(map[string]bool)
	stack := append([]string(nil), g.succ[start]...)
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[v] {
			continue
		}
		seen[v] = true
		stack = append(stack, g.succ[v]...)
	}
	return seen
}

// topo returns a topological order over the given vertex set (all
// vertices when subset is nil). Ties are broken by insertion order.
// The graph is assumed acyclic.
func (g *graph) topo(subset map[string]bool) []string {
	in := make(map[string]int)
	member := func(name string) bool {
		if subset == nil {
			return g.has(name)
		}
		return subset[name]
	}
	for name := range g.seq {
		if !member(name) {
			continue
		}
		in[name] = 0
		for _, p := range g.pred[name] {
			if member(p) {
				in[name]++
			}
		}
	}

	order := make([]string, 0, len(in))
	done := make(map[string]bool)
	for len(order) < len(in) {
		best := ""
		for name, deg := range in {
			if deg != 0 || done[name] {
				continue
			}
			if best == "" || g.seq[name] < g.seq[best] {
				best = name
			}
		}
		if best == "" {
			break
		}
		done[best] = true
		order = append(order, best)
		for _, s := range g.succ[best] {
			if _, ok := in[s]; ok {
				in[s]--
			}
		}
	}
	return order
}
