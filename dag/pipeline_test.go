package dag

import (
	"reflect"
	"testing"

	"github.com/raysim/pipekit/errors"
)

func constFn(v any) Func {
	return func(map[string]any) (any, error) { return v, nil }
}

func TestAddNode_RejectsEmptyName(t *testing.T) {
	p := New("test")
	if _, err := p.AddNode("  ", constFn(1)); err == nil {
		t.Fatal("expected error for blank name")
	}
}

func TestAddNode_RejectsNilFunc(t *testing.T) {
	p := New("test")
	if _, err := p.AddNode("a", nil); err == nil {
		t.Fatal("expected error for nil func")
	}
}

func TestAddNode_RejectsDuplicateDependency(t *testing.T) {
	p := New("test")
	_, err := p.AddNode("b", constFn(1), WithDependencies("a", "a"))
	if err == nil {
		t.Fatal("expected error for duplicate dependency")
	}
	if !errors.IsCode(err, errors.ErrCodeInvalidInput) {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
}

func TestAddNode_SelfDependencyIsCycle(t *testing.T) {
	p := New("test")
	_, err := p.AddNode("a", constFn(1), WithDependencies("a"))
	if !errors.IsCode(err, errors.ErrCodeCycleDetected) {
		t.Fatalf("expected CYCLE_DETECTED, got %v", err)
	}
}

func TestAddNode_CreatesVirtualInputs(t *testing.T) {
	p := New("test")
	if _, err := p.AddNode("b", constFn(1), WithDependencies("a")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.IsVirtualInput("a") {
		t.Fatal("expected a to be a virtual input")
	}
	if got := p.VirtualInputs(); !reflect.DeepEqual(got, []string{"a"}) {
		t.Fatalf("unexpected virtual inputs: %v", got)
	}
}

func TestAddNode_Promotion(t *testing.T) {
	p := New("test")
	mustAdd(t, p, "b", func(in map[string]any) (any, error) {
		return in["a"].(int) + 1, nil
	}, WithDependencies("a"))

	mustAdd(t, p, "a", constFn(7))

	if len(p.VirtualInputs()) != 0 {
		t.Fatalf("expected promotion to clear virtual inputs, got %v", p.VirtualInputs())
	}
	n, ok := p.GetNode("a")
	if !ok || n.Name != "a" {
		t.Fatal("expected node a after promotion")
	}
	// Downstream edge b <- a survived promotion.
	if got := p.dependents("a"); !reflect.DeepEqual(got, []string{"b"}) {
		t.Fatalf("expected b to depend on a, got %v", got)
	}
}

func TestAddNode_ReplaceWithoutDependents(t *testing.T) {
	p := New("test")
	mustAdd(t, p, "a", constFn(1))
	mustAdd(t, p, "a", constFn(2))

	out := mustExecute(t, p, []string{"a"}, nil)
	if out["a"] != 2 {
		t.Fatalf("expected replacement value 2, got %v", out["a"])
	}
}

func TestAddNode_ReplaceWithDependentsFails(t *testing.T) {
	p := New("test")
	mustAdd(t, p, "a", constFn(1))
	mustAdd(t, p, "b", constFn(2), WithDependencies("a"))

	_, err := p.AddNode("a", constFn(3))
	if !errors.IsCode(err, errors.ErrCodeNodeConflict) {
		t.Fatalf("expected NODE_CONFLICT, got %v", err)
	}
}

func TestAddNode_ReplacePrunesStaleVirtualInputs(t *testing.T) {
	p := New("test")
	mustAdd(t, p, "a", constFn(1), WithDependencies("x"))
	mustAdd(t, p, "a", constFn(2))

	if len(p.VirtualInputs()) != 0 {
		t.Fatalf("expected stale virtual input pruned, got %v", p.VirtualInputs())
	}
}

func TestAddNode_CycleDetectionRollsBack(t *testing.T) {
	p := New("test")
	mustAdd(t, p, "a", constFn(1), WithDependencies("b"))

	_, err := p.AddNode("b", constFn(2), WithDependencies("a"))
	if !errors.IsCode(err, errors.ErrCodeCycleDetected) {
		t.Fatalf("expected CYCLE_DETECTED, got %v", err)
	}

	// Pipeline unchanged: a remains, b is still a virtual input.
	if _, ok := p.GetNode("b"); ok {
		t.Fatal("b must not have been added")
	}
	if !p.IsVirtualInput("b") {
		t.Fatal("b must remain a virtual input")
	}
	if got := p.ListNodes(); !reflect.DeepEqual(got, []string{"a"}) {
		t.Fatalf("unexpected nodes: %v", got)
	}
}

func TestAddNode_OutputCollisionRollsBack(t *testing.T) {
	p := New("test")
	mustAdd(t, p, "taken", constFn(0))

	_, err := p.AddNode("stats",
		func(map[string]any) (any, error) {
			return map[string]any{"taken": 1}, nil
		},
		WithOutputs("taken"))
	if !errors.IsCode(err, errors.ErrCodeInvalidInput) {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
	if _, ok := p.GetNode("stats"); ok {
		t.Fatal("expected rollback to remove the source node")
	}
}

func TestRemoveNode(t *testing.T) {
	p := New("test")
	mustAdd(t, p, "a", constFn(1))
	mustAdd(t, p, "b", constFn(2), WithDependencies("a"))

	if err := p.RemoveNode("a"); !errors.IsCode(err, errors.ErrCodeNodeConflict) {
		t.Fatalf("expected NODE_CONFLICT removing a, got %v", err)
	}
	if err := p.RemoveNode("missing"); !errors.IsCode(err, errors.ErrCodeNodeNotFound) {
		t.Fatalf("expected NODE_NOT_FOUND, got %v", err)
	}

	if err := p.RemoveNode("b"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := p.GetNode("b"); ok {
		t.Fatal("b should be gone")
	}
	if err := p.RemoveNode("a"); err != nil {
		t.Fatalf("unexpected error removing a after b: %v", err)
	}
}

func TestRemoveNode_PrunesOrphanedVirtualInputs(t *testing.T) {
	p := New("test")
	mustAdd(t, p, "b", constFn(1), WithDependencies("x"))

	if err := p.RemoveNode("b"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.VirtualInputs()) != 0 {
		t.Fatalf("expected virtual input x pruned, got %v", p.VirtualInputs())
	}
}

func TestListNodes_TopologicalWithInsertionTiebreak(t *testing.T) {
	p := New("test")
	mustAdd(t, p, "root", constFn(0))
	mustAdd(t, p, "beta", constFn(1), WithDependencies("root"))
	mustAdd(t, p, "alpha", constFn(2), WithDependencies("root"))
	mustAdd(t, p, "sink", constFn(3), WithDependencies("beta", "alpha"))

	got := p.ListNodes()
	want := []string{"root", "beta", "alpha", "sink"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestNodesByMetadata(t *testing.T) {
	p := New("test")
	mustAdd(t, p, "a", constFn(1), WithMetadata(map[string]any{"kind": "source"}))
	mustAdd(t, p, "b", constFn(2), WithMetadata(map[string]any{"kind": "sink"}))
	mustAdd(t, p, "c", constFn(3), WithMetadata(map[string]any{"kind": "source"}))

	matched := p.NodesByMetadata("kind", "source")
	if len(matched) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matched))
	}
	if matched[0].Name != "a" || matched[1].Name != "c" {
		t.Fatalf("unexpected match order: %s, %s", matched[0].Name, matched[1].Name)
	}
	if got := p.NodesByMetadata("kind", "other"); len(got) != 0 {
		t.Fatalf("expected no matches, got %d", len(got))
	}
}

func TestChainedConstruction(t *testing.T) {
	p := New("test")
	p2, err := p.AddNode("a", constFn(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p2 != p {
		t.Fatal("AddNode must return the same pipeline for chaining")
	}
}
