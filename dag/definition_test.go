package dag

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/raysim/pipekit/errors"
	"github.com/raysim/pipekit/util"
)

func writeDefinition(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name+".yaml"), []byte(content), 0o644); err != nil {
		t.Fatalf("writing definition: %v", err)
	}
}

func stageRegistry() *Registry {
	r := NewRegistry()
	r.Register("const_one", constFn(1))
	r.Register("sum", func(in map[string]any) (any, error) {
		total := 0
		for _, v := range in {
			total += v.(int)
		}
		return total, nil
	})
	r.Register("stats", func(map[string]any) (any, error) {
		return map[string]any{"mean": 2.0, "std": 0.5}, nil
	})
	return r
}

func TestFileLoader(t *testing.T) {
	dir := t.TempDir()
	writeDefinition(t, dir, "base", `
name: base
nodes:
  - name: a
    func: const_one
`)

	loader := NewFileLoader(dir)
	def, err := loader.Load("base")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if def.Name != "base" || len(def.Nodes) != 1 {
		t.Fatalf("unexpected definition: %+v", def)
	}

	if _, err := loader.Load("missing"); !errors.IsCode(err, errors.ErrCodeNodeNotFound) {
		t.Fatalf("expected NODE_NOT_FOUND, got %v", err)
	}
}

func TestBuild_Simple(t *testing.T) {
	def := &Definition{
		Name: "built",
		Nodes: []NodeDef{
			{Name: "a", Func: "const_one"},
			{Name: "b", Func: "sum", DependsOn: []string{"a"}},
		},
	}

	p, err := Build(def, stageRegistry(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := mustExecute(t, p, []string{"b"}, nil)
	if out["b"] != 1 {
		t.Fatalf("expected 1, got %v", out["b"])
	}
}

func TestBuild_NodeSettings(t *testing.T) {
	def := &Definition{
		Name: "settings",
		Nodes: []NodeDef{
			{
				Name:        "a",
				Func:        "const_one",
				Description: "seed value",
				Metadata:    map[string]any{"stage": "seed"},
				Validate:    util.Ptr(false),
			},
		},
	}

	p, err := Build(def, stageRegistry(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	n, ok := p.GetNode("a")
	if !ok {
		t.Fatal("missing node a")
	}
	if n.Description != "seed value" || n.Validate || n.Metadata["stage"] != "seed" {
		t.Fatalf("unexpected node: %+v", n)
	}
}

func TestBuild_GlobalValidate(t *testing.T) {
	def := &Definition{Name: "gate", Validate: util.Ptr(false), Nodes: []NodeDef{{Name: "a", Func: "const_one"}}}
	p, err := Build(def, stageRegistry(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.GlobalValidate() {
		t.Fatal("expected global validation off")
	}
}

func TestBuild_Outputs(t *testing.T) {
	def := &Definition{
		Name: "derived",
		Nodes: []NodeDef{
			{
				Name:       "stats",
				Func:       "stats",
				Outputs:    []string{"mean"},
				OutputKeys: map[string]string{"sigma": "std"},
			},
		},
	}

	p, err := Build(def, stageRegistry(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := mustExecute(t, p, []string{"mean", "sigma"}, nil)
	if out["mean"] != 2.0 || out["sigma"] != 0.5 {
		t.Fatalf("unexpected outputs: %v", out)
	}
}

func TestBuild_UnknownFunc(t *testing.T) {
	def := &Definition{Name: "broken", Nodes: []NodeDef{{Name: "a", Func: "nope"}}}
	_, err := Build(def, stageRegistry(), nil)
	if !errors.IsCode(err, errors.ErrCodeNodeNotFound) {
		t.Fatalf("expected NODE_NOT_FOUND, got %v", err)
	}
}

func TestBuild_Includes(t *testing.T) {
	dir := t.TempDir()
	writeDefinition(t, dir, "base", `
name: base
nodes:
  - name: a
    func: const_one
`)
	writeDefinition(t, dir, "mid", `
name: mid
includes: [base]
nodes:
  - name: b
    func: sum
    depends_on: [a]
`)

	def := &Definition{
		Name:     "top",
		Includes: []string{"mid", "base"},
		Nodes:    []NodeDef{{Name: "c", Func: "sum", DependsOn: []string{"b"}}},
	}

	p, err := Build(def, stageRegistry(), NewFileLoader(dir))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// base is included along two branches but applied once.
	if got := p.ListNodes(); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("unexpected nodes: %v", got)
	}
}

func TestBuild_CircularInclude(t *testing.T) {
	dir := t.TempDir()
	writeDefinition(t, dir, "ping", `
name: ping
includes: [pong]
nodes: []
`)
	writeDefinition(t, dir, "pong", `
name: pong
includes: [ping]
nodes: []
`)

	def := &Definition{Name: "ping", Includes: []string{"pong"}}
	_, err := Build(def, stageRegistry(), NewFileLoader(dir))
	if !errors.IsCode(err, errors.ErrCodeInvalidInput) {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
}

func TestBuild_IncludeWithoutLoader(t *testing.T) {
	def := &Definition{Name: "top", Includes: []string{"base"}}
	_, err := Build(def, stageRegistry(), nil)
	if !errors.IsCode(err, errors.ErrCodeInvalidInput) {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
}

func TestLoadDefinition_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(path, []byte("nodes: [}"), 0o644); err != nil {
		t.Fatalf("writing file: %v", err)
	}
	if _, err := LoadDefinition("bad", path); err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.Register("b", constFn(2))
	r.Register("a", constFn(1))

	if _, ok := r.Get("missing"); ok {
		t.Fatal("expected miss for unregistered key")
	}
	fn, ok := r.Get("a")
	if !ok {
		t.Fatal("expected hit for a")
	}
	if v, err := fn(nil); err != nil || v != 1 {
		t.Fatalf("unexpected result: %v, %v", v, err)
	}
	if got := r.List(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("unexpected keys: %v", got)
	}
}
