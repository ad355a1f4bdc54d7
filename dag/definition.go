package dag

import (
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/raysim/pipekit/errors"
	"github.com/raysim/pipekit/util"
)

// Definition is a composable, YAML-defined pipeline.
type Definition struct {
	// Name is the pipeline identifier.
	Name string `yaml:"name"`
	// Validate sets the pipeline's global hook gate (default true).
	Validate *bool `yaml:"validate,omitempty"`
	// Includes lists sub-definition names to compose (recursive).
	Includes []string `yaml:"includes,omitempty"`
	// Nodes defines the pipeline's node specifications.
	Nodes []NodeDef `yaml:"nodes"`
}

// NodeDef defines a node within a pipeline definition.
type NodeDef struct {
	// Name is the node's unique identifier.
	Name string `yaml:"name"`
	// Func is the registry lookup key for this node's function.
	Func string `yaml:"func"`
	// DependsOn lists dependency names, in order.
	DependsOn []string `yaml:"depends_on,omitempty"`
	// Description is an optional human-readable summary.
	Description string `yaml:"description,omitempty"`
	// Metadata carries free-form tags.
	Metadata map[string]any `yaml:"metadata,omitempty"`
	// Outputs declares derived child nodes extracting like-named keys.
	Outputs []string `yaml:"outputs,omitempty"`
	// OutputKeys declares derived child nodes extracting mapped keys.
	OutputKeys map[string]string `yaml:"output_keys,omitempty"`
	// Validate toggles hook execution for this node (default true).
	Validate *bool `yaml:"validate,omitempty"`
}

// Loader loads pipeline definitions by name.
type Loader interface {
	Load(name string) (*Definition, error)
}

// FileLoader loads definitions from YAML files on disk.
type FileLoader struct {
	dirs []string
}

// NewFileLoader creates a loader that searches the given directories
// for definition YAML files.
func NewFileLoader(dirs ...string) *FileLoader {
	return &FileLoader{dirs: dirs}
}

// Load searches for {name}.yaml or {name}.yml across the configured
// directories.
func (l *FileLoader) Load(name string) (*Definition, error) {
	for _, dir := range l.dirs {
		for _, ext := range []string{".yaml", ".yml"} {
			path := filepath.Join(dir, name+ext)
			if d, err := loadDefinitionFile(path); err == nil {
				return d, nil
			}
		}
	}
	return nil, errors.NodeNotFound(name).
		WithDetail("dirs", fmt.Sprintf("%v", l.dirs))
}

func loadDefinitionFile(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var d Definition
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, errors.InvalidInput("parsing "+path).WithCause(err)
	}
	return &d, nil
}

// LoadDefinition loads a definition from explicit file paths, trying
// each until one succeeds.
func LoadDefinition(name string, paths ...string) (*Definition, error) {
	for _, path := range paths {
		if d, err := loadDefinitionFile(path); err == nil {
			return d, nil
		}
	}
	return nil, errors.NodeNotFound(name)
}

// Build materializes a pipeline from a definition. Includes are
// resolved recursively with circular-include detection; a definition
// included along several branches is applied once.
func Build(def *Definition, registry *Registry, loader Loader, opts ...PipelineOption) (*Pipeline, error) {
	if def.Validate != nil {
		opts = append(opts, WithGlobalValidate(*def.Validate))
	}
	p := New(def.Name, opts...)

	stack := make(map[string]bool)
	resolved := make(map[string]bool)
	if err := applyDefinition(p, def, registry, loader, stack, resolved); err != nil {
		return nil, err
	}
	return p, nil
}

func applyDefinition(p *Pipeline, def *Definition, registry *Registry, loader Loader, stack, resolved map[string]bool) error {
	if stack[def.Name] {
		return errors.InvalidInput("circular include for pipeline " + def.Name)
	}
	stack[def.Name] = true
	defer delete(stack, def.Name)

	for _, includeName := range def.Includes {
		if resolved[includeName] {
			continue
		}
		if loader == nil {
			return errors.InvalidInput("include " + includeName + " requires a loader")
		}
		sub, err := loader.Load(includeName)
		if err != nil {
			return errors.InvalidInput("loading include " + includeName).WithCause(err)
		}
		if err := applyDefinition(p, sub, registry, loader, stack, resolved); err != nil {
			return err
		}
	}

	for _, nd := range def.Nodes {
		if _, exists := p.GetNode(nd.Name); exists {
			continue
		}
		fn, ok := registry.Get(nd.Func)
		if !ok {
			return errors.NodeNotFound(nd.Func).WithDetail("node", nd.Name)
		}

		nodeOpts := []NodeOption{
			WithDependencies(nd.DependsOn...),
			WithOutputs(nd.Outputs...),
		}
		for _, name := range util.SortedKeys(nd.OutputKeys) {
			nodeOpts = append(nodeOpts, WithOutputKey(name, nd.OutputKeys[name]))
		}
		if nd.Description != "" {
			nodeOpts = append(nodeOpts, WithDescription(nd.Description))
		}
		if nd.Metadata != nil {
			nodeOpts = append(nodeOpts, WithMetadata(nd.Metadata))
		}
		if nd.Validate != nil {
			nodeOpts = append(nodeOpts, WithValidate(*nd.Validate))
		}

		if _, err := p.AddNode(nd.Name, fn, nodeOpts...); err != nil {
			return err
		}
	}

	resolved[def.Name] = true
	return nil
}
