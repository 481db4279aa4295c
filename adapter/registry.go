package adapter

import (
	"sort"

	"github.com/go-stagehand/stagehand"
	"github.com/go-stagehand/stagehand/errors"
	"github.com/go-stagehand/stagehand/iface"
)

// A StageSpec binds one stage's declarative interface to its implementation:
// the schemas describing its records, the static resource hints rendered into
// its using block, and exactly one of a main-only or a split/join
// implementation.
type StageSpec struct {
	// StageName is the stage's name in the pipeline namespace, e.g. SUM_SQUARES
	StageName string
	// Inputs is the stage-input schema
	Inputs stagehand.Schema
	// Outputs is the stage-output schema
	Outputs stagehand.Schema
	// ChunkInputs is the chunk-input schema; set together with ChunkOutputs
	// and a SplitJoin implementation
	ChunkInputs stagehand.Schema
	// ChunkOutputs is the chunk-output schema
	ChunkOutputs stagehand.Schema
	// Hints are the statically declared resource defaults for this stage
	Hints stagehand.ResourceHints
	// MainOnly is the implementation of a stage without chunks
	MainOnly stagehand.MainStage
	// SplitJoin is the implementation of a chunked stage
	SplitJoin stagehand.SplitJoinStage
}

// Kind returns the shape of this stage
func (s *StageSpec) Kind() stagehand.StageKind {
	if s.SplitJoin != nil {
		return stagehand.SplitJoinKind
	}
	return stagehand.MainOnlyKind
}

// A Registry holds the stages hosted by one adapter executable, each under a
// key derived from its stage name. Registration compiles every stage's
// interface eagerly, so schema errors surface when the adapter starts rather
// than mid-pipeline.
type Registry struct {
	adapterName string
	keys        []string
	stages      map[string]*registeredStage
}

type registeredStage struct {
	spec *StageSpec
	desc *iface.Descriptor
}

// CreateRegistry is a factory for a Registry, given the name of the adapter
// executable as it should appear in src declarations
func CreateRegistry(adapterName string) *Registry {
	return &Registry{
		adapterName: adapterName,
		stages:      make(map[string]*registeredStage),
	}
}

// AdapterName returns the name of the adapter executable
func (r *Registry) AdapterName() string {
	return r.adapterName
}

// Register adds a stage to this Registry, compiling its interface descriptor.
// A stage whose schemas cannot compile, which declares neither or both
// implementations, or whose key collides with an earlier registration is
// rejected.
func (r *Registry) Register(spec *StageSpec) error {
	if (spec.MainOnly == nil) == (spec.SplitJoin == nil) {
		return errors.MalformedStageError{
			Stage:  spec.StageName,
			Reason: "exactly one of a main-only or a split/join implementation must be set",
		}
	}
	if spec.SplitJoin != nil && (spec.ChunkInputs == nil || spec.ChunkOutputs == nil) {
		return errors.MalformedStageError{
			Stage:  spec.StageName,
			Reason: "a split/join stage must declare chunk-input and chunk-output schemas",
		}
	}
	if spec.MainOnly != nil && (spec.ChunkInputs != nil || spec.ChunkOutputs != nil) {
		return errors.MalformedStageError{
			Stage:  spec.StageName,
			Reason: "a main-only stage must not declare chunk schemas",
		}
	}
	key := StageKey(spec.StageName)
	if key == "" {
		return errors.MalformedStageError{Stage: spec.StageName, Reason: "stage name must not be empty"}
	}
	if _, present := r.stages[key]; present {
		return errors.MalformedStageError{
			Stage:  spec.StageName,
			Reason: "stage key " + key + " is already registered",
		}
	}
	desc, err := iface.Compile(&iface.CompileConf{
		StageName:    spec.StageName,
		AdapterName:  r.adapterName,
		StageKey:     key,
		Inputs:       spec.Inputs,
		Outputs:      spec.Outputs,
		ChunkInputs:  spec.ChunkInputs,
		ChunkOutputs: spec.ChunkOutputs,
		Hints:        spec.Hints,
	})
	if err != nil {
		return err
	}
	r.keys = append(r.keys, key)
	r.stages[key] = &registeredStage{spec: spec, desc: desc}
	return nil
}

// Lookup returns the stage registered under a key
func (r *Registry) Lookup(key string) (*StageSpec, error) {
	registered, present := r.stages[key]
	if !present {
		return nil, errors.UnknownStageError{Name: key}
	}
	return registered.spec, nil
}

// Descriptor returns the compiled interface descriptor of the stage
// registered under a key
func (r *Registry) Descriptor(key string) (*iface.Descriptor, error) {
	registered, present := r.stages[key]
	if !present {
		return nil, errors.UnknownStageError{Name: key}
	}
	return registered.desc, nil
}

// Descriptors returns every registered stage's descriptor in registration order
func (r *Registry) Descriptors() []*iface.Descriptor {
	descs := make([]*iface.Descriptor, 0, len(r.stages))
	for _, key := range r.keys {
		descs = append(descs, r.stages[key].desc)
	}
	return descs
}

// Keys returns every registered stage key, sorted
func (r *Registry) Keys() []string {
	keys := make([]string, len(r.keys))
	copy(keys, r.keys)
	sort.Strings(keys)
	return keys
}

// StageKey derives the registry key for a stage name: the lowercased name, so
// the pipeline-visible SUM_SQUARES is selected as sum_squares on the command
// line
func StageKey(stageName string) string {
	key := make([]byte, 0, len(stageName))
	for i := 0; i < len(stageName); i++ {
		c := stageName[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		key = append(key, c)
	}
	return string(key)
}
