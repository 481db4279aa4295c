package iface

import (
	"github.com/go-stagehand/stagehand"
	"github.com/go-stagehand/stagehand/errors"
	"github.com/hashicorp/go-multierror"
)

// A FieldSig is one field of a compiled interface descriptor: its name, its
// reduced InterfaceType, and whether it is retained by the orchestrator.
type FieldSig struct {
	Name     string
	Type     stagehand.InterfaceType
	Retained bool
}

// A Descriptor is the declarative signature of one stage, ready to be
// rendered in the orchestrator's description language. Field order follows
// schema declaration order. Presence of chunk fields implies the stage has
// split and join phases.
type Descriptor struct {
	StageName    string
	AdapterName  string
	StageKey     string
	Inputs       []FieldSig
	Outputs      []FieldSig
	ChunkInputs  []FieldSig
	ChunkOutputs []FieldSig
	HasChunks    bool
	Hints        stagehand.ResourceHints
}

// CompileConf configures one compilation of a stage interface
type CompileConf struct {
	StageName    string           // Name of the stage in the pipeline namespace, e.g. SUM_SQUARES
	AdapterName  string           // Name of the executable hosting the stage
	StageKey     string           // Key selecting the stage within the executable
	Inputs       stagehand.Schema // Stage-input schema
	Outputs      stagehand.Schema // Stage-output schema
	ChunkInputs  stagehand.Schema // Chunk-input schema; requires ChunkOutputs
	ChunkOutputs stagehand.Schema // Chunk-output schema; requires ChunkInputs
	Hints        stagehand.ResourceHints
}

// Compile assembles a stage's schemas and static resource hints into one
// interface Descriptor, reducing every field through the type mapper.
// Malformed stages (chunk schemas on only one side, field conflicts between
// stage and chunk schemas) and unmappable fields are reported together.
func Compile(conf *CompileConf) (*Descriptor, error) {
	if conf.StageName == "" {
		return nil, errors.MalformedStageError{Stage: conf.StageName, Reason: "stage name must not be empty"}
	}
	if (conf.ChunkInputs == nil) != (conf.ChunkOutputs == nil) {
		return nil, errors.MalformedStageError{
			Stage:  conf.StageName,
			Reason: "chunk-input and chunk-output schemas must be declared together",
		}
	}

	var merr *multierror.Error
	desc := &Descriptor{
		StageName:   conf.StageName,
		AdapterName: conf.AdapterName,
		StageKey:    conf.StageKey,
		HasChunks:   conf.ChunkInputs != nil,
		Hints:       conf.Hints,
	}
	desc.Inputs = compileSchema(conf.Inputs, &merr)
	desc.Outputs = compileSchema(conf.Outputs, &merr)
	if desc.HasChunks {
		desc.ChunkInputs = compileSchema(conf.ChunkInputs, &merr)
		desc.ChunkOutputs = compileSchema(conf.ChunkOutputs, &merr)
		verifyChunkFields(conf.StageName, desc, &merr)
	}
	if err := merr.ErrorOrNil(); err != nil {
		return nil, err
	}
	return desc, nil
}

// compileSchema maps every field of a schema, collecting failures
func compileSchema(s stagehand.Schema, merr **multierror.Error) []FieldSig {
	sigs := []FieldSig{}
	if s == nil {
		return sigs
	}
	s.ForEachField(func(f stagehand.Field) error {
		ty, err := Map(f)
		if err != nil {
			*merr = multierror.Append(*merr, err)
			return nil
		}
		sigs = append(sigs, FieldSig{Name: f.Name(), Type: ty, Retained: f.Retained()})
		return nil
	})
	return sigs
}

// verifyChunkFields enforces the overlap rules between stage and chunk
// schemas: a chunk input may not repeat a stage input name, and a chunk
// output repeating a stage output name must carry an identical type.
func verifyChunkFields(stageName string, desc *Descriptor, merr **multierror.Error) {
	for _, chunkIn := range desc.ChunkInputs {
		for _, stageIn := range desc.Inputs {
			if chunkIn.Name == stageIn.Name {
				*merr = multierror.Append(*merr, errors.MalformedStageError{
					Stage:  stageName,
					Reason: "field " + chunkIn.Name + " appears in both stage and chunk inputs",
				})
			}
		}
	}
	for _, chunkOut := range desc.ChunkOutputs {
		for _, stageOut := range desc.Outputs {
			if chunkOut.Name == stageOut.Name && chunkOut.Type.TypeName() != stageOut.Type.TypeName() {
				*merr = multierror.Append(*merr, errors.MalformedStageError{
					Stage: stageName,
					Reason: "field " + chunkOut.Name + " has type " + stageOut.Type.TypeName() +
						" in stage outputs but type " + chunkOut.Type.TypeName() + " in chunk outputs",
				})
			}
		}
	}
}

// renderedChunkOutputs elides chunk outputs which repeat a stage output, as
// the orchestrator already knows about those fields from the stage block
func (d *Descriptor) renderedChunkOutputs() []FieldSig {
	result := []FieldSig{}
	for _, chunkOut := range d.ChunkOutputs {
		repeated := false
		for _, stageOut := range d.Outputs {
			if chunkOut.Name == stageOut.Name {
				repeated = true
				break
			}
		}
		if !repeated {
			result = append(result, chunkOut)
		}
	}
	return result
}
