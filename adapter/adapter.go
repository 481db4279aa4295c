// Package adapter drives one stage invocation through exactly one phase. It
// looks the requested stage up in a Registry, exchanges records with the
// orchestrator through the metadata protocol, negotiates resource
// reservations, and contains user-computation failures so they reach the
// orchestrator as failed invocations rather than bare process crashes.
package adapter

import (
	"fmt"
	"runtime/debug"

	"github.com/go-stagehand/stagehand"
	"github.com/go-stagehand/stagehand/errors"
	"github.com/go-stagehand/stagehand/iface"
	"github.com/go-stagehand/stagehand/logging"
	"github.com/go-stagehand/stagehand/metadata"
)

// An Adapter executes registered stages on behalf of the orchestrator
type Adapter struct {
	registry *Registry
}

// CreateAdapter is a factory for an Adapter over a stage Registry
func CreateAdapter(registry *Registry) *Adapter {
	return &Adapter{registry: registry}
}

// MakeInterface renders the interface text of every registered stage to the
// given path, or to stdout if the path is empty
func (a *Adapter) MakeInterface(path string, overwrite bool) error {
	return iface.WriteInterfaceFile(path, overwrite, a.registry.Descriptors())
}

// Run executes one phase of one stage, as described by a parsed Invocation.
// Any failure, including a panic in user computation, is reported to the
// orchestrator through the errors record before being returned.
func (a *Adapter) Run(inv *Invocation) (err error) {
	spec, lookupErr := a.registry.Lookup(inv.StageKey)
	if lookupErr != nil {
		return lookupErr
	}
	md := metadata.CreateMetadata(spec.StageName, string(inv.Phase), inv.MetadataPath, inv.FilesPath, inv.RunFile)
	defer func() {
		if r := recover(); r != nil {
			md.WriteStackvars(string(debug.Stack()))
			err = errors.InvocationError{
				Stage: spec.StageName,
				Phase: string(inv.Phase),
				Cause: fmt.Errorf("panic: %v", r),
			}
			md.WriteErrors(err.Error())
		}
	}()

	if err := md.UpdateJobInfo(); err != nil {
		md.WriteAssert(err.Error())
		return err
	}
	md.Log(logging.InfoLevel, fmt.Sprintf("Running stage %s phase %s", spec.StageName, inv.Phase))

	if err := a.runPhase(spec, inv.Phase, md); err != nil {
		md.WriteErrors(err.Error())
		return err
	}
	return md.Complete()
}

// runPhase dispatches on the stage kind and the requested phase
func (a *Adapter) runPhase(spec *StageSpec, phase Phase, md *metadata.Metadata) error {
	switch phase {
	case MainPhase:
		return a.runMain(spec, md)
	case SplitPhase:
		if spec.Kind() != stagehand.SplitJoinKind {
			return errors.WrongPhaseError{Stage: spec.StageName, Phase: string(phase)}
		}
		return a.runSplit(spec, md)
	case JoinPhase:
		if spec.Kind() != stagehand.SplitJoinKind {
			return errors.WrongPhaseError{Stage: spec.StageName, Phase: string(phase)}
		}
		return a.runJoin(spec, md)
	default:
		return errors.UnknownPhaseError{Phase: string(phase)}
	}
}

// runMain executes the main phase: the whole stage for a main-only stage, or
// one chunk for a split/join stage. For a chunk, the stage inputs and the
// chunk inputs arrive merged in the same input record and are validated
// against their respective schemas independently.
func (a *Adapter) runMain(spec *StageSpec, md *metadata.Metadata) error {
	args, err := md.ReadRecord(metadata.ArgsRecord, spec.Inputs)
	if err != nil {
		return err
	}
	rover := stagehand.CreateRover(md.FilesPath, md.Resource())

	var outs stagehand.Record
	var userErr error
	if spec.Kind() == stagehand.SplitJoinKind {
		chunkArgs, err := md.ReadRecord(metadata.ArgsRecord, spec.ChunkInputs)
		if err != nil {
			return err
		}
		outs, userErr = spec.SplitJoin.ChunkMain(args, chunkArgs, rover)
	} else {
		outs, userErr = spec.MainOnly.Main(args, rover)
	}
	if userErr != nil {
		return errors.InvocationError{Stage: spec.StageName, Phase: string(MainPhase), Cause: userErr}
	}
	return md.WriteRecord(metadata.OutsRecord, outs)
}

// runSplit executes the split phase and embeds fully resolved reservations in
// the stage-definition record, so the orchestrator never has to apply
// defaults itself
func (a *Adapter) runSplit(spec *StageSpec, md *metadata.Metadata) error {
	args, err := md.ReadRecord(metadata.ArgsRecord, spec.Inputs)
	if err != nil {
		return err
	}
	rover := stagehand.CreateRover(md.FilesPath, md.Resource())

	def, userErr := spec.SplitJoin.Split(args, rover)
	if userErr != nil {
		return errors.InvocationError{Stage: spec.StageName, Phase: string(SplitPhase), Cause: userErr}
	}

	static := spec.Hints.StaticResource()
	for i := range def.Chunks {
		def.Chunks[i].Resource = Resolve(static, def.Chunks[i].Resource)
	}
	def.JoinResource = Resolve(static, def.JoinResource)
	return md.WriteStageDef(def)
}

// runJoin executes the join phase: replays the chunk definitions written by
// split, collects every chunk's outputs, and writes the stage outputs
func (a *Adapter) runJoin(spec *StageSpec, md *metadata.Metadata) error {
	args, err := md.ReadRecord(metadata.ArgsRecord, spec.Inputs)
	if err != nil {
		return err
	}
	chunkDefs, err := md.ReadRecordArray(metadata.ChunkDefsRecord, spec.ChunkInputs)
	if err != nil {
		return err
	}
	chunkOuts, err := md.ReadRecordArray(metadata.ChunkOutsRecord, spec.ChunkOutputs)
	if err != nil {
		return err
	}
	rover := stagehand.CreateRover(md.FilesPath, md.Resource())

	outs, userErr := spec.SplitJoin.Join(args, chunkDefs, chunkOuts, rover)
	if userErr != nil {
		return errors.InvocationError{Stage: spec.StageName, Phase: string(JoinPhase), Cause: userErr}
	}
	return md.WriteRecord(metadata.OutsRecord, outs)
}
