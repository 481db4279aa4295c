package adapter

import (
	"fmt"

	"github.com/go-stagehand/stagehand/errors"
)

// A Phase is one of the run modes a stage process can be invoked in. Exactly
// one phase executes per process invocation.
type Phase string

const (
	// DeclarePhase renders the registered stage interfaces; it touches no
	// metadata files
	DeclarePhase Phase = "declare-interface"
	// SplitPhase partitions a stage's work into chunks
	SplitPhase Phase = "split"
	// MainPhase runs a stage's computation: the whole stage for a main-only
	// stage, or one chunk for a split/join stage
	MainPhase Phase = "main"
	// JoinPhase combines chunk outputs into the stage outputs
	JoinPhase Phase = "join"
)

// ParsePhase validates a phase token received on the command line
func ParsePhase(token string) (Phase, error) {
	switch Phase(token) {
	case DeclarePhase, SplitPhase, MainPhase, JoinPhase:
		return Phase(token), nil
	default:
		return "", errors.UnknownPhaseError{Phase: token}
	}
}

// An Invocation is the parsed command line of one run-phase execution: which
// stage to run, which phase, and the orchestrator-resolved paths through
// which records are exchanged.
type Invocation struct {
	StageKey     string
	Phase        Phase
	MetadataPath string
	FilesPath    string
	RunFile      string
}

// ParseInvocation parses the positional arguments the orchestrator passes to
// a stage process: stage key, phase, metadata directory, files directory and
// run-file prefix, in that order
func ParseInvocation(args []string) (*Invocation, error) {
	if len(args) != 5 {
		return nil, fmt.Errorf("Expected 5 arguments (stage, phase, metadata path, files path, run file), got %d", len(args))
	}
	phase, err := ParsePhase(args[1])
	if err != nil {
		return nil, err
	}
	if phase == DeclarePhase {
		return nil, fmt.Errorf("Phase %s takes no metadata arguments", DeclarePhase)
	}
	return &Invocation{
		StageKey:     args[0],
		Phase:        phase,
		MetadataPath: args[2],
		FilesPath:    args[3],
		RunFile:      args[4],
	}, nil
}
