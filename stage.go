package stagehand

import "path/filepath"

// StageKind distinguishes the two shapes of stage: one with only a main
// phase, and one with split, chunk-main and join phases
type StageKind string

const (
	// MainOnlyKind indicates a stage with only a main phase
	MainOnlyKind StageKind = "main_only"
	// SplitJoinKind indicates a stage with split, chunk-main and join phases
	SplitJoinKind StageKind = "split_join"
)

// A MainStage is the user-supplied computation for a stage without chunks:
// one main phase consuming the stage inputs and producing the stage outputs.
type MainStage interface {
	// Main consumes the stage-input record and produces the stage-output record
	Main(args Record, rover *Rover) (Record, error)
}

// A SplitJoinStage is the user-supplied computation for a chunked stage. The
// split phase partitions the work into a StageDef, each chunk's main phase
// runs independently (typically in parallel, orchestrator-scheduled), and the
// join phase combines the chunk outputs into the stage outputs.
type SplitJoinStage interface {
	// Split partitions the stage inputs into chunks, optionally attaching
	// per-chunk and join resource overrides
	Split(args Record, rover *Rover) (*StageDef, error)
	// ChunkMain consumes the stage inputs plus one chunk's inputs and
	// produces that chunk's outputs
	ChunkMain(args Record, chunkArgs Record, rover *Rover) (Record, error)
	// Join consumes the stage inputs, the replayed chunk definitions and all
	// chunk outputs, and produces the stage-output record
	Join(args Record, chunkDefs []Record, chunkOuts []Record, rover *Rover) (Record, error)
}

// A Rover carries what one phase invocation is entitled to: the directory for
// the phase's files and the resources actually allocated by the orchestrator.
// User computation should restrict itself to these allocations.
type Rover struct {
	filesPath string
	memGB     int
	vmemGB    int
	threads   int
}

// CreateRover produces a Rover for the given files directory and a fully
// resolved resource reservation
func CreateRover(filesPath string, resource Resource) *Rover {
	rover := &Rover{filesPath: filesPath, memGB: DefaultMemGB, threads: DefaultThreads}
	if resource.MemGB != nil {
		rover.memGB = *resource.MemGB
	}
	if resource.Threads != nil {
		rover.threads = *resource.Threads
	}
	if resource.VMemGB != nil {
		rover.vmemGB = *resource.VMemGB
	} else {
		rover.vmemGB = rover.memGB + VMemHeadroomGB
	}
	return rover
}

// FilesPath returns the directory in which this phase should create its files
func (r *Rover) FilesPath() string {
	return r.filesPath
}

// MakePath produces a path for a named file inside this phase's files directory
func (r *Rover) MakePath(name string) string {
	return filepath.Join(r.filesPath, name)
}

// MemGB returns the memory in GB allocated to this phase
func (r *Rover) MemGB() int {
	return r.memGB
}

// VMemGB returns the virtual memory in GB allocated to this phase
func (r *Rover) VMemGB() int {
	return r.vmemGB
}

// Threads returns the number of threads allocated to this phase
func (r *Rover) Threads() int {
	return r.threads
}
