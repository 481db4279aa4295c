package testing

import (
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/go-stagehand/stagehand"
	"github.com/go-stagehand/stagehand/adapter"
	"github.com/go-stagehand/stagehand/metadata"
	"golang.org/x/sync/semaphore"
)

// phaseDirs lays out the metadata and files directories for one phase under a
// scratch directory, mirroring what the orchestrator prepares before spawning
// a phase process
func phaseDirs(scratch string, phase string, chunk int) (string, string, error) {
	name := phase
	if chunk >= 0 {
		name = fmt.Sprintf("%s%d", phase, chunk)
	}
	metadataPath := filepath.Join(scratch, name)
	filesPath := filepath.Join(metadataPath, "files")
	if err := os.MkdirAll(filesPath, 0755); err != nil {
		return "", "", err
	}
	return metadataPath, filesPath, nil
}

// writeJobInfo seeds the job-metadata record a phase expects to find, using
// the given fully resolved reservation
func writeJobInfo(metadataPath string, resource stagehand.Resource) error {
	jobInfo := map[string]interface{}{
		"threads": *resource.Threads,
		"memGB":   *resource.MemGB,
		"vmemGB":  *resource.VMemGB,
		"version": map[string]string{"runtime": "local", "pipelines": "local"},
	}
	return writeRecord(metadataPath, metadata.JobInfoRecord, jobInfo)
}

func writeRecord(metadataPath string, name string, value interface{}) error {
	data, err := json.MarshalIndent(value, "", "    ")
	if err != nil {
		return err
	}
	return ioutil.WriteFile(filepath.Join(metadataPath, "_"+name), data, 0644)
}

// runPhase executes one phase in-process through the same Adapter.Run path a
// real invocation takes
func runPhase(a *adapter.Adapter, stageKey string, phase adapter.Phase, metadataPath string, filesPath string) error {
	return a.Run(&adapter.Invocation{
		StageKey:     stageKey,
		Phase:        phase,
		MetadataPath: metadataPath,
		FilesPath:    filesPath,
		RunFile:      filepath.Join(metadataPath, "run"),
	})
}

// LocalRunMain runs a main-only stage in-process under a scratch directory
// and returns its output record
func LocalRunMain(ctx context.Context, a *adapter.Adapter, spec *adapter.StageSpec, scratch string, args stagehand.Record) (result stagehand.Record, err error) {
	// handle panics
	defer func() {
		if r := recover(); r != nil {
			if anErr, ok := r.(error); ok {
				err = anErr
			} else {
				panic(r)
			}
		}
	}()

	stageKey := adapter.StageKey(spec.StageName)
	resource := adapter.Resolve(spec.Hints.StaticResource(), stagehand.CreateResource())

	metadataPath, filesPath, err := phaseDirs(scratch, "main", -1)
	if err != nil {
		return nil, err
	}
	if err := writeJobInfo(metadataPath, resource); err != nil {
		return nil, err
	}
	if err := writeRecord(metadataPath, metadata.ArgsRecord, args); err != nil {
		return nil, err
	}
	if err := runPhase(a, stageKey, adapter.MainPhase, metadataPath, filesPath); err != nil {
		return nil, err
	}
	md := metadata.CreateMetadata(spec.StageName, "main", metadataPath, filesPath, "")
	return md.ReadRecord(metadata.OutsRecord, spec.Outputs)
}

// LocalRunStage runs a split/join stage in-process under a scratch directory:
// split first, then every chunk's main phase with bounded parallelism
// honoring each chunk's thread reservation, then join. It returns the stage's
// output record. Each phase goes through the same Adapter.Run path a real
// orchestrator-spawned invocation takes.
func LocalRunStage(ctx context.Context, a *adapter.Adapter, spec *adapter.StageSpec, scratch string, args stagehand.Record, maxThreads int64) (result stagehand.Record, err error) {
	// handle panics
	defer func() {
		if r := recover(); r != nil {
			if anErr, ok := r.(error); ok {
				err = anErr
			} else {
				panic(r)
			}
		}
	}()

	stageKey := adapter.StageKey(spec.StageName)
	static := spec.Hints.StaticResource()

	// split
	splitMeta, splitFiles, err := phaseDirs(scratch, "split", -1)
	if err != nil {
		return nil, err
	}
	if err := writeJobInfo(splitMeta, adapter.Resolve(static, stagehand.CreateResource())); err != nil {
		return nil, err
	}
	if err := writeRecord(splitMeta, metadata.ArgsRecord, args); err != nil {
		return nil, err
	}
	if err := runPhase(a, stageKey, adapter.SplitPhase, splitMeta, splitFiles); err != nil {
		return nil, err
	}
	splitOut := metadata.CreateMetadata(spec.StageName, "split", splitMeta, splitFiles, "")
	def, err := splitOut.ReadStageDef()
	if err != nil {
		return nil, err
	}

	// chunk mains, bounded by a thread budget the way a scheduler enforces
	// reservations
	sem := semaphore.NewWeighted(maxThreads)
	chunkErrs := make([]error, len(def.Chunks))
	chunkOuts := make([]stagehand.Record, len(def.Chunks))
	for i, chunk := range def.Chunks {
		threads := int64(stagehand.DefaultThreads)
		if chunk.Resource.Threads != nil && *chunk.Resource.Threads > 0 {
			threads = int64(*chunk.Resource.Threads)
		}
		if threads > maxThreads {
			threads = maxThreads
		}
		if err := sem.Acquire(ctx, threads); err != nil {
			return nil, err
		}
		go func(i int, chunk stagehand.ChunkDef, threads int64) {
			defer sem.Release(threads)
			chunkOuts[i], chunkErrs[i] = localRunChunk(a, spec, stageKey, scratch, args, chunk, i)
		}(i, chunk, threads)
	}
	// wait for every chunk to finish
	if err := sem.Acquire(ctx, maxThreads); err != nil {
		return nil, err
	}
	sem.Release(maxThreads)
	for _, chunkErr := range chunkErrs {
		if chunkErr != nil {
			return nil, chunkErr
		}
	}

	// join
	joinMeta, joinFiles, err := phaseDirs(scratch, "join", -1)
	if err != nil {
		return nil, err
	}
	if err := writeJobInfo(joinMeta, def.JoinResource); err != nil {
		return nil, err
	}
	if err := writeRecord(joinMeta, metadata.ArgsRecord, args); err != nil {
		return nil, err
	}
	if err := writeRecord(joinMeta, metadata.ChunkDefsRecord, def.Chunks); err != nil {
		return nil, err
	}
	if err := writeRecord(joinMeta, metadata.ChunkOutsRecord, chunkOuts); err != nil {
		return nil, err
	}
	if err := runPhase(a, stageKey, adapter.JoinPhase, joinMeta, joinFiles); err != nil {
		return nil, err
	}
	joinOut := metadata.CreateMetadata(spec.StageName, "join", joinMeta, joinFiles, "")
	return joinOut.ReadRecord(metadata.OutsRecord, spec.Outputs)
}

// localRunChunk runs one chunk's main phase in its own scratch subdirectory,
// with the stage inputs and the chunk inputs merged into one input record
func localRunChunk(a *adapter.Adapter, spec *adapter.StageSpec, stageKey string, scratch string, args stagehand.Record, chunk stagehand.ChunkDef, index int) (stagehand.Record, error) {
	metadataPath, filesPath, err := phaseDirs(scratch, "chnk", index)
	if err != nil {
		return nil, err
	}
	if err := writeJobInfo(metadataPath, chunk.Resource); err != nil {
		return nil, err
	}
	merged := args.Clone()
	for k, v := range chunk.Inputs {
		merged[k] = v
	}
	if err := writeRecord(metadataPath, metadata.ArgsRecord, merged); err != nil {
		return nil, err
	}
	if err := runPhase(a, stageKey, adapter.MainPhase, metadataPath, filesPath); err != nil {
		return nil, err
	}
	md := metadata.CreateMetadata(spec.StageName, "main", metadataPath, filesPath, "")
	return md.ReadRecord(metadata.OutsRecord, spec.ChunkOutputs)
}
