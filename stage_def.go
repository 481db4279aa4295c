package stagehand

import (
	"encoding/json"
	"strings"
)

// A ChunkDef is one unit of parallel work produced by a stage's split phase:
// the chunk's input values plus an optional resource override for running it.
// On the wire the inputs and the resource reservation are flattened into one
// document, with reservation keys carrying a double-underscore prefix.
type ChunkDef struct {
	Inputs   Record
	Resource Resource
}

// MarshalJSON flattens chunk inputs and the resource override into one document
func (c ChunkDef) MarshalJSON() ([]byte, error) {
	merged := make(map[string]interface{}, len(c.Inputs)+3)
	for k, v := range c.Inputs {
		merged[k] = v
	}
	if c.Resource.MemGB != nil {
		merged["__mem_gb"] = *c.Resource.MemGB
	}
	if c.Resource.VMemGB != nil {
		merged["__vmem_gb"] = *c.Resource.VMemGB
	}
	if c.Resource.Threads != nil {
		merged["__threads"] = *c.Resource.Threads
	}
	return json.Marshal(merged)
}

// UnmarshalJSON recovers chunk inputs and the resource override from a
// flattened document
func (c *ChunkDef) UnmarshalJSON(data []byte) error {
	var merged map[string]interface{}
	if err := json.Unmarshal(data, &merged); err != nil {
		return err
	}
	c.Inputs = make(Record)
	c.Resource = Resource{}
	for k, v := range merged {
		if strings.HasPrefix(k, "__") {
			n, ok := v.(float64)
			if !ok {
				continue
			}
			i := int(n)
			switch k {
			case "__mem_gb":
				c.Resource.MemGB = &i
			case "__vmem_gb":
				c.Resource.VMemGB = &i
			case "__threads":
				c.Resource.Threads = &i
			}
			continue
		}
		c.Inputs[k] = v
	}
	return nil
}

// A StageDef is the full product of a stage's split phase: the ordered chunks
// to execute in parallel, plus an optional resource override for the join
// phase. It is written as the stage-definition record, consumed by the
// orchestrator to spawn chunks, and replayed by the join phase to recover
// each chunk's inputs.
type StageDef struct {
	Chunks       []ChunkDef `json:"chunks"`
	JoinResource Resource   `json:"join"`
}

// CreateStageDef produces an empty StageDef with default join reservations
func CreateStageDef() *StageDef {
	return &StageDef{Chunks: []ChunkDef{}}
}

// CreateStageDefWithJoinResource produces an empty StageDef with the given
// join-phase resource override
func CreateStageDefWithJoinResource(joinResource Resource) *StageDef {
	return &StageDef{Chunks: []ChunkDef{}, JoinResource: joinResource}
}

// AddChunk appends a chunk with the given inputs and default reservations
func (s *StageDef) AddChunk(inputs Record) {
	s.Chunks = append(s.Chunks, ChunkDef{Inputs: inputs})
}

// AddChunkWithResource appends a chunk with the given inputs and resource override
func (s *StageDef) AddChunkWithResource(inputs Record, resource Resource) {
	s.Chunks = append(s.Chunks, ChunkDef{Inputs: inputs, Resource: resource})
}

// SetJoinResource sets the join-phase resource override
func (s *StageDef) SetJoinResource(joinResource Resource) {
	s.JoinResource = joinResource
}
