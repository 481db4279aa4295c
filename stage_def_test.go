package stagehand

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStageDefRoundTrip(t *testing.T) {
	def := CreateStageDefWithJoinResource(CreateResource().WithMemGB(6))
	def.AddChunk(Record{"value": 1.0})
	def.AddChunkWithResource(Record{"value": 2.0}, CreateResource().WithMemGB(2).WithThreads(4))
	def.AddChunkWithResource(Record{"value": 3.0}, CreateResource().WithVMemGB(9))

	data, err := json.Marshal(def)
	require.Nil(t, err)
	var read StageDef
	require.Nil(t, json.Unmarshal(data, &read))

	require.Equal(t, len(def.Chunks), len(read.Chunks))
	for i, chunk := range def.Chunks {
		require.Equal(t, chunk.Inputs.Float("value"), read.Chunks[i].Inputs.Float("value"))
	}
	require.Nil(t, read.Chunks[0].Resource.MemGB)
	require.Equal(t, 2, *read.Chunks[1].Resource.MemGB)
	require.Equal(t, 4, *read.Chunks[1].Resource.Threads)
	require.Equal(t, 9, *read.Chunks[2].Resource.VMemGB)
	require.Equal(t, 6, *read.JoinResource.MemGB)
}

func TestChunkDefFlattening(t *testing.T) {
	chunk := ChunkDef{
		Inputs:   Record{"value": 2.0},
		Resource: CreateResource().WithMemGB(3),
	}
	data, err := json.Marshal(chunk)
	require.Nil(t, err)

	var flat map[string]interface{}
	require.Nil(t, json.Unmarshal(data, &flat))
	require.Equal(t, 2.0, flat["value"])
	require.Equal(t, 3.0, flat["__mem_gb"])
	_, present := flat["__threads"]
	require.False(t, present, "unset reservations should not appear on the wire")
}

func TestChunkDefUnflattening(t *testing.T) {
	var chunk ChunkDef
	require.Nil(t, json.Unmarshal([]byte(`{"value": 5, "__threads": 2}`), &chunk))
	require.Equal(t, 5.0, chunk.Inputs.Float("value"))
	require.Equal(t, 2, *chunk.Resource.Threads)
	require.Nil(t, chunk.Resource.MemGB)
	_, present := chunk.Inputs["__threads"]
	require.False(t, present, "reservation keys should not leak into chunk inputs")
}

func TestResourceBuilders(t *testing.T) {
	require.True(t, CreateResource().IsEmpty())
	r := CreateResource().WithMemGB(4).WithThreads(2)
	require.False(t, r.IsEmpty())
	require.Equal(t, 4, *r.MemGB)
	require.Equal(t, 2, *r.Threads)
	require.Nil(t, r.VMemGB)
}

func TestResourceHints(t *testing.T) {
	require.True(t, ResourceHints{}.IsEmpty())
	require.False(t, ResourceHints{Volatile: VolatileStrict}.IsEmpty())
	require.False(t, ResourceHints{Disabled: "self.skip == true"}.IsEmpty())

	memGB := 4
	hints := ResourceHints{MemGB: &memGB, Volatile: VolatileStrict}
	static := hints.StaticResource()
	require.Equal(t, 4, *static.MemGB)
	require.Nil(t, static.Threads)
}

func TestRoverDefaults(t *testing.T) {
	rover := CreateRover("/tmp/files", CreateResource())
	require.Equal(t, 1, rover.MemGB())
	require.Equal(t, 4, rover.VMemGB())
	require.Equal(t, 1, rover.Threads())
	require.Equal(t, "/tmp/files/out.json", rover.MakePath("out.json"))

	rover = CreateRover("/tmp/files", CreateResource().WithMemGB(8).WithThreads(2))
	require.Equal(t, 8, rover.MemGB())
	require.Equal(t, 11, rover.VMemGB())
	require.Equal(t, 2, rover.Threads())
}

func TestRecordAccessors(t *testing.T) {
	r := Record{
		"count":  3.0,
		"name":   "squares",
		"ok":     true,
		"values": []interface{}{1.0, 2.0},
	}
	require.Equal(t, 3, r.Int("count"))
	require.Equal(t, 3.0, r.Float("count"))
	require.Equal(t, "squares", r.String("name"))
	require.True(t, r.Bool("ok"))
	require.Equal(t, []float64{1, 2}, r.Floats("values"))
	require.Nil(t, r.Floats("missing"))

	clone := r.Clone()
	clone["count"] = 4.0
	require.Equal(t, 3, r.Int("count"))
}
