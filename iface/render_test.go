package iface

import (
	"strings"
	"testing"

	"github.com/go-stagehand/stagehand"
	"github.com/go-stagehand/stagehand/schema"
	"github.com/stretchr/testify/require"
)

func TestRenderSplitStage(t *testing.T) {
	conf := sumSquaresConf(t)
	chunkOutputs := schema.CreateSchema()
	chunkOutputs.CreateField("value", stagehand.FloatKind{})
	conf.ChunkOutputs = chunkOutputs
	chunkInputs := schema.CreateSchema()
	chunkInputs.CreateField("value", stagehand.FloatKind{})
	conf.ChunkInputs = chunkInputs
	desc, err := Compile(conf)
	require.Nil(t, err)

	expected := `stage SUM_SQUARES(
    in  float[] values,
    out float   sum,
    src comp    "my_adapter sum_squares",
) split (
    in  float   value,
    out float   value,
)
`
	require.Equal(t, expected, desc.Render())
}

func TestRenderMainOnlyStage(t *testing.T) {
	conf := sumSquaresConf(t)
	conf.ChunkInputs = nil
	conf.ChunkOutputs = nil
	desc, err := Compile(conf)
	require.Nil(t, err)

	expected := `stage SUM_SQUARES(
    in  float[] values,
    out float   sum,
    src comp    "my_adapter sum_squares",
)
`
	require.Equal(t, expected, desc.Render())
}

func TestRenderUsingBlock(t *testing.T) {
	conf := sumSquaresConf(t)
	conf.ChunkInputs = nil
	conf.ChunkOutputs = nil
	conf.Hints = stagehand.ResourceHints{}
	memGB := 1
	threads := 2
	conf.Hints.MemGB = &memGB
	conf.Hints.Threads = &threads
	desc, err := Compile(conf)
	require.Nil(t, err)

	expected := `stage SUM_SQUARES(
    in  float[] values,
    out float   sum,
    src comp    "my_adapter sum_squares",
) using (
    mem_gb  = 1,
    threads = 2,
)
`
	require.Equal(t, expected, desc.Render())
}

func TestRenderVolatileAndDisabled(t *testing.T) {
	conf := sumSquaresConf(t)
	conf.ChunkInputs = nil
	conf.ChunkOutputs = nil
	conf.Hints = stagehand.ResourceHints{
		Volatile: stagehand.VolatileStrict,
		Disabled: "self.no_secondary_analysis",
	}
	desc, err := Compile(conf)
	require.Nil(t, err)

	rendered := desc.Render()
	require.True(t, strings.Contains(rendered, "volatile = strict,"))
	require.True(t, strings.Contains(rendered, "disabled = self.no_secondary_analysis,"))
}

func TestRenderRetain(t *testing.T) {
	inputs := schema.CreateSchema()
	inputs.CreateField("values", stagehand.SequenceKind{Of: stagehand.FloatKind{}})
	outputs := schema.CreateSchema()
	outputs.CreateRetainedField("sum", stagehand.FloatKind{})
	memGB := 1
	threads := 2
	desc, err := Compile(&CompileConf{
		StageName:   "SUM_SQUARES",
		AdapterName: "my_adapter",
		StageKey:    "sum_squares",
		Inputs:      inputs,
		Outputs:     outputs,
		Hints:       stagehand.ResourceHints{MemGB: &memGB, Threads: &threads},
	})
	require.Nil(t, err)

	expected := `stage SUM_SQUARES(
    in  float[] values,
    out float   sum,
    src comp    "my_adapter sum_squares",
) using (
    mem_gb  = 1,
    threads = 2,
) retain (
    sum,
)
`
	require.Equal(t, expected, desc.Render())
}

func TestRenderIdempotent(t *testing.T) {
	desc, err := Compile(sumSquaresConf(t))
	require.Nil(t, err)
	first := desc.Render()
	second := desc.Render()
	require.Equal(t, first, second)
	require.Equal(t, Fingerprint(first), Fingerprint(second))
}

func TestRenderAllWithFiletypePreamble(t *testing.T) {
	inputs := schema.CreateSchema()
	inputs.CreateField("summary", stagehand.FileKind{Ext: "json"})
	inputs.CreateField("contigs", stagehand.FileKind{Ext: "bam"})
	outputs := schema.CreateSchema()
	outputs.CreateField("report", stagehand.FileKind{Ext: "json"})
	desc, err := Compile(&CompileConf{
		StageName:   "SUMMARIZE",
		AdapterName: "my_adapter",
		StageKey:    "summarize",
		Inputs:      inputs,
		Outputs:     outputs,
	})
	require.Nil(t, err)

	rendered := RenderAll([]*Descriptor{desc})
	require.True(t, strings.HasPrefix(rendered, Header))
	require.True(t, strings.Contains(rendered, "\nfiletype bam;\nfiletype json;\n"))
	require.True(t, strings.Contains(rendered, "stage SUMMARIZE("))
}

func TestRenderUncheckedFlag(t *testing.T) {
	inputs := schema.CreateSchema()
	inputs.CreateOverrideField("extra", stagehand.RecordKind{}, stagehand.InterfaceType{Primary: stagehand.MapType})
	outputs := schema.CreateSchema()
	outputs.CreateField("sum", stagehand.FloatKind{})
	desc, err := Compile(&CompileConf{
		StageName:   "WITH_OVERRIDE",
		AdapterName: "my_adapter",
		StageKey:    "with_override",
		Inputs:      inputs,
		Outputs:     outputs,
	})
	require.Nil(t, err)
	require.True(t, strings.Contains(desc.Render(), "extra, # unchecked"))
}

func TestWriteInterfaceFile(t *testing.T) {
	desc, err := Compile(sumSquaresConf(t))
	require.Nil(t, err)

	dir := t.TempDir()
	path := dir + "/stages.mro"
	require.Nil(t, WriteInterfaceFile(path, false, []*Descriptor{desc}))
	// refuses to clobber without overwrite
	require.NotNil(t, WriteInterfaceFile(path, false, []*Descriptor{desc}))
	require.Nil(t, WriteInterfaceFile(path, true, []*Descriptor{desc}))
	// refuses directories
	require.NotNil(t, WriteInterfaceFile(dir, true, []*Descriptor{desc}))
}
