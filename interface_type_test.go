package stagehand

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInterfaceTypeNames(t *testing.T) {
	require.Equal(t, "float", InterfaceType{Primary: FloatType}.TypeName())
	require.Equal(t, "float[]", InterfaceType{Primary: FloatType, Array: true}.TypeName())
	require.Equal(t, "json", InterfaceType{Primary: PathType, FileExt: "json"}.TypeName())
	require.Equal(t, "json.lz4[]", InterfaceType{Primary: PathType, FileExt: "json.lz4", Array: true}.TypeName())
}

func TestParseInterfaceType(t *testing.T) {
	ty, err := ParseInterfaceType("int")
	require.Nil(t, err)
	require.Equal(t, IntType, ty.Primary)
	require.False(t, ty.Array)

	ty, err = ParseInterfaceType("string[]")
	require.Nil(t, err)
	require.Equal(t, StringType, ty.Primary)
	require.True(t, ty.Array)

	// anything outside the primary set reads as a file extension
	ty, err = ParseInterfaceType("bam")
	require.Nil(t, err)
	require.Equal(t, "bam", ty.FileExt)

	_, err = ParseInterfaceType("bad type")
	require.NotNil(t, err)
	_, err = ParseInterfaceType("")
	require.NotNil(t, err)
}

func TestIsReservedToken(t *testing.T) {
	require.True(t, IsReservedToken("split"))
	require.True(t, IsReservedToken("filetype"))
	require.True(t, IsReservedToken("int"))
	require.False(t, IsReservedToken("values"))
}
