package iface

import (
	"testing"

	"github.com/go-stagehand/stagehand"
	"github.com/go-stagehand/stagehand/errors"
	"github.com/go-stagehand/stagehand/schema"
	"github.com/stretchr/testify/require"
)

func mapKindHelper(t *testing.T, kind stagehand.FieldKind) (stagehand.InterfaceType, error) {
	s := schema.CreateSchema()
	_, err := s.CreateField("f", kind)
	require.Nil(t, err)
	f, err := s.GetField("f")
	require.Nil(t, err)
	return Map(f)
}

func TestMapPrimitives(t *testing.T) {
	cases := []struct {
		kind     stagehand.FieldKind
		expected string
	}{
		{stagehand.IntKind{}, "int"},
		{stagehand.UintKind{}, "int"},
		{stagehand.FloatKind{}, "float"},
		{stagehand.BoolKind{}, "bool"},
		{stagehand.StringKind{}, "string"},
		{stagehand.EnumKind{}, "string"},
		{stagehand.PathKind{}, "path"},
		{stagehand.MapKind{}, "map"},
		{stagehand.RecordKind{Reflected: true}, "map"},
		{stagehand.FileKind{Ext: "bam"}, "bam"},
	}
	for _, c := range cases {
		ty, err := mapKindHelper(t, c.kind)
		require.Nil(t, err, "kind %s", c.kind)
		require.Equal(t, c.expected, ty.TypeName())
		require.False(t, ty.Nullable)
		require.False(t, ty.Unchecked)
	}
}

func TestMapDeterministic(t *testing.T) {
	s := schema.CreateSchema()
	s.CreateField("values", stagehand.SequenceKind{Of: stagehand.FloatKind{}})
	f, err := s.GetField("values")
	require.Nil(t, err)
	first, err := Map(f)
	require.Nil(t, err)
	second, err := Map(f)
	require.Nil(t, err)
	require.Equal(t, first, second)
}

func TestMapOptional(t *testing.T) {
	ty, err := mapKindHelper(t, stagehand.OptionalKind{Of: stagehand.FloatKind{}})
	require.Nil(t, err)
	require.Equal(t, "float", ty.TypeName())
	require.True(t, ty.Nullable)
}

func TestMapCollections(t *testing.T) {
	ty, err := mapKindHelper(t, stagehand.SequenceKind{Of: stagehand.FloatKind{}})
	require.Nil(t, err)
	require.Equal(t, "float[]", ty.TypeName())

	ty, err = mapKindHelper(t, stagehand.SetKind{Of: stagehand.StringKind{}})
	require.Nil(t, err)
	require.Equal(t, "string[]", ty.TypeName())

	ty, err = mapKindHelper(t, stagehand.SequenceKind{Of: stagehand.FileKind{Ext: "txt"}})
	require.Nil(t, err)
	require.Equal(t, "txt[]", ty.TypeName())
}

func TestMapOptionalCollection(t *testing.T) {
	ty, err := mapKindHelper(t, stagehand.OptionalKind{Of: stagehand.SequenceKind{Of: stagehand.IntKind{}}})
	require.Nil(t, err)
	require.Equal(t, "int[]", ty.TypeName())
	require.True(t, ty.Nullable)
}

func TestMapExcessiveWrapping(t *testing.T) {
	// a collection of collections cannot be reduced to array-of-primitive
	_, err := mapKindHelper(t, stagehand.SequenceKind{Of: stagehand.SequenceKind{Of: stagehand.IntKind{}}})
	require.NotNil(t, err)
	// neither can a collection of optionals
	_, err = mapKindHelper(t, stagehand.SequenceKind{Of: stagehand.OptionalKind{Of: stagehand.IntKind{}}})
	require.NotNil(t, err)
	// nor an optional of optionals
	_, err = mapKindHelper(t, stagehand.OptionalKind{Of: stagehand.OptionalKind{Of: stagehand.IntKind{}}})
	require.NotNil(t, err)
}

func TestMapUnreflectedRecord(t *testing.T) {
	_, err := mapKindHelper(t, stagehand.RecordKind{})
	require.NotNil(t, err)
	_, ok := err.(errors.UnmappableFieldError)
	require.True(t, ok)
}

func TestMapOverride(t *testing.T) {
	s := schema.CreateSchema()
	_, err := s.CreateOverrideField("blob", stagehand.RecordKind{}, stagehand.InterfaceType{Primary: stagehand.MapType})
	require.Nil(t, err)
	f, err := s.GetField("blob")
	require.Nil(t, err)
	ty, err := Map(f)
	require.Nil(t, err)
	require.Equal(t, "map", ty.TypeName())
	require.True(t, ty.Unchecked)
}

func TestMapOverrideRestricted(t *testing.T) {
	// only string, map, or arrays thereof may be declared manually
	s := schema.CreateSchema()
	_, err := s.CreateOverrideField("blob", stagehand.RecordKind{}, stagehand.InterfaceType{Primary: stagehand.IntType})
	require.Nil(t, err)
	f, err := s.GetField("blob")
	require.Nil(t, err)
	_, err = Map(f)
	require.NotNil(t, err)
}
