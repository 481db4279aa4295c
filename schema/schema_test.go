package schema

import (
	"testing"

	"github.com/go-stagehand/stagehand"
	"github.com/stretchr/testify/require"
)

func TestSchemaFieldOrder(t *testing.T) {
	s := CreateSchema()
	_, err := s.CreateField("values", stagehand.SequenceKind{Of: stagehand.FloatKind{}})
	require.Nil(t, err)
	_, err = s.CreateField("reverse", stagehand.BoolKind{})
	require.Nil(t, err)
	_, err = s.CreateField("label", stagehand.StringKind{})
	require.Nil(t, err)

	require.Equal(t, 3, s.NumFields())
	require.Equal(t, []string{"values", "reverse", "label"}, s.FieldNames())
	f, err := s.GetField("reverse")
	require.Nil(t, err)
	require.Equal(t, 1, f.Index())
}

func TestSchemaDuplicateField(t *testing.T) {
	s := CreateSchema()
	_, err := s.CreateField("values", stagehand.IntKind{})
	require.Nil(t, err)
	_, err = s.CreateField("values", stagehand.FloatKind{})
	require.NotNil(t, err)
}

func TestSchemaReservedNames(t *testing.T) {
	s := CreateSchema()
	_, err := s.CreateField("split", stagehand.IntKind{})
	require.NotNil(t, err)
	_, err = s.CreateField("using", stagehand.IntKind{})
	require.NotNil(t, err)
	_, err = s.CreateField("__private", stagehand.IntKind{})
	require.NotNil(t, err)
	_, err = s.CreateField("", stagehand.IntKind{})
	require.NotNil(t, err)
}

func TestSchemaEqualityBasic(t *testing.T) {
	s1 := CreateSchema()
	s1.CreateField("col1", stagehand.IntKind{})
	s1.CreateField("col2", stagehand.StringKind{})

	s2 := CreateSchema()
	s2.CreateField("col1", stagehand.IntKind{})
	s2.CreateField("col2", stagehand.StringKind{})

	require.Nil(t, s1.Equals(s2))
}

func TestSchemaEqualityOrder(t *testing.T) {
	s1 := CreateSchema()
	s1.CreateField("col1", stagehand.IntKind{})
	s1.CreateField("col2", stagehand.StringKind{})

	s2 := CreateSchema()
	s2.CreateField("col2", stagehand.StringKind{})
	s2.CreateField("col1", stagehand.IntKind{})

	require.NotNil(t, s1.Equals(s2))
}

func TestSchemaEqualityKinds(t *testing.T) {
	s1 := CreateSchema()
	s1.CreateField("col1", stagehand.SequenceKind{Of: stagehand.FloatKind{}})

	s2 := CreateSchema()
	s2.CreateField("col1", stagehand.SequenceKind{Of: stagehand.IntKind{}})

	require.NotNil(t, s1.Equals(s2))
}

func TestSchemaOverrideField(t *testing.T) {
	s := CreateSchema()
	_, err := s.CreateOverrideField("blob", stagehand.RecordKind{}, stagehand.InterfaceType{Primary: stagehand.MapType})
	require.Nil(t, err)
	f, err := s.GetField("blob")
	require.Nil(t, err)
	override, ok := f.Override()
	require.True(t, ok)
	require.True(t, override.Unchecked)
	require.Equal(t, stagehand.MapType, override.Primary)
}
