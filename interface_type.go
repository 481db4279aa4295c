package stagehand

import (
	"fmt"
	"strings"
)

// PrimaryType is one of the closed set of primitive types understood by the
// orchestrator's description language
type PrimaryType string

const (
	// IntType indicates an integer interface type
	IntType PrimaryType = "int"
	// FloatType indicates a floating point interface type
	FloatType PrimaryType = "float"
	// BoolType indicates a boolean interface type
	BoolType PrimaryType = "bool"
	// StringType indicates a string interface type
	StringType PrimaryType = "string"
	// PathType indicates a filesystem path interface type
	PathType PrimaryType = "path"
	// MapType indicates a keyed-document interface type
	MapType PrimaryType = "map"
)

// ReservedTokens are keywords of the orchestrator's description language.
// Using them as field names is disallowed.
var ReservedTokens = []string{
	"in", "out", "stage", "volatile", "strict", "true", "split", "filetype",
	"src", "py", "comp", "retain", "mro", "using", "int", "float", "string",
	"map", "bool", "path", "__null__",
}

// IsReservedToken returns true iff name is a keyword of the description language
func IsReservedToken(name string) bool {
	for _, token := range ReservedTokens {
		if name == token {
			return true
		}
	}
	return false
}

// An InterfaceType is the type of one field as it appears in a rendered stage
// interface: a primary type or an array thereof. File-typed fields carry
// their extension in place of a primary type. Nullable records that the field
// was declared optional; it affects record validation, not rendering.
// Unchecked marks a type produced through a manual override annotation, which
// bypasses the type mapper's correctness guarantee.
type InterfaceType struct {
	Primary   PrimaryType
	FileExt   string // non-empty iff this is a file-typed field
	Array     bool
	Nullable  bool
	Unchecked bool
}

// TypeName returns the textual form of this InterfaceType in the description
// language, e.g. "float[]" or "bam"
func (t InterfaceType) TypeName() string {
	base := string(t.Primary)
	if t.FileExt != "" {
		base = t.FileExt
	}
	if t.Array {
		return base + "[]"
	}
	return base
}

// String returns the textual form of this InterfaceType
func (t InterfaceType) String() string {
	return t.TypeName()
}

// ParseInterfaceType parses the textual form of an InterfaceType, e.g.
// "float[]", "int" or "bam". Anything that is not a known primary type is
// treated as a file extension.
func ParseInterfaceType(s string) (InterfaceType, error) {
	var result InterfaceType
	if s == "" {
		return result, fmt.Errorf("cannot parse empty interface type")
	}
	base := s
	if strings.HasSuffix(s, "[]") {
		result.Array = true
		base = s[:len(s)-2]
	}
	switch PrimaryType(base) {
	case IntType, FloatType, BoolType, StringType, PathType, MapType:
		result.Primary = PrimaryType(base)
	default:
		if strings.ContainsAny(base, " \t[]") || base == "" {
			return result, fmt.Errorf("cannot parse interface type from %s", s)
		}
		result.FileExt = base
	}
	return result, nil
}
