package stagehand

import "fmt"

// A FieldKind is the declared kind of a Field within a Schema, prior to being
// reduced to an InterfaceType by the type mapper. Kinds mirror the host
// language's data shapes rather than the orchestrator's type system.
type FieldKind interface {
	String() string // String returns a human-readable representation of this FieldKind
}

// IntKind is a FieldKind for signed fixed-width integers
type IntKind struct{}

// String returns a human-readable representation of this IntKind
func (k IntKind) String() string { return "int" }

// UintKind is a FieldKind for unsigned fixed-width integers
type UintKind struct{}

// String returns a human-readable representation of this UintKind
func (k UintKind) String() string { return "uint" }

// FloatKind is a FieldKind for floating point numbers
type FloatKind struct{}

// String returns a human-readable representation of this FloatKind
func (k FloatKind) String() string { return "float" }

// BoolKind is a FieldKind for booleans
type BoolKind struct{}

// String returns a human-readable representation of this BoolKind
func (k BoolKind) String() string { return "bool" }

// StringKind is a FieldKind for text and single characters
type StringKind struct{}

// String returns a human-readable representation of this StringKind
func (k StringKind) String() string { return "string" }

// EnumKind is a FieldKind for enumerated labels without payloads. Labels
// serialize as their names, so they reduce to strings in the interface.
type EnumKind struct{}

// String returns a human-readable representation of this EnumKind
func (k EnumKind) String() string { return "enum" }

// PathKind is a FieldKind for filesystem paths with no known extension
type PathKind struct{}

// String returns a human-readable representation of this PathKind
func (k PathKind) String() string { return "path" }

// FileKind is a FieldKind for opaque blobs stored in files with a known
// extension, e.g. FileKind{Ext: "json"}
type FileKind struct {
	Ext string
}

// String returns a human-readable representation of this FileKind
func (k FileKind) String() string { return fmt.Sprintf("file(%s)", k.Ext) }

// MapKind is a FieldKind for mappings with arbitrary keys
type MapKind struct{}

// String returns a human-readable representation of this MapKind
func (k MapKind) String() string { return "map" }

// RecordKind is a FieldKind for nested records. Reflected indicates whether
// the record's shape is known to serialize as a keyed document; bare records
// without reflection cannot be mapped and require a manual override.
type RecordKind struct {
	Reflected bool
}

// String returns a human-readable representation of this RecordKind
func (k RecordKind) String() string { return "record" }

// OptionalKind is a FieldKind wrapping another kind, marking its value as
// permitted to be absent from a metadata record
type OptionalKind struct {
	Of FieldKind
}

// String returns a human-readable representation of this OptionalKind
func (k OptionalKind) String() string { return fmt.Sprintf("optional<%s>", k.Of) }

// SequenceKind is a FieldKind wrapping another kind, representing an ordered
// collection of that kind
type SequenceKind struct {
	Of FieldKind
}

// String returns a human-readable representation of this SequenceKind
func (k SequenceKind) String() string { return fmt.Sprintf("sequence<%s>", k.Of) }

// SetKind is a FieldKind wrapping another kind, representing an unordered
// collection of that kind. Sets serialize identically to sequences.
type SetKind struct {
	Of FieldKind
}

// String returns a human-readable representation of this SetKind
func (k SetKind) String() string { return fmt.Sprintf("set<%s>", k.Of) }

// IsOptionalKind returns true iff the given FieldKind permits an absent value
func IsOptionalKind(kind FieldKind) bool {
	_, ok := kind.(OptionalKind)
	return ok
}
