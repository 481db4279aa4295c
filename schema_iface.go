package stagehand

// Schema is an ordered collection of named Fields describing one data shape
// exchanged between a stage and the orchestrator. Declaration order is
// preserved and determines the order of fields in the rendered interface.
// Schemas are constructed once, at registration time, and are immutable
// thereafter from the perspective of the runtime.
type Schema interface {
	Equals(otherSchema Schema) error
	NumFields() int
	HasField(name string) bool
	GetField(name string) (field Field, err error)
	CreateField(name string, kind FieldKind) (newSchema Schema, err error)
	CreateRetainedField(name string, kind FieldKind) (newSchema Schema, err error)
	CreateOverrideField(name string, kind FieldKind, override InterfaceType) (newSchema Schema, err error)
	Fields() []Field // Fields returns the Fields of this Schema in declaration order
	FieldNames() []string
	ForEachField(fn func(field Field) error) error
}
