package schema

import (
	"fmt"
	"strings"

	"github.com/go-stagehand/stagehand"
)

// field is one named, typed slot within a schema
type field struct {
	name     string
	kind     stagehand.FieldKind
	idx      int
	retained bool
	override *stagehand.InterfaceType
}

// Name returns the name of this Field, unique within its Schema
func (f *field) Name() string {
	return f.name
}

// Kind returns the declared FieldKind of this Field
func (f *field) Kind() stagehand.FieldKind {
	return f.kind
}

// Index returns the declaration position of this Field within its Schema
func (f *field) Index() int {
	return f.idx
}

// Retained returns true iff this output Field is marked for retention
func (f *field) Retained() bool {
	return f.retained
}

// Override returns the manual InterfaceType annotation for this Field, if any
func (f *field) Override() (stagehand.InterfaceType, bool) {
	if f.override == nil {
		return stagehand.InterfaceType{}, false
	}
	return *f.override, true
}

// Schema is an ordered collection of named fields. Fields cannot be removed
// or reordered once declared; declaration order is semantically meaningful.
type schema struct {
	fields []*field
	byName map[string]*field
}

// CreateSchema is a factory for Schemas
func CreateSchema() stagehand.Schema {
	return &schema{
		fields: []*field{},
		byName: make(map[string]*field),
	}
}

// Equals returns nil iff this and another Schema are equivalent
func (s *schema) Equals(otherSchema stagehand.Schema) error {
	if s.NumFields() != otherSchema.NumFields() {
		return fmt.Errorf("Schemas have unequal numbers of fields")
	}
	return s.ForEachField(func(f stagehand.Field) error {
		other, err := otherSchema.GetField(f.Name())
		if err != nil {
			return err
		}
		if f.Index() != other.Index() {
			return fmt.Errorf("Field %s indices do not match", f.Name())
		}
		if f.Kind().String() != other.Kind().String() {
			return fmt.Errorf("Field %s kinds do not match", f.Name())
		}
		return nil
	})
}

// NumFields returns the number of fields in this Schema
func (s *schema) NumFields() int {
	return len(s.fields)
}

// HasField returns true iff this schema contains a field with the given name
func (s *schema) HasField(name string) bool {
	_, ok := s.byName[name]
	return ok
}

// GetField returns the named field, or an error if it does not exist
func (s *schema) GetField(name string) (stagehand.Field, error) {
	f, ok := s.byName[name]
	if !ok {
		return nil, fmt.Errorf("Schema does not contain field with name %s", name)
	}
	return f, nil
}

// verifyName rejects names which are empty, reserved in the description
// language, or already declared. The double-underscore prefix is reserved
// for resource keys in flattened chunk definitions.
func (s *schema) verifyName(name string) error {
	if name == "" {
		return fmt.Errorf("Field names must not be empty")
	}
	if stagehand.IsReservedToken(name) {
		return fmt.Errorf("Reserved token %s cannot be used as a field name", name)
	}
	if strings.HasPrefix(name, "__") {
		return fmt.Errorf("Field name %s must not begin with a double underscore", name)
	}
	if s.HasField(name) {
		return fmt.Errorf("Schema already contains field with name %s", name)
	}
	return nil
}

func (s *schema) createField(name string, kind stagehand.FieldKind, retained bool, override *stagehand.InterfaceType) (stagehand.Schema, error) {
	if err := s.verifyName(name); err != nil {
		return nil, err
	}
	f := &field{name: name, kind: kind, idx: len(s.fields), retained: retained, override: override}
	s.fields = append(s.fields, f)
	s.byName[name] = f
	return s, nil
}

// CreateField declares a new field within the Schema
func (s *schema) CreateField(name string, kind stagehand.FieldKind) (stagehand.Schema, error) {
	return s.createField(name, kind, false, nil)
}

// CreateRetainedField declares a new field marked for retention by the orchestrator
func (s *schema) CreateRetainedField(name string, kind stagehand.FieldKind) (stagehand.Schema, error) {
	return s.createField(name, kind, true, nil)
}

// CreateOverrideField declares a new field carrying a manual InterfaceType
// annotation. The annotation bypasses the type mapper and voids its
// correctness guarantee; the field is flagged as unchecked in the rendered
// interface.
func (s *schema) CreateOverrideField(name string, kind stagehand.FieldKind, override stagehand.InterfaceType) (stagehand.Schema, error) {
	override.Unchecked = true
	return s.createField(name, kind, false, &override)
}

// Fields returns the fields of this Schema in declaration order
func (s *schema) Fields() []stagehand.Field {
	result := make([]stagehand.Field, len(s.fields))
	for i, f := range s.fields {
		result[i] = f
	}
	return result
}

// FieldNames returns the names in the schema, in declaration order
func (s *schema) FieldNames() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.name
	}
	return names
}

// ForEachField iterates over the fields in this Schema in declaration order
func (s *schema) ForEachField(fn func(field stagehand.Field) error) error {
	for _, f := range s.fields {
		if err := fn(f); err != nil {
			return err
		}
	}
	return nil
}
