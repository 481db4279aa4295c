// Package iface reduces Schemas to interface descriptors and renders them in
// the orchestrator's description language. It is exercised at build or
// introspection time, never during pipeline execution.
package iface

import (
	"fmt"

	"github.com/go-stagehand/stagehand"
	"github.com/go-stagehand/stagehand/errors"
)

// Map reduces a Field's declared kind to its InterfaceType. It is total over
// all declared kinds except bare unreflected records, which require a manual
// override annotation. Map is deterministic: mapping the same Field twice
// yields identical results.
func Map(field stagehand.Field) (stagehand.InterfaceType, error) {
	if override, ok := field.Override(); ok {
		return mapOverride(field, override)
	}
	return mapKind(field.Name(), field.Kind(), 0)
}

// mapOverride applies the manual escape hatch. Only string, map, or arrays
// thereof may be declared manually; anything richer must go through the
// mapper so the runtime contract cannot drift.
func mapOverride(field stagehand.Field, override stagehand.InterfaceType) (stagehand.InterfaceType, error) {
	if override.FileExt != "" || (override.Primary != stagehand.StringType && override.Primary != stagehand.MapType) {
		return stagehand.InterfaceType{}, errors.UnmappableFieldError{Name: field.Name(), Kind: field.Kind()}
	}
	override.Unchecked = true
	if stagehand.IsOptionalKind(field.Kind()) {
		override.Nullable = true
	}
	return override, nil
}

// mapKind maps a kind recursively. depth tracks wrapper nesting: one optional
// wrapper and one collection wrapper are permitted, in that order, and
// nothing deeper reduces to (primitive | array-of-primitive).
func mapKind(name string, kind stagehand.FieldKind, depth int) (stagehand.InterfaceType, error) {
	switch k := kind.(type) {
	case stagehand.IntKind, stagehand.UintKind:
		return stagehand.InterfaceType{Primary: stagehand.IntType}, nil
	case stagehand.FloatKind:
		return stagehand.InterfaceType{Primary: stagehand.FloatType}, nil
	case stagehand.BoolKind:
		return stagehand.InterfaceType{Primary: stagehand.BoolType}, nil
	case stagehand.StringKind, stagehand.EnumKind:
		return stagehand.InterfaceType{Primary: stagehand.StringType}, nil
	case stagehand.PathKind:
		return stagehand.InterfaceType{Primary: stagehand.PathType}, nil
	case stagehand.FileKind:
		if k.Ext == "" {
			return stagehand.InterfaceType{}, fmt.Errorf("Field %s declares a file kind with no extension", name)
		}
		return stagehand.InterfaceType{FileExt: k.Ext}, nil
	case stagehand.MapKind:
		return stagehand.InterfaceType{Primary: stagehand.MapType}, nil
	case stagehand.RecordKind:
		if !k.Reflected {
			return stagehand.InterfaceType{}, errors.UnmappableFieldError{Name: name, Kind: kind}
		}
		return stagehand.InterfaceType{Primary: stagehand.MapType}, nil
	case stagehand.OptionalKind:
		if depth > 0 {
			return stagehand.InterfaceType{}, errors.UnmappableFieldError{Name: name, Kind: kind}
		}
		inner, err := mapKind(name, k.Of, depth+1)
		if err != nil {
			return stagehand.InterfaceType{}, err
		}
		inner.Nullable = true
		return inner, nil
	case stagehand.SequenceKind:
		return mapCollection(name, kind, k.Of, depth)
	case stagehand.SetKind:
		return mapCollection(name, kind, k.Of, depth)
	default:
		return stagehand.InterfaceType{}, errors.UnmappableFieldError{Name: name, Kind: kind}
	}
}

// mapCollection maps a sequence or set kind to an array interface type. The
// element kind must itself reduce to a non-array primitive.
func mapCollection(name string, outer stagehand.FieldKind, elem stagehand.FieldKind, depth int) (stagehand.InterfaceType, error) {
	if depth > 1 {
		return stagehand.InterfaceType{}, errors.UnmappableFieldError{Name: name, Kind: outer}
	}
	inner, err := mapKind(name, elem, depth+2)
	if err != nil {
		return stagehand.InterfaceType{}, err
	}
	if inner.Array || inner.Nullable {
		return stagehand.InterfaceType{}, errors.UnmappableFieldError{Name: name, Kind: outer}
	}
	inner.Array = true
	return inner, nil
}
