package stagehand

// A Record is one structured, schema-validated document exchanged between the
// orchestrator and a stage process. Numeric values decode as float64 and
// nested documents as map[string]interface{}, following Go's generic JSON
// representation. Validation against a Schema happens in the metadata
// protocol layer at read time.
type Record map[string]interface{}

// Clone returns a shallow copy of this Record
func (r Record) Clone() Record {
	result := make(Record, len(r))
	for k, v := range r {
		result[k] = v
	}
	return result
}

// Float returns the named value as a float64, or 0 if it is absent or not a number
func (r Record) Float(name string) float64 {
	v, ok := r[name].(float64)
	if !ok {
		return 0
	}
	return v
}

// Int returns the named value as an int, or 0 if it is absent or not a number
func (r Record) Int(name string) int {
	v, ok := r[name].(float64)
	if !ok {
		return 0
	}
	return int(v)
}

// String returns the named value as a string, or "" if it is absent or not a string
func (r Record) String(name string) string {
	v, ok := r[name].(string)
	if !ok {
		return ""
	}
	return v
}

// Bool returns the named value as a bool, or false if it is absent or not a boolean
func (r Record) Bool(name string) bool {
	v, ok := r[name].(bool)
	return ok && v
}

// Floats returns the named value as a slice of float64, or nil if it is
// absent or not an array of numbers
func (r Record) Floats(name string) []float64 {
	vs, ok := r[name].([]interface{})
	if !ok {
		return nil
	}
	result := make([]float64, 0, len(vs))
	for _, v := range vs {
		f, ok := v.(float64)
		if !ok {
			return nil
		}
		result = append(result, f)
	}
	return result
}
