package stagehand

// Process-wide resource defaults, applied by the negotiator when neither a
// static declaration nor a runtime override supplies a value. Virtual memory
// defaults to the resolved memory reservation plus a fixed headroom.
const (
	// DefaultMemGB is the default memory reservation in GB
	DefaultMemGB = 1
	// DefaultThreads is the default thread reservation
	DefaultThreads = 1
	// VMemHeadroomGB is added to the resolved memory reservation to produce
	// the default virtual memory reservation
	VMemHeadroomGB = 3
)

// A Resource describes the memory, virtual memory and thread reservations for
// one phase of a stage. An unset value falls back to the process-wide default
// during resource negotiation. Reservations may be negative, which the
// orchestrator interprets as a per-thread or per-chunk scaling hint.
type Resource struct {
	MemGB   *int `json:"__mem_gb,omitempty"`
	VMemGB  *int `json:"__vmem_gb,omitempty"`
	Threads *int `json:"__threads,omitempty"`
}

// CreateResource produces a Resource with every reservation unset
func CreateResource() Resource {
	return Resource{}
}

// WithMemGB returns a copy of this Resource with the memory reservation set
func (r Resource) WithMemGB(memGB int) Resource {
	r.MemGB = &memGB
	return r
}

// WithVMemGB returns a copy of this Resource with the virtual memory reservation set
func (r Resource) WithVMemGB(vmemGB int) Resource {
	r.VMemGB = &vmemGB
	return r
}

// WithThreads returns a copy of this Resource with the thread reservation set
func (r Resource) WithThreads(threads int) Resource {
	r.Threads = &threads
	return r
}

// IsEmpty returns true iff no reservation is set on this Resource
func (r Resource) IsEmpty() bool {
	return r.MemGB == nil && r.VMemGB == nil && r.Threads == nil
}

// Volatile is a tri-state marker controlling whether the orchestrator may
// discard a stage's files once downstream consumers have finished
type Volatile string

const (
	// VolatileUnset leaves the volatile behavior to orchestrator defaults
	VolatileUnset Volatile = ""
	// VolatileStrict permits the orchestrator to discard stage files eagerly
	VolatileStrict Volatile = "strict"
	// VolatileFalse forbids discarding stage files
	VolatileFalse Volatile = "false"
)

// ResourceHints are the statically-declared attributes of a stage which are
// rendered into the using block of its interface: phase resource defaults,
// the volatile marker and an optional disabled expression. The disabled
// expression is an opaque string evaluated by the orchestrator; Stagehand
// performs no validation of it.
type ResourceHints struct {
	MemGB    *int
	VMemGB   *int
	Threads  *int
	Volatile Volatile
	Disabled string
}

// IsEmpty returns true iff no hint is set, in which case the rendered
// interface carries no using block
func (h ResourceHints) IsEmpty() bool {
	return h.MemGB == nil && h.VMemGB == nil && h.Threads == nil &&
		h.Volatile == VolatileUnset && h.Disabled == ""
}

// StaticResource returns the Resource portion of these hints, for use as the
// static side of resource negotiation
func (h ResourceHints) StaticResource() Resource {
	return Resource{MemGB: h.MemGB, VMemGB: h.VMemGB, Threads: h.Threads}
}
