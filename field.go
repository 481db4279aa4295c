package stagehand

// A Field describes one named, typed slot within a Schema
type Field interface {
	Name() string                    // Name returns the name of this Field, unique within its Schema
	Kind() FieldKind                 // Kind returns the declared FieldKind of this Field
	Index() int                      // Index returns the declaration position of this Field within its Schema
	Retained() bool                  // Retained returns true iff this output Field is marked for retention by the orchestrator
	Override() (InterfaceType, bool) // Override returns the manual InterfaceType annotation for this Field, if one was declared
}
