package objectstore

import "fmt"

// Lifetime is the lifetime class of an object.
type Lifetime int

const (
	// Temporary objects are scoped to one module execution and released
	// unconditionally when it ends.
	Temporary Lifetime = iota
	// Owned objects are module outputs, released after their last consumer.
	Owned
	// Cached objects survive the whole trajectory loop.
	Cached
)

// String returns the configuration name of the lifetime class.
func (l Lifetime) String() string {
	switch l {
	case Temporary:
		return "temporary"
	case Owned:
		return "owned"
	case Cached:
		return "cached"
	default:
		return fmt.Sprintf("lifetime(%d)", int(l))
	}
}

// State is the residency state of an object.
type State int

const (
	// Absent objects are declared but hold no bytes.
	Absent State = iota
	// Resident objects hold their payload.
	Resident
)

// Spec is the declared metadata of an object.
type Spec struct {
	Name string
	Type string
	Size int64
	// Extent is the integer multiplier the size was computed with (e.g. the
	// fifth dimension of a domain-wall field). Zero is treated as one.
	Extent int
	Class  Lifetime
	// Owner is the name of the module that declared the object.
	Owner string
	// New builds the payload when the object is allocated. A nil New leaves
	// the payload nil.
	New func() any
}

// Object is a declared object together with its payload.
type Object struct {
	Spec
	State State
	// Value is the opaque payload built by Spec.New. Modules fill it in place.
	Value any
}

// Stats holds allocation counters for a store.
type Stats struct {
	// Resident is the number of bytes currently allocated.
	Resident int64
	// Peak is the largest value Resident has reached.
	Peak int64
	// Cached is the number of resident bytes held by cached objects.
	Cached int64
	// Allocations counts allocation events (no-op cached allocations excluded).
	Allocations int
	// Releases counts release events.
	Releases int
}

// TempName returns the store key of a module's temporary. Two modules
// declaring the same logical temporary get distinct objects.
func TempName(owner, name string) string {
	return owner + "/" + name
}

// ExtentOf normalizes a declared extent.
func ExtentOf(s Spec) int {
	if s.Extent < 1 {
		return 1
	}
	return s.Extent
}
