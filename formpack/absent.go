package formpack

type absentType struct{}

// Absent marks the deliberate absence of a value, distinct from nil. An
// Absent object member is omitted from the skeleton, an Absent array element
// becomes null, and an Absent top-level value fails Encode with
// ErrUndefinedInput.
var Absent absentType

// MarshalJSON renders Absent as null, matching its array-element semantics
// when an Object or slice holding it is marshaled directly.
func (absentType) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

func (absentType) String() string { return "absent" }
