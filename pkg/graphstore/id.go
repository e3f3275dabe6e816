package graphstore

import (
	"encoding/json"
	"strconv"
)

// NodeID identifies a node within a [Graph]. An ID is either numeric or
// textual; the form is chosen once (at generation or load time) and held
// consistently, so IDs remain comparable across the node set and any
// node-reference attributes that point back into it.
//
// NodeID is a comparable value type and can be used as a map key.
// The zero value is the empty string ID.
type NodeID struct {
	num     int64
	text    string
	numeric bool
}

// IntID returns a numeric node ID.
func IntID(n int64) NodeID { return NodeID{num: n, numeric: true} }

// StringID returns a textual node ID. No numeric conversion is attempted.
func StringID(s string) NodeID { return NodeID{text: s} }

// ParseID converts a raw label into a NodeID, preferring the numeric form
// when the label parses as an integer. Loaders must route every label and
// node-reference value through this single conversion so that "7" and 7
// end up as the same ID.
func ParseID(s string) NodeID {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return IntID(n)
	}
	return StringID(s)
}

// IsInt reports whether the ID is in numeric form.
func (id NodeID) IsInt() bool { return id.numeric }

// Int returns the numeric value and true, or 0 and false for textual IDs.
func (id NodeID) Int() (int64, bool) {
	if id.numeric {
		return id.num, true
	}
	return 0, false
}

// String returns the canonical label for the ID.
func (id NodeID) String() string {
	if id.numeric {
		return strconv.FormatInt(id.num, 10)
	}
	return id.text
}

// MarshalJSON encodes numeric IDs as JSON numbers and textual IDs as
// JSON strings, mirroring the serialized graph format.
func (id NodeID) MarshalJSON() ([]byte, error) {
	if id.numeric {
		return strconv.AppendInt(nil, id.num, 10), nil
	}
	return json.Marshal(id.text)
}

// UnmarshalJSON accepts either form and routes strings through the same
// integer-when-possible conversion as [ParseID].
func (id *NodeID) UnmarshalJSON(data []byte) error {
	var n int64
	if err := json.Unmarshal(data, &n); err == nil {
		*id = IntID(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*id = ParseID(s)
	return nil
}

// Compare orders IDs for deterministic output: numeric IDs sort before
// textual ones, numeric by value, textual lexically.
func (id NodeID) Compare(other NodeID) int {
	switch {
	case id.numeric && !other.numeric:
		return -1
	case !id.numeric && other.numeric:
		return 1
	case id.numeric:
		switch {
		case id.num < other.num:
			return -1
		case id.num > other.num:
			return 1
		}
		return 0
	default:
		switch {
		case id.text < other.text:
			return -1
		case id.text > other.text:
			return 1
		}
		return 0
	}
}
