// Package cursor moves a single selection over an ordered id sequence.
//
// The functions are pure: the caller owns both the sequence and the current
// selection. An empty selection string means "nothing selected". A selection
// that is not part of the sequence (for example after a delete) behaves as if
// nothing were selected.
package cursor

// Direction is the movement direction
type Direction int

const (
	Next Direction = iota
	Previous
)

func (d Direction) String() string {
	if d == Previous {
		return "previous"
	}
	return "next"
}

// IndexOf returns the position of id in seq, or -1
func IndexOf(seq []string, id string) int {
	if id == "" {
		return -1
	}
	for i, v := range seq {
		if v == id {
			return i
		}
	}
	return -1
}

// Advance returns the selection after moving one step in dir, wrapping at
// both ends. No selection sits before the first element.
func Advance(dir Direction, seq []string, sel string) string {
	n := len(seq)
	if n == 0 {
		return ""
	}
	idx := IndexOf(seq, sel)
	if idx < 0 {
		if dir == Previous {
			return seq[n-1]
		}
		return seq[0]
	}
	if dir == Previous {
		return seq[(idx-1+n)%n]
	}
	return seq[(idx+1)%n]
}

// OpenSelectedOrFirst keeps an existing selection and otherwise picks the
// first element. A stale selection is kept as well: the detail view keeps
// showing it until the user moves.
func OpenSelectedOrFirst(seq []string, sel string) string {
	if sel != "" {
		return sel
	}
	if len(seq) == 0 {
		return ""
	}
	return seq[0]
}
