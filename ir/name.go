package ir

import "fmt"

// Name is a 32-bit interned identifier (spec.md §3 "Keys are 32-bit
// interned identifiers"). Variables, registers, struct fields, function
// names, and enum members all live in this one namespace, exactly as the
// source IR addresses them.
type Name uint32

func (n Name) String() string { return fmt.Sprintf("id%d", uint32(n)) }

// Distinguished identifiers named by spec.md §4.6/§6.
const (
	// RETURN names the function return slot.
	RETURN Name = 0xFFFFFFFF - iota
	// HAVE_EXCEPTION is a distinguished global boolean.
	HAVE_EXCEPTION
	// INTERNAL_VECTOR_INIT is intercepted by Call when the callee table has
	// no entry for it.
	INTERNAL_VECTOR_INIT
	// INTERNAL_VECTOR_UPDATE is treated as a no-op (spec.md §4.6, §9 open
	// question).
	INTERNAL_VECTOR_UPDATE
	// SAIL_EXIT raises Error.Exit.
	SAIL_EXIT
)

// Symtab renders Names back to source-level strings for logging, error
// messages, and the textual trace format (spec.md §6). It is read-only
// after construction, like SharedState.
type Symtab struct {
	names map[Name]string
}

func NewSymtab() *Symtab { return &Symtab{names: map[Name]string{}} }

// Intern records str as the source identifier for name, replacing any
// string previously recorded for it.
// Real IR producers populate a Symtab once at load time; this method lets
// tests and the demo CLI build small symbol tables without a parser.
func (s *Symtab) Intern(name Name, str string) { s.names[name] = str }

func (s *Symtab) ToStr(n Name) string {
	if s == nil {
		return n.String()
	}
	if str, ok := s.names[n]; ok {
		return str
	}
	return n.String()
}
