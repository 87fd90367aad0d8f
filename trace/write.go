package trace

import (
	"fmt"
	"io"

	"github.com/isla-sym/isla/internal/zenc"
	"github.com/isla-sym/isla/ir"
)

// WriteEvents renders events as the textual S-expression trace external
// drivers consume (spec.md §6 "Exposed to external drivers": write_events/
// write_events_with_opts): an opening "(trace", one indented event per
// line in reverse collection order (newest first, matching
// simplify.rs's write_events, which walks the event slice back-to-front),
// and a closing ")". A ReadReg addressing the distinguished HAVE_EXCEPTION
// register is elided entirely (simplify.rs's write_events_with_opts
// special-cases exactly this register; SPEC_FULL.md §3 item 3); WriteReg
// carries no such exemption in the original and neither does this.
// Register names are rendered through zenc.Decode, the same
// zencode::decode(symtab.to_str(n)) call write_events_with_opts makes
// before printing |name|, so Sail-style mangled register identifiers read
// back out demangled.
func WriteEvents(w io.Writer, symtab *ir.Symtab, events Trace) error {
	if _, err := io.WriteString(w, "(trace"); err != nil {
		return err
	}
	for i := len(events) - 1; i >= 0; i-- {
		e := events[i]
		if e.Kind == EventReadReg && e.Reg == ir.HAVE_EXCEPTION {
			continue
		}
		if _, err := fmt.Fprintf(w, "\n  %s", eventLine(symtab, e)); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, ")")
	return err
}

// eventLine renders one event's line body, decoding register names
// through symtab+zenc for the two event kinds that carry one; every other
// kind has nothing Sail-mangled to decode, so it falls back to Event's own
// String().
func eventLine(symtab *ir.Symtab, e Event) string {
	switch e.Kind {
	case EventReadReg:
		return fmt.Sprintf("(read-reg |%s| %s %s)", zenc.Decode(symtab.ToStr(e.Reg)), accessorString(e.Accessor), e.Val)
	case EventWriteReg:
		return fmt.Sprintf("(write-reg |%s| %s %s)", zenc.Decode(symtab.ToStr(e.Reg)), accessorString(e.Accessor), e.Val)
	default:
		return e.String()
	}
}
