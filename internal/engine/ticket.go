package engine

// Ticket is the record created for one successful purchase: the buyer, the
// identity of the minted unit, and the reveal number once assigned.
// RevealedNumber uses 0 as the "unassigned" sentinel, which is why pool
// ranges start at 1. Once non-zero it never changes: the only transition a
// ticket makes is Unassigned -> Revealed, driven by Engine.Reveal.
type Ticket struct {
	Owner          Identity
	ItemID         Identity
	RevealedNumber uint16
}

// Revealed reports whether the ticket has already received its number.
func (t *Ticket) Revealed() bool { return t.RevealedNumber != 0 }
