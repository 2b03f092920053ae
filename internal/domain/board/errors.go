package board

import "errors"

// Sentinel error kinds for board mutations.
var (
	ErrSlotOutOfRange = errors.New("slot out of range")
	ErrSlotOccupied   = errors.New("slot occupied")
	ErrCardOnBoard    = errors.New("card already on board")
	ErrInvariant      = errors.New("board invariant violated")
)
