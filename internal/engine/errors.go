package engine

import "errors"

// Validation errors reject the input synchronously; the bracket snapshot
// is left untouched.
var (
	ErrRosterTooSmall  = errors.New("need at least two players")
	ErrDuplicatePlayer = errors.New("duplicate player name")
	ErrReservedName    = errors.New("player name is reserved")
	ErrMatchNotFound   = errors.New("match not found")
	ErrMissingOpponent = errors.New("match is missing an opponent")
	ErrTiedScore       = errors.New("tied scores are not a result")
	ErrNegativeScore   = errors.New("scores must be non-negative")
	ErrAlreadyDecided  = errors.New("match already has a result")
	ErrNotDecided      = errors.New("match has no result to edit")
	ErrMatchVoid       = errors.New("match was voided")
	ErrByeNotEditable  = errors.New("bye matches carry no editable result")
)

// ErrDownstreamDecided surfaces the edit-cascade conflict: a corrected
// score would retract a player out of a match that has already been
// played. The caller must unwind downstream results explicitly first.
var ErrDownstreamDecided = errors.New("downstream match already decided")

// ErrCorruptBracket flags structural invariant violations. These are
// defects, not user errors, and are never corrected silently.
var ErrCorruptBracket = errors.New("bracket structure violated")
