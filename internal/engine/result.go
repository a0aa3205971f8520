package engine

import (
	"fmt"

	"github.com/chalkline/bracketd/internal/bracket"
	"github.com/chalkline/bracketd/internal/utils"
)

// ApplyResult records a score for a match and propagates the outcome:
// the winner advances along the winner pointer, a winners-bracket loser
// drops into its mapped losers match, and the grand final settles the
// reset match. The bracket is left unchanged when the input is rejected.
func ApplyResult(b *bracket.Bracket, matchID, score1, score2 int) error {
	m := b.Match(matchID)
	if m == nil {
		return fmt.Errorf("%w: %d", ErrMatchNotFound, matchID)
	}
	if m.Status == bracket.MatchVoid {
		return fmt.Errorf("%w: match %d", ErrMatchVoid, matchID)
	}
	if m.Decided() {
		return fmt.Errorf("%w: match %d", ErrAlreadyDecided, matchID)
	}
	if !m.Ready() {
		return fmt.Errorf("%w: match %d", ErrMissingOpponent, matchID)
	}
	if score1 < 0 || score2 < 0 {
		return fmt.Errorf("%w: match %d", ErrNegativeScore, matchID)
	}
	if score1 == score2 {
		return fmt.Errorf("%w: match %d got %d-%d", ErrTiedScore, matchID, score1, score2)
	}

	m.Score1 = utils.Ptr(score1)
	m.Score2 = utils.Ptr(score2)
	winnerSlot := 1
	if score2 > score1 {
		winnerSlot = 2
	}
	m.WinnerSlot = utils.Ptr(winnerSlot)
	m.Status = bracket.MatchFinished

	if err := placeSlot(b, m.WinnerTo, m.WinnerToSlot, m.Winner()); err != nil {
		return err
	}
	if m.BracketSide == bracket.WinnersSide && m.LoserTo != 0 {
		if err := placeSlot(b, m.LoserTo, m.LoserToSlot, m.Loser()); err != nil {
			return err
		}
	}
	if m.BracketSide == bracket.FinalsSide && !m.IsGrandFinalsReset {
		settleReset(b, m)
	}
	return resolveByes(b)
}

// settleReset arms or voids the second grand final once the first one is
// decided: a losers-bracket champion forces the rematch, a winners-bracket
// champion makes it moot.
func settleReset(b *bracket.Bracket, grandFinal *bracket.Match) {
	reset := b.Reset()
	if reset == nil {
		return
	}
	if *grandFinal.WinnerSlot == 2 {
		reset.Slot1 = grandFinal.Slot1
		reset.Slot2 = grandFinal.Slot2
		reset.Status = bracket.MatchPending
	} else {
		reset.Status = bracket.MatchVoid
	}
}

// EditResult corrects an already recorded score. When the correction flips
// the winner, every downstream seat the old result populated is retracted
// and refilled, cascading through bye-decided matches. It refuses, without
// mutating anything, once the cascade would reach a match that was itself
// decided by play.
func EditResult(b *bracket.Bracket, matchID, score1, score2 int) error {
	m := b.Match(matchID)
	if m == nil {
		return fmt.Errorf("%w: %d", ErrMatchNotFound, matchID)
	}
	if !m.Decided() {
		return fmt.Errorf("%w: match %d", ErrNotDecided, matchID)
	}
	if m.IsBye {
		return fmt.Errorf("%w: match %d", ErrByeNotEditable, matchID)
	}
	if score1 < 0 || score2 < 0 {
		return fmt.Errorf("%w: match %d", ErrNegativeScore, matchID)
	}
	if score1 == score2 {
		return fmt.Errorf("%w: match %d got %d-%d", ErrTiedScore, matchID, score1, score2)
	}

	newWinnerSlot := 1
	if score2 > score1 {
		newWinnerSlot = 2
	}
	if newWinnerSlot == *m.WinnerSlot {
		m.Score1 = utils.Ptr(score1)
		m.Score2 = utils.Ptr(score2)
		return nil
	}

	oldWinner, oldLoser := m.Winner(), m.Loser()

	// Dry run both retraction paths before touching the bracket.
	if err := replaceDownstream(b, m.WinnerTo, m.WinnerToSlot, oldWinner, oldLoser, true); err != nil {
		return err
	}
	if m.BracketSide == bracket.WinnersSide && m.LoserTo != 0 {
		if err := replaceDownstream(b, m.LoserTo, m.LoserToSlot, oldLoser, oldWinner, true); err != nil {
			return err
		}
	}
	if m.BracketSide == bracket.FinalsSide && !m.IsGrandFinalsReset {
		if reset := b.Reset(); reset != nil && reset.Decided() {
			return fmt.Errorf("%w: reset match %d", ErrDownstreamDecided, reset.ID)
		}
	}

	m.Score1 = utils.Ptr(score1)
	m.Score2 = utils.Ptr(score2)
	m.WinnerSlot = utils.Ptr(newWinnerSlot)

	if err := replaceDownstream(b, m.WinnerTo, m.WinnerToSlot, oldWinner, oldLoser, false); err != nil {
		return err
	}
	if m.BracketSide == bracket.WinnersSide && m.LoserTo != 0 {
		if err := replaceDownstream(b, m.LoserTo, m.LoserToSlot, oldLoser, oldWinner, false); err != nil {
			return err
		}
	}
	if m.BracketSide == bracket.FinalsSide && !m.IsGrandFinalsReset {
		settleReset(b, m)
	}
	return resolveByes(b)
}

// replaceDownstream swaps oldName for newName in a downstream seat. A
// bye-decided match in the path is transparent: its automatic result is
// re-derived, so the swap continues along its winner pointer. A match
// decided by play stops the cascade with a conflict.
func replaceDownstream(b *bracket.Bracket, matchID, slot int, oldName, newName string, dryRun bool) error {
	if matchID == 0 {
		return nil
	}
	target := b.Match(matchID)
	if target == nil {
		return fmt.Errorf("%w: routed to missing match %d", ErrCorruptBracket, matchID)
	}
	if current := target.Slot(slot); current != oldName {
		return fmt.Errorf("%w: match %d slot %d holds %q, expected %q", ErrCorruptBracket, matchID, slot, current, oldName)
	}
	if target.Decided() {
		if !target.IsBye {
			return fmt.Errorf("%w: match %d", ErrDownstreamDecided, target.ID)
		}
		// The bye auto-advanced the real player; follow them.
		if target.Winner() == oldName {
			if err := replaceDownstream(b, target.WinnerTo, target.WinnerToSlot, oldName, newName, dryRun); err != nil {
				return err
			}
		}
	}
	if !dryRun {
		target.SetSlot(slot, newName)
	}
	return nil
}

// IsComplete reports whether every live match has a winner and the reset
// match's state is consistent with the first grand final's outcome.
func IsComplete(b *bracket.Bracket) bool {
	for _, m := range b.Matches {
		if m.IsGrandFinalsReset {
			continue
		}
		if m.Status != bracket.MatchFinished {
			return false
		}
	}
	reset := b.Reset()
	if reset == nil {
		return true
	}
	grandFinal := b.GrandFinal()
	if utils.OrZero(grandFinal.WinnerSlot) == 2 {
		return reset.Status == bracket.MatchFinished
	}
	return reset.Status == bracket.MatchVoid
}

// Champion returns the tournament winner once the bracket is complete.
func Champion(b *bracket.Bracket) (string, bool) {
	if !IsComplete(b) {
		return "", false
	}
	if reset := b.Reset(); reset != nil && reset.Status == bracket.MatchFinished {
		return reset.Winner(), true
	}
	return b.GrandFinal().Winner(), true
}
