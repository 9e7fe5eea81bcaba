package back

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/yjkogan/stuff-tracker/internal/util"
)

// VoteResult holds both items as they are after the vote and the recorded
// comparison.
type VoteResult struct {
	Winner, Loser Item
	Comparison    Comparison
}

// Vote records that winnerID was preferred over loserID and updates both
// ratings. Both ratings, both match counters, and the comparison are committed
// together or not at all.
func (b *Back) Vote(ctx context.Context, winnerID, loserID util.UUIDAsBlob) (VoteResult, error) {
	if winnerID == loserID {
		return VoteResult{}, ErrSameItem
	}

	b.voteMu.Lock()
	defer b.voteMu.Unlock()

	var ret VoteResult
	if err := b.transaction(ctx, func(tx *sqlx.Tx) error {
		winner, err := getItemByID(tx, winnerID)
		if err != nil {
			return fmt.Errorf("unable to fetch winner %s: %w", winnerID, err)
		}

		loser, err := getItemByID(tx, loserID)
		if err != nil {
			return fmt.Errorf("unable to fetch loser %s: %w", loserID, err)
		}

		if winner.CategoryID != loser.CategoryID {
			return ErrCategoryMismatch
		}

		ret, err = b.applyComparison(tx, winner, loser, time.Now())
		return err
	}); err != nil {
		return VoteResult{}, err
	}

	log.Printf(
		"debug: %s (%.1f) beat %s (%.1f)",
		ret.Winner.Name, ret.Winner.Rating,
		ret.Loser.Name, ret.Loser.Rating,
	)

	return ret, nil
}

// applyComparison computes and persists the outcome of winner beating loser
// as given, the caller must hold voteMu.
func (b *Back) applyComparison(tx *sqlx.Tx, winner, loser Item, at time.Time) (VoteResult, error) {
	comparison := NewComparison(winner, loser, at)

	w, l, err := b.updater.Update(winner.GlickoRating(), loser.GlickoRating())
	if err != nil {
		log.Printf("error: rating update for %s over %s: %s", winner.ID, loser.ID, err)
		return VoteResult{}, fmt.Errorf("unable to compute ratings: %w", err)
	}

	winner.SetRating(w)
	winner.Matches++
	loser.SetRating(l)
	loser.Matches++

	if err := winner.updateRating(tx); err != nil {
		return VoteResult{}, fmt.Errorf("unable to update winner rating: %w", err)
	}
	if err := loser.updateRating(tx); err != nil {
		return VoteResult{}, fmt.Errorf("unable to update loser rating: %w", err)
	}
	if err := comparison.insert(tx); err != nil {
		return VoteResult{}, fmt.Errorf("unable to record comparison: %w", err)
	}

	return VoteResult{
		Winner:     winner,
		Loser:      loser,
		Comparison: comparison,
	}, nil
}
