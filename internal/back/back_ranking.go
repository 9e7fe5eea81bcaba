package back

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/yjkogan/stuff-tracker/internal/util"
)

// Rerank resets every rating of a category and replays its comparison log in
// the order it was recorded. Useful after changing the rating parameters or
// moving items between categories.
func (b *Back) Rerank(ctx context.Context, categoryName string) error {
	start := time.Now()

	b.voteMu.Lock()
	defer b.voteMu.Unlock()

	var replayed int
	if err := b.transaction(ctx, func(tx *sqlx.Tx) (err error) {
		category, err := getCategoryByName(tx, categoryName)
		if err != nil {
			return fmt.Errorf("unable to find category '%s': %w", categoryName, err)
		}

		items, err := getReplayableItemsByCategoryID(tx, category.ID)
		if err != nil {
			return fmt.Errorf("unable to fetch items: %w", err)
		}

		comparisons, err := getComparisonsForCategory(tx, category.ID)
		if err != nil {
			return fmt.Errorf("unable to fetch comparisons: %w", err)
		}

		replayed, err = b.replay(items, comparisons)
		if err != nil {
			return err
		}

		log.Printf("debug: updating %d Item ratings", len(items))
		for k := range items {
			if err := items[k].updateRating(tx); err != nil {
				return fmt.Errorf("unable to update rating: %w", err)
			}
		}

		return nil
	}); err != nil {
		return err
	}

	log.Printf(
		"info: recomputed rankings of %s from %d comparisons in %s",
		categoryName, replayed, time.Since(start),
	)

	return nil
}

// replay computes in place the ratings items would have after the given
// comparisons, starting from the base rating. Comparisons involving an item
// outside of the given slice are skipped.
func (b *Back) replay(items []Item, comparisons []Comparison) (int, error) {
	base := b.Params().NewRating()
	byID := make(map[util.UUIDAsBlob]*Item, len(items))
	for k := range items {
		items[k].SetRating(base)
		items[k].Matches = 0
		byID[items[k].ID] = &items[k]
	}

	var replayed int
	for _, c := range comparisons {
		winner, ok := byID[c.WinnerID]
		if !ok {
			continue
		}
		loser, ok := byID[c.LoserID]
		if !ok {
			log.Printf("debug: skipping comparison %s, %s moved to another category", c.ID, c.LoserID)
			continue
		}

		w, l, err := b.updater.Update(winner.GlickoRating(), loser.GlickoRating())
		if err != nil {
			return 0, fmt.Errorf("unable to replay comparison %s: %w", c.ID, err)
		}

		winner.SetRating(w)
		winner.Matches++
		loser.SetRating(l)
		loser.Matches++
		replayed++
	}

	return replayed, nil
}
