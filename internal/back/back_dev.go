package back

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/jmoiron/sqlx"
)

// LoadFixtures creates a few categories and items along with random votes,
// for quick testing during development.
func (b *Back) LoadFixtures(ctx context.Context) error {
	fixtures := map[string][]string{
		"Coffee":  {"Espresso", "Flat white", "Cortado", "Filter", "Cold brew", "Mocha"},
		"Cheeses": {"Comté", "Roquefort", "Époisses", "Cheddar", "Gouda"},
	}

	b.voteMu.Lock()
	defer b.voteMu.Unlock()

	return b.transaction(ctx, func(tx *sqlx.Tx) error {
		rng := rand.New(rand.NewSource(time.Now().UnixNano())) // nolint:gosec

		for categoryName, names := range fixtures {
			category, err := getOrCreateCategory(tx, categoryName)
			if err != nil {
				return err
			}

			items := make([]Item, len(names))
			for k, name := range names {
				items[k] = NewItem(category, name, b.Params().NewRating())
				if err := items[k].insert(tx); err != nil {
					return fmt.Errorf("unable to insert %s: %w", name, err)
				}
			}

			// Earlier items tend to win, so the leaderboard is not flat.
			for i := 0; i < 4*len(items); i++ {
				w, l := rng.Intn(len(items)), rng.Intn(len(items))
				if w == l {
					continue
				}
				if w > l && rng.Intn(4) != 0 {
					w, l = l, w
				}

				res, err := b.applyComparison(tx, items[w], items[l], time.Now())
				if err != nil {
					return err
				}
				items[w], items[l] = res.Winner, res.Loser
			}
		}

		return nil
	})
}
