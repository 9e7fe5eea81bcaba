package back

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// NextPair picks the next two items of a category to put in front of the user
// using the configured pair strategy.
func (b *Back) NextPair(ctx context.Context, categoryName string) (Item, Item, error) {
	var items []Item
	if err := b.transaction(ctx, func(tx *sqlx.Tx) error {
		category, err := getCategoryByName(tx, categoryName)
		if err != nil {
			return fmt.Errorf("unable to find category '%s': %w", categoryName, err)
		}

		items, err = getItemsByCategoryID(tx, category.ID)
		return err
	}); err != nil {
		return Item{}, Item{}, err
	}

	return b.pairStrategy.Select(items)
}
