package back

import (
	"context"
	"log"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/yjkogan/stuff-tracker/internal/util"
	"gopkg.in/guregu/null.v4"
)

// ItemInput holds the user-provided fields of a new item.
type ItemInput struct {
	Category string
	Name     string
	Notes    string
	ImageURL string
}

// ItemPatch holds the fields to change on an existing item, nil fields are
// left untouched. Ratings cannot be patched.
type ItemPatch struct {
	Category *string
	Name     *string
	Notes    *string
	ImageURL *string
}

func (b *Back) ListItems(ctx context.Context, categoryName string) (out []Item, _ error) {
	if err := b.transaction(ctx, func(tx *sqlx.Tx) (err error) {
		out, err = getItems(tx, normalizeName(categoryName))
		return err
	}); err != nil {
		return nil, err
	}

	return out, nil
}

func (b *Back) GetItem(ctx context.Context, id util.UUIDAsBlob) (out Item, _ error) {
	if err := b.transaction(ctx, func(tx *sqlx.Tx) (err error) {
		out, err = getItemByID(tx, id)
		return err
	}); err != nil {
		return Item{}, err
	}

	return out, nil
}

// CreateItem creates an item with a default rating, the category is created
// if needed.
func (b *Back) CreateItem(ctx context.Context, in ItemInput) (out Item, _ error) {
	name := normalizeName(in.Name)
	if name == "" {
		return Item{}, ErrEmptyName
	}

	if err := b.transaction(ctx, func(tx *sqlx.Tx) error {
		category, err := getOrCreateCategory(tx, in.Category)
		if err != nil {
			return err
		}

		out = NewItem(category, name, b.Params().NewRating())
		out.Notes = null.NewString(in.Notes, in.Notes != "")
		out.ImageURL = null.NewString(in.ImageURL, in.ImageURL != "")

		return out.insert(tx)
	}); err != nil {
		return Item{}, err
	}

	log.Printf("info: created item %s (%s) in %s", out.Name, out.ID, out.CategoryName)

	return out, nil
}

// UpdateItem applies patch and returns the item as it was before and after.
// Both are read in the same transaction, callers can rely on previous to
// clean up what the patch replaced.
func (b *Back) UpdateItem(
	ctx context.Context, id util.UUIDAsBlob, patch ItemPatch,
) (out, previous Item, _ error) {
	if patch.Name != nil && normalizeName(*patch.Name) == "" {
		return Item{}, Item{}, ErrEmptyName
	}

	if err := b.transaction(ctx, func(tx *sqlx.Tx) (err error) {
		previous, err = getItemByID(tx, id)
		if err != nil {
			return err
		}
		out = previous

		if patch.Category != nil {
			category, err := getOrCreateCategory(tx, *patch.Category)
			if err != nil {
				return err
			}
			out.CategoryID = category.ID
			out.CategoryName = category.Name
		}
		if patch.Name != nil {
			out.Name = normalizeName(*patch.Name)
		}
		if patch.Notes != nil {
			out.Notes = null.NewString(*patch.Notes, *patch.Notes != "")
		}
		if patch.ImageURL != nil {
			out.ImageURL = null.NewString(*patch.ImageURL, *patch.ImageURL != "")
		}

		return out.update(tx)
	}); err != nil {
		return Item{}, Item{}, err
	}

	return out, previous, nil
}

// DeleteItem hides an item and returns it as it was. Its comparisons are
// kept, they still count when replaying the ratings of its category.
func (b *Back) DeleteItem(ctx context.Context, id util.UUIDAsBlob) (out Item, _ error) {
	if err := b.transaction(ctx, func(tx *sqlx.Tx) (err error) {
		out, err = getItemByID(tx, id)
		if err != nil {
			return err
		}

		return softDeleteItem(tx, id, time.Now())
	}); err != nil {
		return Item{}, err
	}

	log.Printf("info: deleted item %s (%s)", out.Name, id)

	return out, nil
}

func (b *Back) ListCategories(ctx context.Context) (out []Category, _ error) {
	if err := b.transaction(ctx, func(tx *sqlx.Tx) (err error) {
		out, err = getCategories(tx)
		return err
	}); err != nil {
		return nil, err
	}

	return out, nil
}

// ListComparisons returns the votes an item took part in, most recent first.
func (b *Back) ListComparisons(ctx context.Context, itemID util.UUIDAsBlob) (out []Comparison, _ error) {
	if err := b.transaction(ctx, func(tx *sqlx.Tx) (err error) {
		if _, err := getItemByID(tx, itemID); err != nil {
			return err
		}

		out, err = getComparisonsForItem(tx, itemID)
		return err
	}); err != nil {
		return nil, err
	}

	return out, nil
}
