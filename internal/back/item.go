package back

import (
	"database/sql"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/yjkogan/stuff-tracker/internal/glicko"
	"github.com/yjkogan/stuff-tracker/internal/util"
	"gopkg.in/guregu/null.v4"
)

// An Item is something ranked against the other items of its Category.
type Item struct {
	ID         util.UUIDAsBlob
	CategoryID util.UUIDAsBlob
	CreatedAt  util.TimeAsTimestamp
	Name       string
	Notes      null.String
	ImageURL   null.String

	// Glicko-2, only ever written by applyComparison and Rerank.
	Rating     float64
	Deviation  float64
	Volatility float64
	Matches    int

	// Unix time of the deletion, deleted items only show up in replays.
	DeletedAt null.Int

	// Joined from Category, read-only.
	CategoryName string
}

func NewItem(category Category, name string, rating glicko.Rating) Item {
	item := Item{
		ID:           util.NewUUIDAsBlob(),
		CategoryID:   category.ID,
		CategoryName: category.Name,
		CreatedAt:    util.NewTimeAsTimestamp(time.Now()),
		Name:         name,
	}
	item.SetRating(rating)

	return item
}

func (i *Item) GlickoRating() glicko.Rating {
	return glicko.Rating{
		Rating:     i.Rating,
		Deviation:  i.Deviation,
		Volatility: i.Volatility,
	}
}

func (i *Item) SetRating(r glicko.Rating) {
	i.Rating = r.Rating
	i.Deviation = r.Deviation
	i.Volatility = r.Volatility
}

func (i *Item) insert(tx *sqlx.Tx) error {
	query, args, err := squirrel.Insert("Item").SetMap(squirrel.Eq{
		"ID":         i.ID,
		"CategoryID": i.CategoryID,
		"CreatedAt":  i.CreatedAt,
		"Name":       i.Name,
		"Notes":      i.Notes,
		"ImageURL":   i.ImageURL,
		"Rating":     i.Rating,
		"Deviation":  i.Deviation,
		"Volatility": i.Volatility,
		"Matches":    i.Matches,
	}).ToSql()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(query, args...); err != nil {
		return err
	}

	return nil
}

// update writes the user-editable fields, ratings are left untouched.
func (i *Item) update(tx *sqlx.Tx) error {
	query, args, err := squirrel.Update("Item").SetMap(squirrel.Eq{
		"CategoryID": i.CategoryID,
		"Name":       i.Name,
		"Notes":      i.Notes,
		"ImageURL":   i.ImageURL,
	}).Where("Item.ID = ?", i.ID).ToSql()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(query, args...); err != nil {
		return err
	}

	return nil
}

func (i *Item) updateRating(tx *sqlx.Tx) error {
	query, args, err := squirrel.Update("Item").SetMap(squirrel.Eq{
		"Rating":     i.Rating,
		"Deviation":  i.Deviation,
		"Volatility": i.Volatility,
		"Matches":    i.Matches,
	}).Where("Item.ID = ?", i.ID).ToSql()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(query, args...); err != nil {
		return err
	}

	return nil
}

// softDeleteItem hides an item from every listing while keeping it around
// for the comparison log.
func softDeleteItem(tx *sqlx.Tx, id util.UUIDAsBlob, at time.Time) error {
	query, args, err := squirrel.Update("Item").
		Set("DeletedAt", at.Unix()).
		Where("Item.ID = ? AND Item.DeletedAt IS NULL", id).
		ToSql()
	if err != nil {
		return err
	}

	res, err := tx.Exec(query, args...)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}

	return nil
}

const selectItems = `
    SELECT Item.*, Category.Name AS CategoryName
    FROM Item
    INNER JOIN Category ON (Category.ID = Item.CategoryID)
`

func getItemByID(tx *sqlx.Tx, id util.UUIDAsBlob) (Item, error) {
	var ret Item
	query := selectItems + `WHERE Item.ID = ? AND Item.DeletedAt IS NULL LIMIT 1`
	if err := tx.Get(&ret, query, id); err != nil {
		return Item{}, err
	}

	return ret, nil
}

// getItems returns all items ordered by rating, best first. An empty
// category name returns the items of all categories.
func getItems(tx *sqlx.Tx, categoryName string) ([]Item, error) {
	var (
		ret  []Item
		err  error
		sort = ` ORDER BY Item.Rating DESC, Item.Name ASC`
	)

	if categoryName == "" {
		err = tx.Select(&ret, selectItems+`WHERE Item.DeletedAt IS NULL`+sort)
	} else {
		err = tx.Select(
			&ret,
			selectItems+`WHERE Item.DeletedAt IS NULL AND Category.Name = ?`+sort,
			categoryName,
		)
	}
	if err != nil {
		return nil, err
	}

	return ret, nil
}

func getItemsByCategoryID(tx *sqlx.Tx, categoryID util.UUIDAsBlob) ([]Item, error) {
	var ret []Item
	query := selectItems + `
        WHERE Item.CategoryID = ? AND Item.DeletedAt IS NULL
        ORDER BY Item.CreatedAt ASC, Item.Name ASC`
	if err := tx.Select(&ret, query, categoryID); err != nil {
		return nil, err
	}

	return ret, nil
}

// getReplayableItemsByCategoryID is getItemsByCategoryID including deleted
// items.
func getReplayableItemsByCategoryID(tx *sqlx.Tx, categoryID util.UUIDAsBlob) ([]Item, error) {
	var ret []Item
	query := selectItems + `
        WHERE Item.CategoryID = ?
        ORDER BY Item.CreatedAt ASC, Item.Name ASC`
	if err := tx.Select(&ret, query, categoryID); err != nil {
		return nil, err
	}

	return ret, nil
}
