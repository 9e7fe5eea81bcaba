package back

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/yjkogan/stuff-tracker/internal/util"
	"golang.org/x/text/unicode/norm"
)

// A Category groups items that are compared against each other. Categories
// are created on the fly the first time an item references them.
type Category struct {
	ID        util.UUIDAsBlob
	CreatedAt util.TimeAsTimestamp
	Name      string
}

func NewCategory(name string) Category {
	return Category{
		ID:        util.NewUUIDAsBlob(),
		CreatedAt: util.NewTimeAsTimestamp(time.Now()),
		Name:      name,
	}
}

func (c *Category) insert(tx *sqlx.Tx) error {
	query, args, err := squirrel.Insert("Category").SetMap(squirrel.Eq{
		"ID":        c.ID,
		"CreatedAt": c.CreatedAt,
		"Name":      c.Name,
	}).ToSql()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(query, args...); err != nil {
		return err
	}

	return nil
}

func getCategories(tx *sqlx.Tx) ([]Category, error) {
	var ret []Category
	if err := tx.Select(&ret, `SELECT * FROM Category ORDER BY Category.Name ASC`); err != nil {
		return nil, err
	}

	return ret, nil
}

// normalizeName trims name and puts it in NFC form, so names that render
// the same are stored and matched the same.
func normalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

func getCategoryByName(tx *sqlx.Tx, name string) (Category, error) {
	var ret Category
	query := `SELECT * FROM Category WHERE Category.Name = ? LIMIT 1`
	if err := tx.Get(&ret, query, normalizeName(name)); err != nil {
		return Category{}, err
	}

	return ret, nil
}

// getOrCreateCategory returns the category with the given name, creating it
// if it does not exist yet.
func getOrCreateCategory(tx *sqlx.Tx, name string) (Category, error) {
	name = normalizeName(name)
	if name == "" {
		return Category{}, util.ErrPublic("category cannot be empty")
	}

	category, err := getCategoryByName(tx, name)
	if err == nil {
		return category, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return Category{}, err
	}

	category = NewCategory(name)
	if err := category.insert(tx); err != nil {
		return Category{}, err
	}

	return category, nil
}
