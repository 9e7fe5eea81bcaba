package back

import (
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/yjkogan/stuff-tracker/internal/util"
)

// A Comparison is the immutable record of one vote: WinnerID was preferred
// over LoserID. The ratings both items had before the vote are kept along.
type Comparison struct {
	ID        util.UUIDAsBlob
	CreatedAt util.TimeAsTimestamp
	WinnerID  util.UUIDAsBlob
	LoserID   util.UUIDAsBlob

	WinnerRating     float64
	WinnerDeviation  float64
	WinnerVolatility float64
	LoserRating      float64
	LoserDeviation   float64
	LoserVolatility  float64
}

func NewComparison(winner, loser Item, at time.Time) Comparison {
	return Comparison{
		ID:        util.NewUUIDAsBlob(),
		CreatedAt: util.NewTimeAsTimestamp(at),
		WinnerID:  winner.ID,
		LoserID:   loser.ID,

		WinnerRating:     winner.Rating,
		WinnerDeviation:  winner.Deviation,
		WinnerVolatility: winner.Volatility,
		LoserRating:      loser.Rating,
		LoserDeviation:   loser.Deviation,
		LoserVolatility:  loser.Volatility,
	}
}

// insert is the only write a Comparison ever gets.
func (c *Comparison) insert(tx *sqlx.Tx) error {
	query, args, err := squirrel.Insert("Comparison").SetMap(squirrel.Eq{
		"ID":        c.ID,
		"CreatedAt": c.CreatedAt,
		"WinnerID":  c.WinnerID,
		"LoserID":   c.LoserID,

		"WinnerRating":     c.WinnerRating,
		"WinnerDeviation":  c.WinnerDeviation,
		"WinnerVolatility": c.WinnerVolatility,
		"LoserRating":      c.LoserRating,
		"LoserDeviation":   c.LoserDeviation,
		"LoserVolatility":  c.LoserVolatility,
	}).ToSql()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(query, args...); err != nil {
		return err
	}

	return nil
}

// getComparisonsForItem returns every comparison involving the item, most
// recent first.
func getComparisonsForItem(tx *sqlx.Tx, itemID util.UUIDAsBlob) ([]Comparison, error) {
	var ret []Comparison
	query := `
        SELECT * FROM Comparison
        WHERE Comparison.WinnerID = ? OR Comparison.LoserID = ?
        ORDER BY Comparison.rowid DESC`
	if err := tx.Select(&ret, query, itemID, itemID); err != nil {
		return nil, err
	}

	return ret, nil
}

// getComparisonsForCategory returns every comparison between items of the
// category in the order they were recorded.
func getComparisonsForCategory(tx *sqlx.Tx, categoryID util.UUIDAsBlob) ([]Comparison, error) {
	var ret []Comparison
	query := `
        SELECT Comparison.* FROM Comparison
        INNER JOIN Item ON (Item.ID = Comparison.WinnerID)
        WHERE Item.CategoryID = ?
        ORDER BY Comparison.rowid ASC`
	if err := tx.Select(&ret, query, categoryID); err != nil {
		return nil, err
	}

	return ret, nil
}

func countComparisons(tx *sqlx.Tx) (int, error) {
	var ret int
	if err := tx.Get(&ret, `SELECT COUNT(*) FROM Comparison`); err != nil {
		return 0, err
	}

	return ret, nil
}
