package back // nolint:testpackage

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"math/rand"
	"sync"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/yjkogan/stuff-tracker/internal/selection"
	"github.com/yjkogan/stuff-tracker/internal/util"
)

func countTestComparisons(t *testing.T, back *Back) int {
	t.Helper()

	var ret int
	if err := back.transaction(context.Background(), func(tx *sqlx.Tx) (err error) {
		ret, err = countComparisons(tx)
		return err
	}); err != nil {
		t.Fatal(err)
	}

	return ret
}

func TestVote(t *testing.T) {
	back := createTestBack(t)
	ctx := context.Background()
	items := createTestItems(t, back, "Coffee", "Espresso", "Filter")

	res, err := back.Vote(ctx, items[0].ID, items[1].ID)
	if err != nil {
		t.Fatal(err)
	}

	winner, err := back.GetItem(ctx, items[0].ID)
	if err != nil {
		t.Fatal(err)
	}
	loser, err := back.GetItem(ctx, items[1].ID)
	if err != nil {
		t.Fatal(err)
	}

	if winner.GlickoRating() != res.Winner.GlickoRating() || loser.GlickoRating() != res.Loser.GlickoRating() {
		t.Errorf("persisted ratings differ from the returned ones")
	}
	if winner.Rating <= 1500 || winner.Rating >= 1700 {
		t.Errorf("unexpected winner rating %f", winner.Rating)
	}
	if loser.Rating >= 1500 || loser.Rating <= 1300 {
		t.Errorf("unexpected loser rating %f", loser.Rating)
	}
	if winner.Deviation >= 350 || loser.Deviation >= 350 {
		t.Errorf("deviations did not shrink: %f %f", winner.Deviation, loser.Deviation)
	}
	if winner.Matches != 1 || loser.Matches != 1 {
		t.Errorf("expected 1 match each, got %d and %d", winner.Matches, loser.Matches)
	}

	comparisons, err := back.ListComparisons(ctx, items[1].ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(comparisons) != 1 {
		t.Fatalf("expected 1 comparison got %d", len(comparisons))
	}

	c := comparisons[0]
	if c.ID != res.Comparison.ID || c.WinnerID != items[0].ID || c.LoserID != items[1].ID {
		t.Errorf("unexpected comparison %+v", c)
	}
	if c.WinnerRating != 1500 || c.LoserRating != 1500 || c.WinnerDeviation != 350 {
		t.Errorf("expected pre-vote ratings in comparison, got %+v", c)
	}
}

func TestVoteRejectsInvalidPairs(t *testing.T) {
	back := createTestBack(t)
	ctx := context.Background()
	coffees := createTestItems(t, back, "Coffee", "Espresso", "Filter")
	teas := createTestItems(t, back, "Tea", "Sencha")

	if _, err := back.Vote(ctx, coffees[0].ID, coffees[0].ID); !errors.Is(err, ErrSameItem) {
		t.Errorf("expected ErrSameItem got %v", err)
	}
	if _, err := back.Vote(ctx, coffees[0].ID, teas[0].ID); !errors.Is(err, ErrCategoryMismatch) {
		t.Errorf("expected ErrCategoryMismatch got %v", err)
	}
	if _, err := back.Vote(ctx, coffees[0].ID, util.NewUUIDAsBlob()); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected sql.ErrNoRows got %v", err)
	}
	if _, err := back.Vote(ctx, util.NewUUIDAsBlob(), coffees[1].ID); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected sql.ErrNoRows got %v", err)
	}

	if n := countTestComparisons(t, back); n != 0 {
		t.Errorf("expected no comparison recorded, got %d", n)
	}

	for _, v := range append(coffees, teas...) {
		item, err := back.GetItem(ctx, v.ID)
		if err != nil {
			t.Fatal(err)
		}
		if item.GlickoRating() != v.GlickoRating() || item.Matches != 0 {
			t.Errorf("%s was modified by a rejected vote", item.Name)
		}
	}
}

func TestVoteIsAtomic(t *testing.T) {
	back := createTestBack(t)
	ctx := context.Background()
	items := createTestItems(t, back, "Coffee", "Espresso", "Filter")

	// Ratings are written before the comparison, a failing insert must roll
	// them back.
	if _, err := back.db.Exec(`DROP TABLE Comparison`); err != nil {
		t.Fatal(err)
	}

	if _, err := back.Vote(ctx, items[0].ID, items[1].ID); err == nil {
		t.Fatal("expected an error")
	}

	for _, v := range items {
		item, err := back.GetItem(ctx, v.ID)
		if err != nil {
			t.Fatal(err)
		}
		if item.GlickoRating() != v.GlickoRating() || item.Matches != 0 {
			t.Errorf("%s was modified by a failed vote: %v", item.Name, item.GlickoRating())
		}
	}
}

func TestConcurrentVotes(t *testing.T) {
	back := createTestBack(t)
	ctx := context.Background()
	items := createTestItems(t, back, "Coffee", "Espresso", "Filter", "Mocha", "Cortado")

	const (
		workers = 8
		votes   = 10
	)

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed)) // nolint:gosec
			for i := 0; i < votes; i++ {
				a := rng.Intn(len(items))
				b := (a + 1 + rng.Intn(len(items)-1)) % len(items)
				if _, err := back.Vote(ctx, items[a].ID, items[b].ID); err != nil {
					errs <- err
					return
				}
			}
		}(int64(w))
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Fatal(err)
	}

	list, err := back.ListItems(ctx, "Coffee")
	if err != nil {
		t.Fatal(err)
	}

	var matches int
	for _, v := range list {
		matches += v.Matches
	}
	if matches != 2*workers*votes {
		t.Errorf("expected %d matches got %d, lost updates", 2*workers*votes, matches)
	}
	if n := countTestComparisons(t, back); n != workers*votes {
		t.Errorf("expected %d comparisons got %d", workers*votes, n)
	}

	// Replaying the log sequentially must land on the same ratings, which
	// only holds if no vote read a stale rating.
	expected := make(map[util.UUIDAsBlob]Item, len(list))
	for _, v := range list {
		expected[v.ID] = v
	}
	if err := back.Rerank(ctx, "Coffee"); err != nil {
		t.Fatal(err)
	}
	replayed, err := back.ListItems(ctx, "Coffee")
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range replayed {
		assertSameRating(t, expected[v.ID], v)
	}
}

func assertSameRating(t *testing.T, expected, actual Item) {
	t.Helper()

	if math.Abs(expected.Rating-actual.Rating) > 1e-9 ||
		math.Abs(expected.Deviation-actual.Deviation) > 1e-9 ||
		math.Abs(expected.Volatility-actual.Volatility) > 1e-9 ||
		expected.Matches != actual.Matches {
		t.Errorf(
			"%s: expected %v (%d matches) got %v (%d matches)",
			actual.Name,
			expected.GlickoRating(), expected.Matches,
			actual.GlickoRating(), actual.Matches,
		)
	}
}

func TestRerank(t *testing.T) {
	back := createTestBack(t)
	ctx := context.Background()
	items := createTestItems(t, back, "Coffee", "Espresso", "Filter", "Mocha", "Cortado")
	createTestItems(t, back, "Tea", "Sencha", "Genmaicha")

	rng := rand.New(rand.NewSource(1)) // nolint:gosec
	for i := 0; i < 30; i++ {
		a, b, err := selection.NewUniformRandom[Item](rng).Select(items)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := back.Vote(ctx, a.ID, b.ID); err != nil {
			t.Fatal(err)
		}
	}

	before, err := back.ListItems(ctx, "")
	if err != nil {
		t.Fatal(err)
	}

	if err := back.Rerank(ctx, "Coffee"); err != nil {
		t.Fatal(err)
	}

	after, err := back.ListItems(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(after) != len(before) {
		t.Fatalf("expected %d items got %d", len(before), len(after))
	}

	byID := make(map[util.UUIDAsBlob]Item, len(before))
	for _, v := range before {
		byID[v.ID] = v
	}
	for _, v := range after {
		assertSameRating(t, byID[v.ID], v)
	}

	if err := back.Rerank(ctx, "Nope"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected sql.ErrNoRows got %v", err)
	}
}

func TestRerankSkipsMovedItems(t *testing.T) {
	back := createTestBack(t)
	ctx := context.Background()
	items := createTestItems(t, back, "Coffee", "Espresso", "Filter", "Mocha")

	if _, err := back.Vote(ctx, items[0].ID, items[1].ID); err != nil {
		t.Fatal(err)
	}
	if _, err := back.Vote(ctx, items[0].ID, items[2].ID); err != nil {
		t.Fatal(err)
	}

	tea := "Tea"
	if _, _, err := back.UpdateItem(ctx, items[2].ID, ItemPatch{Category: &tea}); err != nil {
		t.Fatal(err)
	}

	if err := back.Rerank(ctx, "Coffee"); err != nil {
		t.Fatal(err)
	}

	winner, err := back.GetItem(ctx, items[0].ID)
	if err != nil {
		t.Fatal(err)
	}
	if winner.Matches != 1 {
		t.Errorf("expected the comparison against the moved item to be skipped, got %d matches", winner.Matches)
	}
}
