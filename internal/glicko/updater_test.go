package glicko // nolint:testpackage

import (
	"errors"
	"math"
	"testing"

	glicko2 "github.com/zelenin/go-glicko2"
)

func newTestUpdater(t *testing.T) *Updater {
	t.Helper()

	u, err := NewUpdater(DefaultParams())
	if err != nil {
		t.Fatal(err)
	}

	return u
}

func TestSingleMatchFromDefaults(t *testing.T) {
	u := newTestUpdater(t)
	params := u.Params()

	winner, loser, err := u.Update(params.NewRating(), params.NewRating())
	if err != nil {
		t.Fatal(err)
	}

	// Hand computed from the paper's formulas.
	cases := []struct {
		name             string
		actual, expected float64
	}{
		{"winner rating", winner.Rating, 1662.3109},
		{"winner deviation", winner.Deviation, 290.3190},
		{"loser rating", loser.Rating, 1337.6891},
		{"loser deviation", loser.Deviation, 290.3190},
		{"winner volatility", winner.Volatility, 0.0599997},
		{"loser volatility", loser.Volatility, 0.0599997},
	}

	for _, v := range cases {
		if math.Abs(v.actual-v.expected) > 1e-3 {
			t.Errorf("%s: expected %f got %f", v.name, v.expected, v.actual)
		}
	}

	if winner.Rating <= 1500 || winner.Rating >= 1700 {
		t.Errorf("winner moved out of bounds: %f", winner.Rating)
	}
	if loser.Rating >= 1500 || loser.Rating <= 1300 {
		t.Errorf("loser moved out of bounds: %f", loser.Rating)
	}
	if winner.Deviation >= 350 || loser.Deviation >= 350 {
		t.Errorf("deviation did not shrink: %f %f", winner.Deviation, loser.Deviation)
	}
	if ws, ls := params.Score(winner.Rating), params.Score(loser.Rating); ws <= 50 || ls >= 50 {
		t.Errorf("scores do not straddle 50: winner %f loser %f", ws, ls)
	}
}

func TestUpdateIsSymmetric(t *testing.T) {
	u := newTestUpdater(t)
	a, b := u.Params().NewRating(), u.Params().NewRating()

	w1, l1, err := u.Update(a, b)
	if err != nil {
		t.Fatal(err)
	}
	w2, l2, err := u.Update(b, a)
	if err != nil {
		t.Fatal(err)
	}

	if w1 != w2 || l1 != l2 {
		t.Errorf("swapping equal sides changed the outcome: %v/%v vs %v/%v", w1, l1, w2, l2)
	}

	// Mirror images around the base rating.
	if d := (w1.Rating - 1500) - (1500 - l1.Rating); math.Abs(d) > 1e-9 {
		t.Errorf("gains and losses are not mirrored, off by %g", d)
	}
	if w1.Deviation != l1.Deviation || w1.Volatility != l1.Volatility {
		t.Errorf("expected identical uncertainty, got %v and %v", w1, l1)
	}
}

func TestUpdateUsesPreMatchSnapshot(t *testing.T) {
	u := newTestUpdater(t)
	winner := Rating{Rating: 1700, Deviation: 80, Volatility: 0.06}
	loser := Rating{Rating: 1400, Deviation: 200, Volatility: 0.05}

	newWinner, newLoser, err := u.Update(winner, loser)
	if err != nil {
		t.Fatal(err)
	}

	// Each side alone against the other's pre-match rating must give the
	// same values as the combined update.
	params := u.Params()
	wMu, wPhi := params.ToInternal(winner.Rating, winner.Deviation)
	lMu, lPhi := params.ToInternal(loser.Rating, loser.Deviation)

	w, err := params.update(internal{mu: wMu, phi: wPhi, sigma: winner.Volatility}, lMu, lPhi, 1)
	if err != nil {
		t.Fatal(err)
	}
	l, err := params.update(internal{mu: lMu, phi: lPhi, sigma: loser.Volatility}, wMu, wPhi, 0)
	if err != nil {
		t.Fatal(err)
	}

	if params.toRating(w) != newWinner || params.toRating(l) != newLoser {
		t.Errorf("expected %v/%v got %v/%v", params.toRating(w), params.toRating(l), newWinner, newLoser)
	}
}

func TestUpdatePreservesInvariants(t *testing.T) {
	u := newTestUpdater(t)
	ratings := []float64{1000, 1250, 1500, 1750, 2000}
	deviations := []float64{30, 100, 200, 350}
	volatilities := []float64{0.01, 0.06, 0.2}

	var all []Rating
	for _, r := range ratings {
		for _, rd := range deviations {
			for _, s := range volatilities {
				all = append(all, Rating{Rating: r, Deviation: rd, Volatility: s})
			}
		}
	}

	for _, a := range all {
		for _, b := range all {
			w, l, err := u.Update(a, b)
			if err != nil {
				t.Fatalf("%v beats %v: %s", a, b, err)
			}

			for _, v := range []Rating{w, l} {
				if !(v.Deviation > 0) || !(v.Volatility > 0) {
					t.Fatalf("%v beats %v: invalid output %v", a, b, v)
				}
			}

			if w.Rating <= a.Rating {
				t.Errorf("%v beats %v: winner did not gain (%f)", a, b, w.Rating)
			}
			if l.Rating >= b.Rating {
				t.Errorf("%v beats %v: loser did not lose (%f)", a, b, l.Rating)
			}
		}
	}
}

func TestUpdateRejectsInvalidRatings(t *testing.T) {
	u := newTestUpdater(t)
	valid := u.Params().NewRating()

	invalid := []Rating{
		{Rating: 1500, Deviation: 0, Volatility: 0.06},
		{Rating: 1500, Deviation: -12, Volatility: 0.06},
		{Rating: 1500, Deviation: 350, Volatility: 0},
		{Rating: math.NaN(), Deviation: 350, Volatility: 0.06},
		{Rating: 1500, Deviation: math.Inf(1), Volatility: 0.06},
	}

	for k, v := range invalid {
		if _, _, err := u.Update(v, valid); !errors.Is(err, ErrInvalidRating) {
			t.Errorf("case #%d as winner: expected ErrInvalidRating, got %v", k, err)
		}
		if _, _, err := u.Update(valid, v); !errors.Is(err, ErrInvalidRating) {
			t.Errorf("case #%d as loser: expected ErrInvalidRating, got %v", k, err)
		}
	}
}

func TestUpdateNonConvergence(t *testing.T) {
	params := DefaultParams()
	params.MaxIterations = 1
	params.Epsilon = 1e-12

	u, err := NewUpdater(params)
	if err != nil {
		t.Fatal(err)
	}

	_, _, err = u.Update(params.NewRating(), params.NewRating())
	if !errors.Is(err, ErrNonConvergence) {
		t.Fatalf("expected ErrNonConvergence, got %v", err)
	}
}

func TestNewUpdaterValidatesParams(t *testing.T) {
	mutations := []func(*Params){
		func(p *Params) { p.Tau = 0 },
		func(p *Params) { p.Scale = -1 },
		func(p *Params) { p.Epsilon = 0 },
		func(p *Params) { p.MaxIterations = 0 },
		func(p *Params) { p.ScoreSteepness = math.NaN() },
		func(p *Params) { p.BaseVolatility = 0 },
	}

	for k, mutate := range mutations {
		params := DefaultParams()
		mutate(&params)
		if _, err := NewUpdater(params); err == nil {
			t.Errorf("case #%d: expected an error", k)
		}
	}
}

func TestUpdateMatchesReferenceLibrary(t *testing.T) {
	u := newTestUpdater(t)

	cases := []struct{ winner, loser Rating }{
		{Rating{1500, 350, 0.06}, Rating{1500, 350, 0.06}},
		{Rating{1500, 200, 0.06}, Rating{1400, 30, 0.06}},
		{Rating{1400, 30, 0.06}, Rating{1500, 200, 0.06}},
		{Rating{1200, 80, 0.05}, Rating{1900, 120, 0.07}},
		{Rating{2300, 50, 0.09}, Rating{1100, 300, 0.04}},
	}

	for k, v := range cases {
		winner, loser, err := u.Update(v.winner, v.loser)
		if err != nil {
			t.Fatalf("#%d: %s", k, err)
		}

		p1 := glicko2.NewPlayer(glicko2.NewRating(v.winner.Rating, v.winner.Deviation, v.winner.Volatility))
		p2 := glicko2.NewPlayer(glicko2.NewRating(v.loser.Rating, v.loser.Deviation, v.loser.Volatility))
		period := glicko2.NewRatingPeriod()
		period.AddMatch(p1, p2, glicko2.MATCH_RESULT_WIN)
		period.Calculate()

		for _, side := range []struct {
			name     string
			actual   Rating
			expected *glicko2.Rating
		}{
			{"winner", winner, p1.Rating()},
			{"loser", loser, p2.Rating()},
		} {
			if math.Abs(side.actual.Rating-side.expected.R()) > 1e-6 ||
				math.Abs(side.actual.Deviation-side.expected.Rd()) > 1e-6 ||
				math.Abs(side.actual.Volatility-side.expected.Sigma()) > 1e-7 {
				t.Errorf(
					"#%d %s: expected %.9f/%.9f/%.9f got %.9f/%.9f/%.9f", k, side.name,
					side.expected.R(), side.expected.Rd(), side.expected.Sigma(),
					side.actual.Rating, side.actual.Deviation, side.actual.Volatility,
				)
			}
		}
	}
}

func TestUpdateSaturatedExpectation(t *testing.T) {
	u := newTestUpdater(t)

	low := Rating{Rating: 0, Deviation: 1, Volatility: 0.06}
	high := Rating{Rating: 6400, Deviation: 1, Volatility: 0.06}

	if _, _, err := u.Update(low, high); !errors.Is(err, ErrNonConvergence) {
		t.Errorf("expected ErrNonConvergence on an upset, got %v", err)
	}
	if _, _, err := u.Update(high, low); !errors.Is(err, ErrNonConvergence) {
		t.Errorf("expected ErrNonConvergence on the expected outcome, got %v", err)
	}

	// Large but representable gaps still update.
	if _, _, err := u.Update(Rating{0, 1, 0.06}, Rating{3000, 1, 0.06}); err != nil {
		t.Errorf("expected a 3000 points gap to update, got %v", err)
	}
}
