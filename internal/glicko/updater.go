package glicko

import (
	"fmt"
	"math"
)

// Updater turns one pairwise outcome into two new ratings. It holds no
// mutable state and is safe for concurrent use.
type Updater struct {
	params Params
}

func NewUpdater(params Params) (*Updater, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	return &Updater{params: params}, nil
}

func (u *Updater) Params() Params {
	return u.params
}

// Update returns the new ratings of winner and loser after winner beat loser.
// Both sides are computed from the same pre-match snapshot, so the result
// does not depend on which side is updated first.
func (u *Updater) Update(winner, loser Rating) (Rating, Rating, error) {
	if err := winner.validate(); err != nil {
		return Rating{}, Rating{}, fmt.Errorf("winner: %w", err)
	}
	if err := loser.validate(); err != nil {
		return Rating{}, Rating{}, fmt.Errorf("loser: %w", err)
	}

	wMu, wPhi := u.params.ToInternal(winner.Rating, winner.Deviation)
	lMu, lPhi := u.params.ToInternal(loser.Rating, loser.Deviation)

	newWinner, err := u.params.update(
		internal{mu: wMu, phi: wPhi, sigma: winner.Volatility},
		lMu, lPhi, 1,
	)
	if err != nil {
		return Rating{}, Rating{}, fmt.Errorf("winner: %w", err)
	}

	newLoser, err := u.params.update(
		internal{mu: lMu, phi: lPhi, sigma: loser.Volatility},
		wMu, wPhi, 0,
	)
	if err != nil {
		return Rating{}, Rating{}, fmt.Errorf("loser: %w", err)
	}

	return u.params.toRating(newWinner), u.params.toRating(newLoser), nil
}

type internal struct {
	mu, phi, sigma float64
}

func (p Params) toRating(s internal) Rating {
	r, rd := p.ToPublic(s.mu, s.phi)
	return Rating{Rating: r, Deviation: rd, Volatility: s.sigma}
}

// g reduces the impact of an opponent whose rating is uncertain.
func g(phi float64) float64 {
	return 1 / math.Sqrt(1+3*phi*phi/(math.Pi*math.Pi))
}

// expected is the modeled probability of mu beating muJ.
func expected(mu, muJ, phiJ float64) float64 {
	return 1 / (1 + math.Exp(-g(phiJ)*(mu-muJ)))
}

// update applies a single game against (muJ, phiJ) with the observed score
// (1 for a win, 0 for a loss) to one side.
//
// When the ratings are so far apart (about 6400 points with small
// deviations) that the expected score rounds to exactly 0 or 1, the
// estimated variance is infinite and ErrNonConvergence is returned for both
// the expected and the upset outcome. Ratings are left untouched.
func (p Params) update(own internal, muJ, phiJ, score float64) (internal, error) {
	gJ := g(phiJ)
	e := expected(own.mu, muJ, phiJ)
	v := 1 / (gJ * gJ * e * (1 - e))
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return internal{}, fmt.Errorf("%w: expected score saturated at %v", ErrNonConvergence, e)
	}
	delta := v * gJ * (score - e)

	sigma, err := p.volatility(own.sigma, own.phi, v, delta)
	if err != nil {
		return internal{}, err
	}

	phiStar := math.Sqrt(own.phi*own.phi + sigma*sigma)
	phi := 1 / math.Sqrt(1/(phiStar*phiStar)+1/v)

	return internal{
		mu:    own.mu + phi*phi*gJ*(score-e),
		phi:   phi,
		sigma: sigma,
	}, nil
}
