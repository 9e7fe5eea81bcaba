package glicko

import (
	"fmt"
	"math"
)

// Rating is the public-scale strength estimate of a single item.
type Rating struct {
	Rating     float64
	Deviation  float64
	Volatility float64
}

func (r Rating) validate() error {
	if math.IsNaN(r.Rating) || math.IsInf(r.Rating, 0) {
		return fmt.Errorf("%w: rating is %v", ErrInvalidRating, r.Rating)
	}

	if !(r.Deviation > 0) || math.IsInf(r.Deviation, 0) {
		return fmt.Errorf("%w: deviation is %v", ErrInvalidRating, r.Deviation)
	}

	if !(r.Volatility > 0) || math.IsInf(r.Volatility, 0) {
		return fmt.Errorf("%w: volatility is %v", ErrInvalidRating, r.Volatility)
	}

	return nil
}

// Range returns the 95% confidence interval of the rating (R±2RD).
func (r Rating) Range() (float64, float64) {
	return r.Rating - 2*r.Deviation, r.Rating + 2*r.Deviation
}

// ToInternal converts a public rating and deviation to mu and phi.
func (p Params) ToInternal(rating, rd float64) (mu, phi float64) {
	return (rating - p.BaseRating) / p.Scale, rd / p.Scale
}

// ToPublic is the inverse of ToInternal.
func (p Params) ToPublic(mu, phi float64) (rating, rd float64) {
	return mu*p.Scale + p.BaseRating, phi * p.Scale
}

// Score maps a rating to a display score in [0, 100], 50 being the base
// rating.
func (p Params) Score(rating float64) float64 {
	return 100 / (1 + math.Exp(-p.ScoreSteepness*(rating-p.BaseRating)))
}
