// Package glicko implements the Glicko-2 rating update for a single pairwise
// outcome, along with the score mapping used to display ratings.
//
// Everything in this package is pure: ratings go in, new ratings come out.
// Callers own persistence and serialization of concurrent updates.
package glicko

import (
	"errors"
	"fmt"

	glicko2 "github.com/zelenin/go-glicko2"
)

// Params holds every tunable of the rating system. The zero value is not
// usable, start from DefaultParams.
type Params struct {
	// Tau constrains how fast the volatility can change in a single update.
	Tau float64

	// Scale converts between the public 1500-centered scale and the internal
	// zero-centered one.
	Scale float64

	// Epsilon is the convergence tolerance of the volatility solver.
	Epsilon float64

	// MaxIterations bounds both the bracket search and the root-finding loop
	// of the volatility solver.
	MaxIterations int

	// ScoreSteepness is the slope of the logistic mapping from rating to the
	// 0-100 display score.
	ScoreSteepness float64

	BaseRating, BaseDeviation, BaseVolatility float64
}

func DefaultParams() Params {
	return Params{
		Tau:            0.5,
		Scale:          glicko2.RATING_SCALE_PARAMETER,
		Epsilon:        0.000001,
		MaxIterations:  100,
		ScoreSteepness: 0.005,

		BaseRating:     glicko2.RATING_BASE_R,
		BaseDeviation:  glicko2.RATING_BASE_RD,
		BaseVolatility: glicko2.RATING_BASE_SIGMA,
	}
}

func (p Params) Validate() error {
	checks := []struct {
		name  string
		value float64
	}{
		{"tau", p.Tau},
		{"scale", p.Scale},
		{"epsilon", p.Epsilon},
		{"max iterations", float64(p.MaxIterations)},
		{"score steepness", p.ScoreSteepness},
		{"base deviation", p.BaseDeviation},
		{"base volatility", p.BaseVolatility},
	}

	for _, v := range checks {
		if !(v.value > 0) {
			return fmt.Errorf("invalid glicko params: %s must be > 0, got %v", v.name, v.value)
		}
	}

	return nil
}

// NewRating returns the rating given to any newly created item.
func (p Params) NewRating() Rating {
	return Rating{
		Rating:     p.BaseRating,
		Deviation:  p.BaseDeviation,
		Volatility: p.BaseVolatility,
	}
}

var (
	// ErrNonConvergence means the volatility solver could not find a root
	// within Params.MaxIterations. This is a data integrity defect, not
	// something a caller should retry.
	ErrNonConvergence = errors.New("volatility solver did not converge")

	// ErrInvalidRating is returned for ratings with a non-positive (or
	// non-finite) deviation or volatility.
	ErrInvalidRating = errors.New("invalid rating")
)
