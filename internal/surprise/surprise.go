// Package surprise scores observed evidence against forecast timelines:
// how far ahead of or behind a prediction did a signpost's evidence arrive,
// in units of the forecast's own uncertainty.
package surprise

import (
	"time"

	"github.com/google/uuid"
)

// Direction states which side of the prediction the observation fell on.
// A zero-day difference counts as later: the evidence did not beat the
// forecast.
type Direction string

const (
	DirectionEarlier Direction = "earlier"
	DirectionLater   Direction = "later"
)

// Prediction is a forecast for when a signpost will be reached, with a
// symmetric uncertainty band in days. The newest prediction per signpost is
// the current one; older rows are kept as forecast history.
type Prediction struct {
	ID              uuid.UUID `json:"id"`
	SignpostCode    string    `json:"signpost_code"`
	PredictedDate   time.Time `json:"predicted_date"`
	UncertaintyDays int       `json:"uncertainty_days"`
	Source          string    `json:"source,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// Assessment is the surprise measurement for one observation.
// DaysDifference is signed: negative means the evidence arrived before the
// predicted date. Score is the absolute difference in uncertainty units.
type Assessment struct {
	DaysDifference int       `json:"days_difference"`
	Direction      Direction `json:"direction"`
	Score          float64   `json:"score"`
}

// Score compares an observation date against a prediction. Both dates are
// truncated to UTC days first, so intra-day timing never shifts the result.
// An uncertainty of zero days counts as one to keep the score finite.
func Score(predicted time.Time, uncertaintyDays int, observed time.Time) Assessment {
	days := int(day(observed).Sub(day(predicted)).Hours() / 24)

	direction := DirectionLater
	if days < 0 {
		direction = DirectionEarlier
	}

	unit := uncertaintyDays
	if unit < 1 {
		unit = 1
	}

	abs := days
	if abs < 0 {
		abs = -abs
	}

	return Assessment{
		DaysDifference: days,
		Direction:      direction,
		Score:          float64(abs) / float64(unit),
	}
}

func day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
