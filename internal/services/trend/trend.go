package trend

import (
	"math"

	"TradeTuner/internal/domain/models"
)

// Classify derives the trend direction and a [0,1] strength score from the
// last close and the 7/25/99-period moving averages. MA99 may be nil, in
// which case the long-term vote falls back to the medium-term one; with MA7
// or MA25 missing the trend is unknown.
func Classify(close float64, ma7, ma25, ma99 *float64) models.TrendAssessment {
	if ma7 == nil || ma25 == nil {
		return models.TrendAssessment{Direction: models.TrendUnknown, Strength: 0}
	}

	short := vote(close > *ma7)
	medium := vote(*ma7 > *ma25)
	long := medium
	if ma99 != nil {
		long = vote(*ma25 > *ma99)
	}

	var direction models.TrendDirection
	var strength float64
	switch {
	case short == medium && medium == long:
		direction, strength = short, 0.9
	case short == medium:
		direction, strength = short, 0.7
	case medium == long:
		direction, strength = medium, 0.6
	case short != medium && medium != long:
		direction, strength = models.TrendSideways, 0.3
	default:
		direction, strength = models.TrendSideways, 0.5
	}

	// Price far from MA25 either confirms the trend or signals exhaustion.
	if math.Abs(close / *ma25 - 1) > 0.05 {
		confirms := (direction == models.TrendUp && close > *ma25) ||
			(direction == models.TrendDown && close < *ma25)
		if confirms {
			strength = min(1.0, strength+0.1)
		} else {
			strength = max(0.1, strength-0.1)
		}
	}

	return models.TrendAssessment{Direction: direction, Strength: strength}
}

func vote(up bool) models.TrendDirection {
	if up {
		return models.TrendUp
	}
	return models.TrendDown
}
