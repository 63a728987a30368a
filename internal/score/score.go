// Package score derives simulated bureau scores. The derivation is a pure
// function of the consumer PAN, bureau, and report revision so a refreshed
// report is reproducible from its inputs alone.
package score

import (
	"fmt"
	"hash/fnv"

	"github.com/smallbiznis/credicheck/internal/bureau"
)

// Band labels a score the way bureau consumer reports do.
type Band string

const (
	BandPoor      Band = "POOR"
	BandFair      Band = "FAIR"
	BandGood      Band = "GOOD"
	BandExcellent Band = "EXCELLENT"
)

// RiskLevel is the lender-facing classification derived from the score.
type RiskLevel string

const (
	RiskHigh   RiskLevel = "HIGH"
	RiskMedium RiskLevel = "MEDIUM"
	RiskLow    RiskLevel = "LOW"
)

const (
	// ScoreMin and ScoreMax bound every derived score.
	ScoreMin = 300
	ScoreMax = 900

	baseFloor = 650
	baseSpan  = 200
)

// Result is a derived score with its classifications.
type Result struct {
	Score int       `json:"score"`
	Band  Band      `json:"band"`
	Risk  RiskLevel `json:"risk"`
}

// Seed hashes the identifying inputs with FNV-1a. The same seed drives both
// the score and the synthesized report content.
func Seed(pan string, b bureau.Bureau, revision int) uint64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s|%s|%d", pan, b, revision)
	return h.Sum64()
}

// Derive computes the score for a consumer at one bureau and revision.
func Derive(pan string, b bureau.Bureau, revision int) Result {
	seed := Seed(pan, b, revision)
	value := baseFloor + int(seed%(baseSpan+1))
	if value < ScoreMin {
		value = ScoreMin
	}
	if value > ScoreMax {
		value = ScoreMax
	}
	return Result{
		Score: value,
		Band:  BandFor(value),
		Risk:  RiskFor(value),
	}
}

// BandFor classifies a score into its consumer-facing band.
func BandFor(value int) Band {
	switch {
	case value > 750:
		return BandExcellent
	case value > 700:
		return BandGood
	case value > 650:
		return BandFair
	default:
		return BandPoor
	}
}

// RiskFor classifies a score into the lender-facing risk level.
func RiskFor(value int) RiskLevel {
	switch {
	case value > 720:
		return RiskLow
	case value > 650:
		return RiskMedium
	default:
		return RiskHigh
	}
}
