package score_test

import (
	"testing"

	"github.com/smallbiznis/credicheck/internal/bureau"
	"github.com/smallbiznis/credicheck/internal/score"
	"github.com/stretchr/testify/assert"
)

func TestDeriveDeterministic(t *testing.T) {
	a := score.Derive("ABCDE1234F", bureau.CIBIL, 1)
	b := score.Derive("ABCDE1234F", bureau.CIBIL, 1)
	assert.Equal(t, a, b)
}

func TestDeriveVariesByInput(t *testing.T) {
	base := score.Derive("ABCDE1234F", bureau.CIBIL, 1)

	t.Run("bureau changes seed", func(t *testing.T) {
		assert.NotEqual(t, score.Seed("ABCDE1234F", bureau.CIBIL, 1), score.Seed("ABCDE1234F", bureau.Experian, 1))
	})

	t.Run("revision changes seed", func(t *testing.T) {
		assert.NotEqual(t, score.Seed("ABCDE1234F", bureau.CIBIL, 1), score.Seed("ABCDE1234F", bureau.CIBIL, 2))
	})

	assert.GreaterOrEqual(t, base.Score, score.ScoreMin)
	assert.LessOrEqual(t, base.Score, score.ScoreMax)
}

func TestDeriveBounds(t *testing.T) {
	pans := []string{"ABCDE1234F", "FGHIJ5678K", "KLMNO9012P", "PQRST3456U", "UVWXY7890Z"}
	for _, pan := range pans {
		for _, b := range bureau.All() {
			for revision := 1; revision <= 5; revision++ {
				r := score.Derive(pan, b, revision)
				assert.GreaterOrEqual(t, r.Score, 650)
				assert.LessOrEqual(t, r.Score, 850)
				assert.Equal(t, score.BandFor(r.Score), r.Band)
				assert.Equal(t, score.RiskFor(r.Score), r.Risk)
			}
		}
	}
}

func TestBandThresholds(t *testing.T) {
	cases := []struct {
		score int
		band  score.Band
		risk  score.RiskLevel
	}{
		{300, score.BandPoor, score.RiskHigh},
		{650, score.BandPoor, score.RiskHigh},
		{651, score.BandFair, score.RiskMedium},
		{700, score.BandFair, score.RiskMedium},
		{701, score.BandGood, score.RiskMedium},
		{720, score.BandGood, score.RiskMedium},
		{721, score.BandGood, score.RiskLow},
		{750, score.BandGood, score.RiskLow},
		{751, score.BandExcellent, score.RiskLow},
		{900, score.BandExcellent, score.RiskLow},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.band, score.BandFor(tc.score), "score %d", tc.score)
		assert.Equal(t, tc.risk, score.RiskFor(tc.score), "score %d", tc.score)
	}
}
