package synth_test

import (
	"testing"
	"time"

	"github.com/smallbiznis/credicheck/internal/bureau"
	identitydomain "github.com/smallbiznis/credicheck/internal/identity/domain"
	"github.com/smallbiznis/credicheck/internal/report/synth"
	"github.com/smallbiznis/credicheck/internal/score"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func testConsumer() *identitydomain.User {
	return &identitydomain.User{
		FullName:   "Asha Verma",
		PAN:        "ABCDE1234F",
		Mobile:     "9876543210",
		Email:      "asha@example.com",
		DOB:        "1991-04-12",
		Gender:     "F",
		Addresses:  datatypes.JSON(`["14 MG Road, Pune"]`),
		Occupation: "SALARIED",
		IDType:     "AADHAAR",
		IDNumber:   "1234-5678-9012",
	}
}

var validStatuses = map[string]bool{
	"STD": true, "000": true, "XXX": true, "SMA": true,
	"SUB": true, "DBT": true, "LSS": true,
}

func TestGenerateDeterministic(t *testing.T) {
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	seed := score.Seed("ABCDE1234F", bureau.CIBIL, 1)

	a := synth.Generate(seed, score.RiskMedium, testConsumer(), now)
	b := synth.Generate(seed, score.RiskMedium, testConsumer(), now)
	assert.Equal(t, a, b)

	c := synth.Generate(score.Seed("ABCDE1234F", bureau.CIBIL, 2), score.RiskMedium, testConsumer(), now)
	assert.NotEqual(t, a.ReferenceID, c.ReferenceID)
}

func TestSummaryCountedFromLoans(t *testing.T) {
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	for _, b := range bureau.All() {
		for revision := 1; revision <= 10; revision++ {
			seed := score.Seed("ABCDE1234F", b, revision)
			content := synth.Generate(seed, score.RiskMedium, testConsumer(), now)

			assert.Equal(t, len(content.Loans), content.Summary.TotalLoans)
			assert.Equal(t, content.Summary.TotalLoans, content.Summary.ActiveLoans+content.Summary.ClosedLoans)

			overdue := 0
			for _, loan := range content.Loans {
				if loan.AmountOverdue > 0 {
					overdue++
				}
			}
			assert.Equal(t, overdue, content.Summary.OverdueAccounts)
		}
	}
}

func TestLoanCountRangesByRisk(t *testing.T) {
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	cases := []struct {
		risk     score.RiskLevel
		min, max int
	}{
		{score.RiskLow, 2, 4},
		{score.RiskMedium, 2, 6},
		{score.RiskHigh, 3, 8},
	}
	for _, tc := range cases {
		for seed := uint64(0); seed < 50; seed++ {
			content := synth.Generate(seed, tc.risk, testConsumer(), now)
			assert.GreaterOrEqual(t, len(content.Loans), tc.min, "risk %s", tc.risk)
			assert.LessOrEqual(t, len(content.Loans), tc.max, "risk %s", tc.risk)
		}
	}
}

func TestLoanShape(t *testing.T) {
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	for seed := uint64(0); seed < 30; seed++ {
		content := synth.Generate(seed, score.RiskHigh, testConsumer(), now)
		for _, loan := range content.Loans {
			require.Len(t, loan.PaymentHistory, 24)
			for _, month := range loan.PaymentHistory {
				assert.True(t, validStatuses[month.Status], "status %q", month.Status)
			}

			if loan.AccountType == "Credit Card" {
				assert.Zero(t, loan.SanctionedAmount)
				assert.Positive(t, loan.CreditLimit)
				assert.Positive(t, loan.CashLimit)
				assert.Zero(t, loan.RepaymentTenure)
			} else {
				assert.Positive(t, loan.SanctionedAmount)
				assert.Zero(t, loan.CreditLimit)
			}
		}

		assert.LessOrEqual(t, len(content.Enquiries), 3)
	}
}

func TestConsumerSectionSnapshotsIdentity(t *testing.T) {
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	content := synth.Generate(42, score.RiskLow, testConsumer(), now)

	assert.Equal(t, "Asha Verma", content.Consumer.Name)
	assert.Equal(t, "ABCDE1234F", content.Consumer.PAN)
	require.NotEmpty(t, content.Consumer.Addresses)
	assert.Equal(t, "Permanent", content.Consumer.Addresses[0].Category)
	assert.GreaterOrEqual(t, len(content.Consumer.Addresses), 2)

	require.NotEmpty(t, content.Consumer.Identifications)
	assert.Equal(t, "PAN", content.Consumer.Identifications[0].Type)

	require.Len(t, content.Consumer.Employments, 1)
	assert.NotEmpty(t, content.Consumer.Employments[0].EmployerName)
}
