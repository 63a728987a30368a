// Package synth generates simulated bureau report content. All randomness
// flows from a caller-provided seed so a report is reproducible from the
// consumer, bureau, and revision that identify it.
package synth

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	identitydomain "github.com/smallbiznis/credicheck/internal/identity/domain"
	"github.com/smallbiznis/credicheck/internal/score"
)

var (
	lenders = []string{
		"HDFC Bank", "SBI Cards", "ICICI Bank", "Axis Bank", "Bajaj Finance",
		"Kotak Mahindra", "Citibank NA", "American Express", "Bank of Baroda",
		"Punjab National Bank",
	}
	loanTypes = []string{
		"Personal Loan", "Credit Card", "Auto Loan", "Housing Loan",
		"Consumer Loan", "Business Loan", "Kisan Credit Card", "Gold Loan",
	}
	employers = []string{
		"TCS", "Infosys", "Reliance Industries", "Government of India",
		"Self Employed", "Adani Group", "Wipro",
	}
	monthNames = []string{
		"JAN", "FEB", "MAR", "APR", "MAY", "JUN",
		"JUL", "AUG", "SEP", "OCT", "NOV", "DEC",
	}
)

// PaymentHistoryMonth is one cell of the 24-month repayment grid. The status
// vocabulary follows the bureau convention: STD/000 are clean, XXX is not
// reported, SMA/SUB/DBT/LSS are progressively worse asset classifications.
type PaymentHistoryMonth struct {
	Month               string `json:"month"`
	Year                int    `json:"year"`
	Status              string `json:"status"`
	AssetClassification string `json:"asset_classification"`
	DaysPastDue         int    `json:"days_past_due"`
}

// Loan is one credit account tradeline.
type Loan struct {
	MemberName    string `json:"member_name"`
	AccountType   string `json:"account_type"`
	AccountNumber string `json:"account_number"`
	Ownership     string `json:"ownership"`

	DateOpened      string `json:"date_opened"`
	DateLastPayment string `json:"date_last_payment"`
	DateReported    string `json:"date_reported"`
	DateClosed      string `json:"date_closed,omitempty"`

	// Credit cards report limits; every other type reports a sanctioned
	// amount and tenure.
	SanctionedAmount int64 `json:"sanctioned_amount"`
	CreditLimit      int64 `json:"credit_limit,omitempty"`
	CashLimit        int64 `json:"cash_limit,omitempty"`

	CurrentBalance   int64  `json:"current_balance"`
	AmountOverdue    int64  `json:"amount_overdue"`
	RateOfInterest   string `json:"rate_of_interest"`
	RepaymentTenure  int    `json:"repayment_tenure,omitempty"`
	EMIAmount        int64  `json:"emi_amount,omitempty"`
	PaymentFrequency string `json:"payment_frequency"`

	CollateralType  string `json:"collateral_type"`
	CollateralValue int64  `json:"collateral_value"`

	SuitFiledStatus     string `json:"suit_filed_status"`
	WilfulDefaultStatus string `json:"wilful_default_status"`

	WrittenOffStatus      string `json:"written_off_status,omitempty"`
	WrittenOffAmountTotal int64  `json:"written_off_amount_total,omitempty"`
	SettlementAmount      int64  `json:"settlement_amount,omitempty"`
	SettlementDate        string `json:"settlement_date,omitempty"`

	Status         string                `json:"status"`
	PaymentHistory []PaymentHistoryMonth `json:"payment_history"`
}

// Enquiry is a lender pull recorded against the file.
type Enquiry struct {
	MemberName string `json:"member_name"`
	Date       string `json:"date"`
	Purpose    string `json:"purpose"`
	Amount     int64  `json:"amount"`
}

// AccountsSummary is counted from the generated loans, never randomized on
// its own.
type AccountsSummary struct {
	TotalLoans      int `json:"total_loans"`
	ActiveLoans     int `json:"active_loans"`
	ClosedLoans     int `json:"closed_loans"`
	OverdueAccounts int `json:"overdue_accounts"`
}

type Address struct {
	Address       string `json:"address"`
	Category      string `json:"category"`
	ResidenceCode string `json:"residence_code"`
	DateReported  string `json:"date_reported"`
}

type Identification struct {
	Type      string `json:"type"`
	Number    string `json:"number"`
	IssueDate string `json:"issue_date,omitempty"`
}

type Contact struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type Employment struct {
	Occupation        string `json:"occupation"`
	EmployerName      string `json:"employer_name"`
	NetGrossIndicator string `json:"net_gross_indicator"`
	Frequency         string `json:"frequency"`
	DateReported      string `json:"date_reported"`
}

// ConsumerSection is the identity snapshot stamped into a report at
// generation time. Later profile edits never touch it.
type ConsumerSection struct {
	Name            string           `json:"name"`
	DOB             string           `json:"dob"`
	Gender          string           `json:"gender"`
	PAN             string           `json:"pan"`
	Mobile          string           `json:"mobile"`
	Addresses       []Address        `json:"addresses"`
	Identifications []Identification `json:"identifications"`
	Contacts        []Contact        `json:"contacts"`
	Employments     []Employment     `json:"employments"`
}

// Content is everything the generator produces for one bureau report.
type Content struct {
	ReferenceID   string          `json:"reference_id"`
	ControlNumber string          `json:"control_number"`
	Consumer      ConsumerSection `json:"consumer"`
	Summary       AccountsSummary `json:"accounts_summary"`
	Loans         []Loan          `json:"loans"`
	Enquiries     []Enquiry       `json:"enquiries"`
}

// Generate synthesizes report content for a consumer. The risk level shapes
// the loan count, overdue probability, and payment-history cleanliness.
func Generate(seed uint64, risk score.RiskLevel, consumer *identitydomain.User, now time.Time) Content {
	rng := rand.New(rand.NewSource(int64(seed)))

	loans := generateLoans(rng, risk, now)
	return Content{
		ReferenceID:   fmt.Sprintf("REF-%06d", rng.Intn(1000000)),
		ControlNumber: fmt.Sprintf("%09d", 100000000+rng.Intn(900000000)),
		Consumer:      consumerSection(rng, consumer, now),
		Summary:       summarize(loans),
		Loans:         loans,
		Enquiries:     generateEnquiries(rng, now),
	}
}

func loanCount(rng *rand.Rand, risk score.RiskLevel) int {
	switch risk {
	case score.RiskLow:
		return 2 + rng.Intn(3) // 2-4
	case score.RiskMedium:
		return 2 + rng.Intn(5) // 2-6
	default:
		return 3 + rng.Intn(6) // 3-8
	}
}

func overdueProbability(risk score.RiskLevel) float64 {
	switch risk {
	case score.RiskLow:
		return 0.05
	case score.RiskMedium:
		return 0.20
	default:
		return 0.45
	}
}

func generateLoans(rng *rand.Rand, risk score.RiskLevel, now time.Time) []Loan {
	count := loanCount(rng, risk)
	loans := make([]Loan, 0, count)

	for i := 0; i < count; i++ {
		loanType := loanTypes[rng.Intn(len(loanTypes))]
		isCreditCard := loanType == "Credit Card"
		isOpen := rng.Float64() > 0.3
		amount := int64(10000 + rng.Intn(500000))

		var overdue int64
		if isOpen && rng.Float64() < overdueProbability(risk) {
			overdue = int64(1 + rng.Intn(5000))
		}

		isWrittenOff := rng.Float64() > 0.95
		isSettled := !isWrittenOff && rng.Float64() > 0.95

		loan := Loan{
			MemberName:       lenders[rng.Intn(len(lenders))],
			AccountType:      loanType,
			AccountNumber:    fmt.Sprintf("XXXX%06d", 100000+rng.Intn(900000)),
			Ownership:        "Individual",
			DateOpened:       pastDate(rng, now, 365*8),
			DateLastPayment:  now.Format("2006-01-02"),
			DateReported:     now.Format("2006-01-02"),
			AmountOverdue:    overdue,
			RateOfInterest:   fmt.Sprintf("%.1f%%", 8+rng.Float64()*10),
			PaymentFrequency: "Monthly",
			SuitFiledStatus:  "No Suit Filed",
			PaymentHistory:   generatePaymentHistory(rng, risk, now, 24),
		}

		if isCreditCard {
			loan.CreditLimit = amount
			loan.CashLimit = amount / 5
		} else {
			loan.SanctionedAmount = amount
			loan.RepaymentTenure = 12 + rng.Intn(49)
			loan.EMIAmount = amount / 24
		}

		if isOpen {
			loan.CurrentBalance = amount * 6 / 10
		} else {
			loan.DateClosed = pastDate(rng, now, 365)
		}

		switch loanType {
		case "Housing Loan":
			loan.CollateralType = "Property"
			loan.CollateralValue = amount * 12 / 10
		case "Auto Loan":
			loan.CollateralType = "Vehicle"
		default:
			loan.CollateralType = "None"
		}

		if rng.Float64() > 0.98 {
			loan.SuitFiledStatus = "Suit Filed"
		}
		loan.WilfulDefaultStatus = "No"
		if rng.Float64() > 0.99 {
			loan.WilfulDefaultStatus = "Yes"
		}

		switch {
		case isWrittenOff:
			loan.Status = "Written Off"
			loan.WrittenOffStatus = "Written Off"
			loan.WrittenOffAmountTotal = amount * 4 / 10
		case isSettled:
			loan.Status = "Settled"
			loan.WrittenOffStatus = "Settled"
			loan.SettlementAmount = amount / 2
			loan.SettlementDate = now.Format("2006-01-02")
		case isOpen:
			loan.Status = "Active"
		default:
			loan.Status = "Closed"
		}

		loans = append(loans, loan)
	}
	return loans
}

func generatePaymentHistory(rng *rand.Rand, risk score.RiskLevel, now time.Time, months int) []PaymentHistoryMonth {
	// Lower risk draws from a cleaner status pool.
	var statuses []string
	switch risk {
	case score.RiskLow:
		statuses = []string{"STD", "STD", "STD", "STD", "STD", "STD", "STD", "000", "000", "XXX"}
	case score.RiskMedium:
		statuses = []string{"STD", "STD", "STD", "STD", "STD", "000", "XXX", "SMA", "STD", "SUB"}
	default:
		statuses = []string{"STD", "STD", "STD", "000", "XXX", "SMA", "SUB", "DBT", "LSS", "SMA"}
	}

	history := make([]PaymentHistoryMonth, 0, months)
	cursor := now
	for i := 0; i < months; i++ {
		status := statuses[rng.Intn(len(statuses))]

		classification := status
		if status == "000" || status == "XXX" {
			classification = "STD"
		}
		daysPastDue := 0
		if status != "STD" && status != "000" && status != "XXX" {
			daysPastDue = 1 + rng.Intn(90)
		}

		history = append(history, PaymentHistoryMonth{
			Month:               monthNames[cursor.Month()-1],
			Year:                cursor.Year(),
			Status:              status,
			AssetClassification: classification,
			DaysPastDue:         daysPastDue,
		})
		cursor = cursor.AddDate(0, -1, 0)
	}
	return history
}

func generateEnquiries(rng *rand.Rand, now time.Time) []Enquiry {
	count := rng.Intn(4)
	enquiries := make([]Enquiry, 0, count)
	for i := 0; i < count; i++ {
		enquiries = append(enquiries, Enquiry{
			MemberName: lenders[rng.Intn(len(lenders))],
			Date:       pastDate(rng, now, 365),
			Purpose:    loanTypes[rng.Intn(len(loanTypes))],
			Amount:     int64(50000 + rng.Intn(100000)),
		})
	}
	return enquiries
}

func summarize(loans []Loan) AccountsSummary {
	summary := AccountsSummary{TotalLoans: len(loans)}
	for _, loan := range loans {
		if loan.DateClosed == "" {
			summary.ActiveLoans++
		} else {
			summary.ClosedLoans++
		}
		if loan.AmountOverdue > 0 {
			summary.OverdueAccounts++
		}
	}
	return summary
}

func consumerSection(rng *rand.Rand, consumer *identitydomain.User, now time.Time) ConsumerSection {
	section := ConsumerSection{
		Name:   consumer.FullName,
		DOB:    consumer.DOB,
		Gender: consumer.Gender,
		PAN:    consumer.PAN,
		Mobile: consumer.Mobile,
	}

	var stored []string
	if len(consumer.Addresses) > 0 {
		_ = json.Unmarshal(consumer.Addresses, &stored)
	}
	for idx, addr := range stored {
		category, code := "Residence", "02"
		if idx == 0 {
			category, code = "Permanent", "01"
		}
		section.Addresses = append(section.Addresses, Address{
			Address:       addr,
			Category:      category,
			ResidenceCode: code,
			DateReported:  now.Format("2006-01-02"),
		})
	}
	if len(section.Addresses) < 2 {
		section.Addresses = append(section.Addresses, Address{
			Address:       "123, Corporate Park, Financial District, Mumbai - 400001",
			Category:      "Office",
			ResidenceCode: "03",
			DateReported:  "2022-05-10",
		})
	}

	section.Identifications = []Identification{
		{Type: "PAN", Number: consumer.PAN, IssueDate: "2015-06-01"},
	}
	if consumer.IDType != "" && consumer.IDType != "PAN" {
		section.Identifications = append(section.Identifications, Identification{
			Type:   consumer.IDType,
			Number: consumer.IDNumber,
		})
	}
	if rng.Float64() > 0.5 {
		section.Identifications = append(section.Identifications, Identification{
			Type:      "Voter ID",
			Number:    fmt.Sprintf("ABC%07d", rng.Intn(10000000)),
			IssueDate: "2018-01-01",
		})
	}

	section.Contacts = []Contact{
		{Type: "Mobile", Value: consumer.Mobile},
	}
	if consumer.Email != "" {
		section.Contacts = append(section.Contacts, Contact{Type: "Email", Value: consumer.Email})
	}

	section.Employments = []Employment{{
		Occupation:        consumer.Occupation,
		EmployerName:      employers[rng.Intn(len(employers))],
		NetGrossIndicator: "Gross",
		Frequency:         "Annual",
		DateReported:      now.Format("2006-01-02"),
	}}
	return section
}

func pastDate(rng *rand.Rand, now time.Time, maxDaysAgo int) string {
	return now.AddDate(0, 0, -rng.Intn(maxDaysAgo+1)).Format("2006-01-02")
}
