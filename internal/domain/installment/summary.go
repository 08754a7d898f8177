package installment

import (
	"time"

	"github.com/shopspring/decimal"
)

// Summary totals the installments of one transaction as of a point in time
type Summary struct {
	Count         int             `json:"count"`
	PaidCount     int             `json:"paid_count"`
	OverdueCount  int             `json:"overdue_count"`
	Scheduled     decimal.Decimal `json:"scheduled"`
	Collected     decimal.Decimal `json:"collected"`
	Outstanding   decimal.Decimal `json:"outstanding"`
	OverdueAmount decimal.Decimal `json:"overdue_amount"`
	Overpaid      decimal.Decimal `json:"overpaid"`
}

// Settled reports whether every installment is paid
func (s Summary) Settled() bool {
	return s.Count > 0 && s.PaidCount == s.Count
}

// Summarize totals installments as of now
func Summarize(installments []Installment, now time.Time) Summary {
	s := Summary{
		Scheduled:     decimal.Zero,
		Collected:     decimal.Zero,
		Outstanding:   decimal.Zero,
		OverdueAmount: decimal.Zero,
		Overpaid:      decimal.Zero,
	}
	for i := range installments {
		inst := &installments[i]
		s.Count++
		s.Scheduled = s.Scheduled.Add(inst.Amount)
		s.Collected = s.Collected.Add(inst.PaidAmount)
		s.Outstanding = s.Outstanding.Add(inst.Outstanding())
		s.Overpaid = s.Overpaid.Add(inst.Overpayment())

		switch inst.StatusAt(now) {
		case StatusPaid:
			s.PaidCount++
		case StatusOverdue:
			s.OverdueCount++
			s.OverdueAmount = s.OverdueAmount.Add(inst.Outstanding())
		}
	}
	return s
}
