package credit

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/compasso-erp/compasso-erp/internal/shared"
)

// WholeMonthsBetween returns the number of whole calendar months elapsed from
// from to to. A partial month does not count: the calendar-month difference
// is decremented when to's day-of-month has not yet reached from's. Never
// negative.
func WholeMonthsBetween(from, to time.Time) int {
	months := (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
	if to.Day() < from.Day() {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}

// Accrue derives the state of a record as of asOf. Interest compounds
// monthly over whole elapsed months only, applied piecewise between payment
// events so that earlier payments reduce the principal later interest
// compounds on. The running balance is floored at zero after every payment;
// overpayment is absorbed, never credited elsewhere. The walk is carried out
// unrounded and the outputs are rounded to 2 decimals at the end.
func Accrue(record CreditRecord, asOf time.Time) (AccrualResult, error) {
	rate := 0.0
	if record.InterestEnabled && record.MonthlyRatePercent > 0 {
		rate = record.MonthlyRatePercent / 100
	}

	payments := make([]PartialPayment, len(record.Payments))
	copy(payments, record.Payments)
	sort.Slice(payments, func(i, j int) bool {
		return payments[i].Date.Before(payments[j].Date)
	})

	balance := record.Principal
	cursor := record.StartDate
	monthsTotal := 0
	interestAccrued := 0.0

	grow := func(to time.Time) {
		m := WholeMonthsBetween(cursor, to)
		if m > 0 && rate > 0 && balance > 0 {
			grown := balance * math.Pow(1+rate, float64(m))
			interestAccrued += grown - balance
			balance = grown
		}
		monthsTotal += m
	}

	for _, p := range payments {
		if p.Date.Before(record.StartDate) {
			return AccrualResult{}, fmt.Errorf("credit: payment %s dated before origination: %w", p.ID, shared.ErrInvalidInput)
		}
		if balance <= 0 {
			break
		}
		grow(p.Date)
		balance -= p.Amount
		if balance < 0 {
			balance = 0
		}
		cursor = p.Date
	}
	grow(asOf)

	remaining := record.Principal - record.TotalPaid()
	if remaining < 0 {
		remaining = 0
	}
	if balance < 0 {
		balance = 0
	}
	return AccrualResult{
		MonthsTotal:         monthsTotal,
		InterestAccrued:     round(interestAccrued),
		BalanceWithInterest: round(balance),
		RemainingPrincipal:  round(remaining),
	}, nil
}

// Aggregate folds accrual results across records as of asOf. Paid principal
// is capped per record at that record's own principal; pending interest
// counts only records still carrying a positive balance. Records with a
// payment predating origination are skipped rather than poisoning the total.
func Aggregate(records []CreditRecord, asOf time.Time) PortfolioTotals {
	var totals PortfolioTotals
	for _, rec := range records {
		res, err := Accrue(rec, asOf)
		if err != nil {
			continue
		}
		totals.TotalPrincipal += rec.Principal
		paid := rec.TotalPaid()
		if paid > rec.Principal {
			paid = rec.Principal
		}
		totals.PaidPrincipal += paid
		if res.BalanceWithInterest > 0 {
			pending := res.BalanceWithInterest - res.RemainingPrincipal
			if pending > 0 {
				totals.PendingInterest += pending
			}
		}
		totals.TotalOutstandingWithInterest += res.BalanceWithInterest
	}
	totals.TotalPrincipal = round(totals.TotalPrincipal)
	totals.PaidPrincipal = round(totals.PaidPrincipal)
	totals.PendingInterest = round(totals.PendingInterest)
	totals.TotalOutstandingWithInterest = round(totals.TotalOutstandingWithInterest)
	return totals
}

func round(v float64) float64 {
	return math.Round(v*100) / 100
}
