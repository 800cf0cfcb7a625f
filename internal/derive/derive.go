// Package derive computes display and decision values from stored entity
// fields: invoice totals and balances, overdue flags, progress percentages and
// human readable file sizes. All functions are pure.
package derive

import (
	"math"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// InvoiceAmounts returns the tax amount and total for a subtotal and a tax
// rate given in percent. The tax amount is rounded half-up to two decimals.
func InvoiceAmounts(subtotal, taxRate decimal.Decimal) (taxAmount, totalAmount decimal.Decimal) {
	taxAmount = subtotal.Mul(taxRate).Div(hundred).Round(2)
	totalAmount = subtotal.Add(taxAmount)
	return taxAmount, totalAmount
}

// InvoiceBalance returns total minus paid. Overpayment yields a negative balance.
func InvoiceBalance(total, paid decimal.Decimal) decimal.Decimal {
	return total.Sub(paid)
}

// Tone is a presentation hint for a derived value
type Tone string

const (
	ToneDanger    Tone = "danger"
	ToneWarning   Tone = "warning"
	ToneSuccess   Tone = "success"
	ToneSecondary Tone = "secondary"
)

// BalanceTone flags an outstanding balance as danger and a settled or
// overpaid one as success.
func BalanceTone(balance decimal.Decimal) Tone {
	if balance.IsPositive() {
		return ToneDanger
	}
	return ToneSuccess
}

// InvoiceIsOverdue reports whether the due date has passed and the invoice is
// not paid. It is independent of the stored status: a cancelled invoice past
// its due date is still overdue, and status "overdue" does not imply true.
func InvoiceIsOverdue(dueDate time.Time, status string, now time.Time) bool {
	return dueDate.Before(now) && status != "paid"
}

// LineItemAmount returns quantity × rate rounded to two decimals
func LineItemAmount(quantity, rate decimal.Decimal) decimal.Decimal {
	return quantity.Mul(rate).Round(2)
}

// ProgressPercent returns min(actual/estimated × 100, 100) rounded to the
// nearest integer. The second result is false when no estimate is recorded.
// A missing actual counts as zero hours.
func ProgressPercent(estimatedHours, actualHours *float64) (int, bool) {
	if estimatedHours == nil || *estimatedHours == 0 {
		return 0, false
	}
	var actual float64
	if actualHours != nil {
		actual = *actualHours
	}
	pct := math.Min(actual / *estimatedHours * 100, 100)
	return int(math.Round(pct)), true
}

// ProgressTier is the three-way classification of a progress percentage
type ProgressTier string

const (
	ProgressAtRisk  ProgressTier = "at_risk"
	ProgressCaution ProgressTier = "caution"
	ProgressOnTrack ProgressTier = "on_track"
)

// ClassifyProgress maps a percentage to its tier: below 50 is at risk,
// 50 to 79 caution, 80 and above on track.
func ClassifyProgress(percent int) ProgressTier {
	switch {
	case percent < 50:
		return ProgressAtRisk
	case percent < 80:
		return ProgressCaution
	default:
		return ProgressOnTrack
	}
}

// Tone maps the tier onto a presentation tone
func (t ProgressTier) Tone() Tone {
	switch t {
	case ProgressAtRisk:
		return ToneDanger
	case ProgressCaution:
		return ToneWarning
	case ProgressOnTrack:
		return ToneSuccess
	default:
		return ToneSecondary
	}
}

// ProgressLabel renders a percentage as "N%" or "N/A" when undefined
func ProgressLabel(percent int, ok bool) string {
	if !ok {
		return "N/A"
	}
	return strconv.Itoa(percent) + "%"
}

// EntityIsOverdue reports whether a due date is set, has passed, and the
// status is not one of the terminal statuses.
func EntityIsOverdue(dueDate *time.Time, status string, terminalStatuses []string, now time.Time) bool {
	if dueDate == nil || !dueDate.Before(now) {
		return false
	}
	for _, s := range terminalStatuses {
		if s == status {
			return false
		}
	}
	return true
}

// TaskTimeSpent returns the hours between start and end rounded to two
// decimals, or 0 when either is unset.
func TaskTimeSpent(start, end *time.Time) float64 {
	if start == nil || end == nil {
		return 0
	}
	return math.Round(end.Sub(*start).Hours()*100) / 100
}

var byteUnits = []string{"B", "KB", "MB", "GB"}

// FormatByteSize renders a byte count in the largest unit up to GB that keeps
// the value below 1024, e.g. 1536 → "1.5 KB". Nil renders as "N/A".
func FormatByteSize(bytes *int64) string {
	if bytes == nil {
		return "N/A"
	}
	size := float64(*bytes)
	i := 0
	for size >= 1024 && i < len(byteUnits)-1 {
		size /= 1024
		i++
	}
	size = math.Round(size*100) / 100
	return strconv.FormatFloat(size, 'f', -1, 64) + " " + byteUnits[i]
}
