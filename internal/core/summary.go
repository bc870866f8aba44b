package core

// CategoryAmount represents an amount aggregated by category.
type CategoryAmount struct {
	Category Category `json:"category"`
	Amount   Money    `json:"amount"`
}

// DayAmount represents an amount aggregated by calendar date.
type DayAmount struct {
	Date   Date  `json:"date"`
	Amount Money `json:"amount"`
}

// TimelineDays is the width of the recent-spending timeline.
const TimelineDays = 7

// TotalSpent sums all record amounts.
func TotalSpent(ledger []Expense) Money {
	var cents int64
	for _, e := range ledger {
		cents += e.Amount.Cents
	}
	return Money{Cents: cents}
}

// CategoryTotals sums amounts per category. Only categories present in the
// ledger appear, ordered by first appearance.
func CategoryTotals(ledger []Expense) []CategoryAmount {
	sums := make(map[Category]int64, len(ledger))
	var order []Category
	for _, e := range ledger {
		if _, seen := sums[e.Category]; !seen {
			order = append(order, e.Category)
		}
		sums[e.Category] += e.Amount.Cents
	}
	out := make([]CategoryAmount, 0, len(order))
	for _, c := range order {
		out = append(out, CategoryAmount{Category: c, Amount: Money{Cents: sums[c]}})
	}
	return out
}

// Timeline returns exactly TimelineDays entries, oldest to newest, ending at
// today. Each entry sums the records whose date matches exactly; days with
// no records carry zero.
func Timeline(ledger []Expense, today Date) []DayAmount {
	out := make([]DayAmount, TimelineDays)
	index := make(map[string]int, TimelineDays)
	for i := 0; i < TimelineDays; i++ {
		d := today.AddDays(i - TimelineDays + 1)
		out[i] = DayAmount{Date: d}
		index[d.ISO()] = i
	}
	for _, e := range ledger {
		if i, ok := index[e.Date.ISO()]; ok {
			out[i].Amount.Cents += e.Amount.Cents
		}
	}
	return out
}
