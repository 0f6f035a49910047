package esocial

import "strings"

type RemunerationItem struct {
	Rubric string `json:"rubric"`
	Amount Money  `json:"amount"`
}

func reportable(kind LineKind) bool {
	return kind == LineEarning || kind == LineTaxWithholding
}

// FoldRemunerationItems folds earning and tax-withholding lines into detail
// items. Lines of the same rubric are summed and keep the position of their
// first occurrence; zero amounts are dropped.
func FoldRemunerationItems(lines []LedgerLine) []RemunerationItem {
	index := map[string]int{}
	var items []RemunerationItem
	for _, line := range lines {
		if !reportable(line.Kind) || line.Amount.IsZero() {
			continue
		}
		rubric := strings.TrimSpace(line.Rubric)
		if pos, ok := index[rubric]; ok {
			items[pos].Amount = items[pos].Amount.Add(line.Amount)
			continue
		}
		index[rubric] = len(items)
		items = append(items, RemunerationItem{Rubric: rubric, Amount: line.Amount})
	}
	out := items[:0]
	for _, item := range items {
		if !item.Amount.IsZero() {
			out = append(out, item)
		}
	}
	return out
}

// SumLines totals the lines of the given kind.
func SumLines(lines []LedgerLine, kind LineKind) Money {
	total := Zero
	for _, line := range lines {
		if line.Kind == kind {
			total = total.Add(line.Amount)
		}
	}
	return total
}

func hasRubric(items []RemunerationItem, rubric string) bool {
	for _, item := range items {
		if item.Rubric == rubric {
			return true
		}
	}
	return false
}
