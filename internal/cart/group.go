package cart

import "menubasket/internal/domain"

// Group folds basket lines into display groups by product, preserving
// first-seen order. It is a pure function: the same input always yields the
// same groups, aggregates are exact integer sums, and the input is not
// modified.
func Group(lines []domain.BasketLine) []domain.CartGroup {
	groups := make([]domain.CartGroup, 0, len(lines))
	byProduct := make(map[int64]int, len(lines))

	for _, line := range lines {
		variant := domain.CartVariant{
			Line:    line,
			IsPlain: len(line.Addons) == 0,
		}

		pos, ok := byProduct[line.BranchProductID]
		if !ok {
			pos = len(groups)
			byProduct[line.BranchProductID] = pos
			groups = append(groups, domain.CartGroup{
				BranchProductID: line.BranchProductID,
				ProductName:     line.ProductName,
			})
		}

		groups[pos].Variants = append(groups[pos].Variants, variant)
		groups[pos].TotalQuantity += line.Quantity
		groups[pos].TotalPriceCents += line.TotalItemPriceCents * int64(line.Quantity)
	}

	return groups
}
