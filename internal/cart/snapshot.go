package cart

import "menubasket/internal/domain"

// lineRef locates a basket item inside a snapshot: an index into the line
// list, plus the addon position within that line (-1 for the parent line
// itself). The index replaces the repeated linear scans a naive lookup
// would need.
type lineRef struct {
	line  int
	addon int
}

// buildSnapshot maps a raw basket payload into the local line list and the
// basketItemID index. Fields missing from the payload default to safe
// values: prices to 0, names to the empty string. Lines are kept in payload
// order and never merged; each server row keeps its own identity.
func buildSnapshot(payload *BasketPayload) ([]domain.BasketLine, map[int64]lineRef) {
	if payload == nil {
		return nil, map[int64]lineRef{}
	}

	lines := make([]domain.BasketLine, 0, len(payload.Items))
	index := make(map[int64]lineRef, len(payload.Items))

	for _, item := range payload.Items {
		line := domain.BasketLine{
			BasketItemID:    item.BasketItemID,
			BranchProductID: item.BranchProductID,
			ProductName:     item.ProductName,
			Quantity:        item.Quantity,
			UnitPriceCents:  item.PriceCents,
			ImageURL:        item.ImageURL,
		}

		// Total for one unit includes that unit's addons; the unit price
		// does not.
		total := item.PriceCents
		for _, addon := range item.AddonItems {
			line.Addons = append(line.Addons, domain.AddonLine{
				BasketItemID:         addon.BasketItemID,
				BranchProductAddonID: addon.BranchProductID,
				ProductName:          addon.ProductName,
				Quantity:             addon.Quantity,
				PriceCents:           addon.PriceCents,
			})
			total += addon.PriceCents * int64(addon.Quantity)
		}
		line.TotalItemPriceCents = total

		pos := len(lines)
		index[line.BasketItemID] = lineRef{line: pos, addon: -1}
		for i, addon := range line.Addons {
			index[addon.BasketItemID] = lineRef{line: pos, addon: i}
		}
		lines = append(lines, line)
	}

	return lines, index
}
