package httpserver

import (
	"menubasket/internal/cart"
	"menubasket/internal/domain"
)

// toBasketPayload maps a stored basket onto the gateway wire shape. The
// same types the HTTP gateway client decodes are used here, so server and
// client cannot drift apart.
func toBasketPayload(b *domain.Basket) cart.BasketPayload {
	if b == nil {
		return cart.BasketPayload{Items: []cart.ItemPayload{}}
	}

	items := make([]cart.ItemPayload, 0, len(b.Items))
	for _, item := range b.Items {
		if item.BranchProductID == nil {
			continue
		}
		payload := cart.ItemPayload{
			BasketItemID:    item.ID,
			BranchProductID: *item.BranchProductID,
			ProductName:     item.ProductName,
			PriceCents:      item.PriceCents,
			Quantity:        item.Quantity,
			ImageURL:        item.ImageURL,
			TotalPriceCents: item.PriceCents * int64(item.Quantity),
		}
		for _, addon := range item.Addons {
			if addon.BranchProductAddonID == nil {
				continue
			}
			payload.AddonItems = append(payload.AddonItems, cart.AddonPayload{
				BasketItemID:    addon.ID,
				BranchProductID: *addon.BranchProductAddonID,
				ProductName:     addon.ProductName,
				PriceCents:      addon.PriceCents,
				Quantity:        addon.Quantity,
			})
			payload.TotalPriceCents += addon.PriceCents * int64(addon.Quantity)
		}
		items = append(items, payload)
	}

	return cart.BasketPayload{BasketID: b.ID, Items: items}
}
