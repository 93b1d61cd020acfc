package checkout

import (
	"github.com/shopspring/decimal"

	"vibex-storefront/internal/models"
)

// ShopGroup is the part of the cart sold by one shop owner.
type ShopGroup struct {
	ShopOwnerID string                `json:"shopOwnerId"`
	ShopName    string                `json:"shopName"`
	Items       []models.CartLineItem `json:"items"`
}

func (g ShopGroup) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range g.Items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// GroupByShop splits items by shop owner. Groups keep the order in which
// their shop first appears in items.
func GroupByShop(items []models.CartLineItem) []ShopGroup {
	index := make(map[string]int)
	var groups []ShopGroup
	for _, item := range items {
		i, ok := index[item.ShopOwnerID]
		if !ok {
			i = len(groups)
			index[item.ShopOwnerID] = i
			groups = append(groups, ShopGroup{ShopOwnerID: item.ShopOwnerID, ShopName: item.ShopName})
		}
		if groups[i].ShopName == "" {
			groups[i].ShopName = item.ShopName
		}
		groups[i].Items = append(groups[i].Items, item)
	}
	return groups
}

func flashSaleItems(items []models.CartLineItem) []models.CartLineItem {
	var flash []models.CartLineItem
	for _, item := range items {
		if item.IsFlashSale {
			flash = append(flash, item)
		}
	}
	return flash
}

func previewItems(items []models.CartLineItem) []models.PreviewItem {
	out := make([]models.PreviewItem, len(items))
	for i, item := range items {
		out[i] = models.PreviewItem{
			ProductID:   item.ProductID,
			SizeID:      item.SizeID,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			ShopOwnerID: item.ShopOwnerID,
			ShopName:    item.ShopName,
		}
	}
	return out
}

func shippingItems(items []models.CartLineItem) []models.ShippingItem {
	out := make([]models.ShippingItem, len(items))
	for i, item := range items {
		out[i] = models.ShippingItem{
			ProductID: item.ProductID,
			SizeID:    item.SizeID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		}
	}
	return out
}

func orderItems(items []models.CartLineItem) []models.OrderItem {
	out := make([]models.OrderItem, len(items))
	for i, item := range items {
		out[i] = models.OrderItem{
			ProductID:   item.ProductID,
			SizeID:      item.SizeID,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			ShopOwnerID: item.ShopOwnerID,
			IsFlashSale: item.IsFlashSale,
		}
	}
	return out
}
