package aggregate

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/fosgateway/internal/domain/lifecycle"
	"github.com/polkiloo/fosgateway/internal/domain/model"
)

// OrderStats are the statistics derived from the order partition.
type OrderStats struct {
	Total             int                       `json:"totalOrders"`
	Pending           int                       `json:"pendingOrders"`
	Completed         int                       `json:"completedOrders"`
	Today             int                       `json:"todayOrders"`
	Revenue           decimal.Decimal           `json:"totalRevenue"`
	AverageOrderValue decimal.Decimal           `json:"averageOrderValue"`
	ByStatus          map[model.OrderStatus]int `json:"ordersByStatus"`
}

// ItemSales is the sales volume of a menu item.
type ItemSales struct {
	ItemID   int64           `json:"itemId"`
	Name     string          `json:"itemName"`
	Quantity int             `json:"quantity"`
	Revenue  decimal.Decimal `json:"revenue"`
}

// ComputeOrderStats derives counters and revenue. Revenue counts COMPLETED
// orders only; "today" is the calendar day of now in now's location.
func ComputeOrderStats(orders []model.Order, now time.Time) OrderStats {
	stats := OrderStats{
		Total:    len(orders),
		Revenue:  decimal.Zero,
		ByStatus: make(map[model.OrderStatus]int),
	}
	for _, status := range lifecycle.Canonical {
		stats.ByStatus[status] = 0
	}
	y, m, d := now.Date()
	for _, o := range orders {
		stats.ByStatus[o.Status]++
		switch o.Status {
		case model.OrderStatusPending:
			stats.Pending++
		case model.OrderStatusCompleted:
			stats.Completed++
			stats.Revenue = stats.Revenue.Add(o.Amount)
		}
		if !o.OrderDate.IsZero() {
			oy, om, od := o.OrderDate.In(now.Location()).Date()
			if oy == y && om == m && od == d {
				stats.Today++
			}
		}
	}
	stats.AverageOrderValue = decimal.Zero
	if stats.Completed > 0 {
		stats.AverageOrderValue = stats.Revenue.Div(decimal.NewFromInt(int64(stats.Completed))).Round(2)
	}
	return stats
}

// RecentOrders returns up to n orders, newest orderDate first, ties broken
// by ascending id. The input is not modified.
func RecentOrders(orders []model.Order, n int) []model.Order {
	out := make([]model.Order, len(orders))
	copy(out, orders)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].OrderDate.Equal(out[j].OrderDate) {
			return out[i].OrderDate.After(out[j].OrderDate)
		}
		return out[i].ID < out[j].ID
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// RecentUsers returns users created within window before now, newest
// first, ties broken by ascending id.
func RecentUsers(users []model.User, now time.Time, window time.Duration) []model.User {
	cutoff := now.Add(-window)
	var out []model.User
	for _, u := range users {
		if u.CreatedAt.IsZero() || u.CreatedAt.Before(cutoff) || u.CreatedAt.After(now) {
			continue
		}
		out = append(out, u)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// TopSellingItems ranks items by quantity across non-cancelled orders.
// Ties are broken by name, then item id.
func TopSellingItems(orders []model.Order, n int) []ItemSales {
	byItem := map[int64]*ItemSales{}
	for _, o := range orders {
		if o.Status == model.OrderStatusCancelled {
			continue
		}
		for _, it := range o.Items {
			s, ok := byItem[it.ItemID]
			if !ok {
				s = &ItemSales{ItemID: it.ItemID, Name: it.Name, Revenue: decimal.Zero}
				byItem[it.ItemID] = s
			}
			s.Quantity += it.Quantity
			s.Revenue = s.Revenue.Add(it.Subtotal)
		}
	}

	out := make([]ItemSales, 0, len(byItem))
	for _, s := range byItem {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Quantity != out[j].Quantity {
			return out[i].Quantity > out[j].Quantity
		}
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ItemID < out[j].ItemID
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// CountRole counts users holding role.
func CountRole(users []model.User, role model.Role) int {
	n := 0
	for _, u := range users {
		if u.Role == role {
			n++
		}
	}
	return n
}

// CountAvailable counts menu items currently offered.
func CountAvailable(items []model.MenuItem) int {
	n := 0
	for _, it := range items {
		if it.Available {
			n++
		}
	}
	return n
}

// FeaturedItems returns up to n available items ordered by id.
func FeaturedItems(items []model.MenuItem, n int) []model.MenuItem {
	var out []model.MenuItem
	for _, it := range items {
		if it.Available {
			out = append(out, it)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// ActiveCategories returns active categories by display order, then id.
func ActiveCategories(categories []model.Category) []model.Category {
	var out []model.Category
	for _, c := range categories {
		if c.Active {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DisplayOrder != out[j].DisplayOrder {
			return out[i].DisplayOrder < out[j].DisplayOrder
		}
		return out[i].ID < out[j].ID
	})
	return out
}
