package aggregate

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/polkiloo/fosgateway/internal/adapter/backend"
	"github.com/polkiloo/fosgateway/internal/domain/model"
)

const (
	keyUsers      = "users"
	keyItems      = "items"
	keyCategories = "categories"
	keyOrders     = "orders"

	topSellingLimit = 5
)

// DashboardStats is the admin dashboard view. Every field is sourced from a
// single partition and is unavailable exactly when that partition was.
type DashboardStats struct {
	TotalUsers        Field[int]                       `json:"totalUsers"`
	TotalCustomers    Field[int]                       `json:"totalCustomers"`
	RecentUsers       Field[int]                       `json:"recentUsers"`
	RecentUserList    Field[[]model.User]              `json:"recentUserList"`
	TotalMenuItems    Field[int]                       `json:"totalMenuItems"`
	ActiveMenuItems   Field[int]                       `json:"activeMenuItems"`
	TotalCategories   Field[int]                       `json:"totalCategories"`
	TotalOrders       Field[int]                       `json:"totalOrders"`
	PendingOrders     Field[int]                       `json:"pendingOrders"`
	CompletedOrders   Field[int]                       `json:"completedOrders"`
	TotalRevenue      Field[decimal.Decimal]           `json:"totalRevenue"`
	AverageOrderValue Field[decimal.Decimal]           `json:"averageOrderValue"`
	TodayOrders       Field[int]                       `json:"todayOrders"`
	OrdersByStatus    Field[map[model.OrderStatus]int] `json:"ordersByStatus"`
	RecentOrders      Field[[]model.Order]             `json:"recentOrders"`
	TopSellingItems   Field[[]ItemSales]               `json:"topSellingItems"`
	Services          map[model.ServiceName]bool       `json:"services"`
	GeneratedAt       time.Time                        `json:"generatedAt"`
}

var dashboardRequests = []Request{
	{Key: keyUsers, Service: model.ServiceUser, Endpoint: backend.UsersPath},
	{Key: keyItems, Service: model.ServiceMenu, Endpoint: backend.ItemsPath},
	{Key: keyCategories, Service: model.ServiceMenu, Endpoint: backend.CategoriesPath},
	{Key: keyOrders, Service: model.ServiceOrder, Endpoint: backend.OrdersPath},
}

// Dashboard fetches every partition the dashboard needs and derives its
// statistics. It always returns a view, even when every service is down.
func (g *Gateway) Dashboard(ctx context.Context) DashboardStats {
	res := g.Fetch(ctx, dashboardRequests)
	now := g.now()

	users := decodeSlot(g, res.Slot(keyUsers), keyUsers, backend.DecodeUsers)
	items := decodeSlot(g, res.Slot(keyItems), keyItems, backend.DecodeMenuItems)
	categories := decodeSlot(g, res.Slot(keyCategories), keyCategories, backend.DecodeCategories)
	orders := decodeSlot(g, res.Slot(keyOrders), keyOrders, backend.DecodeOrders)

	recent := mapField(users, func(us []model.User) []model.User {
		return RecentUsers(us, now, g.opts.RecentUserWindow)
	})
	stats := mapField(orders, func(all []model.Order) OrderStats {
		return ComputeOrderStats(all, now)
	})

	services := res.Services()
	markDecodeFailure(services, model.ServiceUser, users)
	markDecodeFailure(services, model.ServiceMenu, items, categories)
	markDecodeFailure(services, model.ServiceOrder, orders)

	return DashboardStats{
		TotalUsers:     mapField(users, func(us []model.User) int { return len(us) }),
		TotalCustomers: mapField(users, func(us []model.User) int { return CountRole(us, model.RoleCustomer) }),
		RecentUsers:    mapField(recent, func(us []model.User) int { return len(us) }),
		RecentUserList: mapField(recent, func(us []model.User) []model.User {
			if len(us) > g.opts.RecentLimit {
				return us[:g.opts.RecentLimit]
			}
			return us
		}),
		TotalMenuItems:    mapField(items, func(is []model.MenuItem) int { return len(is) }),
		ActiveMenuItems:   mapField(items, CountAvailable),
		TotalCategories:   mapField(categories, func(cs []model.Category) int { return len(cs) }),
		TotalOrders:       mapField(stats, func(s OrderStats) int { return s.Total }),
		PendingOrders:     mapField(stats, func(s OrderStats) int { return s.Pending }),
		CompletedOrders:   mapField(stats, func(s OrderStats) int { return s.Completed }),
		TotalRevenue:      mapField(stats, func(s OrderStats) decimal.Decimal { return s.Revenue }),
		AverageOrderValue: mapField(stats, func(s OrderStats) decimal.Decimal { return s.AverageOrderValue }),
		TodayOrders:       mapField(stats, func(s OrderStats) int { return s.Today }),
		OrdersByStatus:    mapField(stats, func(s OrderStats) map[model.OrderStatus]int { return s.ByStatus }),
		RecentOrders: mapField(orders, func(all []model.Order) []model.Order {
			return RecentOrders(all, g.opts.RecentLimit)
		}),
		TopSellingItems: mapField(orders, func(all []model.Order) []ItemSales {
			return TopSellingItems(all, topSellingLimit)
		}),
		Services:    services,
		GeneratedAt: now,
	}
}

// decodeSlot turns a slot into a field. A payload that fails to decode is a
// service error for its partition.
func decodeSlot[T any](g *Gateway, slot Slot, key string, decode func(json.RawMessage) (T, error)) Field[T] {
	if !slot.Available() {
		return Missing[T](slot.Unavailable.Reason)
	}
	v, err := decode(slot.Payload)
	if err != nil {
		g.logger.Error("partition payload malformed",
			zap.String("partition", key),
			zap.Error(err),
		)
		if g.metrics != nil {
			g.metrics.PartitionUnavailable.WithLabelValues(partitionService(key), "malformed").Inc()
		}
		return Missing[T]("malformed payload: " + err.Error())
	}
	return Present(v)
}

type availability interface{ Available() bool }

func markDecodeFailure(services map[model.ServiceName]bool, name model.ServiceName, fields ...availability) {
	if _, ok := services[name]; !ok {
		return
	}
	for _, f := range fields {
		if !f.Available() {
			services[name] = false
		}
	}
}

func partitionService(key string) string {
	for _, r := range dashboardRequests {
		if r.Key == key {
			return string(r.Service)
		}
	}
	for _, r := range homeRequests {
		if r.Key == key {
			return string(r.Service)
		}
	}
	return key
}
