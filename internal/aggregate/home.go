package aggregate

import (
	"context"
	"time"

	"github.com/polkiloo/fosgateway/internal/adapter/backend"
	"github.com/polkiloo/fosgateway/internal/domain/model"
)

const featuredLimit = 6

// HomeView is the public landing page view.
type HomeView struct {
	FeaturedItems  Field[[]model.MenuItem]    `json:"featuredItems"`
	Categories     Field[[]model.Category]    `json:"categories"`
	TotalMenuItems Field[int]                 `json:"totalMenuItems"`
	TotalCustomers Field[int]                 `json:"totalCustomers"`
	Services       map[model.ServiceName]bool `json:"services"`
	GeneratedAt    time.Time                  `json:"generatedAt"`
}

var homeRequests = []Request{
	{Key: keyItems, Service: model.ServiceMenu, Endpoint: backend.ItemsPath},
	{Key: keyCategories, Service: model.ServiceMenu, Endpoint: backend.CategoriesPath},
	{Key: keyUsers, Service: model.ServiceUser, Endpoint: backend.UsersPath},
}

// Home builds the landing page view.
func (g *Gateway) Home(ctx context.Context) HomeView {
	res := g.Fetch(ctx, homeRequests)

	items := decodeSlot(g, res.Slot(keyItems), keyItems, backend.DecodeMenuItems)
	categories := decodeSlot(g, res.Slot(keyCategories), keyCategories, backend.DecodeCategories)
	users := decodeSlot(g, res.Slot(keyUsers), keyUsers, backend.DecodeUsers)

	services := res.Services()
	markDecodeFailure(services, model.ServiceMenu, items, categories)
	markDecodeFailure(services, model.ServiceUser, users)

	return HomeView{
		FeaturedItems: mapField(items, func(is []model.MenuItem) []model.MenuItem {
			return FeaturedItems(is, featuredLimit)
		}),
		Categories:     mapField(categories, ActiveCategories),
		TotalMenuItems: mapField(items, func(is []model.MenuItem) int { return len(is) }),
		TotalCustomers: mapField(users, func(us []model.User) int { return CountRole(us, model.RoleCustomer) }),
		Services:       services,
		GeneratedAt:    g.now(),
	}
}
