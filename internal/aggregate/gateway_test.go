package aggregate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/polkiloo/fosgateway/internal/adapter/backend"
	"github.com/polkiloo/fosgateway/internal/domain/model"
	"github.com/polkiloo/fosgateway/internal/metrics"
)

type sourceFunc func(ctx context.Context, endpoint string) (json.RawMessage, error)

func (f sourceFunc) Get(ctx context.Context, endpoint string) (json.RawMessage, error) {
	return f(ctx, endpoint)
}

type countingSource struct {
	inner Source
	calls atomic.Int32
}

func (s *countingSource) Get(ctx context.Context, endpoint string) (json.RawMessage, error) {
	s.calls.Add(1)
	return s.inner.Get(ctx, endpoint)
}

type healthViewStub struct {
	snap model.HealthSnapshot
	ok   bool
}

func (h healthViewStub) Latest() (model.HealthSnapshot, bool) { return h.snap, h.ok }

var fixedNow = time.Date(2024, 5, 10, 15, 0, 0, 0, time.Local)

func downSource(service model.ServiceName) Source {
	return sourceFunc(func(context.Context, string) (json.RawMessage, error) {
		return nil, &backend.UnreachableError{Service: service, Endpoint: "/", Err: errors.New("connection refused")}
	})
}

func staticSource(payloads map[string]string) Source {
	return sourceFunc(func(_ context.Context, endpoint string) (json.RawMessage, error) {
		body, ok := payloads[endpoint]
		if !ok {
			return nil, &backend.ServiceError{Endpoint: endpoint, StatusCode: 404, Message: "no route"}
		}
		return json.RawMessage(body), nil
	})
}

func usersJSON() string {
	return `[
		{"userId":1,"email":"a@x.io","role":"ADMIN","createdAt":"2024-01-01T10:00:00"},
		{"userId":2,"email":"b@x.io","role":"CUSTOMER","createdAt":"2024-05-09T10:00:00"},
		{"userId":3,"email":"c@x.io","role":"CUSTOMER","createdAt":"2024-05-08T10:00:00"},
		{"userId":4,"email":"d@x.io","role":"STAFF","createdAt":"2024-04-01T10:00:00"}
	]`
}

func itemsJSON(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf(`{"itemId":%d,"categoryId":1,"itemName":"Dish %d","price":5.00,"isAvailable":%t}`, i+1, i+1, i%2 == 0)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func categoriesJSON() string {
	return `{"data":[{"categoryId":1,"categoryName":"Mains","displayOrder":2},{"categoryId":2,"categoryName":"Drinks","isActive":false,"displayOrder":1}]}`
}

func orderJSON(id int64, status, amount, date string) string {
	return fmt.Sprintf(`{"orderId":%d,"userId":2,"orderStatus":%q,"totalAmount":%s,"orderDate":%q,"orderType":"DINE_IN",
		"orderItems":[{"itemId":1,"itemName":"Dish 1","quantity":1,"unitPrice":%s}]}`, id, status, amount, date, amount)
}

func scenarioOrdersJSON() string {
	return "[" + strings.Join([]string{
		orderJSON(1, "PENDING", "10.00", "2024-05-10T09:00:00"),
		orderJSON(2, "PENDING", "8.00", "2024-05-10T10:00:00"),
		orderJSON(3, "ACCEPTED", "12.00", "2024-05-09T10:00:00"),
		orderJSON(4, "COMPLETED", "15.00", "2024-05-08T10:00:00"),
	}, ",") + "]"
}

func healthySources() map[model.ServiceName]Source {
	return map[model.ServiceName]Source{
		model.ServiceUser:  staticSource(map[string]string{"/users": usersJSON()}),
		model.ServiceMenu:  staticSource(map[string]string{"/items": itemsJSON(10), "/categories": categoriesJSON()}),
		model.ServiceOrder: staticSource(map[string]string{"/orders": scenarioOrdersJSON()}),
	}
}

func newTestGateway(sources map[model.ServiceName]Source, health HealthView, opts Options, m *metrics.Metrics) *Gateway {
	g := NewGateway(sources, health, opts, zap.NewNop(), m)
	g.now = func() time.Time { return fixedNow }
	return g
}

func TestDashboardConcreteScenario(t *testing.T) {
	sources := healthySources()
	sources[model.ServiceUser] = downSource(model.ServiceUser)
	g := newTestGateway(sources, nil, Options{}, metrics.NewNop())

	stats := g.Dashboard(context.Background())

	menuItems, ok := stats.TotalMenuItems.Get()
	require.True(t, ok)
	assert.Equal(t, 10, menuItems)

	total, ok := stats.TotalOrders.Get()
	require.True(t, ok)
	assert.Equal(t, 4, total)

	pending, ok := stats.PendingOrders.Get()
	require.True(t, ok)
	assert.Equal(t, 2, pending)

	revenue, ok := stats.TotalRevenue.Get()
	require.True(t, ok)
	assert.True(t, revenue.Equal(decimal.RequireFromString("15.00")), revenue.String())

	assert.False(t, stats.TotalUsers.Available())
	assert.Contains(t, stats.TotalUsers.Reason(), "connection refused")
	assert.False(t, stats.TotalCustomers.Available())
	assert.False(t, stats.RecentUserList.Available())

	assert.Equal(t, map[model.ServiceName]bool{
		model.ServiceUser:  false,
		model.ServiceMenu:  true,
		model.ServiceOrder: true,
	}, stats.Services)
	assert.Equal(t, fixedNow, stats.GeneratedAt)
}

func TestDashboardDerivedFields(t *testing.T) {
	g := newTestGateway(healthySources(), nil, Options{RecentLimit: 2}, nil)

	stats := g.Dashboard(context.Background())

	customers, _ := stats.TotalCustomers.Get()
	assert.Equal(t, 2, customers)
	recentCount, _ := stats.RecentUsers.Get()
	assert.Equal(t, 2, recentCount)
	recentUsers, _ := stats.RecentUserList.Get()
	require.Len(t, recentUsers, 2)
	assert.Equal(t, int64(2), recentUsers[0].ID)

	active, _ := stats.ActiveMenuItems.Get()
	assert.Equal(t, 5, active)
	categories, _ := stats.TotalCategories.Get()
	assert.Equal(t, 2, categories)

	today, _ := stats.TodayOrders.Get()
	assert.Equal(t, 2, today)
	byStatus, _ := stats.OrdersByStatus.Get()
	assert.Equal(t, 1, byStatus[model.OrderStatusConfirmed], "legacy ACCEPTED counts as CONFIRMED")
	assert.Equal(t, 0, byStatus[model.OrderStatusCancelled])

	recent, _ := stats.RecentOrders.Get()
	require.Len(t, recent, 2)
	assert.Equal(t, int64(2), recent[0].ID)
	assert.Equal(t, int64(1), recent[1].ID)

	top, _ := stats.TopSellingItems.Get()
	require.Len(t, top, 1)
	assert.Equal(t, 4, top[0].Quantity)
}

func TestDashboardDegradesPerPartition(t *testing.T) {
	all := []model.ServiceName{model.ServiceUser, model.ServiceMenu, model.ServiceOrder}
	for mask := 0; mask < 1<<len(all); mask++ {
		down := map[model.ServiceName]bool{}
		var names []string
		for i, s := range all {
			if mask&(1<<i) != 0 {
				down[s] = true
				names = append(names, string(s))
			}
		}
		t.Run("down="+strings.Join(names, "+"), func(t *testing.T) {
			sources := healthySources()
			for s := range down {
				sources[s] = downSource(s)
			}
			stats := newTestGateway(sources, nil, Options{}, nil).Dashboard(context.Background())

			assert.Equal(t, !down[model.ServiceUser], stats.TotalUsers.Available())
			assert.Equal(t, !down[model.ServiceUser], stats.RecentUsers.Available())
			assert.Equal(t, !down[model.ServiceMenu], stats.TotalMenuItems.Available())
			assert.Equal(t, !down[model.ServiceMenu], stats.TotalCategories.Available())
			assert.Equal(t, !down[model.ServiceOrder], stats.TotalOrders.Available())
			assert.Equal(t, !down[model.ServiceOrder], stats.TotalRevenue.Available())
			assert.Equal(t, !down[model.ServiceOrder], stats.TopSellingItems.Available())

			if v, ok := stats.TotalMenuItems.Get(); ok {
				assert.Equal(t, 10, v)
			}
			if v, ok := stats.PendingOrders.Get(); ok {
				assert.Equal(t, 2, v)
			}
			for _, s := range all {
				assert.Equal(t, !down[s], stats.Services[s], s)
			}
		})
	}
}

func TestFetchWaitsForSlowPartition(t *testing.T) {
	sources := healthySources()
	menu := sources[model.ServiceMenu]
	sources[model.ServiceMenu] = sourceFunc(func(ctx context.Context, endpoint string) (json.RawMessage, error) {
		select {
		case <-time.After(50 * time.Millisecond):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		return menu.Get(ctx, endpoint)
	})
	g := newTestGateway(sources, nil, Options{Timeout: time.Second}, nil)

	stats := g.Dashboard(context.Background())

	items, ok := stats.TotalMenuItems.Get()
	require.True(t, ok, "slow partition must be joined, not dropped")
	assert.Equal(t, 10, items)
}

func TestFetchBoundsSourceIgnoringContext(t *testing.T) {
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })

	m := metrics.NewNop()
	sources := map[model.ServiceName]Source{
		model.ServiceOrder: sourceFunc(func(context.Context, string) (json.RawMessage, error) {
			<-release
			return json.RawMessage(`[]`), nil
		}),
	}
	g := newTestGateway(sources, nil, Options{Timeout: 30 * time.Millisecond}, m)

	start := time.Now()
	res := g.Fetch(context.Background(), []Request{{Key: "orders", Service: model.ServiceOrder, Endpoint: "/orders"}})

	assert.Less(t, time.Since(start), 500*time.Millisecond)
	slot := res.Slot("orders")
	require.False(t, slot.Available())
	assert.Equal(t, model.ServiceOrder, slot.Unavailable.Service)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PartitionUnavailable.WithLabelValues("order", "timeout")))
}

func TestFetchCallerCancellationReachesChildren(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	observed := make(chan error, 1)
	sources := map[model.ServiceName]Source{
		model.ServiceUser: sourceFunc(func(ctx context.Context, _ string) (json.RawMessage, error) {
			<-ctx.Done()
			observed <- ctx.Err()
			return nil, ctx.Err()
		}),
	}
	g := newTestGateway(sources, nil, Options{Timeout: time.Minute}, nil)

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	res := g.Fetch(ctx, []Request{{Key: "users", Service: model.ServiceUser, Endpoint: "/users"}})

	assert.False(t, res.Slot("users").Available())
	select {
	case err := <-observed:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("child call did not observe cancellation")
	}
}

func TestFetchRecoversPanickingSource(t *testing.T) {
	sources := map[model.ServiceName]Source{
		model.ServiceMenu: sourceFunc(func(context.Context, string) (json.RawMessage, error) {
			panic("boom")
		}),
	}
	res := newTestGateway(sources, nil, Options{}, nil).Fetch(context.Background(), []Request{{Key: "items", Service: model.ServiceMenu, Endpoint: "/items"}})
	slot := res.Slot("items")
	require.False(t, slot.Available())
	assert.Contains(t, slot.Unavailable.Reason, "boom")
}

func TestFetchAllUnavailableIsNotAnError(t *testing.T) {
	sources := map[model.ServiceName]Source{
		model.ServiceUser:  downSource(model.ServiceUser),
		model.ServiceMenu:  downSource(model.ServiceMenu),
		model.ServiceOrder: downSource(model.ServiceOrder),
	}
	g := newTestGateway(sources, nil, Options{}, nil)

	res := g.Fetch(context.Background(), dashboardRequests)
	for _, r := range dashboardRequests {
		assert.False(t, res.Slot(r.Key).Available(), r.Key)
	}
	for _, up := range res.Services() {
		assert.False(t, up)
	}

	home := g.Home(context.Background())
	assert.False(t, home.FeaturedItems.Available())
	assert.False(t, home.TotalCustomers.Available())
}

func TestFetchUnknownServiceAndKey(t *testing.T) {
	g := newTestGateway(map[model.ServiceName]Source{}, nil, Options{}, nil)
	res := g.Fetch(context.Background(), []Request{{Key: "x", Service: "billing", Endpoint: "/"}})
	assert.False(t, res.Slot("x").Available())
	assert.Equal(t, "not requested", res.Slot("missing").Unavailable.Reason)
}

func TestFetchSkipsServicesKnownDown(t *testing.T) {
	orders := &countingSource{inner: healthySources()[model.ServiceOrder]}
	sources := healthySources()
	sources[model.ServiceOrder] = orders

	snap := model.HealthSnapshot{
		CheckedAt: fixedNow.Add(-time.Second),
		Services: map[model.ServiceName]model.ServiceHealth{
			model.ServiceUser:  {Service: model.ServiceUser, Reachable: true},
			model.ServiceMenu:  {Service: model.ServiceMenu, Reachable: true},
			model.ServiceOrder: {Service: model.ServiceOrder, Reachable: false},
		},
	}
	m := metrics.NewNop()
	g := newTestGateway(sources, healthViewStub{snap: snap, ok: true}, Options{HealthMaxAge: time.Minute}, m)

	stats := g.Dashboard(context.Background())

	assert.Equal(t, int32(0), orders.calls.Load(), "no call to a service known to be down")
	assert.False(t, stats.TotalOrders.Available())
	assert.True(t, stats.TotalUsers.Available())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PartitionUnavailable.WithLabelValues("order", "skipped")))
}

func TestFetchIgnoresStaleSnapshot(t *testing.T) {
	orders := &countingSource{inner: healthySources()[model.ServiceOrder]}
	sources := healthySources()
	sources[model.ServiceOrder] = orders

	snap := model.HealthSnapshot{
		CheckedAt: fixedNow.Add(-time.Hour),
		Services: map[model.ServiceName]model.ServiceHealth{
			model.ServiceOrder: {Service: model.ServiceOrder, Reachable: false},
		},
	}
	g := newTestGateway(sources, healthViewStub{snap: snap, ok: true}, Options{HealthMaxAge: time.Minute}, nil)

	stats := g.Dashboard(context.Background())

	assert.Equal(t, int32(1), orders.calls.Load())
	assert.True(t, stats.TotalOrders.Available())
}

func TestDashboardMalformedPartition(t *testing.T) {
	sources := healthySources()
	sources[model.ServiceOrder] = staticSource(map[string]string{
		"/orders": "[" + orderJSON(1, "LOST", "1.00", "2024-05-10T09:00:00") + "]",
	})
	m := metrics.NewNop()
	stats := newTestGateway(sources, nil, Options{}, m).Dashboard(context.Background())

	assert.False(t, stats.TotalOrders.Available())
	assert.Contains(t, stats.TotalOrders.Reason(), "malformed")
	assert.False(t, stats.Services[model.ServiceOrder])
	assert.True(t, stats.TotalUsers.Available())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PartitionUnavailable.WithLabelValues("order", "malformed")))
}

func TestHomeView(t *testing.T) {
	stats := newTestGateway(healthySources(), nil, Options{}, nil).Home(context.Background())

	featured, ok := stats.FeaturedItems.Get()
	require.True(t, ok)
	require.Len(t, featured, 5)
	assert.Equal(t, int64(1), featured[0].ID)

	categories, ok := stats.Categories.Get()
	require.True(t, ok)
	require.Len(t, categories, 1)
	assert.Equal(t, "Mains", categories[0].Name)

	customers, _ := stats.TotalCustomers.Get()
	assert.Equal(t, 2, customers)
	total, _ := stats.TotalMenuItems.Get()
	assert.Equal(t, 10, total)
}

func TestDashboardJSONMarksUnavailable(t *testing.T) {
	sources := healthySources()
	sources[model.ServiceUser] = downSource(model.ServiceUser)
	stats := newTestGateway(sources, nil, Options{}, nil).Dashboard(context.Background())

	raw, err := json.Marshal(stats)
	require.NoError(t, err)

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &decoded))

	var users struct {
		Available bool            `json:"available"`
		Value     json.RawMessage `json:"value"`
		Reason    string          `json:"reason"`
	}
	require.NoError(t, json.Unmarshal(decoded["totalUsers"], &users))
	assert.False(t, users.Available)
	assert.Nil(t, users.Value)
	assert.NotEmpty(t, users.Reason)

	assert.JSONEq(t, `{"available":true,"value":10}`, string(decoded["totalMenuItems"]))
}
