package app

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/polkiloo/fosgateway/internal/aggregate"
	"github.com/polkiloo/fosgateway/internal/domain/model"
	"github.com/polkiloo/fosgateway/internal/metrics"
	testhelpers "github.com/polkiloo/fosgateway/internal/test"
	"github.com/polkiloo/fosgateway/internal/usecase"
)

type downSource struct{}

func (downSource) Get(context.Context, string) (json.RawMessage, error) {
	return nil, errors.New("connection refused")
}

type healthSourceStub struct {
	snapshot  model.HealthSnapshot
	ok        bool
	refreshes int
}

func (h *healthSourceStub) Latest() (model.HealthSnapshot, bool) { return h.snapshot, h.ok }

func (h *healthSourceStub) Refresh(context.Context) (model.HealthSnapshot, error) {
	h.refreshes++
	return h.snapshot, nil
}

func newFacade() (*GatewayFacade, *testhelpers.EventPublisherStub, *healthSourceStub) {
	m := metrics.NewNop()
	authUC := usecase.NewAuthUseCase(&testhelpers.PrimaryAuthenticatorStub{}, testhelpers.NewCredentialRepositoryStub(),
		testhelpers.NewSessionRepositoryStub(), testhelpers.HasherStub{}, testhelpers.StrategyStub{},
		usecase.AuthOptions{ProbeTimeout: time.Second, SessionTTL: time.Hour}, zap.NewNop(), m)

	events := &testhelpers.EventPublisherStub{}
	orderUC := usecase.NewOrderUseCase(testhelpers.OrderServiceStub{}, events, zap.NewNop(), m)

	sources := map[model.ServiceName]aggregate.Source{
		model.ServiceUser:  downSource{},
		model.ServiceMenu:  downSource{},
		model.ServiceOrder: downSource{},
	}
	views := aggregate.NewGateway(sources, nil, aggregate.Options{Timeout: time.Second}, zap.NewNop(), m)

	health := &healthSourceStub{snapshot: model.HealthSnapshot{CheckedAt: time.Now()}, ok: true}
	return NewGatewayFacade(authUC, orderUC, views, health), events, health
}

func TestGatewayFacadeAuth(t *testing.T) {
	facade, _, _ := newFacade()
	ctx := context.Background()

	session, token, err := facade.Login(ctx, "user@example.com", "secret")
	if err != nil {
		t.Fatalf("login returned error: %v", err)
	}
	if session.Provenance != model.ProvenancePrimary {
		t.Fatalf("unexpected provenance %s", session.Provenance)
	}

	resolved, err := facade.ResolveSession(ctx, token)
	if err != nil {
		t.Fatalf("resolve returned error: %v", err)
	}
	if resolved.ID != session.ID {
		t.Fatalf("resolved %q, want %q", resolved.ID, session.ID)
	}

	if err := facade.Logout(ctx, token); err != nil {
		t.Fatalf("logout returned error: %v", err)
	}
	if _, err := facade.ResolveSession(ctx, token); err == nil {
		t.Fatal("expected session to be gone after logout")
	}
}

func TestGatewayFacadeOrders(t *testing.T) {
	facade, events, _ := newFacade()
	ctx := context.Background()

	order, err := facade.Order(ctx, 3)
	if err != nil || order.ID != 3 {
		t.Fatalf("unexpected order lookup: order=%v err=%v", order, err)
	}

	_, action, err := facade.NextAction(ctx, 3)
	if err != nil {
		t.Fatalf("next action returned error: %v", err)
	}
	if action == nil || action.NextStatus != model.OrderStatusConfirmed {
		t.Fatalf("unexpected action %+v", action)
	}

	staff := &model.Session{ID: "s", UserID: 11, Role: model.RoleStaff}
	updated, err := facade.RequestStatusChange(ctx, staff, 3, "confirmed")
	if err != nil {
		t.Fatalf("status change returned error: %v", err)
	}
	if updated.Status != model.OrderStatusConfirmed {
		t.Fatalf("unexpected status %s", updated.Status)
	}
	if len(events.Events()) != 1 {
		t.Fatalf("expected one published event, got %d", len(events.Events()))
	}
}

func TestGatewayFacadeViews(t *testing.T) {
	facade, _, _ := newFacade()

	stats := facade.Dashboard(context.Background())
	if stats.TotalOrders.Available() || stats.TotalUsers.Available() {
		t.Fatal("expected partitions of unreachable services to be unavailable")
	}
	for name, up := range stats.Services {
		if up {
			t.Fatalf("service %s reported up", name)
		}
	}

	home := facade.Home(context.Background())
	if home.TotalMenuItems.Available() {
		t.Fatal("expected home menu partition to be unavailable")
	}
}

func TestGatewayFacadeHealth(t *testing.T) {
	facade, _, health := newFacade()

	if _, ok := facade.Health(); !ok {
		t.Fatal("expected cached snapshot")
	}
	if _, err := facade.RefreshHealth(context.Background()); err != nil {
		t.Fatalf("refresh returned error: %v", err)
	}
	if health.refreshes != 1 {
		t.Fatalf("expected one refresh, got %d", health.refreshes)
	}
}
