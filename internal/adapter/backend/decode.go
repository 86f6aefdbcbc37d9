package backend

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/fosgateway/internal/domain/lifecycle"
	"github.com/polkiloo/fosgateway/internal/domain/model"
)

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// parseTime accepts RFC 3339 and zone-less local timestamps. Empty input
// yields the zero time.
func parseTime(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported timestamp %q", raw)
}

type envelope struct {
	Data json.RawMessage `json:"data"`
}

// unwrap strips the {"data": ...} envelope some services wrap payloads in.
func unwrap(raw json.RawMessage) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return trimmed
	}
	var env envelope
	if err := json.Unmarshal(trimmed, &env); err == nil && len(env.Data) > 0 && string(env.Data) != "null" {
		return env.Data
	}
	return trimmed
}

func decodeList[W any](raw json.RawMessage) ([]W, error) {
	body := unwrap(raw)
	if len(body) == 0 || body[0] != '[' {
		return nil, errors.New("expected a JSON array")
	}
	var out []W
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func firstID(values ...*int64) int64 {
	for _, v := range values {
		if v != nil {
			return *v
		}
	}
	return 0
}

func firstString(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// --- users ---

type wireUser struct {
	UserID    *int64 `json:"userId"`
	ID        *int64 `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
	CreatedAt string `json:"createdAt"`
	Created   string `json:"created_at"`
}

func (w wireUser) toModel() (model.User, error) {
	role, ok := model.ParseRole(w.Role)
	if !ok {
		return model.User{}, fmt.Errorf("user %d: unknown role %q", firstID(w.UserID, w.ID), w.Role)
	}
	created, err := parseTime(firstString(w.CreatedAt, w.Created))
	if err != nil {
		return model.User{}, err
	}
	return model.User{
		ID:        firstID(w.UserID, w.ID),
		Email:     w.Email,
		FirstName: w.FirstName,
		LastName:  w.LastName,
		Role:      role,
		CreatedAt: created,
	}, nil
}

// DecodeUsers converts a user service list payload.
func DecodeUsers(raw json.RawMessage) ([]model.User, error) {
	wires, err := decodeList[wireUser](raw)
	if err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	users := make([]model.User, 0, len(wires))
	for _, w := range wires {
		u, err := w.toModel()
		if err != nil {
			return nil, fmt.Errorf("decode users: %w", err)
		}
		users = append(users, u)
	}
	return users, nil
}

// --- menu ---

type wireMenuItem struct {
	ItemID      *int64           `json:"itemId"`
	ID          *int64           `json:"id"`
	CategoryID  int64            `json:"categoryId"`
	ItemName    string           `json:"itemName"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	IsAvailable bool             `json:"isAvailable"`
	Available   bool             `json:"available"`
}

// DecodeMenuItems converts a menu service item list payload.
func DecodeMenuItems(raw json.RawMessage) ([]model.MenuItem, error) {
	wires, err := decodeList[wireMenuItem](raw)
	if err != nil {
		return nil, fmt.Errorf("decode menu items: %w", err)
	}
	items := make([]model.MenuItem, 0, len(wires))
	for _, w := range wires {
		item := model.MenuItem{
			ID:          firstID(w.ItemID, w.ID),
			CategoryID:  w.CategoryID,
			Name:        firstString(w.ItemName, w.Name),
			Description: w.Description,
			Available:   w.IsAvailable || w.Available,
		}
		if w.Price != nil {
			if w.Price.IsNegative() {
				return nil, fmt.Errorf("decode menu items: item %d has negative price", item.ID)
			}
			item.Price = *w.Price
		}
		items = append(items, item)
	}
	return items, nil
}

type wireCategory struct {
	CategoryID   *int64 `json:"categoryId"`
	ID           *int64 `json:"id"`
	CategoryName string `json:"categoryName"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	IsActive     *bool  `json:"isActive"`
	DisplayOrder int    `json:"displayOrder"`
}

// DecodeCategories converts a menu service category list payload. A
// category without an isActive flag counts as active.
func DecodeCategories(raw json.RawMessage) ([]model.Category, error) {
	wires, err := decodeList[wireCategory](raw)
	if err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	categories := make([]model.Category, 0, len(wires))
	for _, w := range wires {
		categories = append(categories, model.Category{
			ID:           firstID(w.CategoryID, w.ID),
			Name:         firstString(w.CategoryName, w.Name),
			Description:  w.Description,
			Active:       w.IsActive == nil || *w.IsActive,
			DisplayOrder: w.DisplayOrder,
		})
	}
	return categories, nil
}

// --- orders ---

type wireOrderItem struct {
	OrderItemID         int64            `json:"orderItemId"`
	ItemID              int64            `json:"itemId"`
	ItemName            string           `json:"itemName"`
	Quantity            int              `json:"quantity"`
	UnitPrice           *decimal.Decimal `json:"unitPrice"`
	Subtotal            *decimal.Decimal `json:"subtotal"`
	SpecialInstructions string           `json:"specialInstructions"`
}

type wireStatusChange struct {
	NewStatus string `json:"newStatus"`
	Status    string `json:"status"`
	ChangedAt string `json:"changedAt"`
	ChangedBy *int64 `json:"changedBy"`
}

type wireOrder struct {
	OrderID         *int64             `json:"orderId"`
	ID              *int64             `json:"id"`
	UserID          int64              `json:"userId"`
	CustomerName    string             `json:"customerName"`
	TotalAmount     *decimal.Decimal   `json:"totalAmount"`
	OrderStatus     string             `json:"orderStatus"`
	Status          string             `json:"status"`
	OrderDate       string             `json:"orderDate"`
	OrderType       string             `json:"orderType"`
	DeliveryAddress string             `json:"deliveryAddress"`
	StaffID         *int64             `json:"staffId"`
	OrderItems      []wireOrderItem    `json:"orderItems"`
	StatusHistory   []wireStatusChange `json:"statusHistory"`
}

func (w wireOrder) toModel() (model.Order, error) {
	id := firstID(w.OrderID, w.ID)
	status, err := lifecycle.ParseStatus(firstString(w.OrderStatus, w.Status))
	if err != nil {
		return model.Order{}, fmt.Errorf("order %d: %w", id, err)
	}
	orderDate, err := parseTime(w.OrderDate)
	if err != nil {
		return model.Order{}, fmt.Errorf("order %d: %w", id, err)
	}

	order := model.Order{
		ID:              id,
		UserID:          w.UserID,
		CustomerName:    w.CustomerName,
		Status:          status,
		Type:            parseOrderType(w.OrderType),
		DeliveryAddress: w.DeliveryAddress,
		OrderDate:       orderDate,
		StaffID:         w.StaffID,
	}
	if w.TotalAmount != nil {
		order.Amount = *w.TotalAmount
	}

	for _, wi := range w.OrderItems {
		item := model.OrderItem{
			ID:                  wi.OrderItemID,
			ItemID:              wi.ItemID,
			Name:                wi.ItemName,
			Quantity:            wi.Quantity,
			SpecialInstructions: wi.SpecialInstructions,
		}
		if wi.UnitPrice != nil {
			item.UnitPrice = *wi.UnitPrice
		}
		if wi.Subtotal != nil {
			item.Subtotal = *wi.Subtotal
		} else {
			item.Subtotal = item.UnitPrice.Mul(decimal.NewFromInt(int64(wi.Quantity)))
		}
		order.Items = append(order.Items, item)
	}

	for _, wh := range w.StatusHistory {
		s, err := lifecycle.ParseStatus(firstString(wh.NewStatus, wh.Status))
		if err != nil {
			return model.Order{}, fmt.Errorf("order %d history: %w", id, err)
		}
		at, err := parseTime(wh.ChangedAt)
		if err != nil {
			return model.Order{}, fmt.Errorf("order %d history: %w", id, err)
		}
		change := model.StatusChange{Status: s, At: at}
		if wh.ChangedBy != nil {
			change.ChangedBy = *wh.ChangedBy
		}
		order.StatusHistory = append(order.StatusHistory, change)
	}
	sort.SliceStable(order.StatusHistory, func(i, j int) bool {
		return order.StatusHistory[i].At.Before(order.StatusHistory[j].At)
	})

	if err := order.Validate(); err != nil {
		return model.Order{}, fmt.Errorf("order %d: %w", id, err)
	}
	return order, nil
}

func parseOrderType(raw string) model.OrderType {
	t := model.OrderType(strings.ToUpper(strings.TrimSpace(raw)))
	if t == "TAKEOUT" {
		return model.OrderTypeTakeaway
	}
	return t
}

// DecodeOrders converts an order service list payload. Legacy status names
// are translated; any record breaking order invariants fails the whole
// payload.
func DecodeOrders(raw json.RawMessage) ([]model.Order, error) {
	wires, err := decodeList[wireOrder](raw)
	if err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}
	orders := make([]model.Order, 0, len(wires))
	for _, w := range wires {
		o, err := w.toModel()
		if err != nil {
			return nil, fmt.Errorf("decode orders: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, nil
}

// DecodeOrder converts a single order payload.
func DecodeOrder(raw json.RawMessage) (*model.Order, error) {
	var w wireOrder
	if err := json.Unmarshal(unwrap(raw), &w); err != nil {
		return nil, fmt.Errorf("decode order: %w", err)
	}
	o, err := w.toModel()
	if err != nil {
		return nil, fmt.Errorf("decode order: %w", err)
	}
	return &o, nil
}
