package model

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus describes the canonical order lifecycle state.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusPreparing OrderStatus = "PREPARING"
	OrderStatusReady     OrderStatus = "READY"
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// OrderType describes how the order is fulfilled.
type OrderType string

const (
	OrderTypeDineIn   OrderType = "DINE_IN"
	OrderTypeTakeaway OrderType = "TAKEAWAY"
	OrderTypeDelivery OrderType = "DELIVERY"
)

// Valid reports whether t is a known fulfillment type.
func (t OrderType) Valid() bool {
	switch t {
	case OrderTypeDineIn, OrderTypeTakeaway, OrderTypeDelivery:
		return true
	}
	return false
}

// OrderItem is a single line of an order.
type OrderItem struct {
	ID                  int64           `json:"orderItemId"`
	ItemID              int64           `json:"itemId"`
	Name                string          `json:"itemName"`
	Quantity            int             `json:"quantity"`
	UnitPrice           decimal.Decimal `json:"unitPrice"`
	Subtotal            decimal.Decimal `json:"subtotal"`
	SpecialInstructions string          `json:"specialInstructions,omitempty"`
}

// StatusChange records a single accepted transition.
type StatusChange struct {
	Status    OrderStatus `json:"status"`
	At        time.Time   `json:"changedAt"`
	ChangedBy int64       `json:"changedBy,omitempty"`
}

// Order mirrors an order record owned by the order service.
type Order struct {
	ID              int64           `json:"orderId"`
	UserID          int64           `json:"userId"`
	CustomerName    string          `json:"customerName,omitempty"`
	Status          OrderStatus     `json:"orderStatus"`
	StatusHistory   []StatusChange  `json:"statusHistory"`
	Amount          decimal.Decimal `json:"totalAmount"`
	Items           []OrderItem     `json:"orderItems"`
	Type            OrderType       `json:"orderType"`
	DeliveryAddress string          `json:"deliveryAddress,omitempty"`
	OrderDate       time.Time       `json:"orderDate"`
	StaffID         *int64          `json:"staffId,omitempty"`
}

var (
	errNoItems         = errors.New("order has no items")
	errNegativeAmount  = errors.New("order amount is negative")
	errUnknownType     = errors.New("unknown order type")
	errAddressRequired = errors.New("delivery address required for delivery orders")
	errAddressSpurious = errors.New("delivery address set on non-delivery order")
)

// Validate checks structural invariants of an order record.
func (o *Order) Validate() error {
	if len(o.Items) == 0 {
		return errNoItems
	}
	if o.Amount.IsNegative() {
		return errNegativeAmount
	}
	if !o.Type.Valid() {
		return errUnknownType
	}
	if o.Type == OrderTypeDelivery && o.DeliveryAddress == "" {
		return errAddressRequired
	}
	if o.Type != OrderTypeDelivery && o.DeliveryAddress != "" {
		return errAddressSpurious
	}
	return nil
}
