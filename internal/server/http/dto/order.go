package dto

import (
	"github.com/polkiloo/fosgateway/internal/domain/lifecycle"
	"github.com/polkiloo/fosgateway/internal/domain/model"
)

// StatusChangeRequest is the body of PUT /api/orders/{id}/status.
type StatusChangeRequest struct {
	Status string `json:"status"`
}

// NextActionResponse tells staff which step an order can take next.
type NextActionResponse struct {
	OrderID    int64               `json:"orderId"`
	Status     model.OrderStatus   `json:"status"`
	NextAction *lifecycle.Action   `json:"nextAction"`
	Allowed    []model.OrderStatus `json:"allowed"`
	Terminal   bool                `json:"terminal"`
}

// NewNextActionResponse describes the options available for order.
func NewNextActionResponse(order *model.Order, action *lifecycle.Action) NextActionResponse {
	allowed := lifecycle.NextAllowed(order.Status)
	if allowed == nil {
		allowed = []model.OrderStatus{}
	}
	return NextActionResponse{
		OrderID:    order.ID,
		Status:     order.Status,
		NextAction: action,
		Allowed:    allowed,
		Terminal:   lifecycle.IsTerminal(order.Status),
	}
}
