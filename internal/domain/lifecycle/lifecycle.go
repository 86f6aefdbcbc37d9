// Package lifecycle defines the canonical order status graph and the only
// sanctioned way of moving an order along it.
package lifecycle

import (
	"fmt"
	"strings"
	"time"

	domainErrors "github.com/polkiloo/fosgateway/internal/domain/errors"
	"github.com/polkiloo/fosgateway/internal/domain/model"
)

// transitions is a DAG ending in COMPLETED and CANCELLED. The first entry
// of each list is the forward step offered to staff as the next action.
var transitions = map[model.OrderStatus][]model.OrderStatus{
	model.OrderStatusPending:   {model.OrderStatusConfirmed, model.OrderStatusCancelled},
	model.OrderStatusConfirmed: {model.OrderStatusPreparing, model.OrderStatusCancelled},
	model.OrderStatusPreparing: {model.OrderStatusReady, model.OrderStatusCancelled},
	model.OrderStatusReady:     {model.OrderStatusCompleted},
	model.OrderStatusCompleted: nil,
	model.OrderStatusCancelled: nil,
}

var labels = map[model.OrderStatus]string{
	model.OrderStatusPending:   "Confirm Order",
	model.OrderStatusConfirmed: "Start Preparing",
	model.OrderStatusPreparing: "Mark Ready",
	model.OrderStatusReady:     "Complete Order",
}

// legacy maps the alternative vocabulary used by older order surfaces.
var legacy = map[string]model.OrderStatus{
	"ACCEPTED":  model.OrderStatusConfirmed,
	"DELIVERED": model.OrderStatusCompleted,
	"REJECTED":  model.OrderStatusCancelled,
}

// Canonical lists every canonical status in lifecycle order.
var Canonical = []model.OrderStatus{
	model.OrderStatusPending,
	model.OrderStatusConfirmed,
	model.OrderStatusPreparing,
	model.OrderStatusReady,
	model.OrderStatusCompleted,
	model.OrderStatusCancelled,
}

// Action is the forward transition available from a status.
type Action struct {
	NextStatus model.OrderStatus `json:"nextStatus"`
	Label      string            `json:"label"`
}

// IsCanonical reports whether s belongs to the canonical state set.
func IsCanonical(s model.OrderStatus) bool {
	_, ok := transitions[s]
	return ok
}

// IsTerminal reports whether no transition leaves s.
func IsTerminal(s model.OrderStatus) bool {
	next, ok := transitions[s]
	return ok && len(next) == 0
}

// ParseStatus converts a wire value into a canonical status, translating the
// legacy vocabulary.
func ParseStatus(raw string) (model.OrderStatus, error) {
	value := strings.ToUpper(strings.TrimSpace(raw))
	if s := model.OrderStatus(value); IsCanonical(s) {
		return s, nil
	}
	if s, ok := legacy[value]; ok {
		return s, nil
	}
	return "", fmt.Errorf("%w: %q", domainErrors.ErrUnknownStatus, raw)
}

// NextAllowed returns the statuses reachable in one step from current.
// The result is a fresh slice; unknown and terminal states yield none.
func NextAllowed(current model.OrderStatus) []model.OrderStatus {
	next := transitions[current]
	out := make([]model.OrderStatus, len(next))
	copy(out, next)
	return out
}

// ValidateTransition returns nil when requested is reachable from current,
// otherwise a Rejection of kind ErrInvalidTransition.
func ValidateTransition(current, requested model.OrderStatus) error {
	if !IsCanonical(current) {
		return domainErrors.Reject(domainErrors.ErrUnknownStatus, string(current))
	}
	if !IsCanonical(requested) {
		return domainErrors.Reject(domainErrors.ErrUnknownStatus, string(requested))
	}
	for _, s := range transitions[current] {
		if s == requested {
			return nil
		}
	}
	if IsTerminal(current) {
		return domainErrors.Reject(domainErrors.ErrInvalidTransition,
			fmt.Sprintf("order is %s and cannot change", current))
	}
	return domainErrors.Reject(domainErrors.ErrInvalidTransition,
		fmt.Sprintf("%s cannot move to %s", current, requested))
}

// LabelFor returns the name of the forward transition from current.
// ok is false for terminal states.
func LabelFor(current model.OrderStatus) (string, bool) {
	label, ok := labels[current]
	return label, ok
}

// NextAction returns the forward step offered from current, or nil.
func NextAction(current model.OrderStatus) *Action {
	next := transitions[current]
	label, ok := labels[current]
	if len(next) == 0 || !ok {
		return nil
	}
	return &Action{NextStatus: next[0], Label: label}
}

// Apply validates and performs the transition on order, appending to its
// history. It is the only code path that assigns Order.Status.
func Apply(order *model.Order, requested model.OrderStatus, changedBy int64, now time.Time) error {
	if err := ValidateTransition(order.Status, requested); err != nil {
		return err
	}
	if n := len(order.StatusHistory); n > 0 && now.Before(order.StatusHistory[n-1].At) {
		now = order.StatusHistory[n-1].At
	}
	order.StatusHistory = append(order.StatusHistory, model.StatusChange{
		Status:    requested,
		At:        now,
		ChangedBy: changedBy,
	})
	order.Status = requested
	return nil
}
