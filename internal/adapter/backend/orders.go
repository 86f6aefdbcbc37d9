package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strconv"

	"github.com/polkiloo/fosgateway/internal/domain/model"
)

// OrdersPath lists orders; single orders live below it.
const (
	OrdersPath      = "/orders"
	orderHealthPath = "/orders/health"
)

// OrderClient talks to the order service.
type OrderClient struct {
	*Client
}

// Order fetches a single order; unknown ids yield ErrNotFound.
func (c *OrderClient) Order(ctx context.Context, id int64) (*model.Order, error) {
	endpoint := path.Join(OrdersPath, strconv.FormatInt(id, 10))
	raw, err := c.Get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	order, err := DecodeOrder(raw)
	if err != nil {
		return nil, c.malformed(endpoint, err)
	}
	return order, nil
}

// UpdateStatus asks the order service to move order id to status on behalf
// of staffID and returns the stored record.
func (c *OrderClient) UpdateStatus(ctx context.Context, id int64, status model.OrderStatus, staffID int64) (*model.Order, error) {
	endpoint := path.Join(OrdersPath, strconv.FormatInt(id, 10), "status")
	query := url.Values{}
	query.Set("status", string(status))
	query.Set("staffId", strconv.FormatInt(staffID, 10))

	code, body, err := c.do(ctx, http.MethodPut, endpoint, query, nil)
	if err != nil {
		return nil, err
	}
	switch {
	case code == http.StatusNotFound:
		return nil, fmt.Errorf("order %d: %w", id, ErrNotFound)
	case code < 200 || code >= 300:
		return nil, &ServiceError{Service: c.service, Endpoint: endpoint, StatusCode: code, Message: snippet(body)}
	}
	order, err := DecodeOrder(body)
	if err != nil {
		return nil, c.malformed(endpoint, err)
	}
	return order, nil
}
