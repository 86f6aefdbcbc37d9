package dto

import (
	"time"

	"github.com/polkiloo/fosgateway/internal/domain/model"
)

// ErrorResponse is the body of every non-2xx API answer.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// HealthResponse reports backing service reachability.
type HealthResponse struct {
	Overall   bool                                      `json:"overall"`
	Services  map[model.ServiceName]model.ServiceHealth `json:"services"`
	CheckedAt time.Time                                 `json:"checkedAt"`
}

// NewHealthResponse converts a snapshot for the wire.
func NewHealthResponse(s model.HealthSnapshot) HealthResponse {
	services := s.Services
	if services == nil {
		services = map[model.ServiceName]model.ServiceHealth{}
	}
	return HealthResponse{Overall: s.Overall(), Services: services, CheckedAt: s.CheckedAt}
}
