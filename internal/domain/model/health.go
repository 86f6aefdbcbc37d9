package model

import "time"

// ServiceName identifies a backing service.
type ServiceName string

const (
	ServiceUser  ServiceName = "user"
	ServiceMenu  ServiceName = "menu"
	ServiceOrder ServiceName = "order"
)

// Services lists every backing service in probe order.
var Services = []ServiceName{ServiceUser, ServiceMenu, ServiceOrder}

// ServiceHealth is the outcome of one probe. Values are never mutated.
type ServiceHealth struct {
	Service   ServiceName   `json:"serviceName"`
	Reachable bool          `json:"reachable"`
	CheckedAt time.Time     `json:"checkedAt"`
	Latency   time.Duration `json:"-"`
	LastError string        `json:"lastError,omitempty"`
}

// HealthSnapshot is the set of probe results of a single poll cycle.
type HealthSnapshot struct {
	Services  map[ServiceName]ServiceHealth `json:"services"`
	CheckedAt time.Time                     `json:"checkedAt"`
}

// Overall reports whether every probed service was reachable.
func (s HealthSnapshot) Overall() bool {
	if len(s.Services) == 0 {
		return false
	}
	for _, h := range s.Services {
		if !h.Reachable {
			return false
		}
	}
	return true
}

// Fresh reports whether the snapshot is younger than maxAge at now.
func (s HealthSnapshot) Fresh(now time.Time, maxAge time.Duration) bool {
	if s.CheckedAt.IsZero() {
		return false
	}
	return now.Sub(s.CheckedAt) <= maxAge
}
