package shared

// Asynq task types and queues
const (
	TypeRegisterRouting = "domain:register_routing"
	TypeSweepUnrouted   = "domain:sweep_unrouted"

	QueueDomain = "domain"
	QueueLow    = "low"
)

// RegisterRoutingPayload asks the worker to attach a verified domain to
// the routing provider.
type RegisterRoutingPayload struct {
	PortfolioID string `json:"portfolio_id"`
	Domain      string `json:"domain"`
}

// SweepUnroutedPayload is empty; the job scans for pending registrations.
type SweepUnroutedPayload struct{}
