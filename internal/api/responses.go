package api

type ErrorResponse struct {
	Error string `json:"error" example:"something went wrong"`
}

type MessageResponse struct {
	Message string `json:"message" example:"ok"`
}

type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}

// WebhookAck is the fixed acknowledgement body for gateway webhooks.
// Gateways retry on non-2xx, so webhook handlers always answer this.
type WebhookAck struct {
	Received bool `json:"received" example:"true"`
}
