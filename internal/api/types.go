package api

import "time"

// ErrorResponse is the uniform error body for JSON endpoints
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// TokenRequest authenticates an operator for dashboard and API access
type TokenRequest struct {
	OperatorID string `json:"operator_id"`
	AccessKey  string `json:"access_key"`
}

// TokenResponse carries an issued operator token
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// HealthResponse reports service liveness
type HealthResponse struct {
	Status      string `json:"status"`
	Service     string `json:"service"`
	ActiveCalls int    `json:"active_calls"`
}

// AnalyticsResponse aggregates call traffic counters
type AnalyticsResponse struct {
	ActiveCalls        int   `json:"active_calls"`
	TotalConversations int64 `json:"total_conversations"`
	TotalCustomers     int64 `json:"total_customers"`
}
