package dto

import "time"

// RateLimitExceededResponse is the 429 body. The field names (including the
// camelCase retryAfter) are part of the public API contract.
type RateLimitExceededResponse struct {
	Error      string `json:"error" example:"Rate limit exceeded"`
	Message    string `json:"message" example:"Too many upload requests. Please try again later."`
	RetryAfter int    `json:"retryAfter" example:"42"`
}

// Admin monitoring DTOs

type RateLimitPolicyInfo struct {
	Name        string `json:"name" example:"upload"`
	WindowMs    int64  `json:"window_ms" example:"60000"`
	MaxRequests int    `json:"max_requests" example:"10"`
}

type RateLimitStatsResponse struct {
	Policies       []RateLimitPolicyInfo `json:"policies"`
	TrackedClients int                   `json:"tracked_clients" example:"128"`
	CacheCapacity  int                   `json:"cache_capacity" example:"5000"`
	CacheTTL       string                `json:"cache_ttl" example:"10m0s"`
}

type ClientActivityResponse struct {
	Identifier string      `json:"identifier" example:"203.0.113.7"`
	Count      int         `json:"count" example:"3"`
	Requests   []time.Time `json:"requests"`
}
