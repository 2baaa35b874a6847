package services

import (
	"math"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	"github.com/studypool/studypool_api/dto"
	"github.com/studypool/studypool_api/ratelimit"
	"github.com/studypool/studypool_api/shared"
	log "github.com/sirupsen/logrus"
)

// RateLimitService wraps the ratelimit package in fiber middleware and owns
// the shared client cache plus its periodic cleanup.
type RateLimitService struct {
	context.DefaultService

	store   *ratelimit.Store
	limiter *ratelimit.Limiter

	cacheSize int
	cacheTTL  time.Duration

	stopCleanup chan struct{}
}

const RATE_LIMIT_SVC = "rate_limit_svc"

func (svc RateLimitService) Id() string {
	return RATE_LIMIT_SVC
}

func (svc *RateLimitService) Configure(ctx *context.Context) error {
	svc.cacheSize = ratelimit.DefaultMaxEntries
	if sizeStr := os.Getenv("RATE_LIMIT_CACHE_SIZE"); sizeStr != "" {
		if size, err := strconv.Atoi(sizeStr); err == nil && size > 0 {
			svc.cacheSize = size
		} else {
			log.Printf("Invalid RATE_LIMIT_CACHE_SIZE %q, using default %d", sizeStr, ratelimit.DefaultMaxEntries)
		}
	}

	svc.cacheTTL = ratelimit.DefaultTTL
	if ttlStr := os.Getenv("RATE_LIMIT_CACHE_TTL"); ttlStr != "" {
		if ttl, err := time.ParseDuration(ttlStr); err == nil && ttl > 0 {
			svc.cacheTTL = ttl
		} else {
			log.Printf("Invalid RATE_LIMIT_CACHE_TTL %q, using default %s", ttlStr, ratelimit.DefaultTTL)
		}
	}

	// A broken preset is a programmer error, surface it before serving.
	for _, cfg := range ratelimit.Presets() {
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	svc.store = ratelimit.NewStore(svc.cacheSize, svc.cacheTTL)
	svc.limiter = ratelimit.NewLimiter(svc.store)
	svc.stopCleanup = make(chan struct{})

	return svc.DefaultService.Configure(ctx)
}

func (svc *RateLimitService) Start() error {
	go svc.startCleanupJob()
	return nil
}

func (svc *RateLimitService) Shutdown() {
	close(svc.stopCleanup)
}

// ==================== MIDDLEWARE FUNCTIONS ====================

// Limit enforces the given policy keyed by the derived client identifier.
func (svc *RateLimitService) Limit(cfg ratelimit.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return svc.enforce(c, clientIdentifier(c), cfg)
	}
}

// LimitByUser enforces the given policy keyed by the authenticated user ID,
// falling back to the client identifier for anonymous requests.
func (svc *RateLimitService) LimitByUser(cfg ratelimit.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identifier := ""
		if userID, ok := c.Locals(shared.UserID).(string); ok {
			identifier = userID
		}
		if identifier == "" {
			identifier = clientIdentifier(c)
		}

		return svc.enforce(c, identifier, cfg)
	}
}

func (svc *RateLimitService) enforce(c *fiber.Ctx, identifier string, cfg ratelimit.Config) error {
	decision := svc.limiter.Check(identifier, cfg)

	svc.setRateLimitHeaders(c, decision)

	if decision.Limited {
		return svc.handleRateLimitExceeded(c, cfg, decision)
	}

	return c.Next()
}

// ==================== HELPER FUNCTIONS ====================

func (svc *RateLimitService) setRateLimitHeaders(c *fiber.Ctx, decision ratelimit.Decision) {
	c.Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
	c.Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
	c.Set("X-RateLimit-Reset", strconv.FormatInt(decision.ResetAt.UnixMilli(), 10))
}

func (svc *RateLimitService) handleRateLimitExceeded(c *fiber.Ctx, cfg ratelimit.Config, decision ratelimit.Decision) error {
	retryAfter := int(math.Ceil(time.Until(decision.ResetAt).Seconds()))
	if retryAfter < 0 {
		retryAfter = 0
	}

	c.Set("Retry-After", strconv.Itoa(retryAfter))

	// The 429 body shape is a published contract, so it bypasses the shared
	// response envelope.
	return c.Status(http.StatusTooManyRequests).JSON(dto.RateLimitExceededResponse{
		Error:      "Rate limit exceeded",
		Message:    getRateLimitMessage(cfg.Name),
		RetryAfter: retryAfter,
	})
}

func getRateLimitMessage(name string) string {
	messages := map[string]string{
		"auth":    "Too many authentication attempts. Please try again later.",
		"upload":  "Too many upload requests. Please try again later.",
		"delete":  "Too many delete requests. Please try again later.",
		"general": "Too many requests. Please slow down.",
		"test":    "Too many requests. Please try again later.",
	}

	if message, exists := messages[name]; exists {
		return message
	}

	return "Too many requests. Please try again later."
}

// ==================== UTILITY FUNCTIONS ====================

// clientIdentifier derives the rate limit key for a request: the forwarded
// client IP when behind a proxy or CDN, else a truncated User-Agent, else
// "anonymous".
func clientIdentifier(c *fiber.Ctx) string {
	forwarded := c.Get("X-Forwarded-For")
	if forwarded != "" {
		ips := strings.Split(forwarded, ",")
		if len(ips) > 0 {
			ip := strings.TrimSpace(ips[0])
			if ip != "" {
				return ip
			}
		}
	}

	realIP := c.Get("X-Real-IP")
	if realIP != "" {
		return realIP
	}

	cfIP := c.Get("CF-Connecting-IP")
	if cfIP != "" {
		return cfIP
	}

	userAgent := c.Get(fiber.HeaderUserAgent)
	if len(userAgent) > 50 {
		userAgent = userAgent[:50]
	}
	if userAgent != "" {
		return userAgent
	}

	return "anonymous"
}

// ==================== ADMIN FUNCTIONS ====================

func (svc *RateLimitService) GetRateLimitStats() fiber.Handler {
	return func(c *fiber.Ctx) error {
		presets := ratelimit.Presets()
		policies := make([]dto.RateLimitPolicyInfo, 0, len(presets))
		for _, cfg := range presets {
			policies = append(policies, dto.RateLimitPolicyInfo{
				Name:        cfg.Name,
				WindowMs:    cfg.Window.Milliseconds(),
				MaxRequests: cfg.MaxRequests,
			})
		}

		stats := dto.RateLimitStatsResponse{
			Policies:       policies,
			TrackedClients: svc.limiter.TrackedClients(),
			CacheCapacity:  svc.cacheSize,
			CacheTTL:       svc.cacheTTL.String(),
		}

		return shared.ResponseJSON(c, http.StatusOK, "Rate limit statistics", stats)
	}
}

func (svc *RateLimitService) InspectIdentifier() fiber.Handler {
	return func(c *fiber.Ctx) error {
		identifier := c.Params("identifier")
		if identifier == "" {
			return shared.ResponseJSON(c, http.StatusBadRequest, "Missing identifier", nil)
		}

		requests := svc.limiter.Recent(identifier)

		return shared.ResponseJSON(c, http.StatusOK, "Recent requests", dto.ClientActivityResponse{
			Identifier: identifier,
			Count:      len(requests),
			Requests:   requests,
		})
	}
}

func (svc *RateLimitService) FlushRateLimits() fiber.Handler {
	return func(c *fiber.Ctx) error {
		svc.limiter.Flush()
		log.Println("Rate limit cache flushed")

		return shared.ResponseJSON(c, http.StatusOK, "Rate limits flushed successfully", nil)
	}
}

// ==================== BACKGROUND JOBS ====================

func (svc *RateLimitService) startCleanupJob() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if pruned := svc.store.PruneExpired(); pruned > 0 {
				log.Printf("Rate limit cleanup removed %d idle entries", pruned)
			}
		case <-svc.stopCleanup:
			return
		}
	}
}
