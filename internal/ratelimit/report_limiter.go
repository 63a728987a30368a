package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/credicheck/internal/config"
	obsmetrics "github.com/smallbiznis/credicheck/internal/observability/metrics"
)

const keyReportGenerator = "reports:generate:actor:%s"

// ReportLimiter throttles paid report generation per requesting actor. With
// no Redis configured the limiter is nil and generation is unthrottled.
type ReportLimiter struct {
	bucket *TokenBucket
	rate   float64
	burst  int

	obsMetrics *obsmetrics.Metrics
}

func NewReportLimiter(cfg config.Config, metrics *obsmetrics.Metrics) (*ReportLimiter, error) {
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return nil, nil
	}
	if cfg.ReportRateLimitPerMinute <= 0 || cfg.ReportRateLimitBurst <= 0 {
		return nil, fmt.Errorf("report rate limit requires positive rate and burst")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.RedisPassword,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("rate limit redis ping: %w", err)
	}

	return &ReportLimiter{
		bucket:     NewTokenBucket(client),
		rate:       float64(cfg.ReportRateLimitPerMinute) / 60.0,
		burst:      cfg.ReportRateLimitBurst,
		obsMetrics: metrics,
	}, nil
}

// Allow reports whether the actor may generate another batch right now.
func (l *ReportLimiter) Allow(ctx context.Context, actorID string) (*Result, error) {
	if l == nil || l.bucket == nil {
		return &Result{Allowed: true}, nil
	}

	key := fmt.Sprintf(keyReportGenerator, actorID)
	result, err := l.bucket.Allow(ctx, key, l.rate, l.burst)
	if err != nil {
		// Redis trouble must not block paid traffic.
		return &Result{Allowed: true}, nil
	}

	if l.obsMetrics != nil {
		if result.Allowed {
			l.obsMetrics.RecordRateLimitAllowed(ctx, "reports.generate")
		} else {
			l.obsMetrics.RecordRateLimitDenied(ctx, "reports.generate", "rate_limited")
		}
	}
	return result, nil
}
