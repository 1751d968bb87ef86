package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"ipsqr-service/internal/cache"
	"ipsqr-service/internal/ipsqr"
	"ipsqr-service/internal/status"
)

const (
	SourceHTTP  = "http"
	SourceRelay = "relay"
	SourceCLI   = "cli"

	OutcomeComplete = "complete"
	OutcomePartial  = "partial"
)

// Metrics is the part of monitoring.Monitor the decode service reports to.
type Metrics interface {
	TrackDecode(source, outcome string, duration time.Duration)
	TrackRejection(field string)
	TrackCacheLookup(result string)
}

type DecodeService struct {
	decoder         *ipsqr.Decoder
	cache           cache.Cache
	metrics         Metrics
	logger          *slog.Logger
	maxPayloadBytes int
}

// NewDecodeService creates a decode service. resultCache may be nil to
// disable caching; maxPayloadBytes <= 0 disables the size limit.
func NewDecodeService(decoder *ipsqr.Decoder, resultCache cache.Cache, metrics Metrics, logger *slog.Logger, maxPayloadBytes int) *DecodeService {
	return &DecodeService{
		decoder:         decoder,
		cache:           resultCache,
		metrics:         metrics,
		logger:          logger,
		maxPayloadBytes: maxPayloadBytes,
	}
}

// Decode decodes payload, serving repeated payloads from the cache. Cache
// failures are logged and never fail the decode.
func (s *DecodeService) Decode(ctx context.Context, source, payload string) (*ipsqr.Result, error) {
	if s.maxPayloadBytes > 0 && len(payload) > s.maxPayloadBytes {
		return nil, fmt.Errorf("%d bytes, limit %d: %w", len(payload), s.maxPayloadBytes, status.ErrPayloadTooLarge)
	}

	start := time.Now()

	key := cache.Key(payload)
	if res, ok := s.lookup(ctx, key); ok {
		s.report(source, res, time.Since(start), true)
		return res, nil
	}

	res := s.decoder.Decode(payload)
	s.report(source, res, time.Since(start), false)

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, res); err != nil {
			s.logger.Warn("decode cache set failed", "error", err)
		}
	}

	return res, nil
}

// report counts every served decode, cached or not. Warnings of cached
// results are logged here since the decoder did not see them.
func (s *DecodeService) report(source string, res *ipsqr.Result, duration time.Duration, cached bool) {
	outcome := OutcomeComplete
	if !res.Complete() {
		outcome = OutcomePartial
	}
	for _, w := range res.Warnings {
		s.metrics.TrackRejection(w.Field.String())
		if cached {
			s.logger.Warn("ipsqr: value rejected", "field", w.Field.String(), "value", w.Value, "pattern", w.Pattern, "cached", true)
		}
	}
	s.metrics.TrackDecode(source, outcome, duration)

	s.logger.Debug("payload decoded",
		"source", source,
		"cached", cached,
		"fields", res.Record.Len(),
		"warnings", len(res.Warnings),
		"duration", duration,
	)
}

func (s *DecodeService) lookup(ctx context.Context, key string) (*ipsqr.Result, bool) {
	if s.cache == nil {
		return nil, false
	}

	res, err := s.cache.Get(ctx, key)
	switch {
	case err == nil:
		s.metrics.TrackCacheLookup("hit")
		return res, true

	case errors.Is(err, status.ErrCacheMiss):
		s.metrics.TrackCacheLookup("miss")

	default:
		s.metrics.TrackCacheLookup("error")
		s.logger.Warn("decode cache get failed", "error", err)
	}
	return nil, false
}
