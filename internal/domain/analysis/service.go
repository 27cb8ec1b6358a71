package analysis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/matiasleandrokruk/aura/internal/infra/eventbus"
	"github.com/matiasleandrokruk/aura/internal/infra/llm"
)

// ResultCache stores encoded results between requests. Implementations must
// report a miss as (nil, false, nil).
type ResultCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// MetricsRecorder receives one call per analysis step worth counting.
type MetricsRecorder interface {
	RecordAnalysis(source, provider string)
	RecordProviderFailure(provider, kind string)
	RecordProviderLatency(provider string, d time.Duration)
	RecordCacheLookup(result string)
}

type noopMetrics struct{}

func (noopMetrics) RecordAnalysis(string, string)               {}
func (noopMetrics) RecordProviderFailure(string, string)        {}
func (noopMetrics) RecordProviderLatency(string, time.Duration) {}
func (noopMetrics) RecordCacheLookup(string)                    {}

const defaultCacheTTL = time.Hour

// Service is the analysis orchestrator. It holds no per-request state and is
// safe for concurrent use.
type Service struct {
	client   *ProviderClient
	provider string
	model    string

	cache    ResultCache
	cacheTTL time.Duration
	bus      eventbus.EventBus
	metrics  MetricsRecorder
	logger   *slog.Logger
	now      func() time.Time
}

// Option customizes the Service.
type Option func(*Service)

// WithCache enables result caching for LLM-sourced results.
func WithCache(cache ResultCache, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = cache
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// WithEventBus publishes an Outcome on TopicAnalysisCompleted after every analysis.
func WithEventBus(bus eventbus.EventBus) Option {
	return func(s *Service) { s.bus = bus }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m MetricsRecorder) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithLogger sets the logger; defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides time.Now (tests).
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService builds the orchestrator for the resolved provider config. A nil
// provider or an empty API key puts the service in heuristic-only mode.
func NewService(cfg llm.ProviderConfig, provider llm.LLMProvider, opts ...Option) *Service {
	s := &Service{
		provider: cfg.Name,
		model:    cfg.Model,
		cacheTTL: defaultCacheTTL,
		metrics:  noopMetrics{},
		logger:   slog.Default(),
		now:      time.Now,
	}
	if provider != nil && cfg.HasAPIKey() {
		s.client = NewProviderClient(provider)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LLMEnabled reports whether requests will try the provider at all.
func (s *Service) LLMEnabled() bool {
	return s.client != nil
}

// ProcessText analyzes text and never fails.
func (s *Service) ProcessText(ctx context.Context, text string) Result {
	return s.Analyze(ctx, text).Result
}

// Analyze runs the LLM path and falls back to AnalyzeHeuristic on any failure.
func (s *Service) Analyze(ctx context.Context, text string) Outcome {
	start := s.now()
	out := Outcome{
		Provider:   s.provider,
		Model:      s.model,
		TextLength: utf8.RuneCountInString(text),
		TextSHA256: hashText(text),
		At:         start,
	}

	res, source, err := s.analyzeWithProvider(ctx, text, out.TextSHA256)
	if err != nil {
		out.Failure = failureKindOf(err)
		out.Err = err
		if out.Failure != FailureConfig {
			s.logger.Warn("llm analysis failed, using heuristic fallback",
				"provider", s.provider,
				"kind", string(out.Failure),
				"error", err,
			)
		}
		s.metrics.RecordProviderFailure(s.provider, string(out.Failure))
		res = AnalyzeHeuristic(text)
		source = SourceHeuristic
	}

	out.Result = res
	out.Source = source
	out.Duration = s.now().Sub(start)
	s.metrics.RecordAnalysis(string(source), s.provider)
	s.logger.Debug("analysis completed",
		"source", string(source),
		"provider", s.provider,
		"label", res.SentimentLabel,
		"duration_ms", out.Duration.Milliseconds(),
	)
	if s.bus != nil {
		s.bus.Publish(TopicAnalysisCompleted, out)
	}
	return out
}

var errLLMDisabled = &llm.Error{Kind: llm.KindConfig, Op: "analysis", Err: llm.ErrMissingAPIKey}

func (s *Service) analyzeWithProvider(ctx context.Context, text, digest string) (Result, Source, error) {
	if s.client == nil {
		return Result{}, "", errLLMDisabled
	}

	key := s.cacheKey(digest)
	if cached, ok := s.lookupCache(ctx, key); ok {
		return cached, SourceCache, nil
	}

	callStart := s.now()
	raw, err := s.client.CallProvider(ctx, text)
	s.metrics.RecordProviderLatency(s.provider, s.now().Sub(callStart))
	if err != nil {
		return Result{}, "", err
	}

	res, err := Coerce(raw)
	if err != nil {
		return Result{}, "", err
	}

	s.storeCache(ctx, key, res)
	return res, SourceLLM, nil
}

func (s *Service) cacheKey(digest string) string {
	return fmt.Sprintf("aura:analysis:%s:%s:%s", s.provider, s.model, digest)
}

func (s *Service) lookupCache(ctx context.Context, key string) (Result, bool) {
	if s.cache == nil {
		return Result{}, false
	}
	data, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.metrics.RecordCacheLookup("error")
		s.logger.Warn("analysis cache lookup failed", "error", err)
		return Result{}, false
	}
	if !ok {
		s.metrics.RecordCacheLookup("miss")
		return Result{}, false
	}

	var res Result
	if err := json.Unmarshal(data, &res); err != nil {
		s.metrics.RecordCacheLookup("error")
		s.logger.Warn("analysis cache entry unreadable", "error", err)
		return Result{}, false
	}
	// Entries are re-validated so a stale or foreign value can't break the range contract.
	res, err = Coerce(map[string]any{
		"sentiment_score": res.SentimentScore,
		"sentiment_label": res.SentimentLabel,
		"energy":          res.Energy,
		"keywords":        res.Keywords,
	})
	if err != nil {
		s.metrics.RecordCacheLookup("error")
		return Result{}, false
	}
	s.metrics.RecordCacheLookup("hit")
	return res, true
}

func (s *Service) storeCache(ctx context.Context, key string, res Result) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(res)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, s.cacheTTL); err != nil {
		s.logger.Warn("analysis cache store failed", "error", err)
	}
}

func failureKindOf(err error) FailureKind {
	var coerceErr *CoercionError
	if errors.As(err, &coerceErr) {
		return FailureCoercion
	}
	switch llm.KindOf(err) {
	case llm.KindConfig:
		return FailureConfig
	case llm.KindTransport:
		return FailureTransport
	case llm.KindParse:
		return FailureParse
	default:
		return FailureUnknown
	}
}

func hashText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
