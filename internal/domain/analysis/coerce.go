package analysis

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	defaultSentimentScore = 0.5
	defaultSentimentLabel = LabelNeutral
	defaultEnergy         = 0.4
	maxKeywords           = 8
)

// CoercionError reports a provider field that could not be converted.
type CoercionError struct {
	Field string
	Err   error
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("coerce %s: %v", e.Field, e.Err)
}

func (e *CoercionError) Unwrap() error { return e.Err }

// Coerce converts loosely-typed provider JSON into a Result. Missing or null
// fields take defaults; numeric fields that cannot be read as finite numbers
// fail with *CoercionError.
func Coerce(raw map[string]any) (Result, error) {
	score, err := coerceUnit(raw, "sentiment_score", defaultSentimentScore)
	if err != nil {
		return Result{}, err
	}
	energy, err := coerceUnit(raw, "energy", defaultEnergy)
	if err != nil {
		return Result{}, err
	}
	keywords, err := coerceKeywords(raw["keywords"])
	if err != nil {
		return Result{}, err
	}
	return Result{
		SentimentScore: score,
		SentimentLabel: coerceLabel(raw["sentiment_label"]),
		Energy:         energy,
		Keywords:       keywords,
	}, nil
}

func coerceUnit(raw map[string]any, field string, fallback float64) (float64, error) {
	v, ok := raw[field]
	if !ok || v == nil {
		return fallback, nil
	}
	f, err := toFloat(v)
	if err != nil {
		return 0, &CoercionError{Field: field, Err: err}
	}
	return math.Min(1, math.Max(0, f)), nil
}

func toFloat(v any) (float64, error) {
	var (
		f   float64
		err error
	)
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		f, err = n.Float64()
	case string:
		f, err = strconv.ParseFloat(strings.TrimSpace(n), 64)
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("non-finite value %v", f)
	}
	return f, nil
}

func coerceLabel(v any) string {
	s, ok := v.(string)
	if !ok {
		return defaultSentimentLabel
	}
	switch label := strings.ToLower(strings.TrimSpace(s)); label {
	case LabelNegative, LabelNeutral, LabelPositive:
		return label
	default:
		return defaultSentimentLabel
	}
}

func coerceKeywords(v any) ([]string, error) {
	var items []any
	switch kw := v.(type) {
	case nil:
		return []string{}, nil
	case []any:
		items = kw
	case []string:
		items = make([]any, len(kw))
		for i, s := range kw {
			items[i] = s
		}
	default:
		return nil, &CoercionError{Field: "keywords", Err: fmt.Errorf("unsupported type %T", v)}
	}

	out := make([]string, 0, min(len(items), maxKeywords))
	for _, item := range items {
		if len(out) == maxKeywords {
			break
		}
		s, ok := item.(string)
		if !ok {
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out, nil
}
