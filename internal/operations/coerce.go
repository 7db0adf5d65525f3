package operations

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// диапазон интенсивности корректировок у вендора
const (
	minAdjustment = -100
	maxAdjustment = 100
)

// roundHalfAway - округление половины от нуля: 0.5 -> 1, -0.5 -> -1.
// Результат зажат в int32, чтобы огромные значения не переполняли int и не меняли знак.
func roundHalfAway(f float64) int {
	return int(clamp(math.Round(f), math.MinInt32, math.MaxInt32))
}

// roundAdjustment - нечисловое значение дает 0, число округляется и зажимается в -100..100
func roundAdjustment(v any) int {
	f, ok := toNumber(v)
	if !ok {
		return 0
	}
	return roundHalfAway(clamp(f, minAdjustment, maxAdjustment))
}

func clamp(f, low, high float64) float64 {
	return math.Max(low, math.Min(high, f))
}

func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return finite(n)
	case float32:
		return finite(float64(n))
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return finite(f)
	default:
		return 0, false
	}
}

func finite(f float64) (float64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func isTruthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	default:
		if f, ok := toNumber(v); ok {
			return f != 0
		}
		return true
	}
}

func toDimension(v any) *Dimension {
	if f, ok := toNumber(v); ok {
		return &Dimension{Pixels: roundHalfAway(f)}
	}

	s, ok := v.(string)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	switch {
	case strings.HasSuffix(s, "%"):
		return &Dimension{Relative: s}
	case s == "":
		return nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return &Dimension{Pixels: roundHalfAway(f)}
	}
	return nil
}

func toFit(v any) *Fit {
	switch f := v.(type) {
	case string:
		if f = strings.TrimSpace(f); f != "" {
			return &Fit{Mode: f}
		}
	case map[string]any:
		t, _ := f["type"].(string)
		if t == "" {
			return nil
		}
		crop, _ := f["crop"].(string)
		return &Fit{Type: t, Crop: crop}
	}
	return nil
}
