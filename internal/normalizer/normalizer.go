// Package normalizer projects vendor asset metadata onto the vendor-agnostic NormalizedResult
package normalizer

import (
	"fmt"
	"math"
	"strings"

	"github.com/UnendingLoop/ImageLab/internal/model"
	"github.com/dustin/go-humanize"
	"github.com/samber/lo"
)

const (
	baseScore = 0.8
	minScore  = 0.3
	maxScore  = 0.95

	squareMin = 0.95
	squareMax = 1.05

	minSide = 800

	optimizedBytes = 5 * 1024 * 1024
	oversizedBytes = 10 * 1024 * 1024

	focusThreshold = 0.5
	noiseThreshold = 0.7
	maxColors      = 20
	keptColors     = 5

	complianceShare = 0.75
)

var webFormats = []string{"jpg", "jpeg", "png", "webp", "gif"}

// Normalize is pure and total: missing fields are zero values and fail their checks.
func Normalize(meta model.AssetMetadata) model.NormalizedResult {
	format := strings.ToLower(meta.Format)
	ratio := aspectRatio(meta.Width, meta.Height)

	score := baseScore
	issues := make([]model.Issue, 0)

	// пропорции
	isSquare := ratio >= squareMin && ratio <= squareMax
	if !isSquare {
		issues = append(issues, model.Issue{
			Type:       "composition",
			Severity:   model.SeverityMedium,
			Message:    fmt.Sprintf("Aspect ratio %.2f:1 - not square (e-commerce standard is 1:1)", ratio),
			Suggestion: "Crop to square format for better display",
		})
		score -= 0.10
	}

	// размеры
	isStandardSize := meta.Width >= minSide && meta.Height >= minSide
	if !isStandardSize {
		sev, penalty := model.SeverityMedium, 0.05
		if meta.Width < minSide || meta.Height < minSide {
			sev, penalty = model.SeverityHigh, 0.15
		}
		issues = append(issues, model.Issue{
			Type:       "dimensions",
			Severity:   sev,
			Message:    fmt.Sprintf("Dimensions %dx%dpx - below recommended %dx%d minimum", meta.Width, meta.Height, minSide, minSide),
			Suggestion: fmt.Sprintf("Resize to at least %dx%d pixels", minSide, minSide),
		})
		score -= penalty
	}

	// вес файла
	isOptimizedSize := meta.Bytes > 0 && meta.Bytes < optimizedBytes
	if !isOptimizedSize {
		sev, penalty, verdict := model.SeverityMedium, 0.05, "could be optimized"
		if meta.Bytes > oversizedBytes {
			sev, penalty, verdict = model.SeverityHigh, 0.15, "too large"
		}
		issues = append(issues, model.Issue{
			Type:       "size",
			Severity:   sev,
			Message:    fmt.Sprintf("File size %s - %s", formatSize(meta.Bytes), verdict),
			Suggestion: "Compress image for web delivery",
		})
		score -= penalty
	}

	// формат
	isWebFriendly := lo.Contains(webFormats, format)
	if !isWebFriendly {
		issues = append(issues, model.Issue{
			Type:       "format",
			Severity:   model.SeverityMedium,
			Message:    fmt.Sprintf("Format %s - not optimal for web", strings.ToUpper(format)),
			Suggestion: "Convert to WebP or JPEG format",
		})
		score -= 0.10
	}

	if f := meta.Quality.Focus; f != nil && *f < focusThreshold {
		issues = append(issues, model.Issue{
			Type:       "quality",
			Severity:   model.SeverityMedium,
			Message:    "Image may be out of focus or blurry",
			Suggestion: "Use a sharper image for better product presentation",
		})
		score -= 0.10
	}

	if n := meta.Quality.Noise; n != nil && *n > noiseThreshold {
		issues = append(issues, model.Issue{
			Type:       "quality",
			Severity:   model.SeverityLow,
			Message:    "High noise detected in image",
			Suggestion: "Consider using a cleaner source image",
		})
		score -= 0.05
	}

	// палитра - только информативно, без штрафа
	if len(meta.Colors) > maxColors {
		issues = append(issues, model.Issue{
			Type:       "colors",
			Severity:   model.SeverityLow,
			Message:    fmt.Sprintf("Complex color palette (%d colors)", len(meta.Colors)),
			Suggestion: "Consider simplifying colors for better loading",
		})
	}

	checks := []model.ComplianceCheck{
		{
			Check:   "Square format (1:1 ratio)",
			Passed:  isSquare,
			Details: lo.Ternary(isSquare, "✓ Perfect", fmt.Sprintf("%.2f:1 ratio", ratio)),
		},
		{
			Check:   fmt.Sprintf("Minimum dimensions (%dx%dpx)", minSide, minSide),
			Passed:  isStandardSize,
			Details: lo.Ternary(isStandardSize, "✓ Good", fmt.Sprintf("%dx%dpx", meta.Width, meta.Height)),
		},
		{
			Check:   "Web-optimized format",
			Passed:  isWebFriendly,
			Details: lo.Ternary(isWebFriendly, strings.ToUpper(format), strings.ToUpper(format)+" (use WebP/JPEG)"),
		},
		{
			Check:   "File size optimization",
			Passed:  isOptimizedSize,
			Details: lo.Ternary(isOptimizedSize, formatSize(meta.Bytes), formatSize(meta.Bytes)+" (too large)"),
		},
	}

	var analysis *model.QualityAnalysis
	if meta.Quality.Focus != nil || meta.Quality.Noise != nil {
		qa := meta.Quality
		analysis = &qa
	}

	return model.NormalizedResult{
		Quality: model.Quality{
			Score:    Clamp(score),
			Issues:   issues,
			Analysis: analysis,
		},
		Compliance: model.Compliance{
			Passed: CompliancePassed(checks),
			Checks: checks,
		},
		Metadata: model.ResultMetadata{
			Width:        meta.Width,
			Height:       meta.Height,
			Format:       format,
			FileSize:     meta.Bytes,
			AspectRatio:  fmt.Sprintf("%.2f", ratio),
			Colors:       lo.Slice(meta.Colors, 0, keptColors),
			ResourceType: meta.ResourceType,
			CreatedAt:    meta.CreatedAt,
			URL:          meta.SecureURL,
		},
	}
}

// Clamp keeps a score inside [0.3, 0.95] and trims float noise from the penalty arithmetic.
func Clamp(score float64) float64 {
	score = math.Round(score*1000) / 1000
	return math.Max(minScore, math.Min(maxScore, score))
}

// CompliancePassed - не меньше 75% проверок (с округлением вверх)
func CompliancePassed(checks []model.ComplianceCheck) bool {
	if len(checks) == 0 {
		return false
	}
	passed := lo.CountBy(checks, func(c model.ComplianceCheck) bool { return c.Passed })
	need := int(math.Ceil(float64(len(checks)) * complianceShare))
	return passed >= need
}

func aspectRatio(w, h int) float64 {
	if w == 0 || h == 0 {
		return 0
	}
	return float64(w) / float64(h)
}

func formatSize(b int64) string {
	if b <= 0 {
		return "0 B"
	}
	return humanize.IBytes(uint64(b))
}
