package normalizer

import (
	"fmt"
	"testing"

	"github.com/UnendingLoop/ImageLab/internal/model"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

const mib = 1024 * 1024

func goodAsset() model.AssetMetadata {
	return model.AssetMetadata{Width: 1000, Height: 1000, Format: "JPG", Bytes: 1 * mib}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name       string
		meta       model.AssetMetadata
		wantScore  float64
		wantPassed bool
		wantIssues []string
	}{
		{
			name:       "clean asset",
			meta:       goodAsset(),
			wantScore:  0.8,
			wantPassed: true,
			wantIssues: []string{},
		},
		{
			name:       "three of four checks pass",
			meta:       model.AssetMetadata{Width: 1200, Height: 800, Format: "png", Bytes: 2 * mib},
			wantScore:  0.7,
			wantPassed: true,
			wantIssues: []string{"composition"},
		},
		{
			name:       "two of four checks fail",
			meta:       model.AssetMetadata{Width: 1200, Height: 800, Format: "tiff", Bytes: mib},
			wantScore:  0.6,
			wantPassed: false,
			wantIssues: []string{"composition", "format"},
		},
		{
			name:       "everything missing",
			meta:       model.AssetMetadata{},
			wantScore:  0.4,
			wantPassed: false,
			wantIssues: []string{"composition", "dimensions", "size", "format"},
		},
		{
			name: "score floor",
			meta: model.AssetMetadata{
				Width: 300, Height: 100, Format: "bmp", Bytes: 20 * mib,
				Quality: model.QualityAnalysis{Focus: lo.ToPtr(0.1), Noise: lo.ToPtr(0.9)},
			},
			wantScore:  0.3,
			wantPassed: false,
			wantIssues: []string{"composition", "dimensions", "size", "format", "quality", "quality"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Normalize(tt.meta)

			require.InDelta(t, tt.wantScore, res.Quality.Score, 1e-9)
			require.Equal(t, tt.wantPassed, res.Compliance.Passed)
			require.Len(t, res.Compliance.Checks, 4)
			require.Equal(t, tt.wantIssues, lo.Map(res.Quality.Issues, func(i model.Issue, _ int) string { return i.Type }))
			require.Nil(t, res.ResultURL)
		})
	}
}

func TestNormalize_SizeBoundaries(t *testing.T) {
	tests := []struct {
		bytes     int64
		wantIssue bool
		severity  model.Severity
	}{
		{bytes: 5*mib - 1, wantIssue: false},
		{bytes: 5 * mib, wantIssue: true, severity: model.SeverityMedium},
		{bytes: 10 * mib, wantIssue: true, severity: model.SeverityMedium},
		{bytes: 10*mib + 1, wantIssue: true, severity: model.SeverityHigh},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.bytes), func(t *testing.T) {
			meta := goodAsset()
			meta.Bytes = tt.bytes
			res := Normalize(meta)

			issue, found := lo.Find(res.Quality.Issues, func(i model.Issue) bool { return i.Type == "size" })
			require.Equal(t, tt.wantIssue, found)
			if found {
				require.Equal(t, tt.severity, issue.Severity)
			}
		})
	}

	res := Normalize(model.AssetMetadata{Width: 1000, Height: 1000, Format: "jpg", Bytes: 11 * mib})
	require.Equal(t, "File size 11 MiB - too large", res.Quality.Issues[0].Message)
	require.InDelta(t, 0.65, res.Quality.Score, 1e-9)
}

// любой дополнительный дефект не повышает оценку
func TestNormalize_Monotonic(t *testing.T) {
	square := Normalize(model.AssetMetadata{Width: 1600, Height: 1600, Format: "jpg", Bytes: mib}).Quality.Score
	small := Normalize(model.AssetMetadata{Width: 400, Height: 300, Format: "jpg", Bytes: mib}).Quality.Score
	require.Less(t, small, square)

	base := Normalize(goodAsset()).Quality.Score

	defects := []func(*model.AssetMetadata){
		func(m *model.AssetMetadata) { m.Width = 2000 },
		func(m *model.AssetMetadata) { m.Width, m.Height = 500, 500 },
		func(m *model.AssetMetadata) { m.Bytes = 6 * mib },
		func(m *model.AssetMetadata) { m.Bytes = 0 },
		func(m *model.AssetMetadata) { m.Format = "heic" },
		func(m *model.AssetMetadata) { m.Quality.Focus = lo.ToPtr(0.2) },
		func(m *model.AssetMetadata) { m.Quality.Noise = lo.ToPtr(0.8) },
	}

	for i, defect := range defects {
		meta := goodAsset()
		defect(&meta)
		score := Normalize(meta).Quality.Score
		require.LessOrEqual(t, score, base, "defect #%d", i)

		// и поверх уже испорченного тоже
		for j, other := range defects {
			if j == i {
				continue
			}
			worse := meta
			other(&worse)
			require.LessOrEqual(t, Normalize(worse).Quality.Score, score, "defect #%d then #%d", i, j)
		}
	}
}

func TestNormalize_Metadata(t *testing.T) {
	colors := make([]model.ColorShare, 0, 25)
	for i := 0; i < 25; i++ {
		colors = append(colors, model.ColorShare{Hex: fmt.Sprintf("#0000%02X", i), Share: 4})
	}
	meta := model.AssetMetadata{
		Width: 1500, Height: 1000, Format: "WEBP", Bytes: mib,
		Colors: colors, ResourceType: "image", SecureURL: "https://res.cloudinary.com/demo/x.webp",
		Quality: model.QualityAnalysis{Focus: lo.ToPtr(0.9)},
	}

	res := Normalize(meta)

	require.Equal(t, "1.50", res.Metadata.AspectRatio)
	require.Equal(t, "webp", res.Metadata.Format)
	require.Len(t, res.Metadata.Colors, 5)
	require.Equal(t, "https://res.cloudinary.com/demo/x.webp", res.Metadata.URL)
	require.NotNil(t, res.Quality.Analysis)

	// сложная палитра - только информация, без штрафа
	palette, ok := lo.Find(res.Quality.Issues, func(i model.Issue) bool { return i.Type == "colors" })
	require.True(t, ok)
	require.Equal(t, model.SeverityLow, palette.Severity)
	require.InDelta(t, 0.7, res.Quality.Score, 1e-9)
}

func TestClampAndCompliance(t *testing.T) {
	require.Equal(t, 0.3, Clamp(0.05))
	require.Equal(t, 0.95, Clamp(1.2))
	require.Equal(t, 0.7, Clamp(0.8-0.1))

	require.False(t, CompliancePassed(nil))
	checks := []model.ComplianceCheck{{Passed: true}, {Passed: true}, {Passed: true}, {Passed: false}}
	require.True(t, CompliancePassed(checks))
	checks[2].Passed = false
	require.False(t, CompliancePassed(checks))
}
