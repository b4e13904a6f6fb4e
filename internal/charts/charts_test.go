package charts

import (
	"bytes"
	"image/png"
	"testing"
	"unicode/utf8"

	"faultwatch/internal/models"
)

func testViews() models.Views {
	return models.Views{
		FaultProbabilities: []models.FaultProbability{
			{Fault: "Power Failure", Probability: 90, RiskLevel: models.RiskHigh},
			{Fault: "Link Down", Probability: 55, RiskLevel: models.RiskMedium},
			{Fault: "Fan Alarm", Probability: 30, RiskLevel: models.RiskLow},
		},
		RiskDistribution: []models.RiskCount{
			{RiskLevel: models.RiskLow, Count: 1},
			{RiskLevel: models.RiskMedium, Count: 1},
			{RiskLevel: models.RiskHigh, Count: 1},
		},
		SiteCounts: []models.SiteCount{
			{Site: "A", Count: 2},
			{Site: "B", Count: 1},
		},
	}
}

func TestCharts_DecodeAsPNG(t *testing.T) {
	views := testViews()
	tests := []struct {
		name   string
		render func() ([]byte, error)
	}{
		{name: "fault probability", render: func() ([]byte, error) { return FaultProbabilityPNG(views.FaultProbabilities) }},
		{name: "risk distribution", render: func() ([]byte, error) { return RiskDistributionPNG(views.RiskDistribution) }},
		{name: "site count", render: func() ([]byte, error) { return SiteCountPNG(views.SiteCounts) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := tt.render()
			if err != nil {
				t.Fatalf("render error = %v", err)
			}
			img, err := png.Decode(bytes.NewReader(data))
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			b := img.Bounds()
			if b.Dx() != chartWidth || b.Dy() != chartHeight {
				t.Errorf("dimensions = %dx%d, want %dx%d", b.Dx(), b.Dy(), chartWidth, chartHeight)
			}
		})
	}
}

func TestCharts_Deterministic(t *testing.T) {
	views := testViews()
	first, err := FaultProbabilityPNG(views.FaultProbabilities)
	if err != nil {
		t.Fatalf("render error = %v", err)
	}
	second, err := FaultProbabilityPNG(views.FaultProbabilities)
	if err != nil {
		t.Fatalf("render error = %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("identical views produced different PNG bytes")
	}
}

func TestCharts_EmptyViews(t *testing.T) {
	if _, err := FaultProbabilityPNG(nil); err != nil {
		t.Errorf("empty fault view: %v", err)
	}
	if _, err := RiskDistributionPNG([]models.RiskCount{
		{RiskLevel: models.RiskLow}, {RiskLevel: models.RiskMedium}, {RiskLevel: models.RiskHigh},
	}); err != nil {
		t.Errorf("zero-count distribution: %v", err)
	}
	if _, err := SiteCountPNG(nil); err != nil {
		t.Errorf("empty site view: %v", err)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{name: "short label untouched", in: "Site A", max: 10, want: "Site A"},
		{name: "long ascii", in: "Transmission Failure", max: 10, want: "Transmiss~"},
		{name: "multibyte label", in: "Überwachungsstation", max: 6, want: "Überw~"},
		{name: "multibyte under tiny cap", in: "東京第二基地局", max: 3, want: "東京第"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.in, tt.max)
			if got != tt.want {
				t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("truncate(%q, %d) produced invalid UTF-8", tt.in, tt.max)
			}
		})
	}
}
