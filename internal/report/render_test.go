package report

import (
	"strings"
	"testing"

	"faultwatch/internal/models"
)

func TestRenderBody(t *testing.T) {
	records := []models.PredictionRecord{
		{
			Site: "A", Location: "North", Fault: "Power Failure",
			Probability: 87.5, RiskLevel: models.RiskHigh,
			PossibleCause: "Battery degradation", Recommendation: "Replace battery bank", Team: "Power",
		},
	}

	body := RenderBody(records)
	for _, want := range []string{
		"Future Fault Prediction Report",
		"Site          : A",
		"Probability   : 87.5%",
		"Risk Level    : HIGH",
		"Recommendation: Replace battery bank",
		"----------------------------------------",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q\n%s", want, body)
		}
	}
}

func TestRenderBody_OneBlockPerRecord(t *testing.T) {
	records := []models.PredictionRecord{
		{Site: "A", Fault: "f", RiskLevel: models.RiskLow},
		{Site: "B", Fault: "g", RiskLevel: models.RiskHigh},
	}
	body := RenderBody(records)
	if got := strings.Count(body, "----------------------------------------"); got != 2 {
		t.Errorf("separator count = %d, want 2", got)
	}
}
