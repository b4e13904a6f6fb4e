package report

import (
	"fmt"
	"strings"

	"faultwatch/internal/models"
)

// Subject is the fixed notification subject line.
const Subject = "Future Fault Prediction Report"

// RenderBody renders the filtered record set as the plain-text report
// body used for notification: one labeled block per record separated by a
// rule line.
func RenderBody(records []models.PredictionRecord) string {
	var b strings.Builder
	b.WriteString("Future Fault Prediction Report\n\n")
	for _, rec := range records {
		fmt.Fprintf(&b, "Site          : %s\n", rec.Site)
		fmt.Fprintf(&b, "Location      : %s\n", rec.Location)
		fmt.Fprintf(&b, "Fault         : %s\n", rec.Fault)
		fmt.Fprintf(&b, "Probability   : %g%%\n", rec.Probability)
		fmt.Fprintf(&b, "Risk Level    : %s\n", rec.RiskLevel)
		fmt.Fprintf(&b, "Cause         : %s\n", rec.PossibleCause)
		fmt.Fprintf(&b, "Recommendation: %s\n", rec.Recommendation)
		fmt.Fprintf(&b, "Team          : %s\n", rec.Team)
		b.WriteString("----------------------------------------\n")
	}
	return b.String()
}
