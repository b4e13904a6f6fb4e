package predict

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"faultwatch/internal/ingest"
)

// HeuristicOracle is a deterministic in-process oracle that scores fault
// risk from alarm recurrence in the merged table. It keeps the run command
// usable without an API key and gives tests a real oracle. Identical input
// tables always produce identical output.
type HeuristicOracle struct{}

func NewHeuristicOracle() *HeuristicOracle { return &HeuristicOracle{} }

func (h *HeuristicOracle) Name() string { return "heuristic" }

var (
	siteColumns     = []string{"site", "site_id", "site_name", "node", "station"}
	faultColumns    = []string{"fault", "fault_type", "alarm", "alarm_type", "alarm_name", "description"}
	locationColumns = []string{"location", "region", "zone", "city"}
)

type faultGroup struct {
	site     string
	fault    string
	location string
	count    int
	order    int // first-seen position, for stable output
}

// Predict groups rows by (site, fault) and converts recurrence counts into
// probability bands. Tables without recognizable site and fault columns
// yield no records, which downstream treats as "no significant risk".
func (h *HeuristicOracle) Predict(_ context.Context, table *ingest.Table) ([]RawRecord, error) {
	siteCol := findColumn(table, siteColumns)
	faultCol := findColumn(table, faultColumns)
	if siteCol == "" || faultCol == "" {
		return nil, nil
	}
	locCol := findColumn(table, locationColumns)

	groups := make(map[string]*faultGroup)
	var ordered []*faultGroup
	for _, row := range table.Rows {
		site := strings.TrimSpace(row[siteCol])
		fault := strings.TrimSpace(row[faultCol])
		if site == "" || fault == "" {
			continue
		}
		key := site + "\x00" + fault
		g, ok := groups[key]
		if !ok {
			g = &faultGroup{site: site, fault: fault, order: len(ordered)}
			if locCol != "" {
				g.location = strings.TrimSpace(row[locCol])
			}
			groups[key] = g
			ordered = append(ordered, g)
		}
		g.count++
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].count != ordered[j].count {
			return ordered[i].count > ordered[j].count
		}
		return ordered[i].order < ordered[j].order
	})

	var records []RawRecord
	for _, g := range ordered {
		prob := 20 + 15*g.count
		if prob > 95 {
			prob = 95
		}
		level := "LOW"
		switch {
		case prob >= 80:
			level = "HIGH"
		case prob >= 50:
			level = "MEDIUM"
		}
		records = append(records, RawRecord{
			"Site":            g.site,
			"Location":        g.location,
			"Fault":           g.fault,
			"Probability (%)": float64(prob),
			"Risk Level":      level,
			"Possible Cause":  causeFor(g.fault),
			"Recommendation":  recommendationFor(g.fault),
			"Team":            teamFor(g.fault),
		})
	}
	return records, nil
}

func findColumn(table *ingest.Table, candidates []string) string {
	have := make(map[string]bool, len(table.Columns))
	for _, col := range table.Columns {
		have[col] = true
	}
	for _, c := range candidates {
		if have[c] {
			return c
		}
	}
	return ""
}

type faultClass struct {
	keywords       []string
	cause          string
	recommendation string
	team           string
}

var faultClasses = []faultClass{
	{
		keywords:       []string{"power", "battery", "rectifier", "voltage"},
		cause:          "Degrading power supply or battery bank",
		recommendation: "Inspect rectifiers and battery health on site",
		team:           "Power",
	},
	{
		keywords:       []string{"link", "fiber", "transmission", "los", "signal"},
		cause:          "Unstable transmission path",
		recommendation: "Check fiber connectors and link budget",
		team:           "Transmission",
	},
	{
		keywords:       []string{"temp", "cooling", "fan", "hvac"},
		cause:          "Cooling system underperforming",
		recommendation: "Service air conditioning and verify airflow",
		team:           "Facilities",
	},
}

func classify(fault string) (faultClass, bool) {
	lower := strings.ToLower(fault)
	for _, fc := range faultClasses {
		for _, kw := range fc.keywords {
			if strings.Contains(lower, kw) {
				return fc, true
			}
		}
	}
	return faultClass{}, false
}

func causeFor(fault string) string {
	if fc, ok := classify(fault); ok {
		return fc.cause
	}
	return fmt.Sprintf("Recurring %s alarms", fault)
}

func recommendationFor(fault string) string {
	if fc, ok := classify(fault); ok {
		return fc.recommendation
	}
	return "Schedule preventive maintenance visit"
}

func teamFor(fault string) string {
	if fc, ok := classify(fault); ok {
		return fc.team
	}
	return "Field Operations"
}
