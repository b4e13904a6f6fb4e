package models

import (
	"image/color"
	"strings"
)

// RiskLevel is the three-step severity scale attached to every prediction.
// Ordering is LOW < MEDIUM < HIGH and the set is closed.
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// RiskLevels lists all levels in ascending severity order. Aggregation and
// chart legends iterate this slice so output ordering is stable.
var RiskLevels = []RiskLevel{RiskLow, RiskMedium, RiskHigh}

// ParseRiskLevel canonicalizes a raw risk string. Returns false if the value
// is not one of the three allowed levels.
func ParseRiskLevel(s string) (RiskLevel, bool) {
	switch RiskLevel(strings.ToUpper(strings.TrimSpace(s))) {
	case RiskLow:
		return RiskLow, true
	case RiskMedium:
		return RiskMedium, true
	case RiskHigh:
		return RiskHigh, true
	}
	return "", false
}

// Rank returns the position of the level on the severity scale.
func (r RiskLevel) Rank() int {
	switch r {
	case RiskLow:
		return 0
	case RiskMedium:
		return 1
	case RiskHigh:
		return 2
	}
	return -1
}

// Color returns the fixed palette color for the level, shared by charts
// and the dashboard so the scale never shifts between views.
func (r RiskLevel) Color() color.RGBA {
	switch r {
	case RiskLow:
		return color.RGBA{0x2e, 0xcc, 0x71, 0xff}
	case RiskMedium:
		return color.RGBA{0xf1, 0xc4, 0x0f, 0xff}
	case RiskHigh:
		return color.RGBA{0xe7, 0x4c, 0x3c, 0xff}
	}
	return color.RGBA{0x95, 0xa5, 0xa6, 0xff}
}

// Hex returns the palette color as a CSS hex string.
func (r RiskLevel) Hex() string {
	switch r {
	case RiskLow:
		return "#2ecc71"
	case RiskMedium:
		return "#f1c40f"
	case RiskHigh:
		return "#e74c3c"
	}
	return "#95a5a6"
}

// PredictionRecord is one validated fault prediction from the oracle.
type PredictionRecord struct {
	Site           string
	Location       string
	Fault          string
	Probability    float64 // percent, 0-100
	RiskLevel      RiskLevel
	PossibleCause  string
	Recommendation string
	Team           string
}

// RecordFields is the export and report column order, matching the oracle
// key contract exactly.
var RecordFields = []string{
	"Site",
	"Location",
	"Fault",
	"Probability (%)",
	"Risk Level",
	"Possible Cause",
	"Recommendation",
	"Team",
}

// FilterCriteria selects a subset of prediction records.
//
// An empty Sites set means no site restriction. An empty RiskLevels set
// matches nothing: it is the "deliberately filtered everything out" state,
// distinct from the unrestricted default of all three levels.
type FilterCriteria struct {
	Sites      map[string]bool
	RiskLevels map[RiskLevel]bool
}

// DefaultFilter passes every record: no site restriction, all risk levels.
func DefaultFilter() FilterCriteria {
	return FilterCriteria{
		Sites: map[string]bool{},
		RiskLevels: map[RiskLevel]bool{
			RiskLow:    true,
			RiskMedium: true,
			RiskHigh:   true,
		},
	}
}

// Matches reports whether the record passes the criteria.
func (c FilterCriteria) Matches(rec PredictionRecord) bool {
	if len(c.Sites) > 0 && !c.Sites[rec.Site] {
		return false
	}
	return c.RiskLevels[rec.RiskLevel]
}

// FaultProbability is one point of the per-fault probability series.
// Probabilities are kept per record, not collapsed per fault.
type FaultProbability struct {
	Fault       string
	Probability float64
	RiskLevel   RiskLevel
}

// RiskCount is one slice of the risk distribution view.
type RiskCount struct {
	RiskLevel RiskLevel
	Count     int
}

// SiteCount is one bar of the site-wise risk count view.
type SiteCount struct {
	Site  string
	Count int
}

// Views holds the three derived summaries over a filtered record set.
// Purely derived; recomputed on every filter change.
type Views struct {
	FaultProbabilities []FaultProbability // fault categories ordered by descending probability
	RiskDistribution   []RiskCount        // always all three levels, ascending severity
	SiteCounts         []SiteCount        // descending count, ties alphabetical
}
