package report

import "faultwatch/internal/models"

// Filter applies the site/risk criteria as a conjunctive predicate,
// preserving record order. Applying the same criteria twice is a no-op on
// the result.
func Filter(records []models.PredictionRecord, criteria models.FilterCriteria) []models.PredictionRecord {
	filtered := make([]models.PredictionRecord, 0, len(records))
	for _, rec := range records {
		if criteria.Matches(rec) {
			filtered = append(filtered, rec)
		}
	}
	return filtered
}
