package report

import (
	"sort"

	"faultwatch/internal/models"
)

// Aggregate derives the three summary views from a filtered record set.
// Ordering is fully deterministic: identical input always yields identical
// views.
func Aggregate(records []models.PredictionRecord) models.Views {
	return models.Views{
		FaultProbabilities: faultProbabilityView(records),
		RiskDistribution:   riskDistributionView(records),
		SiteCounts:         siteCountView(records),
	}
}

// faultProbabilityView keeps one point per record but orders fault
// categories by their highest probability, descending, ties broken by
// first-seen order. Within a category records keep input order.
func faultProbabilityView(records []models.PredictionRecord) []models.FaultProbability {
	type category struct {
		fault   string
		maxProb float64
		order   int
		points  []models.FaultProbability
	}

	byFault := make(map[string]*category)
	var categories []*category
	for _, rec := range records {
		c, ok := byFault[rec.Fault]
		if !ok {
			c = &category{fault: rec.Fault, order: len(categories)}
			byFault[rec.Fault] = c
			categories = append(categories, c)
		}
		if rec.Probability > c.maxProb {
			c.maxProb = rec.Probability
		}
		c.points = append(c.points, models.FaultProbability{
			Fault:       rec.Fault,
			Probability: rec.Probability,
			RiskLevel:   rec.RiskLevel,
		})
	}

	sort.SliceStable(categories, func(i, j int) bool {
		if categories[i].maxProb != categories[j].maxProb {
			return categories[i].maxProb > categories[j].maxProb
		}
		return categories[i].order < categories[j].order
	})

	var points []models.FaultProbability
	for _, c := range categories {
		points = append(points, c.points...)
	}
	return points
}

// riskDistributionView counts records per level. All three levels are
// always present, zero-filled, so the downstream color scale stays stable.
func riskDistributionView(records []models.PredictionRecord) []models.RiskCount {
	counts := make(map[models.RiskLevel]int, 3)
	for _, rec := range records {
		counts[rec.RiskLevel]++
	}
	dist := make([]models.RiskCount, 0, len(models.RiskLevels))
	for _, level := range models.RiskLevels {
		dist = append(dist, models.RiskCount{RiskLevel: level, Count: counts[level]})
	}
	return dist
}

// siteCountView counts records per site, descending by count, ties
// alphabetical.
func siteCountView(records []models.PredictionRecord) []models.SiteCount {
	counts := make(map[string]int)
	for _, rec := range records {
		counts[rec.Site]++
	}
	sites := make([]models.SiteCount, 0, len(counts))
	for site, n := range counts {
		sites = append(sites, models.SiteCount{Site: site, Count: n})
	}
	sort.Slice(sites, func(i, j int) bool {
		if sites[i].Count != sites[j].Count {
			return sites[i].Count > sites[j].Count
		}
		return sites[i].Site < sites[j].Site
	})
	return sites
}
