package main

import (
	"fmt"
	"os"
	"path/filepath"

	"faultwatch/internal/charts"
	"faultwatch/internal/models"
)

// writeCharts renders the three view charts into dir.
func writeCharts(dir string, views models.Views) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create charts dir: %w", err)
	}

	fault, err := charts.FaultProbabilityPNG(views.FaultProbabilities)
	if err != nil {
		return err
	}
	risk, err := charts.RiskDistributionPNG(views.RiskDistribution)
	if err != nil {
		return err
	}
	site, err := charts.SiteCountPNG(views.SiteCounts)
	if err != nil {
		return err
	}

	files := map[string][]byte{
		"fault_probability.png": fault,
		"risk_distribution.png": risk,
		"site_risk_count.png":   site,
	}
	for name, data := range files {
		if err := os.WriteFile(filepath.Join(dir, name), data, 0644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}
	return nil
}
