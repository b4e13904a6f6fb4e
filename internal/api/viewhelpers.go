package api

import (
	"strconv"

	"faultwatch/internal/models"
)

func riskHex(level models.RiskLevel) string {
	return level.Hex()
}

func formatPct(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64) + "%"
}
