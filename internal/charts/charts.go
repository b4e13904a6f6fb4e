// Package charts renders the three aggregation views as PNG images.
// Rendering is a pure function of the view data: the same input always
// produces byte-identical output.
package charts

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"faultwatch/internal/models"
)

const (
	chartWidth  = 900
	chartHeight = 420

	marginLeft   = 60
	marginRight  = 20
	marginTop    = 30
	marginBottom = 70
)

var (
	background = color.RGBA{0xff, 0xff, 0xff, 0xff}
	axisColor  = color.RGBA{0x33, 0x33, 0x33, 0xff}
	gridColor  = color.RGBA{0xe0, 0xe0, 0xe0, 0xff}
	textColor  = color.RGBA{0x22, 0x22, 0x22, 0xff}
	barColor   = color.RGBA{0x34, 0x98, 0xdb, 0xff}
)

// FaultProbabilityPNG draws one bar per prediction point, colored by risk
// level, in the view's category order. The y axis is fixed to 0-100%.
func FaultProbabilityPNG(points []models.FaultProbability) ([]byte, error) {
	img := newCanvas("Fault Probability by Fault Type")
	if len(points) == 0 {
		return encode(img)
	}

	plotW := chartWidth - marginLeft - marginRight
	plotH := chartHeight - marginTop - marginBottom
	drawYScale(img, 100, "%")

	slot := plotW / len(points)
	barW := slot * 3 / 4
	if barW < 2 {
		barW = 2
	}
	for i, p := range points {
		h := int(p.Probability / 100 * float64(plotH))
		x := marginLeft + i*slot + (slot-barW)/2
		fillRect(img, x, marginTop+plotH-h, barW, h, p.RiskLevel.Color())
		if slot >= 40 {
			drawText(img, truncate(p.Fault, slot/7), x, chartHeight-marginBottom+16)
		}
	}
	drawRiskLegend(img)
	return encode(img)
}

// RiskDistributionPNG draws the risk-level share as a pie with the fixed
// LOW/MEDIUM/HIGH palette. Zero-count levels appear in the legend so the
// scale never shifts.
func RiskDistributionPNG(dist []models.RiskCount) ([]byte, error) {
	img := newCanvas("Risk Level Distribution")

	total := 0
	for _, rc := range dist {
		total += rc.Count
	}

	cx := chartWidth / 2
	cy := marginTop + (chartHeight-marginTop-marginBottom)/2
	radius := (chartHeight - marginTop - marginBottom) / 2

	if total > 0 {
		fillPie(img, cx, cy, radius, dist, total)
	}

	y := marginTop + 10
	for _, rc := range dist {
		fillRect(img, chartWidth-150, y, 12, 12, rc.RiskLevel.Color())
		drawText(img, fmt.Sprintf("%s: %d", rc.RiskLevel, rc.Count), chartWidth-132, y+10)
		y += 20
	}
	return encode(img)
}

// SiteCountPNG draws one bar per site in the view's order (descending
// count, ties alphabetical).
func SiteCountPNG(sites []models.SiteCount) ([]byte, error) {
	img := newCanvas("Site-wise Risk Count")
	if len(sites) == 0 {
		return encode(img)
	}

	maxCount := sites[0].Count
	for _, sc := range sites {
		if sc.Count > maxCount {
			maxCount = sc.Count
		}
	}

	plotW := chartWidth - marginLeft - marginRight
	plotH := chartHeight - marginTop - marginBottom
	drawYScale(img, float64(maxCount), "")

	slot := plotW / len(sites)
	barW := slot * 3 / 4
	if barW < 2 {
		barW = 2
	}
	for i, sc := range sites {
		h := int(float64(sc.Count) / float64(maxCount) * float64(plotH))
		x := marginLeft + i*slot + (slot-barW)/2
		fillRect(img, x, marginTop+plotH-h, barW, h, barColor)
		if slot >= 40 {
			drawText(img, truncate(sc.Site, slot/7), x, chartHeight-marginBottom+16)
		}
	}
	return encode(img)
}

func newCanvas(title string) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, chartWidth, chartHeight))
	for y := 0; y < chartHeight; y++ {
		for x := 0; x < chartWidth; x++ {
			img.SetRGBA(x, y, background)
		}
	}
	drawText(img, title, marginLeft, 18)

	// Axis lines
	fillRect(img, marginLeft, chartHeight-marginBottom, chartWidth-marginLeft-marginRight, 1, axisColor)
	fillRect(img, marginLeft, marginTop, 1, chartHeight-marginTop-marginBottom, axisColor)
	return img
}

// drawYScale draws four horizontal gridlines with value labels up to max.
func drawYScale(img *image.RGBA, max float64, unit string) {
	plotH := chartHeight - marginTop - marginBottom
	for i := 1; i <= 4; i++ {
		frac := float64(i) / 4
		y := marginTop + plotH - int(frac*float64(plotH))
		fillRect(img, marginLeft, y, chartWidth-marginLeft-marginRight, 1, gridColor)
		label := fmt.Sprintf("%.0f%s", frac*max, unit)
		drawText(img, label, 8, y+4)
	}
}

func fillPie(img *image.RGBA, cx, cy, radius int, dist []models.RiskCount, total int) {
	// Cumulative fraction boundaries, starting at 12 o'clock.
	bounds := make([]float64, 0, len(dist)+1)
	bounds = append(bounds, 0)
	sum := 0
	for _, rc := range dist {
		sum += rc.Count
		bounds = append(bounds, float64(sum)/float64(total))
	}

	r2 := float64(radius * radius)
	for y := cy - radius; y <= cy+radius; y++ {
		for x := cx - radius; x <= cx+radius; x++ {
			dx, dy := float64(x-cx), float64(y-cy)
			if dx*dx+dy*dy > r2 {
				continue
			}
			angle := math.Atan2(dx, -dy) // 0 at top, clockwise
			if angle < 0 {
				angle += 2 * math.Pi
			}
			frac := angle / (2 * math.Pi)
			for i := range dist {
				if frac >= bounds[i] && frac < bounds[i+1] {
					img.SetRGBA(x, y, dist[i].RiskLevel.Color())
					break
				}
			}
		}
	}
}

func drawRiskLegend(img *image.RGBA) {
	x := chartWidth - 120
	y := marginTop + 10
	for _, level := range models.RiskLevels {
		fillRect(img, x, y, 12, 12, level.Color())
		drawText(img, string(level), x+18, y+10)
		y += 20
	}
}

func fillRect(img *image.RGBA, x, y, w, h int, col color.RGBA) {
	for yy := y; yy < y+h; yy++ {
		for xx := x; xx < x+w; xx++ {
			if xx >= 0 && xx < chartWidth && yy >= 0 && yy < chartHeight {
				img.SetRGBA(xx, yy, col)
			}
		}
	}
}

func drawText(img *image.RGBA, text string, x, y int) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(textColor),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}

// truncate caps a label at max runes. Byte slicing would split multi-byte
// site and fault names mid-rune.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max < 4 {
		return string(runes[:max])
	}
	return string(runes[:max-1]) + "~"
}

func encode(img *image.RGBA) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode chart: %w", err)
	}
	return buf.Bytes(), nil
}
