package portfolio

import (
	"math"

	"github.com/granahq/grana/internal/models"
)

// Heatmap color bands on profit percentage, highest first. The first band
// whose threshold the value meets wins.
var colorBands = []struct {
	min   float64
	color string
}{
	{20, "#15803d"},           // dark green, >= 20
	{10, "#22c55e"},           // green, 10..20
	{0, "#86efac"},            // light green, 0..10
	{-10, "#fca5a5"},          // light red, -10..0
	{-20, "#ef4444"},          // red, -20..-10
	{math.Inf(-1), "#b91c1c"}, // dark red, < -20
}

// Opacity tiers keyed to |profit %|, highest threshold first.
var opacityTiers = []struct {
	min     float64
	opacity float64
}{
	{50, 1.0},
	{30, 0.9},
	{20, 0.8},
	{10, 0.7},
	{5, 0.6},
	{1, 0.5},
	{0, 0.4},
}

// HeatmapColor returns the color band for a profit percentage.
func HeatmapColor(profitPct float64) string {
	for _, band := range colorBands {
		if profitPct >= band.min {
			return band.color
		}
	}
	return colorBands[len(colorBands)-1].color
}

// HeatmapOpacity scales opacity with the magnitude of the profit percentage.
func HeatmapOpacity(profitPct float64) float64 {
	abs := math.Abs(profitPct)
	for _, tier := range opacityTiers {
		if abs >= tier.min {
			return tier.opacity
		}
	}
	return opacityTiers[len(opacityTiers)-1].opacity
}

// BuildHeatmap maps each position onto its color band and opacity tier.
func BuildHeatmap(positions []models.ConsolidatedPosition) []models.HeatmapCell {
	cells := make([]models.HeatmapCell, len(positions))
	for i, p := range positions {
		cells[i] = models.HeatmapCell{
			AssetID:          p.AssetID,
			Symbol:           p.Symbol,
			ProfitPercentage: p.ProfitPercentage,
			Color:            HeatmapColor(p.ProfitPercentage),
			Opacity:          HeatmapOpacity(p.ProfitPercentage),
		}
	}
	return cells
}
