// Package plots renders the report figures as PNG files.
package plots

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"fraudlab/internal/dataset"
	"fraudlab/internal/eda"
)

// Figure file names under the figures directory.
const (
	ClassBalanceFile       = "01_class_balance.png"
	AmountDistributionFile = "02_amount_distribution.png"
	FraudRateByHourFile    = "03_fraud_rate_by_hour.png"
)

var (
	width  = 6 * vg.Inch
	height = 4 * vg.Inch

	legitColor = color.NRGBA{R: 31, G: 119, B: 180, A: 153}
	fraudColor = color.NRGBA{R: 255, G: 127, B: 14, A: 153}
)

// ModelFile names a per-model figure, e.g. ModelFile("05_roc", "XGBoost")
// gives "05_roc_xgboost.png".
func ModelFile(prefix, model string) string {
	slug := strings.ToLower(strings.Join(strings.Fields(model), "_"))
	return fmt.Sprintf("%s_%s.png", prefix, slug)
}

func save(p *plot.Plot, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create figure directory: %w", err)
	}
	if err := p.Save(width, height, path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

// ClassBalance draws one bar per class.
func ClassBalance(path string, b dataset.Balance) error {
	p := plot.New()
	p.Title.Text = "Class Balance"
	p.Y.Label.Text = "Count"

	bars, err := plotter.NewBarChart(plotter.Values{float64(b.Legit), float64(b.Fraud)}, vg.Points(60))
	if err != nil {
		return err
	}
	bars.Color = plotutil.Color(0)
	p.Add(bars)
	p.NominalX("Non-Fraud", "Fraud")

	return save(p, path)
}

// AmountDistribution overlays the per-class amount histograms.
func AmountDistribution(path string, h *eda.Histogram) error {
	if h == nil || len(h.Dividers) < 2 {
		return errors.New("amount histogram is empty")
	}

	p := plot.New()
	p.Title.Text = "Amount Distribution"
	p.X.Label.Text = "Amount"
	p.Y.Label.Text = "Count"

	for _, series := range []struct {
		name   string
		counts []float64
		fill   color.Color
	}{
		{"Non-Fraud", h.Legit, legitColor},
		{"Fraud", h.Fraud, fraudColor},
	} {
		hist := &plotter.Histogram{
			Bins:      bins(h.Dividers, series.counts),
			Width:     h.Dividers[1] - h.Dividers[0],
			FillColor: series.fill,
			LineStyle: plotter.DefaultLineStyle,
		}
		hist.LineStyle.Width = vg.Points(0.5)
		p.Add(hist)
		p.Legend.Add(series.name, hist)
	}

	return save(p, path)
}

func bins(dividers, counts []float64) []plotter.HistogramBin {
	out := make([]plotter.HistogramBin, len(counts))
	for i, c := range counts {
		out[i] = plotter.HistogramBin{Min: dividers[i], Max: dividers[i+1], Weight: c}
	}
	return out
}

// FraudRateByHour draws the hourly fraud rate as a line.
func FraudRateByHour(path string, rates []eda.HourRate) error {
	if len(rates) == 0 {
		return errors.New("no hourly rates to plot")
	}

	p := plot.New()
	p.Title.Text = "Fraud Rate by Hour"
	p.X.Label.Text = "hour"
	p.Y.Label.Text = "Rate"
	p.Y.Min = 0

	pts := make(plotter.XYs, len(rates))
	for i, r := range rates {
		pts[i].X = float64(r.Hour)
		pts[i].Y = r.Rate
	}
	if err := plotutil.AddLinePoints(p, "fraud rate", pts); err != nil {
		return err
	}

	return save(p, path)
}
