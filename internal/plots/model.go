package plots

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"fraudlab/internal/evaluation"
	"fraudlab/internal/threshold"
)

// Per-model figure prefixes, see ModelFile.
const (
	ConfusionPrefix = "04_cm"
	ROCPrefix       = "05_roc"
	PRPrefix        = "06_pr"
)

// cmGrid lays the confusion matrix out with true class 0 on the top row.
type cmGrid [2][2]int

func (g cmGrid) Dims() (c, r int)   { return 2, 2 }
func (g cmGrid) Z(c, r int) float64 { return float64(g[1-r][c]) }
func (g cmGrid) X(c int) float64    { return float64(c) }
func (g cmGrid) Y(r int) float64    { return float64(r) }

// ConfusionMatrix draws a 2x2 heat map annotated with counts.
func ConfusionMatrix(path, title string, cm evaluation.ConfusionMatrix) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Predicted label"
	p.Y.Label.Text = "True label"

	grid := cmGrid(cm.Rows())
	hm := plotter.NewHeatMap(grid, palette.Heat(12, 1))
	if hm.Min == hm.Max {
		hm.Max = hm.Min + 1
	}
	p.Add(hm)

	var xys plotter.XYs
	var labels []string
	for r := 0; r < 2; r++ {
		for c := 0; c < 2; c++ {
			xys = append(xys, plotter.XY{X: grid.X(c), Y: grid.Y(r)})
			labels = append(labels, fmt.Sprintf("%d", int(grid.Z(c, r))))
		}
	}
	text, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: labels})
	if err != nil {
		return err
	}
	for i := range text.TextStyle {
		text.TextStyle[i].XAlign = draw.XCenter
		text.TextStyle[i].YAlign = draw.YCenter
	}
	p.Add(text)

	p.NominalX("0", "1")
	p.NominalY("1", "0")

	return save(p, path)
}

// ROC draws the curve with its area in the legend and the chance diagonal.
func ROC(path, title string, c evaluation.ROCCurve, auc float64) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "FPR"
	p.Y.Label.Text = "TPR"
	p.X.Min, p.X.Max = 0, 1
	p.Y.Min, p.Y.Max = 0, 1

	pts := make(plotter.XYs, len(c.FPR))
	for i := range c.FPR {
		pts[i].X = c.FPR[i]
		pts[i].Y = c.TPR[i]
	}
	curve, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	curve.Color = plotutil.Color(0)
	curve.Width = vg.Points(1.5)

	chance, err := plotter.NewLine(plotter.XYs{{X: 0, Y: 0}, {X: 1, Y: 1}})
	if err != nil {
		return err
	}
	chance.Color = color.Gray{Y: 128}
	chance.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}

	p.Add(chance, curve)
	p.Legend.Add(fmt.Sprintf("ROC (AUC=%.4f)", auc), curve)
	p.Legend.Top = false
	p.Legend.Left = false

	return save(p, path)
}

// PrecisionRecall draws precision against recall and marks the selected
// operating point.
func PrecisionRecall(path, title string, c threshold.Curve, op threshold.OperatingPoint, auc float64) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Recall"
	p.Y.Label.Text = "Precision"
	p.X.Min, p.X.Max = 0, 1
	p.Y.Min, p.Y.Max = 0, 1

	pts := make(plotter.XYs, c.Len())
	for i := range pts {
		pts[i].X = c.Recall[i]
		pts[i].Y = c.Precision[i]
	}
	curve, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	curve.Color = plotutil.Color(1)
	curve.Width = vg.Points(1.5)

	mark, err := plotter.NewScatter(plotter.XYs{{X: op.Recall, Y: op.Precision}})
	if err != nil {
		return err
	}
	mark.Shape = draw.CircleGlyph{}
	mark.Radius = vg.Points(4)
	mark.Color = plotutil.Color(2)

	p.Add(curve, mark)
	p.Legend.Add(fmt.Sprintf("PR (AUC=%.4f)", auc), curve)
	p.Legend.Add(fmt.Sprintf("threshold %.4f", op.Threshold), mark)
	p.Legend.Left = true
	p.Legend.Top = false

	return save(p, path)
}
