// Package diagnostics renders corrector traces for offline inspection: a PNG
// via gonum/plot and an interactive HTML page via go-echarts.
package diagnostics

import (
	"errors"
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/banshee-data/photomatch/internal/orientation"
)

// ErrEmptyTrace is returned when a result carries no trace samples. Run the
// corrector with Config.Trace set to collect them.
var ErrEmptyTrace = errors.New("corrector result has no trace samples")

var (
	pitchColor    = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	residualColor = color.RGBA{R: 214, G: 39, B: 40, A: 255}
	toleranceGray = color.RGBA{R: 150, G: 150, B: 150, A: 255}
)

func tracePoints(res orientation.CorrectorResult) (pitch, residual plotter.XYs) {
	pitch = make(plotter.XYs, 0, len(res.Trace))
	residual = make(plotter.XYs, 0, len(res.Trace))
	for _, s := range res.Trace {
		pitch = append(pitch, plotter.XY{X: float64(s.Iteration), Y: s.PitchDeg})
		residual = append(residual, plotter.XY{X: float64(s.Iteration), Y: s.Residual})
	}
	return pitch, residual
}

// TracePlots builds the pitch and residual plots for a traced corrector run.
// tolerance, when positive, is drawn as a band on the residual plot.
func TracePlots(res orientation.CorrectorResult, tolerance float64) (pitchPlot, residualPlot *plot.Plot, err error) {
	if len(res.Trace) == 0 {
		return nil, nil, ErrEmptyTrace
	}
	pitchPts, residualPts := tracePoints(res)

	pitchPlot = plot.New()
	pitchPlot.Title.Text = fmt.Sprintf("Corrector (%s) - Pitch", res.Method)
	pitchPlot.X.Label.Text = "Iteration"
	pitchPlot.Y.Label.Text = "Pitch (deg)"

	pitchLine, err := plotter.NewLine(pitchPts)
	if err != nil {
		return nil, nil, err
	}
	pitchLine.Color = pitchColor
	pitchLine.Width = vg.Points(1)
	pitchPlot.Add(pitchLine, plotter.NewGrid())

	residualPlot = plot.New()
	residualPlot.Title.Text = fmt.Sprintf("Corrector (%s) - Residual: %s after %d iterations", res.Method, res.Status, res.Iterations)
	residualPlot.X.Label.Text = "Iteration"
	residualPlot.Y.Label.Text = "Midpoint offset (px)"

	residualLine, residualMarks, err := plotter.NewLinePoints(residualPts)
	if err != nil {
		return nil, nil, err
	}
	residualLine.Color = residualColor
	residualLine.Width = vg.Points(1)
	residualMarks.Color = residualColor
	residualMarks.Radius = vg.Points(1.5)
	residualPlot.Add(residualLine, residualMarks, plotter.NewGrid())
	residualPlot.Legend.Add("residual", residualLine)

	if tolerance > 0 {
		last := residualPts[len(residualPts)-1].X
		for _, y := range []float64{tolerance, -tolerance} {
			band, err := plotter.NewLine(plotter.XYs{{X: 0, Y: y}, {X: last, Y: y}})
			if err != nil {
				return nil, nil, err
			}
			band.Color = toleranceGray
			band.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
			residualPlot.Add(band)
		}
		residualPlot.Legend.Add(fmt.Sprintf("±%.2f px", tolerance))
	}

	residualPlot.Legend.Top = true
	residualPlot.Legend.Left = false
	residualPlot.Legend.XOffs = -10
	residualPlot.Legend.YOffs = -10

	return pitchPlot, residualPlot, nil
}

// WriteTracePNG renders the pitch and residual plots stacked in one PNG.
func WriteTracePNG(w io.Writer, res orientation.CorrectorResult, tolerance float64) error {
	pitchPlot, residualPlot, err := TracePlots(res, tolerance)
	if err != nil {
		return err
	}

	const rows, cols = 2, 1
	img := vgimg.New(14*vg.Inch, 10*vg.Inch)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows: rows, Cols: cols,
		PadX: vg.Millimeter, PadY: vg.Millimeter,
		PadTop: vg.Points(2), PadBottom: vg.Points(2),
		PadLeft: vg.Points(2), PadRight: vg.Points(2),
	}
	plots := [][]*plot.Plot{{pitchPlot}, {residualPlot}}
	canvases := plot.Align(plots, tiles, dc)
	for i := 0; i < rows; i++ {
		plots[i][0].Draw(canvases[i][0])
	}

	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write png: %w", err)
	}
	return nil
}
