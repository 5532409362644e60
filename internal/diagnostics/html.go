package diagnostics

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/photomatch/internal/orientation"
)

// EchartsAssetsHost is where rendered pages load the echarts scripts from.
var EchartsAssetsHost = "https://go-echarts.github.io/go-echarts-assets/assets/"

func traceLine(title, subtitle, series string, x []int, values []opts.LineData) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Corrector Trace", Width: "100%", Height: "420px", AssetsHost: EchartsAssetsHost}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "iteration", NameLocation: "middle", NameGap: 25}),
	)
	line.SetXAxis(x).AddSeries(series, values)
	return line
}

// WriteTraceHTML renders the pitch and residual traces as an echarts page.
func WriteTraceHTML(w io.Writer, res orientation.CorrectorResult) error {
	if len(res.Trace) == 0 {
		return ErrEmptyTrace
	}

	x := make([]int, 0, len(res.Trace))
	pitch := make([]opts.LineData, 0, len(res.Trace))
	residual := make([]opts.LineData, 0, len(res.Trace))
	for _, s := range res.Trace {
		x = append(x, s.Iteration)
		pitch = append(pitch, opts.LineData{Value: s.PitchDeg})
		residual = append(residual, opts.LineData{Value: s.Residual})
	}

	subtitle := fmt.Sprintf("method=%s status=%s iterations=%d residual=%.3fpx",
		res.Method, res.Status, res.Iterations, res.Residual)

	page := components.NewPage()
	page.SetAssetsHost(EchartsAssetsHost)
	page.AddCharts(
		traceLine("Pitch", subtitle, "pitch (deg)", x, pitch),
		traceLine("Residual", subtitle, "residual (px)", x, residual),
	)
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render error: %w", err)
	}
	return nil
}
