//    pvtm-core
//    Copyright: VikaNa 2024-25
//    License: GNU GENERAL PUBLIC LICENSE 3

package graph

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/VikaNa/pvtm-core/internal/emb"
	"github.com/VikaNa/pvtm-core/internal/gmm"
	"github.com/VikaNa/pvtm-core/internal/lnch"
	"github.com/VikaNa/pvtm-core/internal/topics"
	"github.com/danaugrs/go-tsne/tsne"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

var Msg = lnch.NewMessageMakerWithDefaults()

//
// PLOTS
//

// every chart is rendered as a standalone html file in the output directory;
// echarts wants its js from a cdn, so the files need a network connection when
// opened

const (
	CHRTWIDTH  = "1200px"
	CHRTHEIGHT = "800px"
)

// BICPlot - one line per covariance family across the component grid; a cell
// whose restarts all failed is drawn as a gap, not a zero
func BICPlot(path string, st *gmm.ScoreTable) error {
	const (
		TITLESTR = "BIC over the candidate grid"
		SUBSTR   = "lower is better; gaps are candidates that failed to fit"
		XNAME    = "components"
		YNAME    = "BIC"
	)

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: CHRTWIDTH, Height: CHRTHEIGHT}),
		charts.WithTitleOpts(opts.Title{Title: TITLESTR, Subtitle: SUBSTR}),
		charts.WithLegendOpts(opts.Legend{Show: true, Top: "8%"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: true}),
		charts.WithXAxisOpts(opts.XAxis{Name: XNAME}),
		charts.WithYAxisOpts(opts.YAxis{Name: YNAME, Scale: true}),
	)

	xs := make([]string, len(st.Components))
	for i, k := range st.Components {
		xs[i] = fmt.Sprintf("%d", k)
	}
	line.SetXAxis(xs)

	for fi, cov := range st.Covariances {
		pts := make([]opts.LineData, len(st.Components))
		for ci := range st.Components {
			cell := st.Cells[fi][ci]
			if cell.Ok && !math.IsNaN(cell.BIC) {
				pts[ci] = opts.LineData{Value: cell.BIC}
			} else {
				// echarts draws "-" as a missing point
				pts[ci] = opts.LineData{Value: "-"}
			}
		}
		line.AddSeries(string(cov), pts)
	}

	return rendertofile(path, line)
}

// TopicDistributionPlot - documents per topic as a bar chart
func TopicDistributionPlot(path string, ctr *topics.Centers) error {
	const (
		TITLESTR = "Documents per topic"
		XNAME    = "topic"
		YNAME    = "documents"
	)

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: CHRTWIDTH, Height: CHRTHEIGHT}),
		charts.WithTitleOpts(opts.Title{Title: TITLESTR}),
		charts.WithTooltipOpts(opts.Tooltip{Show: true}),
		charts.WithXAxisOpts(opts.XAxis{Name: XNAME}),
		charts.WithYAxisOpts(opts.YAxis{Name: YNAME}),
	)

	xs := make([]string, ctr.K)
	bd := make([]opts.BarData, ctr.K)
	for k := 0; k < ctr.K; k++ {
		xs[k] = fmt.Sprintf("%d", k)
		bd[k] = opts.BarData{Value: ctr.Counts[k]}
	}
	bar.SetXAxis(xs).AddSeries("documents", bd)

	return rendertofile(path, bar)
}

// TSNEScatter - project the document vectors to 2d and scatter them with one
// series per hard topic so the legend doubles as a topic toggle
func TSNEScatter(path string, vs *emb.VectorStore, asg *topics.Assignment) error {
	const (
		PERPLEX  = 150 // capped below on small corpora
		LEARNRT  = 100
		MAXITER  = 150
		VERBOSE  = false
		MINDOCS  = 8
		TITLESTR = "Documents in t-SNE space"
		SUBSTR   = "colored by hard topic assignment"
		SYMSIZE  = 8
	)

	n := vs.Count()
	if n < MINDOCS {
		Msg.Emit(fmt.Sprintf("skipping the t-SNE scatter: only %d documents", n), lnch.MSGWARN)
		return nil
	}

	perplex := float64(PERPLEX)
	if most := float64(n-1) / 3; most < perplex {
		perplex = most
	}

	t := tsne.NewTSNE(2, perplex, LEARNRT, MAXITER, VERBOSE)
	t.EmbedData(vs.Matrix(), nil)

	sc := charts.NewScatter()
	sc.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: CHRTWIDTH, Height: CHRTHEIGHT}),
		charts.WithTitleOpts(opts.Title{Title: TITLESTR, Subtitle: SUBSTR}),
		charts.WithLegendOpts(opts.Legend{Show: true, Top: "8%"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: true}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Scale: true}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Scale: true}),
	)

	bytopic := make(map[int][]opts.ScatterData)
	for i := 0; i < n; i++ {
		k := asg.Hard[i]
		bytopic[k] = append(bytopic[k], opts.ScatterData{
			Value:      []interface{}{t.Y.At(i, 0), t.Y.At(i, 1)},
			SymbolSize: SYMSIZE,
		})
	}

	for k := 0; k < asg.Topics(); k++ {
		if len(bytopic[k]) == 0 {
			continue
		}
		sc.AddSeries(fmt.Sprintf("topic %d", k), bytopic[k])
	}

	return rendertofile(path, sc)
}

type renderable interface {
	Render(w io.Writer) error
}

func rendertofile(path string, chart renderable) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return chart.Render(f)
}
