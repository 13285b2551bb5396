package metric

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/vhive-serverless/torchscale/pkg/common"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	log "github.com/sirupsen/logrus"
)

// PlotScaling draws one efficiency-over-GPU-count line per (model, batch size) group, with
// the ideal linear scaling as reference. The image format follows the file extension.
func PlotScaling(path string, report common.ExperimentReport) error {
	curves := report.Curves()
	if len(curves) == 0 {
		return fmt.Errorf("no scaling curves in report %s", report.ID)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return err
		}
	}

	keys := make([]common.GroupKey, 0, len(curves))
	for key := range curves {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].Less(keys[j])
	})

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Scaling efficiency of %s", report.ExperimentName)
	p.X.Label.Text = "Number of GPUs"
	p.Y.Label.Text = "Efficiency"
	p.Y.Min = 0
	p.Y.Max = 1.1

	maxDevices := 1
	lines := make([]interface{}, 0, 2*len(keys)+2)
	for _, key := range keys {
		points := getXY(curves[key])
		for _, pt := range points {
			p.Y.Max = math.Max(p.Y.Max, pt.Y*1.1)
			maxDevices = common.MaxOf(maxDevices, int(pt.X))
		}
		lines = append(lines, key.String(), points)
	}
	lines = append(lines, "ideal", plotter.XYs{{X: 1, Y: 1}, {X: float64(maxDevices), Y: 1}})

	if err := plotutil.AddLinePoints(p, lines...); err != nil {
		return err
	}

	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return err
	}

	log.Debugf("Plotted %d scaling curves to %s", len(keys), path)
	return nil
}

func getXY(points []common.ScalingPoint) plotter.XYs {
	sorted := append([]common.ScalingPoint(nil), points...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].DeviceCount < sorted[j].DeviceCount
	})

	pts := make(plotter.XYs, len(sorted))
	for i := range pts {
		pts[i].X = float64(sorted[i].DeviceCount)
		pts[i].Y = sorted[i].Efficiency
	}
	return pts
}
