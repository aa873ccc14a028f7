package bench

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/pkg/errors"
)

// File names written by WriteFiles.
const (
	TrialsFile  = "trials.csv"
	SummaryFile = "summary.json"
	ChartFile   = "report.html"
)

var csvHeader = []string{
	"scheme", "bits", "lam", "op", "warmup", "rep", "elapsed_ns",
	"icert_len_bytes", "pk_len_bytes", "sk_len_bytes",
}

// WriteCSV writes one row per recorded sample, warm-up rows included and
// flagged.
func (rep *Report) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return errors.Wrap(err, "failed to write csv header")
	}
	for _, res := range rep.Results {
		if res == nil {
			continue
		}
		for _, s := range res.Samples {
			certLen := res.CertLen
			if s.Op == OpSetup {
				certLen = 0
			}
			row := []string{
				res.Backend,
				strconv.Itoa(res.Bits),
				strconv.Itoa(res.ChallengeBits),
				s.Op,
				boolDigit(s.Warmup),
				strconv.Itoa(s.Rep),
				strconv.FormatInt(s.Elapsed.Nanoseconds(), 10),
				strconv.Itoa(certLen),
				strconv.Itoa(res.PublicKeyLen),
				strconv.Itoa(res.SecretKeyLen),
			}
			if err := cw.Write(row); err != nil {
				return errors.Wrap(err, "failed to write csv row")
			}
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "failed to flush csv")
}

// WriteJSON writes the per-operation summary.
func (rep *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(rep), "failed to encode summary")
}

// WriteTable prints the summary in the layout of the comparison table: one
// line per backend and operation, timings in microseconds.
func (rep *Report) WriteTable(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "backend\top\tn\tmean(us)\tmedian(us)\tp95(us)\tp99(us)\tstddev(us)\tfailed\t")
	for _, res := range rep.Results {
		if res == nil {
			continue
		}
		if res.Err != nil {
			fmt.Fprintf(tw, "%s\taborted\t\t\t\t\t\t\t\t\n", res.Backend)
			continue
		}
		for _, op := range TimedOps {
			s := res.Ops[op]
			fmt.Fprintf(tw, "%s\t%s\t%d\t%.1f\t%.1f\t%.1f\t%.1f\t%.1f\t%d\t\n",
				res.Backend, op, s.Count, s.Mean, s.Median, s.P95, s.P99, s.StdDev, res.Failed)
		}
	}
	return errors.Wrap(tw.Flush(), "failed to write table")
}

// WriteHTML renders one bar chart of mean, median and tail cost per operation,
// one of p95 latency across operations, and one of encoding sizes.
func (rep *Report) WriteHTML(w io.Writer) error {
	var names []string
	var ok []*Result
	for _, res := range rep.Results {
		if res != nil && res.Err == nil {
			names = append(names, res.Backend)
			ok = append(ok, res)
		}
	}

	page := components.NewPage()
	for _, op := range TimedOps {
		mean := make([]opts.BarData, len(ok))
		median := make([]opts.BarData, len(ok))
		p95 := make([]opts.BarData, len(ok))
		p99 := make([]opts.BarData, len(ok))
		for i, res := range ok {
			mean[i] = opts.BarData{Value: res.Ops[op].Mean}
			median[i] = opts.BarData{Value: res.Ops[op].Median}
			p95[i] = opts.BarData{Value: res.Ops[op].P95}
			p99[i] = opts.BarData{Value: res.Ops[op].P99}
		}
		bar := newBar(fmt.Sprintf("%s (us)", op),
			fmt.Sprintf("%d timed trials after %d warm-up", rep.Trials, rep.Warmup))
		bar.SetXAxis(names).
			AddSeries("mean", mean).
			AddSeries("median", median).
			AddSeries("p95", p95).
			AddSeries("p99", p99)
		page.AddCharts(bar)
	}

	tail := newBar("p95 latency (us)", "per operation")
	tail.SetXAxis(TimedOps)
	for _, res := range ok {
		p95 := make([]opts.BarData, len(TimedOps))
		for i, op := range TimedOps {
			p95[i] = opts.BarData{Value: res.Ops[op].P95}
		}
		tail.AddSeries(res.Backend, p95)
	}
	page.AddCharts(tail)

	sizes := newBar("Encoding sizes (bytes)", "")
	cert := make([]opts.BarData, len(ok))
	pk := make([]opts.BarData, len(ok))
	sk := make([]opts.BarData, len(ok))
	for i, res := range ok {
		cert[i] = opts.BarData{Value: res.CertLen}
		pk[i] = opts.BarData{Value: res.PublicKeyLen}
		sk[i] = opts.BarData{Value: res.SecretKeyLen}
	}
	sizes.SetXAxis(names).
		AddSeries("iCert", cert).
		AddSeries("pk", pk).
		AddSeries("sk", sk)
	page.AddCharts(sizes)

	return errors.Wrap(page.Render(w), "failed to render html")
}

func newBar(title, subtitle string) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "900px", Height: "450px"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	return bar
}

// WriteFiles writes the requested formats into dir.
func (rep *Report) WriteFiles(dir string, formats []string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "failed to create output directory %s", dir)
	}
	var written []string
	for _, f := range formats {
		var (
			name  string
			write func(io.Writer) error
		)
		switch f {
		case FormatCSV:
			name, write = TrialsFile, rep.WriteCSV
		case FormatJSON:
			name, write = SummaryFile, rep.WriteJSON
		case FormatHTML:
			name, write = ChartFile, rep.WriteHTML
		default:
			return written, errors.Errorf("unknown output format %q", f)
		}
		path := filepath.Join(dir, name)
		if err := writeFile(path, write); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", path)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return errors.Wrapf(f.Close(), "failed to close %s", path)
}

func boolDigit(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
