// Package scenario runs one calculator scenario end to end: it recomputes the
// expected figures, reads the actual values from every supplied source and
// reconciles them section by section.
package scenario

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iwvelando/emi-reconcile/internal/config"
	"github.com/iwvelando/emi-reconcile/internal/snapshot"
	"github.com/iwvelando/emi-reconcile/pkg/chart"
	"github.com/iwvelando/emi-reconcile/pkg/datetime"
	"github.com/iwvelando/emi-reconcile/pkg/generator"
	"github.com/iwvelando/emi-reconcile/pkg/loans"
	"github.com/iwvelando/emi-reconcile/pkg/reconcile"
	"github.com/iwvelando/emi-reconcile/pkg/slider"
	"github.com/iwvelando/emi-reconcile/pkg/spreadsheet"
	"github.com/iwvelando/emi-reconcile/pkg/table"
)

// SheetReader returns the rows of a workbook sheet.
type SheetReader interface {
	Rows(sheet string) ([][]string, error)
}

// Sources are the channels actual values are read from. Nil sources skip
// their sections.
type Sources struct {
	Summary     map[string]string
	Chart       chart.Provider
	Table       table.Provider
	Spreadsheet SheetReader
}

// Inputs are the loan parameters of a run and the month its schedule starts.
type Inputs struct {
	Name       string
	Parameters loans.Parameters
	StartMonth string
}

// Runner executes scenarios. A Runner holds no per-run state and may be
// shared between goroutines.
type Runner struct {
	cfg       *config.Configuration
	logger    *zap.Logger
	alignment reconcile.Alignment
	sliders   *slider.Registry
	charts    *chart.Extractor
	tables    *table.Extractor
	schedules *loans.ScheduleGenerator
	now       func() time.Time
}

// Option configures a Runner.
type Option func(*Runner)

// WithClock replaces the clock used for the default schedule start month.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// NewRunner validates cfg and builds the extractors it describes.
func NewRunner(cfg *config.Configuration, logger *zap.Logger, opts ...Option) (*Runner, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg == nil {
		var err error
		if cfg, err = config.Default(); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	alignment, err := cfg.Alignment()
	if err != nil {
		return nil, err
	}
	sliders, err := cfg.Sliders.Registry()
	if err != nil {
		return nil, err
	}
	tables, err := table.NewExtractor(cfg.Table.Layout(), logger)
	if err != nil {
		return nil, err
	}

	r := &Runner{
		cfg:       cfg,
		logger:    logger,
		alignment: alignment,
		sliders:   sliders,
		charts:    chart.NewExtractor(logger),
		tables:    tables,
		schedules: loans.NewScheduleGenerator(logger),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Generator returns a value generator over the configured domains, seeded
// from the configuration when a seed is set.
func (r *Runner) Generator(opts ...generator.Option) (*generator.Generator, error) {
	return generator.New(r.cfg.Domains.Domains(), append(r.cfg.Generator.Options(), opts...)...)
}

// Run executes one scenario. Only invalid loan parameters abort it; every
// other failure is recorded against its section on the result.
func (r *Runner) Run(ctx context.Context, in Inputs, src Sources) (*Result, error) {
	res := &Result{
		RunID:      uuid.NewString(),
		Name:       in.Name,
		Parameters: in.Parameters,
		StartMonth: r.startMonth(in.StartMonth),
	}
	log := r.logger.With(zap.String("runID", res.RunID), zap.String("scenario", in.Name))

	expected, err := loans.Compute(in.Parameters)
	if err != nil {
		log.Error("invalid loan parameters",
			zap.String("op", "scenario.Run"),
			zap.Error(err))
		return nil, err
	}
	res.Expected = expected
	log.Debug(fmt.Sprintf("expected EMI %d, total interest %d, total payment %d",
		expected.EMI, expected.TotalInterest, expected.TotalPayment),
		zap.String("op", "scenario.Run"))

	if positions, err := r.sliders.Positions(in.Parameters); err != nil {
		res.fail(SectionSliders, err)
	} else {
		res.SliderPositions = positions
	}

	calculator := expectedRecord(in.Parameters, expected)
	if src.Summary != nil {
		ui := reconcile.NewRecord(SourceUI, "", src.Summary)
		report := reconcile.Reconcile(calculator, ui, r.summarySpecs(src.Summary))
		res.Summary = &report
	}

	if schedule, err := r.schedules.Yearly(in.Parameters, res.StartMonth); err != nil {
		res.fail(SectionSchedule, err)
	} else {
		res.Schedule = schedule
	}

	var tableRecords []reconcile.Record
	if src.Table != nil {
		rows, err := r.tables.Extract(ctx, src.Table, r.cfg.Table.RowSelector)
		if err != nil {
			res.fail(SectionTable, err)
		} else {
			tableRecords = table.Records(rows)
		}
	}

	if src.Chart != nil && src.Table != nil && tableRecords != nil {
		r.reconcileChart(ctx, res, src.Chart, tableRecords)
	}

	if res.Schedule != nil && tableRecords != nil {
		report, err := reconcile.ReconcileSeries(scheduleRecords(res.Schedule), tableRecords, r.scheduleTableSpecs(), r.alignment)
		if err != nil {
			res.fail(SectionScheduleTable, err)
		} else {
			res.ScheduleTable = report
		}
	}

	if src.Spreadsheet != nil {
		r.reconcileSpreadsheet(res, src, calculator)
	}

	if err := res.Err(); err != nil {
		log.Warn("scenario failed",
			zap.String("op", "scenario.Run"),
			zap.Error(err))
	} else {
		log.Info("scenario passed",
			zap.String("op", "scenario.Run"))
	}
	return res, nil
}

func (r *Runner) reconcileChart(ctx context.Context, res *Result, provider chart.Provider, tableRecords []reconcile.Record) {
	points, err := r.charts.Extract(ctx, provider, r.cfg.Chart.Series)
	if err != nil {
		res.fail(SectionChartTable, err)
		return
	}
	report, err := reconcile.ReconcileSeries(chart.Records(points), tableRecords, r.chartTableSpecs(), r.alignment)
	if err != nil {
		res.fail(SectionChartTable, err)
		return
	}
	res.ChartTable = report
}

// reconcileSpreadsheet compares the workbook with the on-screen summary, or
// with the calculator when no summary was captured.
func (r *Runner) reconcileSpreadsheet(res *Result, src Sources, calculator reconcile.Record) {
	rows, err := src.Spreadsheet.Rows(r.cfg.Spreadsheet.SheetName)
	if err != nil {
		res.fail(SectionSpreadsheet, err)
		return
	}

	expected := calculator
	if src.Summary != nil {
		expected = reconcile.NewRecord(SourceUI, "", src.Summary)
	}
	actual := spreadsheet.Record(spreadsheet.SourceName, rows)
	report := reconcile.Reconcile(expected, actual, r.spreadsheetSpecs(expected))
	res.Spreadsheet = &report
}

func (r *Runner) startMonth(requested string) string {
	if requested != "" {
		return requested
	}
	if r.cfg.Schedule.StartMonth != "" {
		return r.cfg.Schedule.StartMonth
	}
	return datetime.CurrentMonth(r.now())
}

// RunSnapshot runs a captured session, opening its workbook for the duration
// of the run.
func (r *Runner) RunSnapshot(ctx context.Context, run *snapshot.Run) (*Result, error) {
	src := Sources{Summary: run.Summary}

	var setupErrs []SectionError
	if run.HasChart() {
		provider, err := run.ChartProvider()
		if err != nil {
			setupErrs = append(setupErrs, SectionError{Section: SectionSources, Message: err.Error(), Err: err})
		}
		src.Chart = provider
	}
	if run.HasTable() {
		provider, err := run.TableProvider()
		if err != nil {
			setupErrs = append(setupErrs, SectionError{Section: SectionSources, Message: err.Error(), Err: err})
		}
		src.Table = provider
	}
	if run.HasSpreadsheet() {
		wb, err := run.Workbook(r.logger)
		if err != nil {
			setupErrs = append(setupErrs, SectionError{Section: SectionSources, Message: err.Error(), Err: err})
		} else {
			defer func() {
				if cerr := wb.Close(); cerr != nil {
					r.logger.Warn("failed to close workbook",
						zap.String("op", "scenario.RunSnapshot"),
						zap.Error(cerr))
				}
			}()
			src.Spreadsheet = wb
		}
	}

	res, err := r.Run(ctx, Inputs{Name: run.Name, Parameters: run.Parameters, StartMonth: run.StartMonth}, src)
	if err != nil {
		return nil, err
	}
	res.Errors = append(setupErrs, res.Errors...)
	return res, nil
}

// RandomInputs draws n parameter sets from gen.
func (r *Runner) RandomInputs(gen *generator.Generator, n int) ([]Inputs, error) {
	inputs := make([]Inputs, 0, n)
	for i := 0; i < n; i++ {
		p, err := gen.Parameters()
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, Inputs{
			Name:       fmt.Sprintf("random-%d", i+1),
			Parameters: p,
		})
	}
	return inputs, nil
}
