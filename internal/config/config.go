// Package config defines the reconciliation configuration and loads it from
// YAML and the environment.
package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/multierr"

	"github.com/iwvelando/emi-reconcile/pkg/constants"
	"github.com/iwvelando/emi-reconcile/pkg/generator"
	"github.com/iwvelando/emi-reconcile/pkg/reconcile"
	"github.com/iwvelando/emi-reconcile/pkg/slider"
	"github.com/iwvelando/emi-reconcile/pkg/table"
	"github.com/iwvelando/emi-reconcile/pkg/validation"
)

// Configuration holds all configuration for emi-reconcile.
type Configuration struct {
	Domains     DomainsConfig     `mapstructure:"domains" yaml:"domains"`
	Sliders     SlidersConfig     `mapstructure:"sliders" yaml:"sliders"`
	Table       TableConfig       `mapstructure:"table" yaml:"table"`
	Chart       ChartConfig       `mapstructure:"chart" yaml:"chart"`
	Reconcile   ReconcileConfig   `mapstructure:"reconcile" yaml:"reconcile"`
	Spreadsheet SpreadsheetConfig `mapstructure:"spreadsheet" yaml:"spreadsheet"`
	Generator   GeneratorConfig   `mapstructure:"generator" yaml:"generator"`
	Schedule    ScheduleConfig    `mapstructure:"schedule" yaml:"schedule"`
	Logging     LoggingConfig     `mapstructure:"logging" yaml:"logging,omitempty"`
	Output      OutputConfig      `mapstructure:"output" yaml:"output,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `mapstructure:"level" yaml:"level,omitempty"`           // debug, info, warn, error
	Format     string `mapstructure:"format" yaml:"format,omitempty"`         // json, console
	OutputFile string `mapstructure:"outputFile" yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format,omitempty"` // pretty, csv
}

// DomainsConfig holds the generator domains.
type DomainsConfig struct {
	PrincipalLakh generator.Domain `mapstructure:"principalLakh" yaml:"principalLakh"`
	InterestRate  generator.Domain `mapstructure:"interestRate" yaml:"interestRate"`
	TenureYears   generator.Domain `mapstructure:"tenureYears" yaml:"tenureYears"`
}

// Domains converts to generator.Domains.
func (d DomainsConfig) Domains() generator.Domains {
	return generator.Domains{
		generator.PrincipalLakh: d.PrincipalLakh,
		generator.InterestRate:  d.InterestRate,
		generator.TenureYears:   d.TenureYears,
	}
}

// SlidersConfig holds the slider ranges and track width.
type SlidersConfig struct {
	TrackWidth   float64      `mapstructure:"trackWidth" yaml:"trackWidth"`
	LoanAmount   slider.Range `mapstructure:"loanAmount" yaml:"loanAmount"`
	InterestRate slider.Range `mapstructure:"interestRate" yaml:"interestRate"`
	TenureYears  slider.Range `mapstructure:"tenureYears" yaml:"tenureYears"`
	TenureMonths slider.Range `mapstructure:"tenureMonths" yaml:"tenureMonths"`
}

// Ranges returns the ranges keyed by control name.
func (s SlidersConfig) Ranges() map[string]slider.Range {
	return map[string]slider.Range{
		constants.ControlLoanAmount:   s.LoanAmount,
		constants.ControlInterestRate: s.InterestRate,
		constants.ControlTenureYears:  s.TenureYears,
		constants.ControlTenureMonths: s.TenureMonths,
	}
}

// Registry builds a slider registry from the configured ranges.
func (s SlidersConfig) Registry() (*slider.Registry, error) {
	return slider.NewRegistry(s.Ranges(), s.TrackWidth)
}

// TableConfig locates the yearly breakdown rows and their cells.
type TableConfig struct {
	RowSelector  string `mapstructure:"rowSelector" yaml:"rowSelector"`
	YearCell     int    `mapstructure:"yearCell" yaml:"yearCell"`
	BalanceCell  int    `mapstructure:"balanceCell" yaml:"balanceCell"`
	LoanPaidCell int    `mapstructure:"loanPaidCell" yaml:"loanPaidCell"`
}

// Layout returns the configured cell layout.
func (t TableConfig) Layout() table.Layout {
	return table.Layout{Year: t.YearCell, Balance: t.BalanceCell, LoanPaid: t.LoanPaidCell}
}

// ChartConfig names the series compared against the table.
type ChartConfig struct {
	Series string `mapstructure:"series" yaml:"series"`
}

// ReconcileConfig holds comparison policy.
type ReconcileConfig struct {
	Alignment        string `mapstructure:"alignment" yaml:"alignment"`
	PercentDecimals  int    `mapstructure:"percentDecimals" yaml:"percentDecimals"`
	CurrencyDecimals int    `mapstructure:"currencyDecimals" yaml:"currencyDecimals"`
}

// SpreadsheetConfig names the exported summary sheet.
type SpreadsheetConfig struct {
	SheetName string `mapstructure:"sheetName" yaml:"sheetName"`
}

// GeneratorConfig holds an optional fixed seed.
type GeneratorConfig struct {
	Seed *uint64 `mapstructure:"seed" yaml:"seed,omitempty"`
}

// Options returns generator options for the configured seed.
func (g GeneratorConfig) Options() []generator.Option {
	if g.Seed == nil {
		return nil
	}
	return []generator.Option{generator.WithSeed(*g.Seed)}
}

// ScheduleConfig holds the month the yearly schedule starts in. Empty means
// the current month.
type ScheduleConfig struct {
	StartMonth string `mapstructure:"startMonth" yaml:"startMonth,omitempty"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("domains.principalLakh.min", constants.PrincipalLakhMin)
	v.SetDefault("domains.principalLakh.max", constants.PrincipalLakhMax)
	v.SetDefault("domains.principalLakh.step", constants.PrincipalLakhStep)
	v.SetDefault("domains.interestRate.min", constants.InterestRateMin)
	v.SetDefault("domains.interestRate.max", constants.InterestRateMax)
	v.SetDefault("domains.interestRate.step", constants.InterestRateStep)
	v.SetDefault("domains.tenureYears.min", constants.TenureYearsMin)
	v.SetDefault("domains.tenureYears.max", constants.TenureYearsMax)
	v.SetDefault("domains.tenureYears.step", constants.TenureYearsStep)

	v.SetDefault("sliders.trackWidth", constants.DefaultTrackWidth)
	v.SetDefault("sliders.loanAmount.min", constants.PrincipalLakhMin)
	v.SetDefault("sliders.loanAmount.max", constants.PrincipalLakhMax)
	v.SetDefault("sliders.interestRate.min", constants.InterestRateMin)
	v.SetDefault("sliders.interestRate.max", constants.InterestRateMax)
	v.SetDefault("sliders.tenureYears.min", constants.TenureYearsMin)
	v.SetDefault("sliders.tenureYears.max", constants.TenureYearsMax)
	v.SetDefault("sliders.tenureMonths.min", constants.TenureMonthsMin)
	v.SetDefault("sliders.tenureMonths.max", constants.TenureMonthsMax)

	v.SetDefault("table.rowSelector", constants.DefaultRowSelector)
	v.SetDefault("table.yearCell", constants.DefaultYearCell)
	v.SetDefault("table.balanceCell", constants.DefaultBalanceCell)
	v.SetDefault("table.loanPaidCell", constants.DefaultLoanPaidCell)

	v.SetDefault("chart.series", constants.DefaultChartSeries)

	v.SetDefault("reconcile.alignment", constants.AlignmentKey)
	v.SetDefault("reconcile.percentDecimals", constants.DefaultDecimals)
	v.SetDefault("reconcile.currencyDecimals", constants.CurrencyDecimals)

	v.SetDefault("spreadsheet.sheetName", constants.DefaultSheetName)
	v.SetDefault("schedule.startMonth", "")

	v.SetDefault("logging.level", "")
	v.SetDefault("logging.format", "")
	v.SetDefault("logging.outputFile", "")
	v.SetDefault("output.format", "")
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// No default exists for the seed, so AutomaticEnv alone would not see it.
	_ = v.BindEnv("generator.seed")
	return v
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}
	return &configuration, nil
}

// Default returns the built-in configuration with environment overrides applied.
func Default() (*Configuration, error) {
	return decode(newViper())
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %w", err)
	}
	return decode(v)
}

// LoadConfigurationFromReader loads YAML configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()
	v.SetConfigType("yaml")

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %w", err)
	}
	return decode(v)
}

// Alignment returns the parsed alignment mode.
func (c *Configuration) Alignment() (reconcile.Alignment, error) {
	return reconcile.ParseAlignment(c.Reconcile.Alignment)
}

// Validate checks every section and returns all problems found.
func (c *Configuration) Validate() error {
	var errs error

	for kind, d := range c.Domains.Domains() {
		if err := d.Validate(); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("domains.%s: %w", kind, err))
		}
	}

	if c.Sliders.TrackWidth <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("sliders.trackWidth: %w: must be positive", slider.ErrInvalidRange))
	}
	for name, r := range c.Sliders.Ranges() {
		if err := r.Validate(); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("sliders.%s: %w", name, err))
		}
	}

	if strings.TrimSpace(c.Table.RowSelector) == "" {
		errs = multierr.Append(errs, fmt.Errorf("table.rowSelector must not be empty"))
	}
	if err := c.Table.Layout().Validate(); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("table: %w", err))
	}
	if strings.TrimSpace(c.Chart.Series) == "" {
		errs = multierr.Append(errs, fmt.Errorf("chart.series must not be empty"))
	}

	if err := validation.ValidateAlignment(c.Reconcile.Alignment); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("reconcile.alignment: %w", err))
	}
	if err := validation.ValidateDecimals(c.Reconcile.PercentDecimals); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("reconcile.percentDecimals: %w", err))
	}
	if err := validation.ValidateDecimals(c.Reconcile.CurrencyDecimals); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("reconcile.currencyDecimals: %w", err))
	}

	if c.Schedule.StartMonth != "" {
		if err := validation.ValidateStartMonth(c.Schedule.StartMonth); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("schedule.startMonth: %w", err))
		}
	}
	if err := validation.ValidateOutputFormat(c.Output.Format); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("output.format: %w", err))
	}

	return errs
}
