// Package constants provides shared constants for the emi-reconcile application.
package constants

// DateTimeLayout is the month layout used for schedule start dates.
const DateTimeLayout = "2006-01"

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// RupeesPerLakh converts a lakh-denominated amount into rupees
	RupeesPerLakh = 100000

	// DefaultDecimals is the rounding applied to percentages before comparison
	DefaultDecimals = 2

	// CurrencyDecimals is the rounding applied to whole-rupee amounts
	CurrencyDecimals = 0
)

// Domain defaults for generated inputs.
const (
	PrincipalLakhMin  = 0.0
	PrincipalLakhMax  = 200.0
	PrincipalLakhStep = 1.0

	InterestRateMin  = 5.0
	InterestRateMax  = 20.0
	InterestRateStep = 0.25

	TenureYearsMin  = 0.0
	TenureYearsMax  = 30.0
	TenureYearsStep = 0.5
)

// Slider control names and ranges.
const (
	ControlLoanAmount   = "loanAmount"
	ControlInterestRate = "interestRate"
	ControlTenureYears  = "loanTenureInYears"
	ControlTenureMonths = "loanTenureInMonths"

	TenureMonthsMin = 0.0
	TenureMonthsMax = 360.0

	// DefaultTrackWidth is the slider width in pixels used when none is captured
	DefaultTrackWidth = 400.0
)

// Chart and table layout defaults.
const (
	// DefaultChartSeries is the chart series compared against the table
	DefaultChartSeries = "Balance"

	// DefaultRowSelector matches the yearly breakdown rows
	DefaultRowSelector = "tr.yearlypaymentdetails"

	DefaultYearCell     = 0
	DefaultBalanceCell  = 4
	DefaultLoanPaidCell = 5
)

// Record field names shared by every extractor.
const (
	FieldYear     = "year"
	FieldBalance  = "balance"
	FieldLoanPaid = "loanPaid"
)

// Summary labels as they appear on screen and in the exported workbook.
const (
	LabelLoanAmount    = "Home Loan Amount"
	LabelInterestRate  = "Interest Rate"
	LabelLoanTenure    = "Loan Tenure"
	LabelEMI           = "Loan EMI"
	LabelTotalInterest = "Total Interest Payable"
	LabelTotalPayment  = "Total Payment"
)

// DefaultSheetName is the sheet holding the exported summary.
const DefaultSheetName = "Copyright © EMICalculator.net"

// Alignment modes for chart/table reconciliation.
const (
	AlignmentKey      = "key"
	AlignmentPosition = "position"
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// EnvPrefix prefixes environment overrides, e.g. EMI_RECONCILE_ALIGNMENT
	EnvPrefix = "EMI"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address
	DefaultServerAddress = ":8080"

	// DefaultMaxBodyBytes caps reconcile request bodies (1 MB)
	DefaultMaxBodyBytes int64 = 1024 * 1024
)
