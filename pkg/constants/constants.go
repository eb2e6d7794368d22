// Package constants provides shared constants for the business-case application.
package constants

// DateTimeLayout is the period format used for start dates and for the date
// column of every monthly record.
const DateTimeLayout = "2006-01"

// SchemaVersion is written into every persisted document that lacks one.
const SchemaVersion = "1.0"

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// MonthsPerQuarter is the number of months in a quarter
	MonthsPerQuarter = 3

	// ShareDecimalPlaces is the precision of breakdown shares, in percent.
	ShareDecimalPlaces = 1

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01
)

// Projection defaults applied when an assumption is absent.
const (
	// MaxPeriods is the hard upper bound of the projection horizon.
	MaxPeriods = 60

	// DefaultStartDate anchors record dates when meta.start_date is empty.
	DefaultStartDate = "2025-01"

	// DefaultBaseVolume is the month-0 sales volume without segment data.
	DefaultBaseVolume = 1000.0

	// MonthlyVolumeGrowth is the linear-on-index volume growth per period.
	MonthlyVolumeGrowth = 0.02

	// DefaultUnitPrice is used when pricing.avg_unit_price is absent.
	DefaultUnitPrice = 50.0

	// DefaultCOGSPct is the cost of goods sold as a fraction of revenue.
	DefaultCOGSPct = 0.3

	// DefaultCAC is the per-unit customer acquisition cost.
	DefaultCAC = 0.0

	// DefaultSalesMarketing, DefaultRD and DefaultGA are the month-0 values of
	// the three opex lines.
	DefaultSalesMarketing = 15000.0
	DefaultRD             = 8000.0
	DefaultGA             = 5000.0

	// SalesMarketingIncrement, RDIncrement and GAIncrement are the per-period
	// linear increases of the opex lines.
	SalesMarketingIncrement = 300.0
	RDIncrement             = 200.0
	GAIncrement             = 100.0

	// InitialCapex is spent in month 0, RecurringCapex every 12th month after.
	InitialCapex   = 50000.0
	RecurringCapex = 10000.0
)

// Metrics defaults.
const (
	// DefaultAnnualDiscountRate is the annual rate used to discount cash flows.
	DefaultAnnualDiscountRate = 0.10

	// NetProfitMargin is the flat margin applied to total revenue.
	NetProfitMargin = 0.26

	// FallbackBreakEvenMonth is reported when cumulative cash never turns positive.
	FallbackBreakEvenMonth = 14

	// FallbackPaybackFraction of the horizon is the payback period without break-even.
	FallbackPaybackFraction = 0.3
)

// Values returned by DefaultMetrics when there is nothing to compute.
const (
	DefaultMetricsTotalRevenue   = 2400000.0
	DefaultMetricsNetProfit      = 624000.0
	DefaultMetricsNPV            = 450000.0
	DefaultMetricsPaybackPeriod  = 18
	DefaultMetricsBreakEvenMonth = FallbackBreakEvenMonth
	DefaultMetricsROA            = 0.15
)

// Market extraction and alignment constants
const (
	// BaseConfidenceScore is the starting provenance confidence.
	BaseConfidenceScore = 0.5

	// Confidence increments per present market field.
	TAMConfidenceIncrement         = 0.15
	SAMConfidenceIncrement         = 0.15
	SOMConfidenceIncrement         = 0.10
	TargetShareConfidenceIncrement = 0.10

	// DefaultAlignmentThreshold is the variance percentage below which a
	// market-sourced assumption counts as aligned.
	DefaultAlignmentThreshold = 15.0
)

// Output format constants
const (
	// OutputFormatTable is the human-readable table format
	OutputFormatTable = "table"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatMarkdown is the Markdown output format
	OutputFormatMarkdown = "markdown"

	// OutputFormatHTML is Markdown rendered to HTML
	OutputFormatHTML = "html"

	// OutputFormatJSON is the JSON output format
	OutputFormatJSON = "json"

	// OutputFormatXLSX is the spreadsheet output format
	OutputFormatXLSX = "xlsx"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "business-case.yaml"

	// AppDirName is the directory under the user configuration directory
	// that holds the default state.
	AppDirName = "business-case"

	// DefaultStateDir and DefaultDatabaseFile name the default storage
	// locations of the file and sqlite drivers inside AppDirName.
	DefaultStateDir     = "state"
	DefaultDatabaseFile = "business-case.db"

	// EnvPrefix prefixes environment overrides, e.g. BUSINESS_CASE_LOGGING_LEVEL.
	EnvPrefix = "BUSINESS_CASE"

	// DefaultMaxImportSizeBytes is the default maximum size of an imported document (256 KB)
	DefaultMaxImportSizeBytes int64 = 256 * 1024

	// DefaultSensitivityConcurrency bounds parallel sensitivity evaluations.
	DefaultSensitivityConcurrency = 4
)

// Storage drivers
const (
	StorageDriverMemory = "memory"
	StorageDriverFile   = "file"
	StorageDriverSQLite = "sqlite"
)
