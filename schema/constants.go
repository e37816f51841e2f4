package schema

// Custom string types for type safety.
type (
	// Level represents the categorical risk level of an assessment.
	Level string

	// Domain represents a named sub-category of risk factors.
	Domain string

	// TransformKind represents how a total score becomes a level.
	TransformKind string

	// ConfidenceMethod represents how the confidence proxy is computed.
	ConfidenceMethod string

	// Topic orders explanations independently of rule evaluation order.
	Topic string

	// OutputMode represents the format of the output.
	OutputMode string

	// ExportFormat represents the format used by the records export command.
	ExportFormat string

	// DatabaseBackend represents the backend for the assessment record store.
	DatabaseBackend string
)

// All risk levels supported. Optimal is only produced by composite policies.
const (
	OptimalLevel  Level = "Optimal"
	LowLevel      Level = "Low"
	ModerateLevel Level = "Moderate"
	HighLevel     Level = "High"
)

// All scoring domains supported.
const (
	ClinicalDomain   Domain = "clinical"
	FunctionalDomain Domain = "functional"
	SocialDomain     Domain = "social"
)

// All transforms supported.
const (
	ThresholdTransform TransformKind = "threshold"
	LogisticTransform  TransformKind = "logistic"
	CompositeTransform TransformKind = "composite"
)

// All confidence methods supported.
const (
	CompletenessConfidence ConfidenceMethod = "completeness"
	ScoreConfidence        ConfidenceMethod = "score"
)

// Explanation topics, declared in output order.
const (
	AgeTopic           Topic = "age"
	FunctionalTopic    Topic = "functional"
	ComorbidityTopic   Topic = "comorbidity"
	LabsTopic          Topic = "labs"
	MentalTopic        Topic = "mental"
	QualityOfLifeTopic Topic = "quality_of_life"
	SocialTopic        Topic = "social"
	LifestyleTopic     Topic = "lifestyle"
)

// All output modes supported.
const (
	TextOut OutputMode = "text" // default
	CSVOut  OutputMode = "csv"
	JSONOut OutputMode = "json"
)

// All export formats supported.
const (
	ParquetExport ExportFormat = "parquet" // default
	XLSXExport    ExportFormat = "xlsx"
	CSVExport     ExportFormat = "csv"
	JSONExport    ExportFormat = "json"
)

// All store backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	CSVBackend        DatabaseBackend = "csv"
	NoneBackend       DatabaseBackend = "none"
)

// AllDomains lists the domains in display order.
var AllDomains = []Domain{ClinicalDomain, FunctionalDomain, SocialDomain}

// TopicOrder lists explanation topics in the order explanations are emitted.
var TopicOrder = []Topic{
	AgeTopic,
	FunctionalTopic,
	ComorbidityTopic,
	LabsTopic,
	MentalTopic,
	QualityOfLifeTopic,
	SocialTopic,
	LifestyleTopic,
}

// ValidLevels lists all valid levels.
var ValidLevels = map[Level]struct{}{
	OptimalLevel:  {},
	LowLevel:      {},
	ModerateLevel: {},
	HighLevel:     {},
}

// ValidDomains lists all valid domains.
var ValidDomains = map[Domain]struct{}{
	ClinicalDomain:   {},
	FunctionalDomain: {},
	SocialDomain:     {},
}

// ValidTopics lists all valid explanation topics.
var ValidTopics = map[Topic]struct{}{
	AgeTopic:           {},
	FunctionalTopic:    {},
	ComorbidityTopic:   {},
	LabsTopic:          {},
	MentalTopic:        {},
	QualityOfLifeTopic: {},
	SocialTopic:        {},
	LifestyleTopic:     {},
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut: {},
	CSVOut:  {},
	JSONOut: {},
}

// ValidExportFormats lists all valid export formats.
var ValidExportFormats = map[ExportFormat]struct{}{
	ParquetExport: {},
	XLSXExport:    {},
	CSVExport:     {},
	JSONExport:    {},
}

// ValidDatabaseBackends lists all valid store backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	CSVBackend:        {},
	NoneBackend:       {},
}

// Rank returns the position of a topic in TopicOrder, or len(TopicOrder) if unknown.
func (t Topic) Rank() int {
	for i, o := range TopicOrder {
		if o == t {
			return i
		}
	}
	return len(TopicOrder)
}

// Severity orders levels from least to most severe.
func (l Level) Severity() int {
	switch l {
	case OptimalLevel:
		return 0
	case LowLevel:
		return 1
	case ModerateLevel:
		return 2
	case HighLevel:
		return 3
	default:
		return -1
	}
}
