// Package rule implements the rule model and the Rule Store (C4): loading
// and saving YAML rule definitions, schema validation, and rule lifecycle
// (list, save, delete, import, export).
package rule

// Status is a rule's lifecycle state.
type Status string

const (
	StatusActive       Status = "active"
	StatusDisabled     Status = "disabled"
	StatusExperimental Status = "experimental"
	StatusDeprecated   Status = "deprecated"
)

// Severity is a rule's detection severity.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityInfo     Severity = "info"
)

// Aggregation is a rule's optional threshold-over-window qualifier.
type Aggregation struct {
	Enabled   bool   `yaml:"enabled" json:"enabled"`
	Window    string `yaml:"window" json:"window"`       // "<int><s|m|h|d>"
	Threshold string `yaml:"threshold" json:"threshold"` // "<op> <n>"
}

// Detection is the rule's detection-specific fields.
type Detection struct {
	Severity    Severity     `yaml:"severity" json:"severity" validate:"oneof=critical high medium low info"`
	Condition   string       `yaml:"condition" json:"condition" validate:"required"`
	Aggregation *Aggregation `yaml:"aggregation,omitempty" json:"aggregation,omitempty"`
}

// Output is the rule's alert-formatting fields.
type Output struct {
	AlertTitle string `yaml:"alert_title,omitempty" json:"alert_title,omitempty"`
}

// Rule is the persistent, YAML-serialized unit of detection.
type Rule struct {
	ID          string    `yaml:"id" json:"id"`
	Title       string    `yaml:"title" json:"title" validate:"required"`
	Description string    `yaml:"description" json:"description" validate:"required"`
	Author      string    `yaml:"author" json:"author" validate:"required"`
	Status      Status    `yaml:"status" json:"status" validate:"oneof=active disabled experimental deprecated"`
	Date        string    `yaml:"date" json:"date"` // ISO YYYY-MM-DD, advisory
	Tags        []string  `yaml:"tags,omitempty" json:"tags,omitempty"`
	Detection   Detection `yaml:"detection" json:"detection" validate:"required"`
	Output      Output    `yaml:"output,omitempty" json:"output,omitempty"`
}
