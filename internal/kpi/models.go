package kpi

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// MetricKind classifies how a metric value should be displayed.
type MetricKind string

const (
	KindCurrency MetricKind = "currency"
	KindPercent  MetricKind = "percent"
	KindPlain    MetricKind = "plain"
	KindUnparsed MetricKind = "unparsed"
)

// MetricValue is a parsed metric. Raw always carries the operator's
// original input; Number is only meaningful when Kind is not KindUnparsed.
type MetricValue struct {
	Kind   MetricKind `json:"kind"`
	Number float64    `json:"number"`
	Raw    string     `json:"raw"`
}

// Metric names kept per client, in display order.
const (
	MetricCAC                = "cac"
	MetricCostPerLead        = "costPerLead"
	MetricSpeedToLead        = "speedToLead"
	MetricLeadToAppointment  = "leadToAppointment"
	MetricClosingRate        = "closingRate"
	MetricOverallConversion  = "overallConversion"
	MetricFollowupCompletion = "followupCompletion"
)

// MetricNames lists all tracked metrics in display order.
var MetricNames = []string{
	MetricCAC,
	MetricCostPerLead,
	MetricSpeedToLead,
	MetricLeadToAppointment,
	MetricClosingRate,
	MetricOverallConversion,
	MetricFollowupCompletion,
}

// MetricDef describes one tracked metric for the comparison view.
type MetricDef struct {
	Name          string
	Label         string
	LowerIsBetter bool
}

// MetricDefs holds the comparison table: cost metrics improve downward,
// rate metrics improve upward.
var MetricDefs = []MetricDef{
	{Name: MetricCostPerLead, Label: "Cost Per Lead", LowerIsBetter: true},
	{Name: MetricCAC, Label: "Customer Acquisition Cost (CAC)", LowerIsBetter: true},
	{Name: MetricLeadToAppointment, Label: "Lead-to-Appointment Rate", LowerIsBetter: false},
	{Name: MetricSpeedToLead, Label: "Speed-to-Lead", LowerIsBetter: true},
	{Name: MetricClosingRate, Label: "Close Rate", LowerIsBetter: false},
	{Name: MetricOverallConversion, Label: "Overall Conversion", LowerIsBetter: false},
	{Name: MetricFollowupCompletion, Label: "Follow-Up Completion", LowerIsBetter: false},
}

// WeeklySnapshot is one week's reported metric values.
type WeeklySnapshot struct {
	Metrics   map[string]string `json:"metrics"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// Profile is everything tracked for one client: the immutable baseline
// captured at onboarding completion plus weekly snapshots keyed by period.
type Profile struct {
	ClientID string                    `json:"clientId"`
	Baseline map[string]string         `json:"baseline"`
	Weekly   map[string]WeeklySnapshot `json:"weekly"`
}

// PeriodKey builds the weekly storage key, e.g. "2026-08_week3".
func PeriodKey(month string, week int) string {
	return month + "_week" + strconv.Itoa(week)
}

// Indicator summarizes the movement of a metric against its baseline.
type Indicator struct {
	// Change is the relative change in percent, rounded to one decimal.
	Change float64 `json:"change"`
	// Favorable is true only when the value moved strictly in the
	// improving direction; no movement is not an improvement.
	Favorable bool `json:"favorable"`
}

var leadingNumber = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)`)

// ParseMetric interprets a free-form metric entry. "$1,200" parses as
// currency 1200, "32%" as percent 32, "15 min" as plain 15. Entries with
// no leading number come back as KindUnparsed.
func ParseMetric(raw string) MetricValue {
	v := MetricValue{Kind: KindUnparsed, Raw: raw}

	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return v
	}

	switch {
	case strings.HasPrefix(trimmed, "$"):
		v.Kind = KindCurrency
	case strings.HasSuffix(trimmed, "%"):
		v.Kind = KindPercent
	default:
		v.Kind = KindPlain
	}

	cleaned := strings.NewReplacer("$", "", ",", "", "%", "").Replace(trimmed)
	cleaned = strings.TrimSpace(cleaned)

	match := leadingNumber.FindString(cleaned)
	if match == "" {
		v.Kind = KindUnparsed
		return v
	}

	n, err := strconv.ParseFloat(match, 64)
	if err != nil {
		v.Kind = KindUnparsed
		return v
	}

	v.Number = n
	return v
}

// FormatMetric renders a stored value for display, adding the currency or
// percent marker when the operator left it off.
func FormatMetric(value string, kind MetricKind) string {
	if value == "" {
		return "Not set"
	}

	switch kind {
	case KindCurrency:
		if !strings.HasPrefix(value, "$") {
			return "$" + value
		}
	case KindPercent:
		if !strings.HasSuffix(value, "%") {
			return value + "%"
		}
	}
	return value
}

// Improvement compares a current metric entry against its baseline.
// The second return is false when either value cannot be parsed or the
// baseline is zero; callers render no indicator in that case.
func Improvement(baseline, current string, lowerIsBetter bool) (Indicator, bool) {
	base := ParseMetric(baseline)
	curr := ParseMetric(current)
	if base.Kind == KindUnparsed || curr.Kind == KindUnparsed || base.Number == 0 {
		return Indicator{}, false
	}

	change := roundTenth((curr.Number - base.Number) / base.Number * 100)

	favorable := change > 0
	if lowerIsBetter {
		favorable = change < 0
	}

	return Indicator{Change: change, Favorable: favorable}, true
}

func roundTenth(x float64) float64 {
	return math.Round(x*10) / 10
}
