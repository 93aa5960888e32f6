package wizard

import (
	"strings"

	"energyplus/onboarding-portal/internal/onboarding"
)

// Snapshot is a point-in-time capture of the form's widget values,
// decoupled from any particular frontend. Values holds single and
// multi-select fields, Rows holds repeating table rows keyed by column.
type Snapshot struct {
	Values map[string][]string            `json:"values"`
	Rows   map[string][]map[string]string `json:"rows"`
}

// Collect builds a section patch from a snapshot, following the form
// collection rules: single fields take their current value and contribute
// nothing when the control is absent; multi and row fields are rebuilt
// from scratch on every pass, so deselecting clears them.
func Collect(def StepDefinition, snap Snapshot) onboarding.Section {
	patch := onboarding.Section{}

	for _, field := range def.Fields {
		switch field.Kind {
		case Single:
			values, ok := snap.Values[field.Name]
			if !ok {
				continue
			}
			if len(values) == 0 {
				patch[field.Name] = ""
			} else {
				patch[field.Name] = values[0]
			}

		case Multi:
			selected := make([]any, 0, len(snap.Values[field.Name]))
			for _, v := range snap.Values[field.Name] {
				selected = append(selected, v)
			}
			patch[field.Name] = selected

		case Rows:
			rows := make([]any, 0, len(snap.Rows[field.Name]))
			for _, row := range snap.Rows[field.Name] {
				if emptyRow(row) {
					continue
				}
				entry := map[string]any{}
				for _, col := range field.Columns {
					entry[col] = row[col]
				}
				rows = append(rows, entry)
			}
			patch[field.Name] = rows
		}
	}

	return patch
}

func emptyRow(row map[string]string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// MissingRequired returns the required fields of a step that have no
// non-blank value in the snapshot.
func MissingRequired(def StepDefinition, snap Snapshot) []string {
	var missing []string
	for _, field := range def.Fields {
		if !field.Required {
			continue
		}
		values := snap.Values[field.Name]
		if len(values) == 0 || strings.TrimSpace(values[0]) == "" {
			missing = append(missing, field.Name)
		}
	}
	return missing
}
