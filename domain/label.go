package domain

import "strings"

// Label is a board tag. The id is the display name and acts as a
// case-insensitive unique key.
type Label struct {
	ID    string `json:"id"`
	Color string `json:"color"`
}

// LabelPalette is the fixed color rotation for auto-created labels.
// Newly discovered labels take the next unused entry in round-robin order.
var LabelPalette = []string{
	"#0ea5e9", // sky
	"#d946ef", // fuchsia
	"#84cc16", // lime
	"#f59e0b", // amber
	"#8b5cf6", // violet
	"#f43f5e", // rose
	"#ef4444", // red
	"#14b8a6", // teal
	"#f97316", // orange
	"#6366f1", // indigo
	"#ec4899", // pink
	"#64748b", // slate
}

// PaletteColor returns the palette entry for the given rotation index.
func PaletteColor(index int) string {
	return LabelPalette[index%len(LabelPalette)]
}

// DefaultLabels are seeded on first run.
func DefaultLabels() []Label {
	return []Label{
		{ID: "frontend", Color: PaletteColor(0)},
		{ID: "design", Color: PaletteColor(1)},
		{ID: "backend", Color: PaletteColor(2)},
		{ID: "feature", Color: PaletteColor(3)},
		{ID: "devops", Color: PaletteColor(4)},
		{ID: "docs", Color: PaletteColor(5)},
		{ID: "bug", Color: PaletteColor(6)},
		{ID: "testing", Color: PaletteColor(7)},
	}
}

// HasLabel reports whether a label with the given id already exists,
// compared case-insensitively.
func HasLabel(labels []Label, id string) bool {
	for _, l := range labels {
		if strings.EqualFold(l.ID, id) {
			return true
		}
	}
	return false
}

// MergeLabels appends labels for any name in wanted that is not yet present
// (case-insensitive), coloring new entries from the palette continuing after
// the last assigned index. The input slice is not modified.
func MergeLabels(existing []Label, wanted []string) []Label {
	merged := append([]Label(nil), existing...)
	seen := make(map[string]struct{}, len(merged))
	for _, l := range merged {
		seen[strings.ToLower(l.ID)] = struct{}{}
	}

	colorIndex := len(merged)
	for _, id := range wanted {
		key := strings.ToLower(id)
		if _, ok := seen[key]; ok {
			continue
		}
		merged = append(merged, Label{ID: id, Color: PaletteColor(colorIndex)})
		seen[key] = struct{}{}
		colorIndex++
	}
	return merged
}
