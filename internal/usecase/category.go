package usecase

import "strings"

// appCategories groups known applications into coarse buckets used when a
// viewer is only entitled to a generalized application identity. Matching
// is case-insensitive substring, mirroring common app display names.
var appCategories = map[string][]string{
	"browser":       {"chrome", "firefox", "safari", "edge", "opera"},
	"editor":        {"code", "visual studio", "sublime", "atom", "intellij", "goland"},
	"communication": {"slack", "teams", "zoom", "discord", "mail"},
	"productivity":  {"word", "excel", "powerpoint", "notion", "numbers", "keynote"},
}

// categoryOrder keeps lookups deterministic regardless of map iteration.
var categoryOrder = []string{"browser", "editor", "communication", "productivity"}

// CategorizeApp returns the generalized category for an application name.
// Unmapped applications collapse to "application"; empty input stays empty.
func CategorizeApp(appName string) string {
	if appName == "" {
		return ""
	}
	lower := strings.ToLower(appName)
	for _, category := range categoryOrder {
		for _, marker := range appCategories[category] {
			if strings.Contains(lower, marker) {
				return category
			}
		}
	}
	return "application"
}
