package stage

import "strings"

// extractJSON pulls the first top-level JSON object out of raw model output,
// tolerating markdown fences and prose around it.
func extractJSON(raw string) (string, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end < start {
		return "", false
	}
	return raw[start : end+1], true
}
