package extract

import (
	"encoding/json"
	"fmt"
	"strings"
)

// fallbackSummaryLimit caps the transcript prefix used when the reply could
// not be parsed.
const fallbackSummaryLimit = 500

// stripFences removes leading/trailing code-fence markers and a leading
// case-insensitive "json" language tag after an opening fence.
func stripFences(s string) string {
	out := strings.TrimSpace(s)
	if !strings.HasPrefix(out, "```") {
		return out
	}
	out = strings.TrimSpace(strings.Trim(out, "`"))
	if len(out) >= 4 && strings.EqualFold(out[:4], "json") {
		out = strings.TrimSpace(out[4:])
	}
	return out
}

// parseObject attempts strict JSON-object parsing, then a rescue over the
// substring between the first '{' and the last '}'.
func parseObject(s string) (map[string]any, bool) {
	if obj, ok := tryUnmarshal(s); ok {
		return obj, true
	}
	rescued, ok := rescueBraces(s)
	if !ok {
		return nil, false
	}
	return tryUnmarshal(rescued)
}

func tryUnmarshal(s string) (map[string]any, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return nil, false
	}
	return obj, obj != nil
}

func rescueBraces(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

// fallbackResult is the guaranteed terminal of the repair pipeline: a
// synthetic record whose summary is the transcript prefix and whose response
// carries the raw cleaned reply so the operator can see what the model said.
func fallbackResult(transcript, cleaned string) Result {
	return Result{
		Priority: "Medium",
		Summary:  runePrefix(transcript, fallbackSummaryLimit),
		Response: cleaned,
		Degraded: true,
	}
}

func runePrefix(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// NormalizePriority coerces a free-form priority value onto the closed set
// {Low, Medium, High}; anything unrecognized becomes Medium. Matching is
// case-insensitive and whitespace-tolerant.
func NormalizePriority(v string) string {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "low":
		return "Low"
	case "high":
		return "High"
	default:
		return "Medium"
	}
}

// asString flattens a parsed JSON value; absent or null keys become the
// empty-string placeholder.
func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%v", t)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", t))
	}
}
