package generativeAI

import "strings"

// stripFences removes a surrounding markdown code fence, with or without a
// language tag.
func stripFences(response string) string {
	response = strings.TrimSpace(response)

	if strings.HasPrefix(response, "```json") {
		response = strings.TrimPrefix(response, "```json")
	} else if strings.HasPrefix(response, "```") {
		response = strings.TrimPrefix(response, "```")
	}
	response = strings.TrimSuffix(strings.TrimSpace(response), "```")

	return strings.TrimSpace(response)
}

func extractBetween(response, opening, closing string) string {
	first := strings.Index(response, opening)
	if first == -1 {
		return response
	}
	last := strings.LastIndex(response, closing)
	if last == -1 || last <= first {
		return response
	}
	return strings.TrimSpace(response[first : last+1])
}

// CleanJSONObject strips fences and any prose around the outermost {...}.
func CleanJSONObject(response string) string {
	return extractBetween(stripFences(response), "{", "}")
}

// CleanJSONArray strips fences and any prose around the outermost [...].
func CleanJSONArray(response string) string {
	return extractBetween(stripFences(response), "[", "]")
}
