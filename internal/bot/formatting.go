package bot

import (
	"strings"
	"unicode"
)

// splitText splits text into chunks of at most size characters (runes).
// Joining the chunks gives back text.
func splitText(text string, size int) []string {
	if size <= 0 || text == "" {
		return nil
	}

	runes := []rune(text)
	chunks := make([]string, 0, (len(runes)+size-1)/size)
	for i := 0; i < len(runes); i += size {
		end := i + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[i:end]))
	}
	return chunks
}

// batch groups items into slices of at most size
func batch(items []string, size int) [][]string {
	if size <= 0 {
		return nil
	}
	var batches [][]string
	for i := 0; i < len(items); i += size {
		end := i + size
		if end > len(items) {
			end = len(items)
		}
		batches = append(batches, items[i:end])
	}
	return batches
}

// cutField splits s at its first run of whitespace
func cutField(s string) (string, string) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	i := strings.IndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimSpace(s[i:])
}

// formatTemplate fills the {prefix} and {prefixes} placeholders of usage texts
func formatTemplate(tmpl, prefix string, prefixes []string) string {
	return strings.NewReplacer(
		"{prefix}", prefix,
		"{prefixes}", "`"+strings.Join(prefixes, "`, `")+"`",
	).Replace(tmpl)
}
