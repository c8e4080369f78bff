package bot

import (
	"regexp"
	"strings"
)

// invisibleLabel renders as nothing in Discord, so a markdown link with it shows only its preview
const invisibleLabel = "\u2060\ufe0e"

// markerPattern recovers the character ID from the marker every bot reply starts with
var markerPattern = regexp.MustCompile(`^\s*\[[^\]]*\]\(https://([A-Za-z0-9_-]+)\.local/\)`)

// characterMarker encodes a character ID as an invisible link at the start of a reply
func characterMarker(characterID string) string {
	return "[" + invisibleLabel + "](https://" + characterID + ".local/)"
}

// parseMarker returns the character ID encoded at the start of a bot reply
func parseMarker(content string) (string, bool) {
	match := markerPattern.FindStringSubmatch(content)
	if match == nil {
		return "", false
	}
	return match[1], true
}

// hiddenLink wraps url in an invisible markdown link
func hiddenLink(url string) string {
	return "[" + invisibleLabel + "](" + url + ")"
}

// linkMessage builds one reply: the character marker followed by the batch of links
func linkMessage(marker string, links []string) string {
	return strings.Join(append([]string{marker}, links...), " ")
}
