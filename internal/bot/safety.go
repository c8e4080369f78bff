package bot

import "regexp"

// childAgePattern matches a stated age of 0-11 in ASCII or full-width digits followed by
// an age marker. The number must not continue a longer one, so "12歳" does not match as "2歳",
// while "わたしは9歳" does.
var childAgePattern = regexp.MustCompile(
	`(?i)(?:^|[^\p{N}])(?:1[01]|１[０１]|[0-9０-９])\s*(?:歳|さい|(?:yo|years old)(?:$|[^\p{L}\p{N}_]))`,
)

// mentionsChildAge reports whether text states an age under 12
func mentionsChildAge(text string) bool {
	return childAgePattern.MatchString(text)
}
