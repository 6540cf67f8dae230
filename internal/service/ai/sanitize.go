package ai

import "strings"

var markupStripper = strings.NewReplacer("*", "", "#", "", "$", "")

// Sanitize removes the markup characters * # $ and nothing else.
func Sanitize(s string) string {
	return markupStripper.Replace(s)
}
