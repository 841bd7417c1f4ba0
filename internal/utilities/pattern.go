package utilities

import "strings"

// SplitList flattens comma separated values, trimming blanks and dropping empties.
func SplitList(values ...string) []string {
	out := []string{}
	for _, v := range values {
		for _, item := range strings.Split(v, ",") {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
	}
	return out
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContainsPattern builds an ILIKE pattern matching s anywhere, with wildcards in s taken literally.
func ContainsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// ExactPattern builds an ILIKE pattern matching s exactly, ignoring case.
func ExactPattern(s string) string {
	return likeEscaper.Replace(s)
}
