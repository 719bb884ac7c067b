package snippet

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// $1, ${1} and ${1:placeholder}; a bare dollar takes a single digit
	v1TabstopRe = regexp.MustCompile(`\$(\d)|\$\{(\d+)\}|\$\{(\d+):([^}]+)\}`)
	// v1 placeholders keep their "@" characters, everything else is escaped
	v1EscapeRe  = regexp.MustCompile(`\$\{\d+:[^}]+\}|@`)
	v1VisualRe  = regexp.MustCompile(`\$\{VISUAL\}`)
	v1CaptureRe = regexp.MustCompile(`\[\[(\d+)\]\]`)
)

// ConvertV1 rewrites a version 1 replacement into version 2 syntax. groups
// is the number of capture groups of a regex trigger, zero otherwise.
func ConvertV1(replacement string, groups int) string {
	out := convertTabstopsV1(v1VisualRe.ReplaceAllLiteralString(escapeV1(replacement), VisualPlaceholder))
	if groups == 0 {
		return out
	}
	return v1CaptureRe.ReplaceAllStringFunc(out, func(m string) string {
		n, err := strconv.Atoi(m[2 : len(m)-2])
		if err != nil || n >= groups {
			return m
		}
		return "@[" + strconv.Itoa(n) + "]"
	})
}

// ConvertV1Output converts the result of a version 1 replacement function.
func ConvertV1Output(s string) string {
	return convertTabstopsV1(escapeV1(s))
}

func escapeV1(s string) string {
	return v1EscapeRe.ReplaceAllStringFunc(s, func(m string) string {
		if m == "@" {
			return "@@"
		}
		return m
	})
}

func convertTabstopsV1(s string) string {
	return v1TabstopRe.ReplaceAllStringFunc(s, func(m string) string {
		sub := v1TabstopRe.FindStringSubmatch(m)
		switch {
		case sub[1] != "":
			return "@{" + sub[1] + "}"
		case sub[2] != "":
			return "@{" + sub[2] + "}"
		default:
			return "@{" + sub[3] + ":" + sub[4] + "}"
		}
	})
}

// StripV1 returns the visible text of a version 1 replacement.
func StripV1(s string) string {
	return v1TabstopRe.ReplaceAllStringFunc(s, func(m string) string {
		sub := v1TabstopRe.FindStringSubmatch(m)
		return sub[4]
	})
}

// HasV1Syntax reports whether s contains version 1 tabstops.
func HasV1Syntax(s string) bool {
	return v1TabstopRe.MatchString(s) || strings.Contains(s, "${VISUAL}")
}
