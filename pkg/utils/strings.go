package utils

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonAlnum     = regexp.MustCompile(`[^A-Za-z0-9]`)
	upperRun     = regexp.MustCompile(`(.)([A-Z][a-z]+)`)
	lowerToUpper = regexp.MustCompile(`([a-z0-9])([A-Z])`)
	underscores  = regexp.MustCompile(`_+`)
)

// RemoveAccents removes accents from a string, converting accented characters to their base forms
func RemoveAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// ToSnakeCase converts an arbitrary API-given name into a valid snake_case
// identifier. It is total and idempotent, and is the single source of truth
// for module names, function names, and local variable names:
//
//	"petId"       -> "pet_id"
//	"XMLParser"   -> "xml_parser"
//	"find-by-tag" -> "find_by_tag"
func ToSnakeCase(s string) string {
	s = nonAlnum.ReplaceAllString(s, "_")
	s = upperRun.ReplaceAllString(s, "${1}_${2}")
	s = lowerToUpper.ReplaceAllString(s, "${1}_${2}")
	s = underscores.ReplaceAllString(strings.ToLower(s), "_")
	return strings.Trim(s, "_")
}

// SplitWords splits a string into words, handling camelCase, PascalCase, snake_case, and kebab-case
func SplitWords(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	s = RemoveAccents(s)
	s = lowerToUpper.ReplaceAllString(s, "${1} ${2}")

	parts := regexp.MustCompile(`[^A-Za-z0-9]+`).Split(s, -1)
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// ToPascalCase converts a string to PascalCase
func ToPascalCase(s string) string {
	parts := SplitWords(s)
	if len(parts) == 0 {
		return ""
	}

	b := strings.Builder{}
	for _, p := range parts {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		if len(p) > 1 {
			b.WriteString(strings.ToLower(p[1:]))
		}
	}
	return b.String()
}
