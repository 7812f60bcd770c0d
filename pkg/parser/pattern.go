package parser

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/cpi-engine/cpi/pkg/cpierrors"
	"github.com/cpi-engine/cpi/pkg/provider"
	"github.com/cpi-engine/cpi/pkg/template"
)

// applyPattern fills and compiles pattern.Regex, then matches it against
// text: first line-by-line (first match wins), then against the whole text
// as one multiline blob, per spec §4.5. matched is false only when the
// pattern is optional and missed; a non-optional miss is an error.
func applyPattern(text string, pattern provider.Pattern, params map[string]interface{}) (interface{}, bool, error) {
	re, err := compilePattern(pattern, params)
	if err != nil {
		return nil, false, err
	}

	if captured, ok := matchLineByLine(re, text, pattern.GroupIndex()); ok {
		value, err := transform(captured, pattern.Transform)
		return value, true, err
	}

	if captured, ok := matchWhole(re, text, pattern.GroupIndex()); ok {
		value, err := transform(captured, pattern.Transform)
		return value, true, err
	}

	if pattern.Optional {
		return nil, false, nil
	}
	return nil, false, &cpierrors.ParseError{Reason: "Pattern not matched: " + pattern.Regex}
}

// applyRelatedPattern implements the related_patterns match_value semantics
// of spec §4.5: if the pattern's captured string (matched line-by-line,
// then whole-text) equals baseValue's string form, emit a boolean true;
// otherwise emit the transformed captured value.
func applyRelatedPattern(text string, pattern provider.Pattern, baseValue interface{}, params map[string]interface{}) (interface{}, bool, error) {
	re, err := compilePattern(pattern, params)
	if err != nil {
		return nil, false, err
	}

	captured, ok := matchLineByLine(re, text, pattern.GroupIndex())
	if !ok {
		captured, ok = matchWhole(re, text, pattern.GroupIndex())
	}
	if !ok {
		if pattern.Optional {
			return nil, false, nil
		}
		return nil, false, &cpierrors.ParseError{Reason: "Pattern not matched: " + pattern.Regex}
	}

	if baseStr, ok := baseValue.(string); ok && captured == baseStr {
		return true, true, nil
	}

	value, err := transform(captured, pattern.Transform)
	return value, true, err
}

// matchAcrossLines implements the ArrayPattern sub-pattern rule of spec
// §4.5: try every line in the group in order, taking the first line where
// the regex matches. The regex is compiled without a parameter map, so
// {name} placeholders in it stay literal. Unlike applyPattern, a miss on any
// single line is not itself an error — only exhausting every line without a
// match is subject to the pattern's optional/error semantics.
func matchAcrossLines(lines []string, pattern provider.Pattern) (interface{}, bool, error) {
	re, err := compilePattern(pattern, nil)
	if err != nil {
		return nil, false, err
	}

	for _, line := range lines {
		if captured, ok := matchGroup(re, line, pattern.GroupIndex()); ok {
			value, err := transform(captured, pattern.Transform)
			if err != nil {
				return nil, false, err
			}
			return value, true, nil
		}
	}

	if pattern.Optional {
		return nil, false, nil
	}
	return nil, false, &cpierrors.ParseError{Reason: "Pattern not matched: " + pattern.Regex}
}

func compilePattern(pattern provider.Pattern, params map[string]interface{}) (*regexp.Regexp, error) {
	filled := template.Fill(pattern.Regex, params)
	re, err := regexp.Compile(filled)
	if err != nil {
		return nil, &cpierrors.ParseError{Reason: fmt.Sprintf("Invalid regex '%s': %v", filled, err)}
	}
	return re, nil
}

func matchLineByLine(re *regexp.Regexp, text string, group int) (string, bool) {
	for _, line := range strings.Split(text, "\n") {
		if captured, ok := matchGroup(re, line, group); ok {
			return captured, true
		}
	}
	return "", false
}

func matchWhole(re *regexp.Regexp, text string, group int) (string, bool) {
	return matchGroup(re, text, group)
}

func matchGroup(re *regexp.Regexp, text string, group int) (string, bool) {
	submatches := re.FindStringSubmatch(text)
	if submatches == nil || group >= len(submatches) {
		return "", false
	}
	return submatches[group], true
}

// transform applies the boolean/number conversion of spec §4.5, or returns
// the raw captured string when no transform is set.
func transform(captured string, t provider.Transform) (interface{}, error) {
	switch t {
	case "":
		return captured, nil
	case provider.TransformBoolean:
		return captured != "", nil
	case provider.TransformNumber:
		n, err := strconv.ParseFloat(captured, 64)
		if err != nil {
			return nil, &cpierrors.ParseError{Reason: fmt.Sprintf("Failed to parse number '%s': %v", captured, err)}
		}
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return nil, &cpierrors.ParseError{Reason: fmt.Sprintf("Not a finite number: '%s'", captured)}
		}
		return n, nil
	default:
		return nil, &cpierrors.ParseError{Reason: "Unknown transform type: " + string(t)}
	}
}

func splitLiteral(text, separator string) []string {
	return strings.Split(text, separator)
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
