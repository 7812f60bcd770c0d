package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/cpi-engine/cpi/pkg/cpierrors"
	"github.com/cpi-engine/cpi/pkg/provider"
)

// parseArrayPattern reconstructs repeated record blocks per spec §4.5: each
// line is matched against ^{prefix}({index}) and grouped by its captured
// index; each group then yields one object by applying every sub-pattern
// line-by-line within that group (first match wins).
//
// Sub-patterns are applied with no parameter map, matching the original
// CPI engine's array-pattern evaluation, which never re-fills {name}
// placeholders inside an object sub-pattern's regex.
func parseArrayPattern(text string, pattern provider.ArrayPattern) ([]interface{}, error) {
	prefixRe, err := regexpCompilePrefixIndex(pattern.Prefix, pattern.Index)
	if err != nil {
		return nil, err
	}

	order := make([]string, 0)
	grouped := make(map[string][]string)
	for _, line := range strings.Split(text, "\n") {
		submatches := prefixRe.FindStringSubmatch(line)
		if submatches == nil || len(submatches) < 2 {
			continue
		}
		index := submatches[1]
		if _, seen := grouped[index]; !seen {
			order = append(order, index)
		}
		grouped[index] = append(grouped[index], line)
	}

	// Groups are emitted in first-seen order so output is deterministic
	// across runs against the same stdout (spec §8 round-trip property).
	items := make([]interface{}, 0, len(order))
	for _, index := range order {
		lines := grouped[index]
		item := make(map[string]interface{}, len(pattern.Object))
		for key, sub := range pattern.Object {
			value, matched, err := matchAcrossLines(lines, sub)
			if err != nil {
				return nil, err
			}
			if matched {
				item[key] = value
			}
		}
		if len(item) > 0 {
			items = append(items, item)
		}
	}
	return items, nil
}

func regexpCompilePrefixIndex(prefix, index string) (*regexp.Regexp, error) {
	filled := fmt.Sprintf("^%s(%s)", prefix, index)
	re, err := regexp.Compile(filled)
	if err != nil {
		return nil, &cpierrors.ParseError{Reason: fmt.Sprintf("Invalid regex: %v", err)}
	}
	return re, nil
}
