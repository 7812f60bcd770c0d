// Package parser implements the parse-rule tree interpreter of spec §4.5:
// it turns captured stdout into a typed JSON value by walking the
// ParseRules a provider's action declares.
package parser

import (
	"encoding/json"

	"github.com/cpi-engine/cpi/pkg/cpierrors"
	"github.com/cpi-engine/cpi/pkg/provider"
)

// Parse evaluates rules against text, filling any {name} placeholders in
// its patterns' regexes from params first.
func Parse(text string, rules provider.ParseRules, params map[string]interface{}) (interface{}, error) {
	switch rules.Type {
	case provider.ParseRuleObject:
		return parseObject(text, rules.Patterns, params)

	case provider.ParseRuleArray:
		return parseArray(text, rules.Separator, rules.Patterns, params)

	case provider.ParseRuleProperties:
		return parseProperties(text, rules, params)

	default:
		return nil, &cpierrors.ParseError{Reason: "unknown parse_rules type: " + string(rules.Type)}
	}
}

func parseObject(text string, patterns map[string]provider.Pattern, params map[string]interface{}) (interface{}, error) {
	result := make(map[string]interface{}, len(patterns))
	for key, pattern := range patterns {
		value, matched, err := applyPattern(text, pattern, params)
		if err != nil {
			return nil, err
		}
		if matched {
			result[key] = value
		}
	}
	return result, nil
}

func parseArray(text, separator string, patterns map[string]provider.Pattern, params map[string]interface{}) (interface{}, error) {
	sections := splitNonEmpty(text, separator)
	result := make([]interface{}, 0, len(sections))

	for _, section := range sections {
		item := make(map[string]interface{}, len(patterns))
		for key, pattern := range patterns {
			value, matched, err := applyPattern(section, pattern, params)
			if err != nil {
				return nil, err
			}
			if matched {
				item[key] = value
			}
		}
		if len(item) > 0 {
			result = append(result, item)
		}
	}
	return result, nil
}

func parseProperties(text string, rules provider.ParseRules, params map[string]interface{}) (interface{}, error) {
	result := make(map[string]interface{}, len(rules.Patterns))

	for key, pattern := range rules.Patterns {
		value, matched, err := applyPattern(text, pattern, params)
		if err != nil {
			return nil, err
		}
		if matched {
			result[key] = value
		}
	}

	for key, arrayPattern := range rules.ArrayPatterns {
		if rules.ArrayKey != "" && rules.ArrayKey != key {
			continue
		}
		items, err := parseArrayPattern(text, arrayPattern)
		if err != nil {
			return nil, err
		}
		if len(items) > 0 {
			result[key] = items
		}
	}

	for key, pattern := range rules.RelatedPatterns {
		if pattern.MatchValue != "" {
			baseValue, ok := result[pattern.MatchValue]
			if !ok {
				continue
			}
			value, matched, err := applyRelatedPattern(text, pattern, baseValue, params)
			if err != nil {
				return nil, err
			}
			if matched {
				result[key] = value
			}
			continue
		}
		value, matched, err := applyPattern(text, pattern, params)
		if err != nil {
			return nil, err
		}
		if matched {
			result[key] = value
		}
	}

	return result, nil
}

// MarshalCanonical renders a parse result as compact, sorted-key JSON so
// that parsing the same stdout twice produces byte-identical output (spec
// §8 round-trip property).
func MarshalCanonical(v interface{}) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, &cpierrors.SerdeError{Op: "marshal parse result", Err: err}
	}
	return b, nil
}

func splitNonEmpty(text, separator string) []string {
	var out []string
	for _, part := range splitLiteral(text, separator) {
		if isBlank(part) {
			continue
		}
		out = append(out, part)
	}
	return out
}
