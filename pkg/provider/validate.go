package provider

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/cpi-engine/cpi/pkg/cpierrors"
)

// scalarFields mirrors the per-action scalar shape the go-playground
// validator checks once a candidate document decodes cleanly into typed Go
// structs. It is a lighter second pass layered under the hand-written
// structural walk below, the way the teacher layers struct-tag validation
// under its own CUE schemas (pkg/config/schemas.go).
type scalarFields struct {
	Command string `validate:"required"`
}

var structValidator = validator.New()

// Validate statically checks a candidate provider document against the
// schema of spec §6, in the order spec §4.1 specifies: root shape, then
// name/type, then actions (recursively for pre_exec/post_exec), then
// parse_rules, then default_settings. The check is structural only —
// regexes are never compiled here and command templates are never
// parsed, matching spec §4.1's closing note.
//
// raw is the provider document as decoded into a map, so that field
// presence/absence and wrong-type can be distinguished from a Go zero
// value (an empty string for a present-but-blank "name" is not the same
// defect as a missing "name").
func Validate(raw map[string]interface{}) error {
	if raw == nil {
		return &cpierrors.InvalidCpiFormat{Reason: "Root element must be an object"}
	}

	for _, field := range []string{"name", "type", "actions"} {
		if _, ok := raw[field]; !ok {
			return &cpierrors.InvalidCpiFormat{Reason: "Missing required field: " + field}
		}
	}

	if _, ok := raw["name"].(string); !ok {
		return &cpierrors.InvalidCpiFormat{Reason: "'name' must be a string"}
	}
	if _, ok := raw["type"].(string); !ok {
		return &cpierrors.InvalidCpiFormat{Reason: "'type' must be a string"}
	}

	actionsRaw, ok := raw["actions"].(map[string]interface{})
	if !ok {
		return &cpierrors.InvalidCpiFormat{Reason: "'actions' must be an object"}
	}
	for name, def := range actionsRaw {
		if err := validateAction(name, def); err != nil {
			return err
		}
	}

	if ds, present := raw["default_settings"]; present {
		if _, ok := ds.(map[string]interface{}); !ok {
			return &cpierrors.InvalidCpiFormat{Reason: "'default_settings' must be an object"}
		}
	}

	return nil
}

func validateAction(name string, def interface{}) error {
	obj, ok := def.(map[string]interface{})
	if !ok {
		return &cpierrors.InvalidCpiFormat{Reason: fmt.Sprintf("Action '%s' must be an object", name)}
	}

	command, ok := obj["command"].(string)
	if !ok {
		return &cpierrors.InvalidCpiFormat{Reason: fmt.Sprintf("Action '%s' must have a string 'command' field", name)}
	}
	if err := structValidator.Struct(&scalarFields{Command: command}); err != nil {
		return &cpierrors.InvalidCpiFormat{Reason: fmt.Sprintf("Action '%s' command field invalid: %v", name, err)}
	}

	parseRules, ok := obj["parse_rules"].(map[string]interface{})
	if !ok {
		return &cpierrors.InvalidCpiFormat{Reason: fmt.Sprintf("Action '%s' must have an object 'parse_rules' field", name)}
	}
	if err := validateParseRules(name, parseRules); err != nil {
		return err
	}

	if paramsRaw, present := obj["params"]; present {
		params, ok := paramsRaw.([]interface{})
		if !ok {
			return &cpierrors.InvalidCpiFormat{Reason: fmt.Sprintf("Action '%s' has 'params' that is not an array", name)}
		}
		for i, p := range params {
			if _, ok := p.(string); !ok {
				return &cpierrors.InvalidCpiFormat{Reason: fmt.Sprintf("Action '%s' param at index %d is not a string", name, i)}
			}
		}
	}

	if preExec, present := obj["pre_exec"]; present {
		if err := validateSubActions(name, "pre_exec", preExec); err != nil {
			return err
		}
	}
	if postExec, present := obj["post_exec"]; present {
		if err := validateSubActions(name, "post_exec", postExec); err != nil {
			return err
		}
	}

	return nil
}

func validateSubActions(actionName, field string, raw interface{}) error {
	list, ok := raw.([]interface{})
	if !ok {
		return &cpierrors.InvalidCpiFormat{Reason: fmt.Sprintf("Action '%s' has '%s' that is not an array", actionName, field)}
	}
	for i, sub := range list {
		if _, ok := sub.(map[string]interface{}); !ok {
			return &cpierrors.InvalidCpiFormat{Reason: fmt.Sprintf("Action '%s' '%s' at index %d is not an object", actionName, field, i)}
		}
		if err := validateAction(fmt.Sprintf("%s[%d]", field, i), sub); err != nil {
			return err
		}
	}
	return nil
}

func validateParseRules(actionName string, raw map[string]interface{}) error {
	typeStr, ok := raw["type"].(string)
	if !ok {
		return &cpierrors.InvalidCpiFormat{Reason: fmt.Sprintf("Action '%s' parse_rules must have a string 'type' field", actionName)}
	}

	switch ParseRuleType(typeStr) {
	case ParseRuleObject:
		patterns, ok := raw["patterns"].(map[string]interface{})
		if !ok {
			return &cpierrors.InvalidCpiFormat{Reason: fmt.Sprintf("Action '%s' object parse_rules must have an object 'patterns' field", actionName)}
		}
		return validatePatterns(actionName, patterns)

	case ParseRuleArray:
		if _, ok := raw["separator"].(string); !ok {
			return &cpierrors.InvalidCpiFormat{Reason: fmt.Sprintf("Action '%s' array parse_rules must have a string 'separator' field", actionName)}
		}
		patterns, ok := raw["patterns"].(map[string]interface{})
		if !ok {
			return &cpierrors.InvalidCpiFormat{Reason: fmt.Sprintf("Action '%s' array parse_rules must have an object 'patterns' field", actionName)}
		}
		return validatePatterns(actionName, patterns)

	case ParseRuleProperties:
		patterns, ok := raw["patterns"].(map[string]interface{})
		if !ok {
			return &cpierrors.InvalidCpiFormat{Reason: fmt.Sprintf("Action '%s' properties parse_rules must have an object 'patterns' field", actionName)}
		}
		if err := validatePatterns(actionName, patterns); err != nil {
			return err
		}

		if arrayPatternsRaw, present := raw["array_patterns"]; present {
			arrayPatterns, ok := arrayPatternsRaw.(map[string]interface{})
			if !ok {
				return &cpierrors.InvalidCpiFormat{Reason: fmt.Sprintf("Action '%s' 'array_patterns' must be an object", actionName)}
			}
			for key, ap := range arrayPatterns {
				apObj, ok := ap.(map[string]interface{})
				if !ok {
					return &cpierrors.InvalidCpiFormat{Reason: fmt.Sprintf("Action '%s' array_patterns.%s must be an object", actionName, key)}
				}
				if err := validateArrayPattern(actionName, key, apObj); err != nil {
					return err
				}
			}
		}

		if arrayKey, present := raw["array_key"]; present {
			if _, ok := arrayKey.(string); !ok {
				return &cpierrors.InvalidCpiFormat{Reason: fmt.Sprintf("Action '%s' 'array_key' must be a string", actionName)}
			}
		}

		if relatedRaw, present := raw["related_patterns"]; present {
			related, ok := relatedRaw.(map[string]interface{})
			if !ok {
				return &cpierrors.InvalidCpiFormat{Reason: fmt.Sprintf("Action '%s' 'related_patterns' must be an object", actionName)}
			}
			if err := validatePatterns(actionName, related); err != nil {
				return err
			}
		}

		return nil

	default:
		return &cpierrors.InvalidCpiFormat{Reason: fmt.Sprintf("Action '%s' has unknown parse_rules.type '%s'", actionName, typeStr)}
	}
}

func validatePatterns(actionName string, patterns map[string]interface{}) error {
	for key, p := range patterns {
		obj, ok := p.(map[string]interface{})
		if !ok {
			return &cpierrors.InvalidCpiFormat{Reason: fmt.Sprintf("Action '%s' pattern '%s' must be an object", actionName, key)}
		}
		if err := validatePattern(actionName, key, obj); err != nil {
			return err
		}
	}
	return nil
}

func validatePattern(actionName, key string, obj map[string]interface{}) error {
	if _, ok := obj["regex"].(string); !ok {
		return &cpierrors.InvalidCpiFormat{Reason: fmt.Sprintf("Action '%s' pattern '%s' must have a string 'regex' field", actionName, key)}
	}
	if groupRaw, present := obj["group"]; present {
		if _, ok := groupRaw.(float64); !ok {
			return &cpierrors.InvalidCpiFormat{Reason: fmt.Sprintf("Action '%s' pattern '%s' 'group' must be a number", actionName, key)}
		}
	}
	if transformRaw, present := obj["transform"]; present {
		t, ok := transformRaw.(string)
		if !ok {
			return &cpierrors.InvalidCpiFormat{Reason: fmt.Sprintf("Action '%s' pattern '%s' 'transform' must be a string", actionName, key)}
		}
		switch Transform(t) {
		case TransformBoolean, TransformNumber:
		default:
			return &cpierrors.InvalidCpiFormat{Reason: fmt.Sprintf("Action '%s' pattern '%s' has unknown transform '%s'", actionName, key, t)}
		}
	}
	if optionalRaw, present := obj["optional"]; present {
		if _, ok := optionalRaw.(bool); !ok {
			return &cpierrors.InvalidCpiFormat{Reason: fmt.Sprintf("Action '%s' pattern '%s' 'optional' must be a boolean", actionName, key)}
		}
	}
	if matchValueRaw, present := obj["match_value"]; present {
		if _, ok := matchValueRaw.(string); !ok {
			return &cpierrors.InvalidCpiFormat{Reason: fmt.Sprintf("Action '%s' pattern '%s' 'match_value' must be a string", actionName, key)}
		}
	}
	return nil
}

func validateArrayPattern(actionName, key string, obj map[string]interface{}) error {
	if _, ok := obj["prefix"].(string); !ok {
		return &cpierrors.InvalidCpiFormat{Reason: fmt.Sprintf("Action '%s' array_patterns.%s must have a string 'prefix' field", actionName, key)}
	}
	if _, ok := obj["index"].(string); !ok {
		return &cpierrors.InvalidCpiFormat{Reason: fmt.Sprintf("Action '%s' array_patterns.%s must have a string 'index' field", actionName, key)}
	}
	patterns, ok := obj["object"].(map[string]interface{})
	if !ok {
		return &cpierrors.InvalidCpiFormat{Reason: fmt.Sprintf("Action '%s' array_patterns.%s must have an object 'object' field", actionName, key)}
	}
	return validatePatterns(actionName, patterns)
}

// DecodeAndValidate parses raw JSON bytes into a map for Validate, then
// decodes the same bytes into a typed Provider once validation succeeds.
// Keeping decode-for-validation and decode-for-use separate mirrors spec
// §4.1's point that validation precedes, and is distinct from, parsing the
// document into a usable Provider.
func DecodeAndValidate(data []byte) (*Provider, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &cpierrors.SerdeError{Op: "decode provider document", Err: err}
	}
	if err := Validate(raw); err != nil {
		return nil, err
	}

	var p Provider
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, &cpierrors.SerdeError{Op: "decode provider", Err: err}
	}
	return &p, nil
}
