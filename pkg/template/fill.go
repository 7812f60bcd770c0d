// Package template implements the {name} placeholder substitution scheme of
// spec §4.3, shared by command templates and regex templates alike.
package template

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Fill substitutes every literal occurrence of {key} in template with the
// stringified value of params[key], for every key in params. Unknown
// placeholders — a {name} with no matching key — are left intact; per spec
// §4.3 they will typically surface downstream as an execution or parse
// failure rather than here.
func Fill(tmpl string, params map[string]interface{}) string {
	result := tmpl
	for key, value := range params {
		placeholder := "{" + key + "}"
		if !strings.Contains(result, placeholder) {
			continue
		}
		result = strings.ReplaceAll(result, placeholder, Stringify(value))
	}
	return result
}

// Stringify renders a JSON value as the text substituted into a template,
// per spec §4.3's stringification rules: strings verbatim, numbers and
// booleans in natural textual form, objects/arrays as compact JSON, null as
// the literal string "null".
func Stringify(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		// Objects and arrays decoded from JSON always marshal cleanly.
		b, _ := json.Marshal(v)
		return string(b)
	}
}
