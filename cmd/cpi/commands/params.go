package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cpi-engine/cpi/pkg/provider"
)

// parseParamFlags turns a list of "key=value" strings into a ParamMap.
// value is parsed as JSON when possible (so "3" becomes a number and "true"
// a boolean), falling back to the raw string otherwise — this mirrors how a
// provider's default_settings values arrive already JSON-typed from disk.
func parseParamFlags(raw []string) (provider.ParamMap, error) {
	params := make(provider.ParamMap, len(raw))
	for _, kv := range raw {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid --param %q, expected key=value", kv)
		}
		key, value := parts[0], parts[1]

		var decoded interface{}
		if err := json.Unmarshal([]byte(value), &decoded); err != nil {
			decoded = value
		}
		params[key] = decoded
	}
	return params, nil
}
