// Package provider defines the CPI provider data model: the JSON document
// shape described in spec §3/§6, and the structural validator of spec §4.1.
package provider


// ParamMap is the parameter map of spec §3: string keys to arbitrary JSON
// values, formed by overlaying caller-supplied parameters on top of a
// provider's default_settings.
type ParamMap map[string]interface{}

// Merge returns a new ParamMap with overrides applied on top of the
// receiver. The receiver is treated as the lower-precedence layer
// (default_settings); overrides wins on key collision, per spec §3
// resolution order and §8 property 6 (overridden, not merged, per key).
func (p ParamMap) Merge(overrides ParamMap) ParamMap {
	out := make(ParamMap, len(p)+len(overrides))
	for k, v := range p {
		out[k] = v
	}
	for k, v := range overrides {
		out[k] = v
	}
	return out
}

// Provider is the root entity loaded from one JSON document (spec §3).
type Provider struct {
	Name            string               `json:"name"`
	Type            string               `json:"type"`
	Actions         map[string]ActionDef `json:"actions"`
	DefaultSettings ParamMap             `json:"default_settings,omitempty"`
}

// ActionDef is one invocable operation (spec §3).
type ActionDef struct {
	Command     string      `json:"command"`
	Params      []string    `json:"params,omitempty"`
	PreExec     []ActionDef `json:"pre_exec,omitempty"`
	PostExec    []ActionDef `json:"post_exec,omitempty"`
	ParseRules  ParseRules  `json:"parse_rules"`
}

// ParseRuleType discriminates the ParseRules sum type (spec §3 table).
type ParseRuleType string

const (
	ParseRuleObject     ParseRuleType = "object"
	ParseRuleArray      ParseRuleType = "array"
	ParseRuleProperties ParseRuleType = "properties"
)

// ParseRules is the tagged sum described in spec §3. Rather than model it as
// a Go interface with three implementations (which would force type switches
// at every call site and complicate JSON round-tripping), it is kept as one
// struct with a Type discriminator and the union of all variants' fields,
// mirroring how the wire format itself is shaped (spec §6). Only the fields
// relevant to Type are populated after decoding; Validate (§4.1) enforces
// that the right subset is present.
type ParseRules struct {
	Type ParseRuleType `json:"type"`

	// object & array & properties
	Patterns map[string]Pattern `json:"patterns,omitempty"`

	// array only
	Separator string `json:"separator,omitempty"`

	// properties only
	ArrayPatterns  map[string]ArrayPattern `json:"array_patterns,omitempty"`
	ArrayKey       string                  `json:"array_key,omitempty"`
	RelatedPatterns map[string]Pattern     `json:"related_patterns,omitempty"`
}

// Transform names the optional post-capture conversion applied to a
// Pattern's matched string (spec §4.5).
type Transform string

const (
	TransformBoolean Transform = "boolean"
	TransformNumber  Transform = "number"
)

// Pattern is one extraction rule (spec §3).
type Pattern struct {
	Regex      string    `json:"regex"`
	Group      *int      `json:"group,omitempty"`
	Transform  Transform `json:"transform,omitempty"`
	Optional   bool      `json:"optional,omitempty"`
	MatchValue string    `json:"match_value,omitempty"`
}

// GroupIndex returns the capture group to extract, defaulting to 0 (spec
// §3: "optional capture index (default 0)").
func (p Pattern) GroupIndex() int {
	if p.Group == nil {
		return 0
	}
	return *p.Group
}

// ArrayPattern reconstructs repeated record blocks from grouped lines (spec
// §3/§4.5).
type ArrayPattern struct {
	Prefix string             `json:"prefix"`
	Index  string             `json:"index"`
	Object map[string]Pattern `json:"object"`
}

