package provider

import "testing"

const validDoc = `{
  "name": "vb",
  "type": "virtualbox",
  "actions": {
    "has_vm": {
      "command": "VBoxManage list vms",
      "params": ["vm_id"],
      "parse_rules": {
        "type": "object",
        "patterns": {
          "exists": { "regex": "\"{vm_id}\"", "transform": "boolean", "optional": true }
        }
      }
    }
  },
  "default_settings": { "vm_id": "default" }
}`

func TestDecodeAndValidate_ValidDocumentRoundTrips(t *testing.T) {
	p, err := DecodeAndValidate([]byte(validDoc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name != "vb" || p.Type != "virtualbox" {
		t.Errorf("got name=%q type=%q", p.Name, p.Type)
	}
	action, ok := p.Actions["has_vm"]
	if !ok {
		t.Fatal("expected has_vm action")
	}
	if action.Command != "VBoxManage list vms" {
		t.Errorf("command = %q", action.Command)
	}
	if p.DefaultSettings["vm_id"] != "default" {
		t.Errorf("default vm_id = %v", p.DefaultSettings["vm_id"])
	}
}

func TestDecodeAndValidate_RejectsInvalidDocuments(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not an object", `["a", "b"]`},
		{"missing actions", `{"name":"x","type":"y"}`},
		{"name not a string", `{"name":1,"type":"y","actions":{}}`},
		{"actions not an object", `{"name":"x","type":"y","actions":[]}`},
		{"action missing command", `{"name":"x","type":"y","actions":{"a":{"parse_rules":{"type":"object","patterns":{}}}}}`},
		{"action missing parse_rules", `{"name":"x","type":"y","actions":{"a":{"command":"c"}}}`},
		{"unknown parse_rules type", `{"name":"x","type":"y","actions":{"a":{"command":"c","parse_rules":{"type":"bogus"}}}}`},
		{"unknown transform", `{"name":"x","type":"y","actions":{"a":{"command":"c","parse_rules":{"type":"object","patterns":{"k":{"regex":"r","transform":"bogus"}}}}}}`},
		{"default_settings not an object", `{"name":"x","type":"y","actions":{},"default_settings":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeAndValidate([]byte(tt.doc))
			if err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestParamMap_Merge_OverridesNotMerges(t *testing.T) {
	defaults := ParamMap{"a": "1", "b": "2"}
	overrides := ParamMap{"b": "override", "c": "3"}

	merged := defaults.Merge(overrides)

	if merged["a"] != "1" {
		t.Errorf("a = %v, want 1", merged["a"])
	}
	if merged["b"] != "override" {
		t.Errorf("b = %v, want override (caller params win)", merged["b"])
	}
	if merged["c"] != "3" {
		t.Errorf("c = %v, want 3", merged["c"])
	}

	if defaults["b"] != "2" {
		t.Error("Merge must not mutate the receiver")
	}
}

func TestPattern_GroupIndex_DefaultsToZero(t *testing.T) {
	p := Pattern{Regex: "x"}
	if p.GroupIndex() != 0 {
		t.Errorf("GroupIndex() = %d, want 0", p.GroupIndex())
	}

	two := 2
	p.Group = &two
	if p.GroupIndex() != 2 {
		t.Errorf("GroupIndex() = %d, want 2", p.GroupIndex())
	}
}
