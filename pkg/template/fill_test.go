package template

import "testing"

func TestFill_SubstitutesKnownPlaceholders(t *testing.T) {
	got := Fill("VBoxManage startvm {vm_id} --type {mode}", map[string]interface{}{
		"vm_id": "my-vm",
		"mode":  "headless",
	})
	want := "VBoxManage startvm my-vm --type headless"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestFill_LeavesUnknownPlaceholdersIntact(t *testing.T) {
	got := Fill("start {vm_id}", map[string]interface{}{"other": "x"})
	if got != "start {vm_id}" {
		t.Errorf("got %q, want unchanged template", got)
	}
}

func TestFill_NoParams(t *testing.T) {
	got := Fill("docker ps -a", nil)
	if got != "docker ps -a" {
		t.Errorf("got %q", got)
	}
}

func TestStringify(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  string
	}{
		{"nil", nil, "null"},
		{"string", "my-vm", "my-vm"},
		{"bool true", true, "true"},
		{"bool false", false, "false"},
		{"float64 integral", float64(2048), "2048"},
		{"float64 fractional", float64(1.5), "1.5"},
		{"int", 42, "42"},
		{"int64", int64(42), "42"},
		{"slice", []interface{}{"a", "b"}, `["a","b"]`},
		{"map", map[string]interface{}{"k": "v"}, `{"k":"v"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Stringify(tt.value); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
