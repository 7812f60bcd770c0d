package schemaoverlay

import (
	"testing"

	"github.com/cpi-engine/cpi/pkg/provider"
)

const virtualboxSchema = `
type: "virtualbox"
name: =~"^[a-z0-9_-]+$"
`

func TestValidate_NoOverlayRegistered(t *testing.T) {
	r := New()
	p := &provider.Provider{Name: "anything", Type: "unregistered"}

	if err := r.Validate(p); err != nil {
		t.Fatalf("expected no-op validation for unregistered type, got %v", err)
	}
}

func TestValidate_PassesMatchingOverlay(t *testing.T) {
	r := New()
	if err := r.RegisterSchema("virtualbox", virtualboxSchema); err != nil {
		t.Fatalf("RegisterSchema: %v", err)
	}

	p := &provider.Provider{Name: "vbox-main", Type: "virtualbox"}
	if err := r.Validate(p); err != nil {
		t.Fatalf("expected valid provider to pass overlay, got %v", err)
	}
}

func TestValidate_RejectsMismatchedOverlay(t *testing.T) {
	r := New()
	if err := r.RegisterSchema("virtualbox", virtualboxSchema); err != nil {
		t.Fatalf("RegisterSchema: %v", err)
	}

	p := &provider.Provider{Name: "Bad Name!", Type: "virtualbox"}
	if err := r.Validate(p); err == nil {
		t.Fatal("expected overlay validation to reject a name with spaces/punctuation")
	}
}

func TestRegisterSchema_RejectsInvalidCUE(t *testing.T) {
	r := New()
	if err := r.RegisterSchema("broken", "this is not valid CUE {{{"); err == nil {
		t.Fatal("expected RegisterSchema to reject invalid CUE source")
	}
}

func TestHas(t *testing.T) {
	r := New()
	if r.Has("virtualbox") {
		t.Fatal("expected Has to be false before registration")
	}
	if err := r.RegisterSchema("virtualbox", virtualboxSchema); err != nil {
		t.Fatalf("RegisterSchema: %v", err)
	}
	if !r.Has("virtualbox") {
		t.Fatal("expected Has to be true after registration")
	}
}
