package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/cpi-engine/cpi/pkg/cpierrors"
)

const testProviderDoc = `{
  "name": "vb",
  "type": "virtualbox",
  "actions": {
    "has_vm": {
      "command": "VBoxManage list vms",
      "params": ["vm_id"],
      "parse_rules": { "type": "object", "patterns": {} }
    }
  },
  "default_settings": { "vm_id": "default-vm" }
}`

const secondProviderDoc = `{
  "name": "docker",
  "type": "docker",
  "actions": {
    "ps": {
      "command": "docker ps",
      "parse_rules": { "type": "object", "patterns": {} }
    }
  }
}`

func writeProviderFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("failed to write fixture %s: %v", path, err)
	}
	return path
}

func TestRegister_ValidProviderRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := writeProviderFile(t, dir, "vb.json", testProviderDoc)

	r := New(zerolog.Nop())
	if err := r.Register(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p, err := r.Get("vb")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if p.Name != "vb" {
		t.Errorf("got name %q", p.Name)
	}
}

func TestRegister_InvalidProviderDoesNotMutateRegistry(t *testing.T) {
	dir := t.TempDir()
	path := writeProviderFile(t, dir, "bad.json", `{"name":"x"}`)

	r := New(zerolog.Nop())
	err := r.Register(path)
	if err == nil {
		t.Fatal("expected validation error")
	}

	if len(r.List()) != 0 {
		t.Errorf("registry should remain empty after a failed register, got %v", r.List())
	}
}

func TestRegister_RejectsDuplicateName(t *testing.T) {
	dir := t.TempDir()
	first := writeProviderFile(t, dir, "vb.json", testProviderDoc)
	second := writeProviderFile(t, dir, "vb2.json", testProviderDoc)

	r := New(zerolog.Nop())
	if err := r.Register(first); err != nil {
		t.Fatalf("unexpected error on first register: %v", err)
	}
	if err := r.Register(second); err == nil {
		t.Fatal("expected duplicate name error on second register")
	}
}

func TestLoadDirectory_LoadsAllValidFilesAndSkipsInvalid(t *testing.T) {
	dir := t.TempDir()
	writeProviderFile(t, dir, "vb.json", testProviderDoc)
	writeProviderFile(t, dir, "docker.json", secondProviderDoc)
	writeProviderFile(t, dir, "broken.json", `not json at all`)
	writeProviderFile(t, dir, "readme.txt", "ignored, not a .json file")

	r := New(zerolog.Nop())
	if err := r.LoadDirectory(dir); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	names := r.List()
	if len(names) != 2 {
		t.Fatalf("got %d providers, want 2: %v", len(names), names)
	}
}

func TestLoadDirectory_NoProvidersLoadedWhenAllFilesAreInvalid(t *testing.T) {
	dir := t.TempDir()
	writeProviderFile(t, dir, "broken.json", `not json at all`)

	r := New(zerolog.Nop())
	err := r.LoadDirectory(dir)
	if err == nil {
		t.Fatal("expected NoProvidersLoaded error")
	}
	if _, ok := err.(*cpierrors.NoProvidersLoaded); !ok {
		t.Errorf("got error type %T, want *cpierrors.NoProvidersLoaded", err)
	}
}

func TestLoadDirectory_RejectsNonDirectory(t *testing.T) {
	dir := t.TempDir()
	path := writeProviderFile(t, dir, "vb.json", testProviderDoc)

	r := New(zerolog.Nop())
	if err := r.LoadDirectory(path); err == nil {
		t.Fatal("expected error when given a file instead of a directory")
	}
}

func TestUnload_RemovesProviderThenReloadSucceeds(t *testing.T) {
	dir := t.TempDir()
	path := writeProviderFile(t, dir, "vb.json", testProviderDoc)

	r := New(zerolog.Nop())
	if err := r.Register(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := r.Unload("vb"); err != nil {
		t.Fatalf("unexpected error unloading: %v", err)
	}
	if _, err := r.Get("vb"); err == nil {
		t.Fatal("expected ProviderNotFound after unload")
	}

	if err := r.Register(path); err != nil {
		t.Fatalf("re-register after unload should succeed, got: %v", err)
	}
}

func TestUnload_UnknownNameIsProviderNotFound(t *testing.T) {
	r := New(zerolog.Nop())
	err := r.Unload("nope")
	if _, ok := err.(*cpierrors.ProviderNotFound); !ok {
		t.Errorf("got %T, want *cpierrors.ProviderNotFound", err)
	}
}

func TestListActionsAndListRequiredParams(t *testing.T) {
	dir := t.TempDir()
	path := writeProviderFile(t, dir, "vb.json", testProviderDoc)

	r := New(zerolog.Nop())
	if err := r.Register(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	actions, err := r.ListActions("vb")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(actions) != 1 || actions[0] != "has_vm" {
		t.Errorf("got %v, want [has_vm]", actions)
	}

	params, err := r.ListRequiredParams("vb", "has_vm")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(params) != 1 || params[0] != "vm_id" {
		t.Errorf("got %v, want [vm_id]", params)
	}

	if _, err := r.ListRequiredParams("vb", "no_such_action"); err == nil {
		t.Fatal("expected ActionNotFound for unknown action")
	}
}

func TestDigest_ReturnsStableHexDigestAndClearsOnUnload(t *testing.T) {
	dir := t.TempDir()
	path := writeProviderFile(t, dir, "vb.json", testProviderDoc)

	r := New(zerolog.Nop())
	if err := r.Register(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	digest, err := r.Digest("vb")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(digest) != 64 {
		t.Errorf("digest = %q, want 64 hex chars (blake2b-256)", digest)
	}

	if err := r.Unload("vb"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := r.Digest("vb"); err == nil {
		t.Fatal("expected ProviderNotFound for digest of an unloaded provider")
	}
}

func TestDescribeAction(t *testing.T) {
	dir := t.TempDir()
	path := writeProviderFile(t, dir, "vb.json", testProviderDoc)

	r := New(zerolog.Nop())
	if err := r.Register(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	desc, err := r.DescribeAction("vb", "has_vm")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if desc.Command != "VBoxManage list vms" {
		t.Errorf("command = %q", desc.Command)
	}
	if desc.DefaultSettings["vm_id"] != "default-vm" {
		t.Errorf("default_settings = %v", desc.DefaultSettings)
	}
}
