// Package schemaoverlay implements the optional, additive second validation
// pass named in SPEC_FULL.md: a provider's type field may carry a stricter
// CUE schema, checked strictly after the mandatory structural validator of
// spec §4.1, and only when a schema is registered for that type. The
// provider is encoded under its JSON field names (name, type, actions,
// default_settings), so overlay schemas use those keys.
package schemaoverlay

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/cpi-engine/cpi/pkg/cpierrors"
	"github.com/cpi-engine/cpi/pkg/provider"
)

// Registry holds CUE schemas keyed by provider type.
type Registry struct {
	ctx     *cue.Context
	schemas map[string]cue.Value
	mu      sync.RWMutex
}

// New creates an empty overlay registry.
func New() *Registry {
	return &Registry{
		ctx:     cuecontext.New(),
		schemas: make(map[string]cue.Value),
	}
}

// RegisterSchema compiles and registers a CUE schema for the given provider
// type.
func (r *Registry) RegisterSchema(providerType, schema string) error {
	val := r.ctx.CompileString(schema)
	if err := val.Err(); err != nil {
		return &cpierrors.InvalidCpiFormat{Reason: fmt.Sprintf("compiling schema overlay for type %q: %v", providerType, err)}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.schemas[providerType] = val
	return nil
}

// LoadDirectory registers one schema per `<type>.cue` file found directly
// under dir. Unlike the provider registry, a bad overlay file is a load-time
// error rather than a skip: an overlay that fails to compile likely signals
// an author mistake in the overlay itself, not a tolerable one-off bad
// provider document.
func (r *Registry) LoadDirectory(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return &cpierrors.IoError{Op: "read schema overlay directory", Err: err}
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".cue") {
			continue
		}
		providerType := strings.TrimSuffix(entry.Name(), ".cue")
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return &cpierrors.IoError{Op: "read schema overlay file " + entry.Name(), Err: err}
		}
		if err := r.RegisterSchema(providerType, string(data)); err != nil {
			return err
		}
	}
	return nil
}

// Has reports whether an overlay schema is registered for providerType.
func (r *Registry) Has(providerType string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.schemas[providerType]
	return ok
}

// Validate unifies p against the overlay schema registered for p.Type, if
// any. A provider whose type has no registered overlay validates with zero
// behavior change — this pass never runs for it.
func (r *Registry) Validate(p *provider.Provider) error {
	r.mu.RLock()
	schema, ok := r.schemas[p.Type]
	r.mu.RUnlock()
	if !ok {
		return nil
	}

	r.mu.RLock()
	ctx := r.ctx
	r.mu.RUnlock()

	dataVal := ctx.Encode(p)
	if err := dataVal.Err(); err != nil {
		return &cpierrors.InvalidCpiFormat{Reason: fmt.Sprintf("encoding provider %q for schema overlay: %v", p.Name, err)}
	}

	unified := schema.Unify(dataVal)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return &cpierrors.InvalidCpiFormat{Reason: fmt.Sprintf("provider %q failed schema overlay for type %q: %v", p.Name, p.Type, err)}
	}

	return nil
}
