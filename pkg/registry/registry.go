// Package registry implements the provider registry of spec §4.2: it owns
// the set of loaded providers, keyed by name, and supports load, unload,
// enumerate, and introspect.
package registry

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/blake2b"

	"github.com/cpi-engine/cpi/pkg/cpierrors"
	"github.com/cpi-engine/cpi/pkg/provider"
)

// Registry owns the loaded providers. Its contents are read-only after a
// successful load (spec §5), so reads only need a shared lock; load/unload
// take the exclusive lock.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]*provider.Provider
	digests   map[string]string
	logger    zerolog.Logger
}

// New creates an empty registry. Per spec §9 ("prefer dependency injection"),
// the registry is an explicit handle passed through the call graph rather
// than a process-wide global, so tests can construct isolated instances.
func New(logger zerolog.Logger) *Registry {
	return &Registry{
		providers: make(map[string]*provider.Provider),
		digests:   make(map[string]string),
		logger:    logger.With().Str("component", "registry").Logger(),
	}
}

// Register loads a single provider file, validates it, and inserts it.
// A second Register of an already-registered name is rejected: the spec
// leaves the duplicate-name policy to the implementer (§4.2), and this
// registry treats a name collision as a definite author error rather than
// silently overwriting the first load — an overwrite would make an
// `execute` call's behavior depend on load order, which is exactly the kind
// of action-at-a-distance spec §5's "read-only after load" model is meant
// to avoid.
func (r *Registry) Register(path string) error {
	p, digest, err := loadProviderFile(path)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[p.Name]; exists {
		return &cpierrors.InvalidCpiFormat{Reason: "duplicate provider name: " + p.Name}
	}
	r.providers[p.Name] = p
	r.digests[p.Name] = digest
	return nil
}

// LoadDirectory enumerates one flat directory, attempts to parse and
// validate each *.json file, and inserts every provider that succeeds.
// Per-file errors are logged but never abort the batch; if zero providers
// end up loaded, LoadDirectory fails with NoProvidersLoaded so the engine
// cannot silently start empty (spec §4.2).
func (r *Registry) LoadDirectory(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return &cpierrors.InvalidPath{Reason: err.Error()}
	}
	if !info.IsDir() {
		return &cpierrors.InvalidPath{Reason: dir + " is not a directory"}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return &cpierrors.IoError{Op: "read providers directory", Err: err}
	}

	loaded := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := r.Register(path); err != nil {
			r.logger.Warn().Err(err).Str("path", path).Msg("failed to register provider, skipping")
			continue
		}
		loaded++
	}

	if loaded == 0 {
		return &cpierrors.NoProvidersLoaded{Dir: dir}
	}
	return nil
}

// Unload removes a loaded provider. Unloading an unknown name is a
// ProviderNotFound error (spec's supplemental registry operation — see
// SPEC_FULL.md, "Provider unload").
func (r *Registry) Unload(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[name]; !exists {
		return &cpierrors.ProviderNotFound{Name: name}
	}
	delete(r.providers, name)
	delete(r.digests, name)
	return nil
}

// Digest returns the hex-encoded blake2b-256 digest of the provider's source
// file as it stood at load time, for introspection tooling that wants to
// detect a provider file changing out from under a running engine without
// hot-reload enabled.
func (r *Registry) Digest(name string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	digest, exists := r.digests[name]
	if !exists {
		return "", &cpierrors.ProviderNotFound{Name: name}
	}
	return digest, nil
}

// Get returns the named provider, or ProviderNotFound.
func (r *Registry) Get(name string) (*provider.Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, exists := r.providers[name]
	if !exists {
		return nil, &cpierrors.ProviderNotFound{Name: name}
	}
	return p, nil
}

// List returns the names of all loaded providers.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	return names
}

// ListActions returns the action names of one provider.
func (r *Registry) ListActions(providerName string) ([]string, error) {
	p, err := r.Get(providerName)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(p.Actions))
	for name := range p.Actions {
		names = append(names, name)
	}
	return names, nil
}

// ListRequiredParams returns the params list of one action.
func (r *Registry) ListRequiredParams(providerName, actionName string) ([]string, error) {
	p, err := r.Get(providerName)
	if err != nil {
		return nil, err
	}

	action, exists := p.Actions[actionName]
	if !exists {
		return nil, &cpierrors.ActionNotFound{Provider: providerName, Action: actionName}
	}
	return action.Params, nil
}

// ActionDescriptor bundles an action's invocation shape for introspection
// tooling (SPEC_FULL.md supplemental feature: provider introspection beyond
// params).
type ActionDescriptor struct {
	Command         string
	RequiredParams  []string
	DefaultSettings provider.ParamMap
}

// DescribeAction returns the invocation shape of one action.
func (r *Registry) DescribeAction(providerName, actionName string) (*ActionDescriptor, error) {
	p, err := r.Get(providerName)
	if err != nil {
		return nil, err
	}

	action, exists := p.Actions[actionName]
	if !exists {
		return nil, &cpierrors.ActionNotFound{Provider: providerName, Action: actionName}
	}

	return &ActionDescriptor{
		Command:         action.Command,
		RequiredParams:  action.Params,
		DefaultSettings: p.DefaultSettings,
	}, nil
}

func loadProviderFile(path string) (*provider.Provider, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", &cpierrors.IoError{Op: "read provider file " + path, Err: err}
	}

	p, err := provider.DecodeAndValidate(data)
	if err != nil {
		return nil, "", err
	}

	sum := blake2b.Sum256(data)
	return p, hex.EncodeToString(sum[:]), nil
}
