package executor

import (
	"strings"

	"github.com/cpi-engine/cpi/pkg/cpierrors"
	"github.com/cpi-engine/cpi/pkg/provider"
	"github.com/cpi-engine/cpi/pkg/template"
)

// Preview resolves params and fills the action's command template without
// spawning it, stopping exactly where spec §4.4 step 5 would start a child
// process. It reproduces steps 1-3's errors (ActionNotFound,
// MissingParameter) so callers can validate an invocation before running it.
func (e *Executor) Preview(p *provider.Provider, actionName string, callerParams provider.ParamMap) (string, error) {
	action, exists := p.Actions[actionName]
	if !exists {
		return "", &cpierrors.ActionNotFound{Provider: p.Name, Action: actionName}
	}

	merged := p.DefaultSettings.Merge(callerParams)
	for _, name := range action.Params {
		if _, ok := merged[name]; !ok {
			return "", &cpierrors.MissingParameter{Name: name}
		}
	}

	filled := template.Fill(action.Command, merged)
	return strings.Join(strings.Fields(filled), " "), nil
}
