// Package executor runs one ActionDef and its pre/post sub-actions against
// the host, the engine's §4.4 execute_action step. It resolves the
// parameter map, spawns the action's command template as a child process
// (never through a shell), and feeds stdout to the parser.
package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"

	"github.com/cpi-engine/cpi/pkg/cpierrors"
	"github.com/cpi-engine/cpi/pkg/parser"
	"github.com/cpi-engine/cpi/pkg/provider"
	"github.com/cpi-engine/cpi/pkg/template"
)

// TraceEvent records one command spawn within an execute_action call — the
// top-level action or a nested pre_exec/post_exec entry — for the
// supplemental execution-trace sink.
type TraceEvent struct {
	Provider string
	Action   string
	Command  string
	ExitCode int
	Err      error
}

// TraceSink receives TraceEvents as they happen. A nil sink disables tracing.
type TraceSink func(TraceEvent)

// Executor runs ActionDefs against the host.
type Executor struct {
	logger zerolog.Logger
	trace  TraceSink
}

// Option configures an Executor.
type Option func(*Executor)

// WithTraceSink attaches a trace sink that observes every pre/main/post
// sub-action the executor spawns.
func WithTraceSink(sink TraceSink) Option {
	return func(e *Executor) { e.trace = sink }
}

// New creates an Executor.
func New(logger zerolog.Logger, opts ...Option) *Executor {
	e := &Executor{logger: logger.With().Str("component", "executor").Logger()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs providerName/actionName with the given caller params,
// implementing spec §4.4 steps 1-10.
func (e *Executor) Execute(ctx context.Context, p *provider.Provider, actionName string, callerParams provider.ParamMap) (interface{}, error) {
	action, exists := p.Actions[actionName]
	if !exists {
		return nil, &cpierrors.ActionNotFound{Provider: p.Name, Action: actionName}
	}

	merged := p.DefaultSettings.Merge(callerParams)
	return e.executeAction(ctx, p, actionName, action, merged)
}

// executeAction runs steps 3-10 of spec §4.4 against one ActionDef — the
// provider's top-level named action, or a nested pre_exec/post_exec entry,
// both of which share the same merged parameter map and recursion shape.
func (e *Executor) executeAction(ctx context.Context, p *provider.Provider, actionName string, action provider.ActionDef, params provider.ParamMap) (interface{}, error) {
	for _, name := range action.Params {
		if _, ok := params[name]; !ok {
			return nil, &cpierrors.MissingParameter{Name: name}
		}
	}

	for _, sub := range action.PreExec {
		if _, err := e.executeAction(ctx, p, actionName, sub, params); err != nil {
			return nil, err
		}
	}

	value, err := e.runMain(ctx, p, actionName, action, params)
	if err != nil {
		return nil, err
	}

	for _, sub := range action.PostExec {
		if _, err := e.executeAction(ctx, p, actionName, sub, params); err != nil {
			return nil, err
		}
	}

	return value, nil
}

// runMain fills the command template, spawns it, and parses its stdout.
func (e *Executor) runMain(ctx context.Context, p *provider.Provider, actionName string, action provider.ActionDef, params provider.ParamMap) (interface{}, error) {
	filled := template.Fill(action.Command, params)
	argv := strings.Fields(filled)
	if len(argv) == 0 {
		return nil, &cpierrors.ExecutionFailed{Command: filled, Stderr: "empty command after template fill"}
	}

	stdout, stderr, exitCode, err := e.spawn(ctx, argv)
	e.emitTrace(p.Name, actionName, filled, exitCode, err)
	if err != nil {
		return nil, err
	}
	if exitCode != 0 {
		return nil, &cpierrors.ExecutionFailed{Command: filled, Stderr: stderr}
	}

	value, err := parser.Parse(stdout, action.ParseRules, params)
	if err != nil {
		return nil, err
	}
	return value, nil
}

// spawn runs argv as a child process and captures its output. Non-UTF-8
// output is decoded lossily, matching Go's native string conversion of
// arbitrary bytes.
func (e *Executor) spawn(ctx context.Context, argv []string) (stdout, stderr string, exitCode int, err error) {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)

	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	runErr := cmd.Run()
	stdout = outBuf.String()
	stderr = errBuf.String()

	if runErr == nil {
		return stdout, stderr, 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		return stdout, stderr, exitErr.ExitCode(), nil
	}

	return stdout, stderr, -1, &cpierrors.ExecutionFailed{Command: strings.Join(argv, " "), Stderr: fmt.Sprintf("spawn %q: %v", argv[0], runErr)}
}

func (e *Executor) emitTrace(providerName, actionName, command string, exitCode int, err error) {
	if e.trace == nil {
		return
	}
	e.trace(TraceEvent{
		Provider: providerName,
		Action:   actionName,
		Command:  command,
		ExitCode: exitCode,
		Err:      err,
	})
}
