package executor

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/cpi-engine/cpi/pkg/cpierrors"
	"github.com/cpi-engine/cpi/pkg/provider"
)

func testProvider() *provider.Provider {
	return &provider.Provider{
		Name: "testprov",
		Type: "test",
		Actions: map[string]provider.ActionDef{
			"greet": {
				Command: "/bin/echo hello {name}",
				Params:  []string{"name"},
				ParseRules: provider.ParseRules{
					Type: provider.ParseRuleObject,
					Patterns: map[string]provider.Pattern{
						"greeting": {Regex: `hello (\w+)`},
					},
				},
			},
			"fails": {
				Command: "/bin/false",
				ParseRules: provider.ParseRules{
					Type: provider.ParseRuleObject,
				},
			},
			"with_pre": {
				Command: "/bin/echo main",
				PreExec: []provider.ActionDef{
					{
						Command: "/bin/echo pre",
						ParseRules: provider.ParseRules{
							Type: provider.ParseRuleObject,
						},
					},
				},
				ParseRules: provider.ParseRules{
					Type: provider.ParseRuleObject,
					Patterns: map[string]provider.Pattern{
						"out": {Regex: `(main)`},
					},
				},
			},
		},
		DefaultSettings: provider.ParamMap{"name": "default"},
	}
}

func TestExecute_FillsAndParses(t *testing.T) {
	e := New(zerolog.Nop())
	p := testProvider()

	value, err := e.Execute(context.Background(), p, "greet", provider.ParamMap{"name": "world"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	obj, ok := value.(map[string]interface{})
	if !ok {
		t.Fatalf("expected object result, got %T", value)
	}
	if obj["greeting"] != "hello world" {
		t.Errorf("greeting = %v, want hello world", obj["greeting"])
	}
}

func TestExecute_MissingParameter(t *testing.T) {
	e := New(zerolog.Nop())
	p := testProvider()
	delete(p.DefaultSettings, "name")

	_, err := e.Execute(context.Background(), p, "greet", nil)
	if _, ok := err.(*cpierrors.MissingParameter); !ok {
		t.Fatalf("expected MissingParameter, got %v (%T)", err, err)
	}
}

func TestExecute_ActionNotFound(t *testing.T) {
	e := New(zerolog.Nop())
	p := testProvider()

	_, err := e.Execute(context.Background(), p, "nope", nil)
	if _, ok := err.(*cpierrors.ActionNotFound); !ok {
		t.Fatalf("expected ActionNotFound, got %v (%T)", err, err)
	}
}

func TestExecute_NonZeroExit(t *testing.T) {
	e := New(zerolog.Nop())
	p := testProvider()

	_, err := e.Execute(context.Background(), p, "fails", nil)
	if _, ok := err.(*cpierrors.ExecutionFailed); !ok {
		t.Fatalf("expected ExecutionFailed, got %v (%T)", err, err)
	}
}

func TestExecute_RunsPreExecBeforeMain(t *testing.T) {
	e := New(zerolog.Nop())
	p := testProvider()

	var trace []string
	e.trace = func(ev TraceEvent) { trace = append(trace, ev.Command) }

	value, err := e.Execute(context.Background(), p, "with_pre", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	obj := value.(map[string]interface{})
	if obj["out"] != "main" {
		t.Errorf("out = %v, want main", obj["out"])
	}

	if len(trace) != 2 || trace[0] != "/bin/echo pre" || trace[1] != "/bin/echo main" {
		t.Fatalf("expected pre before main, got %v", trace)
	}
}

func TestPreview(t *testing.T) {
	e := New(zerolog.Nop())
	p := testProvider()

	cmd, err := e.Preview(p, "greet", provider.ParamMap{"name": "world"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmd != "/bin/echo hello world" {
		t.Errorf("preview = %q, want %q", cmd, "/bin/echo hello world")
	}

	delete(p.DefaultSettings, "name")
	if _, err := e.Preview(p, "greet", nil); err == nil {
		t.Error("expected MissingParameter without name")
	} else if _, ok := err.(*cpierrors.MissingParameter); !ok {
		t.Errorf("expected MissingParameter, got %T", err)
	}
}
