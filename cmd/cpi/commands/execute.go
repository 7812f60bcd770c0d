package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cpi-engine/cpi/pkg/cpierrors"
	"github.com/cpi-engine/cpi/pkg/executor"
	"github.com/cpi-engine/cpi/pkg/telemetry"
)

func newExecuteCommand() *cobra.Command {
	var paramFlags []string

	cmd := &cobra.Command{
		Use:   "execute <provider> <action>",
		Short: "Run one action: resolve params, run pre_exec, spawn the command, parse stdout, run post_exec",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := engineConfig(cmd)
			if err != nil {
				return err
			}
			tel, err := newTelemetry(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = tel.Shutdown(cmd.Context()) }()

			if cfg.Metrics.Enabled {
				if err := tel.StartMetricsServer(); err != nil {
					return fmt.Errorf("starting metrics endpoint: %w", err)
				}
			}

			r, err := loadRegistry()
			if err != nil {
				return err
			}
			p, err := r.Get(args[0])
			if err != nil {
				return err
			}

			params, err := parseParamFlags(paramFlags)
			if err != nil {
				return err
			}

			execCtx := cmd.Context()
			if cfg.ExecutionTimeout > 0 {
				var cancel context.CancelFunc
				execCtx, cancel = context.WithTimeout(execCtx, cfg.ExecutionTimeout)
				defer cancel()
			}

			ic := telemetry.StartExecution(tel.WithContext(execCtx), p.Name, args[1])
			e := executor.New(ic.Logger.Raw(), executor.WithTraceSink(func(ev executor.TraceEvent) {
				ic.Logger.WithField("command", ev.Command).WithField("exit_code", ev.ExitCode).Info("ran sub-action")
			}))
			value, err := e.Execute(ic.Ctx, p, args[1], params)

			status := "ok"
			if err != nil {
				status = "error"
			}
			ic.End(tel, p.Name, args[1], status, err)

			if err != nil {
				if kind, ok := cpierrors.KindOf(err); ok {
					return fmt.Errorf("execution failed (%s): %w", kind, err)
				}
				return err
			}

			out, err := json.MarshalIndent(value, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling result: %w", err)
			}
			fmt.Println(string(out))
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&paramFlags, "param", "P", nil, "parameter as key=value, repeatable")
	return cmd
}
