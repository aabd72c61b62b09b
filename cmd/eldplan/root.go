package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/eldroute/eldroute/internal/config"
	"github.com/eldroute/eldroute/internal/hos"
)

// newRootCmd builds the command tree. Rules are read through getenv so HOS_*
// overrides apply the same way they do for the API server.
func newRootCmd(getenv func(string) string) *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:           "eldplan",
		Short:         "Hours-of-Service driving schedule planner",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", "", "load HOS_* overrides from this .env file")

	loadEngine := func() (*hos.Engine, error) {
		if envFile != "" {
			if err := config.LoadDotEnv(envFile); err != nil {
				return nil, err
			}
		}
		rules, err := config.RulesFromEnv(getenv)
		if err != nil {
			return nil, fmt.Errorf("load rules: %w", err)
		}
		return hos.NewEngine(rules)
	}

	root.AddCommand(newScheduleCmd(loadEngine), newRulesCmd(loadEngine))
	return root
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
