package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"recrec/pkg/config"
	"recrec/pkg/driver"
	"recrec/pkg/logging"
)

var (
	configPath string
	verbose    bool
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recrec [file]",
		Short: "Deterministic replicated key-value store simulator",
		Long: "recrec replays a scripted transaction workload against an in-memory, " +
			"replicated, multiversion key-value store under snapshot isolation, " +
			"printing the outcome of every directive as it is applied.",
		Args: cobra.MaximumNArgs(1),
		RunE: runRoot,
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to a TOML config file overriding site/variable counts")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug-level engine tracing on stderr")
	return cmd
}

func runRoot(cmd *cobra.Command, args []string) error {
	cfg := config.NewDefaultConfig()
	if configPath != "" {
		loaded, err := config.LoadFile(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	log, err := logging.New(verbose || cfg.LogLevel == "debug")
	if err != nil {
		return err
	}
	defer log.Sync()

	runID := uuid.New().String()
	log = log.With("run_id", runID)

	input := os.Stdin
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), err)
			return err
		}
		defer f.Close()
		input = f
	}

	warnings, err := driver.Run(input, cmd.OutOrStdout(), cfg, log)
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), err)
		return err
	}
	log.Debugw("run complete", "warnings", warnings)
	return nil
}
