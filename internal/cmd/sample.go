package cmd

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/weiser-ai/weiser-go/internal/check"
	"github.com/weiser-ai/weiser-go/internal/config"
	"github.com/weiser-ai/weiser-go/internal/datasource"
	"github.com/weiser-ai/weiser-go/internal/logging"
	"github.com/weiser-ai/weiser-go/internal/runner"
)

var sampleFlags configFlags
var sampleCheckName string

var sampleCmd = &cobra.Command{
	Use:   "sample [config]",
	Short: "Run a single declared check and print its result, without writing to the metric store",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSample,
}

func init() {
	addConfigFlags(sampleCmd, &sampleFlags)
	sampleCmd.Flags().StringVar(&sampleCheckName, "check", "", "Name of the declared check to sample (required)")
	sampleCmd.MarkFlagRequired("check")
}

func runSample(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	logger := logging.Default(sampleFlags.Verbose)
	if len(args) == 1 {
		sampleFlags.ConfigPath = args[0]
	}

	loaded, err := config.Load(sampleFlags.ConfigPath, config.Options{EnvFile: sampleFlags.EnvFile})
	if err != nil {
		return fmt.Errorf("weiser: %w", err)
	}

	var desc *check.Descriptor
	for i := range loaded.Checks {
		if loaded.Checks[i].Name == sampleCheckName {
			desc = &loaded.Checks[i]
			break
		}
	}
	if desc == nil {
		return fmt.Errorf("weiser: no declared check named %q", sampleCheckName)
	}

	dsManager := datasource.NewManager(loaded.Datasources)
	defer dsManager.CloseAll()

	sink := &discardStore{}
	r := runner.New(dsManager, sink, noopNotifier{}, logger)

	summary, err := r.Run(ctx, "sample-"+uuid.NewString(), []check.Descriptor{*desc})
	if err != nil {
		return fmt.Errorf("weiser: sample %q: %w", sampleCheckName, err)
	}

	for _, rec := range sink.records {
		fmt.Printf("%-30s actual=%v success=%v fail=%v error=%q\n",
			rec.Name, derefOrNil(rec.ActualValue), rec.Success, rec.Fail, rec.Error)
	}

	if summary.Failed > 0 || summary.Errored > 0 {
		return fmt.Errorf("weiser: sample %q: %d failed, %d errored", sampleCheckName, summary.Failed, summary.Errored)
	}
	return nil
}

func derefOrNil(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}
