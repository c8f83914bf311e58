package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/weiser-ai/weiser-go/internal/check"
	"github.com/weiser-ai/weiser-go/internal/config"
	"github.com/weiser-ai/weiser-go/internal/datasource"
	"github.com/weiser-ai/weiser-go/internal/expand"
	"github.com/weiser-ai/weiser-go/internal/sqlgen"
)

var compileFlags configFlags

var compileCmd = &cobra.Command{
	Use:   "compile [config]",
	Short: "Expand every declared check and print the SQL it compiles to, without running it",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCompile,
}

func init() {
	addConfigFlags(compileCmd, &compileFlags)
}

func runCompile(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		compileFlags.ConfigPath = args[0]
	}
	loaded, err := config.Load(compileFlags.ConfigPath, config.Options{EnvFile: compileFlags.EnvFile})
	if err != nil {
		return fmt.Errorf("weiser: %w", err)
	}

	for _, desc := range loaded.Checks {
		if desc.Type == check.TypeAnomaly {
			fmt.Printf("-- %s (anomaly, no source SQL)\n", desc.Name)
			continue
		}

		dsType, ok := datasourceType(loaded.Datasources, desc.Datasource)
		if !ok {
			return fmt.Errorf("weiser: check %q: unknown datasource %q", desc.Name, desc.Datasource)
		}
		dialect, err := sqlgen.Lookup(dialectTag(dsType))
		if err != nil {
			return fmt.Errorf("weiser: check %q: %w", desc.Name, err)
		}

		leaves, err := expand.Expand(desc, dialect)
		if err != nil {
			return fmt.Errorf("weiser: check %q: %w", desc.Name, err)
		}
		for _, stmt := range leaves.Statements {
			fmt.Printf("-- %s\n%s;\n\n", stmt.LeafName, stmt.SQL)
		}
	}
	return nil
}

func datasourceType(datasources map[string]datasource.Config, name string) (datasource.Type, bool) {
	cfg, ok := datasources[name]
	if !ok {
		return "", false
	}
	return cfg.Type, true
}

func dialectTag(t datasource.Type) string {
	if t == datasource.TypeCube {
		return string(datasource.TypePostgreSQL)
	}
	return string(t)
}
