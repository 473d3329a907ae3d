// Command ormcore is a small operator CLI around the engine's reference
// file-backed KvStore and sequence allocator: inspecting a snapshot,
// allocating the next value of a sequence, and emitting a static accessor file for a
// hand-built schema.Relation. It is a debug/ops tool, not part of the
// engine's public API surface.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	var cfgPath string

	root := &cobra.Command{
		Use:           "ormcore",
		Short:         "Operator CLI for the ormcore dual-substrate accessor engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path to a TOML config file (see config.go)")

	root.AddCommand(
		newKVDumpCommand(&cfgPath),
		newSequenceCommand(&cfgPath),
		newGenCommand(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "ormcore:", err)
		os.Exit(1)
	}
}
