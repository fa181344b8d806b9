package main

import (
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "snoopsim",
	Short: "Snoopsim simulates multi-core snooping cache coherence.",
	Long: `Snoopsim simulates cores with private caches kept coherent ` +
		`over a shared snooping bus, cycle by cycle. It supports the MOESI ` +
		`and write-invalidate protocols as well as running without coherence.`,
	SilenceUsage: true,
}
