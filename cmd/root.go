// Package cmd is for command line interactions with the shovill application
package cmd

import (
	"log"

	"github.com/spf13/cobra"
)

// RootCmd represents the base command when called without any subcommands.
var RootCmd = &cobra.Command{
	Use: "shovill",
	Short: `Assemble bacterial isolate genomes from paired-end reads.
Derives the assembler's parameters from the reads and drives the tool chain`,
	Version: "1.1.0",
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		log.Fatalf("%v", err)
	}
}
