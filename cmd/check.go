package cmd

import (
	"github.com/kristyhoran/shovill-1/internal/shovill"
	"github.com/spf13/cobra"
)

// checkCmd is for listing the external tools the pipeline shells out to and
// whether each resolves on the user's PATH. Useful before a first run.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "List the external tools needed for an assembly",
	Run:   shovill.CheckCmd,
}

// set flags
func init() {
	RootCmd.AddCommand(checkCmd)

	// No flags or input, just for listing the collaborating tools. If a run fails
	// at a stage this will let them know which tools are and are not installed
}
