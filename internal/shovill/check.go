package shovill

import (
	"fmt"
	"os"
	"os/exec"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// tools are the external executables the pipeline shells out to.
var tools = []string{
	"seqtk",
	"kmc",
	"trimmomatic",
	"lighter",
	"flash",
	"spades.py",
	"bwa",
	"samtools",
	"pilon",
	"bash",
}

// CheckCmd lists every collaborating tool and where (or whether) it resolves
// on PATH. Informational only: always exits 0.
func CheckCmd(cmd *cobra.Command, args []string) {
	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 3, ' ', 0)
	fmt.Fprintf(writer, "tool\tpath\t\n")

	for _, tool := range tools {
		path, err := exec.LookPath(tool)
		if err != nil {
			path = "not found"
		}

		fmt.Fprintf(writer, "%s\t%s\t\n", tool, path)
	}

	writer.Flush()
}
