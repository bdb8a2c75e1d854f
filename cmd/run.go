package cmd

import (
	"github.com/kristyhoran/shovill-1/internal/shovill"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	namefmtHelp = `format string for renaming the final contigs. Must contain exactly
one integer placeholder, eg "contig%05d" or "sample17_%03d"`

	asmHelp = `assembler product to polish and report: one of "before_rr"
(before repeat resolution), "contigs" or "scaffolds"`
)

// runCmd assembles a genome from a pair of read files end to end
var runCmd = &cobra.Command{
	Use:                        "run",
	Short:                      "Assemble paired-end reads into a draft genome",
	Run:                        shovill.RunCmd,
	SuggestionsMinimumDistance: 2,
	Long: `Assemble a bacterial genome from paired-end short reads.

The reads are measured to derive a genome size, sequencing depth and a
k-mer range; the read files are then trimmed (optional), error-corrected,
overlapped and assembled, and the assembly is polished against the input
reads. The surviving contigs are filtered by length and coverage and
renamed before being written to the output directory.

Every external tool's output is kept in a numbered log file in the
output directory; the first failing tool aborts the whole run.`,
}

// set flags
func init() {
	runCmd.Flags().StringP("outdir", "o", "", "output directory (required)")
	runCmd.Flags().String("R1", "", "first mate of the read pair (required)")
	runCmd.Flags().String("R2", "", "second mate of the read pair (required)")

	runCmd.Flags().IntP("cpus", "j", 8, "number of CPUs to use")
	runCmd.Flags().Int("depth", 100, "subsample reads down to this depth, 0 to disable")
	runCmd.Flags().Int("ram", 16, "RAM ceiling in GB")
	runCmd.Flags().Int("minlen", 1, "minimum length of a reported contig")
	runCmd.Flags().Float64("mincov", 2.0, "minimum coverage of a reported contig")

	runCmd.Flags().StringP("gsize", "g", "", "genome size estimate, eg 4.6M (default: estimate from the reads)")
	runCmd.Flags().StringP("kmers", "k", "", "k-mer sizes to assemble with (default: derive from read length)")
	runCmd.Flags().String("opts", "", "extra options passed through to the assembler")
	runCmd.Flags().String("namefmt", "contig%05d", namefmtHelp)
	runCmd.Flags().String("asm", "contigs", asmHelp)
	runCmd.Flags().String("trimopt", "", "extra options passed through to the read trimmer")
	runCmd.Flags().String("tmpdir", "/tmp", "fast scratch directory")

	runCmd.Flags().BoolP("force", "f", false, "overwrite the output directory if it exists")
	runCmd.Flags().Bool("trim", false, "trim adapters from the reads before assembly")
	runCmd.Flags().Bool("nocorr", false, "skip the post-assembly polishing step")
	runCmd.Flags().Bool("keepfiles", false, "keep intermediate files in the output directory")

	RootCmd.AddCommand(runCmd)

	// settings is an optional parameter for a settings file (that overrides the built-in defaults)
	runCmd.PersistentFlags().StringP("settings", "s", "", "assembly settings")
	runCmd.PersistentFlags().BoolP("verbose", "v", false, "whether to echo tool output to stdout")
	viper.BindPFlag("settings", runCmd.PersistentFlags().Lookup("settings"))
	viper.BindPFlag("verbose", runCmd.PersistentFlags().Lookup("verbose"))
}
