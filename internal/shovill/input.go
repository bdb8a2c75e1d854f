package shovill

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/kristyhoran/shovill-1/config"
	"github.com/spf13/cobra"
)

// variants are the assembler products selectable for polishing and reporting.
var variants = []string{"before_rr", "contigs", "scaffolds"}

// verbRegex matches printf verbs in the contig naming template, %% excluded.
var verbRegex = regexp.MustCompile(`%[^%]*?[a-zA-Z]`)

// Flags contains parsed cobra flags: the read pair, output directory,
// resource ceilings and the knobs for contig filtering/renaming.
type Flags struct {
	// the directory every output and stage log is written to
	outdir string

	// the two mates of the read pair
	r1, r2 string

	// resource ceilings declared by the user
	cpus int
	ram  int

	// target sequencing depth, 0 to skip subsampling
	depth int

	// thresholds for the final contig set
	minLen int
	minCov float64

	// genome size estimate, eg "4.6M"; empty to estimate from the reads
	gsize string

	// explicit k-mer list; empty to auto-derive
	kmers string

	// passthrough options for the assembler and the trimmer
	opts    string
	trimOpt string

	// naming template for surviving contigs
	nameFmt string

	// which assembler product to polish and report
	variant string

	// fast scratch directory
	tmpDir string

	force     bool
	trim      bool
	noCorr    bool
	keepFiles bool
}

// inputParser contains methods for parsing flags from the input &cobra.Command.
type inputParser struct{}

// NewFlags makes a new flags object manually. for testing.
func NewFlags(outdir, r1, r2 string) (*Flags, *config.Config) {
	return &Flags{
		outdir:  outdir,
		r1:      r1,
		r2:      r2,
		cpus:    1,
		ram:     2,
		minLen:  1,
		minCov:  2.0,
		nameFmt: "contig%05d",
		variant: "contigs",
		tmpDir:  os.TempDir(),
		noCorr:  true,
	}, config.New()
}

// parseCmdFlags gathers the read pair, output directory, etc from a cobra cmd
// object. Returns Flags and a Config struct for shovill.Assemble.
func parseCmdFlags(cmd *cobra.Command, args []string) (*Flags, *config.Config) {
	var err error
	fs := &Flags{} // parsed flags
	c := config.New()

	if fs.outdir, err = cmd.Flags().GetString("outdir"); fs.outdir == "" || err != nil {
		cmd.Help()
		stderr.Fatal("no output directory set")
	}

	if fs.r1, err = cmd.Flags().GetString("R1"); fs.r1 == "" || err != nil {
		cmd.Help()
		stderr.Fatal("no first read file set")
	}

	if fs.r2, err = cmd.Flags().GetString("R2"); fs.r2 == "" || err != nil {
		cmd.Help()
		stderr.Fatal("no second read file set")
	}

	if fs.cpus, err = cmd.Flags().GetInt("cpus"); err != nil {
		stderr.Fatalf("failed to parse cpu count: %v", err)
	}

	if fs.ram, err = cmd.Flags().GetInt("ram"); err != nil {
		stderr.Fatalf("failed to parse RAM ceiling: %v", err)
	}

	if fs.depth, err = cmd.Flags().GetInt("depth"); err != nil {
		stderr.Fatalf("failed to parse target depth: %v", err)
	}

	if fs.minLen, err = cmd.Flags().GetInt("minlen"); err != nil {
		stderr.Fatalf("failed to parse minimum contig length: %v", err)
	}

	if fs.minCov, err = cmd.Flags().GetFloat64("mincov"); err != nil {
		stderr.Fatalf("failed to parse minimum contig coverage: %v", err)
	}

	fs.gsize, _ = cmd.Flags().GetString("gsize")
	fs.kmers, _ = cmd.Flags().GetString("kmers")
	fs.opts, _ = cmd.Flags().GetString("opts")
	fs.trimOpt, _ = cmd.Flags().GetString("trimopt")
	fs.nameFmt, _ = cmd.Flags().GetString("namefmt")
	fs.variant, _ = cmd.Flags().GetString("asm")
	fs.tmpDir, _ = cmd.Flags().GetString("tmpdir")

	fs.force, _ = cmd.Flags().GetBool("force")
	fs.trim, _ = cmd.Flags().GetBool("trim")
	fs.noCorr, _ = cmd.Flags().GetBool("nocorr")
	fs.keepFiles, _ = cmd.Flags().GetBool("keepfiles")

	return fs, c
}

// validate rejects a run before anything expensive starts: unreadable reads,
// an unknown assembly variant, a malformed naming template, or declared
// resource ceilings the machine cannot meet.
func (f *Flags) validate(machineCPUs, machineRAM int) error {
	p := inputParser{}

	for _, reads := range []string{f.r1, f.r2} {
		if err := p.checkReadable(reads); err != nil {
			return err
		}
	}

	if err := p.checkVariant(f.variant); err != nil {
		return err
	}

	if err := p.checkNameFormat(f.nameFmt); err != nil {
		return err
	}

	if f.cpus < 1 {
		return newValidationError("cpu count must be at least 1, got %d", f.cpus)
	}
	if f.cpus > machineCPUs {
		return newValidationError("%d cpus requested but only %d available", f.cpus, machineCPUs)
	}

	if f.ram < 1 {
		return newValidationError("RAM ceiling must be at least 1 GB, got %d", f.ram)
	}
	if machineRAM > 0 && f.ram > machineRAM {
		return newValidationError("%d GB RAM requested but only %d GB available", f.ram, machineRAM)
	}

	if f.minLen < 0 || f.minCov < 0 {
		return newValidationError("contig thresholds cannot be negative")
	}

	return nil
}

// checkReadable confirms a read file exists and is openable.
func (p *inputParser) checkReadable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return newValidationError("failed to find read file %s: %v", path, err)
	}
	if info.IsDir() {
		return newValidationError("read file %s is a directory", path)
	}

	file, err := os.Open(path)
	if err != nil {
		return newValidationError("failed to open read file %s: %v", path, err)
	}
	file.Close()

	return nil
}

// checkVariant confirms the assembly product selector is one of the
// recognized values.
func (p *inputParser) checkVariant(variant string) error {
	for _, v := range variants {
		if v == variant {
			return nil
		}
	}

	return newValidationError(
		"unknown assembly product %q: must be one of before_rr, contigs, scaffolds",
		variant,
	)
}

// checkNameFormat confirms the contig naming template has exactly one
// integer placeholder and nothing else printf would touch.
func (p *inputParser) checkNameFormat(nameFmt string) error {
	// %% is a literal percent, not a placeholder
	escaped := strings.ReplaceAll(nameFmt, "%%", "")
	verbs := verbRegex.FindAllString(escaped, -1)

	if len(verbs) != 1 {
		return newValidationError(
			"naming template %q must contain exactly one %%d placeholder, found %d",
			nameFmt, len(verbs),
		)
	}

	if verbs[0][len(verbs[0])-1] != 'd' {
		return newValidationError(
			"naming template %q placeholder %q is not an integer placeholder",
			nameFmt, verbs[0],
		)
	}

	return nil
}

// absPath makes a path absolute, relative paths resolved against the cwd.
func absPath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}

	return abs
}

// formatContigName applies the naming template to a 1-based contig index.
func formatContigName(nameFmt string, index int) string {
	return fmt.Sprintf(nameFmt, index)
}
