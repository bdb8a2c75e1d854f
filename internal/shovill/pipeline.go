package shovill

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kristyhoran/shovill-1/config"
)

// stage is one state of the sequential pipeline state machine.
type stage int

const (
	stageReadPreprocess stage = iota
	stageCorrect
	stageOverlap
	stageAssemble
	stagePolish
	stageDone
	stageFailed
)

// String names a stage for logs and StageErrors.
func (s stage) String() string {
	switch s {
	case stageReadPreprocess:
		return "ReadPreprocess"
	case stageCorrect:
		return "Correct"
	case stageOverlap:
		return "Overlap"
	case stageAssemble:
		return "Assemble"
	case stagePolish:
		return "Polish"
	case stageDone:
		return "Done"
	case stageFailed:
		return "Failed"
	}

	return "Unknown"
}

// artifact is a file produced by one stage and consumed by a later one.
// Ownership passes to the pipeline, which hands it on by logical name rather
// than by filename convention.
type artifact struct {
	name string
	path string
}

// pipeline sequences the staged tool invocations. Stages run strictly one
// after another; the first non-zero exit fails the whole run with no retries
// and no rollback beyond what each tool leaves on disk.
type pipeline struct {
	flags *Flags
	conf  *config.Config
	log   *RunLog
	run   runner
	res   resources

	stats ReadStats
	gsize int
	kmers []int

	// the read pair before trimming/stitching, kept aside for polishing
	origR1 string
	origR2 string

	// per-run scratch directory for the assembler and sorter
	scratch string

	state     stage
	stageNum  int
	artifacts map[string]artifact
}

// newPipeline builds a pipeline over already-derived run parameters.
func newPipeline(
	flags *Flags,
	conf *config.Config,
	log *RunLog,
	run runner,
	res resources,
	stats ReadStats,
	gsize int,
	kmers []int,
	scratch string,
) *pipeline {
	return &pipeline{
		flags:     flags,
		conf:      conf,
		log:       log,
		run:       run,
		res:       res,
		stats:     stats,
		gsize:     gsize,
		kmers:     kmers,
		origR1:    flags.r1,
		origR2:    flags.r2,
		scratch:   scratch,
		state:     stageReadPreprocess,
		artifacts: make(map[string]artifact),
	}
}

// next is the state transition function. Polishing is skipped entirely when
// correction is disabled.
func (p *pipeline) next(s stage) stage {
	if s == stageAssemble && p.flags.noCorr {
		return stageDone
	}
	if s == stagePolish {
		return stageDone
	}

	return s + 1
}

// execute walks the state machine to Done, or to Failed on the first error.
func (p *pipeline) execute() error {
	handlers := map[stage]func() error{
		stageReadPreprocess: p.readPreprocess,
		stageCorrect:        p.correct,
		stageOverlap:        p.overlap,
		stageAssemble:       p.assemble,
		stagePolish:         p.polish,
	}

	for p.state = stageReadPreprocess; p.state != stageDone; p.state = p.next(p.state) {
		if err := handlers[p.state](); err != nil {
			p.state = stageFailed
			return err
		}
	}

	return nil
}

// put registers a stage's output under its logical name.
func (p *pipeline) put(name, path string) {
	p.artifacts[name] = artifact{name: name, path: path}
}

// get hands an earlier stage's output to the caller.
func (p *pipeline) get(name string) string {
	return p.artifacts[name].path
}

// stageLog reserves the next numbered log file for a tool's output.
func (p *pipeline) stageLog(tool string) string {
	p.stageNum++
	return filepath.Join(p.flags.outdir, fmt.Sprintf("%02d-%s.log", p.stageNum, tool))
}

// readPreprocess produces the canonical working read pair: trimmed copies
// when trimming is on, symbolic references to the inputs otherwise.
func (p *pipeline) readPreprocess() error {
	ext := ".fq"
	if strings.HasSuffix(p.flags.r1, ".gz") {
		ext = ".fq.gz"
	}
	r1 := filepath.Join(p.flags.outdir, "R1"+ext)
	r2 := filepath.Join(p.flags.outdir, "R2"+ext)

	if p.flags.trim {
		p.log.Printf("Trimming adapters from the reads")

		args := []string{
			"PE",
			"-threads", strconv.Itoa(p.res.cpus),
			"-phred33",
			p.flags.r1, p.flags.r2,
			r1, os.DevNull,
			r2, os.DevNull,
			"ILLUMINACLIP:" + p.conf.Read.Adapters + ":2:30:10",
			"MINLEN:30",
			"TOPHRED33",
		}
		if p.flags.trimOpt != "" {
			args = append(args, strings.Fields(p.flags.trimOpt)...)
		}

		if err := p.run.run(p.state.String(), "trimmomatic", args, p.stageLog("trimmomatic")); err != nil {
			return err
		}
	} else {
		p.log.Printf("Skipping adapter trimming")

		for _, link := range []struct{ src, dst string }{
			{absPath(p.flags.r1), r1},
			{absPath(p.flags.r2), r2},
		} {
			os.Remove(link.dst)
			if err := os.Symlink(link.src, link.dst); err != nil {
				return fmt.Errorf("failed to reference reads %s: %v", link.src, err)
			}
		}
	}

	p.put("R1", r1)
	p.put("R2", r2)

	return nil
}

// correct runs the read error-corrector over the working pair, bounded to one
// correction pass per read.
func (p *pipeline) correct() error {
	p.log.Printf("Correcting reads against a %d bp genome", p.gsize)

	args := []string{
		"-od", p.flags.outdir,
		"-r", p.get("R1"),
		"-r", p.get("R2"),
		"-K", strconv.Itoa(p.conf.Correction.Kmer), strconv.Itoa(p.gsize),
		"-t", strconv.Itoa(p.res.cpus),
		"-maxcor", strconv.Itoa(p.conf.Correction.MaxPerRead),
	}

	if err := p.run.run(p.state.String(), "lighter", args, p.stageLog("lighter")); err != nil {
		return err
	}

	p.put("C1", correctedName(p.flags.outdir, p.get("R1")))
	p.put("C2", correctedName(p.flags.outdir, p.get("R2")))

	return nil
}

// correctedName is where the corrector writes its copy of a read file.
func correctedName(outdir, reads string) string {
	base := strings.Replace(filepath.Base(reads), ".fq", ".cor.fq", 1)
	return filepath.Join(outdir, base)
}

// overlap stitches overlapping mates into single longer pseudo-reads. The
// maximum overlap is the longest observed read; the minimum is fixed.
func (p *pipeline) overlap() error {
	p.log.Printf("Stitching overlapping read pairs")

	args := []string{
		"-m", strconv.Itoa(p.conf.Overlap.MinLength),
		"-M", strconv.Itoa(p.stats.MaxLen),
		"-d", p.flags.outdir,
		"-o", "flash",
		"-z",
		"-t", strconv.Itoa(p.res.cpus),
		p.get("C1"),
		p.get("C2"),
	}

	if err := p.run.run(p.state.String(), "flash", args, p.stageLog("flash")); err != nil {
		return err
	}

	p.put("merged", filepath.Join(p.flags.outdir, "flash.extendedFrags.fastq.gz"))
	p.put("NC1", filepath.Join(p.flags.outdir, "flash.notCombined_1.fastq.gz"))
	p.put("NC2", filepath.Join(p.flags.outdir, "flash.notCombined_2.fastq.gz"))

	return nil
}

// assemble runs the assembler in assembler-only mode over the not-combined
// pair plus the stitched reads, with the derived k-mer list and the run's
// resource ceilings.
func (p *pipeline) assemble() error {
	p.log.Printf("Assembling with k-mer sizes %s", joinKmers(p.kmers))

	asmDir := filepath.Join(p.flags.outdir, "spades")
	args := []string{
		"-1", p.get("NC1"),
		"-2", p.get("NC2"),
		"--merged", p.get("merged"),
		"-o", asmDir,
		"--only-assembler",
		"--threads", strconv.Itoa(p.res.cpus),
		"--memory", strconv.Itoa(p.res.ramGB),
		"-k", joinKmers(p.kmers),
		"--tmp-dir", p.scratch,
	}
	if p.flags.opts != "" {
		args = append(args, strings.Fields(p.flags.opts)...)
	}

	if err := p.run.run(p.state.String(), "spades.py", args, p.stageLog("spades")); err != nil {
		return err
	}

	p.put("before_rr", filepath.Join(asmDir, "before_rr.fasta"))
	p.put("contigs", filepath.Join(asmDir, "contigs.fasta"))
	p.put("scaffolds", filepath.Join(asmDir, "scaffolds.fasta"))
	p.put("graph", filepath.Join(asmDir, "assembly_graph_with_scaffolds.gfa"))
	p.put("final", p.get(p.flags.variant))

	return nil
}

// polish maps the original read pair back onto the chosen assembly product
// and corrects the errors that trimming and stitching masked from the
// assembler. The pre-polish assembly is kept under a renamed backup.
func (p *pipeline) polish() error {
	p.log.Printf("Polishing the %s assembly with the original reads", p.flags.variant)

	ref := filepath.Join(p.flags.outdir, "shovill.fasta")
	if err := copyFile(p.get(p.flags.variant), ref); err != nil {
		return fmt.Errorf("failed to stage the assembly for polishing: %v", err)
	}

	if err := p.run.run(p.state.String(), "bwa", []string{"index", ref}, p.stageLog("bwa-index")); err != nil {
		return err
	}

	// the aligner pipes straight into the sorter; pipefail keeps an aligner
	// crash from hiding behind the sorter's exit status
	bam := filepath.Join(p.flags.outdir, "shovill.bam")
	align := fmt.Sprintf(
		"set -o pipefail; bwa mem -v 3 -x intractg -t %d %s %s %s | samtools sort --threads %d -m %dm -T %s -o %s",
		p.res.cpus, ref, p.origR1, p.origR2,
		p.res.sortCPUs, p.res.sortMB,
		filepath.Join(p.scratch, "samsort"), bam,
	)
	if err := p.run.run(p.state.String(), "bash", []string{"-c", align}, p.stageLog("bwa-mem")); err != nil {
		return err
	}

	if err := p.run.run(p.state.String(), "samtools", []string{"index", bam}, p.stageLog("samtools-index")); err != nil {
		return err
	}

	args := []string{
		"--genome", ref,
		"--frags", bam,
		"--outdir", p.flags.outdir,
		"--output", "pilon",
		"--fix", "bases",
		"--changes",
		"--threads", strconv.Itoa(p.res.cpus),
		"--mindepth", "0.25",
	}
	if err := p.run.run(p.state.String(), "pilon", args, p.stageLog("pilon")); err != nil {
		return err
	}

	// keep the unpolished assembly before replacing it
	if err := os.Rename(ref, filepath.Join(p.flags.outdir, "shovill.unpolished.fasta")); err != nil {
		return fmt.Errorf("failed to back up the unpolished assembly: %v", err)
	}
	if err := copyFile(filepath.Join(p.flags.outdir, "pilon.fasta"), ref); err != nil {
		return fmt.Errorf("failed to adopt the polished assembly: %v", err)
	}

	p.put("final", ref)
	p.put("changes", filepath.Join(p.flags.outdir, "pilon.changes"))

	return nil
}
