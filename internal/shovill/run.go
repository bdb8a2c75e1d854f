package shovill

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/google/uuid"
	"github.com/kristyhoran/shovill-1/config"
	"github.com/spf13/cobra"
)

// RunCmd takes a cobra command (with its flags) and runs Assemble.
func RunCmd(cmd *cobra.Command, args []string) {
	Assemble(parseCmdFlags(cmd, args))
}

// Assemble is an end to end assembly: derive the run parameters from the
// reads, sequence the tool chain, and post-process the contigs.
func Assemble(flags *Flags, conf *config.Config) {
	machineRAM, err := machineRAMGB()
	if err != nil {
		machineRAM = 0 // introspection failed; skip the RAM sufficiency check
	}
	if err := flags.validate(runtime.NumCPU(), machineRAM); err != nil {
		stderr.Fatalln(err)
	}

	if err := makeOutdir(flags.outdir, flags.force); err != nil {
		stderr.Fatalln(err)
	}

	log := NewRunLog(filepath.Join(flags.outdir, "shovill.log"))
	defer log.Flush()

	// a per-run scratch namespace so concurrent runs can share a tmpdir
	scratch := filepath.Join(flags.tmpDir, "shovill-"+uuid.New().String())
	if err := os.MkdirAll(scratch, 0755); err != nil {
		log.Fatalf("failed to create scratch directory %s: %v", scratch, err)
	}
	defer os.RemoveAll(scratch)

	run := &shellRunner{verbose: conf.Verbose}
	res := newResources(flags.cpus, flags.ram, conf)
	log.Printf("Using %d threads, %d GB RAM (%d sort threads at %d MB each)",
		res.cpus, res.ramGB, res.sortCPUs, res.sortMB)

	stats, err := readStats(run, flags.r1, conf.Read.QualityCutoff)
	if err != nil {
		log.Fatalf("%v", err)
	}
	log.Printf("Read lengths: min %d, avg %d, max %d; %d bp total",
		stats.MinLen, stats.AvgLen, stats.MaxLen, stats.TotalBP)

	gsize, err := genomeSize(run, flags, res, scratch, conf)
	if err != nil {
		log.Fatalf("%v", err)
	}
	log.Printf("Estimated genome size: %d bp", gsize)

	plan := planDepth(stats.TotalBP, gsize, flags.depth, conf.Depth.Guard)
	log.Printf("Estimated sequencing depth: %dx", plan.Original)
	if plan.Factor > 0 {
		log.Printf("Subsampling reads by %.3f toward %dx depth", plan.Factor, plan.Target)
		if err := plan.subsample(run, flags); err != nil {
			log.Fatalf("%v", err)
		}
	} else if plan.Target > 0 {
		log.Printf("Depth close enough to %dx, not subsampling", plan.Target)
	}

	kmers, err := kmerList(flags.kmers, stats.AvgLen, conf)
	if err != nil {
		log.Fatalf("%v", err)
	}

	p := newPipeline(flags, conf, log, run, res, stats, gsize, kmers, scratch)
	if err := p.execute(); err != nil {
		log.Fatalf("%v", err)
	}

	changes := ChangeLog{Counts: make(map[string]int)}
	if !flags.noCorr {
		if changes, err = parseChanges(p.get("changes")); err != nil {
			log.Fatalf("%v", err)
		}
		log.Printf("Polishing made %d corrections", changes.Total)
	}

	contigs, err := readContigs(p.get("final"))
	if err != nil {
		log.Fatalf("%v", err)
	}
	kept := filterContigs(contigs, changes, flags.minLen, flags.minCov, flags.nameFmt, log)

	contigPath := filepath.Join(flags.outdir, "contigs.fa")
	if err := writeContigs(contigPath, kept, conf.Output.FastaWidth); err != nil {
		log.Fatalf("%v", err)
	}
	if err := copyFile(p.get("graph"), filepath.Join(flags.outdir, "contigs.gfa")); err != nil {
		log.Fatalf("failed to keep the assembly graph: %v", err)
	}
	log.Printf("Kept %d of %d contigs, %d bp, in %s", len(kept), len(contigs), totalBases(kept), contigPath)

	if !flags.keepFiles {
		cleanup(flags.outdir, log)
	}

	log.Printf("Done")
}

// makeOutdir creates the output directory, replacing an existing one only
// when the user forces it.
func makeOutdir(outdir string, force bool) error {
	if _, err := os.Stat(outdir); err == nil {
		if !force {
			return newValidationError("output directory %s already exists: use --force to overwrite", outdir)
		}

		if err := os.RemoveAll(outdir); err != nil {
			return newValidationError("failed to clear output directory %s: %v", outdir, err)
		}
	}

	if err := os.MkdirAll(outdir, 0755); err != nil {
		return newValidationError("failed to create output directory %s: %v", outdir, err)
	}

	return nil
}

// cleanup removes the intermediate files the stages handed each other. Stage
// logs and the final outputs stay.
func cleanup(outdir string, log *RunLog) {
	patterns := []string{
		"R1.fq*", "R2.fq*", "R?.sub.fq",
		"R?.cor.fq*", "R?.sub.cor.fq*",
		"flash.*",
		"shovill.bam*", "shovill.fasta.*",
		"pilon.fasta",
	}

	removed := 0
	for _, pattern := range patterns {
		files, _ := filepath.Glob(filepath.Join(outdir, pattern))
		for _, file := range files {
			if os.Remove(file) == nil {
				removed++
			}
		}
	}
	if err := os.RemoveAll(filepath.Join(outdir, "spades")); err == nil {
		removed++
	}

	log.Printf("Removed %d intermediate files", removed)
}
