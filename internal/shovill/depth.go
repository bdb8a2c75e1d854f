package shovill

import (
	"fmt"
	"math"
	"path/filepath"
	"strconv"
)

// DepthPlan is the depth normalization decision, computed once from the read
// statistics and the genome size. A zero Factor means the reads are deep
// enough to use as-is.
type DepthPlan struct {
	// measured sequencing depth, total bp over genome size
	Original int

	// user-requested depth, 0 when subsampling is disabled
	Target int

	// subsampling factor in (0, 1], 3-decimal precision; 0 when unused
	Factor float64
}

// planDepth computes the sequencing depth and decides whether to subsample.
//
// Reads beyond a saturation depth cost assembler time and memory without
// improving the assembly, so excess depth is subsampled away. The guard
// multiple keeps reads intact when the measured depth is already close to
// the target, where a near-1.0 factor would churn the files for nothing.
func planDepth(totalBP, gsize, target int, guard float64) DepthPlan {
	plan := DepthPlan{
		Original: totalBP / gsize,
		Target:   target,
	}

	if target > 0 && float64(plan.Original) > guard*float64(target) {
		factor := float64(target) / float64(plan.Original)
		plan.Factor = math.Round(factor*1000) / 1000
	}

	return plan
}

// subsample streams both mates through the sampler at the planned factor and
// swaps the working read references to the sampled copies.
func (p DepthPlan) subsample(r runner, flags *Flags) error {
	if p.Factor == 0 {
		return nil
	}

	factor := strconv.FormatFloat(p.Factor, 'f', 3, 64)
	for i, reads := range []string{flags.r1, flags.r2} {
		sampled := filepath.Join(flags.outdir, fmt.Sprintf("R%d.sub.fq", i+1))
		if err := r.redirect("seqtk", []string{"sample", reads, factor}, sampled); err != nil {
			return fmt.Errorf("failed to subsample %s: %v", reads, err)
		}

		if i == 0 {
			flags.r1 = sampled
		} else {
			flags.r2 = sampled
		}
	}

	return nil
}
