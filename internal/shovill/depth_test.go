package shovill

import (
	"path/filepath"
	"strings"
	"testing"
)

func Test_planDepth(t *testing.T) {
	type args struct {
		totalBP int
		gsize   int
		target  int
		guard   float64
	}
	tests := []struct {
		name string
		args args
		want DepthPlan
	}{
		{
			"subsample excess depth",
			args{totalBP: 150_000_000, gsize: 1_000_000, target: 100, guard: 1.1},
			DepthPlan{Original: 150, Target: 100, Factor: 0.667},
		},
		{
			"close to the target, leave alone",
			args{totalBP: 105_000_000, gsize: 1_000_000, target: 100, guard: 1.1},
			DepthPlan{Original: 105, Target: 100, Factor: 0},
		},
		{
			"exactly at the guard boundary, leave alone",
			args{totalBP: 110_000_000, gsize: 1_000_000, target: 100, guard: 1.1},
			DepthPlan{Original: 110, Target: 100, Factor: 0},
		},
		{
			"subsampling disabled",
			args{totalBP: 150_000_000, gsize: 1_000_000, target: 0, guard: 1.1},
			DepthPlan{Original: 150, Target: 0, Factor: 0},
		},
		{
			"shallow reads, leave alone",
			args{totalBP: 30_000_000, gsize: 1_000_000, target: 100, guard: 1.1},
			DepthPlan{Original: 30, Target: 100, Factor: 0},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := planDepth(tt.args.totalBP, tt.args.gsize, tt.args.target, tt.args.guard)
			if got != tt.want {
				t.Errorf("planDepth() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDepthPlan_subsample(t *testing.T) {
	outdir := t.TempDir()
	flags := &Flags{
		outdir: outdir,
		r1:     "reads_R1.fq.gz",
		r2:     "reads_R2.fq.gz",
	}
	run := &fakeRunner{}

	plan := DepthPlan{Original: 150, Target: 100, Factor: 0.667}
	if err := plan.subsample(run, flags); err != nil {
		t.Fatal(err)
	}

	if len(run.redirects) != 2 {
		t.Fatalf("subsample() made %d sampler calls, want 2", len(run.redirects))
	}
	for _, call := range run.redirects {
		if !strings.Contains(call, "seqtk sample") || !strings.Contains(call, "0.667") {
			t.Errorf("subsample() call = %q, want a seqtk sample at 0.667", call)
		}
	}

	if flags.r1 != filepath.Join(outdir, "R1.sub.fq") {
		t.Errorf("subsample() left r1 = %q", flags.r1)
	}
	if flags.r2 != filepath.Join(outdir, "R2.sub.fq") {
		t.Errorf("subsample() left r2 = %q", flags.r2)
	}
}

func TestDepthPlan_subsampleNoop(t *testing.T) {
	flags := &Flags{r1: "a.fq", r2: "b.fq"}
	run := &fakeRunner{}

	plan := DepthPlan{Original: 105, Target: 100}
	if err := plan.subsample(run, flags); err != nil {
		t.Fatal(err)
	}

	if len(run.redirects) != 0 {
		t.Errorf("subsample() made %d sampler calls, want 0", len(run.redirects))
	}
	if flags.r1 != "a.fq" || flags.r2 != "b.fq" {
		t.Errorf("subsample() touched the read references: %q %q", flags.r1, flags.r2)
	}
}
