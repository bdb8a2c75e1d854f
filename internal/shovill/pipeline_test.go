package shovill

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/kristyhoran/shovill-1/config"
)

// testPipeline wires a pipeline over temp dirs, real read files and a fake
// runner that fabricates the assembler's and polisher's products.
func testPipeline(t *testing.T, flags *Flags) (*pipeline, *fakeRunner) {
	t.Helper()

	flags.outdir = t.TempDir()
	flags.tmpDir = t.TempDir()

	readDir := t.TempDir()
	flags.r1 = filepath.Join(readDir, "reads_R1.fq.gz")
	flags.r2 = filepath.Join(readDir, "reads_R2.fq.gz")
	for _, p := range []string{flags.r1, flags.r2} {
		if err := ioutil.WriteFile(p, []byte("@r\nACGT\n+\nIIII\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if flags.nameFmt == "" {
		flags.nameFmt = "contig%05d"
	}
	if flags.variant == "" {
		flags.variant = "contigs"
	}

	asmDir := filepath.Join(flags.outdir, "spades")
	run := &fakeRunner{
		creates: map[string][]string{
			"spades.py": {
				filepath.Join(asmDir, "before_rr.fasta"),
				filepath.Join(asmDir, "contigs.fasta"),
				filepath.Join(asmDir, "scaffolds.fasta"),
				filepath.Join(asmDir, "assembly_graph_with_scaffolds.gfa"),
			},
			"pilon": {
				filepath.Join(flags.outdir, "pilon.fasta"),
				filepath.Join(flags.outdir, "pilon.changes"),
			},
		},
	}

	c := config.New()
	res := resources{cpus: 4, ramGB: 8, sortCPUs: 1, sortMB: 2048}
	stats := ReadStats{MinLen: 35, MaxLen: 151, AvgLen: 150, TotalBP: 1_000_000}

	return newPipeline(flags, c, NewRunLog(""), run, res, stats, 1_000_000, []int{31, 51, 71}, flags.tmpDir), run
}

func TestPipeline_execute(t *testing.T) {
	p, run := testPipeline(t, &Flags{})

	if err := p.execute(); err != nil {
		t.Fatal(err)
	}

	want := []string{"lighter", "flash", "spades.py", "bwa", "bash", "samtools", "pilon"}
	if !reflect.DeepEqual(run.calls, want) {
		t.Errorf("execute() ran %v, want %v", run.calls, want)
	}
	if p.state != stageDone {
		t.Errorf("execute() finished in state %v, want Done", p.state)
	}

	// the canonical pair is symbolic references when trimming is off
	if _, err := os.Lstat(filepath.Join(p.flags.outdir, "R1.fq.gz")); err != nil {
		t.Errorf("execute() left no canonical first mate: %v", err)
	}

	// polishing adopts the assembly and backs up the unpolished copy
	if p.get("final") != filepath.Join(p.flags.outdir, "shovill.fasta") {
		t.Errorf("execute() final artifact = %q", p.get("final"))
	}
	if _, err := os.Stat(filepath.Join(p.flags.outdir, "shovill.unpolished.fasta")); err != nil {
		t.Errorf("execute() kept no unpolished backup: %v", err)
	}
	if p.get("changes") != filepath.Join(p.flags.outdir, "pilon.changes") {
		t.Errorf("execute() changes artifact = %q", p.get("changes"))
	}
}

func TestPipeline_executeNoPolish(t *testing.T) {
	p, run := testPipeline(t, &Flags{noCorr: true})

	if err := p.execute(); err != nil {
		t.Fatal(err)
	}

	want := []string{"lighter", "flash", "spades.py"}
	if !reflect.DeepEqual(run.calls, want) {
		t.Errorf("execute() ran %v, want %v", run.calls, want)
	}

	// without polishing the final artifact is the assembler's product
	if p.get("final") != filepath.Join(p.flags.outdir, "spades", "contigs.fasta") {
		t.Errorf("execute() final artifact = %q", p.get("final"))
	}
}

func TestPipeline_executeTrim(t *testing.T) {
	p, run := testPipeline(t, &Flags{trim: true, noCorr: true})

	if err := p.execute(); err != nil {
		t.Fatal(err)
	}

	want := []string{"trimmomatic", "lighter", "flash", "spades.py"}
	if !reflect.DeepEqual(run.calls, want) {
		t.Errorf("execute() ran %v, want %v", run.calls, want)
	}
}

func TestPipeline_executeVariant(t *testing.T) {
	p, _ := testPipeline(t, &Flags{noCorr: true, variant: "scaffolds"})

	if err := p.execute(); err != nil {
		t.Fatal(err)
	}

	if p.get("final") != filepath.Join(p.flags.outdir, "spades", "scaffolds.fasta") {
		t.Errorf("execute() final artifact = %q, want the scaffolds product", p.get("final"))
	}
}

func TestPipeline_executeFailFast(t *testing.T) {
	p, run := testPipeline(t, &Flags{})
	run.failOn = "lighter"

	err := p.execute()
	if err == nil {
		t.Fatal("execute() expected the correction failure to propagate")
	}
	if p.state != stageFailed {
		t.Errorf("execute() finished in state %v, want Failed", p.state)
	}

	// nothing after the failing stage may run
	want := []string{"lighter"}
	if !reflect.DeepEqual(run.calls, want) {
		t.Errorf("execute() ran %v, want a stop at %v", run.calls, want)
	}
}

func TestPipeline_stageLogNumbering(t *testing.T) {
	p, _ := testPipeline(t, &Flags{})

	first := p.stageLog("lighter")
	second := p.stageLog("flash")

	if filepath.Base(first) != "01-lighter.log" {
		t.Errorf("stageLog() = %q, want 01-lighter.log", first)
	}
	if filepath.Base(second) != "02-flash.log" {
		t.Errorf("stageLog() = %q, want 02-flash.log", second)
	}
}

func Test_correctedName(t *testing.T) {
	type args struct {
		outdir string
		reads  string
	}
	tests := []struct {
		name string
		args args
		want string
	}{
		{
			"gzipped pair member",
			args{"/out", "/out/R1.fq.gz"},
			"/out/R1.cor.fq.gz",
		},
		{
			"plain fastq",
			args{"/out", "/elsewhere/R2.fq"},
			"/out/R2.cor.fq",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := correctedName(tt.args.outdir, tt.args.reads); got != tt.want {
				t.Errorf("correctedName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func Test_stageString(t *testing.T) {
	if stageReadPreprocess.String() != "ReadPreprocess" || stagePolish.String() != "Polish" {
		t.Error("stage names changed; StageErrors depend on them")
	}
}
