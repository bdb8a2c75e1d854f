package shovill

import (
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"
)

func Test_inputParser_checkNameFormat(t *testing.T) {
	type args struct {
		nameFmt string
	}
	tests := []struct {
		name    string
		args    args
		wantErr bool
	}{
		{"default template", args{"contig%05d"}, false},
		{"bare integer placeholder", args{"ctg%d"}, false},
		{"literal percent is not a placeholder", args{"100%%_%03d"}, false},
		{"no placeholder", args{"contig"}, true},
		{"two placeholders", args{"c%d-%d"}, true},
		{"string placeholder", args{"contig%s"}, true},
		{"only a literal percent", args{"contig%%"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := inputParser{}
			if err := p.checkNameFormat(tt.args.nameFmt); (err != nil) != tt.wantErr {
				t.Errorf("checkNameFormat(%q) error = %v, wantErr %v", tt.args.nameFmt, err, tt.wantErr)
			}
		})
	}
}

func Test_inputParser_checkVariant(t *testing.T) {
	p := inputParser{}

	for _, variant := range []string{"before_rr", "contigs", "scaffolds"} {
		if err := p.checkVariant(variant); err != nil {
			t.Errorf("checkVariant(%q) = %v, want nil", variant, err)
		}
	}

	if err := p.checkVariant("plasmids"); err == nil {
		t.Error("checkVariant(plasmids) expected an error")
	}
}

func TestFlags_validate(t *testing.T) {
	dir := t.TempDir()
	r1 := filepath.Join(dir, "reads_R1.fq")
	r2 := filepath.Join(dir, "reads_R2.fq")
	for _, p := range []string{r1, r2} {
		if err := ioutil.WriteFile(p, []byte("@r1\nACGT\n+\nIIII\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	good := Flags{
		r1: r1, r2: r2,
		cpus: 4, ram: 8,
		nameFmt: "contig%05d",
		variant: "contigs",
	}

	tests := []struct {
		name    string
		mutate  func(f *Flags)
		wantErr string
	}{
		{
			"valid flags",
			func(f *Flags) {},
			"",
		},
		{
			"missing read file",
			func(f *Flags) { f.r1 = filepath.Join(dir, "nope.fq") },
			"failed to find read file",
		},
		{
			"unknown assembly product",
			func(f *Flags) { f.variant = "plasmids" },
			"unknown assembly product",
		},
		{
			"bad naming template",
			func(f *Flags) { f.nameFmt = "contig" },
			"naming template",
		},
		{
			"more cpus than the machine",
			func(f *Flags) { f.cpus = 9999 },
			"cpus requested",
		},
		{
			"more RAM than the machine",
			func(f *Flags) { f.ram = 9999 },
			"RAM requested",
		},
		{
			"zero cpus",
			func(f *Flags) { f.cpus = 0 },
			"at least 1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := good
			tt.mutate(&f)

			err := f.validate(16, 32)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("validate() = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestFlags_validateSkipsRAMCheckWithoutIntrospection(t *testing.T) {
	dir := t.TempDir()
	r1 := filepath.Join(dir, "r1.fq")
	r2 := filepath.Join(dir, "r2.fq")
	for _, p := range []string{r1, r2} {
		if err := ioutil.WriteFile(p, []byte("@r\nA\n+\nI\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	f := Flags{
		r1: r1, r2: r2,
		cpus: 1, ram: 512,
		nameFmt: "contig%05d",
		variant: "contigs",
	}
	if err := f.validate(16, 0); err != nil {
		t.Errorf("validate() = %v, want the RAM check skipped when introspection fails", err)
	}
}
