package shovill

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"
)

// covRegex pulls the coverage value the assembler embeds in every contig id,
// eg "NODE_1_length_52432_cov_8.5".
var covRegex = regexp.MustCompile(`cov_([0-9]*\.?[0-9]+)`)

// contig is one assembled sequence parsed from the final FASTA. The original
// id is retained as metadata after renaming.
type contig struct {
	// assembler-assigned identifier, up to the first whitespace
	id string

	// concatenated sequence, wrap-agnostic
	seq string

	// coverage parsed from the id
	cov float64

	// corrections made in this contig during polishing
	corr int

	// identifier and description assigned by renaming
	newID string
	desc  string
}

// readContigs parses the final assembly FASTA. A contig id without an
// embedded coverage token breaks the assembler's format contract and is
// fatal.
func readContigs(path string) ([]*contig, error) {
	in, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open assembly %s: %v", path, err)
	}
	defer in.Close()

	var contigs []*contig
	sc := seqio.NewScanner(fasta.NewReader(in, linear.NewSeq("", nil, alphabet.DNA)))
	for sc.Next() {
		s := sc.Seq().(*linear.Seq)

		match := covRegex.FindStringSubmatch(s.ID)
		if match == nil {
			return nil, &ParseError{
				tool: "assembler FASTA",
				text: s.ID,
				msg:  "contig id has no cov_ token",
			}
		}
		cov, err := strconv.ParseFloat(match[1], 64)
		if err != nil {
			return nil, &ParseError{
				tool: "assembler FASTA",
				text: s.ID,
				msg:  "cov_ token is not a number",
			}
		}

		contigs = append(contigs, &contig{
			id:  s.ID,
			seq: string(alphabet.LettersToBytes(s.Seq)),
			cov: cov,
		})
	}
	if err := sc.Error(); err != nil {
		return nil, fmt.Errorf("failed to parse assembly %s: %v", path, err)
	}

	return contigs, nil
}

// filterContigs applies the length and coverage thresholds and renames the
// survivors through the configured template.
//
// This is the selection pass: contigs are visited longest-first (stable on
// ties) so the longest survivor claims index 1. The new identifier embeds the
// index; length, coverage, correction count and the original id follow as
// metadata.
func filterContigs(contigs []*contig, changes ChangeLog, minLen int, minCov float64, nameFmt string, log *RunLog) []*contig {
	sorted := make([]*contig, len(contigs))
	copy(sorted, contigs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].seq) > len(sorted[j].seq)
	})

	var kept []*contig
	for _, c := range sorted {
		if len(c.seq) < minLen {
			log.Printf("Dropping short contig %s (%d bp)", c.id, len(c.seq))
			continue
		}
		if c.cov < minCov {
			log.Printf("Dropping low-coverage contig %s (%.1fx)", c.id, c.cov)
			continue
		}

		c.corr = changes.Counts[c.id]
		c.newID = formatContigName(nameFmt, len(kept)+1)
		c.desc = fmt.Sprintf("len=%d cov=%.1f corr=%d origname=%s", len(c.seq), c.cov, c.corr, c.id)
		kept = append(kept, c)
	}

	return kept
}

// writeContigs serializes the surviving contigs.
//
// This is the serialization pass, deliberately a different sort key than
// selection: records are written in ascending order of their new identifier,
// wrapped at the configured column width.
func writeContigs(path string, contigs []*contig, width int) error {
	sorted := make([]*contig, len(contigs))
	copy(sorted, contigs)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].newID < sorted[j].newID
	})

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create contig output %s: %v", path, err)
	}
	defer out.Close()

	w := fasta.NewWriter(out, width)
	for _, c := range sorted {
		s := linear.NewSeq(c.newID, alphabet.BytesToLetters([]byte(c.seq)), alphabet.DNA)
		s.Desc = c.desc
		if _, err := w.Write(s); err != nil {
			return fmt.Errorf("failed to write contig %s: %v", c.newID, err)
		}
	}

	return nil
}

// totalBases sums the retained contig lengths.
func totalBases(contigs []*contig) int {
	total := 0
	for _, c := range contigs {
		total += len(c.seq)
	}

	return total
}
