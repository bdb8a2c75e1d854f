package shovill

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ReadStats are summary statistics of the input reads, measured once from the
// first mate before anything else runs and read-only after that.
type ReadStats struct {
	// shortest, longest and average read length in bp
	MinLen int
	MaxLen int
	AvgLen int

	// total bases across both mates
	TotalBP int
}

// tagged length fields on the report's header line, eg "min_len: 35;"
var (
	minLenRegex = regexp.MustCompile(`min_len: *([0-9.]+);`)
	maxLenRegex = regexp.MustCompile(`max_len: *([0-9.]+);`)
	avgLenRegex = regexp.MustCompile(`avg_len: *([0-9.]+);`)
)

// readStats runs the quality report over the first mate and parses it.
// Base-quality threshold is fixed; see config.Read.QualityCutoff.
func readStats(r runner, r1 string, qualityCutoff int) (ReadStats, error) {
	output, err := r.capture("seqtk", []string{
		"fqchk",
		"-q" + strconv.Itoa(qualityCutoff),
		r1,
	})
	if err != nil {
		return ReadStats{}, err
	}

	return parseFqchk(output)
}

// parseFqchk reads the quality report's text output into ReadStats.
//
// The expected grammar is a hard contract: a line carrying the three tagged
// length fields, and a later row whose first field is ALL and whose first
// numeric column is the total base count. The count covers one mate only, so
// TotalBP doubles it to approximate the pair.
func parseFqchk(output string) (ReadStats, error) {
	stats := ReadStats{}
	haveLens := false

	for _, line := range strings.Split(output, "\n") {
		minMatch := minLenRegex.FindStringSubmatch(line)
		maxMatch := maxLenRegex.FindStringSubmatch(line)
		avgMatch := avgLenRegex.FindStringSubmatch(line)

		if minMatch != nil || maxMatch != nil || avgMatch != nil {
			if minMatch == nil || maxMatch == nil || avgMatch == nil {
				return ReadStats{}, &ParseError{
					tool: "seqtk fqchk",
					text: line,
					msg:  "length line missing a min_len/max_len/avg_len tag",
				}
			}

			stats.MinLen = roundField(minMatch[1])
			stats.MaxLen = roundField(maxMatch[1])
			stats.AvgLen = roundField(avgMatch[1])
			haveLens = true
			continue
		}

		fields := strings.Fields(line)
		if len(fields) > 1 && fields[0] == "ALL" {
			bases, err := strconv.Atoi(fields[1])
			if err != nil || bases <= 0 {
				return ReadStats{}, &ParseError{
					tool: "seqtk fqchk",
					text: line,
					msg:  "ALL row has no positive base count",
				}
			}
			stats.TotalBP = 2 * bases
		}
	}

	if !haveLens {
		return ReadStats{}, &ParseError{
			tool: "seqtk fqchk",
			text: output,
			msg:  "no line with min_len/max_len/avg_len tags",
		}
	}
	if stats.TotalBP == 0 {
		return ReadStats{}, &ParseError{
			tool: "seqtk fqchk",
			text: output,
			msg:  "no ALL row with a total base count",
		}
	}
	if stats.MinLen > stats.AvgLen || stats.AvgLen > stats.MaxLen {
		return ReadStats{}, &ParseError{
			tool: "seqtk fqchk",
			text: output,
			msg:  "length fields violate min <= avg <= max",
		}
	}

	return stats, nil
}

// roundField parses a possibly fractional report field to the nearest int.
func roundField(field string) int {
	value, err := strconv.ParseFloat(field, 64)
	if err != nil {
		return 0
	}

	return int(math.Round(value))
}
