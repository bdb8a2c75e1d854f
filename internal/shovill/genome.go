package shovill

import (
	"math"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/kristyhoran/shovill-1/config"
)

// gsizeRegex matches a genome size estimate like "4600000", "4600K" or "4.6M".
var gsizeRegex = regexp.MustCompile(`^([0-9]*\.?[0-9]+)([KkMmGg]?)$`)

// uniqueRegex pulls the trailing integer off the k-mer counter's
// "unique counted" summary line.
var uniqueRegex = regexp.MustCompile(`unique counted.*?([0-9]+)\s*$`)

// genomeSize returns the genome size in bp, either parsed from the user's
// estimate string or counted from the reads.
func genomeSize(r runner, flags *Flags, res resources, scratch string, c *config.Config) (int, error) {
	if flags.gsize != "" {
		return parseGenomeSize(flags.gsize)
	}

	return countGenomeSize(r, flags.r1, res, scratch, c)
}

// parseGenomeSize parses "<number><unit>" where the optional unit is one of
// K, M or G (case-insensitive). Anything else is rejected.
func parseGenomeSize(gsize string) (int, error) {
	match := gsizeRegex.FindStringSubmatch(strings.TrimSpace(gsize))
	if match == nil {
		return 0, newValidationError(
			"invalid genome size %q: expected a number with an optional K/M/G suffix, eg 4.6M",
			gsize,
		)
	}

	number, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0, newValidationError("invalid genome size %q: %v", gsize, err)
	}

	multiplier := 1.0
	switch strings.ToUpper(match[2]) {
	case "K":
		multiplier = 1e3
	case "M":
		multiplier = 1e6
	case "G":
		multiplier = 1e9
	}

	size := int(math.Round(number * multiplier))
	if size <= 0 {
		return 0, newValidationError("invalid genome size %q: must be positive", gsize)
	}

	return size, nil
}

// countGenomeSize estimates the genome size as the number of unique k-mers in
// the first mate. Low-multiplicity k-mers are cut off to suppress noise from
// sequencing errors; see config.Count.MinMultiplicity.
func countGenomeSize(r runner, r1 string, res resources, scratch string, c *config.Config) (int, error) {
	output, err := r.capture("kmc", []string{
		"-sm",
		"-m" + strconv.Itoa(res.ramGB),
		"-t" + strconv.Itoa(res.cpus),
		"-k" + strconv.Itoa(c.Count.Kmer),
		"-ci" + strconv.Itoa(c.Count.MinMultiplicity),
		r1,
		filepath.Join(scratch, "kmc"),
		scratch,
	})
	if err != nil {
		return 0, err
	}

	return parseKmcOutput(output)
}

// parseKmcOutput locates the "unique counted" summary line and takes its
// trailing integer as the genome size.
func parseKmcOutput(output string) (int, error) {
	for _, line := range strings.Split(output, "\n") {
		if !strings.Contains(line, "unique counted") {
			continue
		}

		match := uniqueRegex.FindStringSubmatch(line)
		if match == nil {
			return 0, &ParseError{
				tool: "kmc",
				text: line,
				msg:  "unique counted line has no trailing integer",
			}
		}

		size, err := strconv.Atoi(match[1])
		if err != nil || size <= 0 {
			return 0, &ParseError{
				tool: "kmc",
				text: line,
				msg:  "unique counted value is not a positive integer",
			}
		}

		return size, nil
	}

	return 0, &ParseError{
		tool: "kmc",
		text: output,
		msg:  "no line containing \"unique counted\"",
	}
}
