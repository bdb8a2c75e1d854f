package shovill

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/kristyhoran/shovill-1/config"
)

// digitSplitRegex splits a user k-mer list on any run of non-digits, so
// "31,51,71", "31 51 71" and "31-51-71" all parse the same way.
var digitSplitRegex = regexp.MustCompile(`[^0-9]+`)

// kmerList derives the ordered k-mer sizes for the assembler's multi-k mode,
// from the user's list when one was given and by heuristic otherwise.
func kmerList(userList string, avgLen int, c *config.Config) ([]int, error) {
	if userList != "" {
		return parseKmers(userList, avgLen, c)
	}

	return autoKmers(avgLen, c)
}

// parseKmers validates an explicit k-mer list against the global envelope and
// the read length. Failures name the violated bound.
func parseKmers(userList string, avgLen int, c *config.Config) ([]int, error) {
	var kmers []int
	for _, field := range digitSplitRegex.Split(userList, -1) {
		if field == "" {
			continue
		}

		k, err := strconv.Atoi(field)
		if err != nil {
			return nil, newValidationError("invalid k-mer %q in %q", field, userList)
		}

		if k > c.Kmer.Max {
			return nil, newValidationError("k-mer %d greater than the maximum %d", k, c.Kmer.Max)
		}
		if k < c.Kmer.Min {
			return nil, newValidationError("k-mer %d less than the minimum %d", k, c.Kmer.Min)
		}
		if k >= avgLen {
			return nil, newValidationError(
				"k-mer %d not less than the average read length %d", k, avgLen,
			)
		}

		kmers = append(kmers, k)
	}

	if len(kmers) == 0 {
		return nil, newValidationError("no k-mer sizes parsed from %q", userList)
	}

	return kmers, nil
}

// autoKmers derives a k-mer range from the average read length.
//
// The upper bound never exceeds a fixed fraction of the read length, since a
// k-mer must fit well inside a read to be useful to the assembler. Short
// reads get a lowered floor, otherwise the range would be too narrow or
// empty. The step is kept even so successive k values don't pair up
// odd/even in the assembler.
func autoKmers(avgLen int, c *config.Config) ([]int, error) {
	minK := c.Kmer.Min
	if avgLen < c.Kmer.ShortReadLength {
		minK = c.Kmer.ShortMin
	}

	maxK := int(c.Kmer.ReadFraction * float64(avgLen))
	if maxK > c.Kmer.Max {
		maxK = c.Kmer.Max
	}

	if maxK < minK {
		return nil, newValidationError(
			"read too short for assembly: average length %d caps k-mers at %d, below the minimum %d",
			avgLen, maxK, minK,
		)
	}

	step := (maxK - minK) / (c.Kmer.TargetCount - 1)
	if step < c.Kmer.MinStep {
		step = c.Kmer.MinStep
	}
	if step%2 == 1 {
		step++
	}

	var kmers []int
	for k := minK; k <= maxK; k += step {
		kmers = append(kmers, k)
	}

	return kmers, nil
}

// joinKmers renders a k-mer list the way the assembler's -k flag wants it.
func joinKmers(kmers []int) string {
	fields := make([]string, len(kmers))
	for i, k := range kmers {
		fields[i] = strconv.Itoa(k)
	}

	return strings.Join(fields, ",")
}
