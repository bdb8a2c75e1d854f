package shovill

import (
	"fmt"
	"io/ioutil"
	"strings"
)

// ChangeLog maps each polished contig to the number of corrections made in
// it, plus a derived total for logging. It is built once from the polisher's
// change log and consumed once when the contigs are renamed.
type ChangeLog struct {
	Counts map[string]int
	Total  int
}

// parseChanges reads the polisher's structured change log.
//
// A correction row is "<contig>:<pos>[-<pos>] <contig>:<pos>[-<pos>] <old> <new>";
// the count is keyed by the second contig token, the post-polish identifier.
// Rows not matching the grammar are other annotations and are skipped, so an
// empty mapping just means no corrections were needed.
func parseChanges(path string) (ChangeLog, error) {
	changes := ChangeLog{Counts: make(map[string]int)}

	contents, err := ioutil.ReadFile(path)
	if err != nil {
		return changes, fmt.Errorf("failed to read change log %s: %v", path, err)
	}

	for _, line := range strings.Split(string(contents), "\n") {
		fields := strings.Fields(line)
		if len(fields) != 4 {
			continue
		}

		if contigToken(fields[0]) == "" {
			continue
		}
		polished := contigToken(fields[1])
		if polished == "" {
			continue
		}

		changes.Counts[polished]++
		changes.Total++
	}

	return changes, nil
}

// contigToken strips the ":<pos>[-<pos>]" suffix off a change-log coordinate,
// returning "" when the field isn't a coordinate at all.
func contigToken(field string) string {
	cut := strings.LastIndex(field, ":")
	if cut <= 0 || cut == len(field)-1 {
		return ""
	}

	for _, c := range field[cut+1:] {
		if (c < '0' || c > '9') && c != '-' {
			return ""
		}
	}

	return field[:cut]
}
