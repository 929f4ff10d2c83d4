// Package resume works out where an interrupted batch should continue by
// looking at the structure files a previous run left behind.
package resume

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/specialistvlad/proteindiff/internal/fsutil"
)

// AutoStart is the configured start index that requests a filesystem scan.
const AutoStart = -1

var indexPattern = regexp.MustCompile(`.*_(\d+)\.pdb$`)

// ParseIndex extracts the trailing design index from a structure file path.
func ParseIndex(path string) (int, bool) {
	m := indexPattern.FindStringSubmatch(path)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// NextIndex returns one past the highest parsable index, or 0 when no path
// parses. Unparsable paths are ignored.
func NextIndex(paths []string) int {
	highest := -1
	for _, p := range paths {
		if n, ok := ParseIndex(p); ok && n > highest {
			highest = n
		}
	}
	return highest + 1
}

// Scan lists prefix*.pdb and returns the next free design index.
func Scan(prefix string) (int, error) {
	paths, err := fsutil.FindFilesWithPrefix(prefix, ".pdb")
	if err != nil {
		return 0, fmt.Errorf("failed to scan existing designs for %q: %w", prefix, err)
	}
	return NextIndex(paths), nil
}

// ResolveStart returns configured unless it is AutoStart, in which case the
// output prefix is scanned.
func ResolveStart(configured int, prefix string) (int, error) {
	if configured != AutoStart {
		return configured, nil
	}
	return Scan(prefix)
}
