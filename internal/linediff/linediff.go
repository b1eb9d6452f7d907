// Package linediff computes line-level comparisons for previewing note edits.
package linediff

import (
	"strings"

	"pkt.systems/nikiai/schema"
)

// Change is one line of an edit script.
// OriginalLine and NewLine are 1-based; zero means the line has no counterpart.
type Change struct {
	Type         schema.ChangeType
	OriginalLine int
	NewLine      int
	Content      string
}

// Result is the edit script turning an original text into a modified one.
type Result struct {
	Changes []Change
}

// Stats counts added and removed lines.
type Stats struct {
	Added   int
	Removed int
}

// Compute diffs original against modified line by line using a longest
// common subsequence table. On ties removed lines are emitted before added ones.
func Compute(original, modified string) Result {
	a := SplitLines(original)
	b := SplitLines(modified)
	m, n := len(a), len(b)

	dp := make([][]int, m+1)
	for i := range dp {
		dp[i] = make([]int, n+1)
	}
	for i := 1; i <= m; i++ {
		for j := 1; j <= n; j++ {
			if a[i-1] == b[j-1] {
				dp[i][j] = dp[i-1][j-1] + 1
			} else {
				dp[i][j] = max(dp[i-1][j], dp[i][j-1])
			}
		}
	}

	changes := make([]Change, 0, max(m, n))
	i, j := m, n
	for i > 0 && j > 0 {
		switch {
		case a[i-1] == b[j-1]:
			changes = append(changes, Change{Type: schema.ChangeUnchanged, OriginalLine: i, NewLine: j, Content: a[i-1]})
			i--
			j--
		case dp[i-1][j] > dp[i][j-1]:
			changes = append(changes, Change{Type: schema.ChangeRemoved, OriginalLine: i, Content: a[i-1]})
			i--
		default:
			changes = append(changes, Change{Type: schema.ChangeAdded, NewLine: j, Content: b[j-1]})
			j--
		}
	}
	for ; j > 0; j-- {
		changes = append(changes, Change{Type: schema.ChangeAdded, NewLine: j, Content: b[j-1]})
	}
	for ; i > 0; i-- {
		changes = append(changes, Change{Type: schema.ChangeRemoved, OriginalLine: i, Content: a[i-1]})
	}

	for l, r := 0, len(changes)-1; l < r; l, r = l+1, r-1 {
		changes[l], changes[r] = changes[r], changes[l]
	}
	return Result{Changes: changes}
}

// SplitLines tokenizes text on newlines. Empty text is a single empty line.
func SplitLines(text string) []string {
	return strings.Split(text, "\n")
}

// Stats counts added and removed lines in the result.
func (r Result) Stats() Stats {
	var stats Stats
	for _, change := range r.Changes {
		switch change.Type {
		case schema.ChangeAdded:
			stats.Added++
		case schema.ChangeRemoved:
			stats.Removed++
		}
	}
	return stats
}

// Changed reports whether any line was added or removed.
func (r Result) Changed() bool {
	for _, change := range r.Changes {
		if change.Type != schema.ChangeUnchanged {
			return true
		}
	}
	return false
}

// Original rebuilds the original text from the edit script.
func (r Result) Original() string {
	return r.join(schema.ChangeRemoved)
}

// Modified rebuilds the modified text from the edit script.
func (r Result) Modified() string {
	return r.join(schema.ChangeAdded)
}

func (r Result) join(side schema.ChangeType) string {
	lines := make([]string, 0, len(r.Changes))
	for _, change := range r.Changes {
		if change.Type == schema.ChangeUnchanged || change.Type == side {
			lines = append(lines, change.Content)
		}
	}
	return strings.Join(lines, "\n")
}
