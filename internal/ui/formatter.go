package ui

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"

	"trxr/internal/discovery"
	"trxr/internal/domain"
)

// unknownFile groups failures whose code base is not known
const unknownFile = "(unknown file)"

// Formatter formats and displays run summaries
type Formatter struct {
	out    io.Writer
	filter *discovery.Filter
}

// NewFormatter creates a new Formatter writing to out
func NewFormatter(out io.Writer) *Formatter {
	return &Formatter{
		out:    out,
		filter: discovery.NewFilter(),
	}
}

// PrintSummary prints the statistics table and, when there are failures, the
// failed tests grouped by file. pattern narrows the tree to matching test names.
func (f *Formatter) PrintSummary(summary *domain.RunSummary, pattern string) {
	cyan := color.New(color.FgCyan)
	cyan.Fprintln(f.out, "\n╔═══════════════════════════════════════════════════════════════╗")
	cyan.Fprintln(f.out, "║                     Test Run Statistics                       ║")
	cyan.Fprintln(f.out, "╚═══════════════════════════════════════════════════════════════╝")

	c := summary.Counters
	rows := []struct {
		label string
		value string
		attr  color.Attribute
	}{
		{"Run", summary.Run.Name, color.FgWhite},
		{"Execution", summary.Run.ExecutionID, color.FgWhite},
		{"Total", fmt.Sprint(c.Total), color.FgWhite},
		{"Passed", fmt.Sprint(c.Passed), color.FgGreen},
		{"Failed", fmt.Sprint(c.Failed), color.FgRed},
		{"Timed out", fmt.Sprint(c.Timeout), color.FgRed},
		{"Not executed", fmt.Sprint(c.NotExecuted), color.FgYellow},
		{"Pending", fmt.Sprint(c.Pending), color.FgYellow},
		{"Excluded pending", fmt.Sprint(summary.Excluded), color.FgYellow},
		{"Duration", runDuration(summary.Run), color.FgWhite},
	}

	fmt.Fprintln(f.out, "┌─────────────────────┬─────────────────────────────────────────┐")
	for i, row := range rows {
		fmt.Fprintf(f.out, "│ %-19s │ ", row.label)
		color.New(row.attr).Fprintf(f.out, "%-39s", truncate(row.value, 39))
		fmt.Fprintln(f.out, " │")
		if i < len(rows)-1 {
			fmt.Fprintln(f.out, "├─────────────────────┼─────────────────────────────────────────┤")
		}
	}
	fmt.Fprintln(f.out, "└─────────────────────┴─────────────────────────────────────────┘")

	if summary.ReportPath != "" {
		fmt.Fprintf(f.out, "Report: %s\n", summary.ReportPath)
	}
	fmt.Fprintln(f.out)

	if !summary.HasFailures() {
		color.New(color.FgGreen).Fprintln(f.out, "✓ All tests passed!")
		return
	}

	color.New(color.FgRed).Fprintf(f.out, "✗ %d test(s) failed, %d timed out\n\n", c.Failed, c.Timeout)
	f.PrintFailureTree(f.selectFailures(summary.Failures, pattern))
}

// TreeNode represents a directory, file or test in the failure tree
type TreeNode struct {
	Name     string
	Children map[string]*TreeNode
	Failures []domain.FailedEntry
	IsFile   bool
}

// BuildFailureTree groups failures by the path segments of their code base
func BuildFailureTree(failures []domain.FailedEntry) *TreeNode {
	root := newTreeNode("", false)
	for _, failure := range failures {
		path := failure.CodeBase
		if path == "" || path == "none" {
			path = unknownFile
		}
		parts := strings.Split(strings.TrimPrefix(path, "./"), "/")

		current := root
		for i, part := range parts {
			if part == "" {
				continue
			}
			child, ok := current.Children[part]
			if !ok {
				child = newTreeNode(part, i == len(parts)-1)
				current.Children[part] = child
			}
			current = child
		}
		current.Failures = append(current.Failures, failure)
	}
	return root
}

// PrintFailureTree prints failed tests below the file that contains them
func (f *Formatter) PrintFailureTree(failures []domain.FailedEntry) {
	if len(failures) == 0 {
		return
	}
	f.printTreeNode(BuildFailureTree(failures), "")
}

func (f *Formatter) printTreeNode(node *TreeNode, prefix string) {
	keys := make([]string, 0, len(node.Children))
	for key := range node.Children {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for i, key := range keys {
		child := node.Children[key]
		last := i == len(keys)-1

		connector, indent := "├── ", "│   "
		if last {
			connector, indent = "└── ", "    "
		}

		if child.IsFile {
			color.New(color.FgYellow).Fprintf(f.out, "%s%s%s\n", prefix, connector, child.Name)
		} else {
			color.New(color.FgCyan).Fprintf(f.out, "%s%s%s\n", prefix, connector, child.Name)
		}

		for j, failure := range child.Failures {
			leaf := "├── "
			if j == len(child.Failures)-1 && len(child.Children) == 0 {
				leaf = "└── "
			}
			marker := ""
			if failure.Resolved {
				marker = " ✓"
			}
			color.New(color.FgRed).Fprintf(f.out, "%s%s%s%s\n", prefix+indent, leaf, failure.TestName, marker)
		}

		f.printTreeNode(child, prefix+indent)
	}
}

func (f *Formatter) selectFailures(failures []domain.FailedEntry, pattern string) []domain.FailedEntry {
	if pattern == "" {
		return failures
	}

	names := make([]string, 0, len(failures))
	for _, failure := range failures {
		names = append(names, failure.TestName)
	}
	keep := make(map[string]bool)
	for _, name := range f.filter.FilterByName(names, pattern) {
		keep[name] = true
	}

	var selected []domain.FailedEntry
	for _, failure := range failures {
		if keep[failure.TestName] {
			selected = append(selected, failure)
		}
	}
	return selected
}

func newTreeNode(name string, isFile bool) *TreeNode {
	return &TreeNode{Name: name, Children: make(map[string]*TreeNode), IsFile: isFile}
}

func runDuration(run domain.RunMetadata) string {
	if run.Start.IsZero() || run.Finish.IsZero() {
		return "-"
	}
	return run.Finish.Sub(run.Start).String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
