// Package markdown is a Taskell-compatible codec for a whole board: a
// deterministic exporter and a line-oriented parser that round-trips
// its output (§4.7).
package markdown

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kabanhq/kaban/internal/types"
)

// ExportOptions controls what the exporter emits beyond the bare
// title/column structure.
type ExportOptions struct {
	IncludeMetadata bool // emit the "<!-- id:... -->" trailer on each task title
	IncludeArchived bool
}

// BoardView is everything Export needs about a board: its name and,
// per column (already in display order), the tasks to render (already
// sorted by position).
type BoardView struct {
	Name    string
	Columns []ColumnView
}

// ColumnView is one column and its tasks, in the order Export should
// render them.
type ColumnView struct {
	Column types.Column
	Tasks  []*types.Task
}

// Export serialises board to the Taskell-compatible grammar: `# name`
// header, `## column` sections with WIP/terminal metadata comments, and
// `- title` task items with 4-space-indented sub-lines for date, labels,
// assignee, and description.
func Export(board BoardView, opts ExportOptions) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", board.Name)

	for _, col := range board.Columns {
		fmt.Fprintf(&b, "## %s\n\n", col.Column.Name)
		if col.Column.WIPLimit > 0 {
			fmt.Fprintf(&b, "<!-- WIP Limit: %d -->\n", col.Column.WIPLimit)
		}
		if col.Column.IsTerminal {
			b.WriteString("<!-- Terminal column -->\n")
		}
		if col.Column.WIPLimit > 0 || col.Column.IsTerminal {
			b.WriteString("\n")
		}

		tasks := make([]*types.Task, 0, len(col.Tasks))
		for _, t := range col.Tasks {
			if t.Archived && !opts.IncludeArchived {
				continue
			}
			tasks = append(tasks, t)
		}
		sort.SliceStable(tasks, func(i, j int) bool { return tasks[i].Position < tasks[j].Position })

		for _, t := range tasks {
			exportTask(&b, t, opts)
		}
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

func exportTask(b *strings.Builder, t *types.Task, opts ExportOptions) {
	title := escapeTitle(t.Title)
	if opts.IncludeMetadata {
		fmt.Fprintf(b, "- %s <!-- id:%s -->\n", title, t.ID)
	} else {
		fmt.Fprintf(b, "- %s\n", title)
	}

	if t.DueDate != nil {
		mark := ""
		if t.IsDone() {
			mark = " ✓"
		}
		fmt.Fprintf(b, "    @ %s%s\n", t.DueDate.Format("2006-01-02"), mark)
	}

	if len(t.Labels) > 0 {
		fmt.Fprintf(b, "    # %s\n", strings.Join(t.Labels, ", "))
	}

	if t.AssignedTo != "" {
		fmt.Fprintf(b, "    @ assigned: %s\n", t.AssignedTo)
	}

	for _, line := range strings.Split(t.Description, "\n") {
		if line == "" {
			continue
		}
		fmt.Fprintf(b, "    > %s\n", escapeDescriptionLine(line))
	}
}

// escapeTitle doubles backslashes and escapes a literal "<!--" so the
// optional id trailer stays unambiguous to the parser.
func escapeTitle(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "<!--", `\<!--`)
	return s
}

func escapeDescriptionLine(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return s
}
