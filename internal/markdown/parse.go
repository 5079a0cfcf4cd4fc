package markdown

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ParsedTask is one task item recovered by Parse, in source order
// within its column.
type ParsedTask struct {
	Title       string
	GlobalID    string // set iff the "<!-- id:... -->" trailer was present
	DueDate     *time.Time
	Done        bool
	Labels      []string
	AssignedTo  string
	Description string
}

// ParsedColumn is one "## name" section and the tasks under it.
type ParsedColumn struct {
	Name       string
	WIPLimit   int
	IsTerminal bool
	Tasks      []ParsedTask
}

// ParseError is a non-fatal issue found at a specific source line;
// parsing continues past it.
type ParseError struct {
	Line    int
	Message string
}

func (e ParseError) Error() string { return fmt.Sprintf("line %d: %s", e.Line, e.Message) }

// ParseResult is Parse's output: the board name, its columns in source
// order, and any non-fatal errors encountered along the way.
type ParseResult struct {
	BoardName string
	Columns   []ParsedColumn
	Errors    []ParseError
}

var (
	wipLimitRe  = regexp.MustCompile(`^<!--\s*WIP Limit:\s*(\d+)\s*-->$`)
	terminalRe  = regexp.MustCompile(`^<!--\s*Terminal column\s*-->$`)
	idTrailerRe = regexp.MustCompile(`<!--\s*id:([0-9A-Za-z]+)\s*-->\s*$`)
	dateLineRe  = regexp.MustCompile(`^(\S+)(\s*✓)?$`)
)

// Parse reads a Taskell-compatible document: a `# board` header, `##
// column` sections (each optionally preceded by WIP-limit/terminal
// metadata comments), and `- title` task items with 4-space-indented
// sub-lines. It is line-oriented and single-pass; unrecognised indented
// lines under a task are ignored but not fatal (§4.7).
func Parse(doc string) ParseResult {
	var result ParseResult
	var curCol *ParsedColumn
	var curTask *ParsedTask

	flushTask := func() {
		if curTask != nil && curCol != nil {
			curCol.Tasks = append(curCol.Tasks, *curTask)
			curTask = nil
		}
	}
	flushCol := func() {
		flushTask()
		if curCol != nil {
			result.Columns = append(result.Columns, *curCol)
			curCol = nil
		}
	}

	lines := strings.Split(doc, "\n")
	for i, raw := range lines {
		lineNo := i + 1
		line := strings.TrimRight(raw, "\r")

		switch {
		case strings.HasPrefix(line, "# ") && curCol == nil && result.BoardName == "":
			result.BoardName = strings.TrimSpace(strings.TrimPrefix(line, "# "))

		case strings.HasPrefix(line, "## "):
			flushCol()
			curCol = &ParsedColumn{Name: strings.TrimSpace(strings.TrimPrefix(line, "## "))}

		case wipLimitRe.MatchString(strings.TrimSpace(line)) && curCol != nil:
			m := wipLimitRe.FindStringSubmatch(strings.TrimSpace(line))
			n, _ := strconv.Atoi(m[1])
			curCol.WIPLimit = n

		case terminalRe.MatchString(strings.TrimSpace(line)) && curCol != nil:
			curCol.IsTerminal = true

		case strings.HasPrefix(line, "- ") && curCol != nil:
			flushTask()
			title := strings.TrimPrefix(line, "- ")
			var globalID string
			if m := idTrailerRe.FindStringSubmatch(title); m != nil {
				globalID = m[1]
				title = strings.TrimSpace(idTrailerRe.ReplaceAllString(title, ""))
			}
			title = unescapeTitle(title)
			curTask = &ParsedTask{Title: title, GlobalID: globalID}

		case strings.HasPrefix(line, "    ") && curTask != nil:
			body := strings.TrimPrefix(line, "    ")
			switch {
			case strings.HasPrefix(body, "@ assigned: "):
				curTask.AssignedTo = strings.TrimSpace(strings.TrimPrefix(body, "@ assigned: "))
			case strings.HasPrefix(body, "@ "):
				rest := strings.TrimPrefix(body, "@ ")
				m := dateLineRe.FindStringSubmatch(strings.TrimSpace(rest))
				if m == nil {
					result.Errors = append(result.Errors, ParseError{Line: lineNo, Message: "malformed date line"})
					break
				}
				t, err := time.Parse("2006-01-02", m[1])
				if err != nil {
					result.Errors = append(result.Errors, ParseError{Line: lineNo, Message: "invalid date " + m[1]})
					break
				}
				curTask.DueDate = &t
				curTask.Done = strings.TrimSpace(m[2]) == "✓"
			case strings.HasPrefix(body, "# "):
				labelsRaw := strings.TrimPrefix(body, "# ")
				for _, l := range strings.Split(labelsRaw, ",") {
					if l = strings.TrimSpace(l); l != "" {
						curTask.Labels = append(curTask.Labels, l)
					}
				}
			case strings.HasPrefix(body, "> "):
				line := unescapeDescriptionLine(strings.TrimPrefix(body, "> "))
				if curTask.Description != "" {
					curTask.Description += "\n"
				}
				curTask.Description += line
			}
			// any other indented line under a task is ignored, not fatal.

		case strings.TrimSpace(line) == "":
			// blank lines are structural separators only.

		default:
			if curCol != nil {
				result.Errors = append(result.Errors, ParseError{Line: lineNo, Message: "unrecognised line: " + line})
			}
		}
	}

	flushCol()
	return result
}

func unescapeTitle(s string) string {
	s = strings.ReplaceAll(s, `\<!--`, "<!--")
	s = strings.ReplaceAll(s, `\\`, `\`)
	return s
}

func unescapeDescriptionLine(s string) string {
	return strings.ReplaceAll(s, `\\`, `\`)
}
