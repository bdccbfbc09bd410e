package presentation

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/zjrosen/anpconf/internal/registry"
)

// DiffOp classifies a diff line.
type DiffOp int

const (
	DiffEqual DiffOp = iota
	DiffDelete
	DiffInsert
)

// DiffLine is one line of a line-level diff.
type DiffLine struct {
	Op   DiffOp
	Text string
}

// DiffText computes a line-level diff from a to b.
func DiffText(a, b string) []DiffLine {
	dmp := diffmatchpatch.New()
	charsA, charsB, lines := dmp.DiffLinesToChars(a, b)
	diffs := dmp.DiffMain(charsA, charsB, false)
	diffs = dmp.DiffCharsToLines(diffs, lines)

	var out []DiffLine
	for _, d := range diffs {
		op := DiffEqual
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			op = DiffDelete
		case diffmatchpatch.DiffInsert:
			op = DiffInsert
		}
		for _, line := range strings.Split(strings.TrimSuffix(d.Text, "\n"), "\n") {
			out = append(out, DiffLine{Op: op, Text: line})
		}
	}
	return out
}

// DiffRegistries diffs the Print dumps of two registries, so nested keys
// are compared with their indentation.
func DiffRegistries(a, b *registry.Registry) []DiffLine {
	return DiffText(dump(a), dump(b))
}

func dump(r *registry.Registry) string {
	if r == nil {
		return ""
	}
	return r.String()
}

// HasChanges reports whether any line was inserted or deleted.
func HasChanges(lines []DiffLine) bool {
	for _, l := range lines {
		if l.Op != DiffEqual {
			return true
		}
	}
	return false
}

// RenderDiff prefixes inserted lines with "+ ", deleted lines with "- " and
// unchanged lines with two spaces.
func RenderDiff(lines []DiffLine, plain bool) string {
	var sb strings.Builder
	for _, l := range lines {
		switch l.Op {
		case DiffInsert:
			sb.WriteString(paint(plain, addedStyle, "+ "+l.Text))
		case DiffDelete:
			sb.WriteString(paint(plain, deletedStyle, "- "+l.Text))
		default:
			sb.WriteString("  " + l.Text)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
