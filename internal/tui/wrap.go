package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// cell is one rendered prompt character.
type cell struct {
	s       string
	width   int
	isSpace bool
}

// styleCells renders reference against typed. cursor is the index of the next
// character to type, or -1 when there is none.
func styleCells(reference, typed []rune, cursor int) []cell {
	wordStart, wordEnd := currentWord(reference, cursor)

	out := make([]cell, 0, len(reference))
	for i, want := range reference {
		shown := want
		style := pendingStyle
		switch {
		case i < len(typed) && want == ' ' && typed[i] != ' ':
			shown = '•'
			style = incorrectStyle
		case i < len(typed) && typed[i] == want:
			style = correctStyle
		case i < len(typed):
			style = incorrectStyle
		case want != ' ' && i >= wordStart && i < wordEnd:
			style = currentWordStyle
		}
		if i == cursor && i >= len(typed) {
			style = style.Underline(true)
		}
		out = append(out, cell{
			s:       style.Render(string(shown)),
			width:   runewidth.RuneWidth(shown),
			isSpace: want == ' ',
		})
	}
	return out
}

// currentWord returns the bounds of the word holding cursor, or of the next
// word when cursor sits on a space. A negative cursor selects the first word.
func currentWord(reference []rune, cursor int) (start, end int) {
	if cursor < 0 {
		cursor = 0
	}
	if cursor >= len(reference) {
		return len(reference), len(reference)
	}
	start = cursor
	for start < len(reference) && reference[start] == ' ' {
		start++
	}
	for start > 0 && reference[start-1] != ' ' {
		start--
	}
	end = start
	for end < len(reference) && reference[end] != ' ' {
		end++
	}
	return start, end
}

// wrapCells breaks cells into lines no wider than width, preferring breaks at
// spaces. It returns the rendered lines and the line index holding cursor.
func wrapCells(cells []cell, width, cursor int) ([]string, int) {
	if width <= 0 {
		return []string{joinCells(cells)}, 0
	}
	var lines []string
	cursorLine := 0
	lineStart := 0
	lineWidth := 0
	lastSpace := -1

	flush := func(end, next int) {
		if cursor >= lineStart && cursor < next {
			cursorLine = len(lines)
		}
		lines = append(lines, joinCells(cells[lineStart:end]))
		lineStart = next
		lineWidth = 0
		lastSpace = -1
	}

	for i := 0; i < len(cells); i++ {
		c := cells[i]
		if lineWidth+c.width > width && i > lineStart {
			if c.isSpace {
				flush(i, i+1)
				continue
			}
			if lastSpace >= lineStart {
				flush(lastSpace, lastSpace+1)
				i = lineStart - 1
				continue
			}
			flush(i, i)
		}
		lineWidth += c.width
		if c.isSpace {
			lastSpace = i
		}
	}
	if cursor >= lineStart {
		cursorLine = len(lines)
	}
	lines = append(lines, joinCells(cells[lineStart:]))
	return lines, cursorLine
}

// visibleLines keeps at most max lines, scrolled so the cursor line is the
// second one shown once typing has moved past the first line.
func visibleLines(lines []string, cursorLine, max int) []string {
	if max <= 0 || len(lines) <= max {
		return lines
	}
	first := cursorLine - 1
	if first < 0 {
		first = 0
	}
	if first+max > len(lines) {
		first = len(lines) - max
	}
	return lines[first : first+max]
}

func joinCells(cells []cell) string {
	var b strings.Builder
	for _, c := range cells {
		b.WriteString(c.s)
	}
	return b.String()
}
