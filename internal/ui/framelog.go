package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// FrameLog represents a box for displaying raw frame traffic.
// Used in verbose mode to show the bytes exchanged with the device.
type FrameLog struct {
	Title    string   // e.g., "Frame Traffic"
	Content  string   // The raw traffic dump
	Lines    []string // Parsed output lines (for filtering)
	Width    int      // Terminal width
	MaxLines int      // Maximum lines to display (0 = unlimited)
}

// NewFrameLog creates a new frame traffic box
func NewFrameLog(content string) *FrameLog {
	return &FrameLog{
		Title:    "Frame Traffic",
		Content:  content,
		Lines:    strings.Split(content, "\n"),
		Width:    GetTerminalWidth(),
		MaxLines: 0,
	}
}

// SetWidth sets the terminal width for responsive rendering
func (f *FrameLog) SetWidth(width int) *FrameLog {
	f.Width = width
	return f
}

// SetTitle sets a custom title for the box
func (f *FrameLog) SetTitle(title string) *FrameLog {
	f.Title = title
	return f
}

// SetMaxLines limits the number of lines displayed
func (f *FrameLog) SetMaxLines(max int) *FrameLog {
	f.MaxLines = max
	return f
}

// FilterLines filters the output to only show lines matching the given
// patterns. Useful for isolating one direction of traffic.
func (f *FrameLog) FilterLines(patterns ...string) *FrameLog {
	var filtered []string
	for _, line := range f.Lines {
		for _, pattern := range patterns {
			if strings.Contains(line, pattern) {
				filtered = append(filtered, line)
				break
			}
		}
	}
	f.Lines = filtered
	f.Content = strings.Join(filtered, "\n")
	return f
}

// Render returns the styled frame traffic box as a string
func (f *FrameLog) Render() string {
	width := f.Width
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}

	// Apply max lines limit
	lines := f.Lines
	if f.MaxLines > 0 && len(lines) > f.MaxLines {
		lines = lines[:f.MaxLines]
		lines = append(lines, "... (output truncated)")
	}

	// Title styled
	titleStyled := FrameLogTitleStyle.Render(f.Title)

	// Content styled (preserve monospace formatting)
	contentStyled := FrameLogContentStyle.Render(strings.Join(lines, "\n"))

	// Combine title and content
	inner := lipgloss.JoinVertical(lipgloss.Left, titleStyled, "", contentStyled)

	// Box with muted border
	boxWidth := width - 4
	if boxWidth < 40 {
		boxWidth = 40
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(MutedColor).
		Width(boxWidth).
		Padding(0, 1).
		MarginLeft(2).
		Render(inner)
}

// String implements fmt.Stringer
func (f *FrameLog) String() string {
	return f.Render()
}

// RenderFrameLog renders a frame traffic box with the given content
func RenderFrameLog(content string) string {
	return NewFrameLog(content).Render()
}
