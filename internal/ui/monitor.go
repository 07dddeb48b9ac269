package ui

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/chihiros-control/chihirosctl/internal/protocol"
)

// Monitor is a Bubble Tea model that renders the live notification stream
// from a device: a scrollable viewport of decoded frames with a spinner
// while waiting for traffic.
type Monitor struct {
	title    string
	frames   <-chan []byte
	viewport viewport.Model
	spinner  spinner.Model
	lines    []string
	ready    bool
	closed   bool
	width    int
	height   int
}

// Messages produced by the monitor's frame pump.
type (
	frameMsg        []byte
	streamClosedMsg struct{}
)

var (
	monitorTitleStyle = lipgloss.NewStyle().
				Foreground(TextColor).
				Bold(true).
				PaddingLeft(1)

	monitorFooterStyle = lipgloss.NewStyle().
				Foreground(MutedColor).
				PaddingLeft(1)

	monitorTimeStyle = lipgloss.NewStyle().
				Foreground(MutedColor)

	monitorFrameStyle = lipgloss.NewStyle().
				Foreground(TextColor)

	monitorTotalsStyle = lipgloss.NewStyle().
				Foreground(SuccessColor)

	monitorBadStyle = lipgloss.NewStyle().
			Foreground(ErrorColor)
)

// NewMonitor creates a monitor over a raw notification stream.
func NewMonitor(title string, frames <-chan []byte) *Monitor {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(PrimaryColor)

	return &Monitor{
		title:   title,
		frames:  frames,
		spinner: sp,
	}
}

// Init implements tea.Model
func (m *Monitor) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitForFrame())
}

// waitForFrame blocks on the notification stream and converts its output
// into Bubble Tea messages.
func (m *Monitor) waitForFrame() tea.Cmd {
	return func() tea.Msg {
		data, ok := <-m.frames
		if !ok {
			return streamClosedMsg{}
		}
		return frameMsg(data)
	}
}

// Update implements tea.Model
func (m *Monitor) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		contentHeight := msg.Height - 4 // title, divider, footer
		if contentHeight < 1 {
			contentHeight = 1
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width, contentHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = contentHeight
		}
		m.refreshContent()

	case frameMsg:
		m.lines = append(m.lines, formatNotification(time.Now(), msg))
		m.refreshContent()
		return m, m.waitForFrame()

	case streamClosedMsg:
		m.closed = true
		m.lines = append(m.lines, monitorBadStyle.Render("-- connection closed --"))
		m.refreshContent()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// refreshContent refills the viewport and keeps it pinned to the newest
// frame unless the user scrolled away.
func (m *Monitor) refreshContent() {
	if !m.ready {
		return
	}
	pinned := m.viewport.AtBottom()
	m.viewport.SetContent(strings.Join(m.lines, "\n"))
	if pinned {
		m.viewport.GotoBottom()
	}
}

// View implements tea.Model
func (m *Monitor) View() string {
	if !m.ready {
		return "\n  " + m.spinner.View() + " connecting..."
	}

	title := monitorTitleStyle.Render(m.title)
	divider := RenderHorizontalDivider(m.width-2, "─")

	var footer string
	switch {
	case m.closed:
		footer = monitorFooterStyle.Render("stream ended · q to quit")
	case len(m.lines) == 0:
		footer = monitorFooterStyle.Render(m.spinner.View() + " waiting for notifications · q to quit")
	default:
		footer = monitorFooterStyle.Render(fmt.Sprintf("%s %d frames · q to quit", m.spinner.View(), len(m.lines)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, divider, m.viewport.View(), footer)
}

// formatNotification renders one inbound payload as a monitor line.
func formatNotification(at time.Time, data []byte) string {
	stamp := monitorTimeStyle.Render(at.Format("15:04:05.000"))

	resp, err := protocol.Decode(data)
	if err != nil {
		return fmt.Sprintf("%s %s", stamp,
			monitorBadStyle.Render("bad frame: "+hex.EncodeToString(data)))
	}

	if totals, ok := resp.DailyTotals(); ok {
		return fmt.Sprintf("%s %s", stamp, monitorTotalsStyle.Render(fmt.Sprintf(
			"daily totals  ch1=%.1fmL ch2=%.1fmL ch3=%.1fmL ch4=%.1fmL",
			totals[0], totals[1], totals[2], totals[3])))
	}

	return fmt.Sprintf("%s %s", stamp, monitorFrameStyle.Render(resp.String()))
}

// RunMonitor runs the monitor TUI until the user quits or the stream ends
// and the user exits.
func RunMonitor(title string, frames <-chan []byte) error {
	p := tea.NewProgram(NewMonitor(title, frames), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
