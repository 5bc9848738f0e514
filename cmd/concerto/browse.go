package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/concerto-project/concerto-go/declaration"
	"github.com/concerto-project/concerto-go/factory"
	"github.com/concerto-project/concerto-go/instancegen"
	"github.com/concerto-project/concerto-go/internal/cliconfig"
	"github.com/concerto-project/concerto-go/log"
	"github.com/concerto-project/concerto-go/modelmanager"
	"github.com/concerto-project/concerto-go/profiler"
)

// maxLogPaneLines bounds how many of the most recent log lines the
// browse TUI's log pane keeps on screen.
const maxLogPaneLines = 6

func newBrowseCmd(cfg *cliconfig.Config, logCfg *log.Config) *cobra.Command {
	var files []string

	prof := profiler.New()

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Interactively explore a loaded ModelManager's namespaces and declarations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := resolvedConfig(cfg, logCfg, cmd.Flags()); err != nil {
				return err
			}

			pub := log.NewPublisher()
			defer pub.Close() //nolint:errcheck // best-effort on exit

			mgr, err := loadManagerTo(logCfg, files, io.MultiWriter(os.Stderr, pub))
			if err != nil {
				return err
			}

			if err := prof.Start(); err != nil {
				return err
			}
			defer prof.Stop() //nolint:errcheck // best-effort snapshot on exit

			p := tea.NewProgram(newBrowseModel(mgr, pub))

			_, err = p.Run()

			return err
		},
	}

	cmd.Flags().StringArrayVarP(&files, "file", "f", nil, "a .cto file to load (repeatable)")
	_ = cmd.MarkFlagRequired("file")
	prof.RegisterFlags(cmd.Flags())

	return cmd
}

// browsePane identifies which column of the explorer has focus.
type browsePane int

const (
	paneNamespaces browsePane = iota
	paneDeclarations
)

// browseModel is a bubbletea.Model navigating a [modelmanager.ModelManager]:
// a list of namespaces, drilling into a namespace's declarations, and a
// declaration detail pane showing its resolved properties plus a sample
// instance (via instancegen). Grounded on cmd/ansi_video_renderer's
// tea.Model/Init/Update/View shape and key handling, with the
// video-specific frame-streaming machinery replaced by this navigation
// state machine.
type browseModel struct {
	manager      *modelmanager.ModelManager
	factory      *factory.Factory
	namespaces   []string
	declarations []*declaration.ClassDeclaration
	nsCursor     int
	declCursor   int
	pane         browsePane
	width        int
	height       int
	err          error

	logs    *log.Subscription
	logTail []string
}

func newBrowseModel(mgr *modelmanager.ModelManager, pub *log.Publisher) *browseModel {
	return &browseModel{
		manager:    mgr,
		factory:    factory.New(mgr),
		namespaces: mgr.GetNamespaces(),
		pane:       paneNamespaces,
		logs:       pub.Subscribe(),
	}
}

func (m *browseModel) Init() tea.Cmd {
	m.loadDeclarations()

	return waitForLogLine(m.logs)
}

// logLineMsg carries one entry read off a [log.Subscription].
type logLineMsg []byte

// waitForLogLine blocks on the next entry from sub and reports it as a
// tea.Msg, the standard bubbletea pattern for bridging an external
// channel into the Update loop. The Update handler re-issues this
// command after each delivery to keep listening.
func waitForLogLine(sub *log.Subscription) tea.Cmd {
	return func() tea.Msg {
		entry, ok := <-sub.C()
		if !ok {
			return nil
		}

		return logLineMsg(entry)
	}
}

func (m *browseModel) loadDeclarations() {
	m.declarations = nil

	if m.nsCursor >= len(m.namespaces) {
		return
	}

	mf, ok := m.manager.GetModelFile(m.namespaces[m.nsCursor])
	if !ok {
		return
	}

	m.declarations = append(m.declarations, mf.Declarations()...)

	if m.declCursor >= len(m.declarations) {
		m.declCursor = 0
	}
}

func (m *browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case logLineMsg:
		m.appendLogLine(string(msg))

		return m, waitForLogLine(m.logs)

	case tea.KeyPressMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.logs.Close()

			return m, tea.Quit

		case "tab":
			if m.pane == paneNamespaces {
				m.pane = paneDeclarations
			} else {
				m.pane = paneNamespaces
			}

		case "up", "k":
			m.moveCursor(-1)

		case "down", "j":
			m.moveCursor(1)

		case "enter", "right", "l":
			if m.pane == paneNamespaces {
				m.pane = paneDeclarations
			}
		}
	}

	return m, nil
}

// appendLogLine records a freshly-arrived log entry, trimming the trailing
// newline slog's handlers emit and keeping only the most recent
// maxLogPaneLines.
func (m *browseModel) appendLogLine(line string) {
	line = strings.TrimRight(line, "\n")
	if line == "" {
		return
	}

	m.logTail = append(m.logTail, line)

	if len(m.logTail) > maxLogPaneLines {
		m.logTail = m.logTail[len(m.logTail)-maxLogPaneLines:]
	}
}

func (m *browseModel) moveCursor(delta int) {
	switch m.pane {
	case paneNamespaces:
		m.nsCursor = clamp(m.nsCursor+delta, 0, len(m.namespaces)-1)
		m.declCursor = 0
		m.loadDeclarations()
	case paneDeclarations:
		m.declCursor = clamp(m.declCursor+delta, 0, len(m.declarations)-1)
	}
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}

	if v < lo {
		return lo
	}

	if v > hi {
		return hi
	}

	return v
}

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Underline(true)
	selectedStyle = lipgloss.NewStyle().Reverse(true)
	dimStyle      = lipgloss.NewStyle().Faint(true)
)

func (m *browseModel) View() tea.View {
	var nsCol, declCol, detailCol strings.Builder

	nsCol.WriteString(headerStyle.Render("Namespaces") + "\n")

	for i, ns := range m.namespaces {
		line := ns
		if i == m.nsCursor {
			line = selectedStyle.Render(line)
		}

		nsCol.WriteString(line + "\n")
	}

	declCol.WriteString(headerStyle.Render("Declarations") + "\n")

	for i, d := range m.declarations {
		line := fmt.Sprintf("%s %s", d.Kind, d.Name)
		if i == m.declCursor {
			line = selectedStyle.Render(line)
		}

		declCol.WriteString(line + "\n")
	}

	detailCol.WriteString(headerStyle.Render("Detail") + "\n")
	detailCol.WriteString(m.renderDetail())

	body := lipgloss.JoinHorizontal(lipgloss.Top, nsCol.String(), "  ", declCol.String(), "  ", detailCol.String())
	footer := dimStyle.Render("tab: switch pane  ↑/↓: move  enter: drill in  q: quit")

	v := tea.NewView(body + "\n\n" + m.renderLogPane() + "\n" + footer)
	v.AltScreen = true

	return v
}

// renderLogPane renders the most recent lines written through the
// manager's [log.Publisher], giving the TUI a live tail of the
// modelmanager/factory/instancegen logging that would otherwise be
// invisible once the alt-screen session takes over the terminal.
func (m *browseModel) renderLogPane() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("Log") + "\n")

	if len(m.logTail) == 0 {
		b.WriteString(dimStyle.Render("(no log output yet)"))

		return b.String()
	}

	for i, line := range m.logTail {
		if i > 0 {
			b.WriteString("\n")
		}

		b.WriteString(dimStyle.Render(line))
	}

	return b.String()
}

func (m *browseModel) renderDetail() string {
	if m.declCursor >= len(m.declarations) {
		return ""
	}

	d := m.declarations[m.declCursor]

	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", d.FQN())

	if d.IsAbstract {
		b.WriteString("abstract\n")
	}

	if d.SuperTypeFQN != "" {
		fmt.Fprintf(&b, "extends %s\n", d.SuperTypeFQN)
	}

	for _, p := range d.GetOwnProperties() {
		arr := ""
		if p.IsArray {
			arr = "[]"
		}

		opt := ""
		if p.IsOptional {
			opt = " optional"
		}

		fmt.Fprintf(&b, "  %s %s%s%s\n", p.Type, p.Name, arr, opt)
	}

	if !d.IsAbstract {
		gen := instancegen.New(m.manager, m.factory, instancegen.Sample)

		inst, err := gen.Generate(d.FQN(), instancegen.Options{})
		if err != nil {
			fmt.Fprintf(&b, "\nsample: %v\n", err)
		} else if id, ok := inst.Identifier(); ok {
			fmt.Fprintf(&b, "\nsample identifier: %s\n", id)
		}
	}

	return b.String()
}
