package viz

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/autopilot/internal/analysis"
	"github.com/san-kum/autopilot/internal/dynamo"
)

// Options configures the interactive plot.
type Options struct {
	Title     string
	Component int
	Width     int
	Height    int
	Theme     string
}

// PlotModel is the Bubble Tea model behind [Show]. It never mutates the result.
type PlotModel struct {
	res       *dynamo.Result
	title     string
	component int
	phase     bool
	theme     int
	width     int
	height    int
}

func NewPlot(res *dynamo.Result, opts Options) PlotModel {
	theme := 0
	for i, t := range Themes {
		if t.Name == opts.Theme {
			theme = i
		}
	}

	m := PlotModel{
		res:       res,
		title:     opts.Title,
		component: opts.Component,
		theme:     theme,
		width:     opts.Width,
		height:    opts.Height,
	}
	if m.title == "" {
		m.title = "autopilot"
	}
	if d := m.dim(); d > 0 && (m.component < 0 || m.component >= d) {
		m.component = 0
	}
	return m
}

// Show runs the interactive plot in the alternate screen until the user quits.
func Show(res *dynamo.Result, opts Options) error {
	_, err := tea.NewProgram(NewPlot(res, opts), tea.WithAltScreen()).Run()
	return err
}

func (m PlotModel) Component() int { return m.component }
func (m PlotModel) Phase() bool    { return m.phase }

func (m PlotModel) dim() int {
	if m.res == nil || len(m.res.States) == 0 {
		return 0
	}
	return len(m.res.States[0])
}

func (m PlotModel) Init() tea.Cmd { return nil }

func (m PlotModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "tab":
			if d := m.dim(); d > 0 {
				m.component = (m.component + 1) % d
			}
		case "p":
			m.phase = !m.phase
		case "t":
			m.theme = (m.theme + 1) % len(Themes)
		}
	case tea.WindowSizeMsg:
		// leave room for the y-axis labels, the panel border and the footer
		m.width = max(msg.Width-16, minWidth)
		m.height = max(msg.Height-12, minHeight)
	}
	return m, nil
}

func (m PlotModel) View() string {
	st := Themes[m.theme].styles()

	var s strings.Builder
	s.WriteString(st.title.Render(strings.ToUpper(m.title)) + "\n")

	if m.dim() == 0 {
		s.WriteString("no samples\n")
		return s.String()
	}

	var body string
	if m.phase && m.dim() >= 2 {
		p, err := analysis.NewPhasePortrait(m.res.States, 0, 1)
		if err != nil {
			body = err.Error()
		} else {
			body = RenderPhase(p, m.width, m.height) + "\n" + st.value.Render("x0 →  x1 ↑")
		}
	} else {
		caption := fmt.Sprintf("x%d vs time", m.component)
		body = RenderSeries(m.res.Times, m.res.Component(m.component), m.width, m.height, caption)
	}
	s.WriteString(st.panel.Render(st.graph.Render(body)) + "\n")

	s.WriteString(m.summary(st))
	s.WriteString(st.help.Render("tab component • p phase • t theme • q quit"))
	return s.String()
}

func (m PlotModel) summary(st styles) string {
	var s strings.Builder
	final := m.res.Final()
	row := func(label, value string) {
		s.WriteString(st.label.Render(label) + st.value.Render(value) + "\n")
	}

	row("samples", fmt.Sprintf("%d (%d rejected)", len(m.res.Times), m.res.Rejected))
	row("final", fmt.Sprintf("%.6g", []float64(final)))

	names := make([]string, 0, len(m.res.Metrics))
	for name := range m.res.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		row(name, fmt.Sprintf("%.4f", m.res.Metrics[name]))
	}
	return s.String()
}
