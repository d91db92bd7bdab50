package viz

import (
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/inksim/internal/config"
	"github.com/san-kum/inksim/internal/metrics"
	"github.com/san-kum/inksim/internal/physics"
	"github.com/san-kum/inksim/internal/record"
	"github.com/san-kum/inksim/internal/studio"
)

const (
	canvasCols      = 64
	canvasRows      = 32
	historyCapacity = 120
	paramStep       = 5
)

var paramNames = []string{"drying_speed", "viscosity", "paper_resist", "ink_weight"}

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// SaveFunc persists a finished recording and returns where it went.
type SaveFunc func(*record.Session) (string, error)

// Model is the live studio: a brush cursor over the canvas, the controls
// panel and a fixed-fraction history.
type Model struct {
	st     *studio.Studio
	brush  config.BrushConfig
	fixed  *metrics.FixedFraction
	wet    *metrics.WetArea
	save   SaveFunc
	theme  Theme
	styles styles

	x, y     float32
	penDown  bool
	running  bool
	last     time.Time
	selected int
	history  []float64
	wetHist  []float64
	status   string
	showHelp bool
}

// NewModel starts with the cursor in the middle of the canvas. save may be
// nil, in which case recordings are discarded.
func NewModel(st *studio.Studio, brush config.BrushConfig, save SaveFunc) Model {
	fixed, wet := metrics.NewFixedFraction(), metrics.NewWetArea()
	st.AddMetric(fixed)
	st.AddMetric(wet)
	size := float32(st.Size())
	return Model{
		st:      st,
		brush:   brush,
		fixed:   fixed,
		wet:     wet,
		save:    save,
		theme:   ThemeInk,
		styles:  newStyles(ThemeInk),
		x:       size / 2,
		y:       size / 2,
		running: true,
		history: make([]float64, 0, historyCapacity),
		wetHist: make([]float64, 0, historyCapacity),
	}
}

func (m Model) Init() tea.Cmd { return tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.key(msg.String())
	case TickMsg:
		now := time.Time(msg)
		elapsed := time.Second / 60
		if !m.last.IsZero() {
			elapsed = now.Sub(m.last)
		}
		m.last = now
		if m.running {
			m.st.Frame(elapsed)
			m.history = push(m.history, m.fixed.Value())
			m.wetHist = push(m.wetHist, m.wet.Value())
		}
		return m, tick()
	}
	return m, nil
}

func (m Model) key(k string) (tea.Model, tea.Cmd) {
	st := m.st
	step := max(m.brush.Radius/2, 1)
	switch k {
	case "q", "ctrl+c":
		return m, tea.Quit
	case " ":
		m.running = !m.running
	case "up", "w":
		m.move(0, -step)
	case "down", "s":
		m.move(0, step)
	case "left", "a":
		m.move(-step, 0)
	case "right", "d":
		m.move(step, 0)
	case "enter":
		m.togglePen()
	case "tab":
		m.selected = (m.selected + 1) % len(paramNames)
	case "+", "=":
		m.adjust(paramStep)
	case "-", "_":
		m.adjust(-paramStep)
	case "[":
		m.brush.Radius = max(m.brush.Radius-1, 1)
	case "]":
		m.brush.Radius = min(m.brush.Radius+1, 40)
	case "b":
		m.cycleBrush()
	case "v":
		m.status = "view: " + string(st.ToggleView())
	case "u":
		m.setErr("undo", st.Undo())
	case "ctrl+r", "U":
		m.setErr("redo", st.Redo())
	case "c":
		st.Clear()
		m.status = "cleared"
	case "p":
		cfg := st.RegenPaper()
		m.status = fmt.Sprintf("paper %s #%d", cfg.Type, cfg.Seed)
	case "r":
		m.toggleRecording()
	case "t":
		m.theme = NextTheme(m.theme)
		m.styles = newStyles(m.theme)
	case "?":
		m.showHelp = !m.showHelp
	}
	return m, nil
}

func (m *Model) setErr(what string, err error) {
	if err != nil {
		m.status = err.Error()
		return
	}
	m.status = what
	m.penDown = false
}

func (m *Model) move(dx, dy float32) {
	size := float32(m.st.Size() - 1)
	m.x = min(max(m.x+dx, 0), size)
	m.y = min(max(m.y+dy, 0), size)
	if !m.penDown {
		return
	}
	dab, err := m.brush.Dab(m.x, m.y, dx, dy)
	if err == nil {
		err = m.st.StrokeTo(dab)
	}
	if err != nil {
		m.status = err.Error()
	}
}

func (m *Model) togglePen() {
	if m.penDown {
		m.st.EndStroke()
		m.penDown = false
		return
	}
	dab, err := m.brush.Dab(m.x, m.y, 0, 0)
	if err == nil {
		err = m.st.BeginStroke(dab)
	}
	if err != nil {
		m.status = err.Error()
		return
	}
	m.penDown = true
}

func (m *Model) adjust(delta float32) {
	p := m.st.Params()
	switch paramNames[m.selected] {
	case "drying_speed":
		p.DryingSpeed += delta
	case "viscosity":
		p.Viscosity += delta
	case "paper_resist":
		p.PaperResist += delta
	case "ink_weight":
		p.InkWeight += delta
	}
	m.st.SetParams(p)
}

func (m *Model) cycleBrush() {
	types := physics.BrushTypes
	next := types[0]
	for i, t := range types {
		if t == m.brush.Type {
			next = types[(i+1)%len(types)]
		}
	}
	m.brush.Type = next
	if err := m.st.SetBrush(next); err != nil {
		m.status = err.Error()
		return
	}
	m.status = "brush: " + string(next)
}

func (m *Model) toggleRecording() {
	if !m.st.Recording() {
		if err := m.st.StartRecording(); err != nil {
			m.status = err.Error()
			return
		}
		m.penDown = false
		m.status = "recording"
		return
	}
	sess, err := m.st.StopRecording()
	if err != nil {
		m.status = err.Error()
		return
	}
	if m.save == nil {
		m.status = fmt.Sprintf("recorded %d actions", len(sess.Actions))
		return
	}
	id, err := m.save(sess)
	if err != nil {
		m.status = "save failed: " + err.Error()
		return
	}
	m.status = "saved " + id
}

func push(h []float64, v float64) []float64 {
	if len(h) == historyCapacity {
		copy(h, h[1:])
		h = h[:historyCapacity-1]
	}
	return append(h, v)
}

func (m Model) View() string {
	s := m.styles
	canvas := Render(m.st.Sim(), m.st.View(), canvasCols, canvasRows, Cursor{X: m.x, Y: m.y, On: true})

	var b strings.Builder
	b.WriteString(s.header.Render("INKSIM") + "\n")
	status := "PAINTING"
	if !m.running {
		status = "PAUSED"
	}
	b.WriteString(s.value.Render(status))
	if m.st.Recording() {
		b.WriteString("  " + s.rec.Render(fmt.Sprintf("● REC %.1fs", m.st.Clock().Seconds())))
	}
	b.WriteString("\n\n")

	row := func(label, value string) {
		b.WriteString(s.label.Render(label) + s.value.Render(value) + "\n")
	}
	row("View", string(m.st.View()))
	row("Brush", fmt.Sprintf("%s r=%.0f %s", m.brush.Type, m.brush.Radius, m.brush.Color))
	pen := "up"
	if m.penDown {
		pen = "down"
	}
	row("Pen", fmt.Sprintf("%s at %.0f,%.0f", pen, m.x, m.y))
	paper := m.st.Paper()
	row("Paper", fmt.Sprintf("%s #%d", paper.Type, paper.Seed))
	row("Undo/Redo", fmt.Sprintf("%d/%d", m.st.History().UndoLen(), m.st.History().RedoLen()))

	b.WriteString("\nCONTROLS\n")
	p := m.st.Params()
	values := []float32{p.DryingSpeed, p.Viscosity, p.PaperResist, p.InkWeight}
	for i, name := range paramNames {
		line := fmt.Sprintf("%-13s %s %3.0f", name, SliderBar(values[i], 10), values[i])
		if i == m.selected {
			b.WriteString(s.active.Render("> "+line) + "\n")
		} else {
			b.WriteString("  " + s.value.Render(line) + "\n")
		}
	}

	b.WriteString("\nMETRICS\n")
	ms := m.st.Sim().Metrics()
	names := make([]string, 0, len(ms))
	for k := range ms {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		row(k, fmt.Sprintf("%.4f", ms[k]))
	}
	if len(m.history) > 1 {
		chart := asciigraph.Plot(m.history, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("fixed fraction"))
		b.WriteString(s.graph.Render(chart) + "\n")
	}
	b.WriteString("\nwet " + Sparkline(m.wetHist, 24) + "\n")
	b.WriteString(WetMap(m.st.Sim().Grid(), 16, 4, metrics.WetThreshold) + "\n")

	if m.status != "" {
		b.WriteString(s.warn.Render(m.status) + "\n")
	}
	b.WriteString(s.help.Render("WASD:Move ⏎:Pen SP:Pause Q:Quit\nV:View B:Brush U:Undo R:Rec ?:Help"))

	main := lipgloss.JoinHorizontal(lipgloss.Top, canvas, s.panel.Render(b.String()))
	if m.showHelp {
		return helpText + "\n" + main
	}
	return main
}

const helpText = `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  w/a/s/d  - Move the brush           ║
║  Enter    - Pen down / up            ║
║  Space    - Pause / resume           ║
║  Tab      - Select control           ║
║  + / -    - Tune control             ║
║  [ / ]    - Brush size               ║
║  B        - Cycle brush              ║
║  V        - Cycle view               ║
║  U        - Undo (Ctrl+R redo)       ║
║  C        - Clear canvas             ║
║  P        - New paper                ║
║  R        - Start / stop recording   ║
║  T        - Cycle themes             ║
║  Q        - Quit                     ║
╚══════════════════════════════════════╝`

// Run starts the live studio on the terminal.
func Run(st *studio.Studio, brush config.BrushConfig, save SaveFunc) error {
	_, err := tea.NewProgram(NewModel(st, brush, save), tea.WithAltScreen()).Run()
	return err
}
