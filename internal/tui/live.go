// Package tui is a live terminal view of a running scene: a heat map of one
// voltage component on a grid plane, stepped by a bubbletea ticker.
package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/fdtdabc/internal/dynamo"
	"github.com/san-kum/fdtdabc/internal/experiment"
	"github.com/san-kum/fdtdabc/internal/viz"
)

const (
	frameInterval = 33 * time.Millisecond
	historyLen    = 120
	scaleDecay    = 0.98
)

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Model steps a session a few timesteps per frame and draws the plane
// normal to axis at index.
type Model struct {
	session experiment.Session
	sizes   dynamo.Index
	marks   [3][]int

	axis  int
	index int
	comp  int
	speed int
	scale float64
	theme viz.Theme

	paused  bool
	done    bool
	err     error
	history []float64

	width  int
	height int
}

// NewModel shows the y-normal mid plane so that x runs across the screen.
func NewModel(s experiment.Session) Model {
	m := Model{
		session: s,
		axis:    1,
		comp:    s.Scene().Excitation.Component,
		speed:   4,
		theme:   viz.CurrentTheme,
		width:   80,
		height:  24,
	}

	if msh, err := s.Scene().BuildMesh(); err == nil {
		m.sizes = msh.Size()
		for _, b := range s.Scene().Boundaries {
			for _, box := range b.Boxes {
				for axis := 0; axis < 3; axis++ {
					if box.Start[axis] == box.Stop[axis] {
						m.marks[axis] = append(m.marks[axis], msh.SnapToLine(axis, box.Start[axis]))
					}
				}
			}
		}
	}
	m.index = m.sizes[m.axis] / 2
	return m
}

func (m Model) Init() tea.Cmd { return tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		m.advance()
		if m.done {
			return m, nil
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) advance() {
	if m.paused || m.done {
		return
	}

	remaining := m.session.Scene().Steps - int(m.session.Timesteps())
	steps := min(m.speed, remaining)
	if steps > 0 {
		if err := m.session.Step(steps); err != nil {
			m.err = err
			m.done = true
			return
		}
	}

	plane := m.session.Slice(m.comp, m.axis, m.index)
	m.scale = math.Max(m.scale*scaleDecay, viz.PlaneScale(plane))

	m.history = append(m.history, m.session.Energy())
	if len(m.history) > historyLen {
		m.history = m.history[1:]
	}
	if int(m.session.Timesteps()) >= m.session.Scene().Steps {
		m.done = true
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case " ":
		m.paused = !m.paused
		if !m.paused && !m.done {
			return m, tick()
		}
	case "+", "=":
		m.speed = min(m.speed*2, 256)
	case "-":
		m.speed = max(m.speed/2, 1)
	case "t":
		m.theme = viz.NextTheme(m.theme)
	case "c":
		m.comp = (m.comp + 1) % 3
		m.scale = 0
	case "a":
		m.axis = (m.axis + 1) % 3
		m.index = m.sizes[m.axis] / 2
		m.scale = 0
	case "]", "right":
		m.index = min(m.index+1, max(m.sizes[m.axis]-1, 0))
	case "[", "left":
		m.index = max(m.index-1, 0)
	}
	return m, nil
}

func (m Model) View() string {
	s := m.session
	scene := s.Scene()

	var b strings.Builder
	status := viz.StatusRunning.Render("running")
	switch {
	case m.err != nil:
		status = viz.Warning.Render("failed")
	case m.done:
		status = viz.Subtle.Render("done")
	case m.paused:
		status = viz.StatusPaused.Render("paused")
	}

	b.WriteString(viz.Title.Render(scene.Name) + "  " + status + "\n")
	b.WriteString(fmt.Sprintf("step %d/%d  t=%.4g s  %s-plane %s=%d  V%s  x%d\n",
		s.Timesteps(), scene.Steps, s.Time(),
		planeName(m.axis), dynamo.AxisName(m.axis), m.index, dynamo.AxisName(m.comp), m.speed))
	b.WriteString(viz.ProgressBar(float64(s.Timesteps())/float64(max(scene.Steps, 1)), 40) + "\n\n")

	plane := s.Slice(m.comp, m.axis, m.index)
	scale := math.Max(m.scale, viz.PlaneScale(plane))
	b.WriteString(viz.RenderSlice(plane, scale, m.theme, m.marks[(m.axis+2)%3]...))
	b.WriteString("\n\n")

	b.WriteString(viz.MetricLabel.Render("energy") + viz.SparklineChart(m.history, 40) + "\n")
	if m.err != nil {
		b.WriteString(viz.Warning.Render(m.err.Error()) + "\n")
	}
	b.WriteString(viz.KeyHint.Render("space pause  +/- speed  [ ] move plane  a axis  c component  t theme  q quit"))
	return b.String()
}

// planeName names the two tangential axes of a plane normal to axis.
func planeName(axis int) string {
	return dynamo.AxisName((axis+1)%3) + dynamo.AxisName((axis+2)%3)
}

// Run shows the session until it finishes or the user quits.
func Run(s experiment.Session) error {
	p := tea.NewProgram(NewModel(s), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
