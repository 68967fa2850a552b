package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/skeldyn/internal/dynamics"
)

const (
	canvasWidth     = 60
	canvasHeight    = 22
	historyCapacity = 400
	stepsPerFrame   = 16
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	canvasStyle = lipgloss.NewStyle().Padding(0, 2)
	statsStyle  = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("240")).
			Padding(1, 2).Width(40)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 2)
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type TickMsg time.Time

// Model is the live view: it owns the skeleton, steps it on every tick,
// and draws the tree in the world x-z plane with an energy history graph.
type Model struct {
	skel      *dynamics.Skeleton
	sceneName string

	canvas  *Canvas
	scale   float64 // world meters to sub-cell dots
	trail   [][2]int
	running bool
	t       float64

	q0            []float64
	dq0           []float64
	energyHistory []float64
}

func NewModel(skel *dynamics.Skeleton, sceneName string) Model {
	return Model{
		skel:          skel,
		sceneName:     sceneName,
		canvas:        NewCanvas(canvasWidth, canvasHeight),
		scale:         28,
		trail:         make([][2]int, 0, historyCapacity),
		running:       true,
		q0:            skel.Positions(),
		dq0:           skel.Velocities(),
		energyHistory: make([]float64, 0, historyCapacity),
	}
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.skel.SetPositions(m.q0)
			m.skel.SetVelocities(m.dq0)
			m.skel.UpdateKinematics()
			m.t = 0
			m.trail = m.trail[:0]
			m.energyHistory = m.energyHistory[:0]
		case "+", "=":
			m.scale *= 1.2
		case "-":
			m.scale /= 1.2
		}
		return m, nil

	case TickMsg:
		if m.running {
			for i := 0; i < stepsPerFrame; i++ {
				m.skel.Step()
				m.t += m.skel.TimeStep()
			}
			m.recordFrame()
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) recordFrame() {
	last := m.skel.Body(m.skel.NumBodies() - 1)
	x, y := m.project(last.WorldCOM().X(), last.WorldCOM().Z())
	m.trail = append(m.trail, [2]int{x, y})
	if len(m.trail) > historyCapacity {
		m.trail = m.trail[1:]
	}

	m.energyHistory = append(m.energyHistory, m.skel.TotalEnergy())
	if len(m.energyHistory) > historyCapacity {
		m.energyHistory = m.energyHistory[1:]
	}
}

// project maps world (x, z) to canvas sub-cell coordinates with the root
// pinned near the top center.
func (m *Model) project(wx, wz float64) (int, int) {
	px := canvasWidth + int(wx*m.scale)
	py := canvasHeight + int(-wz*m.scale*0.5)
	return px, py
}

func (m *Model) draw() string {
	m.canvas.Clear()

	for _, p := range m.trail {
		m.canvas.Set(p[0], p[1])
	}

	for i := 0; i < m.skel.NumBodies(); i++ {
		body := m.skel.Body(i)
		bx, by := m.project(body.WorldTransform().P.X(), body.WorldTransform().P.Z())
		if parent := body.Parent(); parent != nil {
			px, py := m.project(parent.WorldTransform().P.X(), parent.WorldTransform().P.Z())
			m.canvas.DrawLine(px, py, bx, by)
		}
		cx, cy := m.project(body.WorldCOM().X(), body.WorldCOM().Z())
		m.canvas.DrawLine(bx, by, cx, cy)
		m.canvas.DrawCircle(cx, cy, 2)
	}

	return m.canvas.String()
}

func (m Model) View() string {
	var stats strings.Builder
	row := func(label, value string) {
		stats.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}

	row("scene", m.sceneName)
	row("time", fmt.Sprintf("%.3f s", m.t))
	row("bodies", fmt.Sprintf("%d", m.skel.NumBodies()))
	row("dofs", fmt.Sprintf("%d", m.skel.NumDofs()))
	row("kinetic", fmt.Sprintf("%.4f J", m.skel.KineticEnergy()))
	row("potential", fmt.Sprintf("%.4f J", m.skel.PotentialEnergy()))
	row("total", fmt.Sprintf("%.4f J", m.skel.TotalEnergy()))
	state := "running"
	if !m.running {
		state = "paused"
	}
	row("state", state)

	main := lipgloss.JoinHorizontal(lipgloss.Top,
		canvasStyle.Render(m.draw()),
		statsStyle.Render(stats.String()),
	)

	var graph string
	if len(m.energyHistory) > 2 {
		graph = graphStyle.Render(asciigraph.Plot(m.energyHistory,
			asciigraph.Height(6),
			asciigraph.Width(90),
			asciigraph.Caption("total energy"),
		))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		headerStyle.Render("skeldyn live"),
		main,
		graph,
		helpStyle.Render("space pause  r reset  +/- zoom  q quit"),
	)
}

// Run starts the live view and blocks until it exits.
func Run(skel *dynamics.Skeleton, sceneName string) error {
	p := tea.NewProgram(NewModel(skel, sceneName))
	_, err := p.Run()
	return err
}
