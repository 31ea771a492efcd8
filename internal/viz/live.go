package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/partsim/internal/particle"
)

const (
	width           = 60
	height          = 20
	historyCapacity = 600
	viewHalfWidth   = 12
	viewHeight      = 14
)

type TickMsg time.Time

// Model is the Bubble Tea live view of a single pool.
type Model struct {
	name     string
	cfg      particle.Config
	seed     uint64
	dt       float32
	pool     *particle.Pool
	canvas   *Canvas
	view     View
	running  bool
	showHelp bool
	history  []int
	last     particle.FrameStats
	visible  int
	simTime  float64
}

// NewModel builds the live view. A zero dt lets the pool's clock drive
// the timestep.
func NewModel(name string, cfg particle.Config, seed uint64, dt float32) (Model, error) {
	m := Model{
		name:    name,
		cfg:     cfg,
		seed:    seed,
		dt:      dt,
		canvas:  NewCanvas(width, height),
		running: true,
		history: make([]int, 0, historyCapacity),
		view: View{
			MinX: cfg.Position.X() - viewHalfWidth,
			MaxX: cfg.Position.X() + viewHalfWidth,
			MaxY: cfg.Position.Y() + viewHeight,
		},
	}
	if err := m.reset(); err != nil {
		return Model{}, err
	}
	return m, nil
}

func (m *Model) reset() error {
	pool, err := particle.New(m.cfg, particle.NewRand(m.seed), nil)
	if err != nil {
		return err
	}
	m.pool = pool
	m.history = m.history[:0]
	m.last = particle.FrameStats{}
	m.simTime = 0
	m.draw()
	return nil
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case ".":
			if !m.running {
				m.step()
			}
		case "r":
			// the config was validated by NewModel
			_ = m.reset()
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running {
			m.step()
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) step() {
	if m.dt > 0 {
		m.last = m.pool.Step(m.dt)
	} else {
		m.last = m.pool.Update()
	}
	m.simTime += float64(m.last.Dt)
	m.history = append(m.history, m.last.Alive)
	if len(m.history) > historyCapacity {
		m.history = m.history[1:]
	}
	m.draw()
}

func (m *Model) draw() {
	m.canvas.Clear()
	m.visible = m.canvas.PlotBuffer(m.pool.RenderBuffer(), m.view, particle.FloatsPerParticle)
}

func (m Model) View() string {
	canvasView := canvasStyle.Render(m.canvas.String() + strings.Repeat("▔", width))

	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.name)) + "\n")
	switch {
	case !m.running:
		s.WriteString(StatusPaused.Render("PAUSED"))
	case m.last.Saturated:
		s.WriteString(StatusWarn.Render("SATURATED"))
	default:
		s.WriteString(StatusRunning.Render("RUNNING"))
	}
	s.WriteString("\n\n")

	if len(m.history) > 1 {
		chart := PlotAlive(m.history, 28, 4, "alive")
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	s.WriteString(Label("Frame", fmt.Sprintf("%d", m.pool.Frame())) + "\n")
	s.WriteString(Label("Time", fmt.Sprintf("%.2fs", m.simTime)) + "\n")
	s.WriteString(Label("Alive", fmt.Sprintf("%d / %d", m.pool.AliveCount(), m.cfg.MaxAlive)) + "\n")
	s.WriteString(Label("Capacity", fmt.Sprintf("%d", m.pool.Capacity())) + "\n")
	s.WriteString(Label("Births", fmt.Sprintf("%d", m.last.Births)) + "\n")
	s.WriteString(Label("Deaths", fmt.Sprintf("%d", m.last.Deaths)) + "\n")
	s.WriteString(Label("Visible", fmt.Sprintf("%d", m.visible)) + "\n")
	s.WriteString(helpStyle.Render("SP:Pause .:Step R:Reset\n?:Help    Q:Quit"))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
	if m.showHelp {
		return `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume simulation  ║
║  .        - Single step when paused  ║
║  R        - Reset the pool           ║
║  ?        - Toggle this help         ║
║  Q        - Quit                     ║
╚══════════════════════════════════════╝
` + "\n\n" + mainView
	}
	return mainView
}

// Run starts the live view and blocks until the user quits.
func Run(m Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
