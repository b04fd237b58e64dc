// Package tui is the interactive terminal viewer: a rotating wireframe of
// the reconstructed substate surface with step navigation and an optional
// follow mode that reloads when new step files appear.
package tui

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fsnotify/fsnotify"

	"github.com/quellen/calviz/internal/config"
	"github.com/quellen/calviz/internal/grid"
	"github.com/quellen/calviz/internal/render"
	"github.com/quellen/calviz/internal/source"
	"github.com/quellen/calviz/internal/surface"
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	activeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type fsEventMsg struct{}

type model struct {
	src     source.Source
	cfg     *config.Config
	dataDir string
	field   string
	minV    float64
	maxV    float64

	steps []int
	idx   int
	cur   grid.Grid
	mesh  *surface.Mesh
	lines [][]surface.Point

	cam       *render.Camera
	showLines bool
	follow    bool
	watcher   *fsnotify.Watcher

	width  int
	height int
	err    error
}

// Run starts the viewer on the latest available step.
func Run(src source.Source, dataDir, field string, minV, maxV float64, cfg *config.Config) error {
	steps, err := src.Steps()
	if err != nil {
		return err
	}
	m := &model{
		src:     src,
		cfg:     cfg,
		dataDir: dataDir,
		field:   field,
		minV:    minV,
		maxV:    maxV,
		steps:   steps,
		idx:     len(steps) - 1,
		cam:     render.NewCamera(),
		width:   80,
		height:  24,
	}
	m.cam.RotateX(-1.0)
	m.rebuild()

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	if m.watcher != nil {
		m.watcher.Close()
	}
	return err
}

func (m *model) Init() tea.Cmd { return nil }

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case fsEventMsg:
		if steps, err := m.src.Steps(); err == nil {
			m.steps = steps
			if m.follow {
				m.idx = len(steps) - 1
			}
			m.rebuild()
		}
		return m, waitForChange(m.watcher)

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "left":
			m.cam.RotateY(-0.1)
		case "right":
			m.cam.RotateY(0.1)
		case "up":
			m.cam.RotateX(-0.1)
		case "down":
			m.cam.RotateX(0.1)
		case "+", "=":
			m.cam.ZoomIn()
		case "-":
			m.cam.ZoomOut()
		case "r":
			m.cam = render.NewCamera()
			m.cam.RotateX(-1.0)
		case "n":
			if m.idx+1 < len(m.steps) {
				m.idx++
				m.rebuild()
			}
		case "p":
			if m.idx > 0 {
				m.idx--
				m.rebuild()
			}
		case "g":
			m.showLines = !m.showLines
			m.rebuild()
		case "f":
			return m.toggleFollow()
		}
	}
	return m, nil
}

func (m *model) toggleFollow() (tea.Model, tea.Cmd) {
	if m.follow {
		m.follow = false
		if m.watcher != nil {
			m.watcher.Close()
			m.watcher = nil
		}
		return m, nil
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		m.err = err
		return m, nil
	}
	if err := w.Add(m.dataDir); err != nil {
		m.err = err
		w.Close()
		return m, nil
	}
	m.follow = true
	m.watcher = w
	m.idx = len(m.steps) - 1
	m.rebuild()
	return m, waitForChange(w)
}

// waitForChange blocks until a step file is created or rewritten.
func waitForChange(w *fsnotify.Watcher) tea.Cmd {
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return nil
				}
				if ev.Op.Has(fsnotify.Create) || ev.Op.Has(fsnotify.Write) {
					return fsEventMsg{}
				}
			case _, ok := <-w.Errors:
				if !ok {
					return nil
				}
			}
		}
	}
}

func (m *model) rebuild() {
	if len(m.steps) == 0 {
		return
	}
	g, err := m.src.LoadStep(m.steps[m.idx])
	if err != nil {
		m.err = err
		return
	}
	m.err = nil
	m.cur = g
	m.mesh = surface.BuildMesh(g, m.field, m.minV, m.maxV, m.cfg.FieldSpecs(), m.cfg.BackgroundColor())
	if m.showLines {
		m.lines = surface.SampleLineHeights(g, surface.BoundaryLines(g, 8), m.field, m.minV, m.maxV)
	} else {
		m.lines = nil
	}
}

func (m *model) View() string {
	canvasW := max(20, m.width-4)
	canvasH := max(8, m.height-7)

	canvas := render.NewCanvas(canvasW, canvasH)
	render.Draw(canvas, render.MeshWireframe(m.mesh), m.cam)
	if m.showLines && len(m.lines) > 0 {
		render.Draw(canvas, render.PolylineWireframe(m.mesh, m.lines), m.cam)
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render("calviz · substate surface"))
	b.WriteString("\n")
	b.WriteString(canvas.String())
	b.WriteString(m.statusLine())
	b.WriteString(helpStyle.Render("←/→/↑/↓ rotate · +/- zoom · n/p step · g grid · f follow · r reset · q quit"))
	return b.String()
}

func (m *model) statusLine() string {
	if m.err != nil {
		return errStyle.Render("error: "+m.err.Error()) + "\n"
	}
	step := "-"
	if len(m.steps) > 0 {
		step = fmt.Sprintf("%d (%d/%d)", m.steps[m.idx], m.idx+1, len(m.steps))
	}
	quads := 0
	if m.mesh != nil {
		quads = len(m.mesh.Quads)
	}
	parts := []string{
		labelStyle.Render("step ") + valueStyle.Render(step),
		labelStyle.Render("field ") + valueStyle.Render(m.field),
		labelStyle.Render("range ") + valueStyle.Render(fmt.Sprintf("[%g, %g]", m.minV, m.maxV)),
		labelStyle.Render("quads ") + valueStyle.Render(fmt.Sprintf("%d", quads)),
	}
	if m.follow {
		parts = append(parts, activeStyle.Render("following"))
	}
	if math.IsNaN(m.minV) || math.IsNaN(m.maxV) {
		parts = append(parts, errStyle.Render("bounds unset"))
	}
	return strings.Join(parts, labelStyle.Render(" · ")) + "\n"
}
