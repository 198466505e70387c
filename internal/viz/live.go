package viz

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/cradle/internal/config"
	"github.com/san-kum/cradle/internal/dynamo"
	"github.com/san-kum/cradle/internal/metrics"
	"github.com/san-kum/cradle/internal/session"
)

const (
	defaultCols     = 60
	defaultRows     = 22
	panelWidth      = 44
	historyCapacity = 600

	// canvas offset inside the terminal, matching canvasStyle's padding
	canvasPadX = 2
	canvasPadY = 1
)

type TickMsg time.Time

// Model is a live cradle in the terminal. Mouse drags go straight to the
// session's pointer handlers; keys issue configuration commands.
type Model struct {
	s         *session.Session
	name      string
	gravity   float64
	observers []session.Observer

	canvas *Canvas
	vp     Viewport
	frame  session.Frame

	running    bool
	selected   int
	energy     []float64
	collisions int
	err        error

	showHelp  bool
	recording bool
	frames    []*image.Paletted
	GIFPath   string
}

func NewModel(s *session.Session, name string) Model {
	m := Model{
		s:        s,
		name:     name,
		gravity:  s.Settings().Sim.Gravity,
		canvas:   NewCanvas(defaultCols, defaultRows),
		running:  true,
		energy:   make([]float64, 0, historyCapacity),
		GIFPath:  "cradle.gif",
		selected: 0,
	}
	m.frame = s.Frame()
	m.fit()
	return m
}

// WithObserver registers an observer that sees every stepped frame.
func (m Model) WithObserver(o session.Observer) Model {
	m.observers = append(m.observers, o)
	return m
}

func (m Model) Session() *session.Session { return m.s }

func (m Model) Init() tea.Cmd { return m.tick() }

func (m Model) tick() tea.Cmd {
	fps := max(m.s.FPS(), 1)
	return tea.Tick(time.Second/time.Duration(fps), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil
	case tea.WindowSizeMsg:
		m.canvas = NewCanvas(max(msg.Width-panelWidth-canvasPadX*2, 20), max(msg.Height-canvasPadY*2, 8))
		m.fit()
		return m, nil
	case TickMsg:
		if m.running {
			m.step()
		}
		m.draw()
		if m.recording {
			m.captureFrame()
		}
		return m, m.tick()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cfg := m.s.Config()
	switch k := msg.String(); k {
	case "q", "ctrl+c":
		return m, tea.Quit
	case " ":
		m.running = !m.running
	case ".":
		if !m.running {
			m.step()
		}
	case "r":
		m.apply(config.Reset{})
	case "up", "k":
		m.apply(config.SetBobCount{N: cfg.BobCount + 1})
	case "down", "j":
		m.apply(config.SetBobCount{N: cfg.BobCount - 1})
	case "g":
		m.apply(config.SetGap{On: !cfg.ContactGap})
	case "m":
		mode := config.MassIndividual
		if cfg.MassMode == config.MassIndividual {
			mode = config.MassUniform
		}
		m.apply(config.SetMassMode{Mode: mode})
	case "[", "]":
		delta := config.MassRatioStep
		if k == "[" {
			delta = -delta
		}
		m.apply(config.SetMassOverride{Index: m.selected, Ratio: cfg.MassOverrides[m.selected] + delta})
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		if i := int(k[0] - '1'); i < cfg.BobCount {
			m.selected = i
		}
	case "t":
		NextTheme()
	case "v":
		if m.recording {
			m.err = m.saveGIF()
			m.recording = false
			m.frames = nil
		} else {
			m.recording = true
			m.frames = make([]*image.Paletted, 0)
		}
	case "?":
		m.showHelp = !m.showHelp
	}
	return m, nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	p, inside := m.SceneAt(msg.X, msg.Y)
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonLeft && inside {
			m.s.PointerDown(p.X, p.Y)
		}
	case tea.MouseActionMotion:
		if !inside {
			m.s.PointerLeave()
			return
		}
		m.s.PointerMove(p.X, p.Y)
	case tea.MouseActionRelease:
		m.s.PointerUp()
	}
	m.frame = m.s.Frame()
}

// SceneAt maps a terminal cell to scene coordinates. The second result is
// false when the cell lies outside the canvas.
func (m Model) SceneAt(col, row int) (dynamo.Vec2, bool) {
	cx, cy := col-canvasPadX, row-canvasPadY
	inside := cx >= 0 && cy >= 0 && cx < m.canvas.Width && cy < m.canvas.Height
	return m.vp.ToScene(float64(cx*2+1), float64(cy*4+2)), inside
}

func (m *Model) fit() {
	w, h := m.canvas.Dots()
	m.vp = Fit(m.frame.Width, m.frame.Height, w, h)
}

func (m *Model) apply(cmd config.Command) {
	if err := m.s.Apply(cmd); err != nil {
		m.err = err
		return
	}
	m.err = nil
	m.selected = min(m.selected, m.s.Config().BobCount-1)
	m.energy = m.energy[:0]
	m.frame = m.s.Frame()
}

func (m *Model) step() {
	f := m.s.Step()
	m.frame = f
	m.collisions += len(f.Contacts)
	for _, o := range m.observers {
		o.OnFrame(f)
	}

	m.energy = append(m.energy, metrics.TotalEnergy(f, m.gravity))
	if len(m.energy) > historyCapacity {
		m.energy = m.energy[1:]
	}
}

func (m *Model) draw() {
	c := m.canvas
	c.Clear()
	f := m.frame

	c.Pen = CurrentTheme.Beam
	x0, y0 := m.vp.ToCanvas(f.Beam.From)
	x1, y1 := m.vp.ToCanvas(f.Beam.To)
	c.DrawLine(x0, y0, x1, y1)

	c.Pen = CurrentTheme.String
	for _, b := range f.Bobs {
		ax, ay := m.vp.ToCanvas(b.Anchor)
		bx, by := m.vp.ToCanvas(b.Position)
		c.DrawLine(ax, ay, bx, by)
	}

	for _, b := range f.Bobs {
		c.Pen = lipgloss.Color(b.DrawColor().Hex())
		if CurrentTheme.Mono && !b.Dragged {
			c.Pen = CurrentTheme.Title
		}
		bx, by := m.vp.ToCanvas(b.Position)
		r := max(m.vp.Length(b.Radius), 1)
		c.FillCircle(bx, by, r)
		if b.Index == m.selected {
			c.Pen = CurrentTheme.Muted
			c.DrawCircle(bx, by, r+2)
		}
	}
	c.Pen = ""
}

func (m Model) View() string {
	m.draw()
	canvasView := canvasStyle.Render(m.canvas.String())

	cfg := m.s.Config()
	var s strings.Builder
	s.WriteString(title("CRADLE") + " " + muted(m.name) + "\n")

	status := StatusRunning.Render("RUNNING")
	if !m.running {
		status = StatusPaused.Render("PAUSED")
	}
	if m.recording {
		status += " " + StatusRecording.Render("● REC")
	}
	s.WriteString(status + "\n")

	if len(m.energy) > 1 {
		chart := asciigraph.Plot(m.energy, asciigraph.Height(4), asciigraph.Width(28), asciigraph.Caption("Energy"))
		s.WriteString(graphStyle.Foreground(CurrentTheme.Graph).Render(chart) + "\n")
	} else {
		s.WriteString("\n")
	}

	row := func(label, value string) {
		s.WriteString(MetricLabel.Render(label) + MetricValue.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.2fs", m.frame.Time))
	row("Bobs", fmt.Sprintf("%d", cfg.BobCount))
	row("Gap", onOff(cfg.ContactGap))
	row("Mass", string(cfg.MassMode))
	row("Momentum", fmt.Sprintf("%.1f", metrics.HorizontalMomentum(m.frame)))
	row("Collisions", fmt.Sprintf("%d", m.collisions))
	row("Drag", m.s.DragState().String())
	if m.err != nil {
		s.WriteString(StatusRecording.Render(m.err.Error()) + "\n")
	}

	s.WriteString("\n" + Separator(30) + "\n")
	for i := 0; i < cfg.BobCount; i++ {
		ratio := cfg.MassRatio(i)
		marker := "  "
		if i == m.selected {
			marker = "> "
		}
		s.WriteString(fmt.Sprintf("%sbob %-2d %s %.1f\n", marker, i+1, Bar(ratio/config.MaxMassRatio, 10), ratio))
	}
	s.WriteString("\n" + KeyHint.Render("mouse:drag SP:pause r:reset ?:help"))

	statsView := statsStyle.Render(s.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
	if m.showHelp {
		return mainView + "\n" + helpText
	}
	return mainView
}

const helpText = `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Mouse    - Grab, swing, release     ║
║  Space    - Pause/Resume             ║
║  .        - Step one frame (paused)  ║
║  R        - Reset the cradle         ║
║  Up/Down  - More/fewer bobs          ║
║  G        - Toggle contact gap       ║
║  M        - Uniform/individual mass  ║
║  1-9      - Select bob               ║
║  [ ]      - Lighter/heavier bob      ║
║  T        - Cycle themes             ║
║  V        - Toggle GIF recording     ║
║  ?        - Toggle this help         ║
║  Q        - Quit                     ║
╚══════════════════════════════════════╝`

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func (m *Model) captureFrame() {
	charW, charH := 8, 16
	dotW, dotH := charW/2, charH/4
	img := image.NewPaletted(image.Rect(0, 0, m.canvas.Width*charW, m.canvas.Height*charH), color.Palette{color.Black, color.White})

	for row := 0; row < m.canvas.Height; row++ {
		for col := 0; col < m.canvas.Width; col++ {
			pattern := int(m.canvas.Grid[row][col] - blank)
			if pattern <= 0 {
				continue
			}
			baseX, baseY := col*charW, row*charH
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&pixelMap[dy][dx] == 0 {
						continue
					}
					for py := 0; py < dotH; py++ {
						for px := 0; px < dotW; px++ {
							img.SetColorIndex(baseX+dx*dotW+px, baseY+dy*dotH+py, 1)
						}
					}
				}
			}
		}
	}
	m.frames = append(m.frames, img)
}

func (m *Model) saveGIF() error {
	if len(m.frames) == 0 {
		return nil
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range m.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, 2)
	}
	f, err := os.Create(m.GIFPath)
	if err != nil {
		return err
	}
	defer f.Close()
	return gif.EncodeAll(f, &anim)
}

// RunLive opens a full-screen terminal view of s.
func RunLive(s *session.Session, name string, observers ...session.Observer) error {
	m := NewModel(s, name)
	for _, o := range observers {
		m = m.WithObserver(o)
	}
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	return err
}
