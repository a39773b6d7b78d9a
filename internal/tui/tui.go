package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Ziad0dev/lastfm-wallpaper/internal/config"
	"github.com/Ziad0dev/lastfm-wallpaper/internal/imaging"
	"github.com/Ziad0dev/lastfm-wallpaper/internal/lastfm"
	"github.com/Ziad0dev/lastfm-wallpaper/internal/wallpaper"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#D51007")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)

	albumStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8B500"))
)

const (
	maxLogs      = 10
	maxAlbums    = 12
	eventBacklog = 64
)

var errCancelled = errors.New("cancelled by user")

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StateInitializing
	StateGenerating
	StateComplete
	StateError
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   wallpaper.ProgressLevel
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state     State
	textInput textinput.Model
	spinner   spinner.Model
	progress  progress.Model
	settings  *config.Settings
	outDir    string
	username  string
	logs      []LogEntry
	albums    []string
	valid     string
	inputErr  string
	err       error

	ctx    context.Context
	cancel context.CancelFunc

	manager *wallpaper.Manager
	events  chan wallpaper.ProgressEvent

	// Generation progress
	produced int32
	failed   int32
	total    int32

	// Result
	archivePath string
	archiveSize int64

	// Options
	period    lastfm.Period
	letterbox bool
	sharpen   bool
	verbose   bool

	width  int
	height int
}

// NewModel creates a new TUI model. Archives are exported into outDir.
func NewModel(settings *config.Settings, outDir string) Model {
	if settings == nil {
		settings = config.DefaultSettings()
	}
	if outDir == "" {
		outDir = "."
	}

	ti := textinput.New()
	ti.Placeholder = "Last.fm username"
	ti.Focus()
	ti.CharLimit = 64
	ti.Width = 40

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#D51007"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	period, err := lastfm.ParsePeriod(settings.DefaultPeriod)
	if err != nil {
		period = lastfm.DefaultPeriod
	}
	mode, _ := imaging.ParseMode(settings.Mode)

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:     StateInput,
		textInput: ti,
		spinner:   sp,
		progress:  prog,
		settings:  settings,
		outDir:    outDir,
		logs:      make([]LogEntry, 0),
		ctx:       ctx,
		cancel:    cancel,
		period:    period,
		letterbox: mode == imaging.ModeLetterbox,
		sharpen:   settings.Sharpen,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Message types
type (
	// ProgressMsg carries one event emitted by the manager.
	ProgressMsg struct {
		Event wallpaper.ProgressEvent
	}

	// InitDoneMsg is sent when validation and album lookup complete.
	InitDoneMsg struct {
		Albums  []string
		Manager *wallpaper.Manager
		Message string
		Err     error

		events chan wallpaper.ProgressEvent
	}

	// GenerateDoneMsg is sent when the archive is exported.
	GenerateDoneMsg struct {
		Path   string
		Size   int64
		Files  int
		Failed int
		Err    error
	}

	// TickMsg is for periodic progress updates.
	TickMsg struct{}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = min(max(msg.Width-20, 20), 80)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()
			return m, tea.Quit

		case "esc":
			if m.state == StateInput {
				return m, tea.Quit
			}
			if m.state == StateGenerating || m.state == StateInitializing {
				m.cancel()
				m.state = StateError
				m.err = errCancelled
			}

		case "enter":
			if m.state == StateInput {
				username, err := lastfm.NormalizeUsername(m.textInput.Value())
				if err != nil {
					m.inputErr = capitalize(err.Error())
					return m, nil
				}
				m.inputErr = ""
				m.username = username
				m.state = StateInitializing
				m.events = make(chan wallpaper.ProgressEvent, eventBacklog)
				return m, tea.Batch(m.initialize(username), m.waitForEvent(), m.spinner.Tick)
			}

		case "tab":
			if m.state == StateInput {
				m.period = nextPeriod(m.period)
				return m, nil
			}

		case "ctrl+l":
			if m.state == StateInput {
				m.letterbox = !m.letterbox
				return m, nil
			}

		case "ctrl+s":
			if m.state == StateInput {
				m.sharpen = !m.sharpen
				return m, nil
			}

		case "ctrl+b":
			if m.state == StateInput {
				m.verbose = !m.verbose
				return m, nil
			}

		case "q":
			if m.state == StateComplete || m.state == StateError {
				return m, tea.Quit
			}

		case "r":
			if m.state == StateComplete || m.state == StateError {
				m.reset()
				return m, textinput.Blink
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case ProgressMsg:
		cmds = append(cmds, m.waitForEvent())
		if msg.Event.Level == wallpaper.LevelVerbose && !m.verbose {
			break
		}
		m.logs = append(m.logs, LogEntry{
			Message: msg.Event.Message,
			Level:   msg.Event.Level,
		})
		if len(m.logs) > maxLogs {
			m.logs = m.logs[len(m.logs)-maxLogs:]
		}

	case InitDoneMsg:
		if m.state != StateInitializing {
			// Cancelled while initializing; nothing will run Build.
			if msg.Err == nil && msg.events != nil {
				close(msg.events)
			}
			return m, nil
		}
		if msg.Err != nil {
			m.state = StateError
			m.err = msg.Err
			return m, nil
		}
		m.albums = msg.Albums
		m.valid = msg.Message
		m.manager = msg.Manager
		m.state = StateGenerating
		cmds = append(cmds, m.generate(), m.tickProgress())

	case GenerateDoneMsg:
		if m.state != StateGenerating {
			return m, nil
		}
		if m.manager != nil {
			m.produced, m.failed, m.total = m.manager.GetProgress()
		}
		switch {
		case m.ctx.Err() != nil:
			m.state = StateError
			m.err = errCancelled
		case msg.Err != nil:
			m.state = StateError
			m.err = msg.Err
		default:
			m.state = StateComplete
			m.archivePath = msg.Path
			m.archiveSize = msg.Size
		}

	case TickMsg:
		if m.manager != nil && m.state == StateGenerating {
			m.produced, m.failed, m.total = m.manager.GetProgress()
			cmds = append(cmds, m.progress.SetPercent(m.percent()), m.tickProgress())
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	if m.state == StateInput {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) reset() {
	m.state = StateInput
	m.logs = nil
	m.albums = nil
	m.valid = ""
	m.err = nil
	m.inputErr = ""
	m.produced, m.failed, m.total = 0, 0, 0
	m.archivePath = ""
	m.archiveSize = 0
	m.manager = nil
	m.events = nil
	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.textInput.SetValue("")
	m.textInput.Focus()
}

func (m Model) percent() float64 {
	if m.total <= 0 {
		return 0
	}
	return float64(m.produced+m.failed) / float64(m.total)
}

// tickProgress returns a command to tick progress updates.
func (m Model) tickProgress() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// waitForEvent delivers the next manager event as a ProgressMsg.
func (m Model) waitForEvent() tea.Cmd {
	events := m.events
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		e, ok := <-events
		if !ok {
			return nil
		}
		return ProgressMsg{Event: e}
	}
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Last.fm Wallpaper Generator"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Turn your top albums into desktop wallpapers"))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StateInitializing:
		b.WriteString(m.viewInitializing())
	case StateGenerating:
		b.WriteString(m.viewGenerating())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func checkbox(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}

func (m Model) viewInput() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render("Enter Last.fm username:"))
	b.WriteString("\n\n")
	b.WriteString(m.textInput.View())
	b.WriteString("\n")
	if m.inputErr != "" {
		b.WriteString(errorStyle.Render(m.inputErr))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(infoStyle.Render("Options:"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  Period: %s (tab)\n", albumStyle.Render(string(m.period)))
	fmt.Fprintf(&b, "  %s Letterbox instead of fill (ctrl+l)\n", checkbox(m.letterbox))
	fmt.Fprintf(&b, "  %s Sharpen (ctrl+s)\n", checkbox(m.sharpen))
	fmt.Fprintf(&b, "  %s Verbose/debug output (ctrl+b)\n", checkbox(m.verbose))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Resolution: %s | Output: %s", m.settings.Resolution(), m.outDir)))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewInitializing() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render("Fetching top albums..."))
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewGenerating() string {
	var b strings.Builder

	if m.valid != "" {
		b.WriteString(dimStyle.Render(m.valid))
		b.WriteString("\n")
	}
	if len(m.albums) > 0 {
		b.WriteString(successStyle.Render(fmt.Sprintf("Found %d album(s):", len(m.albums))))
		b.WriteString("\n")
		for i, album := range m.albums {
			if i == maxAlbums {
				b.WriteString(dimStyle.Render(fmt.Sprintf("  ... and %d more", len(m.albums)-maxAlbums)))
				b.WriteString("\n")
				break
			}
			b.WriteString(albumStyle.Render("  " + album))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(m.progress.ViewAs(m.percent()))
	b.WriteString("\n")
	b.WriteString(infoStyle.Render(fmt.Sprintf("Wallpapers: %d/%d | Skipped: %d", m.produced, m.total, m.failed)))
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewComplete() string {
	return boxStyle.Render(fmt.Sprintf(
		"Wallpapers ready!\n\n"+
			"Wallpapers: %d\n"+
			"Skipped: %d\n"+
			"Archive: %s\n"+
			"Size: %.2f MB",
		m.produced,
		m.failed,
		m.archivePath,
		float64(m.archiveSize)/1024/1024,
	))
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString("  " + errorMessage(m.err))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs {
		var style lipgloss.Style
		prefix := "-"
		switch log.Level {
		case wallpaper.LevelError:
			style = errorStyle
			prefix = "x"
		case wallpaper.LevelWarning:
			style = warningStyle
			prefix = "!"
		case wallpaper.LevelSuccess:
			style = successStyle
			prefix = "+"
		case wallpaper.LevelInfo:
			style = infoStyle
			prefix = ">"
		default:
			style = dimStyle
		}
		b.WriteString(style.Render(prefix + " " + log.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) getHelpText() string {
	switch m.state {
	case StateInput:
		return "enter: generate | tab: period | ctrl+l: letterbox | ctrl+s: sharpen | ctrl+b: verbose | esc: quit"
	case StateInitializing, StateGenerating:
		return "esc: cancel"
	case StateComplete, StateError:
		return "r: new user | q: quit"
	}
	return ""
}

// runSettings applies the toggles to a copy of the loaded settings.
func (m Model) runSettings() *config.Settings {
	s := *m.settings
	s.Mode = imaging.ModeFill.String()
	if m.letterbox {
		s.Mode = imaging.ModeLetterbox.String()
	}
	s.Sharpen = m.sharpen
	return &s
}

// initialize validates the user, fetches albums and creates the manager.
func (m Model) initialize(username string) tea.Cmd {
	ctx, events := m.ctx, m.events
	settings := m.runSettings()
	period := m.period
	limit := lastfm.ClampLimit(settings.DefaultLimit, settings.MaxLimit)

	return func() tea.Msg {
		manager := wallpaper.NewManager(settings, func(e wallpaper.ProgressEvent) {
			select {
			case events <- e:
			default:
			}
		})

		v, err := manager.Initialize(ctx, username, period, limit)
		if err != nil {
			close(events)
			return InitDoneMsg{Err: err}
		}

		return InitDoneMsg{
			Albums:  manager.GetAlbumNames(),
			Manager: manager,
			Message: v.Message,
			events:  events,
		}
	}
}

// generate renders the wallpapers and exports the archive to outDir.
func (m Model) generate() tea.Cmd {
	ctx, manager, outDir, username, events := m.ctx, m.manager, m.outDir, m.username, m.events

	return func() tea.Msg {
		if events != nil {
			defer close(events)
		}
		if manager == nil {
			return GenerateDoneMsg{Err: errors.New("no manager")}
		}

		res, err := manager.Build(ctx, username)
		if err != nil {
			return GenerateDoneMsg{Err: err}
		}

		path, err := wallpaper.Export(ctx, res.Archive, outDir)
		if err != nil {
			return GenerateDoneMsg{Err: err}
		}

		return GenerateDoneMsg{
			Path:   path,
			Size:   res.Archive.Size,
			Files:  res.Archive.Files,
			Failed: res.Failed,
		}
	}
}

func nextPeriod(p lastfm.Period) lastfm.Period {
	for i, candidate := range lastfm.Periods {
		if candidate == p {
			return lastfm.Periods[(i+1)%len(lastfm.Periods)]
		}
	}
	return lastfm.DefaultPeriod
}

func errorMessage(err error) string {
	if errors.Is(err, wallpaper.ErrNoWallpapers) {
		return wallpaper.NoWallpapersMessage
	}
	return capitalize(err.Error())
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Run starts the TUI application.
func Run(settings *config.Settings, outDir string) error {
	p := tea.NewProgram(NewModel(settings, outDir), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
