package repl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/tfmt/log"
	"github.com/ardnew/tfmt/tmpl"
)

// editDataMsg is sent when editing the data context completes successfully.
type editDataMsg struct{ data tmpl.Context }

// editCancelledMsg is sent when the user cleared the editor content.
type editCancelledMsg struct{}

// editDeclinedMsg is sent when the user declined to re-edit after a
// decoding error.
type editDeclinedMsg struct{}

// editErrorMsg is sent when the edit process encounters a non-decoding error.
type editErrorMsg struct{ err error }

const (
	tmplPrompt = "➜ "
	ctrlPrompt = " :"
)

func helpMessage() string {
	return `
: Commands (press Esc to toggle mode):

  help     Print this cruft
  list     List the data context
  helpers  List registered helpers
  edit     Edit the data context as YAML in $EDITOR
  clear    Clear screen
  quit     Exit REPL

Usage:
  Type a template to render it against the data context
  The line below the input previews the rendered output
  Completions appear automatically inside {placeholders}
  Press Tab / Shift-Tab to cycle through candidates
  Press Space to accept the current candidate
  Press Esc to toggle between template and command modes
  Use Up/Down arrows for history navigation (mode switches automatically)
  Use Shift+Up/Shift+Down for history navigation within current mode only
  Press Ctrl+C on empty line or Ctrl+D to exit
`
}

// inputMode represents the current input mode.
type inputMode int

const (
	modeTmpl inputMode = iota
	modeCtrl
)

// Styles.
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	ctrlPromptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("5")).
			Bold(true)
	inputStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	previewStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Faint(true)
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	helperStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	selectedStyle   = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
)

func formatCommand(input string) string {
	return promptStyle.Render(tmplPrompt) + inputStyle.Render(input)
}

func formatCtrlCommand(input string) string {
	return ctrlPromptStyle.Render(ctrlPrompt) + inputStyle.Render(input)
}

// model is the Bubble Tea model for the REPL.
type model struct {
	ctxFunc      func() context.Context
	input        textinput.Model
	data         tmpl.Context
	registry     *tmpl.Registry
	opts         []tmpl.Option
	logger       log.Logger
	history      *History
	historyIdx   int
	matches      fuzzy.Matches // current fuzzy match results
	candidates   []string      // backing candidate list
	wordStart    int           // byte offset of current word start
	wordEnd      int           // byte offset of current word end
	suggIdx      int           // selected candidate index
	tabActive    bool          // whether user is tab-cycling
	preTabText   string        // input text before tab-cycling began
	preTabCursor int           // cursor position before tab-cycling began
	width        int           // terminal width for ellipsization
	quitting     bool
	mode         inputMode
	tmplText     string
	tmplCursor   int
	ctrlText     string
	ctrlCursor   int
}

// Run starts the REPL rendering templates against data. History is kept
// under cacheDir. Templates render with opts and [tmpl.DefaultRegistry].
func Run(
	ctx context.Context,
	data tmpl.Context,
	cacheDir string,
	logger log.Logger,
	opts ...tmpl.Option,
) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	logger.TraceContext(
		ctx,
		"repl start",
		slog.String("cache_dir", cacheDir),
		slog.Int("key_count", len(data)),
	)

	var historyPath string

	if cacheDir != "" {
		if err := os.MkdirAll(cacheDir, 0o700); err != nil {
			logger.WarnContext(ctx, "could not create cache directory", slog.Any("error", err))
		} else {
			historyPath = filepath.Join(cacheDir, baseHistory)
		}
	}

	history := NewHistory(historyPath)
	if err := history.Load(); err != nil {
		logger.WarnContext(ctx, "could not load history", slog.Any("error", err))
	}

	logger.TraceContext(
		ctx,
		"repl history loaded",
		slog.Int("entry_count", history.Len()),
	)

	m := newModel(ctx, data, history, logger, opts...)

	p := tea.NewProgram(m, tea.WithContext(ctx))
	_, err = p.Run()

	return err
}

const defaultWidth = 80

func newModel(
	ctx context.Context,
	data tmpl.Context,
	history *History,
	logger log.Logger,
	opts ...tmpl.Option,
) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(tmplPrompt)
	ti.Focus()
	ti.CharLimit = 4096
	ti.Width = defaultWidth

	if data == nil {
		data = tmpl.Context{}
	}

	reg := tmpl.DefaultRegistry()

	return model{
		ctxFunc:    func() context.Context { return ctx },
		input:      ti,
		data:       data,
		registry:   reg,
		opts:       append(slices.Clip(opts), tmpl.WithRegistry(reg)),
		logger:     logger,
		history:    history,
		historyIdx: history.Len(),
		width:      defaultWidth,
		mode:       modeTmpl,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - len(tmplPrompt) - 2

		return m, nil

	case editDataMsg:
		m.data = msg.data
		m.logger.TraceContext(
			m.ctxFunc(),
			"repl edit complete",
			slog.Int("key_count", len(m.data)),
		)

		refreshMatches(&m, false)

		return m, tea.Println(resultStyle.Render("✔ data context updated"))

	case editCancelledMsg:
		return m, tea.Println(hintStyle.Render("🗴 edit cancelled"))

	case editDeclinedMsg:
		m.quitting = true

		return m, tea.Quit

	case editErrorMsg:
		return m, tea.Println(errorStyle.Render("🗴 error: " + msg.err.Error()))
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteString("\n")

	input := m.input.Value()

	if m.mode == modeTmpl && strings.TrimSpace(input) != "" {
		b.WriteString(m.preview(input))
		b.WriteString("\n")
	}

	viewingHistory := m.historyIdx < m.history.Len()
	call := detectHelperCall(input, m.input.Position())

	switch {
	case viewingHistory:
		hint := fmt.Sprintf("%s/%d",
			lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(m.historyIdx+1)),
			m.history.Len())
		b.WriteString(hintStyle.Render(hint))

	case strings.TrimSpace(input) == "":
		hint := "Type a template or press Esc for commands"
		if m.mode == modeCtrl {
			hint = "Type: " + strings.Join(ctrlCommands, ", ") + " (press Esc to return)"
		}

		b.WriteString(hintStyle.Render(hint))

	case call.inCall && m.mode == modeTmpl:
		if params, ok := helperParams(m.registry, call.name); ok {
			b.WriteString(renderSignatureHint(call.name, params, call.argIndex))
		} else if len(m.matches) > 0 {
			b.WriteString(m.candidateBar())
		}

	case len(m.matches) > 0:
		b.WriteString(m.candidateBar())
	}

	b.WriteString("\n")

	return b.String()
}

func (m model) candidateBar() string {
	isHelper := func(name string) bool {
		_, ok := m.registry.Lookup(name)

		return ok && m.mode == modeTmpl
	}

	return renderCandidateBar(m.matches, m.suggIdx, m.tabActive, m.width, isHelper)
}

// preview renders input uncached and returns the first line of the output
// or of the error, truncated to the terminal width.
func (m model) preview(input string) string {
	style := previewStyle

	out, err := m.render(input)
	if err != nil {
		style = errorStyle
		out = err.Error()
	}

	out, _, _ = strings.Cut(out, "\n")

	if w := m.width - 2; w > 3 && len(out) > w {
		out = out[:w-3] + "..."
	}

	return style.Render(out)
}

// render parses and executes input without populating the template cache.
func (m model) render(input string) (string, error) {
	ctx := m.ctxFunc()

	t, err := tmpl.Parse(ctx, input, m.opts...)
	if err != nil {
		return "", err
	}

	return t.Execute(ctx, m.data, m.opts...)
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	m.logger.TraceContext(
		m.ctxFunc(),
		"repl keypress",
		slog.String("key", msg.String()),
		slog.Int("type", int(msg.Type)),
	)

	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.input.SetValue("")
		m.tabActive = false
		m.historyIdx = m.history.Len()
		refreshMatches(&m, false)

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyEnter:
		if !m.tabActive || len(m.matches) == 0 {
			return m.executeInput()
		}

		m.tabActive = false
		refreshMatches(&m, true)

		return m, nil

	case tea.KeyTab:
		return m.cycle(1)

	case tea.KeyShiftTab:
		return m.cycle(-1)

	case tea.KeyUp:
		return m.historyPrev()

	case tea.KeyDown:
		return m.historyNext()

	case tea.KeyShiftUp:
		return m.historyStepInMode(-1)

	case tea.KeyShiftDown:
		return m.historyStepInMode(1)

	case tea.KeyEsc:
		if m.tabActive {
			m.tabActive = false
			m.input.SetValue(m.preTabText)
			m.input.SetCursor(m.preTabCursor)
			refreshMatches(&m, false)

			return m, nil
		}

		return m.toggleMode()

	case tea.KeyRunes, tea.KeySpace:
		if m.tabActive && msg.String() == " " {
			m.tabActive = false
		}

		var cmd tea.Cmd

		m.historyIdx = m.history.Len()
		m.input, cmd = m.input.Update(msg)
		refreshMatches(&m, true)

		return m, cmd
	}

	// Deletions and cursor movement recompute matches without auto-confirm.
	var cmd tea.Cmd

	m.tabActive = false
	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	refreshMatches(&m, false)

	return m, cmd
}

// cycle steps the selected candidate forward (dir > 0) or backward.
func (m model) cycle(dir int) (model, tea.Cmd) {
	if len(m.matches) == 0 {
		return m, nil
	}

	if len(m.matches) == 1 {
		replaceCurrentWord(&m, m.matches[0].Str)
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil

		return m, nil
	}

	switch {
	case m.tabActive:
		m.suggIdx = (m.suggIdx + dir + len(m.matches)) % len(m.matches)

	default:
		m.tabActive = true
		m.preTabText = m.input.Value()
		m.preTabCursor = m.input.Position()

		m.suggIdx = 0
		if dir < 0 {
			m.suggIdx = len(m.matches) - 1
		}
	}

	replaceCurrentWord(&m, m.matches[m.suggIdx].Str)

	return m, nil
}

// replaceCurrentWord replaces the current word boundaries in the input with
// the given replacement text and repositions the cursor.
func replaceCurrentWord(m *model, replacement string) {
	input := m.input.Value()
	newCursor := m.wordStart + len(replacement)

	m.input.SetValue(input[:m.wordStart] + replacement + input[m.wordEnd:])
	m.input.SetCursor(newCursor)

	m.wordEnd = newCursor
}

// refreshMatches recomputes fuzzy matches for the current input state.
// When autoConfirm is true a sole candidate equal to the typed word is
// accepted. Deletions and cursor movement pass false.
func refreshMatches(m *model, autoConfirm bool) {
	m.matches, m.candidates, m.wordStart, m.wordEnd = m.computeMatches()

	if !m.tabActive {
		m.suggIdx = -1
	}

	if !autoConfirm || len(m.matches) != 1 {
		return
	}

	candidate := m.matches[0].Str

	if m.input.Value()[m.wordStart:m.wordEnd] == candidate {
		replaceCurrentWord(m, candidate)
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil
	}
}

func (m model) executeInput() (model, tea.Cmd) {
	raw := m.input.Value()
	if strings.TrimSpace(raw) == "" {
		return m, nil
	}

	m.tmplText, m.tmplCursor = "", 0
	m.ctrlText, m.ctrlCursor = "", 0
	m.input.SetValue("")
	refreshMatches(&m, false)

	if m.mode == modeCtrl {
		input := strings.TrimSpace(raw)

		if err := m.history.Add(input, modeCtrl); err != nil {
			m.logger.DebugContext(m.ctxFunc(), "history write", slog.Any("error", err))
		}

		m.historyIdx = m.history.Len()

		return m.executeCommand(input)
	}

	// Template whitespace is significant, so the raw line is rendered.
	if err := m.history.Add(raw, modeTmpl); err != nil {
		m.logger.DebugContext(m.ctxFunc(), "history write", slog.Any("error", err))
	}

	m.historyIdx = m.history.Len()

	echoCmd := tea.Println(formatCommand(raw))

	out, err := m.render(raw)

	m.logger.TraceContext(
		m.ctxFunc(),
		"repl render",
		slog.String("input", raw),
		slog.Int("output_bytes", len(out)),
		slog.Bool("ok", err == nil),
	)

	if err != nil {
		return m, tea.Sequence(
			echoCmd,
			tea.Println(errorStyle.Render("error: "+err.Error())),
		)
	}

	return m, tea.Sequence(echoCmd, tea.Println(resultStyle.Render(out)))
}

func (m model) executeCommand(input string) (model, tea.Cmd) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return m, nil
	}

	echoCmd := tea.Println(formatCtrlCommand(input))

	m.logger.TraceContext(
		m.ctxFunc(),
		"repl exec command",
		slog.String("command", parts[0]),
		slog.Any("args", parts[1:]),
	)

	switch parts[0] {
	case "q", "quit", "exit":
		m.quitting = true

		return m, tea.Sequence(echoCmd, tea.Quit)

	case "h", "help":
		return m, tea.Sequence(echoCmd, tea.Println(helpMessage()))

	case "l", "list":
		return m, tea.Sequence(echoCmd, tea.Println(m.listContext()))

	case "helpers":
		return m, tea.Sequence(echoCmd, tea.Println(m.listHelpers()))

	case "c", "clear":
		return m, tea.ClearScreen

	case "e", "edit":
		return m, tea.Sequence(echoCmd, m.handleEdit())

	default:
		return m, tea.Println(
			errorStyle.Render(fmt.Sprintf("%v: %s (try 'help')", ErrUnknownCommand, parts[0])),
		)
	}
}

func (m model) handleEdit() tea.Cmd {
	cmd := &editDataCommand{
		data:    m.data,
		ctxFunc: m.ctxFunc,
		logger:  m.logger,
	}

	return tea.Exec(cmd, func(err error) tea.Msg {
		if errors.Is(err, ErrEditDeclined) {
			return editDeclinedMsg{}
		}

		if err != nil {
			return editErrorMsg{err: err}
		}

		if cmd.newData == nil {
			return editCancelledMsg{}
		}

		return editDataMsg{data: cmd.newData}
	})
}

// showEntry loads history entry i into the input, switching to its mode.
func (m model) showEntry(i int) model {
	entry, err := m.history.Entry(i)
	if err != nil {
		return m
	}

	m.historyIdx = i

	if m.mode != entry.Mode {
		m, _ = m.switchToMode(entry.Mode)
	}

	m.input.SetValue(entry.Line)
	m.input.SetCursor(len(entry.Line))
	refreshMatches(&m, false)

	return m
}

// clearEntry leaves history navigation with an empty input.
func (m model) clearEntry() model {
	m.historyIdx = m.history.Len()
	m.input.SetValue("")
	refreshMatches(&m, false)

	return m
}

func (m model) historyPrev() (model, tea.Cmd) {
	if m.historyIdx > 0 {
		return m.showEntry(m.historyIdx - 1), nil
	}

	return m, nil
}

func (m model) historyNext() (model, tea.Cmd) {
	if m.historyIdx < m.history.Len()-1 {
		return m.showEntry(m.historyIdx + 1), nil
	}

	return m.clearEntry(), nil
}

// historyStepInMode moves to the nearest entry of the current mode in the
// direction of dir.
func (m model) historyStepInMode(dir int) (model, tea.Cmd) {
	for i := m.historyIdx + dir; i >= 0 && i < m.history.Len(); i += dir {
		if entry, err := m.history.Entry(i); err == nil && entry.Mode == m.mode {
			return m.showEntry(i), nil
		}
	}

	if dir > 0 && m.historyIdx < m.history.Len() {
		return m.clearEntry(), nil
	}

	return m, nil
}

func (m model) listContext() string {
	var b strings.Builder

	for _, key := range slices.Sorted(maps.Keys(m.data)) {
		fmt.Fprintf(&b, "  %s %s\n", key, hintStyle.Render(formatPreview(m.data[key])))
	}

	if b.Len() == 0 {
		return hintStyle.Render("  (empty)")
	}

	return b.String()
}

func (m model) listHelpers() string {
	var b strings.Builder

	for _, name := range m.registry.Names() {
		params, _ := helperParams(m.registry, name)
		fmt.Fprintf(&b, "  %s %s\n", helperStyle.Render(name),
			hintStyle.Render(strings.Join(params, " ")))
	}

	return b.String()
}

// toggleMode switches between template and control modes.
func (m model) toggleMode() (model, tea.Cmd) {
	if m.mode == modeTmpl {
		return m.switchToMode(modeCtrl)
	}

	return m.switchToMode(modeTmpl)
}

// switchToMode switches to the specified mode, preserving each mode's input.
func (m model) switchToMode(mode inputMode) (model, tea.Cmd) {
	if m.mode == modeTmpl {
		m.tmplText, m.tmplCursor = m.input.Value(), m.input.Position()
	} else {
		m.ctrlText, m.ctrlCursor = m.input.Value(), m.input.Position()
	}

	m.mode = mode
	if mode == modeTmpl {
		m.input.Prompt = promptStyle.Render(tmplPrompt)
		m.input.SetValue(m.tmplText)
		m.input.SetCursor(m.tmplCursor)
	} else {
		m.input.Prompt = ctrlPromptStyle.Render(ctrlPrompt)
		m.input.SetValue(m.ctrlText)
		m.input.SetCursor(m.ctrlCursor)
	}

	refreshMatches(&m, false)

	return m, nil
}
