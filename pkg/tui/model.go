package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/helmcode/lossnote/pkg/form"
	"github.com/helmcode/lossnote/pkg/formatter"
	"github.com/helmcode/lossnote/pkg/model"
	"github.com/helmcode/lossnote/pkg/session"
)

// Lines kept below the report viewport for status, input and help.
const reservedLines = 5

// Messages
type readyMsg struct{}

type analyzedMsg struct{ err error }

type chatMsg struct {
	turn model.ChatTurn
	err  error
}

type quizMsg struct{ err error }

// Model is the bubbletea model of a review session.
type Model struct {
	ctx    context.Context
	ctrl   *session.Controller
	styles Styles

	input    textinput.Model
	spinner  spinner.Model
	viewport viewport.Model

	view   session.View
	status string
	width  int
	height int
}

// New returns a model over ctrl. The caller boots the controller.
func New(ctx context.Context, ctrl *session.Controller) Model {
	ti := textinput.New()
	ti.Prompt = "› "
	ti.CharLimit = 500
	ti.Width = 60
	ti.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(Accent)

	m := Model{
		ctx:      ctx,
		ctrl:     ctrl,
		styles:   DefaultStyles(),
		input:    ti,
		spinner:  s,
		viewport: viewport.New(80, 20),
		width:    80,
		height:   24,
	}
	m.refresh()
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, textinput.Blink, m.waitReady)
}

func (m Model) waitReady() tea.Msg {
	select {
	case <-m.ctrl.Ready():
		return readyMsg{}
	case <-m.ctx.Done():
		return nil
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.input.Width = max(20, msg.Width-4)
		m.viewport.Width = msg.Width
		m.viewport.Height = max(5, msg.Height-reservedLines)

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.view.State == session.Splash {
			m.ctrl.SkipSplash()
			break
		}
		switch msg.Type {
		case tea.KeyEnter:
			value := m.input.Value()
			m.input.Reset()
			cmds = append(cmds, m.submit(value))
		case tea.KeyPgUp, tea.KeyPgDown, tea.KeyUp, tea.KeyDown:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			cmds = append(cmds, cmd)
		case tea.KeyEsc:
			m.status = ""
		default:
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			cmds = append(cmds, cmd)
		}

	case readyMsg:

	case analyzedMsg:
		// Failures are shown from the session error; repeated submits are
		// rejected by the controller and need no message.
		m.refresh()
		m.viewport.GotoTop()

	case chatMsg:
		switch {
		case msg.err == nil:
			m.refresh()
			m.viewport.GotoBottom()
		case errors.Is(msg.err, session.ErrStale), errors.Is(msg.err, context.Canceled):
		default:
			m.status = "chat failed: " + msg.err.Error()
		}

	case quizMsg:
		if msg.err != nil && !errors.Is(msg.err, session.ErrStale) {
			m.status = "quiz failed: " + msg.err.Error()
		} else {
			m.refresh()
			m.viewport.GotoBottom()
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	m.refresh()
	return m, tea.Batch(cmds...)
}

// refresh re-reads the session and re-renders the report body.
func (m *Model) refresh() {
	m.view = m.ctrl.Snapshot()
	if m.view.State != session.Analysis {
		return
	}
	var b strings.Builder
	_ = formatter.DisplayResults(&b, m.view, "human")
	if m.view.Loading.Chat {
		b.WriteString(m.styles.Pending.Render("advisor is typing..."))
	}
	m.viewport.SetContent(b.String())
}

// submit runs one input line against the current screen.
func (m *Model) submit(value string) tea.Cmd {
	m.status = ""
	l := parseLine(value)
	if l.Verb == "quit" || l.Verb == "/quit" {
		return tea.Quit
	}

	var (
		cmd tea.Cmd
		err error
	)
	switch m.view.State.Screen {
	case session.ScreenHome:
		if l.Verb != "" && l.Verb != "start" {
			err = errors.New("press Enter to start a review, or type quit")
			break
		}
		err = m.ctrl.Start()
	case session.ScreenForm:
		cmd, err = m.formCommand(l)
	case session.ScreenAnalysis:
		cmd, err = m.analysisCommand(value, l)
	}
	if err != nil {
		m.status = err.Error()
	}
	return cmd
}

func need(l line, n int, usage string) error {
	if len(l.Args) < n {
		return fmt.Errorf("%w: %s", errUsage, usage)
	}
	return nil
}

func (m *Model) formCommand(l line) (tea.Cmd, error) {
	stocks := m.view.Form.Stocks
	stock := func() (int, error) {
		return pick(l.Args[0], len(stocks))
	}

	switch l.Verb {
	case "", "next":
		if m.view.Step == session.LastStep {
			return m.generate()
		}
		if !m.ctrl.Next() {
			return nil, errors.New("complete this step to continue")
		}
		return nil, nil

	case "back":
		return nil, m.ctrl.Back()

	case "generate":
		return m.generate()

	case "add":
		added, err := m.ctrl.AddStock(l.Rest)
		if err == nil && !added {
			err = fmt.Errorf("stock %q is blank or already listed", l.Rest)
		}
		return nil, err

	case "rm":
		if err := need(l, 1, "rm N"); err != nil {
			return nil, err
		}
		i, err := stock()
		if err != nil {
			return nil, err
		}
		_, err = m.ctrl.RemoveStock(stocks[i].Name)
		return nil, err

	case "sold", "holding":
		if err := need(l, 1, l.Verb+" N"); err != nil {
			return nil, err
		}
		i, err := stock()
		if err != nil {
			return nil, err
		}
		status := model.Status(l.Verb)
		return nil, m.ctrl.UpdateStock(i, form.StockUpdate{Status: &status})

	case "period":
		if err := need(l, 2, "period N OPTION"); err != nil {
			return nil, err
		}
		i, err := stock()
		if err != nil {
			return nil, err
		}
		period, err := pickOption(l.Args[1], model.Periods)
		if err != nil {
			return nil, err
		}
		return nil, m.ctrl.UpdateStock(i, form.StockUpdate{Period: &period})

	case "date":
		if err := need(l, 3, "date N sy|sm|sd|ey|em|ed DIGITS"); err != nil {
			return nil, err
		}
		i, err := stock()
		if err != nil {
			return nil, err
		}
		seg, err := form.ParseSegment(l.Args[1])
		if err != nil {
			return nil, err
		}
		return nil, m.ctrl.SetPeriodSegment(i, seg, l.Args[2])

	case "pattern":
		if err := need(l, 2, "pattern N OPTION"); err != nil {
			return nil, err
		}
		i, err := stock()
		if err != nil {
			return nil, err
		}
		pattern, err := pickOption(l.Args[1], model.TradePatterns)
		if err != nil {
			return nil, err
		}
		return nil, m.ctrl.TogglePattern(i, pattern)

	case "basis":
		if err := need(l, 1, "basis OPTION"); err != nil {
			return nil, err
		}
		tag, err := pickOption(l.Args[0], model.DecisionOptions)
		if err != nil {
			return nil, err
		}
		return nil, m.ctrl.ToggleDecisionBasis(tag)
	}
	return nil, fmt.Errorf("unknown command %q", l.Verb)
}

func (m *Model) generate() (tea.Cmd, error) {
	if !m.view.CanAdvance {
		return nil, errors.New("pick at least one decision basis")
	}
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		return analyzedMsg{err: ctrl.Generate(ctx)}
	}, nil
}

func (m *Model) analysisCommand(value string, l line) (tea.Cmd, error) {
	if !strings.HasPrefix(l.Verb, "/") {
		return m.send(value)
	}

	switch l.Verb {
	case "/exit":
		return nil, m.ctrl.Exit()

	case "/quiz":
		ctx, ctrl := m.ctx, m.ctrl
		return func() tea.Msg {
			_, err := ctrl.Quiz(ctx)
			return quizMsg{err: err}
		}, nil

	case "/ask":
		if err := need(l, 1, "/ask N"); err != nil {
			return nil, err
		}
		q, err := pickOption(l.Args[0], m.view.Report.Advisor.SuggestedQuestions)
		if err != nil {
			return nil, err
		}
		return m.send(q)

	case "/toggle", "/hide", "/show":
		if err := need(l, 1, l.Verb+" SECTION"); err != nil {
			return nil, err
		}
		s, err := session.ParseSection(l.Args[0])
		if err != nil {
			return nil, err
		}
		if l.Verb == "/toggle" {
			return nil, m.ctrl.ToggleSection(s)
		}
		return nil, m.ctrl.ShowSection(s, l.Verb == "/show")

	case "/expand":
		if err := need(l, 1, "/expand ID"); err != nil {
			return nil, err
		}
		id, err := turnByPrefix(m.view.Transcript, l.Args[0])
		if err != nil {
			return nil, err
		}
		m.ctrl.ToggleTurn(id)
		return nil, nil
	}
	return nil, fmt.Errorf("unknown command %q", l.Verb)
}

// send records the user turn now, so turns keep the order they were typed
// in, and delivers it in the background.
func (m *Model) send(text string) (tea.Cmd, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	p, err := m.ctrl.QueueChat(text)
	if err != nil {
		return nil, err
	}
	ctx := m.ctx
	return func() tea.Msg {
		turn, err := p.Wait(ctx)
		return chatMsg{turn: turn, err: err}
	}, nil
}

func (m Model) View() string {
	var b strings.Builder
	switch m.view.State.Screen {
	case session.ScreenSplash:
		b.WriteString(m.styles.Logo.Render("📉 lossnote\n손실 복기 노트"))
		b.WriteString("\n\n")
		b.WriteString(m.styles.Hint.Render("press any key"))
		return b.String()

	case session.ScreenHome:
		b.WriteString(m.styles.Title.Render("📉 lossnote"))
		b.WriteString("\n\nReview a losing trade: what you held, how you traded, why you bought.\n\n")
		b.WriteString(m.styles.Hint.Render("Enter to start · quit to leave"))

	case session.ScreenForm:
		m.formView(&b)

	case session.ScreenLoading:
		b.WriteString(fmt.Sprintf("%s Analyzing your trades...", m.spinner.View()))
		return b.String()

	case session.ScreenAnalysis:
		b.WriteString(m.viewport.View())
		b.WriteString("\n")
		if m.view.Loading.Quiz {
			b.WriteString(fmt.Sprintf("%s Generating quiz...\n", m.spinner.View()))
		}
		b.WriteString(m.styles.Hint.Render("type a question · /ask N · /toggle|/hide|/show SECTION · /expand ID · /quiz · /exit"))
	}

	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(m.styles.Status.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(m.input.View())
	return b.String()
}

func (m Model) formView(b *strings.Builder) {
	var out strings.Builder
	formatter.DisplayForm(&out, m.view)
	b.WriteString(out.String())
	b.WriteString("\n")

	switch m.view.Step {
	case 1:
		b.WriteString(m.styles.Step.Render("Which stocks lost money?"))
		b.WriteString("\n")
		b.WriteString(m.styles.Hint.Render("add NAME · rm N · sold N · holding N · period N OPTION · date N SEGMENT DIGITS"))
		b.WriteString("\n")
		b.WriteString(m.styles.Option.Render(numbered(model.Periods)))
	case 2:
		b.WriteString(m.styles.Step.Render("How did you trade them?"))
		b.WriteString("\n")
		b.WriteString(m.styles.Hint.Render("pattern N OPTION"))
		b.WriteString("\n")
		b.WriteString(m.styles.Option.Render(numbered(model.TradePatterns)))
	case 3:
		b.WriteString(m.styles.Step.Render("Why did you buy?"))
		b.WriteString("\n")
		b.WriteString(m.styles.Hint.Render("basis OPTION"))
		b.WriteString("\n")
		b.WriteString(m.styles.Option.Render(numbered(model.DecisionOptions)))
	}
	b.WriteString("\n")
	b.WriteString(m.styles.Hint.Render("Enter for next · back · quit"))
	b.WriteString("\n")
}
