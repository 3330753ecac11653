// Package session drives one review session: the screen flow, the form, the
// installed report and its chat transcript. The Controller is the only
// writer of session state; everything it hands out is a copy.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/helmcode/lossnote/pkg/form"
	"github.com/helmcode/lossnote/pkg/model"
	"github.com/helmcode/lossnote/pkg/orchestrator"
	"github.com/helmcode/lossnote/pkg/transcript"
	"go.uber.org/zap"
)

var (
	// ErrInvalidState is returned for commands that do not apply to the
	// current screen.
	ErrInvalidState = errors.New("command not valid on this screen")
	// ErrStale is returned when a result arrives for a form or report that
	// is no longer current. The result is discarded.
	ErrStale = errors.New("result no longer applies to the session")
	// ErrNoReport is returned by report commands when none is installed.
	ErrNoReport = errors.New("no analysis report")
	// ErrEmptyMessage is returned for chat messages that are blank.
	ErrEmptyMessage = errors.New("empty chat message")
)

const DefaultSplashDelay = 2500 * time.Millisecond

// Orchestrator is the set of remote operations a session needs.
type Orchestrator interface {
	Analyze(ctx context.Context, data model.FormData) (model.Report, error)
	Chat(ctx context.Context, history []model.ChatTurn, message string) (orchestrator.ChatReply, error)
	GenerateQuiz(ctx context.Context, report model.Report) (model.QuizSet, error)
	ForgetQuiz(reportID string)
	Loading() orchestrator.Loading
}

// Options configure a Controller.
type Options struct {
	SplashDelay time.Duration
	// ExpandNewestTurn shows the newest assistant reply expanded by default.
	ExpandNewestTurn bool
	Logger           *zap.Logger
}

type Controller struct {
	orch Orchestrator
	opts Options
	log  *zap.Logger

	mu         sync.Mutex
	state      State
	formID     string
	form       *form.Form
	customFlag map[string]bool
	report     *model.Report
	transcript *transcript.Transcript
	sections   map[Section]SectionState
	quiz       *model.QuizSet
	lastErr    error
	// chatTail is closed when the most recently queued chat send finishes.
	chatTail chan struct{}

	bootOnce   sync.Once
	splashOnce sync.Once
	splash     *time.Timer
	ready      chan struct{}
}

// New returns a controller on the splash screen. Call Boot to start the
// splash timer.
func New(orch Orchestrator, opts Options) *Controller {
	if opts.SplashDelay <= 0 {
		opts.SplashDelay = DefaultSplashDelay
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	c := &Controller{
		orch:  orch,
		opts:  opts,
		log:   log,
		state: Splash,
		ready: make(chan struct{}),
	}
	c.resetForm()
	c.clearReport()
	return c
}

// Boot starts the splash timer. Only the first call has an effect.
func (c *Controller) Boot() {
	c.bootOnce.Do(func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.splash = time.AfterFunc(c.opts.SplashDelay, c.leaveSplash)
	})
}

// SkipSplash leaves the splash screen now. The pending timer becomes a no-op.
func (c *Controller) SkipSplash() {
	c.leaveSplash()
}

func (c *Controller) leaveSplash() {
	c.splashOnce.Do(func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.splash != nil {
			c.splash.Stop()
		}
		c.apply(EventSplashElapsed)
		close(c.ready)
	})
}

// Ready is closed once the splash screen is gone.
func (c *Controller) Ready() <-chan struct{} {
	return c.ready
}

// Close stops the splash timer.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.splash != nil {
		c.splash.Stop()
	}
}

// State returns the current view state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// apply runs an event through Transition. c.mu must be held.
func (c *Controller) apply(e Event) bool {
	next := Transition(c.state, e, c.form.Snapshot())
	if next == c.state {
		return false
	}
	c.log.Debug("transition",
		zap.Stringer("from", c.state),
		zap.Stringer("event", e),
		zap.Stringer("to", next),
	)
	c.state = next
	return true
}

// Start opens a pristine form from the home screen.
func (c *Controller) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Home {
		return fmt.Errorf("start from %s: %w", c.state, ErrInvalidState)
	}
	c.resetForm()
	c.lastErr = nil
	c.apply(EventStart)
	return nil
}

func (c *Controller) resetForm() {
	c.form = form.New()
	c.customFlag = map[string]bool{}
	c.formID = uuid.NewString()
}

// CanAdvance reports whether the current form step passes its gate.
func (c *Controller) CanAdvance() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Screen == ScreenForm && form.StepValid(c.state.Step, c.form.Snapshot())
}

// Next moves to the next form step. It reports false when the step gate
// blocks, or on the last step, where Generate takes over.
func (c *Controller) Next() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Screen != ScreenForm {
		return false
	}
	return c.apply(EventNext)
}

// Back moves to the previous step, or home from the first one.
func (c *Controller) Back() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Screen != ScreenForm {
		return fmt.Errorf("back from %s: %w", c.state, ErrInvalidState)
	}
	c.apply(EventBack)
	return nil
}

// Generate submits the form. The session shows the loading screen until
// the backend answers; on success the report is installed, on failure the
// last form step comes back with the form untouched and the error kept for
// display.
func (c *Controller) Generate(ctx context.Context) error {
	c.mu.Lock()
	if c.state != Form(LastStep) {
		state := c.state
		c.mu.Unlock()
		return fmt.Errorf("generate from %s: %w", state, ErrInvalidState)
	}
	if !c.apply(EventGenerate) {
		c.mu.Unlock()
		return fmt.Errorf("generate: decision basis empty: %w", ErrInvalidState)
	}
	c.lastErr = nil
	tag := c.formID
	data := c.form.Snapshot()
	c.mu.Unlock()

	report, err := c.orch.Analyze(ctx, data)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.formID != tag || c.state != Loading {
		c.log.Debug("dropping stale analysis", zap.String("form_id", tag))
		return ErrStale
	}
	if err != nil {
		c.lastErr = err
		c.apply(EventAnalyzeFailed)
		c.log.Warn("analysis failed", zap.Error(err))
		return err
	}
	c.installReport(report)
	c.apply(EventAnalyzeSucceeded)
	return nil
}

func (c *Controller) installReport(r model.Report) {
	c.clearReport()
	c.report = &r
}

func (c *Controller) clearReport() {
	if c.report != nil {
		c.orch.ForgetQuiz(c.report.ID)
	}
	c.report = nil
	c.quiz = nil
	c.chatTail = nil
	c.transcript = transcript.New(c.opts.ExpandNewestTurn)
	c.sections = DefaultSections()
}

// Exit leaves the report for the home screen, dropping the report, its
// transcript and its quiz.
func (c *Controller) Exit() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Analysis {
		return fmt.Errorf("exit from %s: %w", c.state, ErrInvalidState)
	}
	c.clearReport()
	c.apply(EventExit)
	return nil
}

// Err returns the error of the last failed analysis, if it is still shown.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// SendChat asks a question about the installed report and returns the
// assistant turn. It is QueueChat followed by Wait.
func (c *Controller) SendChat(ctx context.Context, message string) (model.ChatTurn, error) {
	p, err := c.QueueChat(message)
	if err != nil {
		return model.ChatTurn{}, err
	}
	return p.Wait(ctx)
}

// PendingChat is a chat send whose user turn is already in the transcript.
type PendingChat struct {
	c          *Controller
	tag        string
	user       model.ChatTurn
	prev, done chan struct{}
}

// QueueChat records the user turn and reserves the next slot in the send
// queue. Sends are delivered in queue order, so replies can never be applied
// out of order. Wait must be called exactly once on the result; the queue
// behind it stalls until then.
func (c *Controller) QueueChat(message string) (*PendingChat, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyMessage
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Analysis {
		return nil, fmt.Errorf("chat from %s: %w", c.state, ErrInvalidState)
	}
	if c.report == nil {
		return nil, ErrNoReport
	}
	p := &PendingChat{
		c:    c,
		tag:  c.report.ID,
		user: c.transcript.AppendUser(message),
		prev: c.chatTail,
		done: make(chan struct{}),
	}
	c.chatTail = p.done
	return p, nil
}

// Turn returns the recorded user turn.
func (p *PendingChat) Turn() model.ChatTurn {
	return p.user
}

// Wait sends the question once every earlier send has finished and returns
// the assistant turn. On failure the user turn stays unanswered.
func (p *PendingChat) Wait(ctx context.Context) (model.ChatTurn, error) {
	c := p.c
	if p.prev != nil {
		select {
		case <-p.prev:
		case <-ctx.Done():
			// Keep the queue ordered: release the next send only once
			// the one ahead of us is finished too.
			go func() {
				<-p.prev
				close(p.done)
			}()
			return model.ChatTurn{}, ctx.Err()
		}
	}
	defer close(p.done)

	exchange := p.user.Exchange
	c.mu.Lock()
	if c.report == nil || c.report.ID != p.tag {
		c.mu.Unlock()
		c.log.Debug("dropping stale chat send", zap.String("report_id", p.tag), zap.Int("exchange", exchange))
		return model.ChatTurn{}, ErrStale
	}
	history := c.transcript.HistoryBefore(exchange)
	c.mu.Unlock()

	reply, err := c.orch.Chat(ctx, history, p.user.Content)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.report == nil || c.report.ID != p.tag {
		c.log.Debug("dropping stale chat reply", zap.String("report_id", p.tag), zap.Int("exchange", exchange))
		return model.ChatTurn{}, ErrStale
	}
	if err != nil {
		c.log.Warn("chat failed", zap.Int("exchange", exchange), zap.Error(err))
		return model.ChatTurn{}, err
	}
	turn, ok := c.transcript.AppendAssistant(exchange, reply.Content, reply.Raw)
	if !ok {
		return model.ChatTurn{}, fmt.Errorf("exchange %d already answered: %w", exchange, ErrStale)
	}
	return turn, nil
}

// ToggleTurn flips the expanded state of a transcript turn by ID.
func (c *Controller) ToggleTurn(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transcript.ToggleExpanded(id)
}

// Quiz returns the quiz of the installed report, generating it on first
// use. Later calls for the same report reuse it.
func (c *Controller) Quiz(ctx context.Context) (model.QuizSet, error) {
	c.mu.Lock()
	if c.state != Analysis || c.report == nil {
		c.mu.Unlock()
		return model.QuizSet{}, ErrNoReport
	}
	if c.quiz != nil {
		set := *c.quiz
		c.mu.Unlock()
		return set, nil
	}
	report := *c.report
	c.mu.Unlock()

	set, err := c.orch.GenerateQuiz(ctx, report)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.report == nil || c.report.ID != report.ID {
		c.log.Debug("dropping stale quiz", zap.String("report_id", report.ID))
		return model.QuizSet{}, ErrStale
	}
	if err != nil {
		c.log.Warn("quiz generation failed", zap.String("report_id", report.ID), zap.Error(err))
		return model.QuizSet{}, err
	}
	c.quiz = &set
	return set, nil
}
