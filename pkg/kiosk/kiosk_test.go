package kiosk

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/teslashibe/go-kiosk/pkg/cart"
	"github.com/teslashibe/go-kiosk/pkg/inference"
	"github.com/teslashibe/go-kiosk/pkg/metrics"
	"github.com/teslashibe/go-kiosk/pkg/store"
	"github.com/teslashibe/go-kiosk/pkg/transcribe"
	"github.com/teslashibe/go-kiosk/pkg/wake"
	"github.com/teslashibe/go-kiosk/pkg/web"
)

// journal records speaker and display events in order.
type journal struct {
	mu     sync.Mutex
	events []string
	frames []web.Frame
}

func (j *journal) add(ev string) {
	j.mu.Lock()
	j.events = append(j.events, ev)
	j.mu.Unlock()
}

func (j *journal) Publish(frame web.Frame) {
	j.mu.Lock()
	j.frames = append(j.frames, frame)
	j.events = append(j.events, "frame:"+frame.Action)
	j.mu.Unlock()
}

func (j *journal) Speak(_ context.Context, text string) error {
	j.add("speak:" + text)
	return nil
}

func (j *journal) Greet(context.Context) { j.add("greet") }
func (j *journal) Filler(_ context.Context, i int) { j.add(fmt.Sprintf("filler:%d", i)) }

func (j *journal) Intermediate(_ context.Context, category string) {
	if category != "" {
		j.add("phrase:" + category)
	}
}

func (j *journal) WaitUntilIdle(context.Context) bool {
	j.add("idle")
	return true
}

func (j *journal) Events() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.events...)
}

func (j *journal) Last() web.Frame {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.frames[len(j.frames)-1]
}

func (j *journal) FramesWith(action string) []web.Frame {
	j.mu.Lock()
	defer j.mu.Unlock()
	var out []web.Frame
	for _, f := range j.frames {
		if f.Action == action {
			out = append(out, f)
		}
	}
	return out
}

func index(events []string, ev string) int {
	for i, e := range events {
		if e == ev {
			return i
		}
	}
	return -1
}

// scriptedListener feeds utterances to OnData until one asks to close.
type scriptedListener struct {
	utterances []string
	err        error
	mode       string
}

func (l *scriptedListener) Run(ctx context.Context, h transcribe.Handlers) error {
	l.mode = "run"
	return l.feed(ctx, h)
}

func (l *scriptedListener) Interact(ctx context.Context, h transcribe.Handlers) error {
	l.mode = "interact"
	return l.feed(ctx, h)
}

func (l *scriptedListener) feed(ctx context.Context, h transcribe.Handlers) error {
	if h.OnOpen != nil {
		h.OnOpen()
	}
	for _, text := range l.utterances {
		if h.OnData(ctx, text) {
			return nil
		}
	}
	return l.err
}

type recorder struct {
	mu    sync.Mutex
	saves map[string][]inference.Message
}

func (r *recorder) Save(id string, messages []inference.Message) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saves == nil {
		r.saves = make(map[string][]inference.Message)
	}
	r.saves[id] = messages
	return "chat-" + id + ".json", nil
}

type sessionLog struct {
	started  int
	outcomes []string
	totals   []float64
}

func (s *sessionLog) SessionStarted() { s.started++ }

func (s *sessionLog) SessionEnded(outcome string, total float64) {
	s.outcomes = append(s.outcomes, outcome)
	s.totals = append(s.totals, total)
}

func call(id, name, args string) inference.ToolCall {
	return inference.ToolCall{ID: id, Name: name, Arguments: args}
}

// orderScript adds two Zinger Burgers on the first utterance and confirms
// on the second.
func orderScript() *inference.Mock {
	return inference.NewScripted(
		inference.NewToolCallMessage("", call("c1", "add_item_to_cart", `{"item_name":"Zinger Burger","quantity":2}`)),
		inference.NewAssistantMessage("Two Zinger Burgers added."),
		inference.NewToolCallMessage("", call("c2", "confirm_order", `{}`)),
		inference.NewAssistantMessage("Your order is confirmed."),
	)
}

func newApp(t *testing.T, provider inference.Provider, cfg Config, deps Deps) (*App, *journal) {
	t.Helper()
	j := &journal{}
	deps.Provider = provider
	deps.Voice = j
	deps.Display = j
	app, err := New(cfg, deps)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return app, j
}

func TestNewRequiresProvider(t *testing.T) {
	if _, err := New(Config{}, Deps{}); !errors.Is(err, ErrNoProvider) {
		t.Errorf("New() error = %v, want ErrNoProvider", err)
	}
}

func TestRunRequiresListener(t *testing.T) {
	app, _ := newApp(t, inference.NewMock(), Config{}, Deps{})
	if err := app.Run(context.Background()); !errors.Is(err, ErrNoListener) {
		t.Errorf("Run() error = %v, want ErrNoListener", err)
	}
	if err := app.Session(context.Background()); !errors.Is(err, ErrNoListener) {
		t.Errorf("Session() error = %v, want ErrNoListener", err)
	}
}

func TestHandleUtteranceAddsToCart(t *testing.T) {
	app, j := newApp(t, orderScript(), Config{}, Deps{})
	app.Begin()

	shouldClose, err := app.HandleUtterance(context.Background(), "two zinger burgers please")
	if err != nil {
		t.Fatalf("HandleUtterance() error = %v", err)
	}
	if shouldClose {
		t.Error("session should stay open")
	}

	lines := app.Cart().Lines()
	if len(lines) != 1 || lines[0].Name != "Zinger Burger" || lines[0].Quantity != 2 {
		t.Fatalf("cart = %+v", lines)
	}

	last := j.Last()
	if last.TotalPrice != "$6.98" {
		t.Errorf("TotalPrice = %q, want $6.98", last.TotalPrice)
	}
	if len(last.Messages) != 2 {
		t.Fatalf("messages = %+v", last.Messages)
	}
	if last.Messages[0].Role != "user" || last.Messages[1].Content != "Two Zinger Burgers added." {
		t.Errorf("messages = %+v", last.Messages)
	}

	events := j.Events()
	for _, want := range []string{"filler:0", "filler:1", "phrase:add_item", "speak:Two Zinger Burgers added."} {
		if index(events, want) < 0 {
			t.Errorf("missing event %q in %v", want, events)
		}
	}
	if index(events, "phrase:add_item") > index(events, "speak:Two Zinger Burgers added.") {
		t.Error("intermediate phrase should precede the reply")
	}
}

func TestConfirmationClearsCartOnceAfterSurfacing(t *testing.T) {
	app, j := newApp(t, orderScript(), Config{}, Deps{})
	app.Begin()
	ctx := context.Background()

	if _, err := app.HandleUtterance(ctx, "two zinger burgers"); err != nil {
		t.Fatal(err)
	}
	shouldClose, err := app.HandleUtterance(ctx, "that's all")
	if err != nil {
		t.Fatal(err)
	}
	if !shouldClose {
		t.Fatal("confirmation should close the session")
	}
	if app.Cart().Len() != 0 {
		t.Errorf("cart not cleared: %+v", app.Cart().Lines())
	}
	if !app.Confirmed() {
		t.Error("Confirmed() = false")
	}

	confirmFrames := j.FramesWith("confirm_order")
	if len(confirmFrames) == 0 || len(confirmFrames[0].Cart) != 1 {
		t.Fatalf("confirm frames = %+v", confirmFrames)
	}
	if n := len(j.FramesWith(ActionCleared)); n != 1 {
		t.Errorf("cleared frames = %d, want 1", n)
	}

	events := j.Events()
	confirmed := index(events, "frame:confirm_order")
	spoken := index(events, "speak:Your order is confirmed.")
	cleared := index(events, "frame:"+ActionCleared)
	if !(confirmed < spoken && spoken < cleared) {
		t.Errorf("want confirm frame < reply < clear, got %d %d %d in %v", confirmed, spoken, cleared, events)
	}
	if events[cleared-1] != "idle" {
		t.Errorf("cart cleared before playback drained: %v", events)
	}

	app.clearConfirmed()
	if n := len(j.FramesWith(ActionCleared)); n != 1 {
		t.Errorf("second clear published again: %d frames", n)
	}
}

func TestConfirmationSurvivesFailedReply(t *testing.T) {
	provider := inference.NewScripted(
		inference.NewToolCallMessage("", call("c1", "add_item_to_cart", `{"item_name":"Pepsi"}`)),
		inference.NewAssistantMessage("One Pepsi added."),
		inference.NewToolCallMessage("", call("c2", "confirm_order", `{}`)),
	)
	app, j := newApp(t, provider, Config{ErrorReply: "pardon?"}, Deps{})
	app.Begin()
	ctx := context.Background()

	if _, err := app.HandleUtterance(ctx, "a pepsi"); err != nil {
		t.Fatal(err)
	}
	shouldClose, err := app.HandleUtterance(ctx, "that's all")
	if err == nil {
		t.Fatal("expected the final completion to fail")
	}
	if !shouldClose {
		t.Error("a confirmed order should close the session")
	}
	if !app.Confirmed() {
		t.Error("Confirmed() = false")
	}
	if app.Cart().Len() != 0 {
		t.Errorf("cart not cleared: %+v", app.Cart().Lines())
	}
	if len(j.FramesWith("confirm_order")) == 0 {
		t.Error("confirmation frame missing")
	}
	if n := len(j.FramesWith(ActionCleared)); n != 1 {
		t.Errorf("cleared frames = %d, want 1", n)
	}

	events := j.Events()
	if index(events, "speak:pardon?") >= 0 {
		t.Errorf("apology spoken for a confirmed order: %v", events)
	}
	if index(events, "speak:"+cart.ConfirmationMessage) < 0 {
		t.Errorf("confirmation not spoken: %v", events)
	}
}

func TestHandleUtteranceAgentError(t *testing.T) {
	app, j := newApp(t, inference.NewScripted(), Config{ErrorReply: "pardon?"}, Deps{})
	app.Begin()

	shouldClose, err := app.HandleUtterance(context.Background(), "hello")
	if err == nil {
		t.Fatal("expected completion error")
	}
	if shouldClose {
		t.Error("error should keep the session open")
	}
	if index(j.Events(), "speak:pardon?") < 0 {
		t.Errorf("apology not spoken: %v", j.Events())
	}
}

func TestToolInvokedShowsMenuSection(t *testing.T) {
	provider := inference.NewScripted(
		inference.NewToolCallMessage("", call("c1", "get_sides", `{}`)),
		inference.NewAssistantMessage("We have fries and coleslaw."),
	)
	app, j := newApp(t, provider, Config{}, Deps{})
	app.Begin()

	if _, err := app.HandleUtterance(context.Background(), "what sides do you have"); err != nil {
		t.Fatal(err)
	}
	if len(j.FramesWith("show_side_dishes")) == 0 {
		t.Errorf("no show_side_dishes frame in %v", j.Events())
	}
	if index(j.Events(), "phrase:get_sides") < 0 {
		t.Errorf("intermediate phrase missing: %v", j.Events())
	}
}

func TestSessionLifecycle(t *testing.T) {
	tests := []struct {
		name     string
		interact bool
		script   *inference.Mock
		listener *scriptedListener
		outcome  string
		total    float64
	}{
		{
			name:     "confirmed",
			script:   orderScript(),
			listener: &scriptedListener{utterances: []string{"two zinger burgers", "that's it"}},
			outcome:  metrics.OutcomeConfirmed,
			total:    6.98,
		},
		{
			name:     "confirmed interact",
			interact: true,
			script:   orderScript(),
			listener: &scriptedListener{utterances: []string{"two zinger burgers", "that's it"}},
			outcome:  metrics.OutcomeConfirmed,
			total:    6.98,
		},
		{
			name:     "abandoned",
			script:   orderScript(),
			listener: &scriptedListener{utterances: []string{"two zinger burgers"}},
			outcome:  metrics.OutcomeAbandoned,
		},
		{
			name:     "connection lost",
			script:   orderScript(),
			listener: &scriptedListener{utterances: []string{"two zinger burgers"}, err: transcribe.ErrConnectionClosed},
			outcome:  metrics.OutcomeError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			sessions := &sessionLog{}
			app, j := newApp(t, tt.script, Config{Interact: tt.interact}, Deps{
				Listener: tt.listener,
				Store:    rec,
				Sessions: sessions,
			})

			err := app.Session(context.Background())
			if !errors.Is(err, tt.listener.err) {
				t.Errorf("Session() error = %v, want %v", err, tt.listener.err)
			}

			wantMode := "run"
			if tt.interact {
				wantMode = "interact"
			}
			if tt.listener.mode != wantMode {
				t.Errorf("listener mode = %q, want %q", tt.listener.mode, wantMode)
			}

			if sessions.started != 1 || len(sessions.outcomes) != 1 {
				t.Fatalf("sessions = %+v", sessions)
			}
			if sessions.outcomes[0] != tt.outcome {
				t.Errorf("outcome = %q, want %q", sessions.outcomes[0], tt.outcome)
			}
			if sessions.totals[0] != tt.total {
				t.Errorf("total = %v, want %v", sessions.totals[0], tt.total)
			}

			if len(rec.saves) != 1 {
				t.Fatalf("saves = %d, want 1", len(rec.saves))
			}
			for _, msgs := range rec.saves {
				if len(store.Transcript(msgs)) == 0 {
					t.Error("saved conversation has no turns")
				}
			}

			if app.Cart().Len() != 0 {
				t.Error("cart not reset after session")
			}
			if n := len(app.Agent().Messages()); n != 1 {
				t.Errorf("agent history = %d messages, want system prompt only", n)
			}
			last := j.Last()
			if last.Started || last.Action != ActionIdle || len(last.Messages) != 0 {
				t.Errorf("final frame = %+v", last)
			}
			if index(j.Events(), "greet") != index(j.Events(), "frame:"+ActionWelcome)+1 {
				t.Errorf("greeting should follow the welcome frame: %v", j.Events())
			}
		})
	}
}

func TestSessionIDsAreUnique(t *testing.T) {
	app, _ := newApp(t, inference.NewMock(), Config{}, Deps{})
	first := app.Begin()
	app.End(metrics.OutcomeAbandoned)
	second := app.Begin()
	if first == "" || first == second {
		t.Errorf("session ids %q and %q", first, second)
	}
	if app.Frame().SessionID != second {
		t.Errorf("frame session = %q, want %q", app.Frame().SessionID, second)
	}
}

type onceWaker struct {
	calls  int
	cancel context.CancelFunc
}

func (w *onceWaker) Wait(ctx context.Context) (wake.Match, error) {
	w.calls++
	if w.calls > 1 {
		w.cancel()
		return wake.Match{}, ctx.Err()
	}
	return wake.Match{Matched: true, Phrase: "hey kfc", Transcript: "hey kfc"}, nil
}

func TestRunWaitsForWakePhrase(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	waker := &onceWaker{cancel: cancel}
	sessions := &sessionLog{}
	app, _ := newApp(t, orderScript(), Config{}, Deps{
		Listener: &scriptedListener{utterances: []string{"two zinger burgers", "done"}},
		Wake:     waker,
		Sessions: sessions,
	})

	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return")
	}

	if waker.calls != 2 {
		t.Errorf("wake calls = %d, want 2", waker.calls)
	}
	if sessions.started != 1 || sessions.outcomes[0] != metrics.OutcomeConfirmed {
		t.Errorf("sessions = %+v", sessions)
	}
}

func TestRunWithoutWakeStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	listener := &cancelListener{cancel: cancel}
	app, _ := newApp(t, inference.NewMock(), Config{Cooldown: time.Millisecond}, Deps{Listener: listener})

	if err := app.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if listener.runs != 1 {
		t.Errorf("runs = %d, want 1", listener.runs)
	}
}

type cancelListener struct {
	runs   int
	cancel context.CancelFunc
}

func (l *cancelListener) Run(ctx context.Context, h transcribe.Handlers) error {
	l.runs++
	l.cancel()
	return ctx.Err()
}

func (l *cancelListener) Interact(ctx context.Context, h transcribe.Handlers) error {
	return l.Run(ctx, h)
}

func TestConsole(t *testing.T) {
	rec := &recorder{}
	app, _ := newApp(t, orderScript(), Config{}, Deps{Store: rec})

	in := strings.NewReader("two zinger burgers\n\nthat's all\n")
	var out strings.Builder
	if err := app.Console(context.Background(), in, &out); err != nil {
		t.Fatalf("Console() error = %v", err)
	}

	got := out.String()
	for _, want := range []string{"Two Zinger Burgers added.", "Your order is confirmed.", "-- order confirmed --"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if len(rec.saves) != 1 {
		t.Errorf("saves = %d, want 1", len(rec.saves))
	}
}

func TestConsoleQuit(t *testing.T) {
	sessions := &sessionLog{}
	app, _ := newApp(t, orderScript(), Config{}, Deps{Sessions: sessions})

	in := strings.NewReader("two zinger burgers\nquit\nnever read\n")
	var out strings.Builder
	if err := app.Console(context.Background(), in, &out); err != nil {
		t.Fatalf("Console() error = %v", err)
	}
	if len(sessions.outcomes) != 1 || sessions.outcomes[0] != metrics.OutcomeAbandoned {
		t.Errorf("outcomes = %v", sessions.outcomes)
	}
	if app.Cart().Len() != 0 {
		t.Error("abandoned cart not reset")
	}
}
