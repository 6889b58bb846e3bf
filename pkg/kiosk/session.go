package kiosk

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/teslashibe/go-kiosk/pkg/cart"
	"github.com/teslashibe/go-kiosk/pkg/inference"
	"github.com/teslashibe/go-kiosk/pkg/metrics"
	"github.com/teslashibe/go-kiosk/pkg/store"
	"github.com/teslashibe/go-kiosk/pkg/transcribe"
)

// Run serves customers until ctx ends: wait for the wake phrase, run a
// session, then go back to waiting. Without a wake detector sessions
// follow each other after the configured cooldown.
func (a *App) Run(ctx context.Context) error {
	if a.listener == nil {
		return ErrNoListener
	}
	a.setAction(ActionIdle)

	for {
		if a.waker != nil {
			match, err := a.waker.Wait(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
			a.logger.Info("wake phrase heard", "phrase", match.Phrase, "transcript", match.Transcript)
		}

		if err := a.Session(ctx); err != nil && ctx.Err() == nil {
			a.logger.Warn("session ended with error", "error", err)
		}

		if a.waker == nil {
			select {
			case <-ctx.Done():
			case <-time.After(a.config.Cooldown):
			}
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

// Session runs one customer session: greet, transcribe and answer
// utterances until the order is confirmed or the listener stops, then
// persist the conversation and reset for the next customer.
func (a *App) Session(ctx context.Context) error {
	if a.listener == nil {
		return ErrNoListener
	}
	id := a.Begin()
	log := a.logger.With("session", id)

	a.voice.Greet(ctx)
	a.voice.WaitUntilIdle(ctx)

	h := transcribe.Handlers{
		OnOpen: func() {
			log.Debug("transcription open")
		},
		OnData: func(ctx context.Context, text string) bool {
			shouldClose, err := a.HandleUtterance(ctx, text)
			if err != nil {
				log.Warn("utterance failed", "error", err)
			}
			return shouldClose
		},
		OnStream: func(text string) {
			log.Debug("partial transcript", "text", text)
		},
		OnError: func(err error) {
			log.Warn("transcription error", "error", err)
		},
	}

	var err error
	if a.config.Interact {
		err = a.listener.Interact(ctx, h)
	} else {
		err = a.listener.Run(ctx, h)
	}

	outcome := metrics.OutcomeAbandoned
	switch {
	case a.Confirmed():
		outcome = metrics.OutcomeConfirmed
	case err != nil && !errors.Is(err, context.Canceled):
		outcome = metrics.OutcomeError
	}
	a.End(outcome)
	return err
}

// Begin starts a new session with a fresh ID and shows the welcome frame.
func (a *App) Begin() string {
	a.mu.Lock()
	a.sessionID = uuid.NewString()
	a.started = true
	a.action = ActionWelcome
	a.lines = nil
	a.turns = nil
	a.confirmed = false
	a.total = 0
	id := a.sessionID
	frame := a.frameLocked()
	a.mu.Unlock()

	if a.sessions != nil {
		a.sessions.SessionStarted()
	}
	a.logger.Info("session started", "session", id)
	a.publish(frame)
	return id
}

// HandleUtterance answers one finalized utterance: show it, run the agent,
// show and speak the reply and wait for playback. After a confirmation it
// clears the cart and reports that the session should close. An agent
// error is answered with the configured apology and the session stays
// open, unless the order was already confirmed in that turn.
func (a *App) HandleUtterance(ctx context.Context, text string) (shouldClose bool, err error) {
	_, shouldClose, err = a.Respond(ctx, text)
	return shouldClose, err
}

// Respond is HandleUtterance that also returns the reply text.
func (a *App) Respond(ctx context.Context, text string) (reply string, confirmed bool, err error) {
	a.addTurn(string(inference.RoleUser), text)

	reply, confirmed, err = a.agent.Invoke(ctx, text)
	if err != nil {
		if confirmed {
			// The order went through before the failure.
			if ctx.Err() == nil {
				a.speak(ctx, cart.ConfirmationMessage)
			}
			a.clearConfirmed()
			return "", true, err
		}
		if ctx.Err() == nil {
			a.speak(ctx, a.config.ErrorReply)
		}
		return "", false, err
	}

	if reply != "" {
		a.addTurn(string(inference.RoleAssistant), reply)
		a.speak(ctx, reply)
	}

	if confirmed {
		a.clearConfirmed()
	}
	return reply, confirmed, nil
}

func (a *App) speak(ctx context.Context, text string) {
	if err := a.voice.Speak(ctx, text); err != nil {
		a.logger.Debug("reply not spoken", "error", err)
	}
	a.voice.WaitUntilIdle(ctx)
}

// clearConfirmed empties the cart after a confirmation has been shown and
// spoken. It runs at most once per session.
func (a *App) clearConfirmed() {
	a.mu.Lock()
	if a.confirmed {
		a.mu.Unlock()
		return
	}
	a.confirmed = true
	a.cart.Reset()
	a.lines = nil
	a.action = ActionCleared
	frame := a.frameLocked()
	a.mu.Unlock()

	a.publish(frame)
}

// Confirmed reports whether the current session's order was confirmed.
func (a *App) Confirmed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.confirmed
}

// End closes the current session: the conversation is saved, the agent
// and cart are reset and the display returns to idle.
func (a *App) End(outcome string) {
	a.mu.Lock()
	id := a.sessionID
	total := a.total
	confirmed := a.confirmed
	a.mu.Unlock()

	if a.recorder != nil {
		path, err := a.recorder.Save(id, a.agent.Messages())
		switch {
		case errors.Is(err, store.ErrEmpty):
		case err != nil:
			a.logger.Warn("conversation not saved", "session", id, "error", err)
		default:
			a.logger.Info("conversation saved", "session", id, "path", path)
		}
	}

	a.agent.Reset()
	if !confirmed {
		a.cart.Reset()
	}

	if a.sessions != nil {
		a.sessions.SessionEnded(outcome, total.Float())
	}
	a.logger.Info("session ended", "session", id, "outcome", outcome, "total", total.String())

	a.mu.Lock()
	a.started = false
	a.action = ActionIdle
	a.lines = nil
	a.turns = nil
	frame := a.frameLocked()
	a.mu.Unlock()

	a.publish(frame)
}
