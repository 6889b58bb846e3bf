package kiosk

import (
	"context"
	"time"

	"github.com/teslashibe/go-kiosk/pkg/cart"
	"github.com/teslashibe/go-kiosk/pkg/tools"
	"github.com/teslashibe/go-kiosk/pkg/web"
)

// Display actions not tied to a tool.
const (
	ActionWelcome = "welcome"
	ActionIdle    = "idle"
	ActionCleared = "order_cleared"
)

var (
	_ cart.Notifier = (*App)(nil)
	_ tools.Hook    = (*App)(nil)
)

// CartChanged mirrors a cart operation to the display.
func (a *App) CartChanged(action cart.Action, lines []cart.Line) {
	a.mu.Lock()
	a.action = string(action)
	a.lines = lines
	if action == cart.ActionConfirm {
		a.total = cart.TotalOf(lines)
	}
	frame := a.frameLocked()
	a.mu.Unlock()

	a.publish(frame)
}

// ToolInvoked queues the intermediate phrase for a successful call and
// shows menu sections the agent asked for. Cart actions reach the display
// through CartChanged.
func (a *App) ToolInvoked(ctx context.Context, ev tools.Event) {
	a.voice.Intermediate(ctx, ev.Phrase)

	switch ev.Kind {
	case tools.KindGetMainDishes, tools.KindGetSides, tools.KindGetBeverages:
		a.mu.Lock()
		a.action = ev.Action
		frame := a.frameLocked()
		a.mu.Unlock()
		a.publish(frame)
	}
}

// Frame returns what the display currently shows.
func (a *App) Frame() web.Frame {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.frameLocked()
}

func (a *App) frameLocked() web.Frame {
	turns := make([]web.Turn, len(a.turns))
	copy(turns, a.turns)
	return web.Frame{
		SessionID:  a.sessionID,
		Started:    a.started,
		Action:     a.action,
		Cart:       web.CartLines(a.lines),
		TotalPrice: cart.TotalOf(a.lines).String(),
		Messages:   turns,
		UpdatedAt:  time.Now(),
	}
}

// addTurn records a transcript entry and publishes the new frame.
func (a *App) addTurn(role, content string) {
	a.mu.Lock()
	a.turns = append(a.turns, web.Turn{Role: role, Content: content})
	frame := a.frameLocked()
	a.mu.Unlock()

	a.publish(frame)
}

func (a *App) setAction(action string) {
	a.mu.Lock()
	a.action = action
	frame := a.frameLocked()
	a.mu.Unlock()

	a.publish(frame)
}

func (a *App) publish(frame web.Frame) {
	if a.display != nil {
		a.display.Publish(frame)
	}
}
