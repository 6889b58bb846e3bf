package kiosk

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/teslashibe/go-kiosk/pkg/metrics"
)

// Console runs sessions over typed lines instead of the microphone. Each
// line is one utterance and the first line of a session starts it. A
// confirmed order ends the session; "quit" or "exit" ends the console.
// Console returns at EOF or when ctx ends.
func (a *App) Console(ctx context.Context, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	active := false

	end := func(outcome string) {
		if active {
			a.End(outcome)
			active = false
		}
	}
	defer end(metrics.OutcomeAbandoned)

	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return nil
		}

		line := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(line) {
		case "":
			continue
		case "quit", "exit":
			return nil
		}

		if !active {
			a.Begin()
			a.voice.Greet(ctx)
			active = true
		}

		reply, confirmed, err := a.Respond(ctx, line)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		if reply != "" {
			fmt.Fprintln(out, reply)
		}
		if confirmed {
			fmt.Fprintln(out, "-- order confirmed --")
			end(metrics.OutcomeConfirmed)
		}
	}
}
