package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/gorilla/websocket"

	"github.com/goliatone/go-tablesync/components/tablesync"
)

type watchCmd struct {
	URL string `arg:"" optional:"" default:"ws://localhost:8080/api/tablesync/ws" help:"WebSocket endpoint of a running server."`
}

func (cmd *watchCmd) Run(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, cmd.URL, nil)
	if err != nil {
		return fmt.Errorf("tablesync: dial %s: %w", cmd.URL, err)
	}
	defer conn.Close()
	go func() {
		<-ctx.Done()
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		_ = conn.Close()
	}()

	for {
		var event tablesync.SyncEvent
		if err := conn.ReadJSON(&event); err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil
			}
			return fmt.Errorf("tablesync: read event: %w", err)
		}
		printEvent(os.Stdout, event)
	}
}

func printEvent(w io.Writer, event tablesync.SyncEvent) {
	mark := dim("•")
	switch event.Kind {
	case tablesync.EventSourceCompleted, tablesync.EventRunCompleted:
		mark = okMark("✓")
	case tablesync.EventSourceFailed:
		mark = failMark("✗")
	}
	line := fmt.Sprintf("%s %5.1f%% %s", mark, event.Progress, event.Message)
	if event.Error != "" {
		line += " " + failMark(event.Error)
	}
	if event.Rows > 0 {
		line += dim(fmt.Sprintf(" (%d rows)", event.Rows))
	}
	fmt.Fprintln(w, line)
}
