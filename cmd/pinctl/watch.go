package main

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pinmap/internal/notifications"

	"github.com/fatih/color"
	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream live activity events for a user",
	Long: `Connect to the activity websocket with an identity token and print every
event as it arrives. Stops on Ctrl-C.

Example:
  $ pinctl watch --host localhost:8375 --token "$(pinctl token alice-sub)"`,
	Run: func(cmd *cobra.Command, args []string) {
		host, _ := cmd.Flags().GetString("host")
		token, _ := cmd.Flags().GetString("token")
		if token == "" {
			fmt.Fprintln(os.Stderr, "Error: --token is required")
			os.Exit(1)
		}

		u := url.URL{Scheme: "ws", Host: host, Path: "/api/ws", RawQuery: url.Values{"token": {token}}.Encode()}
		conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: dial %s: %v\n", u.Host, err)
			os.Exit(1)
		}
		defer conn.Close()

		interrupt := make(chan os.Signal, 1)
		signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				_, msg, err := conn.ReadMessage()
				if err != nil {
					if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
						fmt.Fprintf(os.Stderr, "Error: read: %v\n", err)
					}
					return
				}
				fmt.Println(renderEvent(msg))
			}
		}()

		select {
		case <-done:
		case <-interrupt:
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
			select {
			case <-done:
			case <-time.After(time.Second):
			}
		}
	},
}

func eventColor(kind string) func(a ...interface{}) string {
	switch kind {
	case notifications.EventPinSaved:
		return color.New(color.FgGreen, color.Bold).SprintFunc()
	case notifications.EventListCreated:
		return color.New(color.FgCyan, color.Bold).SprintFunc()
	case notifications.EventFollowed:
		return color.New(color.FgMagenta, color.Bold).SprintFunc()
	default:
		return color.New(color.FgHiBlack).SprintFunc()
	}
}

// renderEvent formats one websocket frame. Frames that are not events are
// printed as-is.
func renderEvent(raw []byte) string {
	var ev struct {
		Type      string          `json:"type"`
		Payload   json.RawMessage `json:"payload"`
		CreatedAt time.Time       `json:"created_at"`
	}
	if err := json.Unmarshal(raw, &ev); err != nil || ev.Type == "" {
		return string(raw)
	}
	ts := ev.CreatedAt
	if ts.IsZero() {
		ts = time.Now()
	}
	payload := string(ev.Payload)
	if payload == "" || payload == "null" {
		payload = "{}"
	}
	return fmt.Sprintf("%s %-14s %s", ts.Local().Format("15:04:05"), eventColor(ev.Type)(ev.Type), payload)
}

func init() {
	watchCmd.Flags().String("host", "localhost:8375", "API server host")
	watchCmd.Flags().String("token", "", "Identity token")
	rootCmd.AddCommand(watchCmd)
}
