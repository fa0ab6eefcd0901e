package cmd

import (
	"fmt"
	"log"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

var watchLimit int

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch domain events (pessoa_criada, relacionamento_criado) in real time",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return watchEventos(cmd)
	},
}

func init() {
	watchCmd.Flags().IntVar(&watchLimit, "limit", 0, "stop after this many events (0 = forever)")
	rootCmd.AddCommand(watchCmd)
}

// eventosURL 把 API 地址转换为事件 WebSocket 地址。
func eventosURL() (string, error) {
	u, err := url.Parse(strings.TrimRight(serverURL, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path += "/ws/eventos"
	return u.String(), nil
}

func watchEventos(cmd *cobra.Command) error {
	target, err := eventosURL()
	if err != nil {
		return err
	}
	log.Printf("Connecting to %s", target)

	c, _, err := websocket.DefaultDialer.Dial(target, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer c.Close()

	fmt.Fprintln(cmd.ErrOrStderr(), "WebSocket connected. Waiting for eventos...")

	for received := 0; watchLimit == 0 || received < watchLimit; received++ {
		_, message, err := c.ReadMessage()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		printJSON(cmd.OutOrStdout(), message)
	}
	return nil
}
