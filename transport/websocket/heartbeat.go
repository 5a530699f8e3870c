package websocket

import (
	"fmt"
	"time"

	"github.com/gorilla/websocket"
)

const wsIdlePingInterval = 30 * time.Second

// writeWithHeartbeat - owns all writes to conn: forwards queued messages and sends a ping message
// when the connection has been idle for wsIdlePingInterval. Returns when send is closed.
func writeWithHeartbeat(conn *websocket.Conn, send <-chan []byte) error {
	ticker := time.NewTicker(wsIdlePingInterval)
	defer ticker.Stop()

	lastWrite := time.Now()
	pingPayload := mustMarshal(Message{Action: "ping"})

	for {
		select {
		case msg, ok := <-send:
			if !ok {
				return nil
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return fmt.Errorf("failed to write message: %w", err)
			}
			lastWrite = time.Now()
		case <-ticker.C:
			if time.Since(lastWrite) < wsIdlePingInterval {
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, pingPayload); err != nil {
				return fmt.Errorf("failed to write ping: %w", err)
			}
			lastWrite = time.Now()
		}
	}
}
