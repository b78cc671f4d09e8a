package api

import (
	"encoding/json"
	"fmt"

	"github.com/gorilla/websocket"
)

type Websock struct {
	conn     *websocket.Conn
	handlers WebsockHandlers
}

type WebsockHandlers struct {
	Notification func(n *Notification, err error)
}

// Run reads notifications and passes them to the handlers until the connection fails. It
// always returns a non-nil error.
func (ws *Websock) Run() error {
	if ws.conn == nil {
		return fmt.Errorf("websocket is not connected")
	}

	for {
		typ, buf, err := ws.conn.ReadMessage()
		if err != nil {
			return err
		}

		if typ != websocket.TextMessage {
			continue
		}

		var n Notification
		err = json.Unmarshal(buf, &n)
		if ws.handlers.Notification != nil {
			ws.handlers.Notification(&n, err)
		}
	}
}

func (ws *Websock) Close() error {
	if ws.conn == nil {
		return nil
	}
	return ws.conn.Close()
}
