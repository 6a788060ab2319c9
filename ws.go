package main

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client is one websocket connection. It implements Conn, so game code
// only ever sees the Send capability.
type Client struct {
	conn     *websocket.Conn
	send     chan outbound
	playerID string
}

// Send queues an event for the write pump. A client that can't keep up
// loses messages rather than stalling the room.
func (c *Client) Send(event string, payload any) {
	select {
	case c.send <- outbound{Event: event, Payload: payload}:
	default:
	}
}

// serveWS registers the connection as a Player and runs its pumps. All
// games share this one endpoint; which game the connection belongs to
// is decided by its JoinGame messages.
func serveWS(cfg *Config, gl *GameList) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logf(cfg, "GAMES: Upgrade error from %s: %v", realIP(r), err)
			return
		}

		client := &Client{
			conn:     conn,
			send:     make(chan outbound, 16),
			playerID: uuid.NewString(),
		}

		p := gl.createPlayer(client.playerID, client)
		logf(cfg, "GAMES: Player %s connected from %s", client.playerID, realIP(r))

		go client.writePump()
		client.readPump(cfg, gl, p)
	}
}

func (c *Client) readPump(cfg *Config, gl *GameList, p *Player) {
	defer func() {
		// Leaving the game first guarantees no further broadcasts can
		// reach this client; only then is the send channel closed.
		gl.disconnect(cfg, p)
		close(c.send)
		_ = c.conn.Close()
	}()

	for {
		var env Envelope
		if err := c.conn.ReadJSON(&env); err != nil {
			return
		}

		gl.dispatch(cfg, p, env)
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(timeout))
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}
