package main

// Conn is the capability a Player holds for reaching its client. Game
// code can push events through it and nothing else; the underlying
// websocket never leaks into game state or client-facing projections.
type Conn interface {
	Send(event string, payload any)
}

// Player is the server-side record for one connection. Which game the
// player has joined is tracked by the GameList membership table, not
// here, so a deleted game leaves no stale back-reference.
type Player struct {
	ID         string
	conn       Conn
	PlayerName string
	Ready      bool
	Score      int
}

func newPlayer(id string, conn Conn) *Player {
	return &Player{
		ID:   id,
		conn: conn,
	}
}

// PlayerView is the client-facing projection of a Player. The field
// names match what the original server emitted.
type PlayerView struct {
	SocketID   string `json:"socketId"`
	PlayerName string `json:"playerName"`
	Ready      bool   `json:"ready"`
	Score      int    `json:"score"`
}

func (p *Player) view() PlayerView {
	return PlayerView{
		SocketID:   p.ID,
		PlayerName: p.PlayerName,
		Ready:      p.Ready,
		Score:      p.Score,
	}
}
