package main

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// GameList owns the two cross-cutting registries: active games keyed by
// game id, and players keyed by connection id, plus the membership
// table linking them. It is constructed per process (or per test) so
// independent instances can coexist.
type GameList struct {
	mu          sync.Mutex
	lastGameID  int
	games       map[int]*Game
	players     map[string]*Player
	memberships map[string]int
	decks       *masterDecks
}

func newGameList(decks *masterDecks) *GameList {
	return &GameList{
		lastGameID:  12345,
		games:       make(map[int]*Game),
		players:     make(map[string]*Player),
		memberships: make(map[string]int),
		decks:       decks,
	}
}

// Ids step by a sparse increment so client-visible ids never look
// sequential; the gaps are intentional.
func (gl *GameList) nextGameIDLocked() int {
	gl.lastGameID += 257
	return gl.lastGameID
}

func (gl *GameList) createGame(variant Variant) *Game {
	gl.mu.Lock()
	defer gl.mu.Unlock()

	g := newGame(gl.nextGameIDLocked(), variant)
	gl.games[g.ID] = g
	return g
}

func (gl *GameList) createPlayer(id string, conn Conn) *Player {
	gl.mu.Lock()
	defer gl.mu.Unlock()

	p := newPlayer(id, conn)
	gl.players[id] = p
	return p
}

func (gl *GameList) getGameByID(id int) *Game {
	gl.mu.Lock()
	defer gl.mu.Unlock()

	return gl.games[id]
}

// gameFor resolves the game a player has joined, if any.
func (gl *GameList) gameFor(p *Player) *Game {
	gl.mu.Lock()
	defer gl.mu.Unlock()

	id, ok := gl.memberships[p.ID]
	if !ok {
		return nil
	}
	return gl.games[id]
}

// getAllGames returns only games that can still be joined.
func (gl *GameList) getAllGames() map[int]GameView {
	return gl.getGames(func(g *Game) bool { return true })
}

func (gl *GameList) getGamesByVariant(variant Variant) map[int]GameView {
	return gl.getGames(func(g *Game) bool { return g.Variant == variant })
}

func (gl *GameList) getGames(match func(*Game) bool) map[int]GameView {
	gl.mu.Lock()
	games := make([]*Game, 0, len(gl.games))
	for _, g := range gl.games {
		games = append(games, g)
	}
	gl.mu.Unlock()

	views := make(map[int]GameView)
	for _, g := range games {
		if !match(g) {
			continue
		}
		if view := g.view(); !view.Launched && !view.Over {
			views[g.ID] = view
		}
	}
	return views
}

// join attaches an already-registered player to a game, leaving any
// game they were previously a member of. Failures are replied to the
// requester only; nothing is broadcast.
func (gl *GameList) join(cfg *Config, p *Player, gameID int) {
	gl.mu.Lock()
	defer gl.mu.Unlock()

	g := gl.games[gameID]
	if g == nil {
		logf(cfg, "GAMES: Join failed, game %d not found", gameID)
		p.conn.Send(EventJoinFailed, JoinFailedPayload{
			Reason: fmt.Sprintf("Game ID %d not found.", gameID),
		})
		return
	}

	if ok, reason := g.joinable(); !ok {
		logf(cfg, "GAMES: Join failed for game %d: %s", gameID, reason)
		p.conn.Send(EventJoinFailed, JoinFailedPayload{Reason: reason})
		return
	}

	// A player can only be in one game at a time.
	gl.leaveLocked(cfg, p)

	if err := g.addPlayer(cfg, p); err != nil {
		p.conn.Send(EventJoinFailed, JoinFailedPayload{Reason: err.Error()})
		return
	}
	gl.memberships[p.ID] = gameID

	logf(cfg, "GAMES: Player %s joined game %d", p.ID, gameID)
}

// leave removes the player from whatever game they are in, used by both
// explicit leaves and disconnects.
func (gl *GameList) leave(cfg *Config, p *Player) {
	gl.mu.Lock()
	defer gl.mu.Unlock()

	gl.leaveLocked(cfg, p)
}

func (gl *GameList) leaveLocked(cfg *Config, p *Player) {
	gameID, ok := gl.memberships[p.ID]
	if !ok {
		return
	}
	delete(gl.memberships, p.ID)

	g := gl.games[gameID]
	if g == nil {
		return
	}

	if g.removePlayer(cfg, p) {
		logf(cfg, "GAMES: Deleting empty game %d", gameID)
		delete(gl.games, gameID)
	}
}

// disconnect tears down everything associated with a closed connection.
func (gl *GameList) disconnect(cfg *Config, p *Player) {
	gl.mu.Lock()
	defer gl.mu.Unlock()

	gl.leaveLocked(cfg, p)
	delete(gl.players, p.ID)

	logf(cfg, "GAMES: Player %s disconnected", p.ID)
}

// setGameName renames a game and notifies the room. A rename racing a
// game deletion is ignored.
func (gl *GameList) setGameName(cfg *Config, gameID int, name string) {
	g := gl.getGameByID(gameID)
	if g == nil {
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.Name = name
	g.touchLocked()
	g.broadcastLocked(EventGameName, GameNamePayload{GameName: name})
}

// setPlayerName updates the display name and, if the player has joined
// a game, pushes the refreshed player list to the room. Names of
// players still in the lobby are guarded by gl.mu, joined players by
// their game's lock; debugDump reads them the same way.
func (gl *GameList) setPlayerName(cfg *Config, p *Player, name string) {
	gl.mu.Lock()
	defer gl.mu.Unlock()

	g := gl.games[gl.memberships[p.ID]]
	if g == nil {
		p.PlayerName = name
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	p.PlayerName = name
	g.sendPlayerListLocked()
}

// DebugDump is the sanitized snapshot of both registries.
type DebugDump struct {
	LastGameID  int                   `json:"lastGameId"`
	PlayerTable map[string]PlayerView `json:"playerTable"`
	GameTable   map[int]GameView      `json:"gameTable"`
}

func (gl *GameList) debugDump() DebugDump {
	gl.mu.Lock()
	players := make(map[string]PlayerView, len(gl.players))
	for id, p := range gl.players {
		// Joined players mutate under their game's lock, so their
		// snapshot comes from the game views below. Only lobby players
		// are safe to read here.
		if _, joined := gl.memberships[id]; !joined {
			players[id] = p.view()
		}
	}
	games := make([]*Game, 0, len(gl.games))
	for _, g := range gl.games {
		games = append(games, g)
	}
	lastID := gl.lastGameID
	gl.mu.Unlock()

	gameViews := make(map[int]GameView, len(games))
	for _, g := range games {
		view := g.view()
		gameViews[g.ID] = view
		for _, pv := range view.PlayerList {
			players[pv.SocketID] = pv
		}
	}

	return DebugDump{
		LastGameID:  lastID,
		PlayerTable: players,
		GameTable:   gameViews,
	}
}

// reapOnce ends and removes games that have been idle longer than the
// session timeout, as of the given instant.
func (gl *GameList) reapOnce(cfg *Config, now time.Time) {
	cutoff := now.Add(-cfg.sessionTimeout)

	gl.mu.Lock()
	defer gl.mu.Unlock()

	for id, g := range gl.games {
		g.mu.Lock()
		stale := g.lastActive.Before(cutoff)
		if stale {
			g.sendGameOverLocked(cfg, "Game ended due to inactivity.")
		}
		g.mu.Unlock()

		if stale {
			delete(gl.games, id)
			for pid, gid := range gl.memberships {
				if gid == id {
					delete(gl.memberships, pid)
				}
			}
			logf(cfg, "GAMES: Reaped idle game %d", id)
		}
	}
}

// reaperLoop runs reapOnce on a timer until the context ends.
func (gl *GameList) reaperLoop(ctx context.Context, cfg *Config) {
	ticker := time.NewTicker(cfg.sessionTimeout / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			gl.reapOnce(cfg, now)
		}
	}
}
