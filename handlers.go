package main

import (
	"encoding/json"
	"fmt"
	"time"
)

// dispatch routes one inbound envelope to its handler. Unknown events
// and malformed payloads are ignored; a misbehaving client only ever
// affects itself.
func (gl *GameList) dispatch(cfg *Config, p *Player, env Envelope) {
	switch env.Event {
	case EventJoinGame:
		var payload JoinGamePayload
		if json.Unmarshal(env.Payload, &payload) != nil {
			return
		}
		gl.join(cfg, p, payload.GameID)

	case EventGameName:
		var payload GameNamePayload
		if json.Unmarshal(env.Payload, &payload) != nil {
			return
		}
		gl.setGameName(cfg, payload.GameID, payload.GameName)

	case EventPlayerName:
		var payload PlayerNamePayload
		if json.Unmarshal(env.Payload, &payload) != nil {
			return
		}
		gl.setPlayerName(cfg, p, payload.PlayerName)

	case EventLaunch:
		if g := gl.gameFor(p); g != nil {
			g.launch(cfg, gl.decks, p)
		}

	case EventReadyToStart:
		if g := gl.gameFor(p); g != nil {
			g.readyToStart(cfg, p)
		}

	case EventNeedHandCards:
		var payload NeedHandCardsPayload
		if json.Unmarshal(env.Payload, &payload) != nil {
			return
		}
		if g := gl.gameFor(p); g != nil {
			g.needHandCards(cfg, p, payload.Holding)
		}

	case EventSolution:
		var payload SolutionPayload
		if json.Unmarshal(env.Payload, &payload) != nil {
			return
		}
		if g := gl.gameFor(p); g != nil {
			g.addSolution(cfg, payload.Solution)
		}

	case EventJudgeSolutions:
		var payload JudgeSolutionsPayload
		if json.Unmarshal(env.Payload, &payload) != nil {
			return
		}
		if g := gl.gameFor(p); g != nil {
			g.judgeSolutions(cfg, p, payload.WinningSolutionIndex, payload.WinningPlayerIndex)
		}
	}
}

// launch is the host action that takes the game out of the lobby:
// decks are copied from the master set for the variant and the room is
// told the game is on. Only the host may launch.
func (g *Game) launch(cfg *Config, decks *masterDecks, p *Player) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.Launched || g.Over {
		return
	}
	if g.hostIndex < 0 || g.hostIndex >= len(g.players) || g.players[g.hostIndex].ID != p.ID {
		return
	}
	logf(cfg, "GAMES: Launching game %d (%s)", g.ID, g.Variant)

	g.touchLocked()
	g.questionDeck = newDeck(string(g.Variant)+" questions", decks.questionCards(g.Variant))
	g.answerDeck = newDeck(string(g.Variant)+" answers", decks.answerCards(g.Variant))
	g.Launched = true

	g.broadcastLocked(EventLaunched, struct{}{})
}

// readyToStart marks one player ready; the first hand begins when the
// whole current roster is. Once hands are underway the event is stale
// and dropped, so a duplicate can never restart a hand in progress.
func (g *Game) readyToStart(cfg *Config, p *Player) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.Launched || g.Over || g.judgeIndex >= 0 {
		return
	}

	g.touchLocked()
	p.Ready = true

	// Make sure everyone holds a current roster before the tally.
	g.sendPlayerListLocked()

	ready := 0
	for _, other := range g.players {
		if other.Ready {
			ready++
		}
	}

	if ready == len(g.players) {
		g.sendGameStatusLocked(cfg, "Everyone is ready.")
		g.startNextHandLocked(cfg)
	} else {
		g.sendGameStatusLocked(cfg, fmt.Sprintf("Waiting for players to be ready (%d/%d).", ready, len(g.players)))
	}
}

// needHandCards tops the requesting player's hand back up to the
// configured size. Running out of answer cards is soft: the reply
// carries whatever could be drawn and the room gets a status line.
func (g *Game) needHandCards(cfg *Config, p *Player, holding int) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.Launched || g.Over {
		return
	}
	g.touchLocked()

	handCards := []Card{}
	for i := holding; i < cfg.handSize; i++ {
		card, ok := g.answerDeck.Draw()
		if !ok {
			g.sendGameStatusLocked(cfg, "Game has run out of answer cards.")
			break
		}
		handCards = append(handCards, card)
	}

	if p.conn != nil {
		p.conn.Send(EventHandCards, HandCardsPayload{HandCards: handCards})
	}
}

// addSolution collects one player's play for the current hand. The
// reveal fires on the submission that completes the set: one solution
// from every player except the judge.
func (g *Game) addSolution(cfg *Config, solution Solution) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.Launched || g.Over || len(g.players) < 2 {
		return
	}
	if g.judgeIndex < 0 || g.judgeIndex >= len(g.players) {
		return
	}

	needed := len(g.players) - 1
	if len(g.solutions) >= needed {
		return
	}

	g.touchLocked()
	g.solutions = append(g.solutions, solution)

	judgeName := g.players[g.judgeIndex].PlayerName

	if len(g.solutions) < needed {
		g.broadcastLocked(EventSolutionCount, SolutionCountPayload{SolutionCount: len(g.solutions)})
		g.sendGameStatusLocked(cfg, fmt.Sprintf("%s is the judge; waiting for everyone to make a play (%d/%d).",
			judgeName, len(g.solutions), needed))
		return
	}

	// All plays are in. Sort by the anonymizing key so nobody can
	// infer authorship from submission order; the sort is stable, so
	// equal keys keep their relative order.
	g.sortSolutionsLocked()

	g.broadcastLocked(EventSolutionList, SolutionListPayload{SolutionList: g.solutions})
	g.sendGameStatusLocked(cfg, judgeName+": choose the best solution.")
}

// judgeSolutions records the judge's pick, credits the winner, and
// schedules the next hand after the configured pause. The timer is not
// cancellable and runs against whatever roster exists when it fires.
// Only the current judge's pick counts.
func (g *Game) judgeSolutions(cfg *Config, p *Player, winningSolutionIndex, winningPlayerIndex int) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.Launched || g.Over {
		return
	}
	if g.judgeIndex < 0 || g.judgeIndex >= len(g.players) || g.players[g.judgeIndex].ID != p.ID {
		return
	}
	if winningPlayerIndex < 0 || winningPlayerIndex >= len(g.players) {
		return
	}

	g.touchLocked()

	winner := g.players[winningPlayerIndex]
	winner.Score++
	logf(cfg, "GAMES: Game %d hand won by solution %d, player %d", g.ID, winningSolutionIndex, winningPlayerIndex)

	g.sendGameStatusLocked(cfg, winner.PlayerName+" wins the hand.")
	g.broadcastLocked(EventHandOver, HandOverPayload{
		WinningSolutionIndex: winningSolutionIndex,
		WinningPlayerIndex:   winningPlayerIndex,
	})

	time.AfterFunc(cfg.handDelay, func() {
		g.startNextHand(cfg)
	})
}
