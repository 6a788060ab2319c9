package main

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Solution is the set of answer cards one non-judge player submits in
// response to the current question card. PlayerIndex identifies the
// owner within the game's player list.
type Solution struct {
	PlayerIndex int    `json:"playerIndex"`
	Cards       []Card `json:"cards"`
}

// sortKey is the anonymizing ordering key: the first card's title when
// present, else its text. Sorting the reveal by it hides submission
// order from the players.
func (s Solution) sortKey() string {
	if len(s.Cards) == 0 {
		return ""
	}
	if s.Cards[0].Title != "" {
		return s.Cards[0].Title
	}
	return s.Cards[0].Text
}

// Game holds the canonical state of a single game. All mutation happens
// under mu; methods with the Locked suffix assume it is already held.
// Rooms are independent of each other, so nothing here reaches back
// into the GameList.
type Game struct {
	mu sync.Mutex

	ID      int
	RoomKey string
	Variant Variant
	Name    string

	Launched bool
	Over     bool

	// players is ordered, and the order is load-bearing: index 0 after
	// any removal becomes the new host, and judgeIndex indexes into it.
	players    []*Player
	hostIndex  int
	judgeIndex int

	questionDeck *Deck
	answerDeck   *Deck
	questionCard *Card
	solutions    []Solution

	// clients are the connections subscribed to room broadcasts.
	clients map[Conn]bool

	createdAt  time.Time
	lastActive time.Time
}

func newGame(id int, variant Variant) *Game {
	now := time.Now()
	return &Game{
		ID:         id,
		RoomKey:    "Room-" + strconv.Itoa(id),
		Variant:    variant,
		hostIndex:  -1,
		judgeIndex: -1,
		clients:    make(map[Conn]bool),
		createdAt:  now,
		lastActive: now,
	}
}

// GameView is the client-facing projection of a Game. Decks and
// connection handles never appear in it.
type GameView struct {
	GameID           int          `json:"gameId"`
	RoomKey          string       `json:"roomId"`
	Variant          Variant      `json:"gameVariant"`
	GameName         string       `json:"gameName"`
	Launched         bool         `json:"gameLaunched"`
	Over             bool         `json:"gameOver"`
	PlayerList       []PlayerView `json:"playerList"`
	HostPlayerIndex  int          `json:"hostPlayerIndex"`
	JudgePlayerIndex int          `json:"judgePlayerIndex"`
	QuestionCard     *Card        `json:"questionCard,omitempty"`
	SolutionCount    int          `json:"solutionCount"`
}

func (g *Game) view() GameView {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.viewLocked()
}

func (g *Game) viewLocked() GameView {
	return GameView{
		GameID:           g.ID,
		RoomKey:          g.RoomKey,
		Variant:          g.Variant,
		GameName:         g.Name,
		Launched:         g.Launched,
		Over:             g.Over,
		PlayerList:       g.playerViewsLocked(),
		HostPlayerIndex:  g.hostIndex,
		JudgePlayerIndex: g.judgeIndex,
		QuestionCard:     g.questionCard,
		SolutionCount:    len(g.solutions),
	}
}

func (g *Game) playerViewsLocked() []PlayerView {
	views := make([]PlayerView, 0, len(g.players))
	for _, p := range g.players {
		views = append(views, p.view())
	}
	return views
}

func (g *Game) sortSolutionsLocked() {
	sort.SliceStable(g.solutions, func(i, j int) bool {
		return g.solutions[i].sortKey() < g.solutions[j].sortKey()
	})
}

func (g *Game) touchLocked() {
	g.lastActive = time.Now()
}

func (g *Game) broadcastLocked(event string, payload any) {
	for conn := range g.clients {
		conn.Send(event, payload)
	}
}

func (g *Game) sendGameStatusLocked(cfg *Config, messageText string) {
	logf(cfg, "GAMES: Status %d: %s", g.ID, messageText)

	g.broadcastLocked(EventGameStatus, GameStatusPayload{GameStatus: messageText})
}

// The judge index might be temporarily invalid while the roster
// changes, so the player list always carries it as zero; clients track
// the real judge via NewHand.
func (g *Game) sendPlayerListLocked() {
	g.broadcastLocked(EventPlayerList, PlayerListPayload{
		PlayerList:       g.playerViewsLocked(),
		HostPlayerIndex:  g.hostIndex,
		JudgePlayerIndex: 0,
	})
}

// joinable reports whether a join attempt should be accepted, and if
// not, the reason string for the JoinFailed reply.
func (g *Game) joinable() (bool, string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch {
	case g.Launched:
		return false, fmt.Sprintf("Game ID %d is already launched.", g.ID)
	case g.Over:
		return false, fmt.Sprintf("Game ID %d is already over.", g.ID)
	}
	return true, ""
}

// addPlayer appends the player, assigns the host slot on first join,
// subscribes the connection to room broadcasts, and sends the join
// replies. The joinable re-check guards against a launch that raced in
// between the caller's precheck and this call.
func (g *Game) addPlayer(cfg *Config, p *Player) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.Launched || g.Over {
		return fmt.Errorf("game %d no longer joinable", g.ID)
	}

	g.touchLocked()
	g.players = append(g.players, p)
	if g.hostIndex < 0 {
		g.hostIndex = 0
	}
	if p.conn != nil {
		g.clients[p.conn] = true

		p.conn.Send(EventJoinSucceeded, struct{}{})
		p.conn.Send(EventGameName, GameNamePayload{GameName: g.Name})
	}

	g.sendPlayerListLocked()

	return nil
}

// removePlayer takes the player out of the roster and runs the
// recovery transitions: host reassignment, forced game over when too
// few players remain, or hand abort-and-restart mid-game. It reports
// whether the game is now empty; the caller owns deleting it from the
// registry.
func (g *Game) removePlayer(cfg *Config, p *Player) (empty bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if p.conn != nil {
		delete(g.clients, p.conn)
	}

	index := -1
	for i, other := range g.players {
		if other.ID == p.ID {
			index = i
			break
		}
	}
	if index == -1 {
		return len(g.players) == 0
	}

	wasHost := index == g.hostIndex
	g.players = append(g.players[:index], g.players[index+1:]...)

	if len(g.players) == 0 {
		return true
	}

	if len(g.players) <= 2 && g.Launched && !g.Over {
		// Not enough players to continue. Players can still leave an
		// unlaunched game freely, hence the Launched check.
		logf(cfg, "GAMES: Game %d over, only %d players", g.ID, len(g.players))
		g.sendGameOverLocked(cfg, "Not enough players left to continue.")
		return false
	}

	if wasHost {
		g.hostIndex = 0
	}

	g.sendPlayerListLocked()

	if g.Launched && !g.Over {
		g.sendGameStatusLocked(cfg, p.PlayerName+" has left the game; aborting current hand.")
		g.broadcastLocked(EventAbortHand, struct{}{})
		g.startNextHandLocked(cfg)
	}

	return false
}

// startNextHand is the AfterFunc entry point for the post-hand delay.
// The timer is never cancelled, so the guards inside startNextHandLocked
// cover firing after the game emptied or ended.
func (g *Game) startNextHand(cfg *Config) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.startNextHandLocked(cfg)
}

func (g *Game) startNextHandLocked(cfg *Config) {
	if !g.Launched || g.Over || len(g.players) == 0 {
		return
	}

	// Rotate the judge: random on the first hand, then circular so
	// every player serves once per full cycle.
	if g.judgeIndex < 0 {
		g.judgeIndex = rand.IntN(len(g.players))
	} else {
		g.judgeIndex = (g.judgeIndex + 1) % len(g.players)
	}
	logf(cfg, "GAMES: Game %d new hand, judge index %d", g.ID, g.judgeIndex)

	g.solutions = nil

	if card, ok := g.questionDeck.Draw(); ok {
		g.questionCard = &card
	} else {
		g.questionCard = nil
	}

	g.broadcastLocked(EventNewHand, NewHandPayload{
		JudgePlayerIndex: g.judgeIndex,
		QuestionCard:     g.questionCard,
	})
	g.sendGameStatusLocked(cfg, "New turn: "+g.players[g.judgeIndex].PlayerName+
		" is the judge; everyone else make a play.")
}

// sendGameOverLocked emits the final notification with descending
// scores. The Over flag guards against duplicate emission as more
// players quit an already-ended game.
func (g *Game) sendGameOverLocked(cfg *Config, messageText string) {
	if g.Over {
		logf(cfg, "GAMES: Game %d already over", g.ID)
		return
	}
	g.Over = true

	views := g.playerViewsLocked()
	sort.SliceStable(views, func(i, j int) bool {
		return views[i].Score > views[j].Score
	})

	var scores strings.Builder
	scores.WriteString("Final scores: ")
	for i, v := range views {
		if i != 0 {
			scores.WriteString(", ")
		}
		scores.WriteString(v.PlayerName)
		scores.WriteString(" = ")
		scores.WriteString(strconv.Itoa(v.Score))
	}

	g.broadcastLocked(EventGameOver, GameOverPayload{
		MessageText: messageText,
		ScoreText:   scores.String(),
	})
}
