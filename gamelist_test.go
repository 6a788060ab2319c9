package main

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGameIDAllocationIsSparse(t *testing.T) {
	assert := assert.New(t)

	gl := newGameList(testDecks())

	first := gl.createGame(VariantA2A)
	second := gl.createGame(VariantCAH)

	assert.Equal(12602, first.ID)
	assert.Equal(12859, second.ID)
	assert.Equal(257, second.ID-first.ID)
}

func TestGetAllGamesReturnsOnlyJoinable(t *testing.T) {
	assert := assert.New(t)
	cfg := testConfig()

	gl := newGameList(testDecks())

	open := gl.createGame(VariantA2A)
	launched := gl.createGame(VariantA2A)
	ended := gl.createGame(VariantCAH)

	host := gl.createPlayer("socket-host", &fakeConn{})
	gl.join(cfg, host, launched.ID)
	launched.launch(cfg, gl.decks, host)

	ended.mu.Lock()
	ended.Over = true
	ended.mu.Unlock()

	views := gl.getAllGames()
	assert.Len(views, 1)
	assert.Contains(views, open.ID)
}

func TestGetGamesByVariant(t *testing.T) {
	assert := assert.New(t)

	gl := newGameList(testDecks())

	a2a := gl.createGame(VariantA2A)
	cah := gl.createGame(VariantCAH)

	views := gl.getGamesByVariant(VariantA2A)
	assert.Len(views, 1)
	assert.Contains(views, a2a.ID)

	views = gl.getGamesByVariant(VariantCAH)
	assert.Len(views, 1)
	assert.Contains(views, cah.ID)
	assert.Equal(VariantCAH, views[cah.ID].Variant)
}

func TestEmptyGameIsDeleted(t *testing.T) {
	assert := assert.New(t)
	cfg := testConfig()

	gl := newGameList(testDecks())
	g := gl.createGame(VariantA2A)

	conn := &fakeConn{}
	p := gl.createPlayer("socket-1", conn)
	gl.join(cfg, p, g.ID)

	gl.leave(cfg, p)

	assert.Nil(gl.getGameByID(g.ID))
	assert.Nil(gl.gameFor(p))
}

func TestJoinMovesPlayerBetweenGames(t *testing.T) {
	assert := assert.New(t)
	cfg := testConfig()

	gl := newGameList(testDecks())
	first := gl.createGame(VariantA2A)
	second := gl.createGame(VariantA2A)

	conn := &fakeConn{}
	p := gl.createPlayer("socket-1", conn)

	gl.join(cfg, p, first.ID)
	gl.join(cfg, p, second.ID)

	assert.Same(second, gl.gameFor(p))

	// The first game emptied out and was deleted.
	assert.Nil(gl.getGameByID(first.ID))

	second.mu.Lock()
	assert.Len(second.players, 1)
	second.mu.Unlock()
}

func TestSetGameNameBroadcastsAndGuardsMissingGame(t *testing.T) {
	assert := assert.New(t)
	cfg := testConfig()

	gl := newGameList(testDecks())
	g := gl.createGame(VariantA2A)

	conn := &fakeConn{}
	p := gl.createPlayer("socket-1", conn)
	gl.join(cfg, p, g.ID)

	gl.setGameName(cfg, g.ID, "Friday Night")

	payload, ok := conn.last(EventGameName)
	require.True(t, ok)
	assert.Equal("Friday Night", payload.(GameNamePayload).GameName)
	assert.Equal("Friday Night", g.view().GameName)

	// Rename racing a deleted game is a no-op, not a panic.
	gl.setGameName(cfg, 99, "ghost")
}

func TestSetPlayerNameUpdatesRoom(t *testing.T) {
	assert := assert.New(t)
	cfg := testConfig()

	gl := newGameList(testDecks())
	g := gl.createGame(VariantA2A)

	connA := &fakeConn{}
	a := gl.createPlayer("socket-a", connA)
	gl.join(cfg, a, g.ID)

	connB := &fakeConn{}
	b := gl.createPlayer("socket-b", connB)
	gl.join(cfg, b, g.ID)

	gl.setPlayerName(cfg, b, "Beatrix")

	payload, ok := connA.last(EventPlayerList)
	require.True(t, ok)
	list := payload.(PlayerListPayload).PlayerList
	assert.Equal("Beatrix", list[1].PlayerName)

	// Before joining, a rename is local only.
	connC := &fakeConn{}
	c := gl.createPlayer("socket-c", connC)
	gl.setPlayerName(cfg, c, "Casper")
	assert.Equal("Casper", c.PlayerName)
	assert.Equal(0, connC.count(EventPlayerList))
}

func TestDisconnectRemovesPlayerRecord(t *testing.T) {
	assert := assert.New(t)
	cfg := testConfig()

	gl := newGameList(testDecks())
	g := gl.createGame(VariantA2A)

	conn := &fakeConn{}
	p := gl.createPlayer("socket-1", conn)
	gl.join(cfg, p, g.ID)

	gl.disconnect(cfg, p)

	dump := gl.debugDump()
	assert.NotContains(dump.PlayerTable, "socket-1")
	assert.NotContains(dump.GameTable, g.ID)
}

func TestDebugDumpIsSanitized(t *testing.T) {
	assert := assert.New(t)
	cfg := testConfig()

	gl := newGameList(testDecks())
	g := gl.createGame(VariantA2A)

	conn := &fakeConn{}
	p := gl.createPlayer("socket-1", conn)
	gl.setPlayerName(cfg, p, "Alice")
	gl.join(cfg, p, g.ID)

	dump := gl.debugDump()

	assert.Equal(g.ID, dump.LastGameID)
	require.Contains(t, dump.PlayerTable, "socket-1")
	assert.Equal("Alice", dump.PlayerTable["socket-1"].PlayerName)

	require.Contains(t, dump.GameTable, g.ID)
	view := dump.GameTable[g.ID]
	assert.Equal(VariantA2A, view.Variant)
	assert.Len(view.PlayerList, 1)
	assert.False(view.Launched)
}

// TestDebugDumpConcurrentWithGameplay hammers the dump from one
// goroutine while gameplay mutates player fields from others; run
// under the race detector it proves the snapshot takes the same locks
// the writers do.
func TestDebugDumpConcurrentWithGameplay(t *testing.T) {
	assert := assert.New(t)
	cfg := testConfig()
	// Keep the judge fixed for the whole test.
	cfg.handDelay = time.Hour

	gl, g, players, _ := setupGame(t, cfg, 3)
	launchAndStart(cfg, gl, g, players)

	judge := currentJudge(g)
	winner := (judge + 1) % 3

	lobby := gl.createPlayer("socket-lobby", &fakeConn{})

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			g.judgeSolutions(cfg, players[judge], 0, winner)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			gl.setPlayerName(cfg, lobby, fmt.Sprintf("L%03d", i))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			gl.debugDump()
		}
	}()
	wg.Wait()

	assert.Equal(200, players[winner].Score)

	dump := gl.debugDump()
	assert.Equal("L199", dump.PlayerTable["socket-lobby"].PlayerName)
	assert.Equal(200, dump.PlayerTable[players[winner].ID].Score)
}

func TestReapOnceEndsIdleGames(t *testing.T) {
	assert := assert.New(t)
	cfg := testConfig()

	gl := newGameList(testDecks())

	stale := gl.createGame(VariantA2A)
	conn := &fakeConn{}
	p := gl.createPlayer("socket-1", conn)
	gl.join(cfg, p, stale.ID)

	fresh := gl.createGame(VariantCAH)

	stale.mu.Lock()
	stale.lastActive = time.Now().Add(-2 * cfg.sessionTimeout)
	stale.mu.Unlock()

	gl.reapOnce(cfg, time.Now())

	payload, ok := conn.last(EventGameOver)
	require.True(t, ok)
	assert.Equal("Game ended due to inactivity.", payload.(GameOverPayload).MessageText)

	// The stale game and its memberships are gone; the fresh one stays.
	assert.Nil(gl.getGameByID(stale.ID))
	assert.Nil(gl.gameFor(p))
	assert.NotNil(gl.getGameByID(fresh.ID))
}
