package main

import (
	"encoding/json"
)

// Wire protocol. Event names and payload fields match the original
// socket.io contract, so the existing Angular client keeps working
// against this server unmodified.

const (
	// client -> server
	EventJoinGame       = "JoinGame"
	EventLaunch         = "Launch"
	EventReadyToStart   = "ReadyToStart"
	EventNeedHandCards  = "NeedHandCards"
	EventSolution       = "Solution"
	EventJudgeSolutions = "JudgeSolutions"

	// both directions
	EventGameName   = "GameName"
	EventPlayerName = "PlayerName"

	// server -> client
	EventJoinSucceeded = "JoinSucceeded"
	EventJoinFailed    = "JoinFailed"
	EventPlayerList    = "PlayerList"
	EventLaunched      = "Launched"
	EventGameStatus    = "GameStatus"
	EventNewHand       = "NewHand"
	EventHandCards     = "HandCards"
	EventSolutionCount = "SolutionCount"
	EventSolutionList  = "SolutionList"
	EventHandOver      = "HandOver"
	EventAbortHand     = "AbortHand"
	EventGameOver      = "GameOver"
)

// Envelope frames every message on the socket in both directions.
type Envelope struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

type outbound struct {
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

// Client -> server payloads

type JoinGamePayload struct {
	GameID int `json:"gameId"`
}

type GameNamePayload struct {
	GameID   int    `json:"gameId,omitempty"`
	GameName string `json:"gameName"`
}

type PlayerNamePayload struct {
	PlayerName string `json:"playerName"`
}

type NeedHandCardsPayload struct {
	Holding int `json:"holding"`
}

type SolutionPayload struct {
	Solution Solution `json:"solution"`
}

type JudgeSolutionsPayload struct {
	WinningSolutionIndex int `json:"winningSolutionIndex"`
	WinningPlayerIndex   int `json:"winningPlayerIndex"`
}

// Server -> client payloads

type JoinFailedPayload struct {
	Reason string `json:"reason"`
}

type PlayerListPayload struct {
	PlayerList       []PlayerView `json:"playerList"`
	HostPlayerIndex  int          `json:"hostPlayerIndex"`
	JudgePlayerIndex int          `json:"judgePlayerIndex"`
}

type GameStatusPayload struct {
	GameStatus string `json:"gameStatus"`
}

type NewHandPayload struct {
	JudgePlayerIndex int   `json:"judgePlayerIndex"`
	QuestionCard     *Card `json:"questionCard"`
}

type HandCardsPayload struct {
	HandCards []Card `json:"handCards"`
}

type SolutionCountPayload struct {
	SolutionCount int `json:"solutionCount"`
}

type SolutionListPayload struct {
	SolutionList []Solution `json:"solutionList"`
}

type HandOverPayload struct {
	WinningSolutionIndex int `json:"winningSolutionIndex"`
	WinningPlayerIndex   int `json:"winningPlayerIndex"`
}

type GameOverPayload struct {
	MessageText string `json:"messageText"`
	ScoreText   string `json:"scoreText"`
}
