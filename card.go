package main

import (
	"embed"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"strings"
)

// Variant selects which master card set a game plays with.
type Variant string

const (
	VariantA2A Variant = "a2a"
	VariantCAH Variant = "cah"
)

func parseVariant(s string) (Variant, error) {
	switch Variant(strings.ToLower(s)) {
	case VariantA2A:
		return VariantA2A, nil
	case VariantCAH:
		return VariantCAH, nil
	}
	return "", fmt.Errorf("unknown game variant: %q", s)
}

// Card is one question or answer card. Question cards carry Pick, the
// number of answer cards a solution must contain; answer cards do not.
type Card struct {
	Title string `json:"title"`
	Text  string `json:"text"`
	Pick  int    `json:"pick,omitempty"`
}

// Deck holds the undrawn cards for one game. It copies its source slice
// so independent games never share mutable card state.
type Deck struct {
	name  string
	cards []Card
}

func newDeck(name string, cards []Card) *Deck {
	d := &Deck{
		name:  name,
		cards: make([]Card, len(cards)),
	}
	copy(d.cards, cards)
	return d
}

// Draw removes and returns one uniformly-random remaining card. The
// second return is false once the deck is exhausted; callers treat that
// as a degraded condition, not an error. Swap-and-pop keeps the draw
// O(1) without biasing toward cards appended later.
func (d *Deck) Draw() (Card, bool) {
	if len(d.cards) == 0 {
		return Card{}, false
	}

	i := rand.IntN(len(d.cards))
	last := len(d.cards) - 1
	card := d.cards[i]
	d.cards[i] = d.cards[last]
	d.cards = d.cards[:last]

	return card, true
}

func (d *Deck) Len() int {
	return len(d.cards)
}

//go:embed decks/a2a.json decks/cah.json
var deckFiles embed.FS

// The two deck files were imported from different sources and keep
// their own formats: A2A cards are bare strings that get split into
// title/text here, CAH question cards already carry their pick counts.
type a2aDeckFile struct {
	GreenCards []struct {
		Text string `json:"text"`
	} `json:"greenCards"`
	RedCards []struct {
		Text string `json:"text"`
	} `json:"redCards"`
}

type cahDeckFile struct {
	BlackCards []Card   `json:"blackCards"`
	WhiteCards []string `json:"whiteCards"`
}

// masterDecks holds the card sets loaded once at startup. Each launch
// copies from these, never draws from them.
type masterDecks struct {
	a2aQuestions []Card
	a2aAnswers   []Card
	cahQuestions []Card
	cahAnswers   []Card
}

// splitA2AQuestion splits a green-apple card like "Fuzzy (soft, furry)"
// into title and parenthesized text.
func splitA2AQuestion(text string) Card {
	paren := strings.Index(text, "(")
	if paren == -1 {
		return Card{Text: text, Pick: 1}
	}
	return Card{
		Title: strings.TrimSpace(text[:paren]),
		Text:  strings.TrimSpace(text[paren:]),
		Pick:  1,
	}
}

// splitA2AAnswer splits a red-apple card like "Albert Einstein - Physicist"
// into title and description.
func splitA2AAnswer(text string) Card {
	dash := strings.Index(text, "-")
	if dash == -1 {
		return Card{Text: text}
	}
	return Card{
		Title: strings.TrimSpace(text[:dash]),
		Text:  strings.TrimSpace(text[dash+1:]),
	}
}

func loadMasterDecks() (*masterDecks, error) {
	a2aRaw, err := deckFiles.ReadFile("decks/a2a.json")
	if err != nil {
		return nil, err
	}

	var a2a a2aDeckFile
	if err := json.Unmarshal(a2aRaw, &a2a); err != nil {
		return nil, fmt.Errorf("decks/a2a.json: %w", err)
	}

	cahRaw, err := deckFiles.ReadFile("decks/cah.json")
	if err != nil {
		return nil, err
	}

	var cah cahDeckFile
	if err := json.Unmarshal(cahRaw, &cah); err != nil {
		return nil, fmt.Errorf("decks/cah.json: %w", err)
	}

	m := &masterDecks{}

	for _, c := range a2a.GreenCards {
		m.a2aQuestions = append(m.a2aQuestions, splitA2AQuestion(c.Text))
	}
	for _, c := range a2a.RedCards {
		m.a2aAnswers = append(m.a2aAnswers, splitA2AAnswer(c.Text))
	}

	m.cahQuestions = append(m.cahQuestions, cah.BlackCards...)
	for _, text := range cah.WhiteCards {
		m.cahAnswers = append(m.cahAnswers, Card{Text: text})
	}

	return m, nil
}

func (m *masterDecks) questionCards(v Variant) []Card {
	if v == VariantA2A {
		return m.a2aQuestions
	}
	return m.cahQuestions
}

func (m *masterDecks) answerCards(v Variant) []Card {
	if v == VariantA2A {
		return m.a2aAnswers
	}
	return m.cahAnswers
}
