package main

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeckDrawUniqueUntilExhausted(t *testing.T) {
	assert := assert.New(t)

	const size = 25
	cards := make([]Card, 0, size)
	for i := 0; i < size; i++ {
		cards = append(cards, Card{Text: fmt.Sprintf("card %02d", i)})
	}

	deck := newDeck("test", cards)

	seen := make(map[string]bool)
	for i := 0; i < size; i++ {
		card, ok := deck.Draw()
		assert.True(ok, "draw %d should succeed", i)
		assert.False(seen[card.Text], "card %q drawn twice", card.Text)
		seen[card.Text] = true
	}

	assert.Equal(0, deck.Len())

	_, ok := deck.Draw()
	assert.False(ok, "draw past exhaustion should signal empty")
}

func TestDeckCopiesSource(t *testing.T) {
	assert := assert.New(t)

	source := []Card{{Text: "a"}, {Text: "b"}, {Text: "c"}}

	first := newDeck("first", source)
	second := newDeck("second", source)

	// Draining one deck must not affect the other or the source.
	for i := 0; i < 3; i++ {
		_, ok := first.Draw()
		assert.True(ok)
	}

	assert.Equal(0, first.Len())
	assert.Equal(3, second.Len())
	assert.Equal("a", source[0].Text)

	source[1].Text = "mutated"
	card, ok := second.Draw()
	assert.True(ok)
	assert.NotEqual("mutated", card.Text)
}

func TestSplitA2AQuestion(t *testing.T) {
	assert := assert.New(t)

	card := splitA2AQuestion("Fuzzy (soft, furry, fluffy)")
	assert.Equal("Fuzzy", card.Title)
	assert.Equal("(soft, furry, fluffy)", card.Text)
	assert.Equal(1, card.Pick)

	// No parenthesis: whole string becomes the text.
	card = splitA2AQuestion("Overrated")
	assert.Equal("", card.Title)
	assert.Equal("Overrated", card.Text)
	assert.Equal(1, card.Pick)
}

func TestSplitA2AAnswer(t *testing.T) {
	assert := assert.New(t)

	card := splitA2AAnswer("Albert Einstein - Physicist with famous hair")
	assert.Equal("Albert Einstein", card.Title)
	assert.Equal("Physicist with famous hair", card.Text)
	assert.Equal(0, card.Pick)

	card = splitA2AAnswer("Bubble Wrap")
	assert.Equal("", card.Title)
	assert.Equal("Bubble Wrap", card.Text)
}

func TestLoadMasterDecks(t *testing.T) {
	assert := assert.New(t)

	decks, err := loadMasterDecks()
	require.NoError(t, err)

	assert.NotEmpty(decks.a2aQuestions)
	assert.NotEmpty(decks.a2aAnswers)
	assert.NotEmpty(decks.cahQuestions)
	assert.NotEmpty(decks.cahAnswers)

	for _, card := range decks.a2aQuestions {
		assert.Equal(1, card.Pick, "a2a question %q should pick one card", card.Title)
		assert.NotEmpty(card.Text)
	}

	for _, card := range decks.cahQuestions {
		assert.GreaterOrEqual(card.Pick, 1, "cah question %q needs a pick count", card.Text)
	}

	// CAH answers are text-only.
	for _, card := range decks.cahAnswers {
		assert.Empty(card.Title)
		assert.NotEmpty(card.Text)
	}

	assert.Equal(decks.a2aQuestions, decks.questionCards(VariantA2A))
	assert.Equal(decks.cahAnswers, decks.answerCards(VariantCAH))
}
