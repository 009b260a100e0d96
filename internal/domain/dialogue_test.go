package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuggestionsAction(t *testing.T) {
	candidates := []Candidate{
		{Label: "León, León, Nicaragua", Coordinate: Coordinate{Lat: 12.43, Lon: -86.88}},
		{Label: "León Viejo, León, Nicaragua", Coordinate: Coordinate{Lat: 12.40, Lon: -86.61}},
		{Label: "Barrio León, Managua", Coordinate: Coordinate{Lat: 12.14, Lon: -86.25}},
		{Label: "Colonia León, Masaya", Coordinate: Coordinate{Lat: 11.97, Lon: -86.09}},
	}

	a := SuggestionsAction(candidates)
	assert.Equal(t, ActionSuggestions, a.Type)
	assert.Len(t, a.Chips, MaxSuggestions)
	assert.Equal(t, Chip{
		Text:        "Ir a León, León, Nicaragua",
		Place:       "León, León, Nicaragua",
		Destination: Coordinate{Lat: 12.43, Lon: -86.88},
	}, a.Chips[0])

	assert.Len(t, SuggestionsAction(candidates[:2]).Chips, 2)
	assert.Empty(t, SuggestionsAction(nil).Chips)
}

func TestResult(t *testing.T) {
	ok := From([]Article{{Title: "Sismo"}}, nil)
	assert.True(t, ok.IsOK())
	assert.Len(t, ok.Value, 1)

	failed := From[[]Article](nil, ErrArticleSearchUnavailable)
	assert.False(t, failed.IsOK())
	assert.True(t, errors.Is(failed.Err, ErrArticleSearchUnavailable))
}

func TestFallbackGeocode(t *testing.T) {
	r := FallbackGeocode()
	assert.Equal(t, Coordinate{Lat: 12.865, Lon: -85.207}, r.Center)
	assert.Equal(t, "fallback", r.Source)
	assert.Empty(t, r.Candidates)
}
