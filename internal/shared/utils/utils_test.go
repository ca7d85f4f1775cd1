package utils

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestGenerateSlug(t *testing.T) {
	cases := map[string]string{
		"Fresh Fruits":        "fresh-fruits",
		"Dairy & Eggs":        "dairy-eggs",
		"  Meat -- Fish  ":    "meat-fish",
		"Молочные продукты":   "molochnye-produkty",
		"Йогурт":              "yogurt",
		"Crème fraîche & Co":  "creme-fraiche-co",
		"snack_bars_2024":     "snack-bars-2024",
		"!!!":                 "",
		"Щи и борщ":           "shchi-i-borshch",
	}

	for input, want := range cases {
		assert.Equal(t, want, GenerateSlug(input), "input %q", input)
	}
}

func TestTransliterate_KeepsCase(t *testing.T) {
	assert.Equal(t, "Zhuk", Transliterate("Жук"))
	assert.Equal(t, "Chai", Transliterate("Чаи"))
}

func TestParsePagination(t *testing.T) {
	p := ParsePagination("", "")
	assert.Equal(t, Pagination{Page: 1, Limit: 20}, p)
	assert.Equal(t, 0, p.Offset())

	p = ParsePagination("3", "10")
	assert.Equal(t, 20, p.Offset())
	assert.Equal(t, 3, p.TotalPages(25))

	p = ParsePagination("-2", "5000")
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, MaxLimit, p.Limit)

	p = ParsePagination("abc", "0")
	assert.Equal(t, Pagination{Page: 1, Limit: 20}, p)
	assert.Equal(t, 0, p.TotalPages(0))
}

func TestParseStringToUUID(t *testing.T) {
	id := uuid.New()
	assert.Equal(t, id, ParseStringToUUID(id.String()))
	assert.Equal(t, uuid.Nil, ParseStringToUUID(""))
	assert.Equal(t, uuid.Nil, ParseStringToUUID("not-a-uuid"))
}

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, "SAVE20", NormalizeCode("  save20 "))
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\% off\_now`, EscapeLike("50% off_now"))
}
