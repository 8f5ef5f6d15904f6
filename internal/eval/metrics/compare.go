package metrics

import (
	"fmt"

	"github.com/boardsnap/boardsnap/internal/position"
)

// Match methods recorded on a Comparison
const (
	MethodExact     = "exact"
	MethodPlacement = "placement"
	MethodPartial   = "partial"
	MethodInvalid   = "invalid"
	MethodMissing   = "missing"
)

// Comparison scores a recognised FEN against the labelled one
type Comparison struct {
	Expected        string  `json:"expected"`
	Actual          string  `json:"actual"`
	Method          string  `json:"method"`
	ExactMatch      bool    `json:"exact_match"`
	PlacementMatch  bool    `json:"placement_match"`
	SideToMoveMatch bool    `json:"side_to_move_match"`
	SquaresCorrect  int     `json:"squares_correct"`
	SquareAccuracy  float64 `json:"square_accuracy"`
}

// CompareFEN compares actual against expected square by square.
// An invalid expected FEN is an error; an invalid or missing actual FEN scores zero.
func CompareFEN(expected, actual string) (*Comparison, error) {
	want, err := position.ParseBoard(expected)
	if err != nil {
		return nil, fmt.Errorf("invalid expected FEN %q: %w", expected, err)
	}

	c := &Comparison{Expected: expected, Actual: actual}
	if actual == "" {
		c.Method = MethodMissing
		return c, nil
	}

	got, err := position.ParseBoard(actual)
	if err != nil {
		c.Method = MethodInvalid
		return c, nil
	}

	for i := range want {
		if want[i] == got[i] {
			c.SquaresCorrect++
		}
	}
	c.SquareAccuracy = float64(c.SquaresCorrect) / float64(len(want))
	c.PlacementMatch = c.SquaresCorrect == len(want)
	c.SideToMoveMatch = sideToMove(expected) == sideToMove(actual)
	c.ExactMatch = c.PlacementMatch && c.SideToMoveMatch

	switch {
	case c.ExactMatch:
		c.Method = MethodExact
	case c.PlacementMatch:
		c.Method = MethodPlacement
	default:
		c.Method = MethodPartial
	}

	return c, nil
}

// sideToMove defaults to white when the field is absent
func sideToMove(fen string) string {
	fields := position.Fields(fen)
	if len(fields) < 2 {
		return "w"
	}
	return fields[1]
}
