package position

import (
	"fmt"
	"strings"
)

// Board is a FEN placement expanded to one byte per square, a8 first; empty squares are '.'.
type Board [64]byte

// Fields splits a FEN into its whitespace-separated fields
func Fields(fen string) []string {
	return strings.Fields(fen)
}

// ParseBoard expands the piece placement field of a FEN
func ParseBoard(fen string) (Board, error) {
	var board Board
	fields := Fields(fen)
	if len(fields) == 0 {
		return board, fmt.Errorf("empty FEN")
	}

	ranks := strings.Split(fields[0], "/")
	if len(ranks) != 8 {
		return board, fmt.Errorf("expected 8 ranks, got %d", len(ranks))
	}

	for r, rank := range ranks {
		file := 0
		for _, c := range rank {
			switch {
			case c >= '1' && c <= '8':
				for n := 0; n < int(c-'0'); n++ {
					if file >= 8 {
						return board, fmt.Errorf("rank %d has more than 8 squares", 8-r)
					}
					board[r*8+file] = '.'
					file++
				}
			case strings.ContainsRune("rnbqkpRNBQKP", c):
				if file >= 8 {
					return board, fmt.Errorf("rank %d has more than 8 squares", 8-r)
				}
				board[r*8+file] = byte(c)
				file++
			default:
				return board, fmt.Errorf("invalid piece %q in rank %d", c, 8-r)
			}
		}
		if file != 8 {
			return board, fmt.Errorf("rank %d has %d squares", 8-r, file)
		}
	}

	return board, nil
}

// Validate checks that a FEN has a well-formed board and side-to-move field
func Validate(fen string) error {
	if _, err := ParseBoard(fen); err != nil {
		return err
	}
	fields := Fields(fen)
	if len(fields) < 2 {
		return fmt.Errorf("missing side to move")
	}
	if fields[1] != "w" && fields[1] != "b" {
		return fmt.Errorf("invalid side to move %q", fields[1])
	}
	return nil
}
