package position

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBoard(t *testing.T) {
	board, err := ParseBoard(startFEN)
	require.NoError(t, err)

	assert.Equal(t, byte('r'), board[0], "a8")
	assert.Equal(t, byte('k'), board[4], "e8")
	assert.Equal(t, byte('p'), board[8], "a7")
	assert.Equal(t, byte('.'), board[16], "a6")
	assert.Equal(t, byte('K'), board[60], "e1")
	assert.Equal(t, byte('R'), board[63], "h1")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		fen     string
		wantErr bool
	}{
		{name: "start position", fen: startFEN},
		{name: "no counters", fen: "8/8/8/8/8/8/8/K6k w - -"},
		{name: "empty", fen: "", wantErr: true},
		{name: "too few ranks", fen: "8/8/8 w - -", wantErr: true},
		{name: "rank too long", fen: "ppppppppp/8/8/8/8/8/8/8 w - -", wantErr: true},
		{name: "rank too short", fen: "7/8/8/8/8/8/8/8 w - -", wantErr: true},
		{name: "unknown piece", fen: "8/8/8/8/8/8/8/7x w - -", wantErr: true},
		{name: "missing side", fen: "8/8/8/8/8/8/8/8", wantErr: true},
		{name: "bad side", fen: "8/8/8/8/8/8/8/8 x - -", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.fen)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
