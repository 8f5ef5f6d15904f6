package evalcmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/boardsnap/boardsnap/internal/eval/dataset"
	"github.com/boardsnap/boardsnap/internal/position"
)

func executeInspect(ctx context.Context, out io.Writer, in io.Reader, datasetPath string, limit int, interactive bool) error {
	loader := dataset.NewLoader(datasetPath)

	var records []dataset.Record
	var err error

	if limit > 0 {
		records, err = loader.LoadSample(limit)
	} else {
		records, err = loader.Load()
	}

	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}

	fmt.Fprintf(out, "Loaded %d records from %s\n", len(records), datasetPath)
	fmt.Fprintln(out, strings.Repeat("=", 80))
	fmt.Fprintln(out)

	reader := bufio.NewReader(in)
	invalid := 0

	for i, record := range records {
		select {
		case <-ctx.Done():
			fmt.Fprintln(out, "\nInspection interrupted.")
			return nil
		default:
		}

		fmt.Fprintf(out, "RECORD %d/%d\n", i+1, len(records))
		fmt.Fprintln(out, strings.Repeat("-", 80))
		fmt.Fprintf(out, "ID:     %s\n", record.ID)
		fmt.Fprintf(out, "Image:  %s\n", record.ResolveImagePath(loader.BaseDir()))
		fmt.Fprintf(out, "FEN:    %s\n", record.FEN)

		if err := position.Validate(record.FEN); err != nil {
			invalid++
			fmt.Fprintf(out, "INVALID FEN: %v\n", err)
		} else {
			board, _ := position.ParseBoard(record.FEN)
			fmt.Fprintln(out)
			writeBoard(out, board)
		}

		fmt.Fprintln(out)

		if interactive {
			fmt.Fprint(out, "Press Enter to continue to next record (or Ctrl+C to quit)...")

			inputCh := make(chan struct{})
			go func() {
				_, _ = reader.ReadString('\n')
				close(inputCh)
			}()

			select {
			case <-ctx.Done():
				fmt.Fprintln(out, "\nInspection interrupted.")
				return nil
			case <-inputCh:
				fmt.Fprintln(out)
			}
		}
	}

	if invalid > 0 {
		fmt.Fprintf(out, "%d of %d records have an invalid FEN\n", invalid, len(records))
	}

	return nil
}

// writeBoard draws the board with rank 8 at the top
func writeBoard(out io.Writer, board position.Board) {
	for r := 0; r < 8; r++ {
		fmt.Fprintf(out, "  %d ", 8-r)
		for f := 0; f < 8; f++ {
			fmt.Fprintf(out, " %c", board[r*8+f])
		}
		fmt.Fprintln(out)
	}
	fmt.Fprintln(out, "     a b c d e f g h")
}
