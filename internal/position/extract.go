package position

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
)

// Strategy names the matcher that produced an extraction
type Strategy string

const (
	StrategyDirectFEN Strategy = "direct_fen"
	StrategyFENTag    Strategy = "fen_tag"
	StrategyPGNBlock  Strategy = "pgn_block"
	StrategyCodeFence Strategy = "code_fence"
	StrategyRawText   Strategy = "raw_text"
)

// Extraction is the position recovered from a model reply.
// FEN is empty when no FEN could be found; PGN is then the cleaned best-effort text.
type Extraction struct {
	FEN      string
	PGN      string
	Strategy Strategy
}

// HasFEN reports whether a FEN was found
func (e Extraction) HasFEN() bool {
	return e.FEN != ""
}

// Usable reports whether the extraction carries any PGN text at all
func (e Extraction) Usable() bool {
	return strings.TrimSpace(e.PGN) != ""
}

// Matcher is one step of the extraction pipeline. Match returns the candidate and true when
// the step applies; FEN marks steps whose candidate is a FEN rather than PGN text.
type Matcher struct {
	Strategy Strategy
	FEN      bool
	Match    func(text string) (string, bool)
}

const (
	rankGroup    = `[rnbqkpRNBQKP1-8]+`
	fenCore      = `(?:` + rankGroup + `/){7}` + rankGroup + `\s[wb]\s(?:[KQkq]{1,4}|-)\s(?:[a-h][1-8]|-)`
	fenCounters  = `(?:[ \t]+\d+[ \t]+\d+)?`
	tokenStart   = `(?:^|[^A-Za-z0-9/])`
	tokenEnd     = `(?:$|[^A-Za-z0-9/])`
	resultTokens = `1-0|0-1|1/2-1/2|\*`
)

var (
	directFENRe      = regexp.MustCompile(tokenStart + `(` + fenCore + fenCounters + `)` + tokenEnd)
	quotedFENTagRe   = regexp.MustCompile(`\[FEN\s+"([^"]+)"\]`)
	unquotedFENTagRe = regexp.MustCompile(`\[FEN\s+([^\]]+)\]`)
	pgnBlockRe       = regexp.MustCompile(`(?s)\[\s*(?:Event|Site)\b.*?\s(?:` + resultTokens + `)(?:\s|$)`)
	codeFenceRe      = regexp.MustCompile("(?s)```(?:pgn)?\\s*(.*?)```")
)

// Pipeline is the ordered list of matchers tried by Extract; the first match wins.
var Pipeline = []Matcher{
	{Strategy: StrategyDirectFEN, FEN: true, Match: MatchDirectFEN},
	{Strategy: StrategyFENTag, FEN: true, Match: MatchFENTag},
	{Strategy: StrategyPGNBlock, Match: MatchPGNBlock},
	{Strategy: StrategyCodeFence, Match: MatchCodeFence},
	{Strategy: StrategyRawText, Match: MatchRawText},
}

// MatchDirectFEN finds the first FEN-shaped token. Halfmove and fullmove counters are
// included when present but not required. The FEN must not be glued to other board text,
// so a ninth rank or a trailing digit rejects the match.
func MatchDirectFEN(text string) (string, bool) {
	m := directFENRe.FindStringSubmatch(text)
	if len(m) != 2 {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// MatchFENTag returns the content of a [FEN "..."] tag, quoted or not
func MatchFENTag(text string) (string, bool) {
	if m := quotedFENTagRe.FindStringSubmatch(text); len(m) == 2 && strings.TrimSpace(m[1]) != "" {
		return strings.TrimSpace(m[1]), true
	}
	if m := unquotedFENTagRe.FindStringSubmatch(text); len(m) == 2 {
		fen := strings.TrimSpace(strings.Trim(strings.TrimSpace(m[1]), `"`))
		if fen != "" {
			return fen, true
		}
	}
	return "", false
}

// MatchPGNBlock captures a PGN block from the first [Event or [Site header through the
// first result token that follows whitespace, so header values like [Result "1-0"] do not end it.
func MatchPGNBlock(text string) (string, bool) {
	if !strings.Contains(text, "[Event") && !strings.Contains(text, "[Site") {
		return "", false
	}
	m := pgnBlockRe.FindString(text)
	if m == "" {
		return "", false
	}
	return strings.TrimSpace(m), true
}

// MatchCodeFence returns the trimmed content of the first ``` fenced block
func MatchCodeFence(text string) (string, bool) {
	if !strings.Contains(text, "```") {
		return "", false
	}
	m := codeFenceRe.FindStringSubmatch(text)
	if len(m) != 2 {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// MatchRawText always matches with the trimmed text
func MatchRawText(text string) (string, bool) {
	return strings.TrimSpace(text), true
}

// FindFEN runs only the FEN matchers of the pipeline
func FindFEN(text string) (string, bool) {
	text = strings.TrimSpace(text)
	for _, m := range Pipeline {
		if !m.FEN {
			continue
		}
		if fen, ok := m.Match(text); ok {
			return fen, true
		}
	}
	return "", false
}

// Extract converts a free-form model reply into a FEN and PGN. It never fails; an
// extraction with no FEN and empty PGN means nothing usable was found.
func Extract(text string) Extraction {
	text = strings.TrimSpace(text)

	for _, m := range Pipeline {
		candidate, ok := m.Match(text)
		if !ok {
			continue
		}

		if m.FEN {
			if err := Validate(candidate); err != nil {
				slog.Debug("Extracted FEN does not describe a legal board layout", "fen", candidate, "err", err)
			}
			return Extraction{FEN: candidate, PGN: WrapFEN(candidate), Strategy: m.Strategy}
		}

		return Extraction{PGN: Clean(candidate), Strategy: m.Strategy}
	}

	return Extraction{Strategy: StrategyRawText}
}

// WrapFEN builds the minimal PGN that sets up the given position
func WrapFEN(fen string) string {
	return fmt.Sprintf("[SetUp \"1\"]\n[FEN \"%s\"]\n\n*", fen)
}
