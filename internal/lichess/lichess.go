package lichess

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	apperrors "github.com/boardsnap/boardsnap/internal/errors"
	"github.com/boardsnap/boardsnap/internal/metrics"
	"github.com/boardsnap/boardsnap/internal/position"
)

// DefaultBaseURL is the public lichess site
const DefaultBaseURL = "https://lichess.org"

// Kind is the way a PGN is handed to lichess
type Kind string

const (
	// KindDirect opens the analysis board for a FEN
	KindDirect Kind = "direct"
	// KindForm posts the full PGN to the import page
	KindForm Kind = "form"
)

// Form is an HTML form submission opened in a new browsing context
type Form struct {
	Method string            `json:"method"`
	Action string            `json:"action"`
	Target string            `json:"target"`
	Fields map[string]string `json:"fields"`
}

// Action describes how to open a PGN on lichess
type Action struct {
	Kind Kind   `json:"kind"`
	URL  string `json:"url"`
	FEN  string `json:"fen,omitempty"`
	Form *Form  `json:"form,omitempty"`
}

// Navigator opens URLs and submits forms on the user's behalf
type Navigator interface {
	OpenURL(ctx context.Context, url string) error
	SubmitForm(ctx context.Context, form Form) error
}

// Builder turns PGN text into lichess links
type Builder struct {
	baseURL   string
	navigator Navigator
}

// NewBuilder creates a builder for the given site root. An empty baseURL means lichess.org.
func NewBuilder(baseURL string, navigator Navigator) *Builder {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Builder{
		baseURL:   strings.TrimRight(baseURL, "/"),
		navigator: navigator,
	}
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// EncodeFEN converts a FEN into the path form lichess expects: whitespace runs become
// underscores and each rank is path-escaped.
func EncodeFEN(fen string) string {
	underscored := whitespaceRe.ReplaceAllString(strings.TrimSpace(fen), "_")
	segments := strings.Split(underscored, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return strings.Join(segments, "/")
}

// Build picks a direct analysis URL when the PGN carries a FEN and an import form otherwise
func (b *Builder) Build(pgn string) (Action, error) {
	if strings.TrimSpace(pgn) == "" {
		return Action{}, apperrors.NewLinkConstructionError("no PGN to open on lichess", nil)
	}

	if fen, ok := position.FindFEN(pgn); ok {
		metrics.ObserveLink(string(KindDirect))
		return Action{
			Kind: KindDirect,
			URL:  b.baseURL + "/analysis/" + EncodeFEN(fen),
			FEN:  fen,
		}, nil
	}

	metrics.ObserveLink(string(KindForm))
	form := &Form{
		Method: "POST",
		Action: b.baseURL + "/paste",
		Target: "_blank",
		Fields: map[string]string{"pgn": pgn},
	}
	return Action{
		Kind: KindForm,
		URL:  form.Action,
		Form: form,
	}, nil
}

// Open builds the link and hands it to the navigator. There is a single attempt.
func (b *Builder) Open(ctx context.Context, pgn string) error {
	action, err := b.Build(pgn)
	if err != nil {
		return err
	}
	if b.navigator == nil {
		return apperrors.NewLinkConstructionError("no navigator configured", nil)
	}

	slog.Info("Opening lichess", "kind", action.Kind, "url", action.URL)

	switch action.Kind {
	case KindDirect:
		err = b.navigator.OpenURL(ctx, action.URL)
	default:
		err = b.navigator.SubmitForm(ctx, *action.Form)
	}
	if err != nil {
		return apperrors.NewLinkConstructionError(apperrors.ManualCopyMessage, fmt.Errorf("open %s: %w", action.URL, err))
	}
	return nil
}
