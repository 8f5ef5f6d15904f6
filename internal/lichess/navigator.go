package lichess

import (
	"context"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/pkg/browser"
)

var formTemplate = template.Must(template.New("form").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Opening lichess</title></head>
<body onload="document.forms[0].submit()">
<form method="{{.Method}}" action="{{.Action}}" target="_self">
{{- range $name, $value := .Fields}}
<input type="hidden" name="{{$name}}" value="{{$value}}">
{{- end}}
<noscript><button type="submit">Open on lichess</button></noscript>
</form>
</body>
</html>
`))

// RenderForm writes an HTML page that submits form as soon as it loads
func RenderForm(w io.Writer, form Form) error {
	return formTemplate.Execute(w, form)
}

// BrowserNavigator opens links in the system browser. Forms are written to a temporary
// auto-submitting page which is removed once the browser has had time to load it.
type BrowserNavigator struct {
	// Linger is how long the temporary form page is kept on disk
	Linger time.Duration

	openURL  func(string) error
	openFile func(string) error
}

// NewBrowserNavigator creates a navigator backed by the system browser
func NewBrowserNavigator() *BrowserNavigator {
	return &BrowserNavigator{
		Linger:   5 * time.Second,
		openURL:  browser.OpenURL,
		openFile: browser.OpenFile,
	}
}

// OpenURL opens url in the system browser
func (n *BrowserNavigator) OpenURL(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return n.openURL(url)
}

// SubmitForm opens a temporary page that posts the form
func (n *BrowserNavigator) SubmitForm(ctx context.Context, form Form) error {
	file, err := os.CreateTemp("", "boardsnap-*.html")
	if err != nil {
		return fmt.Errorf("failed to create form page: %w", err)
	}
	path := file.Name()
	defer func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			slog.Warn("Failed to remove form page", "path", path, "err", err)
		}
	}()

	if err := RenderForm(file, form); err != nil {
		file.Close()
		return fmt.Errorf("failed to render form page: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to write form page: %w", err)
	}

	if err := n.openFile(path); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
	case <-time.After(n.Linger):
	}
	return nil
}

// RecordingNavigator remembers what it was asked to open without opening anything.
// It backs link --dry-run.
type RecordingNavigator struct {
	// Err is returned from every call when set
	Err error

	mu      sync.Mutex
	actions []Action
}

func (n *RecordingNavigator) OpenURL(ctx context.Context, url string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.actions = append(n.actions, Action{Kind: KindDirect, URL: url})
	return n.Err
}

func (n *RecordingNavigator) SubmitForm(ctx context.Context, form Form) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.actions = append(n.actions, Action{Kind: KindForm, URL: form.Action, Form: &form})
	return n.Err
}

// Actions returns every navigation in call order
func (n *RecordingNavigator) Actions() []Action {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Action(nil), n.actions...)
}

// URLs returns the URLs opened so far
func (n *RecordingNavigator) URLs() []string {
	var urls []string
	for _, a := range n.Actions() {
		if a.Kind == KindDirect {
			urls = append(urls, a.URL)
		}
	}
	return urls
}

// Forms returns the forms submitted so far
func (n *RecordingNavigator) Forms() []Form {
	var forms []Form
	for _, a := range n.Actions() {
		if a.Kind == KindForm {
			forms = append(forms, *a.Form)
		}
	}
	return forms
}
