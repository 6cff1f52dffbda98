package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/aretw0/clearance/internal/presentation/tui"
	"github.com/aretw0/clearance/internal/sanitize"
	"github.com/aretw0/clearance/pkg/domain"
	"github.com/aretw0/clearance/pkg/eligibility"
	"github.com/muesli/termenv"
)

// quitCommand ends the conversation from the prompt.
const quitCommand = "/quit"

// TextHandler renders the conversation for a human at a terminal.
type TextHandler struct {
	Reader    *bufio.Reader
	Writer    io.Writer
	Renderer  func(string) (string, error)
	Profile   termenv.Profile
	Sanitizer *sanitize.Sanitizer

	inputChan chan inputResult
	done      chan struct{}
	stopped   chan struct{}
	startOnce sync.Once
	closeOnce sync.Once
}

type inputResult struct {
	text string
	err  error
}

// TextHandlerOption defines configuration for TextHandler.
type TextHandlerOption func(*TextHandler)

// WithTextRenderer configures the markdown renderer.
func WithTextRenderer(renderer func(string) (string, error)) TextHandlerOption {
	return func(h *TextHandler) {
		h.Renderer = renderer
	}
}

// WithTextProfile sets the color profile used for quick replies.
func WithTextProfile(p termenv.Profile) TextHandlerOption {
	return func(h *TextHandler) {
		h.Profile = p
	}
}

// NewTextHandler creates a handler for standard text IO.
func NewTextHandler(r io.Reader, w io.Writer, opts ...TextHandlerOption) *TextHandler {
	h := &TextHandler{
		Reader:    bufio.NewReader(r),
		Writer:    w,
		Profile:   termenv.Ascii,
		Sanitizer: sanitize.New(sanitize.DefaultMaxInputSize),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// pump reads lines in the background so Input can honor cancellation.
// A line read after the caller gave up is dropped once Close is called.
func (h *TextHandler) initPump() {
	h.startOnce.Do(func() {
		h.inputChan = make(chan inputResult)
		h.stopped = make(chan struct{})
		go func() {
			defer close(h.stopped)
			for {
				text, err := h.Reader.ReadString('\n')
				if text != "" && !h.send(inputResult{text: text}) {
					return
				}
				if err != nil {
					if h.send(inputResult{err: err}) {
						close(h.inputChan)
					}
					return
				}
			}
		}()
	})
}

func (h *TextHandler) send(res inputResult) bool {
	select {
	case h.inputChan <- res:
		return true
	case <-h.done:
		return false
	}
}

// Close releases the background reader. A read already blocked on the
// underlying reader returns on its next line or EOF.
func (h *TextHandler) Close() error {
	h.closeOnce.Do(func() {
		close(h.done)
	})
	return nil
}

func (h *TextHandler) Output(_ context.Context, turn *domain.Turn) error {
	fmt.Fprintln(h.Writer)
	fmt.Fprintln(h.Writer, h.render(turn.Prompt))
	if turn.EligibilityResult != nil {
		fmt.Fprintln(h.Writer, h.render(eligibility.BuildContext(turn.EligibilityResult)))
	}
	if len(turn.QuickReplies) > 0 {
		fmt.Fprint(h.Writer, tui.FormatReplies(h.Profile, turn.QuickReplies))
	}
	return nil
}

func (h *TextHandler) render(markdown string) string {
	if h.Renderer == nil {
		return strings.TrimSpace(markdown)
	}
	out, err := h.Renderer(markdown)
	if err != nil {
		return strings.TrimSpace(markdown)
	}
	return strings.TrimSpace(out)
}

func (h *TextHandler) Input(ctx context.Context, view domain.View) (any, error) {
	switch view.InputType {
	case domain.InputContactForm:
		return h.form(ctx, false)
	case domain.InputLeadForm:
		return h.form(ctx, true)
	}

	for {
		text, err := h.readLine(ctx, "> ")
		if err != nil {
			return nil, err
		}
		clean, err := h.Sanitizer.Answer(text)
		if errors.Is(err, sanitize.ErrSensitiveData) {
			fmt.Fprintln(h.Writer, sanitize.SensitiveDataMessage)
			continue
		}
		if err != nil {
			fmt.Fprintf(h.Writer, "Error: %v. Please try again.\n", err)
			continue
		}
		return tui.ResolveReply(view.QuickReplies, clean), nil
	}
}

type formField struct {
	label string
	dst   *string
}

// form collects a contact form one field at a time. Blank fields stay empty.
func (h *TextHandler) form(ctx context.Context, withName bool) (domain.ContactForm, error) {
	var form domain.ContactForm
	fields := []formField{
		{"Email (optional)", &form.Email},
		{"Phone (optional)", &form.Phone},
	}
	if withName {
		fields = []formField{
			{"Name", &form.Name},
			{"Email", &form.Email},
			{"Phone", &form.Phone},
		}
	}

	for _, f := range fields {
		for {
			text, err := h.readLine(ctx, f.label+": ")
			if err != nil {
				return domain.ContactForm{}, err
			}
			clean, err := h.Sanitizer.Text(text)
			if err != nil {
				fmt.Fprintf(h.Writer, "Error: %v. Please try again.\n", err)
				continue
			}
			*f.dst = clean
			break
		}
	}
	return form, nil
}

func (h *TextHandler) readLine(ctx context.Context, prompt string) (string, error) {
	h.initPump()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
		fmt.Fprint(h.Writer, prompt)
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res, ok := <-h.inputChan:
		if !ok {
			return "", io.EOF
		}
		if res.err != nil {
			return "", res.err
		}
		text := strings.TrimSpace(res.text)
		if text == quitCommand {
			return "", errQuit
		}
		return text, nil
	}
}
