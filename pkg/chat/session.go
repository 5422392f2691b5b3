package chat

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/fatih/color"

	"github.com/codeGROOVE-dev/gymassist/pkg/apperrors"
)

// Shared prompts and replies.
const (
	repeatPrompt = "\n\nEnter 1 - To return to previous menu\nEnter 2 - To exit\n\nPlease enter your choice (1/2): "
	goodbye      = "Thank you for talking to us today. Have a nice day!"
	badChoice    = "Sorry, we couldn't understand your choice."
	internalErr  = "Sorry, we encountered an internal error. Please try again."
	tooMany      = "Sorry, that was too many invalid attempts. Taking you back to the menu."
)

var (
	errInputClosed = errors.New("input closed")
	errGaveUp      = errors.New("attempts exhausted")
)

// Session is one conversation with one member.
type Session struct {
	app     *App
	in      *bufio.Scanner
	out     io.Writer
	logger  *slog.Logger
	id      string
	color   bool
	timeout time.Duration
	tries   int
}

func newSession(app *App, in io.Reader, out io.Writer, opts ...SessionOption) *Session {
	s := &Session{
		app:     app,
		in:      bufio.NewScanner(in),
		out:     out,
		color:   !color.NoColor,
		timeout: app.RequestTimeout,
		tries:   app.MaxAttempts,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.id == "" {
		s.id = newSessionID()
	}
	if s.timeout <= 0 {
		s.timeout = 45 * time.Second
	}
	s.tries = max(s.tries, 1)
	s.logger = app.logger().With("session", s.id)
	return s
}

func (s *Session) paint(text string, attrs ...color.Attribute) string {
	c := color.New(attrs...)
	if s.color {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c.Sprint(text)
}

func (s *Session) say(lines ...string) {
	for _, l := range lines {
		fmt.Fprintln(s.out, l)
	}
}

func (s *Session) header(title string) {
	s.say("", s.paint("** "+title+" **", color.FgCyan, color.Bold))
}

func (s *Session) success(line string) {
	s.say(s.paint(line, color.FgGreen))
}

func (s *Session) warn(line string) {
	s.say(s.paint(line, color.FgRed))
}

// ask prints prompt and returns the next input line, trimmed.
func (s *Session) ask(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fmt.Fprint(s.out, prompt)
	if !s.in.Scan() {
		fmt.Fprintln(s.out)
		if err := s.in.Err(); err != nil {
			return "", fmt.Errorf("reading input: %w", err)
		}
		return "", errInputClosed
	}
	return strings.TrimSpace(s.in.Text()), nil
}

// askUntil re-prompts while check reports a recoverable error, up to the
// attempt budget. Other errors end the loop immediately.
func (s *Session) askUntil(ctx context.Context, prompt string, check func(ctx context.Context, answer string) error) error {
	for range s.tries {
		answer, err := s.ask(ctx, prompt)
		if err != nil {
			return err
		}
		rctx, cancel := s.request(ctx)
		err = check(rctx, answer)
		cancel()
		switch {
		case err == nil:
			return nil
		case apperrors.Recoverable(err):
			s.warn(userText(err))
		default:
			return err
		}
	}
	s.warn(tooMany)
	return errGaveUp
}

// request bounds one component call.
func (s *Session) request(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

// again asks whether to return to the previous menu.
func (s *Session) again(ctx context.Context) (bool, error) {
	choice, err := s.ask(ctx, repeatPrompt)
	if err != nil {
		return false, err
	}
	if choice == "1" {
		return true, nil
	}
	s.say(goodbye)
	return false, nil
}

// report shows a flow's failure. It returns err when the session must end.
func (s *Session) report(err error) error {
	switch {
	case err == nil, errors.Is(err, errGaveUp):
		return nil
	case errors.Is(err, errInputClosed), errors.Is(err, context.Canceled):
		return err
	case apperrors.Recoverable(err):
		s.warn(userText(err))
	default:
		s.logger.Warn("request failed", "error", err)
		s.warn(internalErr)
	}
	return nil
}

// userText turns a recoverable error into the sentence shown to the member.
func userText(err error) string {
	msg := apperrors.Message(err)
	if r, _ := utf8.DecodeRuneInString(msg); unicode.IsUpper(r) {
		return msg
	}
	if !strings.HasSuffix(msg, ".") && !strings.HasSuffix(msg, "!") {
		msg += ". Please try again"
	}
	return "Sorry, " + msg
}
