// Package response reads the replies of the package manager service: the
// HTML console stream of detailed commands, the JSON replies of simple
// commands and list queries, and package downloads.
package response

import (
	"bufio"
	"errors"
	"io"
	"net/http"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"

	"github.com/granite-tools/packmgr/internal/errx"
	"github.com/granite-tools/packmgr/pkg/api"
)

type phase int

const (
	phaseAwaitingStart phase = iota
	phaseStarted
	phaseFailing
)

// Decode reads an HTML console response and returns its terminal outcome.
// Listener events are emitted while reading; a nil listener discards them.
//
// A 400 status means the service does not know the command, and any other
// non-2xx status is returned as api.ErrUnexpectedStatus before the body is
// read. A stream that ends before a success or failure terminal is
// api.ErrMalformedResponse.
func Decode(statusCode int, statusText string, body io.Reader, charset string, l Listener) (*api.DetailedResponse, error) {
	if err := CheckStatus(statusCode, statusText); err != nil {
		return nil, err
	}
	r, err := decodeCharset(body, charset)
	if err != nil {
		return nil, err
	}
	if l == nil {
		l = NopListener{}
	}

	d := &decoder{
		lines:          newLineReader(r),
		listener:       l,
		progressErrors: []string{},
		stackTrace:     []string{},
	}
	return d.run()
}

// CheckStatus maps a non-2xx status to an error.
func CheckStatus(statusCode int, statusText string) error {
	if statusCode == http.StatusBadRequest {
		return api.ErrUnsupportedCommand
	}
	if statusCode/100 != 2 {
		return errx.With(api.ErrUnexpectedStatus, ": %d %s", statusCode, statusText)
	}
	return nil
}

func decodeCharset(body io.Reader, charset string) (io.Reader, error) {
	if charset == "" {
		return body, nil
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, errx.With(api.ErrUnsupportedCharset, " %q: %w", charset, err)
	}
	return transform.NewReader(body, enc.NewDecoder()), nil
}

type decoder struct {
	lines          *lineReader
	listener       Listener
	phase          phase
	progressErrors []string
	stackTrace     []string
}

func (d *decoder) run() (*api.DetailedResponse, error) {
	for {
		line, ok, err := d.lines.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errx.With(api.ErrMalformedResponse, ": stream ended without a result")
		}

		var resp *api.DetailedResponse
		switch d.phase {
		case phaseFailing:
			resp = d.failing(line)
		default:
			if d.phase == phaseAwaitingStart {
				d.awaitStart(line)
			}
			if d.phase == phaseStarted {
				resp, err = d.started(line)
			}
		}
		if err != nil {
			return nil, err
		}
		if resp != nil {
			return resp, nil
		}
	}
}

func (d *decoder) awaitStart(line string) {
	if title, ok := matchTitle(line); ok {
		d.listener.OnStart(title)
		d.phase = phaseStarted
	}
}

func (d *decoder) started(line string) (*api.DetailedResponse, error) {
	if message, duration, ok := matchSuccess(line); ok {
		return &api.DetailedResponse{
			Success:        true,
			Message:        message,
			Duration:       duration,
			ProgressErrors: d.progressErrors,
			StackTrace:     []string{},
		}, nil
	}

	for _, log := range matchLogs(line) {
		d.listener.OnLog(log)
	}

	if msg, ok := matchMessage(line); ok {
		if err := d.message(msg); err != nil {
			return nil, err
		}
	}

	if isFailureBegin(line) {
		d.phase = phaseFailing
	}
	return nil, nil
}

// message folds continuation lines into an unterminated message and reports
// it to the listener.
func (d *decoder) message(msg progressMessage) error {
	remainder := msg.remainder
	for !strings.HasSuffix(remainder, messageEnd) {
		line, ok, err := d.lines.next()
		if err != nil {
			return err
		}
		if !ok {
			return errx.With(api.ErrMalformedResponse, ": unterminated message for %q", strings.TrimSpace(msg.path))
		}
		remainder += "\r\n" + line
	}
	remainder = remainder[:strings.LastIndex(remainder, messageEnd)]

	switch {
	case msg.action == "E":
		d.progressErrors = append(d.progressErrors, msg.path+" "+remainder)
		d.listener.OnError(strings.TrimSpace(msg.path), stripEnclosing(remainder))
	case len(msg.action) == 1:
		d.listener.OnProgress(msg.action, strings.TrimSpace(msg.path))
	default:
		d.listener.OnMessage(msg.action)
	}
	return nil
}

// stripEnclosing drops the first and last byte, normally the parentheses
// around an error description.
func stripEnclosing(s string) string {
	if len(s) < 2 {
		return ""
	}
	return s[1 : len(s)-1]
}

func (d *decoder) failing(line string) *api.DetailedResponse {
	if !isFailureEnd(line) {
		d.stackTrace = append(d.stackTrace, strings.TrimSpace(line))
		return nil
	}
	message := ""
	stack := d.stackTrace
	if len(stack) > 0 {
		message, stack = stack[0], stack[1:]
	}
	return &api.DetailedResponse{
		Success:        false,
		Message:        message,
		Duration:       -1,
		ProgressErrors: d.progressErrors,
		StackTrace:     stack,
	}
}

// lineReader yields lines without their LF or CRLF terminator. A final line
// without a terminator is still returned.
type lineReader struct {
	r *bufio.Reader
}

func newLineReader(r io.Reader) *lineReader {
	return &lineReader{r: bufio.NewReader(r)}
}

func (lr *lineReader) next() (string, bool, error) {
	line, err := lr.r.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", false, errx.Wrap(api.ErrReadResponse, err)
	}
	if line == "" && err != nil {
		return "", false, nil
	}
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	return line, true, nil
}
