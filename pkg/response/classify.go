package response

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	titlePrefix   = "<body>"
	successPrefix = "</div>"
	spanPrefix    = "<span"
	logBreak      = "<br>"

	// messageEnd terminates a progress message, possibly several lines on.
	messageEnd = "</span><br>"

	failureBegin = `<span class="error">Error during processing.</span><br><code><pre>`
	failureEnd   = "</pre>"
)

var (
	titlePattern   = regexp.MustCompile(`^<body><h2>([^<]*)</h2>`)
	successPattern = regexp.MustCompile(`^</div><br>(.*) in (\d+)ms\.<br>`)
	logPattern     = regexp.MustCompile(`^([^<]*<br>)+`)
	messagePattern = regexp.MustCompile(`^<span class="([^"]*)"><b>([^<]*)</b>&nbsp;([^<(]*)(.*)$`)
)

// progressMessage is a matched message line before continuation lines are
// folded in.
type progressMessage struct {
	action    string
	path      string
	remainder string
}

func matchTitle(line string) (string, bool) {
	if !strings.HasPrefix(line, titlePrefix) {
		return "", false
	}
	m := titlePattern.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// matchSuccess returns the message and duration of a success line. The
// duration is -1 when the digits overflow.
func matchSuccess(line string) (string, int64, bool) {
	if !strings.HasPrefix(line, successPrefix) {
		return "", 0, false
	}
	m := successPattern.FindStringSubmatch(line)
	if m == nil {
		return "", 0, false
	}
	duration, err := strconv.ParseInt(m[2], 10, 64)
	if err != nil {
		duration = -1
	}
	return m[1], duration, true
}

// matchLogs returns the non-empty log statements of a log line. The group
// of a repeated match holds only its last repetition, so a line with several
// statements reports the last one.
func matchLogs(line string) []string {
	if strings.HasPrefix(line, spanPrefix) {
		return nil
	}
	m := logPattern.FindStringSubmatch(line)
	if m == nil {
		return nil
	}
	var logs []string
	for _, piece := range strings.Split(m[1], logBreak) {
		if piece != "" {
			logs = append(logs, piece)
		}
	}
	return logs
}

func matchMessage(line string) (progressMessage, bool) {
	m := messagePattern.FindStringSubmatch(line)
	if m == nil {
		return progressMessage{}, false
	}
	return progressMessage{action: m[1], path: m[3], remainder: m[4]}, true
}

func isFailureBegin(line string) bool {
	return strings.HasSuffix(line, failureBegin)
}

func isFailureEnd(line string) bool {
	return strings.HasPrefix(line, failureEnd)
}
