// Package command classifies incoming message text into bot commands.
package command

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies which command (or plain text) a message carries.
type Kind int

const (
	// KindText is any message that is not a recognized command.
	KindText Kind = iota
	KindStart
	KindContact
	KindSeeQuestions
	KindSeeAnswers
	KindAnswer
	// KindAnswerShortcut is the /answer_<id> form that carries the
	// question id inline.
	KindAnswerShortcut
)

// Command is the result of parsing one message.
// For KindAnswerShortcut, ID holds the parsed question id and Err is
// non-nil when the suffix after /answer_ is not a number.
type Command struct {
	Kind Kind
	ID   int64
	Err  error
}

const answerShortcutPrefix = "/answer_"

// Parse classifies a message. Exact command matches win; a /answer_
// prefix is treated as the shortcut form even when the suffix is
// malformed, so callers can report the bad id instead of treating the
// message as plain text.
func Parse(text string) Command {
	switch text {
	case "/start":
		return Command{Kind: KindStart}
	case "/contact":
		return Command{Kind: KindContact}
	case "/see_questions":
		return Command{Kind: KindSeeQuestions}
	case "/see_answers":
		return Command{Kind: KindSeeAnswers}
	case "/answer":
		return Command{Kind: KindAnswer}
	}
	if strings.HasPrefix(text, answerShortcutPrefix) {
		id, err := parseID(strings.TrimPrefix(text, answerShortcutPrefix))
		return Command{Kind: KindAnswerShortcut, ID: id, Err: err}
	}
	return Command{Kind: KindText}
}

// ParseID extracts a question id from free-form input: either a bare
// number ("15") or the shortcut form ("/answer_15").
func ParseID(text string) (int64, error) {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, answerShortcutPrefix) {
		text = strings.TrimPrefix(text, answerShortcutPrefix)
	}
	return parseID(text)
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid question id %q", raw)
	}
	return id, nil
}
