package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/helmcode/lossnote/pkg/model"
)

var errUsage = errors.New("usage")

// line is one submitted input line split into a verb and its arguments.
// Rest keeps the text after the verb untouched, for free-form arguments
// such as stock names with spaces.
type line struct {
	Verb string
	Args []string
	Rest string
}

func parseLine(s string) line {
	s = strings.TrimSpace(s)
	verb, rest, _ := strings.Cut(s, " ")
	return line{
		Verb: strings.ToLower(verb),
		Args: strings.Fields(rest),
		Rest: strings.TrimSpace(rest),
	}
}

// pick resolves a 1-based position shown on screen to a 0-based index.
func pick(arg string, n int) (int, error) {
	i, err := strconv.Atoi(arg)
	if err != nil || i < 1 || i > n {
		return 0, fmt.Errorf("%q is not a number between 1 and %d", arg, n)
	}
	return i - 1, nil
}

// pickOption resolves a numbered catalog entry.
func pickOption(arg string, options []string) (string, error) {
	i, err := pick(arg, len(options))
	if err != nil {
		return "", err
	}
	return options[i], nil
}

// turnByPrefix finds the transcript turn whose ID starts with prefix.
// Ambiguous prefixes fail.
func turnByPrefix(turns []model.ChatTurn, prefix string) (string, error) {
	if prefix == "" {
		return "", fmt.Errorf("turn id: %w", errUsage)
	}
	var found string
	for _, t := range turns {
		if !strings.HasPrefix(t.ID, prefix) {
			continue
		}
		if found != "" {
			return "", fmt.Errorf("turn id %q is ambiguous", prefix)
		}
		found = t.ID
	}
	if found == "" {
		return "", fmt.Errorf("no turn with id %q", prefix)
	}
	return found, nil
}

// numbered renders a catalog as "1) a  2) b ...".
func numbered(options []string) string {
	parts := make([]string, len(options))
	for i, o := range options {
		parts[i] = fmt.Sprintf("%d) %s", i+1, o)
	}
	return strings.Join(parts, "  ")
}
