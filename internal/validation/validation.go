// Package validation implements Kaban's input validators (§4.8): title,
// description length, agent name, and label shape. Keeping these in one
// package means every caller (today the task service and the store's
// assign path) rejects the same inputs the same way.
package validation

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kabanhq/kaban/internal/kerrors"
)

const (
	MaxTitleLen       = 200
	MaxDescriptionLen = 5000
	MaxLabelLen       = 32
	MaxAgentNameLen   = 64
)

var agentRe = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// Title validates a task title: non-empty, <=200 characters, each
// printable or a tab, no leading or trailing whitespace.
func Title(title string) error {
	if title == "" {
		return kerrors.New(kerrors.Validation, "title must not be empty")
	}
	if utf8.RuneCountInString(title) > MaxTitleLen {
		return kerrors.Newf(kerrors.Validation, "title must be %d characters or fewer", MaxTitleLen)
	}
	if strings.TrimSpace(title) != title {
		return kerrors.New(kerrors.Validation, "title must not have leading or trailing whitespace")
	}
	for _, r := range title {
		if !unicode.IsPrint(r) && r != '\t' {
			return kerrors.New(kerrors.Validation, "title must contain only printable characters")
		}
	}
	return nil
}

// Description validates an optional task description: at most 5000
// characters. Empty is always valid.
func Description(desc string) error {
	if utf8.RuneCountInString(desc) > MaxDescriptionLen {
		return kerrors.Newf(kerrors.Validation, "description must be %d characters or fewer", MaxDescriptionLen)
	}
	return nil
}

// AgentName validates an actor/assignee name: alnum plus -_, <=64 chars.
func AgentName(name string) error {
	if !agentRe.MatchString(name) {
		return kerrors.Newf(kerrors.Validation, "agent name %q must match ^[A-Za-z0-9_-]{1,64}$", name)
	}
	return nil
}

// Labels validates a label set: each label <=32 characters.
func Labels(labels []string) error {
	for _, l := range labels {
		if l == "" {
			return kerrors.New(kerrors.Validation, "labels must not be empty strings")
		}
		if utf8.RuneCountInString(l) > MaxLabelLen {
			return kerrors.Newf(kerrors.Validation, "label %q must be %d characters or fewer", l, MaxLabelLen)
		}
	}
	return nil
}
