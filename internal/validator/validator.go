// Package validator checks task form input. Checks never fail with an
// error value; they return a Result carrying a message for the user.
package validator

import (
	"strings"
	"time"

	"tasklist/internal/models"
)

const (
	MsgEmptyTitle      = "empty title"
	MsgMissingDate     = "missing date"
	MsgInvalidDate     = "invalid date"
	MsgDateInPast      = "date in past"
	MsgUnknownPriority = "unknown priority"
)

type Result struct {
	OK      bool
	Message string
}

var valid = Result{OK: true}

func fail(msg string) Result {
	return Result{Message: msg}
}

func ValidateTitle(text string) Result {
	if strings.TrimSpace(text) == "" {
		return fail(MsgEmptyTitle)
	}
	return valid
}

// ValidateDate requires a YYYY-MM-DD date not before today. Zero-padded ISO
// dates order lexically, so the past check is a plain string comparison.
func ValidateDate(dateText, today string) Result {
	dateText = strings.TrimSpace(dateText)
	if dateText == "" {
		return fail(MsgMissingDate)
	}
	if _, err := time.Parse(models.DateLayout, dateText); err != nil {
		return fail(MsgInvalidDate)
	}
	if dateText < today {
		return fail(MsgDateInPast)
	}
	return valid
}

// ValidatePriority accepts an empty value, which means the default priority.
func ValidatePriority(text string) Result {
	if strings.TrimSpace(text) == "" {
		return valid
	}
	if _, ok := models.ParsePriority(text); !ok {
		return fail(MsgUnknownPriority)
	}
	return valid
}
