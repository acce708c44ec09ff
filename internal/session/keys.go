package session

import (
	"strings"

	"xsim/internal/filter"
)

// Action is what a key does on the training screen.
type Action int

const (
	ActionNone Action = iota
	ActionFilter
	ActionReset
	ActionTogglePause
)

type binding struct {
	action Action
	filter filter.Kind
}

var keyMap = map[string]binding{
	"Q":     {ActionFilter, filter.Grayscale},
	"W":     {ActionFilter, filter.Negative},
	"A":     {ActionFilter, filter.OrganicIsolation},
	"S":     {ActionFilter, filter.OrganicStrip},
	"D":     {ActionFilter, filter.Brightness},
	"E":     {ActionFilter, filter.SuperEnhance},
	"R":     {ActionReset, filter.Normal},
	"SPACE": {ActionTogglePause, filter.Normal},
	" ":     {ActionTogglePause, filter.Normal},
}

// KeyAction resolves a key name, case-insensitively.
func KeyAction(key string) (Action, filter.Kind) {
	b, ok := keyMap[strings.ToUpper(key)]
	if !ok {
		return ActionNone, filter.Normal
	}
	return b.action, b.filter
}
