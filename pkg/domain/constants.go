package domain

import "strings"

// Command is an operator command routed by the session.
type Command string

const (
	CommandComplete          Command = "complete"
	CommandSkip              Command = "skip"
	CommandFailed            Command = "failed"
	CommandUndo              Command = "undo"
	CommandNextPlate         Command = "next-plate"
	CommandNextPlateConfirm  Command = "confirm"
	CommandNextPlateOverride Command = "override"
	CommandAbort             Command = "abort"
)

// Commands lists the canonical command names.
var Commands = []Command{
	CommandComplete,
	CommandSkip,
	CommandFailed,
	CommandUndo,
	CommandNextPlate,
	CommandNextPlateConfirm,
	CommandNextPlateOverride,
	CommandAbort,
}

var commandAliases = map[string]Command{
	"next":                CommandComplete,
	"done":                CommandComplete,
	"fail":                CommandFailed,
	"nextplate":           CommandNextPlate,
	"next_plate":          CommandNextPlate,
	"next-plate-confirm":  CommandNextPlateConfirm,
	"next-plate-override": CommandNextPlateOverride,
	"reset":               CommandAbort,
}

// ParseCommand normalizes an operator command name, resolving aliases.
// The boolean is false when the name is unknown.
func ParseCommand(name string) (Command, bool) {
	clean := strings.ToLower(strings.TrimSpace(name))
	for _, c := range Commands {
		if string(c) == clean {
			return c, true
		}
	}
	c, ok := commandAliases[clean]
	return c, ok
}
