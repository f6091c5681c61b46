package manager

import "errors"

// Manager errors.
var (
	// ErrUnknownCommand indicates the command name is not registered.
	ErrUnknownCommand = errors.New("manager: unknown command")

	// ErrDuplicateCommand indicates a registration conflict. Names are
	// compared case-insensitively.
	ErrDuplicateCommand = errors.New("manager: command already registered")

	// ErrInvalidCommandName indicates a command with an empty name.
	ErrInvalidCommandName = errors.New("manager: invalid command name")

	// ErrCallbacksUnsupported indicates the command does not carry a
	// per-command callback list.
	ErrCallbacksUnsupported = errors.New("manager: command does not support callbacks")

	// ErrIndexOutOfRange indicates a registry or callback accessor was
	// called with an index outside current bounds.
	ErrIndexOutOfRange = errors.New("manager: index out of range")
)
