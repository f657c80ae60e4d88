package action

import (
	"context"
	"log/slog"
	"os/exec"

	"github.com/rustyeddy/sentinel/placeholder"
	"github.com/rustyeddy/sentinel/state"
)

// Shell runs Argv (first element is the program; the rest are
// arguments, passed without shell interpretation) with each element
// formatted against the dispatched state. A non-zero exit is logged
// at warning and never propagated (§4.5, §7).
type Shell struct {
	Argv []string

	Logger *slog.Logger
}

func (a *Shell) Execute(ctx context.Context, obj *state.Object, aliases state.AliasTable) error {
	if len(a.Argv) == 0 {
		return nil
	}
	logger := a.Logger
	if logger == nil {
		logger = slog.Default()
	}
	warn := func(w string) { logger.Warn(w) }

	argv := make([]string, len(a.Argv))
	for i, arg := range a.Argv {
		argv[i] = placeholder.Resolve(arg, obj, aliases, warn)
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		logger.Warn("shell action failed", "argv", argv, "error", err, "output", string(out))
	}
	return nil
}
