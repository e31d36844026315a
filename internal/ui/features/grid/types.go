package grid

import (
	"log/slog"
	"time"

	"github.com/leapstack-labs/admingrid/internal/grids"
	"github.com/leapstack-labs/admingrid/internal/ui/notifier"
	"github.com/leapstack-labs/admingrid/internal/ui/session"
)

// Deps are what the grid handlers need.
type Deps struct {
	Registry *grids.Registry
	Sessions *session.Store
	Notifier *notifier.Notifier
	Logger   *slog.Logger

	MultiSort      bool
	SearchDebounce time.Duration
	IsDev          bool
}

const toastError = "error"
