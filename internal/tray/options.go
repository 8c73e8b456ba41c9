package tray

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/tnunamak/copilotmeter/internal/refresh"
)

// ErrUnavailable is returned by Run in builds without the tray tag.
var ErrUnavailable = errors.New("tray mode not available in this build; rebuild with: go build -tags tray ./cmd/copilotmeter")

// Options configures the tray icon.
type Options struct {
	Refresher *refresh.Refresher
	// Interval between refreshes; 0 disables periodic refresh.
	Interval time.Duration
	Version  string
	Logger   *zap.Logger
	// Notify enables desktop notifications on threshold crossings.
	Notify bool
}
