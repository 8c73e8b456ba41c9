//go:build !tray

package tray

// Run reports that this binary was built without tray support.
func Run(Options) error {
	return ErrUnavailable
}
