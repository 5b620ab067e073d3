//go:build !darwin

package functions

// AppleScript is only available on macOS.
func registerPlatformFunctions(d *Dispatcher) {}
