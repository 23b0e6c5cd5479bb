package keebect

import "errors"

var (
	// ErrEnumeration means the device directory itself is unreadable. Fatal to the daemon.
	ErrEnumeration = errors.New("keyboard enumeration failed")
	// ErrDeviceOpen is per device; the device is retried on the next reconciliation.
	ErrDeviceOpen = errors.New("open keyboard device")
	// ErrHotplug stops the hotplug watcher only.
	ErrHotplug = errors.New("hotplug notifications failed")
	// ErrSwitch is logged; debounce state is not advanced.
	ErrSwitch = errors.New("switch layout")

	ErrNoLayouts       = errors.New("compositor reports no keyboard layouts")
	ErrIndexOutOfRange = errors.New("layout index out of range")
	ErrNoBindings      = errors.New("no keyboards configured, run setup first")
)

var ErrNoKeyboardsPresent = errors.New("no configured keyboard is attached and hotplug is unavailable")
