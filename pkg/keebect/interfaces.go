package keebect

import "time"

// DeviceSource lists attached keyboards and opens their event streams.
type DeviceSource interface {
	Enumerate() ([]DiscoveredKeyboard, error)
	Open(path string) (EventStream, error)
}

// EventStream is an open input device. ReadEvent blocks until the next raw event.
type EventStream interface {
	ReadEvent() (RawEvent, error)
	Close() error
}

// LayoutService is the compositor's keyboard layout IPC.
type LayoutService interface {
	KeyboardLayouts() (Layouts, error)
	SwitchLayoutNext() error
}

// HotplugSource delivers USB attach/detach notifications. Next blocks until the
// next notification arrives or the source fails; Close unblocks a pending Next.
type HotplugSource interface {
	Next() (HotplugEvent, error)
	Close() error
}

// Journal is the durable append-only diagnostic record.
type Journal interface {
	Record(component string, err error) error
}

type BindingStore interface {
	Load() ([]Binding, error)
	Save(bindings []Binding) error
}

type Layouts struct {
	Names   []string
	Current uint32
}

type HotplugEvent struct {
	Action   string
	Identity Identity
}

type Clock func() time.Time

// LayoutSwitcher moves the compositor to an absolute layout index.
type LayoutSwitcher interface {
	SwitchTo(target uint32) error
}
