package udev

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"codeberg.org/miketth/keebect/pkg/keebect"
)

var ErrMalformed = errors.New("malformed uevent")

const (
	libudevMagic     = 0xfeedcafe
	libudevHeaderLen = 40
)

var libudevPrefix = []byte("libudev\x00")

// UEvent is one kernel or udev device notification.
type UEvent struct {
	Action  string
	DevPath string
	Env     map[string]string
}

// ParseUEvent accepts both the kernel format ("action@devpath" followed by
// KEY=VALUE fields) and the libudev framed format sent on the udev group.
func ParseUEvent(msg []byte) (UEvent, error) {
	if bytes.HasPrefix(msg, libudevPrefix) {
		return parseLibudev(msg)
	}
	return parseKernel(msg)
}

func parseKernel(msg []byte) (UEvent, error) {
	fields := bytes.Split(msg, []byte{0})
	action, devpath, ok := strings.Cut(string(fields[0]), "@")
	if !ok {
		return UEvent{}, fmt.Errorf("%w: no action header", ErrMalformed)
	}

	ev := UEvent{
		Action:  action,
		DevPath: devpath,
		Env:     parseEnv(fields[1:]),
	}
	if a := ev.Env["ACTION"]; a != "" {
		ev.Action = a
	}
	return ev, nil
}

func parseLibudev(msg []byte) (UEvent, error) {
	if len(msg) < libudevHeaderLen {
		return UEvent{}, fmt.Errorf("%w: short libudev header", ErrMalformed)
	}
	if binary.BigEndian.Uint32(msg[8:12]) != libudevMagic {
		return UEvent{}, fmt.Errorf("%w: bad libudev magic", ErrMalformed)
	}

	off := binary.NativeEndian.Uint32(msg[16:20])
	length := binary.NativeEndian.Uint32(msg[20:24])
	end := uint64(off) + uint64(length)
	if off < libudevHeaderLen || end > uint64(len(msg)) {
		return UEvent{}, fmt.Errorf("%w: properties out of bounds", ErrMalformed)
	}

	env := parseEnv(bytes.Split(msg[off:end], []byte{0}))
	return UEvent{
		Action:  env["ACTION"],
		DevPath: env["DEVPATH"],
		Env:     env,
	}, nil
}

func parseEnv(fields [][]byte) map[string]string {
	env := make(map[string]string, len(fields))
	for _, f := range fields {
		k, v, ok := strings.Cut(string(f), "=")
		if !ok {
			continue
		}
		env[k] = v
	}
	return env
}

// USBDevice extracts the vendor/product of a whole-USB-device attach or detach.
// Interface-level and other subsystem events report false.
//
// udevd broadcasts a device's add before its input children are processed, so
// the by-id links may not exist yet. The later bind is held back until they do,
// which makes it the reliable attach signal; add is kept as an early hint.
func (e UEvent) USBDevice() (keebect.HotplugEvent, bool) {
	if e.Env["SUBSYSTEM"] != "usb" || e.Env["DEVTYPE"] != "usb_device" {
		return keebect.HotplugEvent{}, false
	}
	switch e.Action {
	case "add", "bind", "remove":
	default:
		return keebect.HotplugEvent{}, false
	}

	id, ok := productIdentity(e.Env["PRODUCT"])
	if !ok {
		id, ok = udevIdentity(e.Env["ID_VENDOR_ID"], e.Env["ID_MODEL_ID"])
	}
	if !ok {
		return keebect.HotplugEvent{}, false
	}

	return keebect.HotplugEvent{Action: e.Action, Identity: id}, true
}

// PRODUCT is "vendor/product/bcdDevice" in unpadded hex, e.g. "46d/c52b/1201".
func productIdentity(product string) (keebect.Identity, bool) {
	parts := strings.Split(product, "/")
	if len(parts) < 2 {
		return keebect.Identity{}, false
	}

	v, err := strconv.ParseUint(parts[0], 16, 16)
	if err != nil {
		return keebect.Identity{}, false
	}
	p, err := strconv.ParseUint(parts[1], 16, 16)
	if err != nil {
		return keebect.Identity{}, false
	}

	return keebect.Identity{Vendor: uint16(v), Product: uint16(p)}, true
}

func udevIdentity(vendor, model string) (keebect.Identity, bool) {
	if vendor == "" || model == "" {
		return keebect.Identity{}, false
	}
	id, err := keebect.ParseIdentity(vendor, model)
	if err != nil {
		return keebect.Identity{}, false
	}
	return id, true
}
