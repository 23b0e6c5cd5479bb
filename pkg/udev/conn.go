//go:build linux

package udev

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"codeberg.org/miketth/keebect/pkg/keebect"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

var ErrUnsupported = errors.New("hotplug notifications are not supported")

// Group is a NETLINK_KOBJECT_UEVENT multicast group.
type Group uint32

const (
	// KernelGroup gets events straight from the kernel, before udev rules ran.
	KernelGroup Group = 1
	// UdevGroup gets events after udev processed them, so /dev/input/by-id
	// links already exist.
	UdevGroup Group = 2
)

const (
	readBufferSize = 64 * 1024
	recvBufferSize = 1 << 20
)

// Conn receives USB attach/detach notifications.
type Conn struct {
	file      *os.File
	buf       []byte
	closeOnce sync.Once
	closeErr  error
	log       *zap.SugaredLogger
}

// Dial subscribes to future uevents of group. It does not replay devices that
// are already attached. ErrUnsupported is returned when the kernel or sandbox
// does not allow uevent sockets.
func Dial(group Group, log *zap.SugaredLogger) (*Conn, error) {
	fd, err := unix.Socket(unix.AF_NETLINK, unix.SOCK_RAW|unix.SOCK_CLOEXEC|unix.SOCK_NONBLOCK, unix.NETLINK_KOBJECT_UEVENT)
	if err != nil {
		if unsupported(err) {
			return nil, fmt.Errorf("%w: %w", ErrUnsupported, err)
		}
		return nil, fmt.Errorf("create netlink socket: %w", err)
	}

	err = unix.Bind(fd, &unix.SockaddrNetlink{Family: unix.AF_NETLINK, Groups: uint32(group)})
	if err != nil {
		_ = unix.Close(fd)
		if unsupported(err) {
			return nil, fmt.Errorf("%w: %w", ErrUnsupported, err)
		}
		return nil, fmt.Errorf("bind netlink socket: %w", err)
	}

	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_RCVBUF, recvBufferSize); err != nil {
		log.Debugw("could not grow uevent receive buffer", "error", err)
	}

	// non-blocking fd, so os.File uses the poller and Close unblocks Read
	return &Conn{
		file: os.NewFile(uintptr(fd), "uevent"),
		buf:  make([]byte, readBufferSize),
		log:  log,
	}, nil
}

func unsupported(err error) bool {
	return errors.Is(err, unix.EPROTONOSUPPORT) ||
		errors.Is(err, unix.EAFNOSUPPORT) ||
		errors.Is(err, unix.EPERM) ||
		errors.Is(err, unix.EACCES)
}

// Next blocks until a USB device is attached or detached.
func (c *Conn) Next() (keebect.HotplugEvent, error) {
	for {
		n, err := c.file.Read(c.buf)
		if errors.Is(err, unix.ENOBUFS) {
			c.log.Warn("uevent receive buffer overflowed, some hotplug events were lost")
			continue
		}
		if err != nil {
			return keebect.HotplugEvent{}, fmt.Errorf("read uevent: %w", err)
		}

		ev, err := ParseUEvent(c.buf[:n])
		if err != nil {
			c.log.Debugw("skipping uevent", "error", err)
			continue
		}

		if hp, ok := ev.USBDevice(); ok {
			return hp, nil
		}
	}
}

func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.file.Close()
	})
	return c.closeErr
}
