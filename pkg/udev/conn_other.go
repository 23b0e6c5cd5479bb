//go:build !linux

package udev

import (
	"errors"

	"codeberg.org/miketth/keebect/pkg/keebect"
	"go.uber.org/zap"
)

var ErrUnsupported = errors.New("hotplug notifications are not supported")

type Group uint32

const (
	KernelGroup Group = 1
	UdevGroup   Group = 2
)

type Conn struct{}

func Dial(Group, *zap.SugaredLogger) (*Conn, error) {
	return nil, ErrUnsupported
}

func (c *Conn) Next() (keebect.HotplugEvent, error) {
	return keebect.HotplugEvent{}, ErrUnsupported
}

func (c *Conn) Close() error {
	return nil
}
