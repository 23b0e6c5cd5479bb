package niri

import (
	"bufio"
	"fmt"

	"codeberg.org/miketth/keebect/pkg/keebect"
	"github.com/tidwall/gjson"
)

// Socket talks to niri over its IPC socket.
type Socket struct {
	Path string
}

func NewSocket() (*Socket, error) {
	path, err := GetSocketPath()
	if err != nil {
		return nil, err
	}
	return &Socket{Path: path}, nil
}

func (s *Socket) KeyboardLayouts() (keebect.Layouts, error) {
	reply, err := s.makeRequest(keyboardLayoutsRequest)
	if err != nil {
		return keebect.Layouts{}, err
	}

	layouts := reply.Get("KeyboardLayouts")
	if !layouts.Exists() {
		return keebect.Layouts{}, fmt.Errorf("%w: %s", ErrMalformedResponse, reply.Raw)
	}

	return parseLayouts([]byte(layouts.Raw))
}

func (s *Socket) SwitchLayoutNext() error {
	req, err := switchLayoutRequest("Next")
	if err != nil {
		return err
	}

	reply, err := s.makeRequest(req)
	if err != nil {
		return err
	}

	if reply.String() != "Handled" {
		return fmt.Errorf("%w: %s", ErrMalformedResponse, reply.Raw)
	}

	return nil
}

func (s *Socket) makeRequest(request string) (gjson.Result, error) {
	conn, err := connect(s.Path)
	if err != nil {
		return gjson.Result{}, err
	}
	defer conn.Close()

	if _, err := conn.Write([]byte(request + "\n")); err != nil {
		return gjson.Result{}, fmt.Errorf("write to niri socket: %w", err)
	}

	line, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil {
		return gjson.Result{}, fmt.Errorf("read from niri socket: %w", err)
	}

	return unwrapReply(line)
}
