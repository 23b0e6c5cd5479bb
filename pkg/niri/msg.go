package niri

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"codeberg.org/miketth/keebect/pkg/keebect"
)

// Msg drives niri by spawning `niri msg`.
type Msg struct {
	Path string
}

func (m Msg) runCommand(args ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer

	path := m.Path
	if path == "" {
		path = "niri"
	}

	cmd := exec.Command(path, append([]string{"msg"}, args...)...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		errStr := strings.TrimSpace(stderr.String())
		if errors.Is(err, exec.ErrNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrNotRunning, err)
		}
		if mapped := mapError(errStr); mapped != nil {
			return nil, mapped
		}
		return nil, fmt.Errorf("niri msg: %w, stderr: %s", err, errStr)
	}

	return stdout.Bytes(), nil
}

func (m Msg) KeyboardLayouts() (keebect.Layouts, error) {
	out, err := m.runCommand("--json", "keyboard-layouts")
	if err != nil {
		return keebect.Layouts{}, err
	}

	return parseLayouts(bytes.TrimSpace(out))
}

func (m Msg) SwitchLayoutNext() error {
	_, err := m.runCommand("action", "switch-layout", "next")
	return err
}
