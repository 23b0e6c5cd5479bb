package niri

import (
	"errors"
	"fmt"
	"net"
	"os"
	"regexp"
	"time"
)

var (
	ErrNotRunning        = errors.New("niri might not be running")
	ErrMalformedResponse = errors.New("malformed niri response")
)

const ipcTimeout = 2 * time.Second

// first match wins
var errorMapper = []struct {
	re  *regexp.Regexp
	err error
}{
	{regexp.MustCompile(`NIRI_SOCKET.*not set`), ErrNotRunning},
	{regexp.MustCompile(`error connecting to (the )?niri socket`), ErrNotRunning},
}

func mapError(output string) error {
	for _, m := range errorMapper {
		if m.re.MatchString(output) {
			return fmt.Errorf("%w: %s", m.err, output)
		}
	}
	return nil
}

func GetSocketPath() (string, error) {
	path := os.Getenv("NIRI_SOCKET")
	if path == "" {
		return "", fmt.Errorf("NIRI_SOCKET is not set, %w", ErrNotRunning)
	}
	return path, nil
}

func connect(path string) (net.Conn, error) {
	conn, err := net.DialTimeout("unix", path, ipcTimeout)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w: %w", path, ErrNotRunning, err)
	}

	if err := conn.SetDeadline(time.Now().Add(ipcTimeout)); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set deadline: %w", err)
	}

	return conn, nil
}
