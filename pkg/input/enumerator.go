package input

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"codeberg.org/miketth/keebect/pkg/keebect"
	"go.uber.org/zap"
)

const (
	DefaultByIDDir = "/dev/input/by-id"

	keyboardSuffix = "-event-kbd"
)

type deviceInfo struct {
	name     string
	identity keebect.Identity
}

// Enumerator lists keyboards under /dev/input/by-id.
type Enumerator struct {
	dir   string
	probe func(path string) (deviceInfo, error)
	log   *zap.SugaredLogger
}

func NewEnumerator(dir string, log *zap.SugaredLogger) *Enumerator {
	if dir == "" {
		dir = DefaultByIDDir
	}

	return &Enumerator{
		dir:   dir,
		probe: probeEvdev,
		log:   log,
	}
}

// IsKeyboardName is the name heuristic: a keyboard, but not a wireless receiver.
// It both over- and under-matches.
func IsKeyboardName(name string) bool {
	return strings.Contains(name, "Keyboard") && !strings.Contains(name, "Receiver")
}

// isKeyboardEntry accepts every -event-kbd link, including non-zero -ifNN
// interfaces: some composite keyboards only expose their keys there.
func isKeyboardEntry(entry string) bool {
	return strings.HasSuffix(entry, keyboardSuffix)
}

// Enumerate returns the keyboards currently attached. Devices that cannot be
// opened are skipped. Keyboards are deduplicated by display name, so two
// distinct devices reporting the same name collapse into one entry.
//
// Only an unreadable by-id directory is an error.
func (e *Enumerator) Enumerate() ([]keebect.DiscoveredKeyboard, error) {
	entries, err := os.ReadDir(e.dir)
	if err != nil {
		return nil, fmt.Errorf("cannot access %s, are you in the 'input' group?: %w", e.dir, err)
	}

	byName := make(map[string]keebect.DiscoveredKeyboard)
	for _, entry := range entries {
		if !isKeyboardEntry(entry.Name()) {
			continue
		}

		path := filepath.Join(e.dir, entry.Name())
		info, err := e.probe(path)
		if err != nil {
			e.log.Debugw("skipping input device", "path", path, "error", err)
			continue
		}

		if !IsKeyboardName(info.name) {
			continue
		}

		resolved, err := filepath.EvalSymlinks(path)
		if err != nil {
			e.log.Debugw("skipping input device", "path", path, "error", err)
			continue
		}

		byName[info.name] = keebect.DiscoveredKeyboard{
			Identity: info.identity,
			Name:     info.name,
			Path:     resolved,
		}
	}

	out := make([]keebect.DiscoveredKeyboard, 0, len(byName))
	for _, kb := range byName {
		out = append(out, kb)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})

	return out, nil
}

func (e *Enumerator) Open(path string) (keebect.EventStream, error) {
	return OpenStream(path)
}
