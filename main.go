package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"codeberg.org/miketth/keebect/pkg/bindingstore/json"
	"codeberg.org/miketth/keebect/pkg/bindingstore/toml"
	"codeberg.org/miketth/keebect/pkg/keebect"
	"codeberg.org/miketth/keebect/pkg/niri"
	"codeberg.org/miketth/keebect/pkg/xkblayouts"
	"github.com/adrg/xdg"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	ipcAuto   = "auto"
	ipcSocket = "socket"
	ipcMsg    = "msg"
)

var (
	debug        bool
	configPath   string
	journalPath  string
	ipcMode      string
	niriPath     string
	evdevXMLPath string
)

var rootCmd = &cobra.Command{
	Use:           "keebect",
	Short:         "Per-keyboard layout switcher for niri",
	Long:          `keebect switches the niri keyboard layout to the one bound to whichever keyboard you type on.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVar(&debug, "debug", false, "enable debug logging")
	flags.StringVar(&configPath, "config", "", "path to the keyboard bindings (default $XDG_CONFIG_HOME/keebect/config.toml)")
	flags.StringVar(&journalPath, "journal", "", "path to the error journal (default $XDG_STATE_HOME/keebect/journal.db)")
	flags.StringVar(&ipcMode, "ipc", ipcAuto, "how to talk to niri: auto, socket or msg")
	flags.StringVar(&niriPath, "niri", "niri", "niri binary used by --ipc msg")
	flags.StringVar(&evdevXMLPath, "evdev-xml-path", xkblayouts.DefaultPath, "path to evdev.xml")
}

func main() {
	err := run()
	if err != nil {
		log.Fatalf("error: %+v", err)
	}
}

func run() error {
	ctx := context.Background()
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return rootCmd.ExecuteContext(ctx)
}

func newLogger(debug bool) (*zap.SugaredLogger, error) {
	loggerConfig := zap.NewDevelopmentConfig()

	loggerConfig.OutputPaths = []string{"stdout"}
	loggerConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if !debug {
		loggerConfig.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	logger, err := loggerConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	return logger.Sugar(), nil
}

func getConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}

	path, err := xdg.ConfigFile("keebect/config.toml")
	if err != nil {
		return "", fmt.Errorf("resolve config path: %w", err)
	}
	return path, nil
}

func getJournalPath() (string, error) {
	if journalPath != "" {
		if err := os.MkdirAll(filepath.Dir(journalPath), 0755); err != nil {
			return "", fmt.Errorf("create journal dir: %w", err)
		}
		return journalPath, nil
	}

	path, err := xdg.StateFile("keebect/journal.db")
	if err != nil {
		return "", fmt.Errorf("resolve journal path: %w", err)
	}
	return path, nil
}

// openBindingStore picks the store format from the file extension; TOML unless .json.
func openBindingStore(path string) keebect.BindingStore {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return json.NewBindingStore(path)
	}
	return toml.NewBindingStore(path)
}

func newLayoutService(mode string) (keebect.LayoutService, error) {
	switch mode {
	case ipcAuto:
		if os.Getenv("NIRI_SOCKET") == "" {
			return niri.Msg{Path: niriPath}, nil
		}
		return newSocket()
	case ipcSocket:
		return newSocket()
	case ipcMsg:
		return niri.Msg{Path: niriPath}, nil
	default:
		return nil, fmt.Errorf("unknown ipc mode %q, want %s, %s or %s", mode, ipcAuto, ipcSocket, ipcMsg)
	}
}

func newSocket() (keebect.LayoutService, error) {
	socket, err := niri.NewSocket()
	if err != nil {
		return nil, fmt.Errorf("connect niri socket: %w", err)
	}
	return socket, nil
}

func loadRegistry(log *zap.SugaredLogger) *xkblayouts.Registry {
	registry, err := xkblayouts.ParseLayouts(evdevXMLPath)
	if err != nil {
		log.Debugw("layout codes unavailable", "path", evdevXMLPath, "error", err)
		return nil
	}
	return registry
}
