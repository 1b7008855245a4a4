package media

import (
	_ "embed"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/pelletier/go-toml/v2"
)

//go:embed openers.toml
var openersTOML []byte

// OpenerDefinition describes how a program is invoked for each kind of link.
type OpenerDefinition struct {
	Description string      `toml:"description"`
	Platforms   []string    `toml:"platforms"`
	Browser     *KindConfig `toml:"browser,omitempty"`
	Image       *KindConfig `toml:"image,omitempty"`
}

// KindConfig holds the arguments placed before the URL.
type KindConfig struct {
	Args        []string `toml:"args,omitempty"`
	ArgsDarwin  []string `toml:"args_darwin,omitempty"`
	ArgsLinux   []string `toml:"args_linux,omitempty"`
	ArgsWindows []string `toml:"args_windows,omitempty"`
}

type openersFile struct {
	Openers map[string]OpenerDefinition `toml:"openers"`
}

// Registry maps program names to their invocation rules.
type Registry struct {
	openers map[string]OpenerDefinition
	goos    string
}

// NewRegistry parses the built-in definitions and merges any user file found
// at ~/.config/newsroom/openers.toml.
func NewRegistry() (*Registry, error) {
	var file openersFile
	if err := toml.Unmarshal(openersTOML, &file); err != nil {
		return nil, fmt.Errorf("parsing openers.toml: %w", err)
	}
	r := &Registry{openers: file.Openers, goos: runtime.GOOS}
	if r.openers == nil {
		r.openers = make(map[string]OpenerDefinition)
	}

	if home, err := os.UserHomeDir(); err == nil {
		_ = r.Merge(filepath.Join(home, ".config", "newsroom", "openers.toml"))
	}
	return r, nil
}

// Merge overlays definitions from a TOML file. A missing file is not an
// error.
func (r *Registry) Merge(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	var file openersFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	for name, def := range file.Openers {
		r.openers[name] = def
	}
	return nil
}

// Command builds the invocation of name for a link of the given kind.
// Programs without a definition are run with the URL as their only argument.
func (r *Registry) Command(name string, kind Kind, url string) (*exec.Cmd, error) {
	if name == "start" && r.goos == "windows" {
		return exec.Command("cmd", "/c", "start", "", url), nil
	}

	def, ok := r.openers[name]
	if !ok {
		return exec.Command(name, url), nil
	}

	supported := false
	for _, p := range def.Platforms {
		if p == r.goos {
			supported = true
			break
		}
	}
	if !supported {
		return nil, fmt.Errorf("%s not supported on %s", name, r.goos)
	}

	var kc *KindConfig
	switch kind {
	case KindBrowser:
		kc = def.Browser
	case KindImage:
		kc = def.Image
	}
	if kc == nil {
		return nil, fmt.Errorf("%s cannot open %s links", name, kind)
	}

	args := append(append([]string{}, r.args(kc)...), url)
	return exec.Command(name, args...), nil
}

func (r *Registry) args(kc *KindConfig) []string {
	switch r.goos {
	case "darwin":
		if len(kc.ArgsDarwin) > 0 {
			return kc.ArgsDarwin
		}
	case "linux":
		if len(kc.ArgsLinux) > 0 {
			return kc.ArgsLinux
		}
	case "windows":
		if len(kc.ArgsWindows) > 0 {
			return kc.ArgsWindows
		}
	}
	return kc.Args
}

// Definition returns the rules registered for name.
func (r *Registry) Definition(name string) (OpenerDefinition, bool) {
	def, ok := r.openers[name]
	return def, ok
}
