package media

import (
	"fmt"
	"net/url"
	"os/exec"
	"path"
	"runtime"
	"strings"

	"github.com/pders01/newsroom/internal/config"
	"github.com/pders01/newsroom/internal/debuglog"
	"github.com/pders01/newsroom/internal/validation"
)

// Kind selects which configured program handles a link.
type Kind int

const (
	KindBrowser Kind = iota
	KindImage
)

func (k Kind) String() string {
	switch k {
	case KindBrowser:
		return "browser"
	case KindImage:
		return "image"
	default:
		return "unknown"
	}
}

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
	".webp": true, ".bmp": true, ".avif": true, ".svg": true,
}

// DetectKind classifies a link by the extension of its path.
func DetectKind(raw string) Kind {
	u, err := url.Parse(raw)
	if err != nil {
		return KindBrowser
	}
	if imageExtensions[strings.ToLower(path.Ext(u.Path))] {
		return KindImage
	}
	return KindBrowser
}

// Launcher opens article pages and front-page images in external programs.
type Launcher struct {
	browser       string
	imageViewer   string
	defaultOpener string
	registry      *Registry
	validator     *validation.LinkValidator
	start         func(*exec.Cmd) error
}

// NewLauncher resolves the first installed program for each kind from the
// platform's configured candidates.
func NewLauncher(cfg *config.Config) *Launcher {
	registry, err := NewRegistry()
	if err != nil {
		debuglog.Warnf("opener definitions unavailable: %v", err)
		registry = &Registry{openers: make(map[string]OpenerDefinition), goos: runtime.GOOS}
	}

	l := &Launcher{
		defaultOpener: cfg.Media.DefaultOpener,
		registry:      registry,
		validator:     validation.NewLinkValidator(),
		start:         startDetached,
	}

	var candidates config.Openers
	switch runtime.GOOS {
	case "darwin":
		candidates = cfg.Media.Darwin
	case "linux":
		candidates = cfg.Media.Linux
	case "windows":
		candidates = cfg.Media.Windows
	default:
		candidates = cfg.Media.Linux
	}

	l.browser = findCommand(candidates.Browser...)
	l.imageViewer = findCommand(candidates.Image...)
	if l.browser == "" {
		l.browser = l.defaultOpener
	}
	if l.imageViewer == "" {
		l.imageViewer = l.defaultOpener
	}
	return l
}

// Open picks the program by DetectKind.
func (l *Launcher) Open(link string) error {
	return l.open(link, DetectKind(link))
}

// OpenArticle opens an article page in the browser.
func (l *Launcher) OpenArticle(link string) error {
	return l.open(link, KindBrowser)
}

// OpenImage opens a front-page image in the image viewer.
func (l *Launcher) OpenImage(link string) error {
	return l.open(link, KindImage)
}

func (l *Launcher) open(link string, kind Kind) error {
	link, err := l.validator.Validate(link)
	if err != nil {
		return fmt.Errorf("refusing to open link: %w", err)
	}

	program := l.browser
	if kind == KindImage {
		program = l.imageViewer
	}
	if program == "" {
		program = l.defaultOpener
	}
	if program == "" {
		return fmt.Errorf("no application found to open %s links", kind)
	}

	cmd, err := l.registry.Command(program, kind, link)
	if err != nil {
		debuglog.Debugf("falling back to plain invocation of %s: %v", program, err)
		cmd = exec.Command(program, link)
	}

	if err := l.start(cmd); err != nil {
		return fmt.Errorf("failed to start %s: %w", program, err)
	}
	debuglog.WithFields(map[string]interface{}{"program": program, "kind": kind.String()}).Debugf("opened %s", link)
	return nil
}

func startDetached(cmd *exec.Cmd) error {
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() {
		_ = cmd.Wait()
	}()
	return nil
}

func findCommand(commands ...string) string {
	for _, cmd := range commands {
		if _, err := exec.LookPath(cmd); err == nil {
			return cmd
		}
	}
	return ""
}
