package postcard

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-postcard/internal/fileutil"
	"github.com/alnah/go-postcard/internal/process"
)

// screenshotRenderer captures a local HTML file as an image. It allows
// testing Previewer without a browser.
type screenshotRenderer interface {
	CaptureFromFile(ctx context.Context, filePath string) ([]byte, error)
	Close() error
}

// Compile-time interface check.
var _ screenshotRenderer = (*rodRenderer)(nil)

// Preview viewport. 600px is the usual width of an email body.
const (
	previewWidth  = 600
	previewHeight = 800
)

// Previewer renders finalized markup in headless Chrome and captures a full
// page PNG screenshot, to eyeball an email before sending it.
// Close releases the browser.
type Previewer struct {
	renderer screenshotRenderer
}

// NewPreviewer creates a Previewer. The browser is started on first use.
// Rod downloads Chromium on first run if none is found; set ROD_BROWSER_BIN
// to use a preinstalled browser.
func NewPreviewer(timeout time.Duration) *Previewer {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Previewer{renderer: &rodRenderer{timeout: timeout}}
}

// Screenshot returns a PNG of markup as rendered by the browser.
func (p *Previewer) Screenshot(ctx context.Context, markup string) ([]byte, error) {
	path, cleanup, err := fileutil.WriteTempFile(markup, "html")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPreview, err)
	}
	defer cleanup()

	return p.renderer.CaptureFromFile(ctx, path)
}

// Close releases browser resources.
func (p *Previewer) Close() error {
	if p.renderer == nil {
		return nil
	}
	return p.renderer.Close()
}

// rodRenderer implements screenshotRenderer using go-rod.
type rodRenderer struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	timeout  time.Duration
}

// ensureBrowser lazily connects to the browser.
func (r *rodRenderer) ensureBrowser() error {
	if r.browser != nil {
		return nil
	}

	l := launcher.New()

	// Use pre-installed browser if specified (Docker/containerized environments)
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}

	// NoSandbox required for CI and containerized environments
	if os.Getenv("CI") == "true" || os.Getenv("ROD_BROWSER_BIN") != "" {
		l = l.NoSandbox(true)
	}
	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	r.launcher = l
	r.browser = rod.New().ControlURL(u)
	if err := r.browser.Connect(); err != nil {
		r.browser = nil
		r.killLauncher()
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	return nil
}

// killLauncher terminates the Chrome process tree started by the launcher.
// Renderer and GPU helpers survive a plain browser close on some platforms.
func (r *rodRenderer) killLauncher() {
	if r.launcher == nil {
		return
	}
	if pid := r.launcher.PID(); pid > 0 {
		process.KillProcessGroup(pid)
	}
	r.launcher.Kill()
	r.launcher = nil
}

// Close releases browser resources.
func (r *rodRenderer) Close() error {
	var err error
	if r.browser != nil {
		err = r.browser.Close()
		r.browser = nil
	}
	r.killLauncher()
	return err
}

// CaptureFromFile opens a local HTML file and captures it as PNG.
func (r *rodRenderer) CaptureFromFile(ctx context.Context, filePath string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := r.ensureBrowser(); err != nil {
		return nil, err
	}

	page, err := r.browser.Page(proto.TargetCreateTarget{URL: "file://" + filePath})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer func() { _ = page.Close() }()

	timeout := r.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return nil, context.DeadlineExceeded
		}
	}

	err = page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             previewWidth,
		Height:            previewHeight,
		DeviceScaleFactor: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: setting viewport: %v", ErrPreview, err)
	}

	if err := page.Timeout(timeout).WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	png, err := page.Screenshot(true, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPreview, err)
	}
	return png, nil
}
