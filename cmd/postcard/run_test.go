package main

// Notes:
// - runWithContext: we test exit codes and stdout/stderr contents for the
//   main scenarios. The inline service is an httptest server echoing the
//   "html" form field, reached through --endpoint, so the real HTTP client,
//   minifier and extractor run.
// - Preview and test send use mocks injected through Environment; the rod
//   and Postmark backends are covered in their own packages.
// - mergeFlags, resolveTimeout, buildRequest: we test precedence rules.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	postcard "github.com/alnah/go-postcard"
	"github.com/alnah/go-postcard/internal/config"
	"github.com/alnah/go-postcard/internal/mail"
)

// ---------------------------------------------------------------------------
// Test Infrastructure
// ---------------------------------------------------------------------------

// newEchoServer returns an inline service that sends the submitted markup
// back unchanged.
func newEchoServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(r.PostForm.Get("html")))
	}))
	t.Cleanup(srv.Close)
	return srv
}

// newStatusServer returns an inline service that always fails with status.
func newStatusServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

// mockPreviewer records the screenshot request.
type mockPreviewer struct {
	markup string
	png    []byte
	err    error
	closed bool
}

func (m *mockPreviewer) Screenshot(_ context.Context, markup string) ([]byte, error) {
	m.markup = markup
	return m.png, m.err
}

func (m *mockPreviewer) Close() error {
	m.closed = true
	return nil
}

// mockSender records the sent message.
type mockSender struct {
	cfg mail.Config
	msg mail.Message
	err error
}

func (m *mockSender) Send(_ context.Context, msg mail.Message) (string, error) {
	m.msg = msg
	if m.err != nil {
		return "", m.err
	}
	return "msg-1", nil
}

type testHarness struct {
	env       *Environment
	stdout    *bytes.Buffer
	stderr    *bytes.Buffer
	previewer *mockPreviewer
	sender    *mockSender
}

func newHarness(environ ...string) *testHarness {
	h := &testHarness{
		stdout:    &bytes.Buffer{},
		stderr:    &bytes.Buffer{},
		previewer: &mockPreviewer{png: []byte("\x89PNG\r\n\x1a\n")},
		sender:    &mockSender{},
	}
	h.env = &Environment{
		Stdout:  h.stdout,
		Stderr:  h.stderr,
		Environ: func() []string { return environ },
		NewPreviewer: func(time.Duration) previewer {
			return h.previewer
		},
		NewSender: func(cfg mail.Config) (sender, error) {
			h.sender.cfg = cfg
			return h.sender, nil
		},
	}
	return h
}

func (h *testHarness) run(args ...string) int {
	return runWithContext(context.Background(), append([]string{"postcard"}, args...), h.env)
}

func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

// ---------------------------------------------------------------------------
// TestRun_Help - Help and version short-circuit
// ---------------------------------------------------------------------------

func TestRun_Help(t *testing.T) {
	t.Parallel()

	for _, arg := range []string{"-h", "--help", "-?"} {
		t.Run(arg, func(t *testing.T) {
			t.Parallel()

			h := newHarness()
			// A source flag alongside help must not run a conversion.
			code := h.run(arg, "--html", "/does/not/exist.html")

			if code != ExitSuccess {
				t.Errorf("exit code = %d, want %d", code, ExitSuccess)
			}
			if !strings.Contains(h.stdout.String(), "Usage: postcard") {
				t.Errorf("stdout missing usage, got %q", h.stdout.String())
			}
			if h.stderr.Len() != 0 {
				t.Errorf("stderr = %q, want empty", h.stderr.String())
			}
		})
	}
}

func TestRun_Version(t *testing.T) {
	t.Parallel()

	h := newHarness()
	if code := h.run("--version"); code != ExitSuccess {
		t.Fatalf("exit code = %d, want %d", code, ExitSuccess)
	}
	if got := h.stdout.String(); got != "postcard "+Version+"\n" {
		t.Errorf("stdout = %q", got)
	}
}

// ---------------------------------------------------------------------------
// TestRun_Conversion - End to end through the echo service
// ---------------------------------------------------------------------------

func TestRun_Conversion(t *testing.T) {
	t.Parallel()

	srv := newEchoServer(t)
	dir := t.TempDir()
	page := writeTestFile(t, dir, "index.html", "<h1>  Foo  </h1>\n<!-- draft -->\n")
	note := writeTestFile(t, dir, "note.md", "# Title\n\nBody text.\n")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "positional static file",
			args: []string{page},
			want: "<h1>Foo</h1>\n",
		},
		{
			name: "html flag",
			args: []string{"--html", page},
			want: "<h1>Foo</h1>\n",
		},
		{
			name: "prefix and suffix",
			args: []string{"--prefix", "{{header}}", "--suffix", "{{footer}}", page},
			want: "{{header}}<h1>Foo</h1>{{footer}}\n",
		},
		{
			name: "plaintext",
			args: []string{"--txt", page},
			want: "Foo\n",
		},
		{
			name: "markdown wins over positional",
			args: []string{"--md", note, "--plaintext", page},
			want: "Title\n\nBody text.\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := newHarness()
			code := h.run(append([]string{"--endpoint", srv.URL}, tt.args...)...)

			if code != ExitSuccess {
				t.Fatalf("exit code = %d, want %d; stderr: %s", code, ExitSuccess, h.stderr.String())
			}
			if got := h.stdout.String(); got != tt.want {
				t.Errorf("stdout = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRun_Stylesheet(t *testing.T) {
	t.Parallel()

	srv := newEchoServer(t)
	dir := t.TempDir()
	page := writeTestFile(t, dir, "index.html", "<h1>Foo</h1>")
	styles := writeTestFile(t, dir, "foo.scss", "$red: red;\nh1 { color: $red; }\n")

	h := newHarness()
	code := h.run("--endpoint", srv.URL, "--scss", styles, page)
	if code != ExitSuccess {
		t.Fatalf("exit code = %d; stderr: %s", code, h.stderr.String())
	}

	// The echo service does not inline, so the style block survives.
	if got := h.stdout.String(); got != "<style>h1{color:red}</style><h1>Foo</h1>\n" {
		t.Errorf("stdout = %q", got)
	}
}

func TestRun_OutputFile(t *testing.T) {
	t.Parallel()

	srv := newEchoServer(t)
	dir := t.TempDir()
	page := writeTestFile(t, dir, "index.html", "<p>hi</p>")
	out := filepath.Join(dir, "out.html")

	h := newHarness()
	if code := h.run("--endpoint", srv.URL, "-o", out, page); code != ExitSuccess {
		t.Fatalf("exit code = %d; stderr: %s", code, h.stderr.String())
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if string(data) != "<p>hi</p>" {
		t.Errorf("output = %q, want %q", data, "<p>hi</p>")
	}
	if h.stdout.Len() != 0 {
		t.Errorf("stdout = %q, want empty", h.stdout.String())
	}
}

func TestRun_ConfigAndEnv(t *testing.T) {
	t.Parallel()

	srv := newEchoServer(t)
	dir := t.TempDir()
	page := writeTestFile(t, dir, "index.html", "<h1>Foo</h1>")
	cfgPath := writeTestFile(t, dir, "postcard.yaml", "prefix: \"[cfg]\"\nplaintext: true\ninliner:\n  endpoint: http://127.0.0.1:1/unused\n")

	// Env overrides the config endpoint; the flag overrides plaintext.
	h := newHarness("POSTCARD_ENDPOINT=" + srv.URL)
	code := h.run("-c", cfgPath, "--plaintext=false", page)

	if code != ExitSuccess {
		t.Fatalf("exit code = %d; stderr: %s", code, h.stderr.String())
	}
	if got := h.stdout.String(); got != "[cfg]<h1>Foo</h1>\n" {
		t.Errorf("stdout = %q", got)
	}
}

// ---------------------------------------------------------------------------
// TestRun_Errors - Exit codes and hints
// ---------------------------------------------------------------------------

func TestRun_Errors(t *testing.T) {
	t.Parallel()

	echo := newEchoServer(t)
	failing := newStatusServer(t, http.StatusBadGateway, `{"error":"upstream down"}`)
	dir := t.TempDir()
	page := writeTestFile(t, dir, "index.html", "<h1>Foo</h1>")
	broken := writeTestFile(t, dir, "broken.scss", "h1 { color: red;\n")

	tests := []struct {
		name       string
		environ    []string
		args       []string
		wantCode   int
		wantStderr []string
	}{
		{
			name:       "no source",
			args:       []string{"--endpoint", echo.URL},
			wantCode:   ExitIO,
			wantStderr: []string{"error: no source", "hint:", "--react"},
		},
		{
			name:     "unknown flag",
			args:     []string{"--nope"},
			wantCode: ExitUsage,
			wantStderr: []string{
				"error: invalid usage",
				"postcard --help",
			},
		},
		{
			name:       "too many arguments",
			args:       []string{"a.html", "b.html"},
			wantCode:   ExitUsage,
			wantStderr: []string{"too many arguments"},
		},
		{
			name:       "invalid timeout flag",
			args:       []string{"-t", "later", page},
			wantCode:   ExitUsage,
			wantStderr: []string{"--timeout"},
		},
		{
			name:       "invalid env timeout",
			environ:    []string{"POSTCARD_TIMEOUT=later"},
			args:       []string{page},
			wantCode:   ExitUsage,
			wantStderr: []string{"invalid environment variable"},
		},
		{
			name:       "invalid endpoint",
			args:       []string{"--endpoint", "ftp://example.com", page},
			wantCode:   ExitUsage,
			wantStderr: []string{"inliner.endpoint"},
		},
		{
			name:       "config not found",
			args:       []string{"-c", filepath.Join(dir, "missing.yaml"), page},
			wantCode:   ExitUsage,
			wantStderr: []string{"config file not found", "hint: use --config"},
		},
		{
			name:       "missing source file",
			args:       []string{"--endpoint", echo.URL, filepath.Join(dir, "missing.html")},
			wantCode:   ExitIO,
			wantStderr: []string{"resolving source"},
		},
		{
			name:       "unknown component",
			args:       []string{"--endpoint", echo.URL, "--react", "Welcome"},
			wantCode:   ExitUsage,
			wantStderr: []string{"Welcome", "hint: pass a template file path"},
		},
		{
			name:       "stylesheet syntax error",
			args:       []string{"--endpoint", echo.URL, "--styles", broken, page},
			wantCode:   ExitStyles,
			wantStderr: []string{"compiling styles", "hint: built-in partials: postcard/"},
		},
		{
			name:       "inline service failure",
			args:       []string{"--endpoint", failing.URL, page},
			wantCode:   ExitRemote,
			wantStderr: []string{"status 502", "upstream down", "hint: the inline service is unavailable"},
		},
		{
			name:       "preview must be png",
			args:       []string{"--endpoint", echo.URL, "--preview", filepath.Join(dir, "shot.jpg"), page},
			wantCode:   ExitUsage,
			wantStderr: []string{"preview.output"},
		},
		{
			name:       "unwritable output",
			args:       []string{"--endpoint", echo.URL, "-o", filepath.Join(dir, "nodir", "out.html"), page},
			wantCode:   ExitIO,
			wantStderr: []string{"failed to write output", "hint: check parent directory"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := newHarness(tt.environ...)
			code := h.run(tt.args...)

			if code != tt.wantCode {
				t.Errorf("exit code = %d, want %d; stderr: %s", code, tt.wantCode, h.stderr.String())
			}
			for _, want := range tt.wantStderr {
				if !strings.Contains(h.stderr.String(), want) {
					t.Errorf("stderr missing %q, got %q", want, h.stderr.String())
				}
			}
			if h.stdout.Len() != 0 {
				t.Errorf("stdout = %q, want empty on error", h.stdout.String())
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRun_Preview - Screenshot delivery
// ---------------------------------------------------------------------------

func TestRun_Preview(t *testing.T) {
	t.Parallel()

	srv := newEchoServer(t)
	dir := t.TempDir()
	page := writeTestFile(t, dir, "index.html", "<h1>Foo</h1>")
	shot := filepath.Join(dir, "shot.png")

	t.Run("writes png", func(t *testing.T) {
		t.Parallel()

		h := newHarness()
		code := h.run("--endpoint", srv.URL, "--plaintext", "--preview", shot, page)
		if code != ExitSuccess {
			t.Fatalf("exit code = %d; stderr: %s", code, h.stderr.String())
		}

		data, err := os.ReadFile(shot)
		if err != nil {
			t.Fatalf("reading preview: %v", err)
		}
		if !bytes.HasPrefix(data, []byte("\x89PNG")) {
			t.Errorf("preview is not a PNG: %q", data)
		}
		// Plaintext mode still previews the markup.
		if h.previewer.markup != "<h1>Foo</h1>" {
			t.Errorf("previewed markup = %q", h.previewer.markup)
		}
		if !h.previewer.closed {
			t.Error("previewer was not closed")
		}
	})

	t.Run("browser failure", func(t *testing.T) {
		t.Parallel()

		h := newHarness()
		h.previewer.err = postcard.ErrBrowserConnect
		code := h.run("--endpoint", srv.URL, "--preview", filepath.Join(dir, "fail.png"), page)

		if code != ExitBrowser {
			t.Errorf("exit code = %d, want %d", code, ExitBrowser)
		}
		if !strings.Contains(h.stderr.String(), "preview: failed to connect to browser") {
			t.Errorf("stderr = %q", h.stderr.String())
		}
	})
}

// ---------------------------------------------------------------------------
// TestRun_Send - Test email delivery
// ---------------------------------------------------------------------------

func TestRun_Send(t *testing.T) {
	t.Parallel()

	srv := newEchoServer(t)
	dir := t.TempDir()
	page := writeTestFile(t, dir, "index.html", `<p>Hi <a href="https://example.com">there</a></p>`)

	t.Run("sends markup and text", func(t *testing.T) {
		t.Parallel()

		h := newHarness(
			"POSTCARD_POSTMARK_SERVER_TOKEN=server-token",
			"POSTCARD_FROM=me@example.com",
		)
		code := h.run("--endpoint", srv.URL, "--send-to", "you@example.com", page)
		if code != ExitSuccess {
			t.Fatalf("exit code = %d; stderr: %s", code, h.stderr.String())
		}

		if h.sender.cfg.ServerToken != "server-token" || h.sender.cfg.From != "me@example.com" {
			t.Errorf("sender config = %+v", h.sender.cfg)
		}
		msg := h.sender.msg
		if msg.To != "you@example.com" {
			t.Errorf("To = %q", msg.To)
		}
		if msg.Subject != defaultSubject {
			t.Errorf("Subject = %q, want %q", msg.Subject, defaultSubject)
		}
		if !strings.Contains(msg.HTMLBody, "https://example.com") {
			t.Errorf("HTMLBody = %q", msg.HTMLBody)
		}
		if msg.TextBody != "Hi there [https://example.com]" {
			t.Errorf("TextBody = %q", msg.TextBody)
		}
	})

	t.Run("send failure", func(t *testing.T) {
		t.Parallel()

		h := newHarness("POSTCARD_POSTMARK_SERVER_TOKEN=server-token", "POSTCARD_FROM=me@example.com")
		h.sender.err = errors.Join(mail.ErrSend, errors.New("postmark error: 300 - Invalid email request"))
		code := h.run("--endpoint", srv.URL, "--send-to", "you@example.com", "--subject", "Hello", page)

		if code != ExitRemote {
			t.Errorf("exit code = %d, want %d", code, ExitRemote)
		}
		if h.sender.msg.Subject != "Hello" {
			t.Errorf("Subject = %q, want Hello", h.sender.msg.Subject)
		}
		if !strings.Contains(h.stderr.String(), "hint: set POSTCARD_POSTMARK_SERVER_TOKEN") {
			t.Errorf("stderr = %q", h.stderr.String())
		}
	})
}

// ---------------------------------------------------------------------------
// TestMergeFlags - CLI over config
// ---------------------------------------------------------------------------

func TestMergeFlags(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{Styles: "file.scss", Prefix: "[file]", Plaintext: true}

	f, _, err := parseFlags([]string{"--css", "flag.css", "--prefix", "", "--plaintext=false"})
	if err != nil {
		t.Fatal(err)
	}
	mergeFlags(f, cfg)

	if cfg.Styles != "flag.css" {
		t.Errorf("Styles = %q, want flag.css", cfg.Styles)
	}
	if cfg.Prefix != "" {
		t.Errorf("Prefix = %q, want empty (explicit flag)", cfg.Prefix)
	}
	if cfg.Plaintext {
		t.Error("Plaintext = true, want false (explicit flag)")
	}
}

// ---------------------------------------------------------------------------
// TestResolveTimeout - Priority and validation
// ---------------------------------------------------------------------------

func TestResolveTimeout(t *testing.T) {
	t.Parallel()

	cfgWith := func(timeout string) *config.Config {
		cfg := config.DefaultConfig()
		cfg.Inliner.Timeout = timeout
		return cfg
	}

	tests := []struct {
		name    string
		flag    string
		env     time.Duration
		cfg     *config.Config
		want    time.Duration
		wantErr bool
	}{
		{"flag wins", "10s", time.Minute, cfgWith("2m"), 10 * time.Second, false},
		{"env over config", "", time.Minute, cfgWith("2m"), time.Minute, false},
		{"config", "", 0, cfgWith("2m"), 2 * time.Minute, false},
		{"unset", "", 0, cfgWith(""), 0, false},
		{"invalid flag", "soon", 0, cfgWith(""), 0, true},
		{"zero flag", "0s", 0, cfgWith(""), 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := resolveTimeout(tt.flag, tt.env, tt.cfg)
			if tt.wantErr {
				if !errors.Is(err, ErrUsage) {
					t.Errorf("error = %v, want ErrUsage", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("resolveTimeout() = %v, want %v", got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestBuildRequest - Source priority
// ---------------------------------------------------------------------------

func TestBuildRequest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		args      []string
		wantKind  postcard.SourceKind
		wantPath  string
		wantErrIs error
	}{
		{"positional", []string{"a.html"}, postcard.SourceStatic, "a.html", nil},
		{"html over positional", []string{"--html", "b.html", "a.html"}, postcard.SourceStatic, "b.html", nil},
		{"markdown over html", []string{"--md", "c.md", "--html", "b.html"}, postcard.SourceMarkdown, "c.md", nil},
		{"component over all", []string{"--react", "Welcome", "--md", "c.md", "a.html"}, postcard.SourceComponent, "Welcome", nil},
		{"none", nil, postcard.SourceNone, "", postcard.ErrSourceMissing},
		{"two positionals", []string{"a.html", "b.html"}, postcard.SourceNone, "", ErrTooManyArgs},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f, positional, err := parseFlags(tt.args)
			if err != nil {
				t.Fatal(err)
			}

			req, err := buildRequest(f, positional, config.DefaultConfig())
			if tt.wantErrIs != nil {
				if !errors.Is(err, tt.wantErrIs) {
					t.Errorf("error = %v, want %v", err, tt.wantErrIs)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if req.Source.Kind != tt.wantKind || req.Source.Path != tt.wantPath {
				t.Errorf("source = %+v, want %v %q", req.Source, tt.wantKind, tt.wantPath)
			}
		})
	}
}
