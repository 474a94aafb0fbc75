package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	postcard "github.com/alnah/go-postcard"
	"github.com/alnah/go-postcard/internal/assets"
	"github.com/alnah/go-postcard/internal/config"
	"github.com/alnah/go-postcard/internal/hints"
	"github.com/alnah/go-postcard/internal/logging"
	"github.com/alnah/go-postcard/internal/mail"
)

// Sentinel errors for CLI operations.
var (
	ErrUsage       = errors.New("invalid usage")
	ErrTooManyArgs = errors.New("too many arguments")
	ErrInvalidEnv  = errors.New("invalid environment variable")
	ErrWriteOutput = errors.New("failed to write output")
)

// filePermissions is used for the output and preview files.
const filePermissions = 0o644 // rw-r--r--: owner read+write, others read

// defaultSubject is used for test sends without a subject.
const defaultSubject = "postcard preview"

// runMain runs the CLI and returns the process exit code.
// args includes the program name.
func runMain(args []string, env *Environment) int {
	ctx, stop := notifyContext(context.Background())
	defer stop()

	return runWithContext(ctx, args, env)
}

// runWithContext parses args, runs one conversion and reports errors with
// hints on stderr.
func runWithContext(ctx context.Context, args []string, env *Environment) int {
	var rest []string
	if len(args) > 1 {
		rest = args[1:]
	}

	flags, positional, err := parseFlags(rest)
	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v\n", fmt.Errorf("%w: %v", ErrUsage, err))
		fmt.Fprintln(env.Stderr, "Run 'postcard --help' for usage.")
		return ExitUsage
	}

	if flags.help {
		printUsage(env.Stdout)
		return ExitSuccess
	}
	if flags.version {
		fmt.Fprintf(env.Stdout, "postcard %s\n", Version)
		return ExitSuccess
	}

	log := logging.New(env.Stderr, logging.Config{Verbose: flags.verbose, Quiet: flags.quiet})

	inv := &invocation{env: env, flags: flags, log: log}
	if err := inv.run(ctx, positional); err != nil {
		fmt.Fprintf(env.Stderr, "error: %v%s\n", err, inv.hintFor(err))
		return exitCodeFor(err)
	}
	return ExitSuccess
}

// invocation carries the state of one CLI run, kept for error hints.
type invocation struct {
	env       *Environment
	flags     *cliFlags
	log       *zap.Logger
	envCfg    *envConfig
	cfg       *config.Config
	converter *postcard.Converter
}

// run orchestrates the conversion and the optional preview and test send.
func (inv *invocation) run(ctx context.Context, positional []string) error {
	vars, err := environMap(inv.env.Environ(), inv.env.DotEnvPath)
	if err != nil {
		return err
	}
	warnUnknownEnvVars(inv.log, vars)

	inv.envCfg, err = loadEnvConfig(vars)
	if err != nil {
		return err
	}

	// Load configuration
	inv.cfg, err = loadConfig(inv.configName())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Environment, then CLI flags, override the config file
	applyEnvConfig(inv.envCfg, inv.cfg)
	mergeFlags(inv.flags, inv.cfg)
	if err := inv.cfg.Validate(); err != nil {
		return err
	}

	timeout, err := resolveTimeout(inv.flags.timeout, inv.envCfg.Timeout, inv.cfg)
	if err != nil {
		return err
	}

	req, err := buildRequest(inv.flags, positional, inv.cfg)
	if err != nil {
		return err
	}

	inv.converter = postcard.NewConverter(inv.converterOptions(timeout)...)

	res, err := inv.converter.Convert(ctx, req)
	if err != nil {
		return err
	}

	if err := writeOutput(inv.env, inv.flags.output, res.Body); err != nil {
		return err
	}

	if inv.cfg.Preview.Output != "" {
		if err := inv.writePreview(ctx, res.Markup, timeout); err != nil {
			return err
		}
	}

	if inv.cfg.Send.To != "" {
		if err := inv.send(ctx, req, res); err != nil {
			return err
		}
	}

	return nil
}

// configName returns the config to load: the flag, else POSTCARD_CONFIG.
func (inv *invocation) configName() string {
	if inv.flags.config != "" || inv.envCfg == nil {
		return inv.flags.config
	}
	return inv.envCfg.ConfigPath
}

// converterOptions builds the converter options from the resolved settings.
// Options from the environment come last so tests can override transport.
func (inv *invocation) converterOptions(timeout time.Duration) []postcard.Option {
	opts := []postcard.Option{postcard.WithLogger(inv.log)}
	if timeout > 0 {
		opts = append(opts, postcard.WithTimeout(timeout))
	}
	if inv.cfg.Inliner.Endpoint != "" {
		opts = append(opts, postcard.WithInlineEndpoint(inv.cfg.Inliner.Endpoint))
	}
	return append(opts, inv.env.ConverterOptions...)
}

// writePreview captures markup as a PNG at the configured path.
func (inv *invocation) writePreview(ctx context.Context, markup string, timeout time.Duration) error {
	p := inv.env.NewPreviewer(timeout)
	defer func() { _ = p.Close() }()

	png, err := p.Screenshot(ctx, markup)
	if err != nil {
		return fmt.Errorf("preview: %w", err)
	}

	path := inv.cfg.Preview.Output
	if err := os.WriteFile(path, png, filePermissions); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}

	inv.log.Info("preview written", zap.String("path", path))
	return nil
}

// send delivers the result as a test email. The HTML part is always the
// finalized markup; the text part is the plaintext rendition.
func (inv *invocation) send(ctx context.Context, req postcard.Request, res *postcard.Result) error {
	s, err := inv.env.NewSender(mail.Config{
		ServerToken:  inv.envCfg.ServerToken,
		AccountToken: inv.envCfg.AccountToken,
		From:         inv.cfg.Send.From,
	})
	if err != nil {
		return fmt.Errorf("test send: %w", err)
	}

	text := res.Body
	if !req.Plaintext {
		text, err = postcard.ExtractText(res.Markup)
		if err != nil {
			inv.log.Warn("sending without a text part", zap.Error(err))
			text = ""
		}
	}

	subject := inv.cfg.Send.Subject
	if subject == "" {
		subject = defaultSubject
	}

	id, err := s.Send(ctx, mail.Message{
		To:       inv.cfg.Send.To,
		Subject:  subject,
		HTMLBody: res.Markup,
		TextBody: text,
	})
	if err != nil {
		return fmt.Errorf("test send: %w", err)
	}

	inv.log.Info("test email sent", zap.String("to", inv.cfg.Send.To), zap.String("message_id", id))
	return nil
}

// endpoint returns the inline service URL in effect.
func (inv *invocation) endpoint() string {
	if inv.cfg != nil && inv.cfg.Inliner.Endpoint != "" {
		return inv.cfg.Inliner.Endpoint
	}
	return postcard.DefaultInlineEndpoint
}

// hintFor returns an actionable hint for err, or "".
func (inv *invocation) hintFor(err error) string {
	var inlineErr *postcard.InlineError

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.As(err, &inlineErr):
		return hints.ForInlineService(inv.endpoint(), inlineErr.StatusCode)
	case errors.Is(err, postcard.ErrInlineService):
		return hints.ForInlineService(inv.endpoint(), 0)
	case errors.Is(err, postcard.ErrStyleCompile):
		return hints.ForStyleCompile(assets.NewEmbeddedLoader().ListStyles())
	case errors.Is(err, postcard.ErrComponentNotFound):
		var registered []string
		if inv.converter != nil {
			registered = inv.converter.Components()
		}
		return hints.ForComponentNotFound(registered)
	case errors.Is(err, postcard.ErrConfiguration):
		return hints.ForConfiguration()
	case errors.Is(err, postcard.ErrSourceMissing):
		return hints.ForSourceMissing()
	case errors.Is(err, config.ErrConfigNotFound):
		var searched []string
		if name := inv.configName(); !strings.ContainsAny(name, "/\\") {
			searched = config.SearchPaths(name)
		}
		return hints.ForConfigNotFound(searched)
	case errors.Is(err, postcard.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	case errors.Is(err, mail.ErrSend), errors.Is(err, mail.ErrInvalidConfig):
		return hints.ForSend()
	case errors.Is(err, ErrWriteOutput):
		return hints.ForOutputDirectory()
	default:
		return ""
	}
}

// loadConfig loads the named config, or returns defaults when name is empty.
func loadConfig(name string) (*config.Config, error) {
	if name == "" {
		return config.DefaultConfig(), nil
	}
	return config.LoadConfig(name)
}

// mergeFlags merges CLI flags into config. Flags given explicitly override
// config values, even when empty.
func mergeFlags(f *cliFlags, cfg *config.Config) {
	if f.set["styles"] {
		cfg.Styles = f.styles
	}
	if f.set["plaintext"] {
		cfg.Plaintext = f.plaintext
	}
	if f.set["prefix"] {
		cfg.Prefix = f.prefix
	}
	if f.set["suffix"] {
		cfg.Suffix = f.suffix
	}
	if f.set["endpoint"] {
		cfg.Inliner.Endpoint = f.endpoint
	}
	if f.set["preview"] {
		cfg.Preview.Output = f.delivery.preview
	}
	if f.set["send-to"] {
		cfg.Send.To = f.delivery.sendTo
	}
	if f.set["subject"] {
		cfg.Send.Subject = f.delivery.subject
	}
}

// resolveTimeout picks the conversion timeout.
// Priority: flag > POSTCARD_TIMEOUT > config > 0 (converter default).
func resolveTimeout(flagValue string, envValue time.Duration, cfg *config.Config) (time.Duration, error) {
	if flagValue != "" {
		d, err := time.ParseDuration(flagValue)
		if err != nil {
			return 0, fmt.Errorf("%w: --timeout: %v", ErrUsage, err)
		}
		if d <= 0 {
			return 0, fmt.Errorf("%w: --timeout must be positive, got %s", ErrUsage, flagValue)
		}
		return d, nil
	}
	if envValue > 0 {
		return envValue, nil
	}
	return cfg.TimeoutDuration()
}

// buildRequest selects the source and assembles the conversion request.
// Source priority: component, markdown, html, positional argument.
func buildRequest(f *cliFlags, positional []string, cfg *config.Config) (postcard.Request, error) {
	if len(positional) > 1 {
		return postcard.Request{}, fmt.Errorf("%w: expected at most one source file, got %d", ErrTooManyArgs, len(positional))
	}

	var src postcard.SourceRef
	switch {
	case f.source.component != "":
		src = postcard.ComponentSource(f.source.component)
	case f.source.markdown != "":
		src = postcard.MarkdownSource(f.source.markdown)
	case f.source.html != "":
		src = postcard.StaticSource(f.source.html)
	case len(positional) == 1 && positional[0] != "":
		src = postcard.StaticSource(positional[0])
	default:
		return postcard.Request{}, postcard.ErrSourceMissing
	}

	return postcard.Request{
		Source:     src,
		StylesPath: cfg.Styles,
		Plaintext:  cfg.Plaintext,
		Prefix:     cfg.Prefix,
		Suffix:     cfg.Suffix,
	}, nil
}

// writeOutput writes body to path, or to stdout followed by a newline.
func writeOutput(env *Environment, path, body string) error {
	if path == "" {
		if _, err := fmt.Fprintln(env.Stdout, body); err != nil {
			return fmt.Errorf("%w: %w", ErrWriteOutput, err)
		}
		return nil
	}

	if err := os.WriteFile(path, []byte(body), filePermissions); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}
	return nil
}
