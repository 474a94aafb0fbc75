package main

import (
	"io"
	"strings"

	flag "github.com/spf13/pflag"
)

// flagAliases maps alternate flag names to their canonical name.
var flagAliases = map[string]string{
	"react": "component",
	"md":    "markdown",
	"scss":  "styles",
	"css":   "styles",
	"text":  "plaintext",
	"txt":   "plaintext",
}

// sourceFlags holds the mutually exclusive source flags.
type sourceFlags struct {
	html      string
	component string
	markdown  string
}

// deliveryFlags holds post-conversion flags.
type deliveryFlags struct {
	preview string
	sendTo  string
	subject string
}

// cliFlags holds all command-line flags.
type cliFlags struct {
	source    sourceFlags
	delivery  deliveryFlags
	styles    string
	plaintext bool
	prefix    string
	suffix    string
	output    string
	config    string
	timeout   string
	endpoint  string
	quiet     bool
	verbose   bool
	version   bool
	help      bool

	// set records which flags were given explicitly, by canonical name.
	set map[string]bool
}

// normalizeFlagName resolves aliases so --react and --component, or --scss
// and --styles, set the same value.
func normalizeFlagName(_ *flag.FlagSet, name string) flag.NormalizedName {
	if canonical, ok := flagAliases[name]; ok {
		name = canonical
	}
	return flag.NormalizedName(name)
}

// newFlagSet builds the flag set bound to f.
func newFlagSet(f *cliFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("postcard", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SetNormalizeFunc(normalizeFlagName)

	// Source
	fs.StringVar(&f.source.html, "html", "", "static markup file")
	fs.StringVar(&f.source.component, "component", "", "component name or template file")
	fs.StringVar(&f.source.markdown, "markdown", "", "markdown file")

	// Conversion
	fs.StringVar(&f.styles, "styles", "", "stylesheet (SCSS, Sass or CSS)")
	fs.BoolVar(&f.plaintext, "plaintext", false, "output plain text")
	fs.StringVar(&f.prefix, "prefix", "", "text before the body")
	fs.StringVar(&f.suffix, "suffix", "", "text after the body")
	fs.StringVar(&f.endpoint, "endpoint", "", "inline service URL")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "conversion timeout (e.g., 30s, 2m)")

	// Output
	fs.StringVarP(&f.output, "output", "o", "", "output file (default stdout)")
	fs.StringVar(&f.delivery.preview, "preview", "", "write a PNG screenshot")
	fs.StringVar(&f.delivery.sendTo, "send-to", "", "send a test email to this address")
	fs.StringVar(&f.delivery.subject, "subject", "", "test email subject")

	// Common
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show stage timing")
	fs.BoolVar(&f.version, "version", false, "print version")
	fs.BoolVarP(&f.help, "help", "h", false, "show help")

	return fs
}

// parseFlags parses args (without the program name) and returns the flags
// and positional arguments. "-?" is accepted as a help flag.
func parseFlags(args []string) (*cliFlags, []string, error) {
	f := &cliFlags{set: make(map[string]bool)}
	fs := newFlagSet(f)

	if err := fs.Parse(rewriteHelpAlias(args)); err != nil {
		return nil, nil, err
	}

	fs.Visit(func(fl *flag.Flag) {
		f.set[fl.Name] = true
	})

	return f, fs.Args(), nil
}

// rewriteHelpAlias turns "-?" into "--help", which pflag can't register.
// Arguments after "--" are left alone.
func rewriteHelpAlias(args []string) []string {
	out := make([]string, len(args))
	copy(out, args)
	for i, a := range out {
		if a == "--" {
			break
		}
		if strings.TrimSpace(a) == "-?" {
			out[i] = "--help"
		}
	}
	return out
}
