package main

import (
	"context"
	"io"
	"os"
	"time"

	postcard "github.com/alnah/go-postcard"
	"github.com/alnah/go-postcard/internal/mail"
)

// defaultDotEnvPath is the optional dotenv file read before the environment.
const defaultDotEnvPath = ".env"

// previewer captures a screenshot of finalized markup.
type previewer interface {
	Screenshot(ctx context.Context, markup string) ([]byte, error)
	Close() error
}

// sender delivers a test email and returns its message ID.
type sender interface {
	Send(ctx context.Context, msg mail.Message) (string, error)
}

// Compile-time interface checks.
var (
	_ previewer = (*postcard.Previewer)(nil)
	_ sender    = (*mail.Sender)(nil)
)

// Environment holds injectable dependencies for testability.
// Includes I/O, process environment, and the preview and send backends.
type Environment struct {
	Stdout     io.Writer
	Stderr     io.Writer
	Environ    func() []string
	DotEnvPath string // empty disables dotenv loading

	// ConverterOptions are appended after the options built from flags.
	ConverterOptions []postcard.Option

	NewPreviewer func(timeout time.Duration) previewer
	NewSender    func(cfg mail.Config) (sender, error)
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
		Environ:    os.Environ,
		DotEnvPath: defaultDotEnvPath,
		NewPreviewer: func(timeout time.Duration) previewer {
			return postcard.NewPreviewer(timeout)
		},
		NewSender: func(cfg mail.Config) (sender, error) {
			s, err := mail.NewSender(cfg)
			if err != nil {
				return nil, err
			}
			return s, nil
		},
	}
}
