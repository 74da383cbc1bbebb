package elf_loader

import (
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

type loadConfig struct {
	logger *zap.Logger
	opener Opener
}

func defaultLoadConfig() *loadConfig {
	return &loadConfig{
		logger: zap.NewNop(),
		opener: &aferoOpener{fs: afero.NewOsFs()},
	}
}

// Configures Load and ParseELFFile.
type Option func(*loadConfig)

// Sets the logger receiving debug output from each decoding stage. By default
// nothing is logged.
func WithLogger(logger *zap.Logger) Option {
	return func(c *loadConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Reads files from the given afero file system instead of the OS one.
func WithFs(fs afero.Fs) Option {
	return func(c *loadConfig) {
		c.opener = &aferoOpener{fs: fs}
	}
}

// Memory-maps the file for each operation instead of using read calls.
func WithMmap() Option {
	return func(c *loadConfig) {
		c.opener = mmapOpener{}
	}
}

// Uses a caller-provided environment for opening files.
func WithOpener(opener Opener) Option {
	return func(c *loadConfig) {
		if opener != nil {
			c.opener = opener
		}
	}
}
