package output

import (
	"errors"
	"hash"
)

// Option defines optional settings for Save.
//
// WithChecksum verifies the written bytes. h is a fresh hash.Hash (e.g.
// sha256.New()) and expected the hex-encoded digest.
//
// WithProgress logs write progress through the logger given to Save.
//
// WithSkipExisting makes Save return nil at once when destPath exists.
type Option func(*options) error

type options struct {
	checksum     *checksumVerifier
	progress     bool
	skipExisting bool
}

func WithChecksum(h hash.Hash, expected string) Option {
	return func(opts *options) error {
		if h == nil {
			return errors.New("hash must not be nil")
		}

		if expected == "" {
			return errors.New("expected checksum must not be empty")
		}

		opts.checksum = &checksumVerifier{hash: h, expected: expected}
		return nil
	}
}

func WithProgress() Option {
	return func(opts *options) error {
		opts.progress = true
		return nil
	}
}

func WithSkipExisting() Option {
	return func(opts *options) error {
		opts.skipExisting = true
		return nil
	}
}
