package service

import (
	"github.com/okian/atsr/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStorePath sets the answer file location.
func WithStorePath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.storePath = path
		}
	}
}

// WithQueueSize sets the maximum size of the submission queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the submission-id deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithPassphrase sets the organizer passphrase.
func WithPassphrase(passphrase string) Option {
	return func(s *Service) {
		if passphrase != "" {
			s.passphrase = passphrase
		}
	}
}

// WithCriteria sets the ordered criterion names.
func WithCriteria(criteria []string) Option {
	return func(s *Service) {
		if len(criteria) > 0 {
			s.criteria = append([]string(nil), criteria...)
		}
	}
}

// WithSubgroups sets the roster mapping.
func WithSubgroups(subgroups map[string][]string) Option {
	return func(s *Service) {
		if len(subgroups) > 0 {
			s.subgroups = subgroups
		}
	}
}
