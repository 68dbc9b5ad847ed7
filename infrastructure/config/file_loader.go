// Package config provides file-backed configuration loading for the
// deliberation engine.
package config

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/FIRSTIsrael/lems-core/internal/ports"
)

var _ ports.ConfigLoader = (*FileLoader)(nil)

// defaultWatchInterval is how often Watch polls the file for changes.
const defaultWatchInterval = 5 * time.Second

// FileLoader implements ports.ConfigLoader over a YAML file on disk.
// Watch polls the file's modification time rather than relying on
// platform file notifications.
type FileLoader struct {
	path     string
	interval time.Duration
}

// NewFileLoader creates a loader for the given YAML file path.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{path: path, interval: defaultWatchInterval}
}

// WithInterval overrides the watch polling interval.
func (l *FileLoader) WithInterval(interval time.Duration) *FileLoader {
	l.interval = interval
	return l
}

// Load reads and parses the file into config, which must be a pointer.
func (l *FileLoader) Load(_ context.Context, config any) error {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", l.path, err)
	}
	return nil
}

// Watch polls the file and reloads config into the same pointer when
// its modification time advances, invoking callback after each
// successful reload. The returned stop function ends the watch; it is
// safe to call more than once.
func (l *FileLoader) Watch(ctx context.Context, config any, callback func(any)) (func(), error) {
	info, err := os.Stat(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}

	done := make(chan struct{})
	var once sync.Once
	stop := func() { once.Do(func() { close(done) }) }

	go func() {
		ticker := time.NewTicker(l.interval)
		defer ticker.Stop()

		last := info.ModTime()
		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case <-ticker.C:
				current, err := os.Stat(l.path)
				if err != nil || !current.ModTime().After(last) {
					continue
				}
				last = current.ModTime()
				// A malformed rewrite keeps the previous config live.
				if err := l.Load(ctx, config); err != nil {
					continue
				}
				callback(config)
			}
		}
	}()

	return stop, nil
}
