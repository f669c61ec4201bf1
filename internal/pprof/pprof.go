// Package pprof writes file-based profiles around a CLI run, so render and
// lookup hot paths can be inspected with `go tool pprof`.
package pprof

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"sync"
)

// Config names the profile files to write. Empty paths are skipped.
type Config struct {
	CPUProfile   string
	HeapProfile  string
	MutexProfile string // contention on the handle tables and error registry

	MutexProfileFraction int // sample 1/n events (default: 1)
}

// Enabled reports whether any profile is requested.
func (c Config) Enabled() bool {
	return c.CPUProfile != "" || c.HeapProfile != "" || c.MutexProfile != ""
}

// Profiler manages one profiling session.
type Profiler struct {
	config  Config
	cpuFile *os.File

	mu      sync.Mutex
	started bool
	stopped bool
}

// New creates a profiler for config.
func New(config Config) *Profiler {
	if config.MutexProfileFraction == 0 {
		config.MutexProfileFraction = 1
	}
	return &Profiler{config: config}
}

// Start begins CPU profiling and mutex sampling as configured.
func (p *Profiler) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return errors.New("profiler already started")
	}
	p.started = true

	if p.config.CPUProfile != "" {
		f, err := create(p.config.CPUProfile)
		if err != nil {
			return fmt.Errorf("CPU profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			f.Close()
			return fmt.Errorf("failed to start CPU profiling: %w", err)
		}
		p.cpuFile = f
	}

	if p.config.MutexProfile != "" {
		runtime.SetMutexProfileFraction(p.config.MutexProfileFraction)
	}
	return nil
}

// Stop ends profiling and writes the snapshot profiles. Calling it more than
// once, or without Start, is a no-op.
func (p *Profiler) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started || p.stopped {
		return nil
	}
	p.stopped = true

	var errs []error

	if p.cpuFile != nil {
		pprof.StopCPUProfile()
		if err := p.cpuFile.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close CPU profile: %w", err))
		}
		p.cpuFile = nil
	}

	if p.config.HeapProfile != "" {
		runtime.GC()
		if err := writeProfile("heap", p.config.HeapProfile); err != nil {
			errs = append(errs, err)
		}
	}

	if p.config.MutexProfile != "" {
		if err := writeProfile("mutex", p.config.MutexProfile); err != nil {
			errs = append(errs, err)
		}
		runtime.SetMutexProfileFraction(0)
	}

	return errors.Join(errs...)
}

func create(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	return f, nil
}

func writeProfile(name, path string) error {
	prof := pprof.Lookup(name)
	if prof == nil {
		return fmt.Errorf("profile %q not found", name)
	}
	f, err := create(path)
	if err != nil {
		return fmt.Errorf("%s profile: %w", name, err)
	}
	defer f.Close()
	if err := prof.WriteTo(f, 0); err != nil {
		return fmt.Errorf("failed to write %s profile: %w", name, err)
	}
	return nil
}
