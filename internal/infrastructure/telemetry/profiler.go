package telemetry

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/grafana/pyroscope-go"
	"go.uber.org/zap"
)

type ProfilerConfig struct {
	Enabled         bool
	ServerAddress   string
	ApplicationName string
	ProfileTypes    []pyroscope.ProfileType // empty means DefaultProfileTypes
}

// DefaultProfileTypes covers CPU, heap and goroutine leaks. Rendering is
// allocation heavy so both alloc and inuse space are kept.
var DefaultProfileTypes = []pyroscope.ProfileType{
	pyroscope.ProfileCPU,
	pyroscope.ProfileAllocSpace,
	pyroscope.ProfileInuseSpace,
	pyroscope.ProfileGoroutines,
}

// Profiler pushes continuous profiles to Pyroscope. A nil session means
// profiling is off and Stop does nothing.
type Profiler struct {
	session  *pyroscope.Profiler
	stopOnce sync.Once
	stopErr  error
}

func (c ProfilerConfig) validate() error {
	var errs []error
	if c.ServerAddress == "" {
		errs = append(errs, errors.New("profiler server address is required when profiling is enabled"))
	}
	if c.ApplicationName == "" {
		errs = append(errs, errors.New("profiler application name is required when profiling is enabled"))
	}
	return errors.Join(errs...)
}

func NewProfiler(cfg ProfilerConfig, logger *zap.Logger) (*Profiler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !cfg.Enabled {
		logger.Info("Continuous profiling disabled")
		return &Profiler{}, nil
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	types := cfg.ProfileTypes
	if len(types) == 0 {
		types = DefaultProfileTypes
	}
	tags := make(map[string]string)
	if host, err := os.Hostname(); err == nil {
		tags["hostname"] = host
	}

	session, err := pyroscope.Start(pyroscope.Config{
		ApplicationName: cfg.ApplicationName,
		ServerAddress:   cfg.ServerAddress,
		Logger:          logger.Named("pyroscope").Sugar(),
		Tags:            tags,
		ProfileTypes:    types,
	})
	if err != nil {
		return nil, fmt.Errorf("start pyroscope: %w", err)
	}
	logger.Info("Pyroscope profiler started",
		zap.String("server_address", cfg.ServerAddress),
		zap.Int("profile_types", len(types)))
	return &Profiler{session: session}, nil
}

// Stop flushes the last profiles. Later calls return the first call's result.
func (p *Profiler) Stop() error {
	p.stopOnce.Do(func() {
		if p.session != nil {
			p.stopErr = p.session.Stop()
		}
	})
	return p.stopErr
}

func (p *Profiler) IsEnabled() bool { return p.session != nil }
