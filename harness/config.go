package harness

import (
	"time"

	"github.com/example/container-harness/internal/harnesscfg"
	"github.com/example/container-harness/internal/logging"
)

// LoadConfig reads a harness YAML config (empty path: defaults and HARNESS_* env
// overrides), applies its logging settings process-wide and returns the matching
// run options and Docker probe.
func LoadConfig(path string) ([]Option, Probe, error) {
	cfg, err := harnesscfg.Load(path)
	if err != nil {
		return nil, nil, err
	}
	logging.Init(cfg.Logging)
	opts, probe := FromConfig(cfg)
	return opts, probe, nil
}

// FromConfig maps an already loaded config to run options and a Docker probe.
func FromConfig(cfg *harnesscfg.Config) ([]Option, Probe) {
	opts := []Option{
		WithTerminateTimeout(ms(cfg.Docker.TerminateTimeoutMs)),
		WithStartupTimeout(ms(cfg.Docker.StartupTimeoutMs)),
	}
	if cfg.Properties.ExportEnv {
		opts = append(opts, WithEnvExport())
	}
	return opts, DockerProbe{Timeout: ms(cfg.Docker.ProbeTimeoutMs)}
}

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }
