package cmd

import (
	"github.com/Iron-Ham/foreman/internal/agent"
	"github.com/Iron-Ham/foreman/internal/claim"
	"github.com/Iron-Ham/foreman/internal/config"
	"github.com/Iron-Ham/foreman/internal/coordfs"
	"github.com/Iron-Ham/foreman/internal/coordlog"
	"github.com/Iron-Ham/foreman/internal/liveness"
	"github.com/Iron-Ham/foreman/internal/logging"
	"github.com/Iron-Ham/foreman/internal/quota"
)

// coordEnv bundles everything a coordination command needs: the resolved
// configuration, the agent identity, and accessors over the coordination
// root. Built once per command invocation.
type coordEnv struct {
	cfg     *config.Config
	layout  coordfs.Layout
	agentID string
	log     *logging.Logger
}

// newCoordEnv resolves configuration and agent identity for a command.
func newCoordEnv() (*coordEnv, error) {
	cfg := config.Get()
	layout := coordfs.NewLayout(cfg.Paths.CoordinationDir)
	agentID := agent.ResolveID(cfg.Agent.ID)

	log := logging.NopLogger()
	if cfg.Logging.Enabled && layout.Exists() {
		l, err := logging.NewLogger(layout.DebugLogPath(), cfg.Logging.Level)
		if err == nil {
			log = l
		}
		// A broken debug log never blocks coordination; fall through
		// with the nop logger.
	}

	return &coordEnv{
		cfg:     cfg,
		layout:  layout,
		agentID: agentID,
		log:     log.WithAgent(agentID),
	}, nil
}

func (e *coordEnv) close() {
	_ = e.log.Close()
}

func (e *coordEnv) engine() *claim.Engine {
	return claim.NewEngine(e.layout,
		claim.WithLockTimeout(e.cfg.Lock.Timeout()),
		claim.WithPollInterval(e.cfg.Lock.PollInterval()),
	)
}

func (e *coordEnv) reaper() *liveness.Reaper {
	return liveness.NewReaper(e.layout,
		liveness.WithLockTimeout(e.cfg.Lock.Timeout()),
		liveness.WithPollInterval(e.cfg.Lock.PollInterval()),
	)
}

func (e *coordEnv) heartbeats() *liveness.Heartbeats {
	return liveness.NewHeartbeats(e.layout)
}

func (e *coordEnv) quota() *quota.Tracker {
	return quota.NewTracker(e.layout, e.cfg.Lock.Timeout())
}

func (e *coordEnv) coordLog() *coordlog.Log {
	return coordlog.New(e.layout, e.cfg.Lock.Timeout())
}
