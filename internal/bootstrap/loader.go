// Package bootstrap decides, once at dashboard mount, which screen to show:
// the connect-your-source screen, the onboarding wizard (fresh or resumed), or
// the ready dashboard. It also owns priming and refreshing the dashboard's
// working data set.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/glintlabs/glint/internal/model"
	"github.com/glintlabs/glint/internal/service"
)

// ConnectionState is the tri-state result of the source-connection check.
type ConnectionState string

const (
	// ConnectionUnknown means the check has not settled yet.
	ConnectionUnknown ConnectionState = "unknown"
	// ConnectionAbsent means no source system is connected.
	ConnectionAbsent ConnectionState = "absent"
	// ConnectionPresent means a source system is connected.
	ConnectionPresent ConnectionState = "present"
)

// Route is the mount-time screen decision.
type Route string

const (
	// RouteNoSource shows the connect-your-source screen.
	RouteNoSource Route = "no-source"
	// RouteFreshOnboarding starts the wizard from analyzing.
	RouteFreshOnboarding Route = "fresh-onboarding"
	// RouteResumeOnboarding rehydrates the wizard at focus selection from
	// the persisted configuration.
	RouteResumeOnboarding Route = "resume-onboarding"
	// RouteDashboard goes straight to the ready dashboard.
	RouteDashboard Route = "dashboard"
)

// Decision is the settled outcome of Load: the route plus the inputs it was
// derived from.
type Decision struct {
	Route      Route
	Connection ConnectionState
	Config     *model.DashboardConfig
}

// Loader performs the mount-time routing decision and manages the dashboard's
// primed working data.
type Loader struct {
	gateway service.Gateway
	logger  *slog.Logger

	mu   sync.Mutex
	data model.DashboardData
}

// New creates a loader backed by the given gateway.
func New(gw service.Gateway) *Loader {
	return &Loader{
		gateway: gw,
		logger:  slog.Default().With("component", "bootstrap"),
	}
}

// Load fetches connection status and persisted configuration concurrently,
// waits for both, and returns the routing decision. Nothing is decided on
// partial results. A failed connection check aborts the load; a failed config
// fetch degrades to "no config" since a fresh run can recover from that.
func (l *Loader) Load(ctx context.Context) (*Decision, error) {
	var (
		wg        sync.WaitGroup
		connected bool
		connErr   error
		cfg       *model.DashboardConfig
		cfgErr    error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		connected, connErr = l.gateway.GetConnectionStatus(ctx)
	}()
	go func() {
		defer wg.Done()
		cfg, cfgErr = l.gateway.GetConfig(ctx)
	}()
	wg.Wait()

	if connErr != nil {
		return nil, fmt.Errorf("checking source connection: %w", connErr)
	}
	if cfgErr != nil {
		l.logger.Warn("Config fetch failed, treating as absent", "error", cfgErr)
		cfg = nil
	}

	decision := &Decision{
		Connection: ConnectionAbsent,
		Config:     cfg,
	}
	if connected {
		decision.Connection = ConnectionPresent
	}
	decision.Route = l.route(decision.Connection, cfg)

	l.logger.Info("Bootstrap decision",
		"route", decision.Route,
		"connection", decision.Connection,
		"has_config", cfg != nil)
	return decision, nil
}

func (l *Loader) route(conn ConnectionState, cfg *model.DashboardConfig) Route {
	if conn != ConnectionPresent {
		return RouteNoSource
	}
	if cfg == nil {
		return RouteFreshOnboarding
	}

	switch cfg.Step {
	case model.StepMarkerComplete:
		return RouteDashboard
	case model.StepMarkerSelection, model.StepMarkerRefinement:
		// Resuming needs the persisted candidate list to rehydrate from.
		if len(cfg.Candidates) == 0 {
			l.logger.Warn("Persisted config has no candidates, restarting onboarding",
				"saved_step", cfg.Step)
			return RouteFreshOnboarding
		}
		return RouteResumeOnboarding
	default:
		l.logger.Warn("Unrecognized config step marker, restarting onboarding",
			"saved_step", cfg.Step)
		return RouteFreshOnboarding
	}
}

// Prime populates the dashboard's working set: widgets, insights, and data
// usage are fetched concurrently and land independently, so one failing call
// never blocks the others' data. The last-refreshed timestamp is set once,
// after all three have settled.
func (l *Loader) Prime(ctx context.Context) model.DashboardData {
	var (
		wg       sync.WaitGroup
		slotMu   sync.Mutex
		widgets  []model.Widget
		insights []model.Insight
		usage    *model.DataUsage
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		w, err := l.gateway.GetWidgets(ctx)
		if err != nil {
			l.logger.Warn("Widget fetch failed", "error", err)
			return
		}
		slotMu.Lock()
		widgets = w
		slotMu.Unlock()
	}()
	go func() {
		defer wg.Done()
		ins, err := l.gateway.GetInsights(ctx)
		if err != nil {
			l.logger.Warn("Insight fetch failed", "error", err)
			return
		}
		slotMu.Lock()
		insights = ins
		slotMu.Unlock()
	}()
	go func() {
		defer wg.Done()
		u, err := l.gateway.GetDataUsage(ctx)
		if err != nil {
			l.logger.Warn("Data usage fetch failed", "error", err)
			return
		}
		slotMu.Lock()
		usage = u
		slotMu.Unlock()
	}()
	wg.Wait()

	l.mu.Lock()
	defer l.mu.Unlock()

	// Failed slots keep whatever a previous prime populated.
	if widgets != nil {
		l.data.Widgets = widgets
	}
	if insights != nil {
		l.data.Insights = insights
	}
	if usage != nil {
		l.data.Usage = usage
	}
	l.data.SampleMode = false
	l.data.LastRefreshed = time.Now()
	return l.data
}

// UseSample replaces the working set with a non-live sample payload.
func (l *Loader) UseSample(sample model.DashboardData) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.data = sample
	l.data.LastRefreshed = time.Now()
}

// Data returns the current working set.
func (l *Loader) Data() model.DashboardData {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.data
}

// Reconfigure clears the persisted configuration and the primed working data
// so onboarding can restart from analyzing without a restart of the client.
func (l *Loader) Reconfigure(ctx context.Context) error {
	if err := l.gateway.ClearConfig(ctx); err != nil {
		return fmt.Errorf("clearing persisted config: %w", err)
	}

	l.mu.Lock()
	l.data = model.DashboardData{}
	l.mu.Unlock()

	l.logger.Info("Cleared dashboard configuration")
	return nil
}
