// Package plugin runs the report pipeline as a Gauge reporter plugin. Gauge
// streams execution events over gRPC; only the final suite result is used.
package plugin

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"sync"

	"github.com/getgauge/gauge-proto/go/gauge_messages"
	"google.golang.org/grpc"

	"github.com/your-org/cucumber-report-enhanced/pkg/config"
	"github.com/your-org/cucumber-report-enhanced/pkg/generator"
	"github.com/your-org/cucumber-report-enhanced/pkg/logger"
	"github.com/your-org/cucumber-report-enhanced/pkg/trace"
)

// maxMessageSize allows suite results with large screenshots
const maxMessageSize = 1024 * 1024 * 1024

// Plugin implements the Gauge Reporter service
type Plugin struct {
	gauge_messages.UnimplementedReporterServer
	config   *config.Config
	kinds    []string
	server   *grpc.Server
	out      io.Writer
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewPlugin creates a plugin that renders kinds (all when empty) into the
// directories configured in cfg.
func NewPlugin(cfg *config.Config, kinds ...string) *Plugin {
	return &Plugin{
		config:   cfg,
		kinds:    kinds,
		out:      os.Stdout,
		stopChan: make(chan struct{}),
	}
}

// ReportsDir resolves where Gauge wants reports written, from the values of
// GAUGE_PROJECT_ROOT and gauge_reports_dir.
func ReportsDir(projectRoot, reportsDir string) string {
	if projectRoot == "" {
		projectRoot = "."
	}
	if reportsDir == "" {
		return filepath.Join(projectRoot, "reports")
	}
	if !filepath.IsAbs(reportsDir) {
		return filepath.Join(projectRoot, reportsDir)
	}
	return reportsDir
}

// Start serves the Reporter service on a free local port and blocks until
// Gauge sends Kill.
func (p *Plugin) Start() error {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	p.server = grpc.NewServer(grpc.MaxRecvMsgSize(maxMessageSize))
	gauge_messages.RegisterReporterServer(p.server, p)

	go func() {
		if err := p.server.Serve(listener); err != nil {
			logger.Errorf("gRPC server error: %v", err)
		}
		p.stop()
	}()

	// Gauge scans stdout for this exact line
	port := listener.Addr().(*net.TCPAddr).Port
	if _, err := fmt.Fprintf(p.out, "Listening on port:%d\n", port); err != nil {
		return fmt.Errorf("failed to announce port: %w", err)
	}
	logger.Infof("gRPC server ready on port %d", port)

	<-p.stopChan
	logger.Info("Plugin shutdown complete")
	return nil
}

func (p *Plugin) stop() {
	p.stopOnce.Do(func() { close(p.stopChan) })
}

func (p *Plugin) NotifyExecutionStarting(ctx context.Context, info *gauge_messages.ExecutionStartingRequest) (*gauge_messages.Empty, error) {
	logger.Info("Execution starting...")
	return &gauge_messages.Empty{}, nil
}

func (p *Plugin) NotifyExecutionEnding(ctx context.Context, result *gauge_messages.ExecutionEndingRequest) (*gauge_messages.Empty, error) {
	logger.Info("Execution ending, waiting for suite result...")
	return &gauge_messages.Empty{}, nil
}

// Per-item events are acknowledged; the suite result carries everything.
func (p *Plugin) NotifySpecExecutionStarting(ctx context.Context, info *gauge_messages.SpecExecutionStartingRequest) (*gauge_messages.Empty, error) {
	return &gauge_messages.Empty{}, nil
}

func (p *Plugin) NotifySpecExecutionEnding(ctx context.Context, result *gauge_messages.SpecExecutionEndingRequest) (*gauge_messages.Empty, error) {
	return &gauge_messages.Empty{}, nil
}

func (p *Plugin) NotifyScenarioExecutionStarting(ctx context.Context, info *gauge_messages.ScenarioExecutionStartingRequest) (*gauge_messages.Empty, error) {
	return &gauge_messages.Empty{}, nil
}

func (p *Plugin) NotifyScenarioExecutionEnding(ctx context.Context, result *gauge_messages.ScenarioExecutionEndingRequest) (*gauge_messages.Empty, error) {
	return &gauge_messages.Empty{}, nil
}

func (p *Plugin) NotifyStepExecutionStarting(ctx context.Context, info *gauge_messages.StepExecutionStartingRequest) (*gauge_messages.Empty, error) {
	return &gauge_messages.Empty{}, nil
}

func (p *Plugin) NotifyStepExecutionEnding(ctx context.Context, result *gauge_messages.StepExecutionEndingRequest) (*gauge_messages.Empty, error) {
	return &gauge_messages.Empty{}, nil
}

func (p *Plugin) NotifyConceptExecutionStarting(ctx context.Context, info *gauge_messages.ConceptExecutionStartingRequest) (*gauge_messages.Empty, error) {
	return &gauge_messages.Empty{}, nil
}

func (p *Plugin) NotifyConceptExecutionEnding(ctx context.Context, result *gauge_messages.ConceptExecutionEndingRequest) (*gauge_messages.Empty, error) {
	return &gauge_messages.Empty{}, nil
}

// NotifySuiteResult converts the suite into a cucumber trace, saves it next
// to the reports and renders them.
func (p *Plugin) NotifySuiteResult(ctx context.Context, result *gauge_messages.SuiteExecutionResult) (*gauge_messages.Empty, error) {
	suite := result.GetSuiteResult()
	if suite == nil {
		logger.Warnf("Suite result was empty, no reports generated")
		return &gauge_messages.Empty{}, nil
	}

	tr := trace.FromGauge(suite)
	tracePath := p.config.TracePath()
	if err := trace.Write(tracePath, tr); err != nil {
		logger.Errorf("Failed to save trace: %v", err)
		return &gauge_messages.Empty{}, err
	}

	artifacts, err := generator.NewGenerator(p.config).Generate(tr, tracePath, p.kinds...)
	if err != nil {
		logger.Errorf("Failed to generate reports: %v", err)
		return &gauge_messages.Empty{}, err
	}
	for _, a := range artifacts {
		logger.WithField("kind", a.Kind).Infof("Report written to %s", a.Path)
	}
	return &gauge_messages.Empty{}, nil
}

// Kill stops the plugin
func (p *Plugin) Kill(ctx context.Context, request *gauge_messages.KillProcessRequest) (*gauge_messages.Empty, error) {
	logger.Info("Shutting down plugin...")
	if p.server != nil {
		// GracefulStop waits for this very call, so it cannot run inline
		go p.server.GracefulStop()
	}
	p.stop()
	return &gauge_messages.Empty{}, nil
}
