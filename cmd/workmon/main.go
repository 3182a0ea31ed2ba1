// Package main is the CLI entry point for workmon.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/opspulse/workmon/internal/auth"
	"github.com/opspulse/workmon/internal/capture"
	"github.com/opspulse/workmon/internal/config"
	"github.com/opspulse/workmon/internal/daemon"
	"github.com/opspulse/workmon/internal/domain"
	"github.com/opspulse/workmon/internal/infra"
	"github.com/opspulse/workmon/internal/usecase"
)

var (
	// Version info (set via ldflags)
	Version   = "0.1.0"
	Commit    = "dev"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "workmon",
	Short: "Endpoint activity capture agent",
	Long: `workmon captures endpoint activity (keystrokes, pointer events,
application focus, idle state, browser navigation, on-demand screenshots)
under explicit permission gating, buffers it locally, and hands normalized
event batches to the ingestion collaborator.

Capture only starts once the accessibility capability is granted; optional
capabilities degrade individual features instead of blocking the session.`,
	Version: Version,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the capture agent in the foreground",
	Long: `Starts the monitoring session and the upload loop, and blocks until
SIGINT/SIGTERM. Every hook is uninstalled before the process exits.`,
	RunE: runAgent,
}

var capabilitiesCmd = &cobra.Command{
	Use:   "capabilities",
	Short: "Show the current capability snapshot",
	Long:  `Probes the three permission surfaces without side effects. Use --request to trigger the OS consent prompt for one capability.`,
	RunE:  runCapabilities,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Prints version, commit, and build time. Use --json for machine-readable output.`,
	Run:   runVersion,
}

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query activity records as a viewer",
	Long: `Runs the governance read path against a JSON activity export: the
viewer token is verified, the viewer's access scope resolved against the
directory seed, and every record filtered by its subject's consent.`,
	RunE: runQuery,
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint or verify a viewer token",
	Long: `Mints an HS256 viewer token for the governance read path, or verifies
one with --verify. The signing secret comes from WORKMON_TOKEN_SECRET.`,
	RunE: runToken,
}

var (
	requestCapability string
	jsonOutput        bool

	tokenUser   string
	tokenRole   string
	tokenDept   string
	tokenOrg    string
	tokenTTL    time.Duration
	tokenVerify string

	queryToken   string
	queryTarget  string
	queryDept    string
	queryLimit   int
	queryRecords string
)

func init() {
	capabilitiesCmd.Flags().StringVar(&requestCapability, "request", "", "Request a capability (accessibility/screen_capture/input_monitoring)")
	versionCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output version info as JSON")

	tokenCmd.Flags().StringVar(&tokenUser, "user", "", "Subject user ID")
	tokenCmd.Flags().StringVar(&tokenRole, "role", "employee", "Viewer role (employee/manager/admin/superAdmin)")
	tokenCmd.Flags().StringVar(&tokenDept, "department", "", "Department ID")
	tokenCmd.Flags().StringVar(&tokenOrg, "organization", "", "Organization ID")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", time.Hour, "Token lifetime")
	tokenCmd.Flags().StringVar(&tokenVerify, "verify", "", "Verify a token instead of minting one")

	queryCmd.Flags().StringVar(&queryToken, "token", "", "Viewer token (required)")
	queryCmd.Flags().StringVar(&queryTarget, "target", "", "Target user ID (empty means full scope)")
	queryCmd.Flags().StringVar(&queryDept, "filter-department", "", "Narrow an admin query to one department")
	queryCmd.Flags().IntVar(&queryLimit, "limit", 0, "Max records (default 50)")
	queryCmd.Flags().StringVar(&queryRecords, "records", "", "Path to a JSON activity export (required)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(capabilitiesCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(versionCmd)
}

func runAgent(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := createLogger(cfg.LogLevel)
	defer func() { _ = logger.Sync() }()

	// Shared state between producers and the consumer.
	buffer := capture.NewBoundedEventBuffer(cfg.Session.BufferCapacity)
	ring := capture.NewKeystrokeRingBuffer(cfg.Session.KeystrokeRingCapacity)
	tracker := capture.NewFocusContextTracker()

	gate := infra.NewGate(nil, nil, logger)
	procs := infra.NewProcessResolver()
	consent := infra.DefaultPrivacyPolicy()

	sources := []domain.EventSource{
		capture.NewKeyboardSource(&infra.SimulatedKeyboardHook{}, buffer, ring, logger),
		capture.NewPointerSource(&infra.SimulatedPointerHook{}, buffer, logger),
		capture.NewFocusSource(&infra.SimulatedFocusHook{}, buffer, tracker, procs, consent.AllowAppTracking, logger),
		capture.NewIdleSource(infra.SimulatedIdleProber{}, buffer, cfg.Session, consent.AllowIdleTracking, logger),
		capture.NewBrowserSource(nil, buffer, tracker, cfg.Session, consent.AllowWebsiteTracking, logger),
	}
	screenshots := capture.NewScreenshotSource(infra.SimulatedScreenGrabber{})
	sources = append(sources, screenshots)

	shots := infra.NewFileScreenshotStore(filepath.Join(cfg.DataDir, "screenshots"))
	controller := capture.NewController(gate, sources, screenshots, shots, buffer, consent, logger)

	// Encrypted spool for batches that miss the ingestion API.
	var spool domain.SpoolStore
	keys := infra.NewFileKeyProvider(cfg.DataDir)
	if key, err := keys.EnsureKey(); err != nil {
		logger.Warn("spool key unavailable, running without offline spool", zap.Error(err))
	} else if s, err := infra.NewEncryptedSpool(cfg.DataDir, key); err != nil {
		logger.Warn("encrypted spool unavailable", zap.Error(err))
	} else {
		spool = s
		defer s.Close()
	}

	ingestor := infra.NewLoggingIngestor(logger)
	agent := daemon.NewAgent(daemon.AgentConfig{
		UploadInterval:    cfg.UploadInterval,
		SpoolRetryEvery:   cfg.SpoolRetryEvery,
		HeartbeatInterval: cfg.HeartbeatInterval,
	}, buffer, ingestor, spool, logger)

	if err := controller.Start(cmd.Context()); err != nil {
		return fmt.Errorf("start monitoring: %w", err)
	}
	if degraded := controller.Degraded(); len(degraded) > 0 {
		fmt.Printf("Running in degraded mode, disabled sources: %v\n", degraded)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("received shutdown signal")
		cancel()
	}()

	fmt.Printf("workmon running (session %s). Press Ctrl-C to stop.\n", agent.SessionID())
	err = agent.Run(ctx)

	if stopErr := controller.Stop(); stopErr != nil {
		logger.Error("stop monitoring", zap.Error(stopErr))
	}
	if err == context.Canceled {
		return nil
	}
	return err
}

func runCapabilities(cmd *cobra.Command, args []string) error {
	logger := createLogger("info")
	defer func() { _ = logger.Sync() }()

	gate := infra.NewGate(nil, nil, logger)

	if requestCapability != "" {
		c := domain.Capability(requestCapability)
		switch c {
		case domain.CapabilityAccessibility, domain.CapabilityScreenCapture, domain.CapabilityInputMonitoring:
			gate.Request(c)
			// The prompt is asynchronous; give the OS a beat before re-probing.
			time.Sleep(200 * time.Millisecond)
		default:
			return fmt.Errorf("unknown capability %q", requestCapability)
		}
	}

	snapshot := gate.Query()
	fmt.Println("\n=== Capability Snapshot ===")
	fmt.Printf("  accessibility:    %v\n", snapshot.Accessibility)
	fmt.Printf("  screen capture:   %v\n", snapshot.ScreenCapture)
	fmt.Printf("  input monitoring: %v\n", snapshot.InputMonitoring)
	fmt.Println("===========================")
	if !snapshot.Accessibility {
		fmt.Println("\nAccessibility is required before 'workmon run' can start.")
	}
	return nil
}

func runQuery(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if queryToken == "" || queryRecords == "" {
		return fmt.Errorf("--token and --records are required")
	}
	if cfg.DirectorySeedPath == "" {
		return fmt.Errorf("set WORKMON_DIRECTORY_SEED to the directory seed file")
	}

	verifier, err := auth.NewVerifier([]byte(cfg.TokenSecret))
	if err != nil {
		return fmt.Errorf("set WORKMON_TOKEN_SECRET: %w", err)
	}
	viewer, err := verifier.ParseRequester(queryToken)
	if err != nil {
		return fmt.Errorf("verify token: %w", err)
	}

	directory, err := infra.LoadDirectory(cfg.DirectorySeedPath)
	if err != nil {
		return err
	}
	reader, err := infra.LoadActivityRecords(queryRecords)
	if err != nil {
		return err
	}

	logger := createLogger(cfg.LogLevel)
	defer func() { _ = logger.Sync() }()

	svc := usecase.NewQueryService(
		usecase.NewResolver(directory),
		usecase.NewFilter(),
		infra.NewMemoryPolicyStore(),
		reader,
		logger,
	)

	result, err := svc.Query(cmd.Context(), viewer, usecase.ActivityQuery{
		TargetUserID:     queryTarget,
		DepartmentFilter: queryDept,
		Limit:            queryLimit,
	})
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(result.Records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode records: %w", err)
	}
	fmt.Printf("scope: %s\n%s\n", result.Scope, out)
	return nil
}

func runToken(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	verifier, err := auth.NewVerifier([]byte(cfg.TokenSecret))
	if err != nil {
		return fmt.Errorf("set WORKMON_TOKEN_SECRET: %w", err)
	}

	if tokenVerify != "" {
		req, err := verifier.ParseRequester(tokenVerify)
		if err != nil {
			return fmt.Errorf("verify token: %w", err)
		}
		fmt.Printf("subject:      %s\nrole:         %s\ndepartment:   %s\norganization: %s\n",
			req.ID, req.Role, req.DepartmentID, req.OrganizationID)
		return nil
	}

	if tokenUser == "" {
		return fmt.Errorf("--user is required when minting")
	}
	role := domain.Role(tokenRole)
	if !role.Valid() {
		return fmt.Errorf("unknown role %q", tokenRole)
	}

	token, err := verifier.Mint(domain.Requester{
		ID:             tokenUser,
		Role:           role,
		DepartmentID:   tokenDept,
		OrganizationID: tokenOrg,
	}, tokenTTL)
	if err != nil {
		return fmt.Errorf("mint token: %w", err)
	}
	fmt.Println(token)
	return nil
}

func createLogger(level string) *zap.Logger {
	config := zap.NewProductionConfig()
	if parsed, err := zapcore.ParseLevel(level); err == nil {
		config.Level = zap.NewAtomicLevelAt(parsed)
	}
	config.EncoderConfig.TimeKey = "time"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := config.Build()
	if err != nil {
		logger, _ = zap.NewProduction()
	}
	return logger
}

func runVersion(cmd *cobra.Command, args []string) {
	if jsonOutput {
		fmt.Printf(`{"version":"%s","commit":"%s","build_time":"%s"}`+"\n",
			Version, Commit, BuildTime)
	} else {
		fmt.Printf("workmon %s (commit: %s, built: %s)\n",
			Version, Commit, BuildTime)
	}
}
