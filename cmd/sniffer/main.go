package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgnsrekt/video_agent/internal/api"
	"github.com/dgnsrekt/video_agent/internal/capture"
	"github.com/dgnsrekt/video_agent/internal/cdp"
	"github.com/dgnsrekt/video_agent/internal/config"
	"github.com/dgnsrekt/video_agent/internal/download"
	"github.com/dgnsrekt/video_agent/internal/engine"
	"github.com/dgnsrekt/video_agent/internal/feed"
	"github.com/dgnsrekt/video_agent/internal/netutil"
	"github.com/dgnsrekt/video_agent/internal/probe"
	"github.com/dgnsrekt/video_agent/internal/service"
	"github.com/dgnsrekt/video_agent/internal/storage"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := setupLogger(cfg.LogLevel, cfg.LogFile); err != nil {
		_, _ = io.WriteString(os.Stderr, "logger setup failed: "+err.Error()+"\n")
		os.Exit(1)
	}

	slog.Info("sniffer config loaded",
		"cdp_url", cfg.GetCDPURL(),
		"tab_url_filter", cfg.TabURLFilter,
		"bind_addr", cfg.BindAddr,
		"port_auto_fallback", cfg.PortAutoFallback,
		"data_dir", cfg.DataDir,
		"persist_links", cfg.PersistLinks,
		"download_dir", cfg.DownloadDir,
		"log_level", cfg.LogLevel,
		"log_file", cfg.LogFile,
	)

	bindAddr, err := netutil.SelectBindAddr(cfg.BindAddr, cfg.PortCandidates, cfg.PortAutoFallback)
	if err != nil {
		slog.Error("failed to select bind address", "preferred", cfg.BindAddr, "error", err)
		os.Exit(1)
	}

	fetchClient := &http.Client{Timeout: time.Duration(cfg.FetchTimeoutMS) * time.Millisecond}
	services := engine.Services{
		Manifests: probe.NewFetcher(fetchClient),
		Sizes:     probe.NewFetcher(fetchClient),
		Probes:    probe.NewProber(fetchClient),
	}

	broker := feed.NewBroker()
	sinks := []engine.Sink{broker}

	var linkLog *storage.LinkLog
	if cfg.PersistLinks {
		linkLog = storage.NewLinkLog(cfg.DataDir, cfg.BufferSize, cfg.MaxFileSizeMB)
		sinks = append(sinks, linkLog)
		defer linkLog.Close()
	}

	eng := engine.New(services, sinks...)
	eng.Start()
	defer eng.Close()

	mediaObs := capture.NewMediaObserver(eng)
	netObs := capture.NewNetworkObserver(eng)
	tabRegistry := cdp.NewTabRegistry()

	cdpClient := cdp.NewClient(cfg, mediaObs, netObs, tabRegistry)
	if err := cdpClient.Connect(context.Background()); err != nil {
		slog.Error("failed to connect to browser", "cdp_url", cfg.GetCDPURL(), "error", err)
		os.Exit(1)
	}
	defer func() { _ = cdpClient.Close() }()

	downloads := download.NewManager(nil, cfg.DownloadDir, download.Settings{
		Subfolder:        cfg.DownloadSubfolder,
		PromptBeforeSave: cfg.PromptBeforeSave,
	})

	svc := service.New(eng, probe.NewProber(fetchClient), downloads)
	h := api.NewServer(svc, feed.WSHandler(broker))

	srv := &http.Server{Addr: bindAddr, Handler: h}

	go func() {
		slog.Info("sniffer listening", "addr", bindAddr, "docs", "http://"+bindAddr+"/docs")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("sniffer server failed", "error", err)
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("sniffer shutdown failed", "error", err)
	}
}

func setupLogger(level, filename string) error {
	if err := os.MkdirAll("logs", 0o755); err != nil {
		return err
	}

	logWriter := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    25,
		MaxBackups: 10,
		MaxAge:     14,
		Compress:   true,
	}

	var slogLevel slog.Level
	switch level {
	case "debug":
		slogLevel = slog.LevelDebug
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}

	h := slog.NewTextHandler(io.MultiWriter(os.Stdout, logWriter), &slog.HandlerOptions{Level: slogLevel})
	slog.SetDefault(slog.New(h))
	return nil
}
