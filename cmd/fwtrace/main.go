// cmd/fwtrace/main.go
package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"fwtrace.io/internal/config"
	"fwtrace.io/internal/enrich"
	"fwtrace.io/internal/geoip"
	"fwtrace.io/internal/ifindex"
	"fwtrace.io/internal/logging"
	"fwtrace.io/internal/netcache"
	"fwtrace.io/internal/output"
	"fwtrace.io/internal/pgsqlpool"
	"fwtrace.io/internal/registry"
	"fwtrace.io/internal/revdns"
	"fwtrace.io/internal/source"
	"fwtrace.io/internal/storage"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// A positional argument is a log file to read, overriding the env source
	if len(os.Args) > 1 {
		cfg.Source.Mode = "file"
		cfg.Source.Path = os.Args[1]
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	// Initialize logging. Rendered records go to stdout, operational logs
	// to files and stderr.
	logConfig := logging.DefaultConfig()
	logConfig.Level = logging.LogLevel(strings.ToUpper(cfg.LogLevel))
	logConfig.EnableConsole = true
	if err := logging.Initialize(logConfig); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer logging.GetLogger().Close()

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logging.Info("main", "Received shutdown signal", "signal", sig.String())
		cancel()
	}()

	// Snapshot local interfaces; local addresses never hit the registry
	snap, err := ifindex.SystemSnapshot()
	if err != nil {
		log.Fatalf("Failed to read local interfaces: %v", err)
	}
	index := ifindex.New(snap)
	logging.Info("main", "Local interface snapshot taken", "interfaces", len(snap))

	// Registry client and the ownership cache in front of it
	regClient := registry.NewClient(&registry.Config{
		BaseURL:       cfg.Registry.BaseURL,
		Timeout:       cfg.Registry.Timeout,
		MinTLSVersion: cfg.Registry.TLSVersion(),
	})
	cache := netcache.New(regClient, index)

	// Reverse DNS is optional: without a resolver config, host names are
	// simply omitted
	var hosts enrich.HostResolver
	if resolver, err := revdns.NewClient(); err != nil {
		logging.Warn("main", "Reverse DNS disabled", "error", err.Error())
	} else {
		hosts = resolver
	}

	// Optional local GeoIP fallback
	var geo enrich.GeoLocator
	if cfg.GeoIP.DBPath != "" {
		db, err := geoip.Open(cfg.GeoIP.DBPath)
		if err != nil {
			logging.Warn("main", "GeoIP fallback disabled", "error", err.Error())
		} else {
			defer db.Close()
			geo = db
		}
	}

	enricher := enrich.NewEnricher(cache, hosts, geo)

	// Select the line source
	src, closeSource, err := openSource(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open log source: %v", err)
	}
	defer closeSource()

	logging.Info("main", "Log source opened",
		"mode", cfg.Source.Mode, "path", cfg.Source.Path)

	// Select the renderer
	var renderer output.Renderer
	switch cfg.OutputFormat {
	case "json":
		renderer = output.NewJSONRenderer(os.Stdout)
	default:
		renderer = output.NewTextRenderer(os.Stdout)
	}

	// Optional PostgreSQL archive
	var archive *storage.Archive
	if cfg.Archive.Enabled {
		pool := pgsqlpool.NewPool()
		defer pool.Close()

		archiveConfig := &storage.Config{
			Host:            cfg.Archive.Host,
			Port:            cfg.Archive.Port,
			User:            cfg.Archive.User,
			Password:        cfg.Archive.Password,
			DBName:          cfg.Archive.DBName,
			SSLMode:         cfg.Archive.SSLMode,
			MaxOpenConns:    cfg.Archive.MaxOpenConns,
			MaxIdleConns:    cfg.Archive.MaxIdleConns,
			ConnMaxLifetime: cfg.Archive.ConnMaxLifetime,
			ConnMaxIdleTime: cfg.Archive.ConnMaxIdleTime,
		}

		archive, err = storage.NewArchive(ctx, pool, cfg.Archive.ConnectionName, archiveConfig)
		if err != nil {
			log.Fatalf("Failed to create archive: %v", err)
		}
		if err := archive.EnsureSchema(ctx); err != nil {
			log.Fatalf("Failed to prepare archive schema: %v", err)
		}

		logging.Info("main", "Archive enabled",
			"host", cfg.Archive.Host, "database", cfg.Archive.DBName)
	}

	// Start statistics reporting
	go reportStats(ctx, cache)

	// Main loop: read, enrich, render, archive
	stream := enrich.NewStream(src, enricher)
	for stream.Next(ctx) {
		rec := stream.Record()

		if err := renderer.Render(rec); err != nil {
			log.Fatalf("Failed to write record: %v", err)
		}

		if rec.Src.Err != "" {
			logging.LogRegistryFailure(rec.Src.IP, rec.Src.Err)
		}
		if rec.Dst.Err != "" {
			logging.LogRegistryFailure(rec.Dst.IP, rec.Dst.Err)
		}

		if archive != nil {
			if err := archive.Store(ctx, rec); err != nil {
				logging.LogArchiveFailure(rec.TS, err)
			}
		}

		logging.LogRecord(rec.Action, rec.Src.IP, rec.Dst.IP, rec.Dst.Iface)
	}

	if err := renderer.Close(); err != nil {
		log.Fatalf("Failed to finish output: %v", err)
	}

	stats := cache.Stats()
	logging.Info("main", "Stream finished",
		"cache_entries", stats.Entries,
		"remote_lookups", stats.RemoteLookups,
		"hit_rate", stats.HitRate)

	if err := stream.Err(); err != nil {
		var exitErr *source.UpstreamExitError
		switch {
		case errors.As(err, &exitErr):
			// Mirror the upstream exit status
			logging.Error("main", "Log source exited", err)
			os.Exit(exitErr.Status)
		case errors.Is(err, context.Canceled):
			// Shutdown signal, clean exit
		default:
			log.Fatalf("Stream failed: %v", err)
		}
	}
}

// openSource creates the configured line source. The returned closer is
// never nil.
func openSource(ctx context.Context, cfg *config.Config) (enrich.LineSource, func() error, error) {
	switch cfg.Source.Mode {
	case "follow":
		parts := strings.Fields(cfg.Source.FollowCommand)
		src, err := source.NewCommandSource(ctx, parts[0], parts[1:]...)
		if err != nil {
			return nil, nil, err
		}
		return src, src.Close, nil

	case "redis":
		src, err := source.NewRedisSource(cfg.Source.RedisAddr, cfg.Source.RedisQueue)
		if err != nil {
			return nil, nil, err
		}
		return src, src.Close, nil

	default:
		src, err := source.NewFileSource(cfg.Source.Path)
		if err != nil {
			return nil, nil, err
		}
		return src, src.Close, nil
	}
}

// reportStats periodically reports ownership cache statistics
func reportStats(ctx context.Context, cache *netcache.Cache) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := cache.Stats()
			logging.Info("stats", "Ownership cache",
				"hits", stats.Hits,
				"misses", stats.Misses,
				"remote_lookups", stats.RemoteLookups,
				"entries", stats.Entries,
				"hit_rate", stats.HitRate)
		}
	}
}
