package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/hpungsan/sicon/internal/catalog"
	"github.com/hpungsan/sicon/internal/cdn"
	"github.com/hpungsan/sicon/internal/config"
	"github.com/hpungsan/sicon/internal/db"
	"github.com/hpungsan/sicon/internal/ops"
	"github.com/hpungsan/sicon/internal/render"
)

// newService wires the operations layer from cfg. The returned func closes
// the history database, if one was opened.
func newService(baseDir string, cfg *config.Config, logger *log.Logger) (*ops.Service, func(), error) {
	capability := render.DetectCapability(cfg.PackagerCommand)
	if capability.Packager == nil {
		logger.Printf("packager %q not found; icns output unavailable", cfg.PackagerCommand)
	}

	policy, err := render.NewPolicy(capability, cfg.DefaultFormat)
	if err != nil {
		return nil, nil, fmt.Errorf("default_format: %w", err)
	}

	client := cdn.NewClient(cfg.DataURL, cfg.CDNURL, time.Duration(cfg.HTTPTimeoutSeconds)*time.Second)

	svc := &ops.Service{
		Catalog:     &loggedCatalog{store: catalog.NewStore(cfg.CacheFile(), client), logger: logger},
		Icons:       &loggedIcons{client: client, logger: logger},
		Policy:      policy,
		Exporter:    render.NewExporter(capability),
		Threshold:   float64(cfg.FuzzyThreshold),
		DefaultSize: cfg.DefaultSize,
	}

	closeFn := func() {}
	if !cfg.DisableHistory {
		ledger, err := db.Init(baseDir)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize history database: %w", err)
		}
		svc.Ledger = ledger
		closeFn = func() { ledger.Close() }
	}

	return svc, closeFn, nil
}

// loggedCatalog logs where the catalog came from and how long loading took.
type loggedCatalog struct {
	store  *catalog.Store
	logger *log.Logger
}

func (l *loggedCatalog) Load(ctx context.Context) (*catalog.Catalog, catalog.LoadInfo, error) {
	start := time.Now()
	cat, info, err := l.store.Load(ctx)
	if info.CacheErr != nil {
		l.logger.Printf("catalog cache %s: %v", l.store.CachePath, info.CacheErr)
	}
	if err != nil {
		return nil, info, err
	}
	source := "fetched"
	if info.FromCache {
		source = "cache " + l.store.CachePath
	}
	l.logger.Printf("catalog: %d icons from %s in %s", cat.Len(), source, time.Since(start).Round(time.Millisecond))
	return cat, info, nil
}

// loggedIcons logs each icon request.
type loggedIcons struct {
	client *cdn.Client
	logger *log.Logger
}

func (l *loggedIcons) FetchSVG(ctx context.Context, slug, hex string) ([]byte, error) {
	start := time.Now()
	doc, err := l.client.FetchSVG(ctx, slug, hex)
	if err != nil {
		l.logger.Printf("GET %s failed after %s: %v", l.client.IconURL(slug, hex), time.Since(start).Round(time.Millisecond), err)
		return nil, err
	}
	l.logger.Printf("GET %s: %d bytes in %s", l.client.IconURL(slug, hex), len(doc), time.Since(start).Round(time.Millisecond))
	return doc, nil
}

func (l *loggedIcons) IconURL(slug, hex string) string {
	return l.client.IconURL(slug, hex)
}
