// Command collect scrapes listings for the selected zones and merges them
// into the local store. Per-zone failures are logged and skipped; the process
// exits zero as long as the run itself could start.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"

	"github.com/ipg/prezzogiusto/internal/apify"
	"github.com/ipg/prezzogiusto/internal/db"
	"github.com/ipg/prezzogiusto/internal/httpclient"
	"github.com/ipg/prezzogiusto/internal/immobiliare"
	"github.com/ipg/prezzogiusto/internal/listing"
	"github.com/ipg/prezzogiusto/internal/scrape"
	"github.com/ipg/prezzogiusto/internal/utils"
	"github.com/ipg/prezzogiusto/internal/webscraper"
	"github.com/ipg/prezzogiusto/internal/zones"
)

func newLogger() *slog.Logger {
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		TimeFormat: "2006-01-02 15:04:05",
	}))
}

func main() {
	var configFilePath string
	flag.StringVar(&configFilePath, "c", "config.yaml", "config file path")

	var zonesFlag string
	flag.StringVar(&zonesFlag, "zones", "", "comma-separated zone slugs")

	var areaFlag string
	flag.StringVar(&areaFlag, "area", "", "scrape all zones in an area")

	var allFlag bool
	flag.BoolVar(&allFlag, "all", false, "scrape every zone in the catalog")

	var limitFlag int
	flag.IntVar(&limitFlag, "limit", 0, "max listings per zone (0 = scraper default)")

	var scraperFlag string
	flag.StringVar(&scraperFlag, "scraper", "", "scraper strategy: mobile, apify or web")

	var dryRunFlag bool
	flag.BoolVar(&dryRunFlag, "dry-run", false, "resolve zones but skip network calls and writes")

	var pageDelayFlag int
	flag.IntVar(&pageDelayFlag, "sleep-between-pages-ms", 0, "milliseconds between page fetches")

	var zoneDelayFlag int
	flag.IntVar(&zoneDelayFlag, "sleep-between-zones-s", 0, "seconds between zones")

	flag.Parse()

	logger := newLogger()
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file, using system env")
	}

	cfg, err := newConfig(configFilePath)
	if err != nil {
		logger.Error("can't read config", "error", err)
		os.Exit(1)
	}
	if scraperFlag != "" {
		cfg.Scraper.Strategy = scraperFlag
	}
	if pageDelayFlag > 0 {
		cfg.Scraper.PageDelayMs = pageDelayFlag
	}
	if zoneDelayFlag > 0 {
		cfg.Scraper.ZoneDelaySeconds = zoneDelayFlag
	}

	store := db.New(db.Options{DataDir: cfg.Storage.DataDir})
	registry := store.Zones()

	targets, err := selectZones(registry, zonesFlag, areaFlag, allFlag)
	if err != nil {
		logger.Error("can't select zones", "error", err)
		os.Exit(1)
	}
	if len(targets) == 0 {
		printUsage(registry)
		return
	}

	httpClient := httpclient.New(time.Duration(cfg.Scraper.RequestTimeoutSeconds) * time.Second)
	scrapers := []scrape.Scraper{
		immobiliare.NewScraper(httpClient, logger),
		apify.NewScraper(nil, os.Getenv("APIFY_TOKEN"), logger),
		webscraper.NewScraper(httpClient, logger),
	}
	scraper, err := scrape.Select(cfg.Scraper.Strategy, scrapers)
	if err != nil {
		logger.Error("can't select scraper", "error", err)
		os.Exit(1)
	}

	logger.Info("starting collection",
		"scraper", scraper.Name(),
		"zones", len(targets),
		"dryRun", dryRunFlag)

	ctx := context.Background()

	if !dryRunFlag {
		printEstimate(ctx, logger, immobiliare.NewClient(httpClient), cfg, targets)
	}

	options := scrape.Options{
		Limit:     limitFlag,
		PageDelay: cfg.Scraper.PageDelayMs,
	}

	summary := struct {
		added, updated, unchanged, failedZones int
	}{}

	for i, zone := range targets {
		zone := zone
		logger.Info("collecting zone", "zone", zone.Slug, "name", zone.Name)

		if dryRunFlag {
			logger.Info("dry run, skipping", "zone", zone.Slug)
			continue
		}

		counts, err := collectZone(ctx, scraper, store, &zone, options)
		if err != nil {
			logger.Error("zone failed", "zone", zone.Slug, "error", err)
			summary.failedZones++
		} else {
			summary.added += counts.Added
			summary.updated += counts.Updated
			summary.unchanged += counts.Unchanged
		}

		if cfg.Scraper.ZoneDelaySeconds > 0 && i < len(targets)-1 {
			time.Sleep(time.Duration(cfg.Scraper.ZoneDelaySeconds) * time.Second)
		}
	}

	logger.Info("collection finished",
		"added", summary.added,
		"updated", summary.updated,
		"unchanged", summary.unchanged,
		"failedZones", summary.failedZones)
}

// collectZone runs one scrape → dedupe → merge → write pass.
func collectZone(ctx context.Context, scraper scrape.Scraper, store *db.LocalDB, zone *zones.Zone, options scrape.Options) (db.MergeCounts, error) {
	result, err := scraper.Scrape(ctx, zone, options)
	if err != nil {
		return db.MergeCounts{}, err
	}

	unique := listing.DedupeBySourceID(result.Listings)
	if len(unique) == 0 {
		slog.Warn("no listings found", "zone", zone.Slug)
		return db.MergeCounts{}, nil
	}

	snapshot := &listing.Snapshot{
		ZoneID:       zone.ID,
		ScrapedAt:    result.Metadata.ScrapedAt,
		Source:       listing.SourceImmobiliare,
		ListingCount: len(unique),
		Listings:     unique,
		Metadata: &listing.SnapshotMetadata{
			RequestedLimit: result.Metadata.RequestedLimit,
			ReturnedCount:  result.Metadata.ReturnedCount,
			HitLimit:       result.Metadata.HitLimit,
		},
	}

	counts, err := store.SaveSnapshotDeduped(snapshot)
	if err != nil {
		return db.MergeCounts{}, fmt.Errorf("can't save snapshot: %w", err)
	}

	slog.Info("zone merged",
		"zone", zone.Slug,
		"added", counts.Added,
		"updated", counts.Updated,
		"unchanged", counts.Unchanged)
	return counts, nil
}

func selectZones(registry *zones.Registry, zonesFlag string, areaFlag string, allFlag bool) ([]zones.Zone, error) {
	switch {
	case zonesFlag != "":
		slugs := strings.Split(zonesFlag, ",")
		for i := range slugs {
			slugs[i] = strings.TrimSpace(slugs[i])
		}
		return registry.BySlugs(slugs)
	case areaFlag != "":
		matched, err := registry.ByArea(areaFlag)
		if err != nil {
			return nil, err
		}
		if len(matched) == 0 {
			areas, _ := registry.Areas()
			return nil, fmt.Errorf("unknown area %q, available: %s", areaFlag, strings.Join(areas, ", "))
		}
		return matched, nil
	case allFlag:
		return registry.All()
	}
	return nil, nil
}

// printEstimate fetches live listing counts concurrently and logs how long
// the run should take at the configured page delay. Estimation failures never
// block the run.
func printEstimate(ctx context.Context, logger *slog.Logger, client *immobiliare.Client, cfg *Config, targets []zones.Zone) {
	pool := utils.NewWorkerPool(func(ctx context.Context, zone zones.Zone) (int, error) {
		count, err := client.TotalActive(ctx, &zone)
		if err != nil {
			// Unknown counts degrade the estimate, not the run.
			return -1, nil
		}
		return count, nil
	}, cfg.Scraper.CountWorkers)

	counts, err := pool.Map(ctx, targets)
	if err != nil {
		return
	}

	totalListings := 0
	unknownZones := 0
	for _, count := range counts {
		if count < 0 {
			unknownZones++
			continue
		}
		totalListings += count
	}

	const pageSize = 20
	totalPages := (totalListings + pageSize - 1) / pageSize
	apiTime := time.Duration(totalPages*cfg.Scraper.PageDelayMs) * time.Millisecond
	zoneDelays := time.Duration(cfg.Scraper.ZoneDelaySeconds*(len(targets)-1)) * time.Second

	logger.Info("run estimate",
		"totalListings", totalListings,
		"unknownZones", unknownZones,
		"pages", totalPages,
		"estimatedTime", (apiTime + zoneDelays).Round(time.Second).String())
}

func printUsage(registry *zones.Registry) {
	areas, _ := registry.Areas()
	all, _ := registry.All()

	fmt.Println("Il Prezzo Giusto - data collection")
	fmt.Println()
	flag.Usage()
	fmt.Println()
	fmt.Printf("Areas (%d):\n", len(areas))
	for _, area := range areas {
		count := 0
		for _, z := range all {
			if z.Area == area {
				count++
			}
		}
		fmt.Printf("  - %s (%d zones)\n", area, count)
	}
	fmt.Printf("Zones (%d):\n", len(all))
	for _, z := range all {
		fmt.Printf("  - %s (%s) [%s]\n", z.Slug, z.Name, z.Area)
	}
}
