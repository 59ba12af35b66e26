// Command counts reports stored vs live listing counts and price statistics
// per zone. Lightweight dashboard: stored counts never hydrate full listings.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"

	"github.com/ipg/prezzogiusto/internal/db"
	"github.com/ipg/prezzogiusto/internal/httpclient"
	"github.com/ipg/prezzogiusto/internal/immobiliare"
	"github.com/ipg/prezzogiusto/internal/utils"
	"github.com/ipg/prezzogiusto/internal/zones"
)

func main() {
	var configFilePath string
	flag.StringVar(&configFilePath, "c", "config.yaml", "config file path")

	var zonesFlag string
	flag.StringVar(&zonesFlag, "zones", "", "comma-separated zone slugs")

	var areaFlag string
	flag.StringVar(&areaFlag, "area", "", "restrict to one area")

	var jsonFlag bool
	flag.BoolVar(&jsonFlag, "json", false, "print the report as JSON")

	var sheetsFlag bool
	flag.BoolVar(&sheetsFlag, "sheets", false, "append the report to the configured Google Sheet")

	var offlineFlag bool
	flag.BoolVar(&offlineFlag, "offline", false, "skip live website counts")

	flag.Parse()

	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		TimeFormat: "2006-01-02 15:04:05",
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file, using system env")
	}

	cfg, err := newConfig(configFilePath)
	if err != nil {
		logger.Error("can't read config", "error", err)
		os.Exit(1)
	}

	store := db.New(db.Options{DataDir: cfg.Storage.DataDir})
	registry := store.Zones()

	targets, err := selectZones(registry, zonesFlag, areaFlag)
	if err != nil {
		logger.Error("can't select zones", "error", err)
		os.Exit(1)
	}
	if len(targets) == 0 {
		logger.Error("no zones matched")
		os.Exit(1)
	}

	client := immobiliare.NewClient(
		httpclient.New(time.Duration(cfg.Scraper.RequestTimeoutSeconds) * time.Second))

	pool := utils.NewWorkerPool(func(ctx context.Context, zone zones.Zone) (zoneReport, error) {
		return buildReport(ctx, store, client, &zone, offlineFlag), nil
	}, cfg.Scraper.CountWorkers)
	pool.OnProgress(func(done int, total int) {
		logger.Info("zone counted", "done", done, "total", total)
	})

	report, err := pool.Map(context.Background(), targets)
	if err != nil {
		logger.Error("can't build report", "error", err)
		os.Exit(1)
	}

	if jsonFlag {
		out, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			logger.Error("can't marshal report", "error", err)
			os.Exit(1)
		}
		fmt.Println(string(out))
	} else {
		printReport(report)
	}

	if sheetsFlag {
		err := appendReport(cfg.Sheets.CredentialsFile, cfg.Sheets.SpreadsheetID, cfg.Sheets.DataRange, time.Now(), report)
		if err != nil {
			logger.Error("can't append report to sheet", "error", err)
			os.Exit(1)
		}
		logger.Info("report appended to sheet", "rows", len(report))
	}
}

// buildReport assembles one dashboard row. Live-count failures leave
// WebsiteCount at -1; the store side always answers.
func buildReport(ctx context.Context, store *db.LocalDB, client *immobiliare.Client, zone *zones.Zone, offline bool) zoneReport {
	report := zoneReport{
		Slug:         zone.Slug,
		Name:         zone.Name,
		Area:         zone.Area,
		WebsiteCount: -1,
	}

	report.StoredCount, _ = store.GetListingCount(zone.ID, db.CountOptions{})
	report.PlayableCount, _ = store.GetListingCount(zone.ID, db.CountOptions{PlayableOnly: true})

	playable, err := store.GetListings(zone.ID, db.ListingOptions{PlayableOnly: true})
	if err == nil {
		report.MedianPrice, report.MedianPricePerM2 = priceStatistics(playable)
	}

	if !offline {
		if count, err := client.TotalActive(ctx, zone); err == nil {
			report.WebsiteCount = count
		}
	}

	return report
}

func selectZones(registry *zones.Registry, zonesFlag string, areaFlag string) ([]zones.Zone, error) {
	switch {
	case zonesFlag != "":
		slugs := strings.Split(zonesFlag, ",")
		for i := range slugs {
			slugs[i] = strings.TrimSpace(slugs[i])
		}
		return registry.BySlugs(slugs)
	case areaFlag != "":
		return registry.ByArea(areaFlag)
	}
	return registry.All()
}

func printReport(report []zoneReport) {
	fmt.Printf("%-22s %-12s %7s %9s %8s %6s %12s %10s\n",
		"zone", "area", "stored", "playable", "website", "drift", "median €", "median €/m²")

	for i := range report {
		row := &report[i]

		website := "?"
		drift := "?"
		if row.WebsiteCount >= 0 {
			website = fmt.Sprint(row.WebsiteCount)
			drift = fmt.Sprintf("%+d", row.drift())
		}

		fmt.Printf("%-22s %-12s %7d %9d %8s %6s %12.0f %10.0f\n",
			row.Slug, row.Area, row.StoredCount, row.PlayableCount,
			website, drift, row.MedianPrice, row.MedianPricePerM2)
	}
}
