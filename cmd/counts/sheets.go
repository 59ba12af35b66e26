package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// appendReport pushes the dashboard rows to a Google Sheet, one row per zone,
// timestamped so consecutive runs build a history.
func appendReport(credentialsFilePath string, spreadsheetID string, dataRange string, t time.Time, report []zoneReport) error {
	ctx := context.Background()

	b, err := os.ReadFile(credentialsFilePath)
	if err != nil {
		return fmt.Errorf("can't read credentials file: %w", err)
	}

	config, err := google.JWTConfigFromJSON(b, "https://www.googleapis.com/auth/spreadsheets")
	if err != nil {
		return fmt.Errorf("can't read JWT config from json: %w", err)
	}
	client := config.Client(ctx)

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return fmt.Errorf("can't create sheets service: %w", err)
	}

	var vr sheets.ValueRange
	for _, row := range report {
		value := []any{
			t.UTC().Format(time.DateTime),
			row.Area,
			row.Slug,
			row.StoredCount,
			row.PlayableCount,
			row.WebsiteCount,
			row.MedianPrice,
			row.MedianPricePerM2,
		}
		vr.Values = append(vr.Values, value)
	}

	_, err = srv.Spreadsheets.Values.Append(spreadsheetID, dataRange, &vr).ValueInputOption("USER_ENTERED").Do()
	if err != nil {
		return fmt.Errorf("can't write data to sheet: %w", err)
	}

	return nil
}
