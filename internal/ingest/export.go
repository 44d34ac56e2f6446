package ingest

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/AngelCh415/ads-insights/internal/aggregate"
	"github.com/AngelCh415/ads-insights/internal/models"
)

var ErrSinkNotConfigured = errors.New("sink not configured")

// ExportWeek manda la vista de momentum del rango al sink (webhook n8n) firmada con HMAC.
func (e *ETL) ExportWeek(ctx context.Context, from, to time.Time) (int, error) {
	if e.cfg.SinkURL == "" || e.cfg.SinkSecret == "" {
		return 0, ErrSinkNotConfigured
	}
	views := aggregate.Views(aggregate.Ranked(aggregate.Weekly(e.st.Query(from, to, nil))))
	if len(views) == 0 {
		return 0, nil
	}
	b, err := json.Marshal(views)
	if err != nil {
		return 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.cfg.SinkURL, bytes.NewReader(b))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Signature", Sign(e.cfg.SinkSecret, b))
	resp, err := e.c.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, fmt.Errorf("export sink non-2xx: %d", resp.StatusCode)
	}
	return len(views), nil
}

func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

var (
	momentumHeader = []any{
		"Entity", "Platform", "Campaign", "Category", "Campaign Type", "Product", "Format", "Handle",
		"Total Spend", "Total Revenue", "Total Purchases", "Total ROAS", "Total CPA", "Total CPC",
		"Prev Week", "Prev Spend", "Last Week", "Last Spend", "Spend Change %", "ROAS Change %",
	}
	monthlyHeader = []any{"Month", "Category", "Spend", "Revenue", "Purchases", "Clicks", "Impressions", "ROAS", "CPA", "CPC"}
)

// WriteWorkbook escribe un xlsx con hojas Momentum y Monthly.
func WriteWorkbook(w io.Writer, rows []models.RawPeriodRow) error {
	f := excelize.NewFile()
	defer f.Close()

	const momentum, monthly = "Momentum", "Monthly"
	if err := f.SetSheetName("Sheet1", momentum); err != nil {
		return err
	}
	if err := f.SetSheetRow(momentum, "A1", &momentumHeader); err != nil {
		return err
	}
	for i, v := range aggregate.Views(aggregate.Ranked(aggregate.Weekly(rows))) {
		line := []any{
			v.EntityName, v.Platform, v.CampaignName, v.Category, v.CampaignType, v.Product, v.Format, v.Handle,
			v.TotalSpend, v.TotalRevenue, v.TotalPurchases, v.TotalROAS, v.TotalCPA, v.TotalCPC,
		}
		line = append(line, periodCells(v)...)
		if err := setRow(f, momentum, i+2, line); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet(monthly); err != nil {
		return err
	}
	if err := f.SetSheetRow(monthly, "A1", &monthlyHeader); err != nil {
		return err
	}
	for i, m := range aggregate.Monthly(rows) {
		line := []any{m.Month, m.Category, m.Spend, m.Revenue, m.Purchases, m.Clicks, m.Impressions, m.ROAS, m.CPA, m.CPC}
		if err := setRow(f, monthly, i+2, line); err != nil {
			return err
		}
	}

	_, err := f.WriteTo(w)
	return err
}

func periodCells(v models.EntityMomentumView) []any {
	cells := []any{"", "", "", "", "", ""}
	switch len(v.WeeklyPeriods) {
	case 1:
		cells[2], cells[3] = v.WeeklyPeriods[0].ReportingStarts, v.WeeklyPeriods[0].Spend
	case 2:
		cells[0], cells[1] = v.WeeklyPeriods[0].ReportingStarts, v.WeeklyPeriods[0].Spend
		cells[2], cells[3] = v.WeeklyPeriods[1].ReportingStarts, v.WeeklyPeriods[1].Spend
	}
	if v.Momentum != nil {
		cells[4], cells[5] = v.Momentum.Spend, v.Momentum.ROAS
	}
	return cells
}

func setRow(f *excelize.File, sheet string, row int, line []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &line)
}
