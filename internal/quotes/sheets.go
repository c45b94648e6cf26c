package quotes

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetsAppender mirrors completed quotes into a Google Sheets document
// so the sales team sees leads without touching the database.
type SheetsAppender struct {
	svc           *sheets.Service
	spreadsheetID string
	writeRange    string
}

// NewSheetsAppender authenticates with a service-account credentials
// file and targets the given spreadsheet range.
func NewSheetsAppender(ctx context.Context, credentialsFile, spreadsheetID, writeRange string) (*SheetsAppender, error) {
	svc, err := sheets.NewService(ctx, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	if writeRange == "" {
		writeRange = "A:K"
	}
	return &SheetsAppender{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		writeRange:    writeRange,
	}, nil
}

// Append adds one quote as a row at the end of the sheet.
func (a *SheetsAppender) Append(ctx context.Context, q *Quote) error {
	values := &sheets.ValueRange{
		Values: [][]interface{}{quoteRowValues(q)},
	}
	_, err := a.svc.Spreadsheets.Values.
		Append(a.spreadsheetID, a.writeRange, values).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append quote %d: %w", q.ID, err)
	}
	return nil
}

func quoteRowValues(q *Quote) []interface{} {
	return []interface{}{
		q.ID,
		q.UserID,
		q.CreatedAt.Format("2006-01-02 15:04:05"),
		q.District,
		q.Depth,
		q.EquipmentSet,
		strings.Join(q.Equipment, ", "),
		strings.Join(q.Services, ", "),
		q.DrillingCost,
		q.EquipmentCost,
		q.ServicesCost,
		q.TotalCost,
	}
}
