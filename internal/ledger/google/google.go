// Package google implements the ledger store against the Google Sheets API.
//
// Ranges are written without a sheet prefix so they target the first sheet of
// the linked spreadsheet, which is where the dialogue appends rows.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"ledgerbot/internal/core"
	"ledgerbot/internal/ledger"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

const defaultCallTimeout = 5 * time.Second

type Client struct {
	svc     *gsheet.Service
	timeout time.Duration

	// First-sheet ids are immutable per spreadsheet; cache them so
	// DeleteLast does not refetch metadata on every call.
	mu       sync.Mutex
	sheetIDs map[ledger.Ref]int64
}

var _ ledger.Store = (*Client)(nil)

// NewFromEnv creates a Sheets-backed store using service account credentials
// from GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS.
func NewFromEnv(ctx context.Context, timeout time.Duration) (*Client, error) {
	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	if timeout <= 0 {
		timeout = defaultCallTimeout
	}
	return &Client{svc: svc, timeout: timeout, sheetIDs: make(map[ledger.Ref]int64)}, nil
}

func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

func (c *Client) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.timeout)
}

// EnsureSchema inserts the header row when the first row does not match the
// expected tuple. Repeated calls never duplicate the header.
func (c *Client) EnsureSchema(ctx context.Context, ref ledger.Ref) error {
	cctx, cancel := c.callCtx(ctx)
	defer cancel()

	resp, err := c.svc.Spreadsheets.Values.Get(string(ref), "A1:D1").Context(cctx).Do()
	if err != nil {
		return classify(fmt.Errorf("read header of %s: %w", ref, err))
	}
	if len(resp.Values) > 0 && isHeaderRow(resp.Values[0]) {
		return nil
	}

	if len(resp.Values) > 0 {
		// Data already in row 1: shift everything down before writing headers.
		sheetID, err := c.firstSheetID(cctx, ref)
		if err != nil {
			return err
		}
		req := &gsheet.BatchUpdateSpreadsheetRequest{Requests: []*gsheet.Request{{
			InsertDimension: &gsheet.InsertDimensionRequest{
				Range: &gsheet.DimensionRange{SheetId: sheetID, Dimension: "ROWS", StartIndex: 0, EndIndex: 1},
			},
		}}}
		if _, err := c.svc.Spreadsheets.BatchUpdate(string(ref), req).Context(cctx).Do(); err != nil {
			return classify(fmt.Errorf("insert header row in %s: %w", ref, err))
		}
	}
	return c.writeHeader(cctx, ref)
}

func (c *Client) writeHeader(ctx context.Context, ref ledger.Ref) error {
	vr := &gsheet.ValueRange{Values: [][]any{headerValues()}}
	_, err := c.svc.Spreadsheets.Values.Update(string(ref), "A1:D1", vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return classify(fmt.Errorf("write header of %s: %w", ref, err))
	}
	return nil
}

func (c *Client) Append(ctx context.Context, ref ledger.Ref, e core.Entry) (string, error) {
	if err := e.Validate(); err != nil {
		return "", fmt.Errorf("%w: %v", ledger.ErrRejected, err)
	}
	cctx, cancel := c.callCtx(ctx)
	defer cancel()

	vr := &gsheet.ValueRange{Values: [][]any{entryValues(e)}}
	resp, err := c.svc.Spreadsheets.Values.Append(string(ref), "A1:D1", vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(cctx).Do()
	if err != nil {
		return "", classify(fmt.Errorf("append to %s: %w", ref, err))
	}
	rowRef := ""
	if resp.Updates != nil {
		rowRef = resp.Updates.UpdatedRange
	}
	slog.InfoContext(ctx, "Entry appended to sheet",
		"ledger", string(ref),
		"row_ref", rowRef,
		"category", e.Category,
		"amount_cents", e.Amount.Cents)
	return rowRef, nil
}

// Clear removes every row, then re-applies the header so the ledger is left
// empty but well-formed regardless of its prior state.
func (c *Client) Clear(ctx context.Context, ref ledger.Ref) error {
	cctx, cancel := c.callCtx(ctx)
	defer cancel()

	_, err := c.svc.Spreadsheets.Values.Clear(string(ref), "A:D", &gsheet.ClearValuesRequest{}).
		Context(cctx).Do()
	if err != nil {
		return classify(fmt.Errorf("clear %s: %w", ref, err))
	}
	return c.writeHeader(cctx, ref)
}

func (c *Client) DeleteLast(ctx context.Context, ref ledger.Ref) (bool, error) {
	cctx, cancel := c.callCtx(ctx)
	defer cancel()

	resp, err := c.svc.Spreadsheets.Values.Get(string(ref), "A:D").Context(cctx).Do()
	if err != nil {
		return false, classify(fmt.Errorf("read %s: %w", ref, err))
	}
	n := int64(len(resp.Values))
	if n <= 1 {
		// Header only (or nothing at all): nothing to delete.
		return false, nil
	}
	sheetID, err := c.firstSheetID(cctx, ref)
	if err != nil {
		return false, err
	}
	req := &gsheet.BatchUpdateSpreadsheetRequest{Requests: []*gsheet.Request{{
		DeleteDimension: &gsheet.DeleteDimensionRequest{
			Range: &gsheet.DimensionRange{SheetId: sheetID, Dimension: "ROWS", StartIndex: n - 1, EndIndex: n},
		},
	}}}
	if _, err := c.svc.Spreadsheets.BatchUpdate(string(ref), req).Context(cctx).Do(); err != nil {
		return false, classify(fmt.Errorf("delete last row of %s: %w", ref, err))
	}
	return true, nil
}

func (c *Client) ListAll(ctx context.Context, ref ledger.Ref) ([]core.Entry, error) {
	cctx, cancel := c.callCtx(ctx)
	defer cancel()

	resp, err := c.svc.Spreadsheets.Values.Get(string(ref), "A2:D").Context(cctx).Do()
	if err != nil {
		return nil, classify(fmt.Errorf("read %s: %w", ref, err))
	}
	var out []core.Entry
	skipped := 0
	for i, row := range resp.Values {
		e, ok := parseRow(row)
		if !ok {
			skipped++
			slog.WarnContext(ctx, "Skipping ledger row with unparsable amount",
				"ledger", string(ref), "row", i+2)
			continue
		}
		out = append(out, e)
	}
	if skipped > 0 {
		slog.WarnContext(ctx, "Ledger contains malformed rows", "ledger", string(ref), "skipped", skipped)
	}
	return out, nil
}

func (c *Client) firstSheetID(ctx context.Context, ref ledger.Ref) (int64, error) {
	c.mu.Lock()
	id, ok := c.sheetIDs[ref]
	c.mu.Unlock()
	if ok {
		return id, nil
	}

	meta, err := c.svc.Spreadsheets.Get(string(ref)).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, classify(fmt.Errorf("read spreadsheet metadata of %s: %w", ref, err))
	}
	if len(meta.Sheets) == 0 || meta.Sheets[0].Properties == nil {
		return 0, fmt.Errorf("%w: spreadsheet %s has no sheets", ledger.ErrRejected, ref)
	}
	id = meta.Sheets[0].Properties.SheetId
	c.mu.Lock()
	c.sheetIDs[ref] = id
	c.mu.Unlock()
	return id, nil
}
