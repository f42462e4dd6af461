package bot

import (
	"errors"
	"fmt"
	"strings"

	"ledgerbot/internal/core"
	"ledgerbot/internal/ledger"
)

const (
	replyAskLink = "Please send the link to your ledger spreadsheet."

	replyInvalidLink = "That does not look like a valid ledger link. Please send the full spreadsheet URL."

	replyLinked = "Ledger linked. Commands: new-entry, clear-all, delete-last, sum, ratio."

	replyHelp = "Unrecognized input. Commands: new-entry, clear-all, delete-last, sum, ratio."

	replyAskCategory = "Enter the category."
	replyAskName     = "Enter the item name."
	replyAskAmount   = "Enter the amount."

	replyInvalidAmount = "That amount is not a valid number. Please enter the amount again."

	replyAskPeriod     = "Which period? Options: 1-day, 7-day, 30-day."
	replyInvalidPeriod = "Unknown period. Use one of: 1-day, 7-day, 30-day."

	replyCleared         = "All entries removed. The ledger is empty."
	replyDeleted         = "Last entry removed."
	replyNothingToDelete = "The ledger has no entries to remove."

	replyNoData = "The ledger has no entries yet."

	replyImageUnsupported = "Image input is not enabled."
	replyImageNoMatch     = "Nothing recognizable in that image."
	replyFinishEntryFirst = "Finish the current entry first, then send the image again."
)

func replySaved(e core.Entry) string {
	return fmt.Sprintf("Saved: %s / %s (%s)", e.Category, e.Name, core.FormatCents(e.Amount.Cents))
}

func replySum(token string, total core.Money) string {
	return fmt.Sprintf("Total over the last %s: %s", strings.TrimSuffix(token, "-day")+" day(s)", core.FormatCents(total.Cents))
}

func replyRatio(shares []core.CategoryShare) string {
	var b strings.Builder
	b.WriteString("Share by category:")
	for _, s := range shares {
		fmt.Fprintf(&b, "\n%s: %.1f%% (%s)", s.Name, s.Percent, core.FormatCents(s.Amount.Cents))
	}
	return b.String()
}

// renderStoreErr is the single point converting store failures into
// user-visible text. None of them propagate further.
func renderStoreErr(action string, err error) string {
	switch {
	case errors.Is(err, ledger.ErrUnavailable):
		return fmt.Sprintf("Could not %s: the ledger is temporarily unavailable. Please try again.", action)
	case errors.Is(err, ledger.ErrRejected):
		return fmt.Sprintf("Could not %s: the ledger rejected the request. Check the spreadsheet and its sharing settings.", action)
	}
	return fmt.Sprintf("Could not %s: %v", action, err)
}
