// Package bot drives the data-capture dialogue: it routes each inbound
// message against the user's session stage and applies the resulting
// transition, calling out to the ledger store where needed.
package bot

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"ledgerbot/internal/core"
	"ledgerbot/internal/ledger"
	"ledgerbot/internal/session"
	"ledgerbot/internal/vision"
)

// EventPublisher receives notifications after successful ledger mutations.
// Implementations must tolerate being called from concurrent user sessions.
type EventPublisher interface {
	PublishEntryAppended(ctx context.Context, ref ledger.Ref, e core.Entry, rowRef string) error
	PublishLedgerCleared(ctx context.Context, ref ledger.Ref) error
	PublishEntryDeleted(ctx context.Context, ref ledger.Ref) error
}

// visionCategory is assigned to entries created from image classification.
const visionCategory = "auto"

var sumPeriods = map[string]int{
	"1-day":  1,
	"7-day":  7,
	"30-day": 30,
}

type Machine struct {
	sessions *session.Store
	store    ledger.Store
	events   EventPublisher    // optional
	vision   vision.Classifier // optional
	now      func() time.Time

	idle map[Command]func(ctx context.Context, s *session.Session) []string
}

// New wires the state machine. events and classifier may be nil; the
// corresponding features are then disabled.
func New(sessions *session.Store, store ledger.Store, events EventPublisher, classifier vision.Classifier) *Machine {
	m := &Machine{
		sessions: sessions,
		store:    store,
		events:   events,
		vision:   classifier,
		now:      time.Now,
	}
	m.idle = map[Command]func(context.Context, *session.Session) []string{
		CmdNewEntry:   m.startEntry,
		CmdClearAll:   m.clearAll,
		CmdDeleteLast: m.deleteLast,
		CmdSum:        m.startSum,
		CmdRatio:      m.ratio,
	}
	return m
}

// Handle processes one text message for one user and returns the ordered
// replies. The whole transition, including store calls, runs under the
// user's session lock so duplicate deliveries cannot interleave.
func (m *Machine) Handle(ctx context.Context, userID, text string) []string {
	var replies []string
	m.sessions.Do(userID, func(s *session.Session) {
		replies = m.transition(ctx, s, strings.TrimSpace(text))
	})
	return replies
}

func (m *Machine) transition(ctx context.Context, s *session.Session, text string) []string {
	d := Classify(s.Stage, text)

	switch s.Stage {
	case session.StageUnlinked:
		s.Stage = session.StageAwaitingLink
		return []string{replyAskLink}

	case session.StageAwaitingLink:
		return m.link(ctx, s, d.Text)

	case session.StageIdle:
		if d.Kind == DecisionCommand {
			return m.idle[d.Command](ctx, s)
		}
		slog.DebugContext(ctx, "Unrecognized idle input", "user", s.UserID)
		return []string{replyHelp}

	case session.StageAwaitingCategory:
		if d.Text == "" {
			return []string{replyAskCategory}
		}
		s.Draft.Category = d.Text
		s.Stage = session.StageAwaitingName
		return []string{replyAskName}

	case session.StageAwaitingName:
		if d.Text == "" {
			return []string{replyAskName}
		}
		s.Draft.Name = d.Text
		s.Stage = session.StageAwaitingAmount
		return []string{replyAskAmount}

	case session.StageAwaitingAmount:
		return m.captureAmount(ctx, s, d.Text)

	case session.StageAwaitingSumPeriod:
		return m.sumPeriod(ctx, s, d.Text)
	}

	slog.ErrorContext(ctx, "Session in unknown stage", "user", s.UserID, "stage", int(s.Stage))
	s.Stage = session.StageIdle
	return []string{replyHelp}
}

func (m *Machine) link(ctx context.Context, s *session.Session, text string) []string {
	ref, err := ledger.ParseRef(text)
	if err != nil {
		return []string{replyInvalidLink}
	}
	if err := m.store.EnsureSchema(ctx, ref); err != nil {
		slog.WarnContext(ctx, "Ledger link failed", "user", s.UserID, "error", err)
		return []string{renderStoreErr("link the ledger", err)}
	}
	s.Ledger = ref
	s.Stage = session.StageIdle
	slog.InfoContext(ctx, "Ledger linked", "user", s.UserID, "ledger", string(ref))
	return []string{replyLinked}
}

func (m *Machine) startEntry(_ context.Context, s *session.Session) []string {
	s.Draft = session.Draft{}
	s.Stage = session.StageAwaitingCategory
	return []string{replyAskCategory}
}

func (m *Machine) captureAmount(ctx context.Context, s *session.Session, text string) []string {
	cents, err := core.ParseDecimalToCents(text)
	if err != nil {
		// Category and name survive; the user only re-enters the amount.
		return []string{replyInvalidAmount}
	}
	e := core.Entry{
		Timestamp: m.now(),
		Category:  s.Draft.Category,
		Name:      s.Draft.Name,
		Amount:    core.Money{Cents: cents},
	}
	rowRef, err := m.store.Append(ctx, s.Ledger, e)
	if err != nil {
		// The draft is retained so a transient failure never forces the
		// user to re-enter category and name.
		slog.WarnContext(ctx, "Append failed", "user", s.UserID, "ledger", string(s.Ledger), "error", err)
		return []string{renderStoreErr("save the entry", err)}
	}
	m.publishAppended(ctx, s.Ledger, e, rowRef)
	s.Draft = session.Draft{}
	s.Stage = session.StageIdle
	return []string{replySaved(e)}
}

func (m *Machine) clearAll(ctx context.Context, s *session.Session) []string {
	if err := m.store.Clear(ctx, s.Ledger); err != nil {
		slog.WarnContext(ctx, "Clear failed", "user", s.UserID, "ledger", string(s.Ledger), "error", err)
		return []string{renderStoreErr("clear the ledger", err)}
	}
	if m.events != nil {
		if err := m.events.PublishLedgerCleared(ctx, s.Ledger); err != nil {
			slog.ErrorContext(ctx, "Failed to publish cleared event", "ledger", string(s.Ledger), "error", err)
		}
	}
	return []string{replyCleared}
}

func (m *Machine) deleteLast(ctx context.Context, s *session.Session) []string {
	deleted, err := m.store.DeleteLast(ctx, s.Ledger)
	if err != nil {
		slog.WarnContext(ctx, "Delete-last failed", "user", s.UserID, "ledger", string(s.Ledger), "error", err)
		return []string{renderStoreErr("remove the last entry", err)}
	}
	if !deleted {
		return []string{replyNothingToDelete}
	}
	if m.events != nil {
		if err := m.events.PublishEntryDeleted(ctx, s.Ledger); err != nil {
			slog.ErrorContext(ctx, "Failed to publish deleted event", "ledger", string(s.Ledger), "error", err)
		}
	}
	return []string{replyDeleted}
}

func (m *Machine) startSum(_ context.Context, s *session.Session) []string {
	s.Stage = session.StageAwaitingSumPeriod
	return []string{replyAskPeriod}
}

func (m *Machine) sumPeriod(ctx context.Context, s *session.Session, text string) []string {
	// One shot: any outcome returns to idle so the prompt cannot loop.
	s.Stage = session.StageIdle
	days, ok := sumPeriods[text]
	if !ok {
		return []string{replyInvalidPeriod}
	}
	entries, err := m.store.ListAll(ctx, s.Ledger)
	if err != nil {
		return []string{renderStoreErr("read the ledger", err)}
	}
	total := core.WindowedSum(entries, m.now(), days)
	return []string{replySum(text, total)}
}

func (m *Machine) ratio(ctx context.Context, s *session.Session) []string {
	entries, err := m.store.ListAll(ctx, s.Ledger)
	if err != nil {
		return []string{renderStoreErr("read the ledger", err)}
	}
	shares := core.CategoryRatio(entries)
	if len(shares) == 0 {
		return []string{replyNoData}
	}
	return []string{replyRatio(shares)}
}

// HandleImage processes an image event. When a classifier is configured and
// recognizes the image, the suggestion is appended directly with a default
// category, skipping the capture dialogue.
func (m *Machine) HandleImage(ctx context.Context, userID, imageRef string) []string {
	var replies []string
	m.sessions.Do(userID, func(s *session.Session) {
		replies = m.imageTransition(ctx, s, imageRef)
	})
	return replies
}

func (m *Machine) imageTransition(ctx context.Context, s *session.Session, imageRef string) []string {
	if m.vision == nil {
		return []string{replyImageUnsupported}
	}
	switch s.Stage {
	case session.StageUnlinked:
		s.Stage = session.StageAwaitingLink
		return []string{replyAskLink}
	case session.StageAwaitingLink:
		return []string{replyInvalidLink}
	case session.StageIdle:
		// handled below
	default:
		return []string{replyFinishEntryFirst}
	}

	sug, err := m.vision.Classify(ctx, imageRef)
	if err != nil {
		slog.WarnContext(ctx, "Image classification failed", "user", s.UserID, "error", err)
		return []string{replyImageNoMatch}
	}
	if sug == nil {
		return []string{replyImageNoMatch}
	}
	e := core.Entry{
		Timestamp: m.now(),
		Category:  visionCategory,
		Name:      sug.Item,
		Amount:    sug.Amount,
	}
	rowRef, err := m.store.Append(ctx, s.Ledger, e)
	if err != nil {
		slog.WarnContext(ctx, "Append of classified entry failed", "user", s.UserID, "error", err)
		return []string{renderStoreErr("save the entry", err)}
	}
	m.publishAppended(ctx, s.Ledger, e, rowRef)
	return []string{replySaved(e)}
}

func (m *Machine) publishAppended(ctx context.Context, ref ledger.Ref, e core.Entry, rowRef string) {
	if m.events == nil {
		return
	}
	if err := m.events.PublishEntryAppended(ctx, ref, e, rowRef); err != nil {
		// Events are a side channel; the entry is already persisted.
		slog.ErrorContext(ctx, "Failed to publish appended event", "ledger", string(ref), "error", err)
	}
}
