package bot

import "ledgerbot/internal/session"

// Command is one of the reserved ledger-wide keywords.
type Command string

const (
	CmdNewEntry   Command = "new-entry"
	CmdClearAll   Command = "clear-all"
	CmdDeleteLast Command = "delete-last"
	CmdSum        Command = "sum"
	CmdRatio      Command = "ratio"
)

type DecisionKind int

const (
	// DecisionLink treats the text as a candidate ledger link.
	DecisionLink DecisionKind = iota
	// DecisionCommand matched a reserved keyword in the idle stage.
	DecisionCommand
	// DecisionStageInput feeds the text to the current capture stage.
	DecisionStageInput
	// DecisionUnknown is idle text matching no reserved keyword.
	DecisionUnknown
)

type Decision struct {
	Kind    DecisionKind
	Command Command
	Text    string
}

// Classify routes one message by the session's current stage.
//
// Capture stages take precedence over command recognition: a user typing
// "clear-all" while being asked for a category stores the literal text, it
// does not trigger the clear command. Keywords match case-sensitively and
// only in the idle stage.
func Classify(stage session.Stage, text string) Decision {
	switch stage {
	case session.StageUnlinked, session.StageAwaitingLink:
		return Decision{Kind: DecisionLink, Text: text}
	case session.StageAwaitingCategory, session.StageAwaitingName,
		session.StageAwaitingAmount, session.StageAwaitingSumPeriod:
		return Decision{Kind: DecisionStageInput, Text: text}
	}
	switch cmd := Command(text); cmd {
	case CmdNewEntry, CmdClearAll, CmdDeleteLast, CmdSum, CmdRatio:
		return Decision{Kind: DecisionCommand, Command: cmd}
	}
	return Decision{Kind: DecisionUnknown, Text: text}
}
