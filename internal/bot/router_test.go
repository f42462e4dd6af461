package bot

import (
	"testing"

	"ledgerbot/internal/session"
)

func TestClassifyLinkStages(t *testing.T) {
	for _, stage := range []session.Stage{session.StageUnlinked, session.StageAwaitingLink} {
		d := Classify(stage, "anything at all")
		if d.Kind != DecisionLink || d.Text != "anything at all" {
			t.Fatalf("stage %v: got %+v", stage, d)
		}
	}
}

func TestClassifyIdleCommands(t *testing.T) {
	for _, cmd := range []Command{CmdNewEntry, CmdClearAll, CmdDeleteLast, CmdSum, CmdRatio} {
		d := Classify(session.StageIdle, string(cmd))
		if d.Kind != DecisionCommand || d.Command != cmd {
			t.Fatalf("command %q: got %+v", cmd, d)
		}
	}

	// Case-sensitive: no match, no state mutation implied
	d := Classify(session.StageIdle, "Clear-All")
	if d.Kind != DecisionUnknown {
		t.Fatalf("expected unknown for wrong case, got %+v", d)
	}
	if d := Classify(session.StageIdle, "hello"); d.Kind != DecisionUnknown {
		t.Fatalf("expected unknown, got %+v", d)
	}
}

func TestCaptureStagesWinOverKeywords(t *testing.T) {
	stages := []session.Stage{
		session.StageAwaitingCategory,
		session.StageAwaitingName,
		session.StageAwaitingAmount,
		session.StageAwaitingSumPeriod,
	}
	for _, stage := range stages {
		d := Classify(stage, "clear-all")
		if d.Kind != DecisionStageInput || d.Text != "clear-all" {
			t.Fatalf("stage %v: reserved keyword must be stage input, got %+v", stage, d)
		}
	}
}
