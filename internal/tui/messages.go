package tui

import (
	"github.com/gm-tools/gmtools/internal/chat"
	"github.com/gm-tools/gmtools/internal/ingest"
	"github.com/gm-tools/gmtools/internal/sentiment"
	"github.com/gm-tools/gmtools/internal/video"
)

// ============================================================================
// Navigation Messages
// ============================================================================

// NavigateMsg switches to another screen.
type NavigateMsg struct {
	State ViewState
}

// CtrlCResetMsg clears the pending double Ctrl+C exit.
type CtrlCResetMsg struct{}

// ============================================================================
// Ingestion Messages
// ============================================================================

// SubmitPathMsg asks to ingest a directory.
type SubmitPathMsg struct {
	Path string
}

// StopIngestMsg asks to stop polling the current job.
type StopIngestMsg struct{}

// UseExistingMsg asks to continue with the existing corpus.
type UseExistingMsg struct{}

// ProbeResultMsg carries the existing-corpus probe result.
type ProbeResultMsg struct {
	CanSkip bool
}

// IngestStartedMsg reports whether submission succeeded.
type IngestStartedMsg struct {
	Err error
}

// IngestUpdateMsg carries an ingestion status change.
type IngestUpdateMsg struct {
	Status ingest.Status
}

// ============================================================================
// Chat Messages
// ============================================================================

// SendQuestionMsg asks a question.
type SendQuestionMsg struct {
	Question string
}

// ChatTurnMsg carries the assistant turn for an outstanding question.
type ChatTurnMsg struct {
	Turn chat.Turn
}

// ============================================================================
// Video Messages
// ============================================================================

// AnalyzeVideoMsg asks to analyze a video link.
type AnalyzeVideoMsg struct {
	URL string
}

// ResetVideoMsg clears the last video result.
type ResetVideoMsg struct{}

// ToggleNeutralMsg flips the neutral bucket setting for the next analysis.
type ToggleNeutralMsg struct{}

// VideoUpdateMsg carries a video status change.
type VideoUpdateMsg struct {
	Status video.Status
}

// VideoResultMsg carries the result of an analysis.
type VideoResultMsg struct {
	Summary sentiment.Summary
	Err     error
}
