package model

// DialogStep defines the possible steps in the forward dialog.
type DialogStep string

const (
	StepAwaitingSource      DialogStep = "awaiting_source"
	StepAwaitingDestination DialogStep = "awaiting_destination"
	StepAwaitingRange       DialogStep = "awaiting_range"
)

// DialogState holds one user's progress through the forward dialog.
// A state exists for a user exactly while a dialog is in flight; the
// step only ever advances source -> destination -> range.
type DialogState struct {
	Step          DialogStep `json:"step"`
	SourceGroupID int64      `json:"source_group_id"`
	TopicID       *int       `json:"topic_id,omitempty"`
	DestinationID int64      `json:"destination_id"`
}

// NewDialogState returns a fresh state at the first step.
func NewDialogState() *DialogState {
	return &DialogState{Step: StepAwaitingSource}
}
