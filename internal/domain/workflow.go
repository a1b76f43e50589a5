package domain

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrInvalidWorkflowStage is returned when an invalid workflow stage value is provided
var ErrInvalidWorkflowStage = errors.New("invalid workflow stage value")

// WorkflowStage represents an immutable fulfillment stage value object
type WorkflowStage struct {
	value string
}

// Valid workflow stage values
const (
	workflowStagePending    = "pending"
	workflowStageAssigned   = "assigned"
	workflowStagePicking    = "picking"
	workflowStagePacked     = "packed"
	workflowStageDispatched = "dispatched"
)

// Predefined WorkflowStage instances
var (
	StagePending    = WorkflowStage{value: workflowStagePending}
	StageAssigned   = WorkflowStage{value: workflowStageAssigned}
	StagePicking    = WorkflowStage{value: workflowStagePicking}
	StagePacked     = WorkflowStage{value: workflowStagePacked}
	StageDispatched = WorkflowStage{value: workflowStageDispatched}
)

// Stages returns every workflow stage in fulfillment order. The slice is
// the closed set used for queue counts; adding a stage means extending it.
func Stages() []WorkflowStage {
	return []WorkflowStage{
		StagePending,
		StageAssigned,
		StagePicking,
		StagePacked,
		StageDispatched,
	}
}

// NewWorkflowStage creates a new WorkflowStage value object with validation
func NewWorkflowStage(s string) (WorkflowStage, error) {
	switch s {
	case workflowStagePending, workflowStageAssigned, workflowStagePicking,
		workflowStagePacked, workflowStageDispatched:
		return WorkflowStage{value: s}, nil
	default:
		return WorkflowStage{}, ErrInvalidWorkflowStage
	}
}

// MustNewWorkflowStage creates a WorkflowStage or panics if invalid (use for constants only)
func MustNewWorkflowStage(s string) WorkflowStage {
	stage, err := NewWorkflowStage(s)
	if err != nil {
		panic(err)
	}
	return stage
}

// String returns the string representation of the workflow stage
func (s WorkflowStage) String() string {
	return s.value
}

// Equals checks if two workflow stages are equal
func (s WorkflowStage) Equals(other WorkflowStage) bool {
	return s.value == other.value
}

// IsInitial returns true if the stage is the initial (pending) stage
func (s WorkflowStage) IsInitial() bool {
	return s.value == workflowStagePending
}

// IsTerminal returns true if the stage is the terminal (dispatched) stage
func (s WorkflowStage) IsTerminal() bool {
	return s.value == workflowStageDispatched
}

// IsActive returns true when an order in this stage occupies a picker's
// worklist: anything between the initial and terminal stages.
func (s WorkflowStage) IsActive() bool {
	return !s.IsInitial() && !s.IsTerminal()
}

// MarshalText implements encoding.TextMarshaler for JSON/BSON serialization
func (s WorkflowStage) MarshalText() ([]byte, error) {
	return []byte(s.value), nil
}

// UnmarshalText implements encoding.TextUnmarshaler for JSON/BSON deserialization
func (s *WorkflowStage) UnmarshalText(text []byte) error {
	stage, err := NewWorkflowStage(string(text))
	if err != nil {
		return err
	}
	*s = stage
	return nil
}

// WorkflowState tracks one order's progress through fulfillment.
// Orders with no stored state are treated as pending.
type WorkflowState struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	OrderID      string             `bson:"orderId"`
	Stage        WorkflowStage      `bson:"stage"`
	PickerID     string             `bson:"pickerId,omitempty"`
	PickedQty    map[string]float64 `bson:"pickedQty,omitempty"`
	LastActionAt *time.Time         `bson:"lastActionAt,omitempty"`
}

// PickedFor returns the picked quantity recorded for a product code.
func (w *WorkflowState) PickedFor(productCode string) float64 {
	if w == nil || w.PickedQty == nil {
		return 0
	}
	return w.PickedQty[productCode]
}
