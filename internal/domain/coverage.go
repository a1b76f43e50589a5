package domain

import "errors"

// ErrInvalidCoverageStatus is returned when an invalid coverage status value is provided
var ErrInvalidCoverageStatus = errors.New("invalid coverage status value")

// CoverageStatus represents an immutable available-to-promise coverage classification
type CoverageStatus struct {
	value string
}

// Valid coverage status values
const (
	coverageStatusFull    = "FULL"
	coverageStatusPartial = "PARTIAL"
	coverageStatusNone    = "NONE"
)

// Predefined CoverageStatus instances
var (
	CoverageFull    = CoverageStatus{value: coverageStatusFull}
	CoveragePartial = CoverageStatus{value: coverageStatusPartial}
	CoverageNone    = CoverageStatus{value: coverageStatusNone}
)

// NewCoverageStatus creates a new CoverageStatus value object with validation
func NewCoverageStatus(cs string) (CoverageStatus, error) {
	switch cs {
	case coverageStatusFull, coverageStatusPartial, coverageStatusNone:
		return CoverageStatus{value: cs}, nil
	default:
		return CoverageStatus{}, ErrInvalidCoverageStatus
	}
}

// String returns the string representation of the coverage status
func (cs CoverageStatus) String() string {
	return cs.value
}

// Equals checks if two coverage statuses are equal
func (cs CoverageStatus) Equals(other CoverageStatus) bool {
	return cs.value == other.value
}

// Rank orders coverage for sorting: FULL (2) > PARTIAL (1) > NONE (0).
func (cs CoverageStatus) Rank() int {
	switch cs.value {
	case coverageStatusFull:
		return 2
	case coverageStatusPartial:
		return 1
	default:
		return 0
	}
}

// IsFull returns true if the coverage status is FULL
func (cs CoverageStatus) IsFull() bool {
	return cs.value == coverageStatusFull
}

// IsNone returns true if the coverage status is NONE
func (cs CoverageStatus) IsNone() bool {
	return cs.value == coverageStatusNone
}

// MarshalText implements encoding.TextMarshaler for JSON serialization
func (cs CoverageStatus) MarshalText() ([]byte, error) {
	return []byte(cs.value), nil
}

// UnmarshalText implements encoding.TextUnmarshaler for JSON deserialization
func (cs *CoverageStatus) UnmarshalText(text []byte) error {
	status, err := NewCoverageStatus(string(text))
	if err != nil {
		return err
	}
	*cs = status
	return nil
}
