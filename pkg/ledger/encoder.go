package ledger

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownDataType is returned when a property carries a tag outside the
	// DataType enumeration.
	ErrUnknownDataType = errors.New("ledger: unknown data type")
	// ErrUnknownRole is returned for proposals with an unsupported role.
	ErrUnknownRole = errors.New("ledger: unknown role")
)

// RecordSpec describes the record a RecordPayload should create.
type RecordSpec struct {
	RecordID   string
	RecordType string
	Properties []PropertyValue
}

// ProposalSpec describes a role grant on a record.
type ProposalSpec struct {
	RecordID       string
	ReceivingAgent string
	Role           Role
	Properties     []string
}

// Encoder turns specs into ledger payloads.
type Encoder interface {
	CreateRecord(spec RecordSpec) (RecordPayload, error)
	CreateProposal(spec ProposalSpec) (ProposalPayload, error)
}

type encoder struct{}

// NewEncoder returns the default Encoder. It checks enum tags and copies the
// spec slices so callers can reuse their buffers; required-field checks are
// left to the ledger.
func NewEncoder() Encoder {
	return encoder{}
}

func (encoder) CreateRecord(spec RecordSpec) (RecordPayload, error) {
	props := make([]PropertyValue, 0, len(spec.Properties))
	for _, prop := range spec.Properties {
		if !prop.DataType.Valid() {
			return RecordPayload{}, fmt.Errorf("%w: %q on property %q", ErrUnknownDataType, prop.DataType, prop.Name)
		}
		if prop.LocationValue != nil {
			loc := *prop.LocationValue
			prop.LocationValue = &loc
		}
		props = append(props, prop)
	}
	return RecordPayload{
		Action:     ActionCreateRecord,
		RecordID:   spec.RecordID,
		RecordType: spec.RecordType,
		Properties: props,
	}, nil
}

func (encoder) CreateProposal(spec ProposalSpec) (ProposalPayload, error) {
	if !spec.Role.Valid() {
		return ProposalPayload{}, fmt.Errorf("%w: %q", ErrUnknownRole, spec.Role)
	}
	props := make([]string, len(spec.Properties))
	copy(props, spec.Properties)
	return ProposalPayload{
		Action:         ActionCreateProposal,
		RecordID:       spec.RecordID,
		ReceivingAgent: spec.ReceivingAgent,
		Role:           spec.Role,
		Properties:     props,
	}, nil
}
