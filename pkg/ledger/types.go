package ledger

import "fmt"

// DataType tags the value slot a property populates.
type DataType string

const (
	DataTypeString   DataType = "STRING"
	DataTypeInt      DataType = "INT"
	DataTypeFloat    DataType = "FLOAT"
	DataTypeBoolean  DataType = "BOOLEAN"
	DataTypeBytes    DataType = "BYTES"
	DataTypeEnum     DataType = "ENUM"
	DataTypeStruct   DataType = "STRUCT"
	DataTypeLocation DataType = "LOCATION"
)

// Valid reports whether d is a known data type.
func (d DataType) Valid() bool {
	switch d {
	case DataTypeString, DataTypeInt, DataTypeFloat, DataTypeBoolean,
		DataTypeBytes, DataTypeEnum, DataTypeStruct, DataTypeLocation:
		return true
	default:
		return false
	}
}

// Role is the permission a proposal grants to the receiving agent.
type Role string

const (
	RoleOwner     Role = "OWNER"
	RoleCustodian Role = "CUSTODIAN"
	RoleReporter  Role = "REPORTER"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleCustodian, RoleReporter:
		return true
	default:
		return false
	}
}

// Action identifies the transaction a payload requests.
type Action string

const (
	ActionCreateRecord   Action = "CREATE_RECORD"
	ActionCreateProposal Action = "CREATE_PROPOSAL"
)

// Location is a coordinate pair stored as integers.
type Location struct {
	Latitude  int64 `json:"latitude"`
	Longitude int64 `json:"longitude"`
}

func (l Location) String() string {
	return fmt.Sprintf("%d,%d", l.Latitude, l.Longitude)
}

// PropertyValue is a single named, typed property attached to a record. Only
// the slot matching DataType is populated.
type PropertyValue struct {
	Name          string    `json:"name"`
	DataType      DataType  `json:"dataType"`
	StringValue   string    `json:"stringValue,omitempty"`
	IntValue      int64     `json:"intValue,omitempty"`
	LocationValue *Location `json:"locationValue,omitempty"`
}

// Payload is implemented by every payload the ledger accepts.
type Payload interface {
	PayloadAction() Action
}

// RecordPayload creates a new record with its initial properties. Property
// order is significant for canonical serialisation and is preserved as built.
type RecordPayload struct {
	Action     Action          `json:"action"`
	RecordID   string          `json:"recordId"`
	RecordType string          `json:"recordType"`
	Properties []PropertyValue `json:"properties"`
}

// PayloadAction implements Payload.
func (p RecordPayload) PayloadAction() Action { return ActionCreateRecord }

// Property returns the named property when present.
func (p RecordPayload) Property(name string) (PropertyValue, bool) {
	for _, prop := range p.Properties {
		if prop.Name == name {
			return prop, true
		}
	}
	return PropertyValue{}, false
}

// ProposalPayload offers a role on a record to another agent.
type ProposalPayload struct {
	Action         Action   `json:"action"`
	RecordID       string   `json:"recordId"`
	ReceivingAgent string   `json:"receivingAgent"`
	Role           Role     `json:"role"`
	Properties     []string `json:"properties"`
}

// PayloadAction implements Payload.
func (p ProposalPayload) PayloadAction() Action { return ActionCreateProposal }

// Batch is the atomic submission unit: every payload is applied or none is.
type Batch struct {
	Timestamp int64     `json:"timestamp"`
	Payloads  []Payload `json:"payloads"`
}
