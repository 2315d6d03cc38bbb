package payload

import (
	"fmt"

	"github.com/goliatone/go-assetform/pkg/form"
	"github.com/goliatone/go-assetform/pkg/ledger"
)

// DefaultRecordType is the record type assets are created with.
const DefaultRecordType = "asset"

// Source is the read side of the form state the builder consumes.
type Source interface {
	Value(name string) (any, bool)
	ResolvedReporters() []form.ReporterEntry
}

// Builder converts form state into a record payload plus reporter proposals.
// It holds no per-build state, so building twice from the same state yields
// identical payloads.
type Builder struct {
	encoder    ledger.Encoder
	mappings   []Mapping
	recordType string
	idKey      string
	parseInt   IntParser
}

// Option configures a Builder.
type Option func(*Builder)

// WithEncoder overrides the payload encoder.
func WithEncoder(encoder ledger.Encoder) Option {
	return func(b *Builder) {
		if encoder != nil {
			b.encoder = encoder
		}
	}
}

// WithMappings replaces the property table.
func WithMappings(mappings []Mapping) Option {
	return func(b *Builder) {
		b.mappings = append([]Mapping(nil), mappings...)
	}
}

// WithRecordType overrides the record type.
func WithRecordType(recordType string) Option {
	return func(b *Builder) {
		if recordType != "" {
			b.recordType = recordType
		}
	}
}

// WithIntParser overrides numeric conversion (for example to scale
// coordinates instead of truncating them).
func WithIntParser(fn IntParser) Option {
	return func(b *Builder) {
		if fn != nil {
			b.parseInt = fn
		}
	}
}

// NewBuilder constructs a Builder with the default table and encoder.
func NewBuilder(options ...Option) *Builder {
	b := &Builder{
		encoder:    ledger.NewEncoder(),
		mappings:   DefaultMappings(),
		recordType: DefaultRecordType,
		idKey:      form.FieldSerialNumber,
		parseInt:   ParseInt,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(b)
	}
	return b
}

// RecordID returns the record identifier the state maps to.
func (b *Builder) RecordID(src Source) string {
	v, _ := src.Value(b.idKey)
	return stringValue(v)
}

// Build maps src onto a record payload and one REPORTER proposal per
// resolved reporter row.
func (b *Builder) Build(src Source) (ledger.RecordPayload, []ledger.ProposalPayload, error) {
	props, err := b.Properties(src)
	if err != nil {
		return ledger.RecordPayload{}, nil, err
	}

	recordID := b.RecordID(src)
	record, err := b.encoder.CreateRecord(ledger.RecordSpec{
		RecordID:   recordID,
		RecordType: b.recordType,
		Properties: props,
	})
	if err != nil {
		return ledger.RecordPayload{}, nil, fmt.Errorf("payload: create record: %w", err)
	}

	reporters := src.ResolvedReporters()
	proposals := make([]ledger.ProposalPayload, 0, len(reporters))
	for _, reporter := range reporters {
		proposal, err := b.encoder.CreateProposal(ledger.ProposalSpec{
			RecordID:       recordID,
			ReceivingAgent: reporter.Key,
			Role:           ledger.RoleReporter,
			Properties:     reporter.Properties,
		})
		if err != nil {
			return ledger.RecordPayload{}, nil, fmt.Errorf("payload: create proposal for %s: %w", reporter.Key, err)
		}
		proposals = append(proposals, proposal)
	}

	return record, proposals, nil
}

// Properties evaluates the mapping table against src.
func (b *Builder) Properties(src Source) ([]ledger.PropertyValue, error) {
	props := make([]ledger.PropertyValue, 0, len(b.mappings))
	for _, m := range b.mappings {
		prop, ok, err := b.property(src, m)
		if err != nil {
			return nil, err
		}
		if ok {
			props = append(props, prop)
		}
	}
	return props, nil
}

func (b *Builder) property(src Source, m Mapping) (ledger.PropertyValue, bool, error) {
	raw, _ := src.Value(m.Key)

	switch m.Kind {
	case KindLocation:
		rawPair, _ := src.Value(m.PairKey)
		if !Present(raw) || !Present(rawPair) {
			return ledger.PropertyValue{}, false, nil
		}
		lat, err := b.parseInt(raw)
		if err != nil {
			return ledger.PropertyValue{}, false, &FieldError{Field: m.Key, Err: err}
		}
		lng, err := b.parseInt(rawPair)
		if err != nil {
			return ledger.PropertyValue{}, false, &FieldError{Field: m.PairKey, Err: err}
		}
		return ledger.PropertyValue{
			Name:          m.Property,
			DataType:      ledger.DataTypeLocation,
			LocationValue: &ledger.Location{Latitude: lat, Longitude: lng},
		}, true, nil

	case KindInt:
		if !Present(raw) && !m.Always {
			return ledger.PropertyValue{}, false, nil
		}
		n, err := b.parseInt(raw)
		if err != nil {
			return ledger.PropertyValue{}, false, &FieldError{Field: m.Key, Err: err}
		}
		return ledger.PropertyValue{
			Name:     m.Property,
			DataType: ledger.DataTypeInt,
			IntValue: n,
		}, true, nil

	default:
		if !Present(raw) && !m.Always {
			return ledger.PropertyValue{}, false, nil
		}
		return ledger.PropertyValue{
			Name:        m.Property,
			DataType:    ledger.DataTypeString,
			StringValue: stringValue(raw),
		}, true, nil
	}
}
