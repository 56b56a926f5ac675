package types

// Record is a single row, document or queue item keyed by field name.
type Record = map[string]any

// Envelope is the uniform result of every connector operation.
//
// StatusCode alone determines the outcome; Data and Reason are always
// consistent with it. Data is never nil.
type Envelope struct {
	// Data holds the rows, documents or items produced by the operation.
	Data []Record `json:"data" yaml:"data"`

	// StatusCode is the outcome code from the backend's reserved range.
	StatusCode StatusCode `json:"status_code" yaml:"status_code"`

	// Reason is a human-readable explanation or diagnostic detail.
	Reason string `json:"reason" yaml:"reason"`
}

// NewEnvelope builds an envelope, normalizing nil data to an empty slice.
//
// Parameters:
//   - code: Outcome status code
//   - reason: Human-readable explanation
//   - data: Records produced by the operation
//
// Returns:
//   - Envelope: The envelope
func NewEnvelope(code StatusCode, reason string, data ...Record) Envelope {
	if data == nil {
		data = []Record{}
	}

	return Envelope{Data: data, StatusCode: code, Reason: reason}
}

// Failure builds an envelope with no data.
func Failure(code StatusCode, reason string) Envelope {
	return NewEnvelope(code, reason)
}

// OK reports whether the envelope carries a success code.
func (e Envelope) OK() bool {
	return !e.StatusCode.IsError()
}

// Outcome returns the outcome class of the envelope's status code.
func (e Envelope) Outcome() Outcome {
	return e.StatusCode.Outcome()
}

// First returns the first record, or nil when Data is empty.
func (e Envelope) First() Record {
	if len(e.Data) == 0 {
		return nil
	}

	return e.Data[0]
}
