package types

import "strconv"

// StatusCode is the numeric outcome of a connector operation.
//
// Each backend owns one range: 2000s for the wide-column database, 3000s for
// the search engine and 4000s for the queue. Inside a range, error codes and
// success codes never overlap.
type StatusCode int

// String returns the decimal representation of the code.
func (c StatusCode) String() string {
	return strconv.Itoa(int(c))
}

// Wide-column database status codes.
const (
	CQLUnreachable     StatusCode = 2001
	CQLTimeout         StatusCode = 2002
	CQLKeyspaceMissing StatusCode = 2003
	CQLInvalidRequest  StatusCode = 2004
	CQLUnknown         StatusCode = 2005
	CQLObjectCreated   StatusCode = 2006
	CQLWriteOneRow     StatusCode = 2007
	CQLWriteManyRows   StatusCode = 2008
	CQLReadNoRows      StatusCode = 2009
	CQLReadOneRow      StatusCode = 2010
	CQLReadManyRows    StatusCode = 2011
)

// Search engine status codes.
const (
	SearchUnreachable    StatusCode = 3001
	SearchIndexCreate    StatusCode = 3002
	SearchIndexMissing   StatusCode = 3003
	SearchInvalidRequest StatusCode = 3004
	SearchUnknown        StatusCode = 3005
	SearchCreated        StatusCode = 3006
	SearchUpdated        StatusCode = 3007
	SearchFound          StatusCode = 3008
	SearchFoundMany      StatusCode = 3009
	SearchIndexDropped   StatusCode = 3010
)

// Queue status codes.
const (
	QueueCredentials   StatusCode = 4001
	QueueClockSkew     StatusCode = 4002
	QueueLeaseExpired  StatusCode = 4003
	QueueMissing       StatusCode = 4004
	QueueInvalidItem   StatusCode = 4005
	QueueCreated       StatusCode = 4006
	QueueItemSubmitted StatusCode = 4007
	QueueItemReceived  StatusCode = 4008
	QueueNoItem        StatusCode = 4009
	QueueUnknown       StatusCode = 4099
)

// Outcome is the class of result a status code stands for.
type Outcome int

const (
	// OutcomeFailure is any error code.
	OutcomeFailure Outcome = iota
	// OutcomeEmpty is a success that carries no data.
	OutcomeEmpty
	// OutcomeSingle is a success that carries exactly one record.
	OutcomeSingle
	// OutcomeMany is a success that carries any number of records.
	OutcomeMany
)

// String returns a short name for the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeEmpty:
		return "empty"
	case OutcomeSingle:
		return "single"
	case OutcomeMany:
		return "many"
	default:
		return "failure"
	}
}

type statusInfo struct {
	backend Backend
	outcome Outcome
	name    string
}

var statusTable = map[StatusCode]statusInfo{
	CQLUnreachable:     {BackendCQL, OutcomeFailure, "unreachable"},
	CQLTimeout:         {BackendCQL, OutcomeFailure, "timeout"},
	CQLKeyspaceMissing: {BackendCQL, OutcomeFailure, "keyspace_missing"},
	CQLInvalidRequest:  {BackendCQL, OutcomeFailure, "invalid_request"},
	CQLUnknown:         {BackendCQL, OutcomeFailure, "unknown"},
	CQLObjectCreated:   {BackendCQL, OutcomeEmpty, "object_created"},
	CQLWriteOneRow:     {BackendCQL, OutcomeSingle, "write_one_row"},
	CQLWriteManyRows:   {BackendCQL, OutcomeMany, "write_many_rows"},
	CQLReadNoRows:      {BackendCQL, OutcomeEmpty, "read_no_rows"},
	CQLReadOneRow:      {BackendCQL, OutcomeSingle, "read_one_row"},
	CQLReadManyRows:    {BackendCQL, OutcomeMany, "read_many_rows"},

	SearchUnreachable:    {BackendSearch, OutcomeFailure, "unreachable"},
	SearchIndexCreate:    {BackendSearch, OutcomeFailure, "index_create"},
	SearchIndexMissing:   {BackendSearch, OutcomeFailure, "index_missing"},
	SearchInvalidRequest: {BackendSearch, OutcomeFailure, "invalid_request"},
	SearchUnknown:        {BackendSearch, OutcomeFailure, "unknown"},
	SearchCreated:        {BackendSearch, OutcomeSingle, "created"},
	SearchUpdated:        {BackendSearch, OutcomeSingle, "updated"},
	SearchFound:          {BackendSearch, OutcomeMany, "found"},
	SearchFoundMany:      {BackendSearch, OutcomeMany, "found_many"},
	SearchIndexDropped:   {BackendSearch, OutcomeEmpty, "index_dropped"},

	QueueCredentials:   {BackendQueue, OutcomeFailure, "credentials"},
	QueueClockSkew:     {BackendQueue, OutcomeFailure, "clock_skew"},
	QueueLeaseExpired:  {BackendQueue, OutcomeFailure, "lease_expired"},
	QueueMissing:       {BackendQueue, OutcomeFailure, "queue_missing"},
	QueueInvalidItem:   {BackendQueue, OutcomeFailure, "invalid_item"},
	QueueCreated:       {BackendQueue, OutcomeEmpty, "queue_created"},
	QueueItemSubmitted: {BackendQueue, OutcomeSingle, "item_submitted"},
	QueueItemReceived:  {BackendQueue, OutcomeSingle, "item_received"},
	QueueNoItem:        {BackendQueue, OutcomeEmpty, "no_item"},
	QueueUnknown:       {BackendQueue, OutcomeFailure, "unknown"},
}

// Known reports whether c is one of the defined status codes.
func (c StatusCode) Known() bool {
	_, ok := statusTable[c]
	return ok
}

// Backend returns the backend whose range contains c.
//
// Returns an empty Backend for codes outside every range.
func (c StatusCode) Backend() Backend {
	switch {
	case c >= 2000 && c < 3000:
		return BackendCQL
	case c >= 3000 && c < 4000:
		return BackendSearch
	case c >= 4000 && c < 5000:
		return BackendQueue
	default:
		return ""
	}
}

// Outcome returns the outcome class of c. Unknown codes are failures.
func (c StatusCode) Outcome() Outcome {
	if info, ok := statusTable[c]; ok {
		return info.outcome
	}

	return OutcomeFailure
}

// IsError reports whether c denotes a failure.
func (c StatusCode) IsError() bool {
	return c.Outcome() == OutcomeFailure
}

// Name returns a stable snake_case name for c, used as a metrics label.
func (c StatusCode) Name() string {
	if info, ok := statusTable[c]; ok {
		return info.name
	}

	return "undefined"
}

// StatusCodes returns every defined status code of the given backend.
func StatusCodes(b Backend) []StatusCode {
	codes := make([]StatusCode, 0, 12)
	for code, info := range statusTable {
		if info.backend == b {
			codes = append(codes, code)
		}
	}

	return codes
}
