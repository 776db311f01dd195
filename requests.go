package txcodec

// Request and response envelopes of the codec service. These are
// serialized with cramberry struct tags by the gRPC transport and
// passed by value by the in-process one.

// EncodeTxRequest carries a JSON transaction document.
type EncodeTxRequest struct {
	Document []byte `cramberry:"1"`
}

// EncodeTxResponse carries the wire bytes and their chain hash.
type EncodeTxResponse struct {
	TxBytes []byte `cramberry:"1"`
	TxHash  string `cramberry:"2"`
}

// DecodeTxRequest carries transaction wire bytes.
type DecodeTxRequest struct {
	TxBytes []byte `cramberry:"1"`
}

// DecodeTxResponse carries the JSON document of a decoded transaction.
type DecodeTxResponse struct {
	Document []byte `cramberry:"1"`
	TxHash   string `cramberry:"2"`
}

// DecodeTxInfoRequest carries a binary transaction receipt.
type DecodeTxInfoRequest struct {
	Response []byte `cramberry:"1"`
}

// DecodeTxInfoResponse carries the JSON document of a receipt.
type DecodeTxInfoResponse struct {
	Document []byte `cramberry:"1"`
	// Failed is true when the receipt carries a non-zero error code.
	Failed bool `cramberry:"2"`
}

// ParseLogsRequest carries the chain's raw_log string.
type ParseLogsRequest struct {
	RawLog string `cramberry:"1"`
}

// ParseLogsResponse carries the parsed per-message logs.
type ParseLogsResponse struct {
	// HasLogs distinguishes "no logs at all" (false) from a log list
	// that happens to be empty (true, Logs empty).
	HasLogs bool         `cramberry:"1"`
	Logs    []IndexedLog `cramberry:"2"`
	// Errors lists the records that were skipped as malformed.
	Errors []string `cramberry:"3"`
}

// IndexedLog is one message's log with its events indexed by
// event type and attribute key.
type IndexedLog struct {
	MsgIndex uint32       `cramberry:"1"`
	Log      string       `cramberry:"2"`
	Index    []IndexEntry `cramberry:"3"`
}

// IndexEntry is one (type, key) cell of the event index. Values keep
// encounter order, duplicates included.
type IndexEntry struct {
	Type   string   `cramberry:"1"`
	Key    string   `cramberry:"2"`
	Values []string `cramberry:"3"`
}
