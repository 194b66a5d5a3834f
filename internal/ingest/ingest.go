package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
)

// RawRecord mirrors one element of an exported lending-protocol transaction
// dump. Fields the scorer does not use are ignored during decoding.
type RawRecord struct {
	UserWallet string     `json:"userWallet"`
	Action     string     `json:"action"`
	Timestamp  FlexInt64  `json:"timestamp"`
	ActionData ActionData `json:"actionData"`
}

// ActionData carries the per-action payload fields used for USD valuation.
type ActionData struct {
	Amount        FlexString `json:"amount"`
	AssetSymbol   string     `json:"assetSymbol"`
	AssetPriceUSD FlexString `json:"assetPriceUSD"`
}

// SchemaError reports a dataset whose shape cannot be scored at all, as
// opposed to individual records that fail to parse and are dropped.
type SchemaError struct {
	Detail string
}

func (e *SchemaError) Error() string {
	return "dataset schema: " + e.Detail
}

// Source yields the raw records for one scoring run. The int result counts
// array elements that could not be decoded into a record.
type Source interface {
	Load(ctx context.Context) ([]RawRecord, int, error)
}

// FileSource reads a JSON array dump from local disk.
type FileSource struct {
	path   string
	logger zerolog.Logger
}

// NewFileSource constructs a Source over a dump file.
func NewFileSource(path string, logger zerolog.Logger) *FileSource {
	return &FileSource{
		path:   path,
		logger: logger.With().Str("component", "ingest").Logger(),
	}
}

// Load reads and decodes the whole dump.
func (s *FileSource) Load(ctx context.Context) ([]RawRecord, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	file, err := os.Open(s.path)
	if err != nil {
		return nil, 0, fmt.Errorf("open dataset: %w", err)
	}
	defer file.Close()

	records, malformed, err := Decode(file)
	if err != nil {
		return nil, 0, fmt.Errorf("decode %s: %w", s.path, err)
	}

	s.logger.Debug().
		Str("path", s.path).
		Int("records", len(records)).
		Int("malformed", malformed).
		Msg("dataset loaded")
	return records, malformed, nil
}

// Decode parses a JSON array of transaction records. Elements that are valid
// JSON but do not decode into a record are skipped and counted; a stream that
// is not a JSON array at all is a SchemaError.
func Decode(r io.Reader) ([]RawRecord, int, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return nil, 0, fmt.Errorf("read dataset: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return nil, 0, &SchemaError{Detail: fmt.Sprintf("expected a JSON array, found %v", tok)}
	}

	records := make([]RawRecord, 0, 1024)
	malformed := 0
	for dec.More() {
		var element json.RawMessage
		if err := dec.Decode(&element); err != nil {
			return nil, 0, fmt.Errorf("read dataset element %d: %w", len(records)+malformed, err)
		}

		var rec RawRecord
		if err := json.Unmarshal(element, &rec); err != nil {
			malformed++
			continue
		}
		records = append(records, rec)
	}

	if _, err := dec.Token(); err != nil {
		return nil, 0, fmt.Errorf("read dataset: %w", err)
	}

	return records, malformed, nil
}

var _ Source = (*FileSource)(nil)
