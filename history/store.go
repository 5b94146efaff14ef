package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	logger "github.com/multiversx/mx-chain-logger-go"
)

var log = logger.GetOrCreate("history")

var errInvalidMaxPoints = errors.New("max history points must be positive")

// Document is the persisted time-series shape: one ordered label (unix timestamp) per
// snapshot and, per entity, one sample sequence per metric, all kept at the same length
type Document struct {
	Labels []int64                         `json:"labels"`
	Items  map[string]map[string][]float64 `json:"items"`
}

// NewDocument creates an empty history document skeleton
func NewDocument() *Document {
	return &Document{
		Labels: []int64{},
		Items:  map[string]map[string][]float64{},
	}
}

// jsonStore persists a history document as a single JSON file
type jsonStore struct {
	filePath  string
	maxPoints int
}

// NewJSONStore creates a new JSON-file backed history store
func NewJSONStore(filePath string, maxPoints int) (*jsonStore, error) {
	if maxPoints <= 0 {
		return nil, errInvalidMaxPoints
	}

	return &jsonStore{
		filePath:  filePath,
		maxPoints: maxPoints,
	}, nil
}

// Load reads the history document, falling back to the empty skeleton when the file is
// missing or malformed
func (s *jsonStore) Load() *Document {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn("could not read history file, starting fresh", "file", s.filePath, "error", err)
		}
		return NewDocument()
	}

	doc := &Document{}
	err = json.Unmarshal(data, doc)
	if err != nil {
		log.Warn("malformed history file, starting fresh", "file", s.filePath, "error", err)
		return NewDocument()
	}

	if doc.Labels == nil {
		doc.Labels = []int64{}
	}
	if doc.Items == nil {
		doc.Items = map[string]map[string][]float64{}
	}

	return doc
}

// Save writes the history document to disk
func (s *jsonStore) Save(doc *Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal history document: %w", err)
	}

	err = os.WriteFile(s.filePath, data, 0644)
	if err != nil {
		return fmt.Errorf("failed to write history file '%s': %w", s.filePath, err)
	}

	return nil
}

// Append records one snapshot under a new timestamp label. Entities appearing for the
// first time are back-filled with zeros for all prior labels; entities missing from the
// snapshot receive a zero sample so every sequence keeps the label count. Everything is
// then trimmed, oldest first, to the retention limit.
func (s *jsonStore) Append(doc *Document, snapshot map[string]map[string]float64, metricKeys []string, timestamp int64) {
	doc.Labels = append(doc.Labels, timestamp)
	currentLen := len(doc.Labels)

	for name := range snapshot {
		_, known := doc.Items[name]
		if !known {
			doc.Items[name] = make(map[string][]float64, len(metricKeys))
		}
	}

	for name, item := range doc.Items {
		metrics := snapshot[name]
		for _, key := range metricKeys {
			seq, ok := item[key]
			if !ok {
				seq = make([]float64, currentLen-1, currentLen)
			}
			item[key] = append(seq, metrics[key])
		}
	}

	s.trim(doc)
}

func (s *jsonStore) trim(doc *Document) {
	if len(doc.Labels) <= s.maxPoints {
		return
	}

	doc.Labels = doc.Labels[len(doc.Labels)-s.maxPoints:]
	for _, item := range doc.Items {
		for key, seq := range item {
			if len(seq) > s.maxPoints {
				item[key] = seq[len(seq)-s.maxPoints:]
			}
		}
	}
}

// IsInterfaceNil returns true if the value under the interface is nil
func (s *jsonStore) IsInterfaceNil() bool {
	return s == nil
}
