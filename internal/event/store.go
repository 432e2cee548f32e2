package event

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultPath is where the events document lives unless configured otherwise.
const DefaultPath = "data/events.json"

// Store persists the whole events document to a single JSON file.
//
// Load and Save never fail from the caller's point of view: problems are
// logged and an empty document stands in for an unreadable file.
//
// Every method holds one in-process mutex, so Update is a linearizable
// load-mutate-save within a single process. Separate processes sharing
// the file are not coordinated and the last save wins.
type Store struct {
	mu   sync.Mutex
	path string
	log  logrus.FieldLogger
	now  func() time.Time
}

// NewStore returns a store backed by the file at path.
func NewStore(path string, log logrus.FieldLogger) *Store {
	if path == "" {
		path = DefaultPath
	}
	return &Store{
		path: path,
		log:  log.WithField("path", path),
		now:  time.Now,
	}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the document. A missing file yields an empty document silently;
// any other failure is logged and also yields an empty document.
func (s *Store) Load() *Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Save overwrites the file with doc. Failures are logged, not returned.
func (s *Store) Save(doc *Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.save(doc)
}

// Update runs fn against the freshly loaded document and saves the result,
// all under the store lock.
func (s *Store) Update(fn func(doc *Document)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.load()
	fn(doc)
	s.save(doc)
}

func (s *Store) load() *Document {
	if err := s.ensureDir(); err != nil {
		s.log.WithError(err).Error("failed to create data directory")
		return NewDocument()
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return NewDocument()
		}
		s.log.WithError(err).Error("failed to read events")
		return NewDocument()
	}

	var stored struct {
		Users map[string][]json.RawMessage `json:"users"`
	}
	if err := json.Unmarshal(data, &stored); err != nil {
		s.log.WithError(err).Error("failed to parse events, starting from an empty document")
		s.quarantine(data)
		return NewDocument()
	}

	doc := NewDocument()
	for userID, entries := range stored.Users {
		events := make([]Event, 0, len(entries))
		for _, entry := range entries {
			var e Event
			if err := json.Unmarshal(entry, &e); err != nil {
				s.log.WithError(err).WithField("user", userID).Warn("skipping unreadable event, it is kept in the file as is")
				doc.keepUnreadable(userID, entry)
				continue
			}
			events = append(events, e)
		}
		doc.Users[userID] = events
	}
	return doc
}

func (s *Store) save(doc *Document) {
	if err := s.ensureDir(); err != nil {
		s.log.WithError(err).Error("failed to create data directory")
		return
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		s.log.WithError(err).Error("failed to encode events")
		return
	}

	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		s.log.WithError(err).Error("failed to save events")
	}
}

// quarantine keeps a copy of unparseable bytes so the next save does not
// destroy the only copy.
func (s *Store) quarantine(data []byte) {
	dst := fmt.Sprintf("%s.corrupt-%d", s.path, s.now().Unix())
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		s.log.WithError(err).Error("failed to keep a copy of the corrupted events file")
		return
	}
	s.log.WithField("copy", dst).Warn("corrupted events file copied aside")
}

func (s *Store) ensureDir() error {
	return os.MkdirAll(filepath.Dir(s.path), 0o755)
}
