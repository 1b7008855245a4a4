package storage

import (
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	settingsBucket = []byte("settings")
	metaBucket     = []byte("metadata")

	documentKey = []byte("document")
	savedAtKey  = []byte("saved_at")
)

// Store keeps the settings document in a bbolt file.
type Store struct {
	db *bolt.DB
}

func NewStore(dbPath string) (*Store, error) {
	return NewStoreWithTimeout(dbPath, 1*time.Second)
}

// NewStoreWithTimeout opens the database, waiting at most timeout for the
// file lock held by another newsroom process.
func NewStoreWithTimeout(dbPath string, timeout time.Duration) (*Store, error) {
	db, err := bolt.Open(dbPath, 0o600, &bolt.Options{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{settingsBucket, metaBucket} {
			if _, createErr := tx.CreateBucketIfNotExists(bucket); createErr != nil {
				return createErr
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Load reads the whole document. A database with no document yields the
// defaults.
func (s *Store) Load() (*Settings, error) {
	var settings *Settings
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(settingsBucket).Get(documentKey)
		if data == nil {
			settings = DefaultSettings()
			return nil
		}
		settings = &Settings{}
		return json.Unmarshal(data, settings)
	})
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}
	settings.Normalize()
	return settings, nil
}

// Save replaces the whole document in one transaction.
func (s *Store) Save(settings *Settings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(settingsBucket).Put(documentKey, data); err != nil {
			return err
		}
		stamp := []byte(time.Now().UTC().Format(time.RFC3339Nano))
		return tx.Bucket(metaBucket).Put(savedAtKey, stamp)
	})
	if err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}
	return nil
}

// LastSaved returns when the document was last written, or the zero time.
func (s *Store) LastSaved() (time.Time, error) {
	var ts time.Time
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(metaBucket).Get(savedAtKey)
		if raw == nil {
			return nil
		}
		parsed, err := time.Parse(time.RFC3339Nano, string(raw))
		if err != nil {
			return err
		}
		ts = parsed
		return nil
	})
	return ts, err
}
