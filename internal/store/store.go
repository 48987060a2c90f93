package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/filmora/internal/domain"
	bolt "go.etcd.io/bbolt"
)

// MaxRecentSearches bounds the persisted recent-search list.
const MaxRecentSearches = 10

// Bucket names
var (
	bucketFavorites = []byte("favorites")
	bucketSearches  = []byte("searches")
)

const recentKey = "recent"

// LocalStore implements domain.Store using BoltDB.
type LocalStore struct {
	db *bolt.DB
	mu sync.RWMutex // Protects memory cache

	// Serializes read-modify-write sequences (recent searches, favorite upserts)
	writeMu sync.Mutex

	// In-memory cache for hot-path reads (promoted on access)
	cache map[string][]byte

	now func() time.Time
}

var _ domain.Store = (*LocalStore)(nil)

// NewLocalStore opens filmora.db under dir. An empty dir gives a memory-only
// store that forgets everything on exit.
func NewLocalStore(dir string) (*LocalStore, error) {
	if dir == "" {
		return &LocalStore{cache: make(map[string][]byte), now: time.Now}, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dir, "filmora.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketFavorites, bucketSearches} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &LocalStore{db: db, cache: make(map[string][]byte), now: time.Now}, nil
}

func (s *LocalStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// === Generic helpers ===

func cacheKey(bucket []byte, key string) string {
	return string(bucket) + ":" + key
}

func (s *LocalStore) get(bucket []byte, key string, dest interface{}) bool {
	ck := cacheKey(bucket, key)

	s.mu.RLock()
	if data, ok := s.cache[ck]; ok {
		s.mu.RUnlock()
		return json.Unmarshal(data, dest) == nil
	}
	s.mu.RUnlock()

	if s.db == nil {
		return false
	}

	var data []byte
	s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})

	if data == nil {
		return false
	}

	// Promote to memory cache
	s.mu.Lock()
	s.cache[ck] = data
	s.mu.Unlock()

	return json.Unmarshal(data, dest) == nil
}

func (s *LocalStore) set(bucket []byte, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	if s.db != nil {
		err := s.db.Update(func(tx *bolt.Tx) error {
			return tx.Bucket(bucket).Put([]byte(key), data)
		})
		if err != nil {
			return fmt.Errorf("failed to write %s: %w", cacheKey(bucket, key), err)
		}
	}

	s.mu.Lock()
	s.cache[cacheKey(bucket, key)] = data
	s.mu.Unlock()
	return nil
}

func (s *LocalStore) delete(bucket []byte, key string) error {
	if s.db != nil {
		err := s.db.Update(func(tx *bolt.Tx) error {
			b := tx.Bucket(bucket)
			if b == nil {
				return nil
			}
			return b.Delete([]byte(key))
		})
		if err != nil {
			return fmt.Errorf("failed to delete %s: %w", cacheKey(bucket, key), err)
		}
	}

	s.mu.Lock()
	delete(s.cache, cacheKey(bucket, key))
	s.mu.Unlock()
	return nil
}

// values returns every raw value in bucket. With a database the bucket is
// authoritative; in memory-only mode the cache is.
func (s *LocalStore) values(bucket []byte) ([][]byte, error) {
	if s.db == nil {
		prefix := string(bucket) + ":"
		s.mu.RLock()
		defer s.mu.RUnlock()
		var out [][]byte
		for k, v := range s.cache {
			if strings.HasPrefix(k, prefix) {
				out = append(out, v)
			}
		}
		return out, nil
	}

	var out [][]byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		return b.ForEach(func(_, v []byte) error {
			data := make([]byte, len(v))
			copy(data, v)
			out = append(out, data)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", bucket, err)
	}
	return out, nil
}

// === Favorites ===

func favoriteKey(id int) string { return strconv.Itoa(id) }

// AddFavorite records m as a favorite. Adding an existing favorite refreshes
// its title and poster but keeps the original AddedAt.
func (s *LocalStore) AddFavorite(m domain.Movie) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	fav := domain.Favorite{
		ID:         m.ID,
		Title:      m.Title,
		PosterPath: m.PosterPath,
		AddedAt:    s.now(),
	}
	var existing domain.Favorite
	if s.get(bucketFavorites, favoriteKey(m.ID), &existing) {
		fav.AddedAt = existing.AddedAt
	}
	return s.set(bucketFavorites, favoriteKey(m.ID), fav)
}

// RemoveFavorite deletes the favorite with id. Removing a missing favorite is not an error.
func (s *LocalStore) RemoveFavorite(id int) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.delete(bucketFavorites, favoriteKey(id))
}

// UpdateFavorite overwrites the stored title, and the poster path when
// posterPath is non-empty. Returns domain.ErrNotFound if id is not a favorite.
func (s *LocalStore) UpdateFavorite(id int, title, posterPath string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var fav domain.Favorite
	if !s.get(bucketFavorites, favoriteKey(id), &fav) {
		return fmt.Errorf("favorite %d: %w", id, domain.ErrNotFound)
	}
	fav.Title = title
	if posterPath != "" {
		fav.PosterPath = posterPath
	}
	return s.set(bucketFavorites, favoriteKey(id), fav)
}

func (s *LocalStore) IsFavorite(id int) bool {
	var fav domain.Favorite
	return s.get(bucketFavorites, favoriteKey(id), &fav)
}

// Favorites returns every favorite in insertion order.
func (s *LocalStore) Favorites() ([]domain.Favorite, error) {
	raw, err := s.values(bucketFavorites)
	if err != nil {
		return nil, err
	}

	favs := make([]domain.Favorite, 0, len(raw))
	for _, data := range raw {
		var fav domain.Favorite
		if err := json.Unmarshal(data, &fav); err != nil {
			return nil, fmt.Errorf("failed to decode favorite: %w", err)
		}
		favs = append(favs, fav)
	}

	sort.Slice(favs, func(i, j int) bool {
		if !favs[i].AddedAt.Equal(favs[j].AddedAt) {
			return favs[i].AddedAt.Before(favs[j].AddedAt)
		}
		return favs[i].ID < favs[j].ID
	})
	return favs, nil
}

func (s *LocalStore) FavoriteCount() int {
	raw, err := s.values(bucketFavorites)
	if err != nil {
		return 0
	}
	return len(raw)
}

// === Recent searches ===

// RecentSearches returns stored queries, most recent first.
func (s *LocalStore) RecentSearches() []string {
	var recent []string
	s.get(bucketSearches, recentKey, &recent)
	return recent
}

// AddRecentSearch trims query and moves it to the front of the list.
// Empty queries are ignored; the list never exceeds MaxRecentSearches.
func (s *LocalStore) AddRecentSearch(query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	recent := []string{query}
	for _, q := range s.RecentSearches() {
		if q != query {
			recent = append(recent, q)
		}
	}
	if len(recent) > MaxRecentSearches {
		recent = recent[:MaxRecentSearches]
	}
	return s.set(bucketSearches, recentKey, recent)
}

func (s *LocalStore) RemoveRecentSearch(query string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	current := s.RecentSearches()
	recent := make([]string, 0, len(current))
	for _, q := range current {
		if q != query {
			recent = append(recent, q)
		}
	}
	return s.set(bucketSearches, recentKey, recent)
}

func (s *LocalStore) ClearRecentSearches() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.delete(bucketSearches, recentKey)
}
