package enroll

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/gittutor/tutor/internal/api"
	"github.com/gittutor/tutor/internal/tomlfile"
)

// Cache is the durable enrolled-course set, kept per user in one TOML file.
// Every change rewrites the whole file; concurrent processes race and the
// last writer wins.
type Cache struct {
	path string
	now  func() time.Time
	mu   sync.Mutex
}

type cacheFile struct {
	Users map[string]cacheEntry `toml:"users"`
}

type cacheEntry struct {
	Courses   []string  `toml:"courses"`
	UpdatedAt time.Time `toml:"updated_at"`
}

// NewCache returns a cache stored at path.
func NewCache(path string) *Cache {
	return &Cache{path: path, now: time.Now}
}

// Load returns the cached course ids for user.
func (c *Cache) Load(user api.ID) ([]api.ID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	doc, err := c.read()
	if err != nil {
		return nil, err
	}
	entry := doc.Users[string(user)]
	ids := make([]api.ID, 0, len(entry.Courses))
	for _, id := range entry.Courses {
		ids = append(ids, api.ID(id))
	}
	return ids, nil
}

// Add records one more enrolled course for user.
func (c *Cache) Add(user, course api.ID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	doc, err := c.read()
	if err != nil {
		// A corrupt cache is replaced rather than blocking the write.
		doc = cacheFile{}
	}
	entry := doc.Users[string(user)]
	if slices.Contains(entry.Courses, string(course)) {
		return nil
	}
	entry.Courses = append(entry.Courses, string(course))
	return c.write(doc, user, entry)
}

// Replace overwrites the cached set for user.
func (c *Cache) Replace(user api.ID, courses []api.ID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	doc, err := c.read()
	if err != nil {
		doc = cacheFile{}
	}
	entry := cacheEntry{Courses: make([]string, 0, len(courses))}
	for _, id := range courses {
		entry.Courses = append(entry.Courses, string(id))
	}
	return c.write(doc, user, entry)
}

func (c *Cache) read() (cacheFile, error) {
	var doc cacheFile
	if _, err := tomlfile.Read(c.path, &doc); err != nil {
		return cacheFile{}, fmt.Errorf("enrollment cache: %w", err)
	}
	return doc, nil
}

func (c *Cache) write(doc cacheFile, user api.ID, entry cacheEntry) error {
	if doc.Users == nil {
		doc.Users = map[string]cacheEntry{}
	}
	entry.UpdatedAt = c.now().UTC()
	doc.Users[string(user)] = entry
	if err := tomlfile.Write(c.path, doc, 0o600); err != nil {
		return fmt.Errorf("enrollment cache: %w", err)
	}
	return nil
}
