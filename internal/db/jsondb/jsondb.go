// Package jsondb implements the storage interface on top of a JSON file.
// All records live in an in-memory cache which is flushed to disk on Close.
package jsondb

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/thoas/go-funk"

	"github.com/avoronkov42/backoffice/internal/models"
)

// JSONDB keeps the whole data set in memory and persists it as a single
// JSON document. It is suitable for development and tests, not for
// concurrent multi-process use.
type JSONDB struct {
	fileName string
	mutex    sync.RWMutex
	Cache    CacheStruct
}

// CacheStruct is the serialized shape of the data set.
type CacheStruct struct {
	Users          []*models.User
	NextUserID     int64
	Sessions       map[string]*models.Session
	Categories     []*models.Category
	NextCategoryID int64
}

// NewCache returns an empty, ready-to-use cache.
func NewCache() CacheStruct {
	return CacheStruct{
		Users:          []*models.User{},
		NextUserID:     1,
		Sessions:       map[string]*models.Session{},
		Categories:     []*models.Category{},
		NextCategoryID: 1,
	}
}

func initDBFile(fileName string) error {
	dbFile, err := os.OpenFile(fileName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}

	emptyCache, err := json.MarshalIndent(NewCache(), "", "\t")
	if err != nil {
		return err
	}

	if _, err := dbFile.Write(emptyCache); err != nil {
		return err
	}

	return dbFile.Close()
}

func writeToJSONFile(fileName string, cache interface{}) error {
	jsonData, err := json.MarshalIndent(cache, "", "\t")
	if err != nil {
		return fmt.Errorf("error marshaling JSON: %s", err)
	}

	file, err2 := os.OpenFile(fileName, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0644)
	if err2 != nil {
		return fmt.Errorf("error opening file: %s", err2)
	}
	defer file.Close()

	_, err = file.Write(jsonData)
	if err != nil {
		return fmt.Errorf("error writing to file: %s", err)
	}

	return nil
}

func parseJSONFile(fileName string, cacheMap *CacheStruct) error {
	file, err := os.Open(fileName)
	if err != nil {
		return err
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	err = decoder.Decode(cacheMap)
	if err != nil {
		return err
	}

	return nil
}

// New loads the data set from the given file, creating an empty one
// if the file does not exist yet.
func New(fileName string) (*JSONDB, error) {
	db := JSONDB{
		fileName: fileName,
		Cache:    NewCache(),
	}

	err := parseJSONFile(db.fileName, &db.Cache)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		err := initDBFile(fileName)
		if err != nil {
			return nil, err
		}
		err = parseJSONFile(db.fileName, &db.Cache)
		if err != nil {
			return nil, err
		}
	}

	return &db, nil
}

// CreateUser stores a new user and assigns it the next free ID.
func (db *JSONDB) CreateUser(ctx context.Context, usr *models.User) (*models.User, error) {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	usr.ID = db.Cache.NextUserID
	db.Cache.NextUserID++
	db.Cache.Users = append(db.Cache.Users, usr)

	return usr, nil
}

// GetUserByMail finds a user by the mail used as the login identifier.
func (db *JSONDB) GetUserByMail(ctx context.Context, mail string) (*models.User, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	found := funk.Find(db.Cache.Users, func(usr *models.User) bool {
		return usr.Mail == mail
	})
	if found == nil {
		return nil, models.ErrNotFound
	}

	usr := *found.(*models.User)

	return &usr, nil
}

// CreateSession stores a new login session.
func (db *JSONDB) CreateSession(ctx context.Context, session *models.Session) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	copied := *session
	db.Cache.Sessions[session.ID] = &copied

	return nil
}

// GetSession fetches a session by its identifier.
func (db *JSONDB) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	session, found := db.Cache.Sessions[sessionID]
	if !found {
		return nil, models.ErrSessionNotFound
	}

	copied := *session

	return &copied, nil
}

// DeleteSession removes a session. Deleting an absent session is not an error.
func (db *JSONDB) DeleteSession(ctx context.Context, sessionID string) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	delete(db.Cache.Sessions, sessionID)

	return nil
}

// GetCategories returns all categories that are not soft-deleted,
// in insertion order.
func (db *JSONDB) GetCategories(ctx context.Context) ([]models.Category, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	return db.filterCategories(func(category *models.Category) bool {
		return !category.IsDeleted()
	}), nil
}

// FindCategoriesByName returns non-deleted categories whose name contains
// the given substring, case-insensitively.
func (db *JSONDB) FindCategoriesByName(
	ctx context.Context,
	substring string,
) ([]models.Category, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	loweredSubstring := strings.ToLower(substring)

	return db.filterCategories(func(category *models.Category) bool {
		return !category.IsDeleted() &&
			strings.Contains(strings.ToLower(category.Name), loweredSubstring)
	}), nil
}

// GetCategoryByID fetches a category by ID regardless of its deleted state.
func (db *JSONDB) GetCategoryByID(ctx context.Context, id int64) (*models.Category, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	category := db.findCategory(id)
	if category == nil {
		return nil, models.ErrNotFound
	}

	copied := *category
	copied.Deleted = copied.IsDeleted()

	return &copied, nil
}

// InsertCategory stores a new category and assigns it the next free ID.
func (db *JSONDB) InsertCategory(
	ctx context.Context,
	category *models.Category,
) (*models.Category, error) {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	category.ID = db.Cache.NextCategoryID
	db.Cache.NextCategoryID++
	category.Deleted = category.IsDeleted()

	copied := *category
	db.Cache.Categories = append(db.Cache.Categories, &copied)

	return category, nil
}

// UpdateCategory replaces the stored name and deleted mark of the category
// with the same ID. A missing record is reported as models.ErrNotFound.
func (db *JSONDB) UpdateCategory(ctx context.Context, category *models.Category) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	stored := db.findCategory(category.ID)
	if stored == nil {
		return models.ErrNotFound
	}

	stored.Name = category.Name
	stored.DeletedAt = category.DeletedAt
	stored.Deleted = stored.IsDeleted()

	return nil
}

func (db *JSONDB) findCategory(id int64) *models.Category {
	found := funk.Find(db.Cache.Categories, func(category *models.Category) bool {
		return category.ID == id
	})
	if found == nil {
		return nil
	}

	return found.(*models.Category)
}

func (db *JSONDB) filterCategories(predicate func(*models.Category) bool) []models.Category {
	result := []models.Category{}
	for _, category := range db.Cache.Categories {
		if !predicate(category) {
			continue
		}
		copied := *category
		copied.Deleted = copied.IsDeleted()
		result = append(result, copied)
	}

	return result
}

// Ping always succeeds: the data set is already in memory.
func (db *JSONDB) Ping(ctx context.Context) error {
	return nil
}

// Close flushes the cache to the backing JSON file.
func (db *JSONDB) Close() error {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	return writeToJSONFile(db.fileName, db.Cache)
}
