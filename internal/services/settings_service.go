package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/m-zohaibk/AQUABILL/internal/config"
	"github.com/m-zohaibk/AQUABILL/internal/models"
)

// ISettingsService manages the per-tenant settings singleton.
type ISettingsService interface {
	Get(ctx context.Context) (models.Settings, error)
	Update(ctx context.Context, settings models.Settings) (models.Settings, error)
	Import(ctx context.Context, raw []byte) (models.Settings, error)
	Export(ctx context.Context) ([]byte, error)
}

const (
	settingsCollection    = "settings"
	settingsDocID         = "tenant" // single-tenant: one well-known document
	settingsUpdateChannel = "settings_updates"
)

// settingsDoc is the persisted shape of the singleton.
type settingsDoc struct {
	ID              string `bson:"_id"`
	models.Settings `bson:",inline"`
}

// settingsService implements ISettingsService with an in-memory cache
// invalidated over Redis pub/sub, so the api and bg processes converge after
// an update.
type settingsService struct {
	db    *mongo.Database
	cfg   *config.Config
	rdb   *redis.Client
	mutex sync.RWMutex
	cache *models.Settings
}

// NewSettingsService creates a new SettingsService and starts the pub/sub
// reload listener when Redis is available. The listener runs for the life of
// the process; the constructor itself always returns immediately.
func NewSettingsService(database *mongo.Database, cfg *config.Config, rdb *redis.Client) ISettingsService {
	s := &settingsService{db: database, cfg: cfg, rdb: rdb}
	go func() {
		if err := s.listenForUpdates(context.Background()); err != nil {
			log.Printf("Settings pub/sub listener stopped: %v", err)
		}
	}()
	return s
}

// defaults returns the documented settings defaults, with the rate taken
// from process configuration.
func (s *settingsService) defaults() models.Settings {
	d := models.DefaultSettings()
	if s.cfg != nil && s.cfg.DefaultRatePerMinute > 0 {
		d.RatePerMinute = s.cfg.DefaultRatePerMinute
	}
	return d
}

// Get returns the current settings, falling back to the documented defaults
// when no document has been saved yet.
func (s *settingsService) Get(ctx context.Context) (models.Settings, error) {
	s.mutex.RLock()
	if s.cache != nil {
		cached := *s.cache
		s.mutex.RUnlock()
		return cached, nil
	}
	s.mutex.RUnlock()

	var doc settingsDoc
	err := s.db.Collection(settingsCollection).FindOne(ctx, bson.M{"_id": settingsDocID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return s.defaults(), nil
		}
		return models.Settings{}, fmt.Errorf("error loading settings: %w", err)
	}

	s.mutex.Lock()
	s.cache = &doc.Settings
	s.mutex.Unlock()
	return doc.Settings, nil
}

// Update validates and persists the full settings document, then notifies
// other processes to drop their cache.
func (s *settingsService) Update(ctx context.Context, settings models.Settings) (models.Settings, error) {
	if settings.RatePerMinute <= 0 {
		return models.Settings{}, fmt.Errorf("%w: rate per minute must be positive", ErrValidation)
	}

	doc := settingsDoc{ID: settingsDocID, Settings: settings}
	opts := options.Replace().SetUpsert(true)
	if _, err := s.db.Collection(settingsCollection).ReplaceOne(ctx, bson.M{"_id": settingsDocID}, doc, opts); err != nil {
		return models.Settings{}, fmt.Errorf("error saving settings: %w", err)
	}

	s.mutex.Lock()
	s.cache = &doc.Settings
	s.mutex.Unlock()

	if s.rdb != nil {
		if err := s.rdb.Publish(ctx, settingsUpdateChannel, "updated").Err(); err != nil {
			log.Printf("Warning: failed to publish settings update notification: %v", err)
		}
	}
	return settings, nil
}

// Import applies a settings JSON file as a shallow merge onto the current
// settings. Unknown keys are ignored; malformed JSON rejects the import as a
// whole with ErrImport.
func (s *settingsService) Import(ctx context.Context, raw []byte) (models.Settings, error) {
	var patch models.SettingsPatch
	if err := json.Unmarshal(raw, &patch); err != nil {
		return models.Settings{}, fmt.Errorf("%w: %v", ErrImport, err)
	}
	if patch.RatePerMinute != nil && *patch.RatePerMinute <= 0 {
		return models.Settings{}, fmt.Errorf("%w: rate per minute must be positive", ErrImport)
	}

	current, err := s.Get(ctx)
	if err != nil {
		return models.Settings{}, err
	}
	return s.Update(ctx, current.Merge(patch))
}

// Export serializes the current settings in the exchange file format.
func (s *settingsService) Export(ctx context.Context) ([]byte, error) {
	settings, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(settings, "", "  ")
}

// listenForUpdates blocks on Redis pub/sub and drops the local cache on
// every notification, so the next Get reloads from the store. It is only
// ever run on the constructor's goroutine.
func (s *settingsService) listenForUpdates(ctx context.Context) error {
	if s.rdb == nil {
		log.Println("Redis client not configured, settings cache will not auto-refresh.")
		return nil
	}

	pubsub := s.rdb.Subscribe(ctx, settingsUpdateChannel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to confirm settings pub/sub subscription: %w", err)
	}

	ch := pubsub.Channel()
	log.Println("Subscribed to Redis channel for settings updates:", settingsUpdateChannel)

	for range ch {
		s.mutex.Lock()
		s.cache = nil
		s.mutex.Unlock()
	}

	log.Println("Settings pub/sub listener stopped.")
	return nil
}
