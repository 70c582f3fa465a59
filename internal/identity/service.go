// Package identity persists the reviewer's display name, the single piece of
// durable viewer state. Storage failures are deliberately swallowed: a
// missing or broken database reads as "no stored name" and writes are
// silently skipped, so identity problems can never crash the viewer.
package identity

import (
	"sync"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const authorNameKey = "author.name"

// ServiceConfig describes the dependencies of the identity service. Database
// may be nil, in which case the name lives in memory only.
type ServiceConfig struct {
	Database *gorm.DB
	Logger   *zap.Logger
}

// Service caches the author name in memory and writes changes through to
// durable storage when available.
type Service struct {
	mu     sync.Mutex
	db     *gorm.DB
	logger *zap.Logger
	name   string
	loaded bool
}

// NewService constructs the identity service.
func NewService(cfg ServiceConfig) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		db:     cfg.Database,
		logger: logger,
	}
}

// AuthorName returns the current author display name, reading durable
// storage once and caching the result. An unavailable store yields "".
func (s *Service) AuthorName() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		s.name = s.readStored()
		s.loaded = true
	}
	return s.name
}

// SetAuthorName caches the trimmed name and writes it through to durable
// storage. Write failures are logged and otherwise ignored.
func (s *Service) SetAuthorName(name string) {
	trimmed := normalize(name)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.name = trimmed
	s.loaded = true

	if s.db == nil {
		return
	}
	if trimmed == "" {
		if err := s.db.Delete(&Preference{Key: authorNameKey}).Error; err != nil {
			s.logger.Warn("author name removal skipped", zap.Error(err))
		}
		return
	}
	preference := Preference{Key: authorNameKey, Value: trimmed}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "pref_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"pref_value"}),
	}).Create(&preference).Error
	if err != nil {
		s.logger.Warn("author name write skipped", zap.Error(err))
	}
}

func (s *Service) readStored() string {
	if s.db == nil {
		return ""
	}
	var preference Preference
	if err := s.db.Where("pref_key = ?", authorNameKey).Take(&preference).Error; err != nil {
		return ""
	}
	return normalize(preference.Value)
}
