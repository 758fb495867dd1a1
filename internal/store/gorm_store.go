package store

import (
	"errors"
	"time"

	"remindme/internal/models"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a looked-up row does not exist
var ErrNotFound = errors.New("record not found")

// GormStore implements Store on top of the shared gorm connection
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) DueReminders(now time.Time) ([]models.Reminder, error) {
	var reminders []models.Reminder
	err := s.db.
		Where("next_trigger_at <= ? AND completed = ?", now, false).
		Order("next_trigger_at asc").
		Find(&reminders).Error
	if err != nil {
		return nil, err
	}
	return reminders, nil
}

func (s *GormStore) UpdateReminderSchedule(id string, notifiedAt time.Time, nextTriggerAt time.Time, completed bool) error {
	return s.db.Model(&models.Reminder{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"last_notified_at": notifiedAt,
			"next_trigger_at":  nextTriggerAt,
			"completed":        completed,
			"updated_at":       time.Now(),
		}).Error
}

func (s *GormStore) AppendDelivery(rec *models.DeliveryRecord) error {
	return s.db.Create(rec).Error
}

func (s *GormStore) AccountByUsername(username string) (*models.Account, error) {
	var account models.Account
	if err := s.db.Where("username = ?", username).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &account, nil
}

func (s *GormStore) SessionByOwner(ownerID string) (*models.WaSession, error) {
	var session models.WaSession
	if err := s.db.Where("owner_id = ?", ownerID).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

func (s *GormStore) SaveSession(sess *models.WaSession) error {
	return s.db.Save(sess).Error
}

func (s *GormStore) ActiveSessions() ([]models.WaSession, error) {
	var sessions []models.WaSession
	err := s.db.
		Where("status IN ?", []models.SessionStatus{
			models.SessionConnecting,
			models.SessionCodePending,
			models.SessionReady,
		}).
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}
