package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/stoik/emailapi/internal/models"
)

// MySQLStore persists emails through gorm on MySQL
type MySQLStore struct {
	db *gorm.DB
}

func NewMySQLStore(dsn string) (*MySQLStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("database.url not configured")
	}

	gdb, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open mysql: %w", err)
	}
	return &MySQLStore{db: gdb}, nil
}

// NewGormStore wraps an existing gorm handle, whatever its dialect
func NewGormStore(gdb *gorm.DB) *MySQLStore {
	return &MySQLStore{db: gdb}
}

func (s *MySQLStore) Sync(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&models.Email{}); err != nil {
		return fmt.Errorf("failed to migrate Emails table: %w", err)
	}
	return nil
}

func (s *MySQLStore) Create(ctx context.Context, email models.NewEmail) (models.Email, error) {
	record := models.Email{Subject: email.Subject, Message: email.Message}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return models.Email{}, fmt.Errorf("failed to insert email: %w", err)
	}
	return record, nil
}

func (s *MySQLStore) BulkCreate(ctx context.Context, emails []models.NewEmail) ([]models.Email, error) {
	records := make([]models.Email, 0, len(emails))
	for _, e := range emails {
		records = append(records, models.Email{Subject: e.Subject, Message: e.Message})
	}
	if len(records) == 0 {
		return records, nil
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&records).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to bulk insert emails: %w", err)
	}
	return records, nil
}

func (s *MySQLStore) FindByID(ctx context.Context, id int64) (models.Email, error) {
	var email models.Email
	err := s.db.WithContext(ctx).First(&email, id).Error
	return email, translateGormError(err)
}

func (s *MySQLStore) FindOne(ctx context.Context, filter models.EmailFilter) (models.Email, error) {
	q := s.db.WithContext(ctx).Model(&models.Email{})
	if filter.Subject != nil {
		q = q.Where("subject = ?", *filter.Subject)
	}
	if filter.Message != nil {
		q = q.Where("message = ?", *filter.Message)
	}

	var email models.Email
	err := q.Order("id").First(&email).Error
	return email, translateGormError(err)
}

func (s *MySQLStore) FindAll(ctx context.Context) ([]models.Email, error) {
	emails := make([]models.Email, 0)
	if err := s.db.WithContext(ctx).Order("id").Find(&emails).Error; err != nil {
		return nil, fmt.Errorf("failed to list emails: %w", err)
	}
	return emails, nil
}

func (s *MySQLStore) Update(ctx context.Context, id int64, patch models.EmailPatch) (models.Email, error) {
	var email models.Email
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&email, id).Error; err != nil {
			return err
		}
		if patch.Empty() {
			return nil
		}

		updates := map[string]interface{}{}
		if patch.Subject != nil {
			updates["subject"] = *patch.Subject
		}
		if patch.Message != nil {
			updates["message"] = *patch.Message
		}
		if err := tx.Model(&models.Email{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}
		email = patch.Apply(email)
		return nil
	})
	if err != nil {
		return models.Email{}, translateGormError(err)
	}
	return email, nil
}

func (s *MySQLStore) Delete(ctx context.Context, id int64) error {
	res := s.db.WithContext(ctx).Delete(&models.Email{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete email: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Truncate uses DELETE rather than TRUNCATE so AUTO_INCREMENT keeps counting
func (s *MySQLStore) Truncate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Email{}).Error; err != nil {
		return fmt.Errorf("failed to truncate Emails: %w", err)
	}
	return nil
}

func (s *MySQLStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *MySQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func translateGormError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("failed to query email: %w", err)
}
