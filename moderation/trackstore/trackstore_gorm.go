package trackstore

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// GormStore is the gorm-backed Store implementation (sqlite in the single
// host deployment, postgres also supported by the dialector).
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&TrackedSubmission{}); err != nil {
		return nil, err
	}
	return &GormStore{db: db}, nil
}

var _ Store = (*GormStore)(nil)

func (s *GormStore) Insert(ctx context.Context, submissionID, agentReplyID string) error {
	row := TrackedSubmission{
		SubmissionID: submissionID,
		AgentReplyID: agentReplyID,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrAlreadyTracked
		}
		return err
	}
	return nil
}

func (s *GormStore) Delete(ctx context.Context, submissionID string) error {
	return s.db.WithContext(ctx).Delete(&TrackedSubmission{}, "submission_id = ?", submissionID).Error
}

func (s *GormStore) Get(ctx context.Context, submissionID string) (*TrackedSubmission, error) {
	var row TrackedSubmission
	err := s.db.WithContext(ctx).First(&row, "submission_id = ?", submissionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (s *GormStore) List(ctx context.Context) ([]TrackedSubmission, error) {
	var rows []TrackedSubmission
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
