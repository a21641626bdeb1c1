package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Key returns the stored API key for userID.
func (p *PostgresClient) Key(ctx context.Context, userID string) (string, bool, error) {
	var rec UserCredential
	err := p.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Take(&rec).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get key: %w", err)
	}
	return rec.APIKey, true, nil
}

// SetKey inserts or overwrites the key of userID.
func (p *PostgresClient) SetKey(ctx context.Context, userID, key string) error {
	rec := &UserCredential{UserID: userID, APIKey: key}
	tx := p.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"api_key", "updated_at"}),
	}).Create(rec)

	if tx.Error != nil {
		return fmt.Errorf("upsert key: %w", tx.Error)
	}
	return nil
}

// RemoveKey deletes the key of userID and reports whether one existed.
func (p *PostgresClient) RemoveKey(ctx context.Context, userID string) (bool, error) {
	tx := p.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&UserCredential{})

	if tx.Error != nil {
		return false, fmt.Errorf("delete key: %w", tx.Error)
	}
	return tx.RowsAffected > 0, nil
}

func (p *PostgresClient) HasAcceptedTOS(ctx context.Context, userID string) (bool, error) {
	var n int64
	err := p.DB.WithContext(ctx).
		Model(&TOSAcceptance{}).
		Where("user_id = ?", userID).
		Count(&n).Error

	if err != nil {
		return false, fmt.Errorf("check tos: %w", err)
	}
	return n > 0, nil
}

// AcceptTOS records the acceptance. It returns false if the user had already accepted.
func (p *PostgresClient) AcceptTOS(ctx context.Context, userID string) (bool, error) {
	tx := p.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&TOSAcceptance{UserID: userID})

	if tx.Error != nil {
		return false, fmt.Errorf("accept tos: %w", tx.Error)
	}
	return tx.RowsAffected > 0, nil
}
