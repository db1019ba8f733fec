// Package service contains the content processing pipelines and
// account workflows sitting between the HTTP handlers and the
// external collaborators
package service

import (
	"fmt"
	"math/rand"
	"time"

	"toolbox/web-api/config"
	"toolbox/web-api/model"
	"toolbox/web-api/security"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type OTPService struct {
	cfg    *config.Config
	db     *gorm.DB
	mailer *Mailer
}

func NewOTPService(cfg *config.Config, db *gorm.DB, mailer *Mailer) *OTPService {
	return &OTPService{
		cfg:    cfg,
		db:     db,
		mailer: mailer,
	}
}

// Issue generates a fresh passcode for email, persists it with the
// configured validity window and tries to deliver it. Delivery failure
// doesn't fail issuance, the caller gets delivered=false and can tell
// the user to retry.
func (s *OTPService) Issue(email, purpose string) (code string, delivered bool, err error) {
	code, err = security.MakeOTPCode()
	if err != nil {
		return "", false, fmt.Errorf("failed to generate passcode, %w", err)
	}

	now := time.Now()
	rec := &model.OTPCode{
		Email:     email,
		Code:      code,
		Purpose:   purpose,
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.OTP.Validity),
	}

	if err := s.db.Create(rec).Error; err != nil {
		return "", false, fmt.Errorf("failed to persist passcode, %w", err)
	}

	delivered = s.mailer.SendOTP(email, code, purpose)

	zap.L().Debug("Passcode issued",
		zap.String("purpose", purpose),
		zap.Bool("delivered", delivered))

	return code, delivered, nil
}

// Verify consumes the newest matching passcode. The claim is a single
// conditional UPDATE so two concurrent calls can never both succeed
// on the same row.
func (s *OTPService) Verify(email, code, purpose string) (bool, error) {
	now := time.Now()

	newest := s.db.
		Model(&model.OTPCode{}).
		Select("id").
		Where("email = ? AND code = ? AND purpose = ? AND used = ? AND expires_at > ?",
			email, code, purpose, false, now).
		Order("created_at DESC").
		Limit(1)

	res := s.db.
		Model(&model.OTPCode{}).
		Where("id = (?)", newest).
		Updates(map[string]any{
			"used":    true,
			"used_at": now,
		})
	if res.Error != nil {
		return false, fmt.Errorf("failed to claim passcode, %w", res.Error)
	}

	return res.RowsAffected == 1, nil
}

// SweepExpired deletes passcodes that can never be accepted again.
// Consumed rows are included: nothing reads them back, so keeping
// them for audit would only grow the table.
func (s *OTPService) SweepExpired() {
	res := s.db.
		Where("expires_at < ? OR used = ?", time.Now(), true).
		Delete(&model.OTPCode{})
	if res.Error != nil {
		zap.L().Error("Failed to sweep passcodes", zap.Error(res.Error))
		return
	}

	if res.RowsAffected > 0 {
		zap.L().Debug("Swept stale passcodes", zap.Int64("deleted", res.RowsAffected))
	}
}

// StartSweeper runs SweepExpired on a fixed interval so storage stays
// bounded even with no traffic
func (s *OTPService) StartSweeper() {
	ticker := time.NewTicker(s.cfg.OTP.SweepInterval)

	zap.L().Debug("Passcode sweeper attached", zap.Duration("tick_every", s.cfg.OTP.SweepInterval))

	go func() {
		for range ticker.C {
			s.SweepExpired()
		}
	}()
}

// MaybeSweep fires a sweep on a small fraction of calls. It never
// blocks the calling request.
func (s *OTPService) MaybeSweep() {
	if rand.Float64() < s.cfg.OTP.SweepChance {
		go s.SweepExpired()
	}
}
