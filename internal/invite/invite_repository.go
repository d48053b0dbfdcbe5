package invite

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// TokenRepository persists invitation and email-verification tokens.
type TokenRepository interface {
	CreateInvite(t *InviteToken) error
	GetInviteByID(id uint) (*InviteToken, error)
	// ConsumeInvite atomically validates and consumes the invite token.
	// Exactly one concurrent caller wins; losers observe ErrTokenAlreadyUsed,
	// ErrTokenExpired or ErrTokenNotFound.
	ConsumeInvite(token string) (*InviteToken, error)
	// ExpireInvite forces the token's expiry into the past (revocation).
	ExpireInvite(id uint) error

	CreateVerify(t *VerifyToken) error
	ConsumeVerify(token string) (*VerifyToken, error)
}

type tokenRepository struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &tokenRepository{db: db}
}

func (r *tokenRepository) CreateInvite(t *InviteToken) error {
	return r.db.Create(t).Error
}

func (r *tokenRepository) GetInviteByID(id uint) (*InviteToken, error) {
	var t InviteToken
	if err := r.db.First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

// ConsumeInvite is the single conditional write the whole admission core
// hinges on: lookup, liveness check and mark-consumed happen in one UPDATE,
// and the affected-row count decides the winner of any race.
func (r *tokenRepository) ConsumeInvite(token string) (*InviteToken, error) {
	now := time.Now()
	res := r.db.Model(&InviteToken{}).
		Where("token = ? AND consumed_at IS NULL AND expires_at > ?", token, now).
		Update("consumed_at", now)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 1 {
		var t InviteToken
		if err := r.db.Where("token = ?", token).First(&t).Error; err != nil {
			return nil, err
		}
		return &t, nil
	}
	return nil, r.classifyInviteFailure(token)
}

// classifyInviteFailure inspects the losing token so the caller gets a
// distinguishable reason instead of a generic failure.
func (r *tokenRepository) classifyInviteFailure(token string) error {
	var t InviteToken
	if err := r.db.Where("token = ?", token).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTokenNotFound
		}
		return err
	}
	if t.ConsumedAt != nil {
		return ErrTokenAlreadyUsed
	}
	return ErrTokenExpired
}

func (r *tokenRepository) ExpireInvite(id uint) error {
	return r.db.Model(&InviteToken{}).
		Where("id = ?", id).
		Update("expires_at", time.Now().Add(-time.Second)).Error
}

func (r *tokenRepository) CreateVerify(t *VerifyToken) error {
	return r.db.Create(t).Error
}

func (r *tokenRepository) ConsumeVerify(token string) (*VerifyToken, error) {
	now := time.Now()
	res := r.db.Model(&VerifyToken{}).
		Where("token = ? AND consumed_at IS NULL AND expires_at > ?", token, now).
		Update("consumed_at", now)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 1 {
		var t VerifyToken
		if err := r.db.Where("token = ?", token).First(&t).Error; err != nil {
			return nil, err
		}
		return &t, nil
	}

	var t VerifyToken
	if err := r.db.Where("token = ?", token).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}
	if t.ConsumedAt != nil {
		return nil, ErrTokenAlreadyUsed
	}
	return nil, ErrTokenExpired
}
