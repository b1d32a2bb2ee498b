package qr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"recycleadmin/internal/model"
	"recycleadmin/pkg/logger"
	"recycleadmin/pkg/metrics"
)

var (
	ErrMissingUID  = errors.New("qr code has no uid")
	ErrInvalidCode = errors.New("invalid qr code")
	ErrExpired     = errors.New("qr code expired")
	ErrReplayed    = errors.New("qr code already used")
)

// InsufficientPointsError 余额不足，不会发起扣减
type InsufficientPointsError struct {
	Balance   int
	Requested int
}

func (e *InsufficientPointsError) Error() string {
	return fmt.Sprintf("insufficient points: balance %d, requested %d", e.Balance, e.Requested)
}

// Accounts 用户积分账户
type Accounts interface {
	GetByFirebaseUID(ctx context.Context, uid string) (*model.User, error)
	DeductPoints(ctx context.Context, uid string, points int) (*model.User, error)
}

// Ledger 积分流水
type Ledger interface {
	RecordTransaction(ctx context.Context, r model.Reward) error
}

// NonceGuard 一次性占位，见 util.Deduper
type NonceGuard interface {
	AcquireOnce(ctx context.Context, scope, key string) bool
	Release(ctx context.Context, scope, key string)
}

const nonceScope = "qr_nonce"

// Receipt 兑换结果
type Receipt struct {
	UserID   int    `json:"userID"`
	UID      string `json:"uid"`
	FullName string `json:"fullName"`
	Deducted int    `json:"deducted"`
	Balance  int    `json:"balance"`
	Message  string `json:"message"`
}

// Kiosk 兑换机扫码扣分
type Kiosk struct {
	accounts Accounts
	ledger   Ledger
	guard    NonceGuard
	signer   *Signer
	now      func() time.Time
	logger   *zap.Logger
}

func NewKiosk(accounts Accounts, ledger Ledger, guard NonceGuard, signer *Signer, logger *zap.Logger) *Kiosk {
	return &Kiosk{
		accounts: accounts,
		ledger:   ledger,
		guard:    guard,
		signer:   signer,
		now:      time.Now,
		logger:   logger,
	}
}

// Decode 以 { 开头按 JSON 解析，否则按签名 token 校验
func (k *Kiosk) Decode(code string) (Payload, error) {
	code = strings.TrimSpace(code)
	var (
		p   Payload
		err error
	)
	if strings.HasPrefix(code, "{") {
		if jerr := json.Unmarshal([]byte(code), &p); jerr != nil {
			return Payload{}, fmt.Errorf("%w: %v", ErrInvalidCode, jerr)
		}
	} else {
		if k.signer == nil {
			return Payload{}, ErrInvalidCode
		}
		p, err = k.signer.Parse(code)
		if err != nil {
			return Payload{}, err
		}
	}
	if strings.TrimSpace(p.UID) == "" {
		return Payload{}, ErrMissingUID
	}
	return p, nil
}

// Redeem 扣减积分并记一条负数流水；流水写入失败只记日志
func (k *Kiosk) Redeem(ctx context.Context, code string, points int) (*Receipt, error) {
	log := logger.WithTrace(ctx, k.logger)

	p, err := k.Decode(code)
	if err != nil {
		metrics.IncrementRedemption(redemptionResult(err))
		return nil, err
	}
	if p.Expired(k.now()) {
		metrics.IncrementRedemption("expired")
		return nil, ErrExpired
	}

	guarded := p.Nonce != "" && k.guard != nil
	if guarded && !k.guard.AcquireOnce(ctx, nonceScope, p.Nonce) {
		metrics.IncrementRedemption("replayed")
		return nil, ErrReplayed
	}
	release := func() {
		if guarded {
			k.guard.Release(ctx, nonceScope, p.Nonce)
		}
	}

	user, err := k.accounts.GetByFirebaseUID(ctx, p.UID)
	if err != nil {
		release()
		metrics.IncrementRedemption("failed")
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if user.Points < points {
		release()
		metrics.IncrementRedemption("insufficient")
		log.Info("Redemption rejected for insufficient points",
			zap.String("uid", p.UID),
			zap.Int("balance", user.Points),
			zap.Int("requested", points),
		)
		return nil, &InsufficientPointsError{Balance: user.Points, Requested: points}
	}

	updated, err := k.accounts.DeductPoints(ctx, p.UID, points)
	if err != nil {
		release()
		metrics.IncrementRedemption("failed")
		return nil, fmt.Errorf("deduct points: %w", err)
	}

	balance := user.Points - points
	if updated != nil && updated.UserID != 0 {
		balance = updated.Points
	}

	reward := model.Reward{
		UserID:       user.UserID,
		PointsEarned: -points,
		Category:     DecodeCategory(p.Category),
		CreatedAt:    model.NewTime(k.now().UTC()),
	}
	if err := k.ledger.RecordTransaction(ctx, reward); err != nil {
		log.Warn("Failed to record redemption transaction",
			zap.Int("user_id", user.UserID),
			zap.Int("points", points),
			zap.Error(err),
		)
	}

	metrics.IncrementRedemption("success")
	log.Info("Points redeemed",
		zap.String("uid", p.UID),
		zap.Int("user_id", user.UserID),
		zap.Int("points", points),
		zap.Int("balance", balance),
	)

	name := user.FullName
	if name == "" {
		name = "ẩn danh"
	}
	return &Receipt{
		UserID:   user.UserID,
		UID:      p.UID,
		FullName: user.FullName,
		Deducted: points,
		Balance:  balance,
		Message:  fmt.Sprintf("Đã trừ %d điểm của user %s.", points, name),
	}, nil
}

func redemptionResult(err error) string {
	switch {
	case errors.Is(err, ErrExpired):
		return "expired"
	case errors.Is(err, ErrMissingUID):
		return "missing_uid"
	default:
		return "invalid"
	}
}
