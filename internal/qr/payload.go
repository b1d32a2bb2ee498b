package qr

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DefaultTTL 二维码有效期
const DefaultTTL = 60 * time.Second

// Payload 二维码内容，字段与移动端生成的 JSON 一致；category 为 UTF-8 后的 base64
type Payload struct {
	UID       string    `json:"uid"`
	Points    int       `json:"points"`
	Category  string    `json:"category"`
	Nonce     string    `json:"nonce"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// NewPayload 生成带随机 nonce 的载荷
func NewPayload(uid string, points int, category string, now time.Time, ttl time.Duration) Payload {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	now = now.UTC()
	return Payload{
		UID:       uid,
		Points:    points,
		Category:  EncodeCategory(category),
		Nonce:     uuid.NewString(),
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

func EncodeCategory(category string) string {
	return base64.StdEncoding.EncodeToString([]byte(category))
}

// DecodeCategory 非 base64 时原样返回
func DecodeCategory(encoded string) string {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return encoded
	}
	return string(raw)
}

// Expired 未设置过期时间的载荷视为不过期
func (p Payload) Expired(now time.Time) bool {
	return !p.ExpiresAt.IsZero() && now.After(p.ExpiresAt)
}

// JSON 移动端格式的文本
func (p Payload) JSON() (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("failed to marshal qr payload: %w", err)
	}
	return string(data), nil
}
