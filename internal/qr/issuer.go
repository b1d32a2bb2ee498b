package qr

import (
	"time"

	"go.uber.org/zap"
)

// Issued 一次生成的结果，两种编码承载同一份载荷
type Issued struct {
	Payload Payload `json:"payload"`
	JSON    string  `json:"json"`
	Token   string  `json:"token"`
	PNG     string  `json:"png"`
}

type Issuer struct {
	signer *Signer
	ttl    time.Duration
	size   int
	now    func() time.Time
	logger *zap.Logger
}

func NewIssuer(signer *Signer, ttl time.Duration, size int, logger *zap.Logger) *Issuer {
	return &Issuer{signer: signer, ttl: ttl, size: size, now: time.Now, logger: logger}
}

// Issue 生成二维码载荷、签名 token 和 PNG
func (i *Issuer) Issue(uid string, points int, category string) (*Issued, error) {
	p := NewPayload(uid, points, category, i.now(), i.ttl)

	text, err := p.JSON()
	if err != nil {
		return nil, err
	}
	token, err := i.signer.Sign(p)
	if err != nil {
		return nil, err
	}
	png, err := RenderPNG(token, i.size)
	if err != nil {
		return nil, err
	}

	i.logger.Info("QR code issued",
		zap.String("uid", uid),
		zap.Int("points", points),
		zap.String("nonce", p.Nonce),
		zap.Time("expires_at", p.ExpiresAt),
	)
	return &Issued{Payload: p, JSON: text, Token: token, PNG: png}, nil
}
