package qr

import (
	"encoding/base64"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// DefaultSize PNG 边长（像素）
const DefaultSize = 200

// RenderPNG 渲染二维码，返回 base64 编码的 PNG
func RenderPNG(content string, size int) (string, error) {
	if size <= 0 {
		size = DefaultSize
	}
	png, err := qrcode.Encode(content, qrcode.Medium, size)
	if err != nil {
		return "", fmt.Errorf("failed to render qr code: %w", err)
	}
	return base64.StdEncoding.EncodeToString(png), nil
}
