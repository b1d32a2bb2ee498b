package model

type ScanHistory struct {
	ScanID           int     `json:"scanID"`
	UserID           int     `json:"userID"`
	WasteID          int     `json:"wasteID"`
	Img              string  `json:"img"`
	Base64           string  `json:"base64,omitempty"`
	Confidence       float64 `json:"confidence"`
	Label            string  `json:"label"`
	Category         string  `json:"category"`
	ScannedAt        Time    `json:"scannedAt"`
	Email            string  `json:"email,omitempty"`
	WasteName        string  `json:"wasteName,omitempty"`
	WasteDescription string  `json:"wasteDescription,omitempty"`
}

// MonthlyStats 每月扫描次数
type MonthlyStats struct {
	Month     string `json:"month"`
	ScanCount int    `json:"scanCount"`
}
