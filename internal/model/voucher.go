package model

type Voucher struct {
	VoucherID     int      `json:"voucherID"`
	NameVoucher   string   `json:"nameVoucher"`
	Description   string   `json:"description"`
	DiscountValue *float64 `json:"discountValue"`
	Point         *int     `json:"point"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
	Img2          string   `json:"img2"`
}

// VoucherUser 用户兑换的优惠券
type VoucherUser struct {
	IDUserVoucher int `json:"idUserVoucher"`
	UserID        int `json:"userID"`
	VoucherID     int `json:"voucherID"`
}
