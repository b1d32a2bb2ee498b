package form

import (
	"recycleadmin/internal/model"
)

type VoucherForm struct {
	NameVoucher   Value `json:"nameVoucher"`
	Description   Value `json:"description"`
	DiscountValue Value `json:"discountValue"`
	Point         Value `json:"point"`
	Latitude      Value `json:"latitude"`
	Longitude     Value `json:"longitude"`
	Img2          Value `json:"img2"`
}

type voucherInput struct {
	NameVoucher   string   `json:"nameVoucher" validate:"notblank,max=200"`
	Description   string   `json:"description" validate:"max=2000"`
	DiscountValue *float64 `json:"discountValue" validate:"omitnil,gte=0"`
	Point         *int     `json:"point" validate:"omitnil,gte=0"`
	Latitude      *float64 `json:"latitude" validate:"omitnil,gte=-90,lte=90"`
	Longitude     *float64 `json:"longitude" validate:"omitnil,gte=-180,lte=180"`
	Img2          string   `json:"img2" validate:"omitempty,url"`
}

// Parse 数值字段留空时为 null
func (f VoucherForm) Parse() (model.Voucher, error) {
	p := newParser()
	in := voucherInput{
		NameVoucher:   p.text(f.NameVoucher),
		Description:   p.text(f.Description),
		DiscountValue: p.optFloat("discountValue", f.DiscountValue),
		Point:         p.optInt("point", f.Point),
		Latitude:      p.optFloat("latitude", f.Latitude),
		Longitude:     p.optFloat("longitude", f.Longitude),
		Img2:          p.text(f.Img2),
	}
	if err := check(p.errs, in); err != nil {
		return model.Voucher{}, err
	}
	return model.Voucher{
		NameVoucher:   in.NameVoucher,
		Description:   in.Description,
		DiscountValue: in.DiscountValue,
		Point:         in.Point,
		Latitude:      in.Latitude,
		Longitude:     in.Longitude,
		Img2:          in.Img2,
	}, nil
}

type VoucherUserForm struct {
	UserID    Value `json:"userID"`
	VoucherID Value `json:"voucherID"`
}

type voucherUserInput struct {
	UserID    int `json:"userID" validate:"gt=0"`
	VoucherID int `json:"voucherID" validate:"gt=0"`
}

func (f VoucherUserForm) Parse() (model.VoucherUser, error) {
	p := newParser()
	in := voucherUserInput{
		UserID:    p.int("userID", f.UserID),
		VoucherID: p.int("voucherID", f.VoucherID),
	}
	if err := check(p.errs, in); err != nil {
		return model.VoucherUser{}, err
	}
	return model.VoucherUser{UserID: in.UserID, VoucherID: in.VoucherID}, nil
}
