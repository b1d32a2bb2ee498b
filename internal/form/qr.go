package form

import (
	"strings"
)

// IssueForm 生成积分二维码
type IssueForm struct {
	UID      Value `json:"uid"`
	Points   Value `json:"points"`
	Category Value `json:"category"`
}

type IssueInput struct {
	UID      string `json:"uid" validate:"notblank,max=128"`
	Points   int    `json:"points" validate:"gt=0"`
	Category string `json:"category" validate:"required,wastetype"`
}

func (f IssueForm) Parse() (IssueInput, error) {
	p := newParser()
	in := IssueInput{
		UID:      p.text(f.UID),
		Points:   p.int("points", f.Points),
		Category: p.text(f.Category),
	}
	if err := check(p.errs, in); err != nil {
		return IssueInput{}, err
	}
	return in, nil
}

// RedeemForm 兑换机扫码后的请求
type RedeemForm struct {
	Code   string `json:"code"`
	Points Value  `json:"points"`
}

type RedeemInput struct {
	Code   string `json:"code" validate:"notblank"`
	Points int    `json:"points" validate:"gt=0"`
}

func (f RedeemForm) Parse() (RedeemInput, error) {
	p := newParser()
	in := RedeemInput{
		Code:   strings.TrimSpace(f.Code),
		Points: p.int("points", f.Points),
	}
	if err := check(p.errs, in); err != nil {
		return RedeemInput{}, err
	}
	return in, nil
}
