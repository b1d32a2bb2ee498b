package form

import (
	"strconv"
	"strings"
	"time"

	"recycleadmin/internal/model"
)

// parser 逐字段解析，错误累积到 errs
type parser struct {
	errs FieldErrors
}

func newParser() *parser {
	return &parser{errs: FieldErrors{}}
}

func (p *parser) text(v Value) string {
	return v.String()
}

func (p *parser) int(field string, v Value) int {
	if v.Empty() {
		p.errs.add(field, "is required")
		return 0
	}
	n, err := strconv.Atoi(v.String())
	if err != nil {
		p.errs.add(field, "must be a whole number")
		return 0
	}
	return n
}

// optInt 空值返回 nil
func (p *parser) optInt(field string, v Value) *int {
	if v.Empty() {
		return nil
	}
	n := p.int(field, v)
	return &n
}

func (p *parser) float(field string, v Value) float64 {
	if v.Empty() {
		p.errs.add(field, "is required")
		return 0
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(v.String(), ",", "."), 64)
	if err != nil {
		p.errs.add(field, "must be a number")
		return 0
	}
	return f
}

func (p *parser) optFloat(field string, v Value) *float64 {
	if v.Empty() {
		return nil
	}
	f := p.float(field, v)
	return &f
}

// floatOr 空值使用默认值
func (p *parser) floatOr(field string, v Value, def float64) float64 {
	if v.Empty() {
		return def
	}
	return p.float(field, v)
}

// date 接受 YYYY-MM-DD 或带时间的格式，按 UTC 解析
func (p *parser) date(field string, v Value) time.Time {
	if v.Empty() {
		p.errs.add(field, "is required")
		return time.Time{}
	}
	t, err := model.ParseTime(v.String())
	if err != nil {
		p.errs.add(field, "must be a date (YYYY-MM-DD)")
		return time.Time{}
	}
	return t
}

func (p *parser) optDate(field string, v Value) time.Time {
	if v.Empty() {
		return time.Time{}
	}
	return p.date(field, v)
}
