package form

import (
	"time"

	"recycleadmin/internal/model"
)

type RewardForm struct {
	UserID       Value `json:"userID"`
	CollectorID  Value `json:"collectorID"`
	PointsEarned Value `json:"pointsEarned"`
	Category     Value `json:"category"`
}

type rewardInput struct {
	UserID       int    `json:"userID" validate:"gt=0"`
	CollectorID  *int   `json:"collectorID" validate:"omitnil,gt=0"`
	PointsEarned int    `json:"pointsEarned"`
	Category     string `json:"category" validate:"max=100"`
}

// Parse createdAt 由调用方填写
func (f RewardForm) Parse() (model.Reward, error) {
	p := newParser()
	in := rewardInput{
		UserID:       p.int("userID", f.UserID),
		CollectorID:  p.optInt("collectorID", f.CollectorID),
		PointsEarned: p.int("pointsEarned", f.PointsEarned),
		Category:     p.text(f.Category),
	}
	if err := check(p.errs, in); err != nil {
		return model.Reward{}, err
	}
	return model.Reward{
		UserID:       in.UserID,
		CollectorID:  in.CollectorID,
		PointsEarned: in.PointsEarned,
		Category:     in.Category,
	}, nil
}

type ScanHistoryForm struct {
	UserID     Value `json:"userID"`
	WasteID    Value `json:"wasteID"`
	Img        Value `json:"img"`
	Confidence Value `json:"confidence"`
	Label      Value `json:"label"`
	Category   Value `json:"category"`
	ScannedAt  Value `json:"scannedAt"`
}

type scanHistoryInput struct {
	UserID     int       `json:"userID" validate:"gt=0"`
	WasteID    int       `json:"wasteID" validate:"gt=0"`
	Img        string    `json:"img"`
	Confidence float64   `json:"confidence" validate:"gte=0,lte=1"`
	Label      string    `json:"label" validate:"notblank,max=100"`
	Category   string    `json:"category" validate:"max=100"`
	ScannedAt  time.Time `json:"scannedAt"`
}

// Parse scannedAt 留空时取 now
func (f ScanHistoryForm) Parse(now time.Time) (model.ScanHistory, error) {
	p := newParser()
	in := scanHistoryInput{
		UserID:     p.int("userID", f.UserID),
		WasteID:    p.int("wasteID", f.WasteID),
		Img:        p.text(f.Img),
		Confidence: p.floatOr("confidence", f.Confidence, 0),
		Label:      p.text(f.Label),
		Category:   p.text(f.Category),
		ScannedAt:  p.optDate("scannedAt", f.ScannedAt),
	}
	if err := check(p.errs, in); err != nil {
		return model.ScanHistory{}, err
	}
	if in.ScannedAt.IsZero() {
		in.ScannedAt = now.UTC()
	}
	return model.ScanHistory{
		UserID:     in.UserID,
		WasteID:    in.WasteID,
		Img:        in.Img,
		Confidence: in.Confidence,
		Label:      in.Label,
		Category:   in.Category,
		ScannedAt:  model.NewTime(in.ScannedAt),
	}, nil
}

type PointForm struct {
	Name      Value `json:"name"`
	Phone     Value `json:"phone"`
	OpenTime  Value `json:"opentime"`
	Img       Value `json:"img"`
	Latitude  Value `json:"latitude"`
	Longitude Value `json:"longitude"`
	Address   Value `json:"address"`
}

type pointInput struct {
	Name      string  `json:"name" validate:"notblank,max=200"`
	Phone     string  `json:"phone" validate:"omitempty,contact"`
	OpenTime  string  `json:"opentime" validate:"max=100"`
	Img       string  `json:"img"`
	Latitude  float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`
	Address   string  `json:"address" validate:"notblank,max=300"`
}

func (f PointForm) Parse() (model.CollectionPoint, error) {
	p := newParser()
	in := pointInput{
		Name:      p.text(f.Name),
		Phone:     p.text(f.Phone),
		OpenTime:  p.text(f.OpenTime),
		Img:       p.text(f.Img),
		Latitude:  p.float("latitude", f.Latitude),
		Longitude: p.float("longitude", f.Longitude),
		Address:   p.text(f.Address),
	}
	if err := check(p.errs, in); err != nil {
		return model.CollectionPoint{}, err
	}
	return model.CollectionPoint{
		Name:      in.Name,
		Phone:     in.Phone,
		OpenTime:  in.OpenTime,
		Img:       in.Img,
		Latitude:  in.Latitude,
		Longitude: in.Longitude,
		Address:   in.Address,
	}, nil
}

// NearbyQuery 附近回收点查询
type NearbyQuery struct {
	Lat      float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lng      float64 `json:"lng" validate:"gte=-180,lte=180"`
	RadiusKm float64 `json:"radius_km" validate:"gt=0,lte=100"`
}

// ParseNearby 半径默认 5km
func ParseNearby(lat, lng, radius string) (NearbyQuery, error) {
	p := newParser()
	q := NearbyQuery{
		Lat:      p.float("lat", Value(lat)),
		Lng:      p.float("lng", Value(lng)),
		RadiusKm: p.floatOr("radius_km", Value(radius), 5),
	}
	if err := check(p.errs, q); err != nil {
		return NearbyQuery{}, err
	}
	return q, nil
}

// ParseID 解析路径或查询参数中的正整数 ID
func ParseID(field, raw string) (int, error) {
	p := newParser()
	id := p.int(field, Value(raw))
	if len(p.errs) == 0 && id <= 0 {
		p.errs.add(field, "must be greater than 0")
	}
	if err := p.errs.err(); err != nil {
		return 0, err
	}
	return id, nil
}

// ParseOptionalID 空值返回 0
func ParseOptionalID(field, raw string) (int, error) {
	if Value(raw).Empty() {
		return 0, nil
	}
	return ParseID(field, raw)
}
