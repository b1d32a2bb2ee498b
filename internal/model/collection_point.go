package model

// CollectionPoint 垃圾回收点
type CollectionPoint struct {
	ID        int     `json:"id"`
	Name      string  `json:"name"`
	Phone     string  `json:"phone"`
	OpenTime  string  `json:"opentime"`
	Img       string  `json:"img"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address"`
}

type WasteType struct {
	WasteID     int    `json:"wasteID"`
	Name        string `json:"name"`
	Description string `json:"description"`
}
