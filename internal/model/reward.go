package model

// Reward 积分流水，扣减时 PointsEarned 为负
type Reward struct {
	RewardID     int    `json:"rewardID,omitempty"`
	UserID       int    `json:"userID"`
	CollectorID  *int   `json:"collectorID"`
	PointsEarned int    `json:"pointsEarned"`
	Category     string `json:"category,omitempty"`
	CreatedAt    Time   `json:"createdAt"`
	User         *User  `json:"user,omitempty"`
}
