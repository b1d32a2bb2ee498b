package store

import (
	"recycleadmin/internal/model"
)

// 记录存储默认路径（相对 base_url）
const (
	PathUsers          = "Users"
	PathVouchers       = "Vouchers"
	PathVoucherUsers   = "VoucherUsers"
	PathRewards        = "Rewards"
	PathScanHistories  = "ScanHistories"
	PathPoints         = "pointsGarbages"
	PathWasteTypes     = "WasteTypes"
	PathSchedules      = "WasteCollectionSchedules"
	pathUsersLowercase = "users"
)

// Stores 汇总所有资源
type Stores struct {
	Schedules     *ScheduleStore
	Users         *UserStore
	Rewards       *RewardStore
	ScanHistories *ScanHistoryStore
	Vouchers      *Resource[model.Voucher]
	VoucherUsers  *Resource[model.VoucherUser]
	Points        *Resource[model.CollectionPoint]
	WasteTypes    *Resource[model.WasteType]
}

func NewStores(c *Client) *Stores {
	return &Stores{
		Schedules:     NewScheduleStore(c),
		Users:         NewUserStore(c),
		Rewards:       NewRewardStore(c),
		ScanHistories: NewScanHistoryStore(c),
		Vouchers:      NewResource[model.Voucher](c, "voucher", PathVouchers),
		VoucherUsers:  NewResource[model.VoucherUser](c, "voucher user", PathVoucherUsers),
		Points:        NewResource[model.CollectionPoint](c, "collection point", PathPoints),
		WasteTypes:    NewResource[model.WasteType](c, "waste type", PathWasteTypes),
	}
}
