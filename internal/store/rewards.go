package store

import (
	"context"
	"fmt"

	"recycleadmin/internal/model"
)

type RewardStore struct {
	*Resource[model.Reward]
}

func NewRewardStore(c *Client) *RewardStore {
	return &RewardStore{Resource: NewResource[model.Reward](c, "rewards", PathRewards)}
}

func (s *RewardStore) ListByUser(ctx context.Context, userID int) ([]model.Reward, error) {
	return listAt[model.Reward](ctx, s.c, "list rewards by user", fmt.Sprintf("%s/user/%d", PathRewards, userID))
}

// RecordTransaction 写入一条积分流水
func (s *RewardStore) RecordTransaction(ctx context.Context, r model.Reward) error {
	_, err := s.Create(ctx, r)
	return err
}
