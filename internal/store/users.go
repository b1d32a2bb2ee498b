package store

import (
	"context"
	"net/http"

	"recycleadmin/internal/model"
)

type UserStore struct {
	*Resource[model.User]
}

func NewUserStore(c *Client) *UserStore {
	return &UserStore{Resource: NewResource[model.User](c, "users", PathUsers)}
}

// GetByFirebaseUID 按 firebase uid 查找用户
func (s *UserStore) GetByFirebaseUID(ctx context.Context, uid string) (*model.User, error) {
	var u model.User
	if err := s.c.do(ctx, "get user by firebase uid", http.MethodGet, PathUsers+"/firebase/"+escape(uid), nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// DeductPoints 扣减积分，请求体是 JSON 数字；存储可能回显更新后的用户
func (s *UserStore) DeductPoints(ctx context.Context, uid string, points int) (*model.User, error) {
	var u *model.User
	path := pathUsersLowercase + "/firebase/" + escape(uid) + "/deduct"
	if err := s.c.do(ctx, "deduct points", http.MethodPut, path, points, &u); err != nil {
		return nil, err
	}
	return u, nil
}
