package store

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

// Resource 记录存储中一类记录的通用 CRUD
type Resource[T any] struct {
	c    *Client
	name string
	path string
}

func NewResource[T any](c *Client, name, path string) *Resource[T] {
	return &Resource[T]{c: c, name: name, path: path}
}

// List 获取全部记录；404 视为没有记录
func (r *Resource[T]) List(ctx context.Context) ([]T, error) {
	return listAt[T](ctx, r.c, "list "+r.name, r.path)
}

func (r *Resource[T]) Get(ctx context.Context, id int) (*T, error) {
	var out T
	if err := r.c.do(ctx, "get "+r.name, http.MethodGet, r.itemPath(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create 返回存储回显的记录；响应为空时返回提交的值
func (r *Resource[T]) Create(ctx context.Context, v T) (*T, error) {
	var out *T
	if err := r.c.do(ctx, "create "+r.name, http.MethodPost, r.path, v, &out); err != nil {
		return nil, err
	}
	if out == nil {
		return &v, nil
	}
	return out, nil
}

func (r *Resource[T]) Update(ctx context.Context, id int, v T) error {
	return r.c.do(ctx, "update "+r.name, http.MethodPut, r.itemPath(id), v, nil)
}

func (r *Resource[T]) Delete(ctx context.Context, id int) error {
	return r.c.do(ctx, "delete "+r.name, http.MethodDelete, r.itemPath(id), nil, nil)
}

func (r *Resource[T]) itemPath(id int) string {
	return fmt.Sprintf("%s/%d", r.path, id)
}

func listAt[T any](ctx context.Context, c *Client, op, path string) ([]T, error) {
	var out []T
	err := c.do(ctx, op, http.MethodGet, path, nil, &out)
	if errors.Is(err, ErrNotFound) {
		return []T{}, nil
	}
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

func escape(segment string) string {
	return url.PathEscape(segment)
}
