package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recycleadmin/internal/form"
	"recycleadmin/internal/model"
	"recycleadmin/internal/notify"
)

const promptDeleteUser = "Bạn có chắc chắn muốn xóa user này?"

// UserStore 用户资源
type UserStore interface {
	Crud[model.User]
	Get(ctx context.Context, id int) (*model.User, error)
}

type UserHandler struct {
	users    UserStore
	notifier notify.Notifier
	logger   *zap.Logger
}

func NewUserHandler(users UserStore, notifier notify.Notifier, logger *zap.Logger) *UserHandler {
	return &UserHandler{users: users, notifier: notifier, logger: logger}
}

func (h *UserHandler) Register(g *gin.RouterGroup) {
	g.GET("", h.List)
	g.POST("", h.Create)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

// List GET /users?q= 按姓名、邮箱/电话本地搜索
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		notifyFailure(c, h.notifier, h.logger, "load users", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": redact(searchUsers(users, c.Query("q")))})
}

func searchUsers(users []model.User, q string) []model.User {
	q = strings.ToLower(strings.TrimSpace(q))
	out := make([]model.User, 0, len(users))
	for _, u := range users {
		if q == "" ||
			strings.Contains(strings.ToLower(u.FullName), q) ||
			strings.Contains(strings.ToLower(u.Email), q) {
			out = append(out, u)
		}
	}
	return out
}

// redact 不向前端返回密码哈希与 OTP
func redact(users []model.User) []model.User {
	out := make([]model.User, len(users))
	for i, u := range users {
		u.PasswordHash = ""
		u.OTP = ""
		out[i] = u
	}
	return out
}

// Create POST /users，密码以 bcrypt 哈希保存
func (h *UserHandler) Create(c *gin.Context) {
	var f form.UserForm
	if !bindForm(c, &f) {
		return
	}
	u, err := f.Parse(true)
	if err != nil {
		respondError(c, h.logger, "create user", err)
		return
	}

	created, err := h.users.Create(c.Request.Context(), u)
	if err != nil {
		notifyFailure(c, h.notifier, h.logger, "create user", err)
		return
	}
	h.done(c, http.StatusCreated, "create user", "Thêm user thành công!", created)
}

// Update PUT /users/:id，密码留空时保留原哈希，points 缺省时保留原积分
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := pathID(c, h.logger)
	if !ok {
		return
	}
	var f form.UserForm
	if !bindForm(c, &f) {
		return
	}
	u, err := f.Parse(false)
	if err != nil {
		respondError(c, h.logger, "update user", err)
		return
	}
	u.UserID = id

	keepPoints := f.Points.Empty()
	if u.PasswordHash == "" || u.UserIDFirebase == "" || keepPoints {
		existing, err := h.users.Get(c.Request.Context(), id)
		if err != nil {
			notifyFailure(c, h.notifier, h.logger, "update user", err)
			return
		}
		if u.PasswordHash == "" {
			u.PasswordHash = existing.PasswordHash
		}
		if u.UserIDFirebase == "" {
			u.UserIDFirebase = existing.UserIDFirebase
		}
		if keepPoints {
			u.Points = existing.Points
		}
		u.OTP = existing.OTP
	}

	if err := h.users.Update(c.Request.Context(), id, u); err != nil {
		notifyFailure(c, h.notifier, h.logger, "update user", err)
		return
	}
	h.done(c, http.StatusOK, "update user", "Cập nhật user thành công!", &u)
}

// Delete DELETE /users/:id?confirm=true
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, h.logger)
	if !ok {
		return
	}
	if !confirmed(c) {
		c.JSON(http.StatusPreconditionRequired, gin.H{"error": "confirmation_required", "prompt": promptDeleteUser})
		return
	}
	if err := h.users.Delete(c.Request.Context(), id); err != nil {
		notifyFailure(c, h.notifier, h.logger, "delete user", err)
		return
	}
	h.done(c, http.StatusOK, "delete user", "Xóa user thành công!", nil)
}

func (h *UserHandler) done(c *gin.Context, status int, action, message string, u *model.User) {
	ctx := c.Request.Context()
	h.notifier.Notify(ctx, notify.Success(action, message))

	body := gin.H{"message": message}
	if u != nil {
		item := *u
		item.PasswordHash = ""
		item.OTP = ""
		body["item"] = item
	}
	if users, err := h.users.List(ctx); err == nil {
		body["items"] = redact(users)
	} else {
		h.logger.Warn("Re-fetch after mutation failed", zap.String("action", action), zap.Error(err))
	}
	c.JSON(status, body)
}
