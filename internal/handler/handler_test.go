package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"recycleadmin/internal/form"
	"recycleadmin/internal/model"
	"recycleadmin/internal/notify"
	"recycleadmin/internal/qr"
	"recycleadmin/internal/schedule"
	"recycleadmin/internal/store"
	"recycleadmin/pkg/circuitbreaker"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeSchedules 内存中的记录存储
type fakeSchedules struct {
	mu      sync.Mutex
	list    []schedule.Schedule
	failOn  map[string]error
	calls   map[string]int
	created []schedule.Schedule
}

func newFakeSchedules(list ...schedule.Schedule) *fakeSchedules {
	return &fakeSchedules{list: list, failOn: map[string]error{}, calls: map[string]int{}}
}

func (f *fakeSchedules) hit(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
	return f.failOn[op]
}

func (f *fakeSchedules) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeSchedules) ListSchedules(context.Context) ([]schedule.Schedule, error) {
	if err := f.hit("list"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]schedule.Schedule, len(f.list))
	copy(out, f.list)
	return out, nil
}

func (f *fakeSchedules) ListSchedulesByUser(ctx context.Context, userID int) ([]schedule.Schedule, error) {
	all, err := f.ListSchedules(ctx)
	if err != nil {
		return nil, err
	}
	var out []schedule.Schedule
	for _, s := range all {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSchedules) CreateSchedule(_ context.Context, s schedule.Schedule) (*schedule.Schedule, error) {
	if err := f.hit("create"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	s.ScheduleID = len(f.list) + 100
	f.list = append(f.list, s)
	f.created = append(f.created, s)
	return &s, nil
}

func (f *fakeSchedules) UpdateSchedule(_ context.Context, s schedule.Schedule) error {
	if err := f.hit("update"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.list {
		if f.list[i].ScheduleID == s.ScheduleID {
			f.list[i] = s
		}
	}
	return nil
}

func (f *fakeSchedules) UpdateScheduleStatus(_ context.Context, id int, status schedule.Status) error {
	if err := f.hit("status"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.list {
		if f.list[i].ScheduleID == id {
			f.list[i].Status = status
		}
	}
	return nil
}

func (f *fakeSchedules) DeleteSchedule(_ context.Context, id int) error {
	if err := f.hit("delete"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.list[:0]
	for _, s := range f.list {
		if s.ScheduleID != id {
			out = append(out, s)
		}
	}
	f.list = out
	return nil
}

// fakeCrud 通用资源
type fakeCrud[T any] struct {
	items     []T
	updated   map[int]T
	deleted   []int
	createErr error
}

func (f *fakeCrud[T]) List(context.Context) ([]T, error) { return f.items, nil }

func (f *fakeCrud[T]) Get(_ context.Context, id int) (*T, error) {
	if id <= 0 || id > len(f.items) {
		return nil, &store.RemoteError{Op: "get", StatusCode: http.StatusNotFound}
	}
	v := f.items[id-1]
	return &v, nil
}

func (f *fakeCrud[T]) Create(_ context.Context, v T) (*T, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.items = append(f.items, v)
	return &v, nil
}

func (f *fakeCrud[T]) Update(_ context.Context, id int, v T) error {
	if f.updated == nil {
		f.updated = map[int]T{}
	}
	f.updated[id] = v
	return nil
}

func (f *fakeCrud[T]) Delete(_ context.Context, id int) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func do(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func sampleSchedules() []schedule.Schedule {
	when := model.NewTime(time.Date(2024, 5, 2, 8, 0, 0, 0, time.UTC))
	return []schedule.Schedule{
		{ScheduleID: 1, UserID: 3, WasteType: "Tái chế", Latitude: 10.77, Longitude: 106.70, ScheduledDate: when, Status: schedule.StatusPending},
		{ScheduleID: 2, UserID: 4, WasteType: "Hữu cơ", Latitude: 10.80, Longitude: 106.65, ScheduledDate: when, Status: schedule.StatusScheduled},
		{ScheduleID: 3, UserID: 3, WasteType: "General", Latitude: 10.81, Longitude: 106.66, ScheduledDate: when, Status: schedule.StatusCompleted},
	}
}

func scheduleRouter(t *testing.T) (*gin.Engine, *fakeSchedules, *notify.Recorder) {
	t.Helper()
	fs := newFakeSchedules(sampleSchedules()...)
	rec := notify.NewRecorder()
	m := schedule.NewManager(fs, rec, zap.NewNop())
	r := gin.New()
	NewScheduleHandler(m, rec, zap.NewNop()).Register(r.Group("/schedules"))
	return r, fs, rec
}

func TestListSchedulesFilters(t *testing.T) {
	r, _, _ := scheduleRouter(t)

	w := do(t, r, http.MethodGet, "/schedules?user_id=3&status=Pending", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Len(t, body["schedules"], 1)

	w = do(t, r, http.MethodGet, "/schedules?status=Done", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodGet, "/schedules?user_id=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListSchedulesStoreFailureIs502(t *testing.T) {
	r, fs, rec := scheduleRouter(t)
	fs.failOn["list"] = &store.RemoteError{Op: "list schedules", StatusCode: http.StatusInternalServerError}

	w := do(t, r, http.MethodGet, "/schedules", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Len(t, rec.OfKind(notify.KindError), 1)
}

func TestUpdateStatusFlow(t *testing.T) {
	r, fs, rec := scheduleRouter(t)
	require.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/schedules", nil).Code)

	w := do(t, r, http.MethodPut, "/schedules/1/status", map[string]any{"status": "Scheduled"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "Cập nhật trạng thái thành công: Đã xác nhận", body["message"])
	assert.Equal(t, "Scheduled", body["schedule"].(map[string]any)["status"])
	assert.Equal(t, 1, fs.count("status"))
	assert.Len(t, rec.OfKind(notify.KindSuccess), 1)
}

func TestUpdateStatusSameStatusHasNoMessage(t *testing.T) {
	r, fs, rec := scheduleRouter(t)

	w := do(t, r, http.MethodPut, "/schedules/1/status", map[string]any{"status": "Pending"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, decode(t, w), "message")
	assert.Zero(t, fs.count("status"))
	assert.Empty(t, rec.All())
}

func TestUpdateStatusListOutageFetchesOnce(t *testing.T) {
	r, fs, rec := scheduleRouter(t)
	fs.failOn["list"] = &store.RemoteError{Op: "list schedules", StatusCode: http.StatusServiceUnavailable}

	w := do(t, r, http.MethodPut, "/schedules/1/status", map[string]any{"status": "Scheduled"})
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, 1, fs.count("list"))
	assert.Zero(t, fs.count("status"))
	assert.Len(t, rec.OfKind(notify.KindError), 1)
}

func TestUpdateScheduleKeepsStatusAndCreatedAt(t *testing.T) {
	r, fs, _ := scheduleRouter(t)
	created := model.NewTime(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	fs.list[1].CreatedAt = created

	w := do(t, r, http.MethodPut, "/schedules/2", map[string]any{
		"userID": "4", "wasteType": "General", "scheduledDate": "2024-06-01",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	stored := fs.list[1]
	assert.Equal(t, schedule.StatusScheduled, stored.Status)
	assert.True(t, created.Equal(stored.CreatedAt.Time))
	assert.Equal(t, "General", stored.WasteType)
}

func TestCancelWithoutConfirmationIs428(t *testing.T) {
	r, fs, rec := scheduleRouter(t)

	w := do(t, r, http.MethodPut, "/schedules/2/status", map[string]any{"status": "Cancelled"})
	require.Equal(t, http.StatusPreconditionRequired, w.Code)
	body := decode(t, w)
	assert.Equal(t, "confirmation_required", body["error"])
	assert.Equal(t, schedule.PromptCancel, body["prompt"])
	assert.Zero(t, fs.count("status"))
	assert.Empty(t, rec.All())

	w = do(t, r, http.MethodPut, "/schedules/2/status", map[string]any{"status": "Cancelled", "confirm": true})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, fs.count("status"))
}

func TestIllegalTransitionIs409(t *testing.T) {
	r, fs, _ := scheduleRouter(t)

	w := do(t, r, http.MethodPut, "/schedules/3/status", map[string]any{"status": "Pending"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Zero(t, fs.count("status"))
}

func TestStatusStoreFailureNotifiesOnce(t *testing.T) {
	r, fs, rec := scheduleRouter(t)
	fs.failOn["status"] = &store.TransportError{Op: "update status", Err: &url.Error{Op: "Put", URL: "http://store/schedules/1", Err: errors.New("connection refused")}}

	w := do(t, r, http.MethodPut, "/schedules/1/status", map[string]any{"status": "Scheduled"})
	assert.Equal(t, http.StatusBadGateway, w.Code)
	require.Len(t, rec.OfKind(notify.KindError), 1)
	assert.Contains(t, rec.OfKind(notify.KindError)[0].Message, "update status failed:")
}

func TestCreateScheduleValidatesForm(t *testing.T) {
	r, fs, _ := scheduleRouter(t)

	w := do(t, r, http.MethodPost, "/schedules", map[string]any{
		"userID": "abc", "wasteType": "Tái chế", "scheduledDate": "2024-06-01",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["fields"], "userID")
	assert.Zero(t, fs.count("create"))

	w = do(t, r, http.MethodPost, "/schedules", map[string]any{
		"userID": "9", "wasteType": "Tái chế", "scheduledDate": "2024-06-01",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.Len(t, fs.created, 1)
	assert.Equal(t, schedule.StatusPending, fs.created[0].Status)
	assert.Equal(t, schedule.DefaultLatitude, fs.created[0].Latitude)
}

func TestDeleteScheduleNeedsConfirm(t *testing.T) {
	r, fs, _ := scheduleRouter(t)

	w := do(t, r, http.MethodDelete, "/schedules/1", nil)
	assert.Equal(t, http.StatusPreconditionRequired, w.Code)
	assert.Zero(t, fs.count("delete"))

	w = do(t, r, http.MethodDelete, "/schedules/1?confirm=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["schedules"], 2)
}

func TestTransitionsEndpoint(t *testing.T) {
	r, _, _ := scheduleRouter(t)

	w := do(t, r, http.MethodGet, "/schedules/1/transitions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	opts := decode(t, w)["options"].([]any)
	require.Len(t, opts, 3)
	assert.Equal(t, "Pending", opts[0].(map[string]any)["status"])

	w = do(t, r, http.MethodGet, "/schedules/99/transitions", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMarkersAndMarkerAction(t *testing.T) {
	r, fs, _ := scheduleRouter(t)

	w := do(t, r, http.MethodGet, "/schedules/markers", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["markers"], 2)

	w = do(t, r, http.MethodPost, "/schedules/markers/2/actions", map[string]any{"status": "Completed"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 1, fs.count("status"))

	// 已完成的记录不再有标记
	w = do(t, r, http.MethodPost, "/schedules/markers/3/actions", map[string]any{"status": "Cancelled", "confirm": true})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExportSchedules(t *testing.T) {
	r, _, _ := scheduleRouter(t)

	w := do(t, r, http.MethodGet, "/schedules/export.xlsx", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "schedules-")
	assert.Equal(t, "PK", w.Body.String()[:2])
}

func TestResourceHandlerCRUD(t *testing.T) {
	fc := &fakeCrud[model.CollectionPoint]{}
	rec := notify.NewRecorder()
	r := gin.New()
	NewPointHandler(fc, rec, zap.NewNop()).Register(r.Group("/points"))

	w := do(t, r, http.MethodPost, "/points", map[string]any{
		"name": "Điểm A", "address": "1 Lê Lợi", "latitude": "10.7725", "longitude": "106.6980",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Len(t, decode(t, w)["items"], 1)
	assert.Len(t, rec.OfKind(notify.KindSuccess), 1)

	w = do(t, r, http.MethodPut, "/points/1", map[string]any{
		"name": "Điểm B", "address": "2 Lê Lợi", "latitude": 10.78, "longitude": 106.7,
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, fc.updated[1].ID)

	w = do(t, r, http.MethodDelete, "/points/1", nil)
	assert.Equal(t, http.StatusPreconditionRequired, w.Code)
	w = do(t, r, http.MethodDelete, "/points/1?confirm=1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []int{1}, fc.deleted)

	w = do(t, r, http.MethodGet, "/points/nearby?lat=10.7725&lng=106.6980", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["items"], 1)
}

func TestResourceCreateFailureNotifies(t *testing.T) {
	fc := &fakeCrud[model.Voucher]{createErr: &store.RemoteError{Op: "create voucher", StatusCode: 500}}
	rec := notify.NewRecorder()
	r := gin.New()
	NewResourceHandler(ResourceDef[model.Voucher, form.VoucherForm]{
		Name: "voucher", Label: "voucher", Parse: form.VoucherForm.Parse,
	}, fc, rec, zap.NewNop()).Register(r.Group("/vouchers"))

	w := do(t, r, http.MethodPost, "/vouchers", map[string]any{"nameVoucher": "Coffee"})
	assert.Equal(t, http.StatusBadGateway, w.Code)
	require.Len(t, rec.All(), 1)
	assert.Equal(t, notify.KindError, rec.All()[0].Kind)
}

func TestUserHandlerHashesAndRedacts(t *testing.T) {
	fc := &fakeCrud[model.User]{items: []model.User{{UserID: 1, FullName: "Lan", Email: "lan@example.com", PasswordHash: "old-hash"}}}
	r := gin.New()
	NewUserHandler(fc, notify.NewRecorder(), zap.NewNop()).Register(r.Group("/users"))

	w := do(t, r, http.MethodPost, "/users", map[string]any{"fullName": "Minh", "email": "0912345678", "password": "secret1"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.Len(t, fc.items, 2)
	assert.True(t, form.CheckPassword("secret1", fc.items[1].PasswordHash))
	assert.NotContains(t, w.Body.String(), fc.items[1].PasswordHash)

	w = do(t, r, http.MethodPut, "/users/1", map[string]any{"fullName": "Lan Anh", "email": "lan@example.com"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "old-hash", fc.updated[1].PasswordHash)

	w = do(t, r, http.MethodGet, "/users?q=minh", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["items"], 1)
}

func TestUserUpdateKeepsPointsWhenOmitted(t *testing.T) {
	fc := &fakeCrud[model.User]{items: []model.User{{UserID: 1, FullName: "Lan", Email: "lan@example.com", PasswordHash: "h", Points: 120}}}
	r := gin.New()
	NewUserHandler(fc, notify.NewRecorder(), zap.NewNop()).Register(r.Group("/users"))

	w := do(t, r, http.MethodPut, "/users/1", map[string]any{"fullName": "Lan", "email": "lan@example.com"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 120, fc.updated[1].Points)

	w = do(t, r, http.MethodPut, "/users/1", map[string]any{"fullName": "Lan", "email": "lan@example.com", "points": "0"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, fc.updated[1].Points)
}

func TestStatusFor(t *testing.T) {
	cases := map[string]struct {
		err  error
		want int
	}{
		"form":         {form.FieldErrors{"x": "bad"}, http.StatusBadRequest},
		"confirm":      {schedule.ErrNotConfirmed, http.StatusPreconditionRequired},
		"illegal":      {&schedule.TransitionError{ScheduleID: 1}, http.StatusConflict},
		"not found":    {&store.RemoteError{StatusCode: 404}, http.StatusNotFound},
		"remote 500":   {&store.RemoteError{StatusCode: 500}, http.StatusBadGateway},
		"breaker":      {circuitbreaker.ErrCircuitBreakerOpen, http.StatusBadGateway},
		"replayed":     {qr.ErrReplayed, http.StatusConflict},
		"expired":      {qr.ErrExpired, http.StatusUnprocessableEntity},
		"insufficient": {&qr.InsufficientPointsError{Balance: 1, Requested: 2}, http.StatusUnprocessableEntity},
		"unknown":      {errors.New("boom"), http.StatusInternalServerError},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, statusFor(tc.err))
		})
	}
}
