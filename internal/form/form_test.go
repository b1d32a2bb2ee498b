package form

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recycleadmin/internal/schedule"
)

func fieldErrs(t *testing.T, err error) FieldErrors {
	t.Helper()
	fe, ok := AsFieldErrors(err)
	require.True(t, ok, "expected FieldErrors, got %v", err)
	return fe
}

func TestValueAcceptsStringsAndNumbers(t *testing.T) {
	var f ScheduleForm
	body := `{"userID": 7, "latitude": "10,5", "longitude": null, "wasteType": "Tái chế", "scheduledDate": "2024-05-01", "notes": " gate B "}`
	require.NoError(t, json.Unmarshal([]byte(body), &f))

	s, err := f.Parse()
	require.NoError(t, err)
	assert.Equal(t, 7, s.UserID)
	assert.InDelta(t, 10.5, s.Latitude, 1e-9)
	assert.Equal(t, schedule.DefaultLongitude, s.Longitude)
	assert.Equal(t, "gate B", s.Notes)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), s.ScheduledDate.UTC())
	assert.Empty(t, s.Status)
}

func TestValueRejectsObjects(t *testing.T) {
	var f ScheduleForm
	require.Error(t, json.Unmarshal([]byte(`{"userID": {"x": 1}}`), &f))
}

func TestScheduleFormRejectsNonNumeric(t *testing.T) {
	f := ScheduleForm{
		UserID:        "abc",
		Latitude:      "north",
		WasteType:     "Tái chế",
		ScheduledDate: "2024-05-01",
	}
	_, err := f.Parse()
	fe := fieldErrs(t, err)
	assert.Equal(t, "must be a whole number", fe["userID"])
	assert.Equal(t, "must be a number", fe["latitude"])
	assert.NotContains(t, fe, "longitude")
}

func TestScheduleFormRanges(t *testing.T) {
	f := ScheduleForm{
		UserID:        "0",
		Latitude:      "91",
		Longitude:     "-181",
		WasteType:     "Rác sinh hoạt",
		ScheduledDate: "01/05/2024",
	}
	_, err := f.Parse()
	fe := fieldErrs(t, err)
	assert.Equal(t, "must be greater than 0", fe["userID"])
	assert.Equal(t, "must be at most 90", fe["latitude"])
	assert.Equal(t, "must be at least -180", fe["longitude"])
	assert.Contains(t, fe["wasteType"], "must be one of")
	assert.Equal(t, "must be a date (YYYY-MM-DD)", fe["scheduledDate"])
}

func TestScheduleFormRequiresDateAndType(t *testing.T) {
	_, err := ScheduleForm{UserID: "3"}.Parse()
	fe := fieldErrs(t, err)
	assert.Equal(t, "is required", fe["scheduledDate"])
	assert.Equal(t, "is required", fe["wasteType"])
}

func TestStatusForm(t *testing.T) {
	s, err := StatusForm{Status: "Scheduled"}.Parse()
	require.NoError(t, err)
	assert.Equal(t, schedule.StatusScheduled, s)

	_, err = StatusForm{Status: "Done"}.Parse()
	assert.Contains(t, fieldErrs(t, err), "status")
}

func TestUserFormHashesPassword(t *testing.T) {
	u, err := UserForm{FullName: "Lan", Email: "lan@example.com", Password: "secret1", Points: "12"}.Parse(true)
	require.NoError(t, err)
	assert.Equal(t, 12, u.Points)
	assert.NotEqual(t, "secret1", u.PasswordHash)
	assert.True(t, CheckPassword("secret1", u.PasswordHash))
}

func TestUserFormContact(t *testing.T) {
	u, err := UserForm{FullName: "Minh", Email: "+84 912 345 678"}.Parse(false)
	require.NoError(t, err)
	assert.Empty(t, u.PasswordHash)

	_, err = UserForm{FullName: "Minh", Email: "not-an-email"}.Parse(false)
	assert.Contains(t, fieldErrs(t, err), "email")

	_, err = UserForm{FullName: " ", Email: "a@b.co"}.Parse(true)
	fe := fieldErrs(t, err)
	assert.Equal(t, "cannot be blank", fe["fullName"])
	assert.Equal(t, "is required", fe["password"])
}

func TestVoucherFormOptionalNumbers(t *testing.T) {
	v, err := VoucherForm{NameVoucher: "Coffee", Point: "50"}.Parse()
	require.NoError(t, err)
	require.NotNil(t, v.Point)
	assert.Equal(t, 50, *v.Point)
	assert.Nil(t, v.DiscountValue)
	assert.Nil(t, v.Latitude)

	_, err = VoucherForm{NameVoucher: "Coffee", DiscountValue: "ten"}.Parse()
	assert.Equal(t, "must be a number", fieldErrs(t, err)["discountValue"])
}

func TestScanHistoryFormDefaultsScannedAt(t *testing.T) {
	now := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	h, err := ScanHistoryForm{UserID: "1", WasteID: "2", Label: "bottle", Confidence: "0.93"}.Parse(now)
	require.NoError(t, err)
	assert.Equal(t, now, h.ScannedAt.UTC())
	assert.InDelta(t, 0.93, h.Confidence, 1e-9)

	_, err = ScanHistoryForm{UserID: "1", WasteID: "2", Label: "bottle", Confidence: "1.5"}.Parse(now)
	assert.Contains(t, fieldErrs(t, err), "confidence")
}

func TestPointFormRequiresCoordinates(t *testing.T) {
	_, err := PointForm{Name: "Điểm A", Address: "1 Lê Lợi"}.Parse()
	fe := fieldErrs(t, err)
	assert.Equal(t, "is required", fe["latitude"])
	assert.Equal(t, "is required", fe["longitude"])
}

func TestParseNearbyDefaultsRadius(t *testing.T) {
	q, err := ParseNearby("10.77", "106.70", "")
	require.NoError(t, err)
	assert.Equal(t, 5.0, q.RadiusKm)

	_, err = ParseNearby("x", "106.70", "0")
	fe := fieldErrs(t, err)
	assert.Contains(t, fe, "lat")
	assert.Contains(t, fe, "radius_km")
}

func TestParseID(t *testing.T) {
	id, err := ParseID("id", "42")
	require.NoError(t, err)
	assert.Equal(t, 42, id)

	_, err = ParseID("id", "-1")
	assert.Error(t, err)

	id, err = ParseOptionalID("user_id", "")
	require.NoError(t, err)
	assert.Zero(t, id)
}

func TestIssueAndRedeemForms(t *testing.T) {
	in, err := IssueForm{UID: "fb-1", Points: "20", Category: "Nguy hại"}.Parse()
	require.NoError(t, err)
	assert.Equal(t, 20, in.Points)

	_, err = IssueForm{UID: "fb-1", Points: "0", Category: "Nguy hại"}.Parse()
	assert.Contains(t, fieldErrs(t, err), "points")

	_, err = RedeemForm{Code: " ", Points: "5"}.Parse()
	assert.Contains(t, fieldErrs(t, err), "code")
}

func TestFieldErrorsMessageIsSorted(t *testing.T) {
	fe := FieldErrors{"b": "two", "a": "one"}
	assert.Equal(t, "invalid form: a: one; b: two", fe.Error())
}
