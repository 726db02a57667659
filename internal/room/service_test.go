package room

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/notcis/apartment-app/internal/metrics"
	"github.com/notcis/apartment-app/internal/reference"
	"github.com/notcis/apartment-app/internal/views"
)

var testReference = reference.Data{
	Buildings: []reference.Building{
		{ID: 1, Name: "อาคาร 5 ชั้น"},
		{ID: 2, Name: "Annex"},
	},
	RoomTypes: []reference.RoomType{
		{ID: 1, Name: "ห้องเปล่า", DefaultRent: decimal.NewFromInt(2500), DefaultDeposit: decimal.NewFromInt(3000)},
		{ID: 2, Name: "ห้องเฟอร์นิเจอร์", DefaultRent: decimal.NewFromInt(3000), DefaultDeposit: decimal.NewFromInt(3000)},
	},
}

const validBody = `{"buildingId":1,"floor":2,"number":"201","typeId":1,"baseRent":2500,"status":"VACANT"}`

type fixture struct {
	svc   *Service
	store *spyStore
	views *views.Recorder
	logs  *observer.ObservedLogs
	reg   *prometheus.Registry
}

func newFixture(t *testing.T, store Store) *fixture {
	t.Helper()
	if store == nil {
		store = NewMemoryStore(testReference)
	}
	core, logs := observer.New(zapcore.DebugLevel)
	reg := prometheus.NewRegistry()
	rec := &views.Recorder{}
	spy := &spyStore{Store: store}

	svc := NewService(spy, reference.Static(testReference), rec, DefaultRules, zap.New(core), metrics.New(reg))
	return &fixture{svc: svc, store: spy, views: rec, logs: logs, reg: reg}
}

// spyStore counts mutating calls.
type spyStore struct {
	Store
	creates, updates, deletes int
}

func (s *spyStore) Create(ctx context.Context, in Input) (int64, error) {
	s.creates++
	return s.Store.Create(ctx, in)
}

func (s *spyStore) Update(ctx context.Context, id int64, in Input) error {
	s.updates++
	return s.Store.Update(ctx, id, in)
}

func (s *spyStore) Delete(ctx context.Context, id int64) error {
	s.deletes++
	return s.Store.Delete(ctx, id)
}

// brokenStore fails every call the way a dropped connection would.
type brokenStore struct{}

var errConnRefused = errors.New("dial tcp 127.0.0.1:5432: connect: connection refused")

func (brokenStore) Create(context.Context, Input) (int64, error) {
	return 0, &StoreError{Op: "create", Err: errConnRefused}
}
func (brokenStore) Update(context.Context, int64, Input) error {
	return &StoreError{Op: "update", Err: errConnRefused}
}
func (brokenStore) Delete(context.Context, int64) error {
	return &StoreError{Op: "delete", Err: errConnRefused}
}
func (brokenStore) Get(context.Context, int64) (*Room, error) {
	return nil, &StoreError{Op: "get", Err: errConnRefused}
}
func (brokenStore) List(context.Context, ListFilter) ([]Room, error) {
	return nil, &StoreError{Op: "list", Err: errConnRefused}
}

type failingInvalidator struct{}

func (failingInvalidator) Invalidate(context.Context, ...string) error {
	return errors.New("redis: connection pool timeout")
}

func TestCreateRoom_Success(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	res := f.svc.CreateRoom(ctx, mustRaw(t, validBody))

	assert.True(t, res.Success)
	assert.Equal(t, "Room created successfully", res.Message)
	assert.Empty(t, res.Code)
	assert.Equal(t, int64(1), res.ID)
	assert.Equal(t, []string{views.ListPath}, f.views.Paths())
	assert.Equal(t, 1, f.logs.FilterMessage("room created").Len())

	got, err := f.svc.GetRoom(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.BuildingID)
	assert.Equal(t, 2, got.Floor)
	assert.Equal(t, "201", got.Number)
	require.NotNil(t, got.TypeID)
	assert.Equal(t, int64(1), *got.TypeID)
	assert.True(t, got.BaseRent.Equal(decimal.NewFromInt(2500)))
	assert.Equal(t, StatusVacant, got.Status)
	assert.Nil(t, got.Remark)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestCreateRoom_ValidationFailureSkipsStore(t *testing.T) {
	f := newFixture(t, nil)

	res := f.svc.CreateRoom(context.Background(), mustRaw(t, `{"buildingId":1,"floor":2,"number":"","baseRent":2500}`))

	assert.False(t, res.Success)
	assert.Equal(t, CodeValidationFailed, res.Code)
	assert.Equal(t, "Invalid room data", res.Message)
	assert.Equal(t, "is required", res.Errors["number"])
	assert.Zero(t, f.store.creates)
	assert.Empty(t, f.views.Paths())
}

func TestCreateRoom_RejectedFields(t *testing.T) {
	cases := map[string]struct {
		body  string
		field string
	}{
		"negative rent":     {`{"buildingId":1,"floor":2,"number":"201","baseRent":-100}`, "baseRent"},
		"floor above max":   {`{"buildingId":1,"floor":201,"number":"201","baseRent":100}`, "floor"},
		"floor below min":   {`{"buildingId":1,"floor":-11,"number":"201","baseRent":100}`, "floor"},
		"unknown status":    {`{"buildingId":1,"floor":2,"number":"201","baseRent":100,"status":"EVICTED"}`, "status"},
		"building not >= 1": {`{"buildingId":0,"floor":2,"number":"201","baseRent":100}`, "buildingId"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, nil)
			res := f.svc.CreateRoom(context.Background(), mustRaw(t, tc.body))
			assert.Equal(t, CodeValidationFailed, res.Code)
			assert.Contains(t, res.Errors, tc.field)
			assert.Zero(t, f.store.creates)
		})
	}
}

func TestCreateRoom_DuplicateNumber(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	require.True(t, f.svc.CreateRoom(ctx, mustRaw(t, validBody)).Success)
	res := f.svc.CreateRoom(ctx, mustRaw(t, validBody))

	assert.False(t, res.Success)
	assert.Equal(t, CodeDuplicateNumber, res.Code)
	assert.Equal(t, "already exists in this building", res.Errors["number"])
	assert.Len(t, f.views.Paths(), 1)

	// Same number in another building is fine.
	other := f.svc.CreateRoom(ctx, mustRaw(t, `{"buildingId":2,"floor":2,"number":"201","baseRent":2500}`))
	assert.True(t, other.Success)
}

func TestCreateRoom_UnknownBuildingIsStoreError(t *testing.T) {
	f := newFixture(t, nil)

	res := f.svc.CreateRoom(context.Background(), mustRaw(t, `{"buildingId":99,"floor":2,"number":"201","baseRent":2500}`))

	assert.False(t, res.Success)
	assert.Equal(t, CodeStoreError, res.Code)
	assert.Equal(t, "Error creating room", res.Message)
	assert.Equal(t, 1, f.store.creates)

	entries := f.logs.FilterMessage("room create failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Empty(t, f.views.Paths())
}

func TestCreateRoom_StoreFailureIsCaughtAndLogged(t *testing.T) {
	f := newFixture(t, brokenStore{})

	res := f.svc.CreateRoom(context.Background(), mustRaw(t, validBody))

	assert.Equal(t, Result{Message: "Error creating room", Code: CodeStoreError}, res)
	entries := f.logs.FilterMessage("room create failed").All()
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].ContextMap()["error"], "connection refused")
}

func TestCreateRoom_InvalidationFailureStillSucceeds(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	svc := NewService(NewMemoryStore(testReference), reference.Static(testReference), failingInvalidator{}, DefaultRules, zap.New(core), nil)

	res := svc.CreateRoom(context.Background(), mustRaw(t, validBody))

	assert.True(t, res.Success)
	assert.Equal(t, 1, logs.FilterMessage("view invalidation failed").Len())
}

func TestUpdateRoom_AppliesChanges(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	id := f.svc.CreateRoom(ctx, mustRaw(t, validBody)).ID
	f.views.Reset()

	res := f.svc.UpdateRoom(ctx, id, mustRaw(t, `{"buildingId":1,"floor":3,"number":"301","typeId":2,"baseRent":"3000.50","status":"OCCUPIED","remark":"tenant moved in"}`))

	assert.True(t, res.Success)
	assert.Equal(t, "Room updated successfully", res.Message)
	assert.Equal(t, []string{views.ListPath, views.DetailPath(id)}, f.views.Paths())

	got, err := f.svc.GetRoom(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Floor)
	assert.Equal(t, "301", got.Number)
	assert.Equal(t, StatusOccupied, got.Status)
	assert.Equal(t, "3000.5", got.BaseRent.String())
	require.NotNil(t, got.Remark)
	assert.Equal(t, "tenant moved in", *got.Remark)
}

func TestUpdateRoom_SameInputTwiceIsIdempotent(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	id := f.svc.CreateRoom(ctx, mustRaw(t, validBody)).ID

	first := f.svc.UpdateRoom(ctx, id, mustRaw(t, validBody))
	a, err := f.svc.GetRoom(ctx, id)
	require.NoError(t, err)
	second := f.svc.UpdateRoom(ctx, id, mustRaw(t, validBody))
	b, err := f.svc.GetRoom(ctx, id)
	require.NoError(t, err)

	assert.True(t, first.Success)
	assert.True(t, second.Success)
	assert.Equal(t, a.Input(), b.Input())
}

func TestUpdateRoom_StatusChangesAreUnrestricted(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	id := f.svc.CreateRoom(ctx, mustRaw(t, validBody)).ID

	for _, st := range []string{"OCCUPIED", "VACANT", "MAINTENANCE", "RESERVED", "OCCUPIED"} {
		body := strings.Replace(validBody, `"VACANT"`, `"`+st+`"`, 1)
		res := f.svc.UpdateRoom(ctx, id, mustRaw(t, body))
		require.True(t, res.Success, st)
	}
}

func TestUpdateRoom_MissingIsNotFound(t *testing.T) {
	f := newFixture(t, nil)

	res := f.svc.UpdateRoom(context.Background(), 999, mustRaw(t, validBody))

	assert.False(t, res.Success)
	assert.Equal(t, CodeNotFound, res.Code)
	assert.Equal(t, "Room not found", res.Message)
	assert.Empty(t, f.views.Paths())
}

func TestUpdateRoom_KeepsOwnNumber(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	a := f.svc.CreateRoom(ctx, mustRaw(t, validBody)).ID
	b := f.svc.CreateRoom(ctx, mustRaw(t, `{"buildingId":1,"floor":2,"number":"202","baseRent":2500}`)).ID

	assert.True(t, f.svc.UpdateRoom(ctx, a, mustRaw(t, validBody)).Success)
	res := f.svc.UpdateRoom(ctx, b, mustRaw(t, validBody))
	assert.Equal(t, CodeDuplicateNumber, res.Code)
}

func TestUpdateRoom_ValidationFailureSkipsStore(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	id := f.svc.CreateRoom(ctx, mustRaw(t, validBody)).ID

	res := f.svc.UpdateRoom(ctx, id, mustRaw(t, `{"buildingId":1,"floor":2,"number":"201","baseRent":-1}`))

	assert.Equal(t, CodeValidationFailed, res.Code)
	assert.Zero(t, f.store.updates)
	got, err := f.svc.GetRoom(ctx, id)
	require.NoError(t, err)
	assert.True(t, got.BaseRent.Equal(decimal.NewFromInt(2500)))
}

func TestDeleteRoom(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	id := f.svc.CreateRoom(ctx, mustRaw(t, validBody)).ID
	f.views.Reset()

	first := f.svc.DeleteRoom(ctx, id)
	assert.Equal(t, DeleteResult{OK: true, Message: "Room deleted successfully"}, first)
	assert.Equal(t, []string{views.ListPath, views.DetailPath(id)}, f.views.Paths())

	_, err := f.svc.GetRoom(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)

	second := f.svc.DeleteRoom(ctx, id)
	assert.False(t, second.OK)
	assert.Equal(t, CodeNotFound, second.Code)
	assert.Equal(t, "Room not found", second.Message)
	assert.Len(t, f.views.Paths(), 2)
}

func TestDeleteRoom_StoreFailure(t *testing.T) {
	f := newFixture(t, brokenStore{})

	res := f.svc.DeleteRoom(context.Background(), 1)

	assert.Equal(t, DeleteResult{Code: CodeStoreError, Message: "Error deleting room"}, res)
	assert.Equal(t, 1, f.logs.FilterMessage("room delete failed").Len())
}

func TestListRooms_FiltersAndOrders(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	for _, body := range []string{
		`{"buildingId":2,"floor":1,"number":"A1","baseRent":100}`,
		`{"buildingId":1,"floor":3,"number":"301","baseRent":100,"status":"OCCUPIED"}`,
		`{"buildingId":1,"floor":1,"number":"102","baseRent":100}`,
		`{"buildingId":1,"floor":1,"number":"101","baseRent":100}`,
	} {
		require.True(t, f.svc.CreateRoom(ctx, mustRaw(t, body)).Success, body)
	}

	all, err := f.svc.ListRooms(ctx, ListFilter{})
	require.NoError(t, err)
	numbers := make([]string, len(all))
	for i, r := range all {
		numbers[i] = r.Number
	}
	assert.Equal(t, []string{"101", "102", "301", "A1"}, numbers)

	vacantInOne, err := f.svc.ListRooms(ctx, ListFilter{BuildingID: 1, Status: StatusVacant})
	require.NoError(t, err)
	assert.Len(t, vacantInOne, 2)
}

func TestFormData(t *testing.T) {
	f := newFixture(t, nil)

	data, err := f.svc.FormData(context.Background())
	require.NoError(t, err)
	assert.Len(t, data.Buildings, 2)
	assert.Equal(t, "ห้องเฟอร์นิเจอร์", data.RoomTypes[1].Name)
}

func TestService_RecordsMetrics(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	id := f.svc.CreateRoom(ctx, mustRaw(t, validBody)).ID
	f.svc.CreateRoom(ctx, mustRaw(t, validBody))
	f.svc.CreateRoom(ctx, mustRaw(t, `{}`))
	f.svc.UpdateRoom(ctx, 999, mustRaw(t, validBody))
	f.svc.DeleteRoom(ctx, id)

	expected := `
# HELP apartment_room_operations_total Room lifecycle operations by operation and result
# TYPE apartment_room_operations_total counter
apartment_room_operations_total{op="create",result="duplicate"} 1
apartment_room_operations_total{op="create",result="success"} 1
apartment_room_operations_total{op="create",result="validation_failed"} 1
apartment_room_operations_total{op="delete",result="success"} 1
apartment_room_operations_total{op="update",result="not_found"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(f.reg, strings.NewReader(expected), "apartment_room_operations_total"))
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	store := NewMemoryStore(testReference)
	ctx := context.Background()
	remark := "corner"
	id, err := store.Create(ctx, Input{BuildingID: 1, Floor: 1, Number: "101", BaseRent: decimal.NewFromInt(1), Status: StatusVacant, Remark: &remark})
	require.NoError(t, err)

	remark = "changed"
	got, err := store.Get(ctx, id)
	require.NoError(t, err)
	*got.Remark = "mutated"

	again, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "corner", *again.Remark)
}

func TestMemoryStore_UnknownRoomType(t *testing.T) {
	store := NewMemoryStore(testReference)
	typeID := int64(42)

	_, err := store.Create(context.Background(), Input{BuildingID: 1, Floor: 1, Number: "101", TypeID: &typeID, Status: StatusVacant})

	var serr *StoreError
	require.ErrorAs(t, err, &serr)
	assert.ErrorIs(t, err, ErrUnknownReference)
}
