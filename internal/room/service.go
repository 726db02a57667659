package room

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/notcis/apartment-app/internal/metrics"
	"github.com/notcis/apartment-app/internal/reference"
	"github.com/notcis/apartment-app/internal/views"
)

// Result codes shared by Result and DeleteResult.
const (
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeNotFound         = "NOT_FOUND"
	CodeDuplicateNumber  = "DUPLICATE_NUMBER"
	CodeStoreError       = "STORE_ERROR"
)

const (
	msgCreated = "Room created successfully"
	msgUpdated = "Room updated successfully"
	msgDeleted = "Room deleted successfully"

	msgInvalid   = "Invalid room data"
	msgNotFound  = "Room not found"
	msgDuplicate = "Room number already exists in this building"

	msgCreateFailed = "Error creating room"
	msgUpdateFailed = "Error updating room"
	msgDeleteFailed = "Error deleting room"
)

// Result is returned by CreateRoom and UpdateRoom.
type Result struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Code    string            `json:"code,omitempty"`
	ID      int64             `json:"id,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// DeleteResult is returned by DeleteRoom.
type DeleteResult struct {
	OK      bool   `json:"ok"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// Service is the only component that combines validation with persistence.
// Store errors never reach callers: they are logged and reported as result
// codes, with not-found and duplicate numbers kept distinguishable.
type Service struct {
	Store     Store
	Reference reference.Source
	Views     views.Invalidator
	Rules     Rules
	Log       *zap.Logger
	Metrics   *metrics.Metrics
}

func NewService(store Store, ref reference.Source, inv views.Invalidator, rules Rules, log *zap.Logger, m *metrics.Metrics) *Service {
	if inv == nil {
		inv = views.Nop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		Store:     store,
		Reference: ref,
		Views:     inv,
		Rules:     rules,
		Log:       log,
		Metrics:   m,
	}
}

func (s *Service) CreateRoom(ctx context.Context, raw RawRoomInput) Result {
	started := time.Now()

	in, err := s.Rules.Validate(raw)
	if err != nil {
		s.Metrics.Observe("create", "validation_failed", started)
		return validationResult(err)
	}

	id, err := s.Store.Create(ctx, in)
	if err != nil {
		res := s.storeFailure("create", err, msgCreateFailed, zap.Int64("building_id", in.BuildingID), zap.String("number", in.Number))
		s.Metrics.Observe("create", resultLabel(res.Code), started)
		return res
	}

	s.invalidate(ctx, views.ListPath)
	s.Log.Info("room created", zap.Int64("room_id", id), zap.Int64("building_id", in.BuildingID), zap.String("number", in.Number))
	s.Metrics.Observe("create", "success", started)
	return Result{Success: true, Message: msgCreated, ID: id}
}

func (s *Service) UpdateRoom(ctx context.Context, id int64, raw RawRoomInput) Result {
	started := time.Now()

	in, err := s.Rules.Validate(raw)
	if err != nil {
		s.Metrics.Observe("update", "validation_failed", started)
		return validationResult(err)
	}

	if err := s.Store.Update(ctx, id, in); err != nil {
		res := s.storeFailure("update", err, msgUpdateFailed, zap.Int64("room_id", id))
		s.Metrics.Observe("update", resultLabel(res.Code), started)
		return res
	}

	s.invalidate(ctx, views.ListPath, views.DetailPath(id))
	s.Log.Info("room updated", zap.Int64("room_id", id), zap.String("status", string(in.Status)))
	s.Metrics.Observe("update", "success", started)
	return Result{Success: true, Message: msgUpdated, ID: id}
}

func (s *Service) DeleteRoom(ctx context.Context, id int64) DeleteResult {
	started := time.Now()

	if err := s.Store.Delete(ctx, id); err != nil {
		res := s.storeFailure("delete", err, msgDeleteFailed, zap.Int64("room_id", id))
		s.Metrics.Observe("delete", resultLabel(res.Code), started)
		return DeleteResult{OK: false, Code: res.Code, Message: res.Message}
	}

	s.invalidate(ctx, views.ListPath, views.DetailPath(id))
	s.Log.Info("room deleted", zap.Int64("room_id", id))
	s.Metrics.Observe("delete", "success", started)
	return DeleteResult{OK: true, Message: msgDeleted}
}

// GetRoom returns ErrNotFound for unknown ids.
func (s *Service) GetRoom(ctx context.Context, id int64) (*Room, error) {
	return s.Store.Get(ctx, id)
}

func (s *Service) ListRooms(ctx context.Context, filter ListFilter) ([]Room, error) {
	return s.Store.List(ctx, filter)
}

// FormData returns the buildings and room types offered by the room form.
func (s *Service) FormData(ctx context.Context) (reference.Data, error) {
	return s.Reference.Data(ctx)
}

func (s *Service) storeFailure(op string, err error, generic string, fields ...zap.Field) Result {
	switch {
	case errors.Is(err, ErrNotFound):
		return Result{Message: msgNotFound, Code: CodeNotFound}
	case errors.Is(err, ErrDuplicateNumber):
		return Result{Message: msgDuplicate, Code: CodeDuplicateNumber, Errors: map[string]string{"number": "already exists in this building"}}
	default:
		s.Log.Error("room "+op+" failed", append(fields, zap.Error(err))...)
		return Result{Message: generic, Code: CodeStoreError}
	}
}

// invalidate never fails the operation; stale views expire on their own TTL.
func (s *Service) invalidate(ctx context.Context, paths ...string) {
	if err := s.Views.Invalidate(ctx, paths...); err != nil {
		s.Log.Warn("view invalidation failed", zap.Strings("paths", paths), zap.Error(err))
	}
}

func validationResult(err error) Result {
	res := Result{Message: msgInvalid, Code: CodeValidationFailed}
	var verr *ValidationError
	if errors.As(err, &verr) {
		res.Errors = verr.Fields
	}
	return res
}

func resultLabel(code string) string {
	switch code {
	case CodeNotFound:
		return "not_found"
	case CodeDuplicateNumber:
		return "duplicate"
	default:
		return "store_error"
	}
}
