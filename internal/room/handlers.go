package room

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/notcis/apartment-app/internal/api"
	"github.com/notcis/apartment-app/internal/audit"
)

const maxBodyBytes = 64 << 10

// EventLister reads the audit trail of one room.
type EventLister interface {
	ListByRoom(ctx context.Context, roomID int64) ([]audit.Event, error)
}

type Handlers struct {
	Rooms  *Service
	Events EventLister
}

func (h Handlers) List(w http.ResponseWriter, r *http.Request) {
	var filter ListFilter
	q := r.URL.Query()
	if v := q.Get("buildingId"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id < 1 {
			api.WriteError(w, http.StatusBadRequest, CodeValidationFailed, "invalid buildingId")
			return
		}
		filter.BuildingID = id
	}
	if v := q.Get("status"); v != "" {
		st, err := ParseStatus(v)
		if err != nil {
			api.WriteError(w, http.StatusBadRequest, CodeValidationFailed, "invalid status")
			return
		}
		filter.Status = st
	}

	items, err := h.Rooms.ListRooms(r.Context(), filter)
	if err != nil {
		api.Logger(r.Context()).Error("list rooms failed", zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h Handlers) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := roomID(w, r)
	if !ok {
		return
	}

	rm, err := h.Rooms.GetRoom(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			api.WriteError(w, http.StatusNotFound, CodeNotFound, "room not found")
			return
		}
		api.Logger(r.Context()).Error("get room failed", zap.Int64("room_id", id), zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	api.WriteJSON(w, http.StatusOK, rm)
}

func (h Handlers) FormData(w http.ResponseWriter, r *http.Request) {
	data, err := h.Rooms.FormData(r.Context())
	if err != nil {
		api.Logger(r.Context()).Error("load form data failed", zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{
		"buildings": data.Buildings,
		"types":     data.RoomTypes,
		"statuses":  Statuses,
	})
}

func (h Handlers) Create(w http.ResponseWriter, r *http.Request) {
	raw, ok := readInput(w, r)
	if !ok {
		return
	}
	res := h.Rooms.CreateRoom(r.Context(), raw)
	status := http.StatusCreated
	if !res.Success {
		status = statusFor(res.Code)
	}
	api.WriteJSON(w, status, res)
}

func (h Handlers) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := roomID(w, r)
	if !ok {
		return
	}
	raw, ok := readInput(w, r)
	if !ok {
		return
	}
	res := h.Rooms.UpdateRoom(r.Context(), id, raw)
	status := http.StatusOK
	if !res.Success {
		status = statusFor(res.Code)
	}
	api.WriteJSON(w, status, res)
}

func (h Handlers) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := roomID(w, r)
	if !ok {
		return
	}
	res := h.Rooms.DeleteRoom(r.Context(), id)
	status := http.StatusOK
	if !res.OK {
		status = statusFor(res.Code)
	}
	api.WriteJSON(w, status, res)
}

func (h Handlers) ListEvents(w http.ResponseWriter, r *http.Request) {
	id, ok := roomID(w, r)
	if !ok {
		return
	}
	if h.Events == nil {
		api.WriteJSON(w, http.StatusOK, map[string]any{"items": []audit.Event{}})
		return
	}

	evs, err := h.Events.ListByRoom(r.Context(), id)
	if err != nil {
		api.Logger(r.Context()).Error("list room events failed", zap.Int64("room_id", id), zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": evs})
}

func roomID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		api.WriteError(w, http.StatusBadRequest, CodeValidationFailed, "invalid id")
		return 0, false
	}
	return id, true
}

// readInput accepts JSON bodies and form posts.
func readInput(w http.ResponseWriter, r *http.Request) (RawRoomInput, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mt {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		var err error
		if mt == "multipart/form-data" {
			err = r.ParseMultipartForm(maxBodyBytes)
		} else {
			err = r.ParseForm()
		}
		if err != nil {
			api.WriteError(w, http.StatusBadRequest, CodeValidationFailed, "invalid form")
			return RawRoomInput{}, false
		}
		return RawInputFromForm(r.PostForm), true
	default:
		body, err := io.ReadAll(r.Body)
		if err != nil {
			api.WriteError(w, http.StatusBadRequest, CodeValidationFailed, "invalid body")
			return RawRoomInput{}, false
		}
		raw, err := ParseRawInput(body)
		if err != nil {
			api.WriteError(w, http.StatusBadRequest, CodeValidationFailed, "invalid json")
			return RawRoomInput{}, false
		}
		return raw, true
	}
}

func statusFor(code string) int {
	switch code {
	case CodeValidationFailed:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeDuplicateNumber:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
