package room

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/notcis/apartment-app/internal/reference"
)

// MemoryStore is an in-memory Store. It enforces the same reference,
// uniqueness and not-found rules as the Postgres repository.
type MemoryStore struct {
	mu     sync.RWMutex
	ref    reference.Data
	rooms  map[int64]Room
	nextID int64
	now    func() time.Time
}

func NewMemoryStore(ref reference.Data) *MemoryStore {
	return &MemoryStore{
		ref:    ref,
		rooms:  make(map[int64]Room),
		nextID: 1,
		now:    time.Now,
	}
}

func (s *MemoryStore) Create(_ context.Context, in Input) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkLocked("create", 0, in); err != nil {
		return 0, err
	}

	id := s.nextID
	s.nextID++
	now := s.now()
	r := fromInput(in)
	r.ID = id
	r.CreatedAt = now
	r.UpdatedAt = now
	s.rooms[id] = r
	return id, nil
}

func (s *MemoryStore) Update(_ context.Context, id int64, in Input) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.rooms[id]
	if !ok {
		return ErrNotFound
	}
	if err := s.checkLocked("update", id, in); err != nil {
		return err
	}

	r := fromInput(in)
	r.ID = id
	r.CreatedAt = cur.CreatedAt
	r.UpdatedAt = s.now()
	s.rooms[id] = r
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rooms[id]; !ok {
		return ErrNotFound
	}
	delete(s.rooms, id)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id int64) (*Room, error) {
	s.mu.RLock()
	r, ok := s.rooms[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	out := clone(r)
	return &out, nil
}

func (s *MemoryStore) List(_ context.Context, filter ListFilter) ([]Room, error) {
	s.mu.RLock()
	out := make([]Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		if filter.matches(r) {
			out = append(out, clone(r))
		}
	}
	s.mu.RUnlock()

	sortRooms(out)
	return out, nil
}

func (s *MemoryStore) checkLocked(op string, selfID int64, in Input) error {
	if !s.ref.HasBuilding(in.BuildingID) {
		return &StoreError{Op: op, Err: ErrUnknownReference}
	}
	if in.TypeID != nil && !s.ref.HasRoomType(*in.TypeID) {
		return &StoreError{Op: op, Err: ErrUnknownReference}
	}
	for id, r := range s.rooms {
		if id != selfID && r.BuildingID == in.BuildingID && r.Number == in.Number {
			return ErrDuplicateNumber
		}
	}
	return nil
}

// sortRooms orders by building, floor, then number, matching the SQL list order.
func sortRooms(rooms []Room) {
	sort.Slice(rooms, func(i, j int) bool {
		a, b := rooms[i], rooms[j]
		if a.BuildingID != b.BuildingID {
			return a.BuildingID < b.BuildingID
		}
		if a.Floor != b.Floor {
			return a.Floor < b.Floor
		}
		if a.Number != b.Number {
			return a.Number < b.Number
		}
		return a.ID < b.ID
	})
}

func fromInput(in Input) Room {
	return clone(Room{
		BuildingID: in.BuildingID,
		Floor:      in.Floor,
		Number:     in.Number,
		TypeID:     in.TypeID,
		BaseRent:   in.BaseRent,
		Status:     in.Status,
		Remark:     in.Remark,
	})
}

// clone detaches the optional fields so callers cannot mutate stored rooms.
func clone(r Room) Room {
	if r.TypeID != nil {
		v := *r.TypeID
		r.TypeID = &v
	}
	if r.Remark != nil {
		v := *r.Remark
		r.Remark = &v
	}
	return r
}
