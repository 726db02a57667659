package room

import (
	"time"

	"github.com/shopspring/decimal"
)

// Room is a persisted rentable unit.
type Room struct {
	ID         int64           `json:"id"`
	BuildingID int64           `json:"buildingId"`
	Floor      int             `json:"floor"`
	Number     string          `json:"number"`
	TypeID     *int64          `json:"typeId"`
	BaseRent   decimal.Decimal `json:"baseRent"`
	Status     Status          `json:"status"`
	Remark     *string         `json:"remark"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// Input is a validated room submission. Only Rules.Validate produces one
// from untrusted data.
type Input struct {
	BuildingID int64
	Floor      int
	Number     string
	TypeID     *int64
	BaseRent   decimal.Decimal
	Status     Status
	Remark     *string
}

// Input returns the mutable fields of r.
func (r Room) Input() Input {
	return Input{
		BuildingID: r.BuildingID,
		Floor:      r.Floor,
		Number:     r.Number,
		TypeID:     r.TypeID,
		BaseRent:   r.BaseRent,
		Status:     r.Status,
		Remark:     r.Remark,
	}
}

// ListFilter narrows List results. Zero values match everything.
type ListFilter struct {
	BuildingID int64
	Status     Status
}

func (f ListFilter) matches(r Room) bool {
	if f.BuildingID != 0 && r.BuildingID != f.BuildingID {
		return false
	}
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	return true
}
