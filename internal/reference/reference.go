package reference

import (
	"context"

	"github.com/shopspring/decimal"
)

// Building is owned elsewhere; rooms only reference it.
type Building struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type RoomType struct {
	ID             int64           `json:"id"`
	Name           string          `json:"name"`
	Description    string          `json:"description,omitempty"`
	DefaultRent    decimal.Decimal `json:"defaultRent"`
	DefaultDeposit decimal.Decimal `json:"defaultDeposit"`
}

// Data is everything a room form needs to populate its selection inputs.
type Data struct {
	Buildings []Building `json:"buildings"`
	RoomTypes []RoomType `json:"types"`
}

// Source supplies reference data; Repository and Static implement it.
type Source interface {
	Data(ctx context.Context) (Data, error)
}

// Static serves fixed reference data.
type Static Data

func (s Static) Data(context.Context) (Data, error) {
	out := Data{
		Buildings: append([]Building{}, s.Buildings...),
		RoomTypes: append([]RoomType{}, s.RoomTypes...),
	}
	return out, nil
}

func (d Data) HasBuilding(id int64) bool {
	for _, b := range d.Buildings {
		if b.ID == id {
			return true
		}
	}
	return false
}

func (d Data) HasRoomType(id int64) bool {
	for _, t := range d.RoomTypes {
		if t.ID == id {
			return true
		}
	}
	return false
}
