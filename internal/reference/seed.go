package reference

import "github.com/shopspring/decimal"

// SeedBuildings and SeedRoomTypes are the initial reference rows loaded by cmd/dev/seed.
var SeedBuildings = []Building{
	{Name: "อาคาร 5 ชั้น"},
}

var SeedRoomTypes = []RoomType{
	{
		Name:           "ห้องเปล่า",
		Description:    "ห้องเปล่า ไม่มีเฟอร์นิเจอร์",
		DefaultRent:    decimal.NewFromInt(2500),
		DefaultDeposit: decimal.NewFromInt(3000),
	},
	{
		Name:           "ห้องเฟอร์นิเจอร์",
		Description:    "ห้องที่มีเฟอร์นิเจอร์ครบครัน",
		DefaultRent:    decimal.NewFromInt(3000),
		DefaultDeposit: decimal.NewFromInt(3000),
	},
}
