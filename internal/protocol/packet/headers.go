package packet

// Outbound message ids
const (
	OutRoomReady       = 69
	OutHeightmap       = 31
	OutFloorItems      = 32
	OutRejection       = 33
	OutStatus          = 34
	OutUsers           = 28
	OutLogout          = 29
	OutWallItems       = 45
	OutPing            = 50
	OutAddWallItem     = 83
	OutRemoveWallItem  = 84
	OutUpdateWallItem  = 85
	OutAddFloorItem    = 93
	OutRemoveFloorItem = 94
	OutUpdateFloorItem = 95
	OutFloorItemVar    = 88
	OutSpecialCast     = 208
	OutForward         = 286
)

// Inbound message ids
const (
	InPong           = 196
	InEnterRoom      = 59
	InLeaveRoom      = 53
	InWalk           = 75
	InPlaceItem      = 90
	InPickupItem     = 67
	InMoveItem       = 73
	InToggleFloor    = 74
	InToggleWall     = 214
	InRequestObjects = 64
)
