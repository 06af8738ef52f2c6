package game

import "github.com/catmaikl/cosatkaclickmserv-sub000/logging"

const (
	logRoomCode   = logging.RoomCodeKey
	logRoomName   = logging.RoomNameKey
	logPlayerID   = logging.PlayerIDKey
	logPlayerName = logging.PlayerNameKey
	logMsgType    = logging.MsgTypeKey
)
