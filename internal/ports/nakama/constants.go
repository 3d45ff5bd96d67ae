package nakama

// RPC ids registered with the Nakama runtime.
const (
	RpcCreateRoom   = "create_room"
	RpcListRooms    = "list_rooms"
	RpcJoinRoom     = "join_room"
	RpcStartRoom    = "start_room"
	RpcDeleteRoom   = "delete_room"
	RpcFillBots     = "fill_bots"
	RpcListBoards   = "list_boards"
	RpcCreateBoard  = "create_board"
	RpcListGames    = "list_games"
	RpcGameInfo     = "game_info"
	RpcBoardInfo    = "board_info"
	RpcPlayerInfo   = "player_info"
	RpcLegalActions = "legal_actions"
	RpcPlayerAction = "player_action"
)

// Notification codes for server events. Clients switch on the code and read
// the event kind from the subject.
const (
	NotifyPlayerJoined      = 101
	NotifyRoomDeleted       = 102
	NotifyGameStarted       = 103
	NotifyDiceRolled        = 104
	NotifyResourcesProduced = 105 // send privately
	NotifyTurnEnded         = 106
	NotifyRoadBuilt         = 107
	NotifySettlementBuilt   = 108
	NotifyCityBuilt         = 109
	NotifyBankTraded        = 110
	NotifyCardBought        = 111
	NotifyKnightPlayed      = 112
	NotifyRobberMoved       = 113
	NotifyResourceStolen    = 114
	NotifyGameWon           = 115

	// NotifyOther is used for kinds without a dedicated code.
	NotifyOther = 199
)

var notificationCodes = map[string]int{
	"player_joined":      NotifyPlayerJoined,
	"room_deleted":       NotifyRoomDeleted,
	"game_started":       NotifyGameStarted,
	"dice_rolled":        NotifyDiceRolled,
	"resources_produced": NotifyResourcesProduced,
	"turn_ended":         NotifyTurnEnded,
	"road_built":         NotifyRoadBuilt,
	"settlement_built":   NotifySettlementBuilt,
	"city_built":         NotifyCityBuilt,
	"bank_traded":        NotifyBankTraded,
	"card_bought":        NotifyCardBought,
	"knight_played":      NotifyKnightPlayed,
	"robber_moved":       NotifyRobberMoved,
	"resource_stolen":    NotifyResourceStolen,
	"game_won":           NotifyGameWon,
}

func notificationCode(kind string) int {
	if code, ok := notificationCodes[kind]; ok {
		return code
	}
	return NotifyOther
}
