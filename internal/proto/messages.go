package proto

// Client -> server intents
const (
	IntentListPlayers = "list_players"
	IntentInvite      = "invite"
	IntentListInvites = "list_invites"
	IntentAccept      = "accept"
	IntentPlay        = "play"
	IntentPlayBot     = "play_bot"
	IntentHistory     = "history"
)

// ClientMessage is a single intent from a connected player
type ClientMessage struct {
	Type     string `json:"type"`
	Username string `json:"username,omitempty"` // invite / accept target
	Cell     int    `json:"cell,omitempty"`     // play: 1-based cell index
}

// Server -> client notification types
const (
	NotifyLogin          = "login"
	NotifyPlayerList     = "player_list"
	NotifyInvitation     = "invitation"
	NotifyInviteList     = "invite_list"
	NotifyInviteError    = "invite_error"
	NotifyInviteAccepted = "invite_accepted"
	NotifyMatchStarted   = "match_started"
	NotifyYourTurn       = "your_turn"
	NotifyGameOver       = "game_over"
	NotifyPlayError      = "play_error"
	NotifyHistory        = "history"
	NotifyError          = "error"
)

// ServerMessage is a single outbound notification
type ServerMessage struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
	Board   string `json:"board,omitempty"`   // rendered grid where applicable
	From    string `json:"from,omitempty"`    // inviter identity on invitations
	GameID  string `json:"game_id,omitempty"` // session identifier on match events
}
