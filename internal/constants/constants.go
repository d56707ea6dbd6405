package constants

// Centralized constants for env keys, routes and shared JSON/log field names.
const (
	// Environment variable keys
	EnvConfigPath = "NIKOPOKE_CONFIG"
	EnvDBPath     = "NIKOPOKE_DB"

	// HTTP headers and content types
	HeaderContentType = "Content-Type"
	ContentTypeJSON   = "application/json"
)

// Routes used by the backend router
const (
	RouteAPIPrefix       = "/api"
	RouteVersion         = "/version"
	RouteSpecies         = "/species"
	RouteMoves           = "/moves"
	RouteBattles         = "/battles"
	RouteBattleByID      = "/battles/:battleID"
	RouteBattleAction    = "/battles/:battleID/action"
	RouteBattleSuggest   = "/battles/:battleID/suggest"
	RouteBattleReplay    = "/battles/:battleID/replay"
	RouteBattleLogStream = "/battles/:battleID/log/ws"
)

// Common JSON response keys
const (
	JSONKeyError   = "error"
	JSONKeyMessage = "message"
	JSONKeyStatus  = "status"
)

// Common error messages returned by handlers
const (
	ErrInvalidBattleID    = "Invalid battle ID"
	ErrBattleNotFound     = "Battle not found"
	ErrInvalidRequestBody = "Invalid request body"
)

// Log field names
const (
	LogFieldBattleID = "battle_id"
	LogFieldPlayerID = "player_id"
	LogFieldTurn     = "turn"
	LogFieldAddr     = "addr"
)
