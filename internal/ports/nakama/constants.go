package nakama

const (
	// RpcQuickMatch is the Nakama RPC id clients call to find or create an open table.
	RpcQuickMatch = "quick_match"

	// RpcCreateShareToken is the Nakama RPC id that issues a result-share token.
	RpcCreateShareToken = "create_share_token"

	// RpcSessionSummary is the Nakama RPC id that resolves a share token into a
	// stored session summary.
	RpcSessionSummary = "session_summary"

	// MatchNameRiichi is the authoritative match handler name registered with Nakama.
	MatchNameRiichi = "riichi_match"
)

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpStartSession  int64 = 1
	OpDeclareRiichi int64 = 2
	OpRetractRiichi int64 = 3
	OpRecordWin     int64 = 4
	OpRecordDraw    int64 = 5
	OpConclude      int64 = 6
	OpReset         int64 = 7
	OpRequestState  int64 = 8

	// Server -> Client events
	OpEventPlayerJoined     int64 = 101
	OpEventPlayerLeft       int64 = 102
	OpEventSessionStarted   int64 = 103
	OpEventRiichi           int64 = 104
	OpEventRoundSettled     int64 = 105
	OpEventSessionConcluded int64 = 106
	OpEventSessionReset     int64 = 107
	OpEventState            int64 = 108
	OpEventError            int64 = 109
)
