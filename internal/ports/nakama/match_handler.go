package nakama

import (
	"context"
	"database/sql"
	"encoding/json"

	"riichi/internal/app"
	"riichi/internal/config"
	"riichi/internal/domain"
	"riichi/internal/ports"
	"riichi/internal/ports/scoringhttp"

	"github.com/heroiclabs/nakama-common/runtime"
)

const (
	// maxPresences caps connected clients per table (players plus observers).
	maxPresences = 8

	defaultScoreAPIURL = "http://127.0.0.1:8000"
)

// MatchState holds the authoritative runtime state for the Nakama match handler.
type MatchState struct {
	OwnerID string `json:"owner_id"` // User ID of the scorekeeper driving the session
	Tick    int64  `json:"tick"`     // Current tick of the match
	Settled bool   `json:"settled"`  // Whether chip settlement was already applied

	Presences map[string]runtime.Presence `json:"-"` // Map UserId -> Presence for targeted messaging
	Session   *domain.Session             `json:"-"` // Authoritative session state
	App       *app.Service                `json:"-"` // Use-case service with the settlement rules
	Scoring   ports.ScoringPort           `json:"-"` // External hand evaluator
	Store     ports.SessionStorePort      `json:"-"` // Snapshot persistence
	Economy   ports.EconomyPort           `json:"-"` // Interface to Nakama wallet
}

// NewMatch is the factory function registered with Nakama.
func NewMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
	return &matchHandler{}, nil
}

type matchHandler struct{}

// MatchInit is called when the match is created.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	logger.Debug("MatchInit: Initializing match handler.")

	if err := config.LoadRuleset("data/ruleset.json"); err != nil {
		logger.Warn("MatchInit: Could not load ruleset, using defaults: %v", err)
	}

	scoreAPIURL := defaultScoreAPIURL
	if env, ok := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string); ok {
		if val, ok := env["riichi_score_api_url"]; ok && val != "" {
			scoreAPIURL = val
		}
	}

	state := &MatchState{
		Presences: make(map[string]runtime.Presence),
		Session:   domain.NewSession(),
		App:       app.NewService(config.GetRuleset()),
		Scoring:   scoringhttp.NewClient(scoreAPIURL, nil),
		Store:     NewNakamaSessionStoreAdapter(nk),
		Economy:   NewNakamaEconomyAdapter(nk),
	}

	tickRate := 1
	return state, tickRate, buildLabel(state)
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}

	if _, rejoining := matchState.Presences[presence.GetUserId()]; !rejoining && len(matchState.Presences) >= maxPresences {
		return state, false, "Match full"
	}

	return state, true, ""
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		matchState.Presences[p.GetUserId()] = p

		// The first joiner becomes the scorekeeper.
		if matchState.OwnerID == "" {
			matchState.OwnerID = p.GetUserId()
			logger.Debug("MatchJoin: Owner set to %s.", matchState.OwnerID)
			mh.restoreSnapshot(ctx, matchState, logger)
		}

		mh.broadcastEvent(ctx, matchState, dispatcher, logger, app.Event{
			Kind:    app.EventPlayerJoined,
			Payload: app.PlayerJoinedPayload{UserID: p.GetUserId(), Owner: p.GetUserId() == matchState.OwnerID},
		})
	}

	mh.updateLabel(matchState, dispatcher, logger)
	mh.sendState(matchState, dispatcher, logger, presences)

	return matchState
}

// MatchLeave is called when one or more players leave the match.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		delete(matchState.Presences, p.GetUserId())
		mh.broadcastEvent(ctx, matchState, dispatcher, logger, app.Event{
			Kind:    app.EventPlayerLeft,
			Payload: app.PlayerLeftPayload{UserID: p.GetUserId()},
		})

		if p.GetUserId() == matchState.OwnerID {
			matchState.OwnerID = ""
			for uid := range matchState.Presences {
				matchState.OwnerID = uid
				break
			}
			if matchState.OwnerID != "" {
				logger.Debug("MatchLeave: Owner reassigned to %s.", matchState.OwnerID)
			}
		}
	}

	if len(matchState.Presences) == 0 {
		logger.Info("MatchLeave: Terminating empty match.")
		return nil
	}

	mh.updateLabel(matchState, dispatcher, logger)

	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}

	matchState.Tick = tick

	for _, msg := range messages {
		switch msg.GetOpCode() {
		case OpStartSession:
			mh.handleStartSession(ctx, matchState, dispatcher, logger, msg)
		case OpDeclareRiichi:
			mh.handleRiichi(ctx, matchState, dispatcher, logger, msg, true)
		case OpRetractRiichi:
			mh.handleRiichi(ctx, matchState, dispatcher, logger, msg, false)
		case OpRecordWin:
			mh.handleRecordWin(ctx, matchState, dispatcher, logger, msg)
		case OpRecordDraw:
			mh.handleRecordDraw(ctx, matchState, dispatcher, logger, msg)
		case OpConclude:
			mh.handleConclude(ctx, matchState, dispatcher, logger, msg)
		case OpReset:
			mh.handleReset(ctx, matchState, dispatcher, logger, msg)
		case OpRequestState:
			mh.sendState(matchState, dispatcher, logger, []runtime.Presence{msg})
		default:
			logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
		}
	}

	return matchState
}

// requireOwner rejects mutating messages from anyone but the scorekeeper.
func (mh *matchHandler) requireOwner(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) bool {
	if msg.GetUserId() == state.OwnerID {
		return true
	}
	logger.Warn("MatchLoop: User %s sent opcode %d but is not owner (%s)", msg.GetUserId(), msg.GetOpCode(), state.OwnerID)
	mh.sendError(state, dispatcher, logger, msg.GetUserId(), 7, app.ErrNotOwner.Error())
	return false
}

func (mh *matchHandler) handleStartSession(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	if !mh.requireOwner(state, dispatcher, logger, msg) {
		return
	}

	request := StartSessionRequest{}
	if err := json.Unmarshal(msg.GetData(), &request); err != nil {
		logger.Warn("StartSession: Invalid request from %s: %v", msg.GetUserId(), err)
		mh.sendError(state, dispatcher, logger, msg.GetUserId(), 3, "invalid start request")
		return
	}

	if len(request.Seats) < app.MinPlayersToStartSession {
		logger.Warn("StartSession: Cannot start with %d players. Need at least %d.", len(request.Seats), app.MinPlayersToStartSession)
		mh.sendError(state, dispatcher, logger, msg.GetUserId(), 3, domain.ErrPlayerCount.Error())
		return
	}

	seats := make([]domain.Seat, 0, len(request.Seats))
	for _, s := range request.Seats {
		seats = append(seats, domain.Seat{ID: s.ID, Name: s.Name, Icon: s.Icon})
	}

	events, err := state.App.StartSession(state.Session, seats)
	if err != nil {
		logger.Warn("StartSession: Failed to start: %v", err)
		mh.sendError(state, dispatcher, logger, msg.GetUserId(), 3, err.Error())
		return
	}

	state.Settled = false
	mh.updateLabel(state, dispatcher, logger)
	for _, ev := range events {
		mh.broadcastEvent(ctx, state, dispatcher, logger, ev)
	}
	mh.persistSnapshot(ctx, state, logger)

	logger.Info("StartSession: Session started with %d players.", len(seats))
}

func (mh *matchHandler) handleRiichi(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData, declare bool) {
	if !mh.requireOwner(state, dispatcher, logger, msg) {
		return
	}

	request := RiichiRequest{}
	if err := json.Unmarshal(msg.GetData(), &request); err != nil {
		mh.sendError(state, dispatcher, logger, msg.GetUserId(), 3, "invalid riichi request")
		return
	}

	var events []app.Event
	var err error
	if declare {
		events, err = state.App.DeclareRiichi(state.Session, request.PlayerID)
	} else {
		events, err = state.App.RetractRiichi(state.Session, request.PlayerID)
	}
	if err != nil {
		mh.sendError(state, dispatcher, logger, msg.GetUserId(), 3, err.Error())
		return
	}

	for _, ev := range events {
		mh.broadcastEvent(ctx, state, dispatcher, logger, ev)
	}
	mh.persistSnapshot(ctx, state, logger)
}

func (mh *matchHandler) handleRecordWin(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	if !mh.requireOwner(state, dispatcher, logger, msg) {
		return
	}

	request := RecordWinRequest{}
	if err := json.Unmarshal(msg.GetData(), &request); err != nil {
		mh.sendError(state, dispatcher, logger, msg.GetUserId(), 3, "invalid win request")
		return
	}

	winner := state.Session.PlayerByID(request.WinnerID)
	if winner == nil {
		mh.sendError(state, dispatcher, logger, msg.GetUserId(), 3, domain.ErrUnknownPlayer.Error())
		return
	}

	// Evaluate the hand before touching session state so a scorer failure
	// leaves the table untouched.
	hand := request.Hand
	hand.IsTsumo = request.Tsumo
	hand.GameContext = mh.gameContext(state.Session, request.WinnerID)
	resp, err := state.Scoring.Score(ctx, hand)
	if err != nil {
		logger.Error("RecordWin: Score API call failed: %v", err)
		mh.sendError(state, dispatcher, logger, msg.GetUserId(), 14, "hand evaluation unavailable")
		return
	}
	if !resp.IsWinning {
		mh.sendError(state, dispatcher, logger, msg.GetUserId(), 3, resp.Error)
		return
	}

	events, err := state.App.RecordWin(state.Session, request.WinnerID, request.LoserID, request.Tsumo, winScoreFromResponse(resp))
	if err != nil {
		mh.sendError(state, dispatcher, logger, msg.GetUserId(), 3, err.Error())
		return
	}

	mh.updateLabel(state, dispatcher, logger)
	for _, ev := range events {
		mh.broadcastEvent(ctx, state, dispatcher, logger, ev)
	}
	mh.persistSnapshot(ctx, state, logger)
}

func (mh *matchHandler) handleRecordDraw(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	if !mh.requireOwner(state, dispatcher, logger, msg) {
		return
	}

	request := RecordDrawRequest{}
	if err := json.Unmarshal(msg.GetData(), &request); err != nil {
		mh.sendError(state, dispatcher, logger, msg.GetUserId(), 3, "invalid draw request")
		return
	}

	events, err := state.App.RecordDraw(state.Session, request.TenpaiIDs)
	if err != nil {
		mh.sendError(state, dispatcher, logger, msg.GetUserId(), 3, err.Error())
		return
	}

	mh.updateLabel(state, dispatcher, logger)
	for _, ev := range events {
		mh.broadcastEvent(ctx, state, dispatcher, logger, ev)
	}
	mh.persistSnapshot(ctx, state, logger)
}

func (mh *matchHandler) handleConclude(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	if !mh.requireOwner(state, dispatcher, logger, msg) {
		return
	}

	events := state.App.Conclude(state.Session)
	mh.updateLabel(state, dispatcher, logger)
	for _, ev := range events {
		mh.broadcastEvent(ctx, state, dispatcher, logger, ev)
	}
	mh.persistSnapshot(ctx, state, logger)
}

func (mh *matchHandler) handleReset(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	if !mh.requireOwner(state, dispatcher, logger, msg) {
		return
	}

	events := state.App.Reset(state.Session)
	state.Settled = false
	mh.updateLabel(state, dispatcher, logger)
	for _, ev := range events {
		mh.broadcastEvent(ctx, state, dispatcher, logger, ev)
	}
	mh.persistSnapshot(ctx, state, logger)
}

// gameContext snapshots the round context the score API needs. Positions are
// seat indices relative to the seating order.
func (mh *matchHandler) gameContext(sess *domain.Session, winnerID string) ports.GameContext {
	playerPos := 0
	for i, p := range sess.Players {
		if p.ID == winnerID {
			playerPos = i
			break
		}
	}
	return ports.GameContext{
		RoundWind:      sess.WindToken(),
		RoundNumber:    sess.Round,
		DealerPosition: sess.DealerIndex,
		PlayerPosition: playerPos,
		Honba:          sess.Honba,
		RiichiSticks:   sess.RiichiSticks,
	}
}

// persistSnapshot saves the current session state. Persistence is
// best-effort; a storage failure never rolls back a committed transition.
func (mh *matchHandler) persistSnapshot(ctx context.Context, state *MatchState, logger runtime.Logger) {
	if state.Store == nil || state.OwnerID == "" {
		return
	}
	if err := state.Store.Save(ctx, state.OwnerID, state.Session.Snapshot()); err != nil {
		logger.Warn("Failed to persist session snapshot: %v", err)
	}
}

// restoreSnapshot rehydrates a previously saved session for the owner. Only
// an untouched setup-phase session is replaced.
func (mh *matchHandler) restoreSnapshot(ctx context.Context, state *MatchState, logger runtime.Logger) {
	if state.Store == nil || state.OwnerID == "" {
		return
	}
	if state.Session.Phase != domain.PhaseSetup || len(state.Session.Players) > 0 {
		return
	}

	snap, found, err := state.Store.Load(ctx, state.OwnerID)
	if err != nil {
		logger.Warn("Failed to load session snapshot: %v", err)
		return
	}
	if !found {
		return
	}

	sess, err := domain.FromSnapshot(snap)
	if err != nil {
		logger.Warn("Discarding unusable session snapshot: %v", err)
		return
	}
	state.Session = sess
	logger.Info("Restored session snapshot for owner %s.", state.OwnerID)
}

// broadcastEvent handles the conversion and dispatching of app events to Nakama.
func (mh *matchHandler) broadcastEvent(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, ev app.Event) {
	var opCode int64

	switch ev.Kind {
	case app.EventPlayerJoined:
		opCode = OpEventPlayerJoined
	case app.EventPlayerLeft:
		opCode = OpEventPlayerLeft
	case app.EventSessionStarted:
		opCode = OpEventSessionStarted
	case app.EventRiichiDeclared, app.EventRiichiRetracted:
		opCode = OpEventRiichi
	case app.EventRoundSettled:
		opCode = OpEventRoundSettled
	case app.EventSessionConcluded:
		opCode = OpEventSessionConcluded
		mh.settleBalances(ctx, state, logger, ev)
	case app.EventSessionReset:
		opCode = OpEventSessionReset
	default:
		logger.Warn("Unknown event kind: %v", ev.Kind)
		return
	}

	bytes, err := json.Marshal(ev.Payload)
	if err != nil {
		logger.Error("Failed to marshal event %v: %v", ev.Kind, err)
		return
	}

	// Determine recipients (default to broadcast)
	var recipients []runtime.Presence
	if len(ev.Recipients) > 0 {
		for _, uid := range ev.Recipients {
			if p, ok := state.Presences[uid]; ok {
				recipients = append(recipients, p)
			}
		}

		// If we had intended recipients but none are connected,
		// we MUST NOT broadcast to everyone else.
		if len(recipients) == 0 {
			return
		}
	}

	dispatcher.BroadcastMessage(opCode, bytes, recipients, nil, true)
}

// settleBalances applies concluded-session deltas to connected users' chip
// wallets. Seats without a connected account are table-only players and are
// skipped.
func (mh *matchHandler) settleBalances(ctx context.Context, state *MatchState, logger runtime.Logger, ev app.Event) {
	if state.Economy == nil || state.Settled {
		return
	}
	payload, ok := ev.Payload.(app.SessionConcludedPayload)
	if !ok {
		return
	}

	updates := make([]ports.WalletUpdate, 0, len(payload.Deltas))
	for userID, amount := range payload.Deltas {
		if _, connected := state.Presences[userID]; !connected {
			continue
		}
		updates = append(updates, ports.WalletUpdate{
			UserID: userID,
			Amount: int64(amount),
			Metadata: map[string]interface{}{
				"match_id": ctx.Value(runtime.RUNTIME_CTX_MATCH_ID),
				"reason":   "session_settlement",
			},
		})
	}
	if len(updates) == 0 {
		state.Settled = true
		return
	}
	if err := state.Economy.UpdateBalances(ctx, updates); err != nil {
		logger.Error("Failed to update balances: %v", err)
		return
	}
	state.Settled = true
}

// sendState sends the full table view to the given presences.
func (mh *matchHandler) sendState(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, recipients []runtime.Presence) {
	bytes, err := json.Marshal(stateEvent(state))
	if err != nil {
		logger.Error("Failed to marshal state event: %v", err)
		return
	}
	dispatcher.BroadcastMessage(OpEventState, bytes, recipients, nil, true)
}

// sendError sends an ErrorEvent to a specific user.
func (mh *matchHandler) sendError(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, code int, message string) {
	payload := ErrorEvent{
		Code:    code,
		Message: message,
	}
	bytes, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Failed to marshal ErrorEvent: %v", err)
		return
	}

	presence, ok := state.Presences[userID]
	if !ok {
		logger.Warn("Cannot send error to %s: Presence not found", userID)
		return
	}

	dispatcher.BroadcastMessage(OpEventError, bytes, []runtime.Presence{presence}, nil, true)
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	if err := dispatcher.MatchLabelUpdate(buildLabel(state)); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
	}
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, reason int) interface{} {
	logger.Debug("MatchTerminate: Match terminated for reason %d", reason)
	return state
}

func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}
