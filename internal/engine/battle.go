package engine

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/Mori-kamiyama/nikopoke/internal/data"
	"github.com/Mori-kamiyama/nikopoke/internal/game"
)

// StepOptions tunes one resolver step.
type StepOptions struct {
	// RecordHistory appends the turn (actions, log slice, RNG draws) to the
	// state's history. Search turns it off to keep playouts cheap.
	RecordHistory bool
}

// DefaultStepOptions records history.
func DefaultStepOptions() StepOptions {
	return StepOptions{RecordHistory: true}
}

type orderedAction struct {
	action   game.Action
	priority int
	speed    int
	rand     float64
}

// StepBattle resolves one full turn: turn-start hooks, action ordering,
// per-action resolution and the turn-end pipeline. The input state is never
// mutated; the returned state is a fresh value.
func (e *Engine) StepBattle(state *game.BattleState, actions []game.Action, rng RNG, opts StepOptions) *game.BattleState {
	next := state.Clone()
	next.Turn++
	logStart := len(next.Log)
	rec := NewRecordingRNG(rng)
	draw := rec.RNG()

	next.Log = append(next.Log, fmt.Sprintf("--- Turn %d ---", next.Turn))

	next = e.runTurnStart(next, draw)
	ordered := e.orderActions(next, actions, draw)

	for _, oa := range ordered {
		next = e.resolveAction(next, oa.action, draw)
		if IsBattleOver(next) {
			break
		}
	}

	next = e.runTurnEnd(next, draw)
	next = tickStatuses(next)
	next = tickFieldEffects(next)

	if opts.RecordHistory {
		turnLog := append([]string(nil), next.Log[logStart:]...)
		recorded := make([]game.Action, len(actions))
		for i := range actions {
			recorded[i] = actions[i].Clone()
		}
		if next.History == nil {
			next.History = &game.BattleHistory{}
		}
		next.History.Turns = append(next.History.Turns, game.BattleTurn{
			Turn:    next.Turn,
			Actions: recorded,
			Log:     turnLog,
			RNG:     rec.Drawn,
		})
	}
	return next
}

func (e *Engine) runTurnStart(next *game.BattleState, draw RNG) *game.BattleState {
	next, events := runAllAbilityHooks(next, hookTurnStart, abilityHookContext{rng: draw})
	next = ApplyEvents(next, events)
	for _, id := range playerIDs(next) {
		result := e.runStatusHooks(next, id, hookTurnStart, statusHookContext{rng: draw})
		next = ApplyEvents(result.state, result.events)
	}
	field := e.runFieldHooks(next, hookTurnStart, statusHookContext{rng: draw})
	return ApplyEvents(field.state, field.events)
}

// orderActions assigns (priority, speed, tiebreak) to every action and sorts.
// Switches and item uses always go before moves; moves take their priority
// through the ability hook. One RNG value is drawn per action as the final
// tiebreak.
func (e *Engine) orderActions(next *game.BattleState, actions []game.Action, draw RNG) []orderedAction {
	ordered := make([]orderedAction, 0, len(actions))
	for _, action := range actions {
		if action.Type == game.ActionSwitch || action.Type == game.ActionUseItem {
			ordered = append(ordered, orderedAction{
				action:   action,
				priority: 10000,
				speed:    int(math.Round(e.computeSpeed(next, action.PlayerID))),
				rand:     draw(),
			})
			continue
		}
		var move *data.MoveData
		if action.MoveID != "" {
			move = e.tables.Moves.Get(action.MoveID)
		}
		base := 0.0
		category := ""
		if move != nil {
			base = float64(move.Priority)
			category = move.Category
		}
		priority := int(math.Round(runAbilityValueHook(next, action.PlayerID, hookModifyPriority, base,
			abilityValueContext{move: move, category: category})))
		ordered = append(ordered, orderedAction{
			action:   action,
			priority: priority,
			speed:    int(math.Round(e.computeSpeed(next, action.PlayerID))),
			rand:     draw(),
		})
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].priority != ordered[j].priority {
			return ordered[i].priority > ordered[j].priority
		}
		if ordered[i].speed != ordered[j].speed {
			return ordered[i].speed > ordered[j].speed
		}
		return ordered[i].rand < ordered[j].rand
	})
	return ordered
}

func (e *Engine) resolveAction(next *game.BattleState, action game.Action, draw RNG) *game.BattleState {
	playerID := action.PlayerID
	name := actorName(next, playerID)

	if action.Type != game.ActionSwitch {
		if active := next.Active(playerID); active != nil && active.HasStatus("pending_switch") {
			next.Log = append(next.Log, fmt.Sprintf("%s must switch out!", name))
			return next
		}
	}

	switch action.Type {
	case game.ActionSwitch:
		return e.resolveSwitch(next, action, draw)
	case game.ActionUseItem:
		return e.resolveUseItem(next, action)
	case game.ActionWait:
		return next
	}
	return e.resolveMove(next, action, draw)
}

func (e *Engine) resolveSwitch(next *game.BattleState, action game.Action, draw RNG) *game.BattleState {
	playerID := action.PlayerID
	name := actorName(next, playerID)
	player := next.Player(playerID)
	if player == nil {
		return next
	}
	if action.Slot == nil {
		next.Log = append(next.Log, fmt.Sprintf("%s tried to switch without a slot.", name))
		return next
	}
	slot := *action.Slot
	if slot < 0 || slot >= len(player.Team) {
		next.Log = append(next.Log, fmt.Sprintf("%s tried to switch to an invalid slot.", name))
		return next
	}
	if slot == player.ActiveSlot {
		next.Log = append(next.Log, fmt.Sprintf("%s tried to switch to the active slot.", name))
		return next
	}
	if player.Team[slot].HP <= 0 {
		next.Log = append(next.Log, fmt.Sprintf("%s tried to switch to a fainted creature.", name))
		return next
	}

	if active := next.Active(playerID); active != nil && active.HP > 0 && !hasType(active.Types, "ghost") {
		for i := range next.Players {
			other := next.Players[i].ID
			if other == playerID {
				continue
			}
			if runAbilityCheckHook(next, other, hookTrap, abilityCheckContext{targetID: playerID}, false) {
				next.Log = append(next.Log, fmt.Sprintf("%s couldn't switch out!", name))
				return next
			}
		}
	}

	next = ApplyEvent(next, Event{Type: EventSwitch, PlayerID: playerID, Slot: slot})
	result := runAbilityHooks(next, playerID, hookSwitchIn, abilityHookContext{rng: draw})
	if result.state != nil {
		next = result.state
	}
	return ApplyEvents(next, result.events)
}

func (e *Engine) resolveUseItem(next *game.BattleState, action game.Action) *game.BattleState {
	playerID := action.PlayerID
	name := actorName(next, playerID)
	if !runAbilityCheckHook(next, playerID, hookCheckItem, abilityCheckContext{}, true) {
		next.Log = append(next.Log, fmt.Sprintf("%s can't use its item!", name))
		return next
	}
	active := next.Active(playerID)
	if active == nil {
		return next
	}
	if !creatureHasItem(active) {
		next.Log = append(next.Log, fmt.Sprintf("%s has no item to use!", name))
		return next
	}
	itemID := creatureItemID(active)
	if itemID == "" {
		itemID = "item"
	}
	next.Log = append(next.Log, fmt.Sprintf("%s used its %s!", name, itemID))
	events := []Event{
		{Type: EventRemoveStatus, TargetID: playerID, StatusID: "item"},
		{Type: EventRemoveStatus, TargetID: playerID, StatusID: "berry"},
	}
	if strings.Contains(itemID, "berry") {
		events = append(events, Event{Type: EventApplyStatus, TargetID: playerID, StatusID: "berry_consumed"})
	}
	return ApplyEvents(next, events)
}

func (e *Engine) resolveMove(next *game.BattleState, action game.Action, draw RNG) *game.BattleState {
	playerID := action.PlayerID
	name := actorName(next, playerID)

	active := next.Active(playerID)
	if active == nil || active.HP <= 0 {
		next.Log = append(next.Log, fmt.Sprintf("%s cannot act.", name))
		return next
	}

	targetID := action.TargetID
	if targetID == "" {
		if opp := next.Opponent(playerID); opp != nil {
			targetID = opp.ID
		}
	}
	if targetID == "" {
		next.Log = append(next.Log, fmt.Sprintf("No valid target for %s.", name))
		return next
	}

	moveID := action.MoveID
	if moveID == "" {
		next.Log = append(next.Log, fmt.Sprintf("%s has no move selected.", name))
		return next
	}
	move := e.tables.Moves.Get(moveID)
	if move == nil {
		next.Log = append(next.Log, fmt.Sprintf("%s tried unknown move %s.", name, moveID))
		return next
	}

	abilityBefore := runAbilityHooks(next, playerID, hookBeforeAction, abilityHookContext{rng: draw, action: &action, move: move})
	if abilityBefore.state != nil {
		next = abilityBefore.state
	}
	next = ApplyEvents(next, abilityBefore.events)

	statusBefore := e.runStatusHooks(next, playerID, hookBeforeAction, statusHookContext{rng: draw, action: &action, move: move})
	next = ApplyEvents(statusBefore.state, statusBefore.events)
	if statusBefore.preventAction {
		return next
	}
	if statusBefore.overrideAction != nil {
		action = *statusBefore.overrideAction
		if action.MoveID == "" {
			next.Log = append(next.Log, fmt.Sprintf("%s has no move selected.", name))
			return next
		}
		if action.MoveID != moveID {
			override := e.tables.Moves.Get(action.MoveID)
			if override == nil {
				next.Log = append(next.Log, fmt.Sprintf("%s tried unknown move %s.", name, action.MoveID))
				return next
			}
			moveID = action.MoveID
			move = override
		}
	}

	fieldBefore := e.runFieldHooks(next, hookBeforeAction, statusHookContext{rng: draw, action: &action, move: move})
	next = ApplyEvents(fieldBefore.state, fieldBefore.events)

	if !moveHasEffect(move, "protect") {
		if active := next.Active(playerID); active != nil {
			if _, ok := active.VolatileData["protectSuccessCount"]; ok {
				next = ApplyEvent(next, Event{
					Type: EventSetVolatile, TargetID: playerID,
					Key: "protectSuccessCount", Value: float64(0),
				})
			}
		}
	}

	active = next.Active(playerID)
	if active == nil || active.HP <= 0 {
		return next
	}
	if !consumeMovePP(active, move) {
		next.Log = append(next.Log, fmt.Sprintf("%s's %s is out of PP!", name, move.DisplayName()))
		return next
	}
	if active.VolatileData == nil {
		active.VolatileData = map[string]interface{}{}
	}
	active.VolatileData["lastMove"] = moveID

	next.Log = append(next.Log, fmt.Sprintf("%s used %s!", actorName(next, playerID), move.DisplayName()))

	ectx := &effectContext{
		attackerID: playerID,
		targetID:   targetID,
		move:       move,
		rng:        draw,
		turn:       next.Turn,
	}
	events := e.compileEffects(next, move.Effects, ectx)
	events = applyAbilityEventModifiers(next, events, e.tables.Moves)
	transforms := e.collectEventTransforms(next, draw)
	events = applyEventTransforms(events, transforms)
	events = e.expandRandomMoves(next, events, draw, playerID, targetID)
	return ApplyEvents(next, events)
}

func (e *Engine) runTurnEnd(next *game.BattleState, draw RNG) *game.BattleState {
	next, events := runAllAbilityHooks(next, hookTurnEnd, abilityHookContext{rng: draw})
	next = ApplyEvents(next, events)

	weather := e.runFieldHooks(next, hookWeatherEnd, statusHookContext{rng: draw})
	next = ApplyEvents(weather.state, weather.events)

	for _, id := range playerIDs(next) {
		result := e.runStatusHooks(next, id, hookWishResolve, statusHookContext{rng: draw})
		next = ApplyEvents(result.state, result.events)
	}

	grassy := e.runFieldHooks(next, hookGrassyTerrain, statusHookContext{rng: draw})
	next = ApplyEvents(grassy.state, grassy.events)

	for _, hook := range []string{hookItemEndTurn, hookLeechSeed, hookStatusDamage, hookBindDamage, hookTurnEnd} {
		for _, id := range playerIDs(next) {
			result := e.runStatusHooks(next, id, hook, statusHookContext{rng: draw})
			next = ApplyEvents(result.state, result.events)
		}
	}

	fieldEnd := e.runFieldHooks(next, hookTurnEnd, statusHookContext{rng: draw})
	return ApplyEvents(fieldEnd.state, fieldEnd.events)
}

// collectEventTransforms gathers every active transform (protect, substitute)
// from both players' statuses and the field, highest priority first.
func (e *Engine) collectEventTransforms(state *game.BattleState, draw RNG) []EventTransform {
	var transforms []EventTransform
	for _, id := range playerIDs(state) {
		result := e.runStatusHooks(state, id, hookEventTransform, statusHookContext{rng: draw})
		transforms = append(transforms, result.transforms...)
	}
	field := e.runFieldHooks(state, hookEventTransform, statusHookContext{rng: draw})
	transforms = append(transforms, field.transforms...)
	sort.SliceStable(transforms, func(i, j int) bool {
		return transforms[i].Priority > transforms[j].Priority
	})
	return transforms
}

// applyEventTransforms drops events matching a cancel_event transform and
// substitutes the first matching replace_event's replacement list.
func applyEventTransforms(events []Event, transforms []EventTransform) []Event {
	if len(transforms) == 0 {
		return events
	}
	var result []Event
	for i := range events {
		ev := events[i]
		cancelled := false
		for j := range transforms {
			if transforms[j].Kind == "cancel_event" && transforms[j].Matches(&ev) {
				cancelled = true
				break
			}
		}
		if cancelled {
			continue
		}
		replaced := false
		for j := range transforms {
			if transforms[j].Kind == "replace_event" && transforms[j].Matches(&ev) {
				result = append(result, transforms[j].To...)
				replaced = true
				break
			}
		}
		if !replaced {
			result = append(result, ev)
		}
	}
	return result
}

// expandRandomMoves resolves random_move sentinels in the event stream:
// choose a move from the pool, spend its PP and splice in its compiled
// events. Nested sentinels are left alone.
func (e *Engine) expandRandomMoves(next *game.BattleState, events []Event, draw RNG, attackerID, targetID string) []Event {
	var expanded []Event
	name := actorName(next, attackerID)
	for i := range events {
		ev := events[i]
		if ev.Type != EventRandomMove {
			expanded = append(expanded, ev)
			continue
		}
		chosenID := e.chooseRandomMove(next, ev.Pool, draw, attackerID)
		if chosenID == "" {
			expanded = append(expanded, LogEvent(fmt.Sprintf("%s tried to use a random move, but failed!", name)))
			continue
		}
		chosen := e.tables.Moves.Get(chosenID)
		if chosen == nil {
			continue
		}
		if active := next.Active(attackerID); active != nil {
			if !consumeMovePP(active, chosen) {
				expanded = append(expanded, LogEvent(fmt.Sprintf("%s's %s is out of PP!", name, chosen.DisplayName())))
				continue
			}
		}
		expanded = append(expanded, LogEvent(fmt.Sprintf("%s used %s! (random)", name, chosen.DisplayName())))

		ectx := &effectContext{
			attackerID: attackerID,
			targetID:   targetID,
			move:       chosen,
			rng:        draw,
			turn:       next.Turn,
		}
		sub := e.compileEffects(next, chosen.Effects, ectx)
		sub = applyAbilityEventModifiers(next, sub, e.tables.Moves)
		transforms := e.collectEventTransforms(next, draw)
		sub = applyEventTransforms(sub, transforms)
		expanded = append(expanded, sub...)
	}
	return expanded
}

func (e *Engine) chooseRandomMove(state *game.BattleState, pool string, draw RNG, attackerID string) string {
	var candidates []string
	switch pool {
	case "self_moves":
		if active := state.Active(attackerID); active != nil {
			candidates = append(candidates, active.Moves...)
		}
	case "physical", "special", "status":
		candidates = e.tables.Moves.ByCategory(pool)
	default:
		candidates = e.tables.Moves.IDs()
	}
	if len(candidates) == 0 {
		candidates = e.tables.Moves.IDs()
	}

	active := state.Active(attackerID)
	var usable []string
	for _, id := range candidates {
		move := e.tables.Moves.Get(id)
		if move == nil {
			continue
		}
		if active != nil && !hasMovePP(active, move) {
			continue
		}
		usable = append(usable, id)
	}
	if len(usable) == 0 {
		return ""
	}
	idx := int(draw() * float64(len(usable)))
	if idx >= len(usable) {
		idx = len(usable) - 1
	}
	return usable[idx]
}

// IsBattleOver reports whether either side has no creature left standing.
func IsBattleOver(state *game.BattleState) bool {
	for i := range state.Players {
		alive := false
		for j := range state.Players[i].Team {
			if state.Players[i].Team[j].HP > 0 {
				alive = true
				break
			}
		}
		if !alive {
			return true
		}
	}
	return false
}

// Winner returns the id of the only player with survivors, or "" when the
// battle is ongoing or drawn.
func Winner(state *game.BattleState) string {
	winner := ""
	count := 0
	for i := range state.Players {
		for j := range state.Players[i].Team {
			if state.Players[i].Team[j].HP > 0 {
				winner = state.Players[i].ID
				count++
				break
			}
		}
	}
	if count == 1 {
		return winner
	}
	return ""
}

func playerIDs(state *game.BattleState) []string {
	ids := make([]string, 0, len(state.Players))
	for i := range state.Players {
		ids = append(ids, state.Players[i].ID)
	}
	return ids
}

// actorName prefers the active creature's name, falling back to the player.
func actorName(state *game.BattleState, playerID string) string {
	if active := state.Active(playerID); active != nil {
		return active.Name
	}
	if player := state.Player(playerID); player != nil {
		return player.Name
	}
	return playerID
}

func moveHasEffect(move *data.MoveData, effectType string) bool {
	for i := range move.Effects {
		if move.Effects[i].Type == effectType {
			return true
		}
	}
	return false
}

// ensureMovePP lazily seeds the per-creature PP counter from the move's
// maximum. A move without a PP value is unlimited.
func ensureMovePP(c *game.CreatureState, move *data.MoveData) (int, bool) {
	if move.PP == nil {
		return 0, false
	}
	if c.MovePP == nil {
		c.MovePP = map[string]int{}
	}
	pp, ok := c.MovePP[move.ID]
	if !ok {
		pp = *move.PP
		c.MovePP[move.ID] = pp
	}
	return pp, true
}

func hasMovePP(c *game.CreatureState, move *data.MoveData) bool {
	pp, limited := ensureMovePP(c, move)
	return !limited || pp > 0
}

func consumeMovePP(c *game.CreatureState, move *data.MoveData) bool {
	pp, limited := ensureMovePP(c, move)
	if !limited {
		return true
	}
	if pp <= 0 {
		return false
	}
	c.MovePP[move.ID] = pp - 1
	return true
}
