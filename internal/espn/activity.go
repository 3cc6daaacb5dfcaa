package espn

import (
	"context"
	"fmt"
	"net/url"

	"github.com/fortuna/gridiron/internal/league"
)

// ESPN message type ids for transaction topics.
const (
	msgFreeAgentAdded = 178
	msgDropped        = 179
	msgWaiverAdded    = 180
	msgDroppedRoster  = 181
	msgDroppedWaiver  = 239
	msgTraded         = 244
)

var activityActions = map[int]league.ActionType{
	msgFreeAgentAdded: league.ActionFreeAgentAdded,
	msgWaiverAdded:    league.ActionWaiverAdded,
	msgDropped:        league.ActionDropped,
	msgDroppedRoster:  league.ActionDropped,
	msgDroppedWaiver:  league.ActionDropped,
	msgTraded:         league.ActionTraded,
}

func messageTypesFor(action league.ActionType) ([]int, error) {
	switch action {
	case "":
		return []int{msgFreeAgentAdded, msgWaiverAdded, msgDropped, msgDroppedWaiver, msgDroppedRoster, msgTraded}, nil
	case league.ActionFreeAgentAdded:
		return []int{msgFreeAgentAdded}, nil
	case league.ActionWaiverAdded:
		return []int{msgWaiverAdded}, nil
	case league.ActionTraded:
		return []int{msgTraded}, nil
	case league.ActionDropped:
		return []int{msgDropped, msgDroppedRoster, msgDroppedWaiver}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported activity type %q", league.ErrConfig, action)
	}
}

// RecentActivity returns up to size transaction topics, most recent first.
// An empty action means every transaction type.
func (l *League) RecentActivity(ctx context.Context, size int, action league.ActionType) ([]league.Activity, error) {
	types, err := messageTypesFor(action)
	if err != nil {
		return nil, err
	}

	params := url.Values{"view": {"kona_league_communication"}}
	filter := map[string]any{
		"topics": map[string]any{
			"filterType":                  map[string]any{"value": []string{"ACTIVITY_TRANSACTIONS"}},
			"limit":                       size,
			"limitPerMessageSet":          map[string]any{"value": 25},
			"offset":                      0,
			"sortMessageDate":             map[string]any{"sortPriority": 1, "sortAsc": false},
			"sortFor":                     map[string]any{"sortPriority": 2, "sortAsc": false},
			"filterIncludeMessageTypeIds": map[string]any{"value": types},
		},
	}

	var resp communicationResponse
	if err := l.client.get(ctx, l.leaguePath()+"/communication/", params, filter, &resp); err != nil {
		return nil, err
	}

	if l.needsPlayerNames(resp.Topics) {
		if err := l.loadPlayerNames(ctx); err != nil {
			return nil, err
		}
	}

	activity := make([]league.Activity, 0, len(resp.Topics))
	for _, topic := range resp.Topics {
		activity = append(activity, l.parseTopic(topic))
	}
	return activity, nil
}

func (l *League) parseTopic(topic topicJSON) league.Activity {
	act := league.Activity{Date: topic.Date, Actions: []league.Action{}}
	for _, msg := range topic.Messages {
		teamID := msg.To
		switch msg.MessageTypeID {
		case msgTraded:
			teamID = msg.From
		case msgDroppedWaiver:
			teamID = msg.For
		}

		action, ok := activityActions[msg.MessageTypeID]
		if !ok {
			action = league.ActionUnknown
		}

		act.Actions = append(act.Actions, league.Action{
			Team:   l.teamNames[teamID],
			Type:   action,
			Player: l.playerName(msg.TargetID),
		})
	}
	return act
}

func (l *League) playerName(id int) string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.playerNames[id]
}

func (l *League) needsPlayerNames(topics []topicJSON) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.playersLoaded {
		return false
	}
	for _, topic := range topics {
		for _, msg := range topic.Messages {
			if _, ok := l.playerNames[msg.TargetID]; !ok {
				return true
			}
		}
	}
	return false
}

// loadPlayerNames fetches the season player list once per League so
// activity can name players that are not on any roster.
func (l *League) loadPlayerNames(ctx context.Context) error {
	params := url.Values{
		"view":            {"players_wl"},
		"scoringPeriodId": {"0"},
	}
	filter := map[string]any{"filterActive": map[string]any{"value": true}}

	var list []playerListEntry
	if err := l.client.get(ctx, fmt.Sprintf("/seasons/%d/players", l.season), params, filter, &list); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for _, p := range list {
		if _, ok := l.playerNames[p.ID]; !ok {
			l.playerNames[p.ID] = p.FullName
		}
	}
	l.playersLoaded = true
	l.log.Debug().Int("players", len(list)).Msg("player names loaded")
	return nil
}
