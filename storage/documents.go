package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
)

// PlayerStatus is the contract state stored on a player record.
type PlayerStatus string

const (
	StatusFreeAgent PlayerStatus = "free_agent"
	StatusSigned    PlayerStatus = "signed"
)

// NoRating is the placeholder rating for players nobody has rated yet.
const NoRating = "N/A"

// --- Seasons ---

// Seasons is a contract length. Chairmen hold open-ended contracts, written as "inf".
type Seasons struct {
	Count    int
	Infinite bool
}

var InfiniteSeasons = Seasons{Infinite: true}

func FixedSeasons(n int) Seasons { return Seasons{Count: n} }

func (s Seasons) String() string {
	if s.Infinite {
		return "inf"
	}
	return strconv.Itoa(s.Count)
}

func (s Seasons) MarshalJSON() ([]byte, error) {
	if s.Infinite {
		return []byte(`"inf"`), nil
	}
	return []byte(strconv.Itoa(s.Count)), nil
}

func (s *Seasons) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		if str == "inf" {
			*s = InfiniteSeasons
			return nil
		}
		n, err := strconv.Atoi(str)
		if err != nil {
			return fmt.Errorf("invalid seasons %q", str)
		}
		*s = FixedSeasons(n)
		return nil
	}
	if bytes.Equal(data, []byte("null")) {
		*s = Seasons{}
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid seasons %s: %w", data, err)
	}
	*s = FixedSeasons(n)
	return nil
}

// --- Snowflake ---

// Snowflake is a platform id. Hand-edited team files often carry role ids as bare
// numbers, so both numbers and strings are accepted; it is always written as a string.
type Snowflake string

func (id Snowflake) MarshalJSON() ([]byte, error) {
	if id == "" {
		return []byte("null"), nil
	}
	return json.Marshal(string(id))
}

func (id *Snowflake) UnmarshalJSON(data []byte) error {
	switch {
	case bytes.Equal(data, []byte("null")):
		*id = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*id = Snowflake(str)
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var num json.Number
	if err := dec.Decode(&num); err != nil {
		return fmt.Errorf("invalid id %s: %w", data, err)
	}
	if _, err := strconv.ParseUint(num.String(), 10, 64); err != nil {
		return fmt.Errorf("invalid id %s: %w", data, err)
	}
	*id = Snowflake(num.String())
	return nil
}

// --- PlayerRecord ---

// PlayerRecord is one entry of the player registry, keyed by user id.
type PlayerRecord struct {
	Name    string       `json:"name"`
	ID      string       `json:"id"`
	Team    *string      `json:"team"`
	Status  PlayerStatus `json:"status"`
	TwoClub bool         `json:"2c"`
	Rating  string       `json:"rating"`
	// Only chairmen carry a contract length on their registry row.
	Seasons *Seasons `json:"seasons,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

var playerKnownKeys = []string{"name", "id", "team", "status", "2c", "rating", "seasons"}

// NewFreeAgent returns the record created by self-registration.
func NewFreeAgent(id, name string) *PlayerRecord {
	return &PlayerRecord{Name: name, ID: id, Status: StatusFreeAgent, Rating: NoRating}
}

// TeamName returns the team the player is signed to, or "".
func (p *PlayerRecord) TeamName() string {
	if p.Team == nil {
		return ""
	}
	return *p.Team
}

// SignTo marks the player as signed to team.
func (p *PlayerRecord) SignTo(team string) {
	p.Team = &team
	p.Status = StatusSigned
}

// MakeFreeAgent clears the team and contract length.
func (p *PlayerRecord) MakeFreeAgent() {
	p.Team = nil
	p.Status = StatusFreeAgent
	p.Seasons = nil
}

func (p PlayerRecord) MarshalJSON() ([]byte, error) {
	type plain PlayerRecord
	return marshalWithExtra(plain(p), p.Extra)
}

func (p *PlayerRecord) UnmarshalJSON(data []byte) error {
	type plain PlayerRecord
	var v plain
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	extra, err := splitExtra(data, playerKnownKeys)
	if err != nil {
		return err
	}
	*p = PlayerRecord(v)
	p.Extra = extra
	p.normalize()
	return nil
}

// normalize fills fields that older rows (notably chairman rows) were written without.
func (p *PlayerRecord) normalize() {
	if p.Team != nil && *p.Team == "" {
		p.Team = nil
	}
	if p.Status == "" {
		if p.Team != nil {
			p.Status = StatusSigned
		} else {
			p.Status = StatusFreeAgent
		}
	}
	if p.Rating == "" {
		p.Rating = NoRating
	}
}

// --- TeamRecord ---

// Contract is one roster slot of a team.
type Contract struct {
	PlayerID      string  `json:"id"`
	Seasons       Seasons `json:"seasons"`
	ReleaseClause bool    `json:"release_clause"`
}

// TeamRecord is one entry of the team registry, keyed by team name. Teams are
// provisioned outside the bot; only the fields below are ever changed.
//
// Contracts is the single source of truth for who is on the team. The on-disk
// "players" map and "roster" list are both derived from it when writing.
type TeamRecord struct {
	RoleID           Snowflake
	Chairman         string
	Manager          string
	AssistantManager string
	Contracts        []Contract

	Extra map[string]json.RawMessage
}

var teamKnownKeys = []string{"role_id", "chairman", "manager", "assistant_manager", "players", "roster"}

type teamSeasons struct {
	Seasons Seasons `json:"seasons"`
}

type teamJSON struct {
	RoleID           Snowflake              `json:"role_id"`
	Chairman         *string                `json:"chairman,omitempty"`
	Manager          *string                `json:"manager,omitempty"`
	AssistantManager *string                `json:"assistant_manager,omitempty"`
	Players          map[string]teamSeasons `json:"players"`
	Roster           []Contract             `json:"roster"`
}

func (t TeamRecord) MarshalJSON() ([]byte, error) {
	v := teamJSON{
		RoleID:           t.RoleID,
		Chairman:         optional(t.Chairman),
		Manager:          optional(t.Manager),
		AssistantManager: optional(t.AssistantManager),
		Players:          make(map[string]teamSeasons, len(t.Contracts)),
		Roster:           make([]Contract, 0, len(t.Contracts)),
	}
	for _, c := range t.Contracts {
		v.Players[c.PlayerID] = teamSeasons{Seasons: c.Seasons}
		v.Roster = append(v.Roster, c)
	}
	return marshalWithExtra(v, t.Extra)
}

func (t *TeamRecord) UnmarshalJSON(data []byte) error {
	var v teamJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	extra, err := splitExtra(data, teamKnownKeys)
	if err != nil {
		return err
	}
	*t = TeamRecord{
		RoleID:           v.RoleID,
		Chairman:         deref(v.Chairman),
		Manager:          deref(v.Manager),
		AssistantManager: deref(v.AssistantManager),
		Extra:            extra,
	}

	seen := make(map[string]bool, len(v.Roster))
	for _, c := range v.Roster {
		if c.PlayerID == "" || seen[c.PlayerID] {
			continue
		}
		seen[c.PlayerID] = true
		if p, ok := v.Players[c.PlayerID]; ok {
			c.Seasons = p.Seasons
		}
		t.Contracts = append(t.Contracts, c)
	}
	// Players listed only in the map have drifted out of the roster; keep them.
	var drifted []string
	for id := range v.Players {
		if !seen[id] {
			drifted = append(drifted, id)
		}
	}
	sort.Strings(drifted)
	for _, id := range drifted {
		t.Contracts = append(t.Contracts, Contract{PlayerID: id, Seasons: v.Players[id].Seasons})
	}
	return nil
}

// Contract returns the contract held by playerID.
func (t *TeamRecord) Contract(playerID string) (Contract, bool) {
	if i := t.indexOf(playerID); i >= 0 {
		return t.Contracts[i], true
	}
	return Contract{}, false
}

func (t *TeamRecord) HasPlayer(playerID string) bool {
	return t.indexOf(playerID) >= 0
}

// Add appends c unless the player already holds a contract, which is kept as is.
func (t *TeamRecord) Add(c Contract) bool {
	if t.HasPlayer(c.PlayerID) {
		return false
	}
	t.Contracts = append(t.Contracts, c)
	return true
}

// Upsert appends c, or replaces the terms of an existing contract in place.
func (t *TeamRecord) Upsert(c Contract) {
	if i := t.indexOf(c.PlayerID); i >= 0 {
		t.Contracts[i] = c
		return
	}
	t.Contracts = append(t.Contracts, c)
}

// Remove deletes the contract held by playerID and reports whether there was one.
func (t *TeamRecord) Remove(playerID string) bool {
	i := t.indexOf(playerID)
	if i < 0 {
		return false
	}
	t.Contracts = append(t.Contracts[:i], t.Contracts[i+1:]...)
	return true
}

// PlayerIDs returns the ids of every contracted player in roster order.
func (t *TeamRecord) PlayerIDs() []string {
	ids := make([]string, len(t.Contracts))
	for i, c := range t.Contracts {
		ids[i] = c.PlayerID
	}
	return ids
}

func (t *TeamRecord) indexOf(playerID string) int {
	for i, c := range t.Contracts {
		if c.PlayerID == playerID {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy safe to hand out of a store transaction.
func (t *TeamRecord) Clone() TeamRecord {
	c := *t
	c.Contracts = append([]Contract(nil), t.Contracts...)
	return c
}

// --- League ---

// League is the in-memory form of both documents.
type League struct {
	Players map[string]*PlayerRecord
	Teams   map[string]*TeamRecord
}

func NewLeague() *League {
	return &League{
		Players: make(map[string]*PlayerRecord),
		Teams:   make(map[string]*TeamRecord),
	}
}

// TeamNames returns team names sorted, so scans over teams are deterministic.
func (l *League) TeamNames() []string {
	names := make([]string, 0, len(l.Teams))
	for name := range l.Teams {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TeamChairedBy returns the first team (by name) whose chairman is userID.
func (l *League) TeamChairedBy(userID string) (string, *TeamRecord, bool) {
	for _, name := range l.TeamNames() {
		if t := l.Teams[name]; t.Chairman == userID {
			return name, t, true
		}
	}
	return "", nil, false
}

// TeamsWithPlayer returns the names of every team holding a contract for playerID.
func (l *League) TeamsWithPlayer(playerID string) []string {
	var names []string
	for _, name := range l.TeamNames() {
		if l.Teams[name].HasPlayer(playerID) {
			names = append(names, name)
		}
	}
	return names
}

// SortedPlayers returns copies of all player records ordered by name, then id.
func (l *League) SortedPlayers() []PlayerRecord {
	out := make([]PlayerRecord, 0, len(l.Players))
	for _, p := range l.Players {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// --- helpers ---

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func splitExtra(data []byte, known []string) (map[string]json.RawMessage, error) {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	for _, k := range known {
		delete(all, k)
	}
	if len(all) == 0 {
		return nil, nil
	}
	return all, nil
}

func marshalWithExtra(v any, extra map[string]json.RawMessage) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if len(extra) == 0 {
		return data, nil
	}
	var merged map[string]json.RawMessage
	if err := json.Unmarshal(data, &merged); err != nil {
		return nil, err
	}
	for k, raw := range extra {
		if _, clash := merged[k]; clash {
			return nil, errors.New("extra field shadows known field " + k)
		}
		merged[k] = raw
	}
	return json.Marshal(merged)
}
