package domain

import "time"

// User is the account identity returned by login.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// League is a league the logged-in account belongs to.
type League struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	CreationDate time.Time `json:"creationDate"`
}

// Clone returns an independent copy of the league.
func (l League) Clone() League {
	return l
}

// Setting is a small persisted key/value pair.
type Setting struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// SettingLeagueID pins a storage location to a single league.
const SettingLeagueID = "league_id"

// ChatItem is a single league chat message.
type ChatItem struct {
	ID       string    `json:"id"`
	Date     time.Time `json:"date"`
	UserID   string    `json:"userId"`
	Username string    `json:"username"`
	Message  string    `json:"message"`
}

// Clone returns an independent copy of the chat item.
func (c ChatItem) Clone() ChatItem {
	return c
}
