package kickbase

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Ext      bool   `json:"ext"`
}

type loginResponse struct {
	Token   string           `json:"token"`
	User    userResponse     `json:"user"`
	Leagues []leagueResponse `json:"leagues"`
}

type userResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type leagueResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	CreationDate string `json:"creationDate"`
}

type feedResponse struct {
	Items []feedItemResponse `json:"items"`
}

type feedItemResponse struct {
	ID   string         `json:"id"`
	Date string         `json:"date"`
	Type int            `json:"type"`
	Meta map[string]any `json:"meta"`
}

type chatResponse struct {
	Items         []chatItemResponse `json:"items"`
	NextPageToken string             `json:"nextPageToken"`
}

type chatItemResponse struct {
	ID       string `json:"id"`
	Date     string `json:"date"`
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
	Message  string `json:"message"`
}

type marketResponse struct {
	Players []marketPlayerResponse `json:"players"`
}

type marketPlayerResponse struct {
	ID          string          `json:"id"`
	FirstName   string          `json:"firstName"`
	LastName    string          `json:"lastName"`
	TeamID      string          `json:"teamId"`
	Position    int             `json:"position"`
	Status      int             `json:"status"`
	Price       int64           `json:"price"`
	MarketValue int64           `json:"marketValue"`
	UserID      string          `json:"userId"`
	Expiry      int64           `json:"expiry"`
	Offers      []offerResponse `json:"offers"`
}

type offerResponse struct {
	ID             string `json:"id"`
	Price          int64  `json:"price"`
	Date           string `json:"date"`
	ValidUntilDate string `json:"validUntilDate"`
	UserID         string `json:"userId"`
	UserName       string `json:"userName"`
}
