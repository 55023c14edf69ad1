package tcg

// Game is one supported trading-card game. Fetched rarely; the games list
// is cached for 7 days.
type Game struct {
	CategoryID  int    `json:"categoryId"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Popularity  int    `json:"popularity"`
	IsDirect    bool   `json:"isDirect"`
	IsScannable bool   `json:"isScannable"`
	ModifiedOn  string `json:"modifiedOn"`
}

// Expansion is a themed sub-release within a game.
type Expansion struct {
	GroupID      int    `json:"groupId"`
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"`
	CategoryID   int    `json:"categoryId"`
}

// ExtendedData is a game-specific free-form attribute attached to a card
// (card type, HP, color, ...). The schema is open: field names vary per game.
type ExtendedData struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Value       string `json:"value"`
}

// SKU is a purchasable condition/printing/language variant of a card.
type SKU struct {
	SkuID        int    `json:"skuId"`
	CondName     string `json:"condName"`
	PrintingName string `json:"printingName"`
	LanguageName string `json:"languageName"`
}

// Card is a single card within an expansion.
type Card struct {
	ProductID             int            `json:"productId"`
	Name                  string         `json:"name"`
	CleanName             string         `json:"cleanName"`
	Number                string         `json:"number"`
	Rarity                string         `json:"rarity"`
	Image                 string         `json:"image"`
	CategoryID            int            `json:"categoryId"`
	GroupID               int            `json:"groupId"`
	ExpansionName         string         `json:"expansionName"`
	ExpansionAbbreviation string         `json:"expansionAbbreviation"`
	URL                   string         `json:"url"`
	ExtendedData          []ExtendedData `json:"extendedData"`
	SKUs                  []SKU          `json:"skus"`
}

// DisplayName returns the clean name when present, falling back to the raw
// name. Free-text search and name sorting both go through this.
func (c *Card) DisplayName() string {
	if c.CleanName != "" {
		return c.CleanName
	}
	return c.Name
}

// ExtendedValue returns the value of the named extended-data field and
// whether the card carries that field at all.
func (c *Card) ExtendedValue(field string) (string, bool) {
	for _, ext := range c.ExtendedData {
		if ext.Name == field {
			return ext.Value, true
		}
	}
	return "", false
}

// ExpansionPage is one page of a game's expansions.
type ExpansionPage struct {
	Expansions []Expansion `json:"expansions"`
	TotalPages int         `json:"totalPages"`
}

// CardPage is one page of an expansion's cards.
type CardPage struct {
	Cards      []Card `json:"cards"`
	TotalPages int    `json:"totalPages"`
}

// Usage is the provider's live quota snapshot. Never cached.
type Usage struct {
	Current   UsageWindow `json:"current"`
	Limits    UsageLimit  `json:"limits"`
	Remaining UsageLimit  `json:"remaining"`
}

// UsageWindow holds call counts per accounting window.
type UsageWindow struct {
	Daily   int `json:"daily"`
	Monthly int `json:"monthly"`
}

// UsageLimit holds a call allowance and its period.
type UsageLimit struct {
	Calls  int    `json:"calls"`
	Period string `json:"period"`
}

// UserProfile describes the API account behind the configured key.
type UserProfile struct {
	User struct {
		ID        string `json:"id"`
		Email     string `json:"email"`
		Name      string `json:"name"`
		Plan      string `json:"plan"`
		CreatedAt string `json:"createdAt"`
	} `json:"user"`
	Subscription struct {
		Plan   string     `json:"plan"`
		Limits UsageLimit `json:"limits"`
	} `json:"subscription"`
}

// pagination is the provider's common pagination block.
type pagination struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
}

// Response envelopes. The provider wraps every payload in
// {success: bool, data: {...}}.

type gamesResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Games []Game `json:"games"`
	} `json:"data"`
}

type expansionsResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Expansions []Expansion `json:"expansions"`
		Pagination pagination  `json:"pagination"`
	} `json:"data"`
}

type cardsResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Cards      []Card     `json:"cards"`
		Pagination pagination `json:"pagination"`
	} `json:"data"`
}

type usageResponse struct {
	Success bool  `json:"success"`
	Data    Usage `json:"data"`
}

type profileResponse struct {
	Success bool        `json:"success"`
	Data    UserProfile `json:"data"`
}

type healthResponse struct {
	Success bool `json:"success"`
}
