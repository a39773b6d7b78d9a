package dto

// UserInfoResponse is the body of a user.getinfo call.
type UserInfoResponse struct {
	User *JSONUser `json:"user"`
}

// JSONUser holds the user.getinfo fields used for validation.
type JSONUser struct {
	Name      string `json:"name"`
	RealName  string `json:"realname"`
	URL       string `json:"url"`
	Country   string `json:"country"`
	PlayCount Count  `json:"playcount"`
}
