package models

// User represents an user account held by the remote user service.
// Instances are snapshots of a remote fetch and are never mutated in place.
type User struct {
	UserID     int    `json:"userId"`
	UserName   string `json:"userName"`
	PlayerName string `json:"playerName"`
	Password   string `json:"password,omitempty"`
	Level      int    `json:"level"`
	Avatar     int    `json:"avatar"`
	CurExp     int    `json:"curExp"`
	MaxExp     int    `json:"maxExp"`
	Rank       int    `json:"rank"`
	VipLevel   int    `json:"vipLevel"`
	Wins       int    `json:"wins"`
	Kills      int    `json:"kills"`
	Deaths     int    `json:"deaths"`
	Assists    int    `json:"assists"`
}

// IsVip reports whether the user has a VIP tier.
func (u *User) IsVip() bool {
	return u.VipLevel != 0
}
