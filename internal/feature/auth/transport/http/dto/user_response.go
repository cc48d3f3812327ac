package dto

import "broker_backend/internal/feature/auth/domain/entity"

// UserItem は/meエンドポイントのレスポンスDTOです。
// パスワードハッシュなどの内部フィールドは含みません。
type UserItem struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Disabled bool   `json:"disabled"`
}

// UserFromEntity converts a domain user into its public API representation.
func UserFromEntity(u *entity.User) UserItem {
	return UserItem{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		FullName: u.FullName,
		Disabled: u.Disabled,
	}
}
