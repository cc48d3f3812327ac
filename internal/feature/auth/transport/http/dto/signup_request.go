// Package dto はauthフィーチャーのHTTPトランスポート層のデータ転送オブジェクトを定義します。
package dto

// SignupReq は/signupエンドポイントのリクエストボディを表します。
// Ginのバインディングタグでバリデーションを行います（必須、メール形式、パスワード長）。
type SignupReq struct {
	Username string `json:"username" binding:"required,min=3"`
	Email    string `json:"email" binding:"required,email"`
	FullName string `json:"full_name" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}
