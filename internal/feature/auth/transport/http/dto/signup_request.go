package dto

// SignupReq は/signupエンドポイントのリクエストボディを表します。
// パスワード長の詳細な検証はusecase側で行います。
type SignupReq struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,max=72"`
}
