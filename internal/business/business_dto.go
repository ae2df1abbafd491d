package business

type BusinessResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Industry string `json:"industry"`
	IsActive bool   `json:"is_active"`
}

type CreateBusinessRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=150"`
	Industry string `json:"industry" binding:"max=100"`
}

type UpdateBusinessRequest struct {
	Name     string `json:"name"`
	Industry string `json:"industry"`
	IsActive *bool  `json:"is_active"`
}
