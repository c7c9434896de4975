package dto

import "github.com/nexiq/storefront-api/internal/domain"

// SignInResponse answers PUT /user/:email.
type SignInResponse struct {
	Result *domain.UpsertResult `json:"result"`
	Token  string               `json:"token"`
}

// AdminStatusResponse answers GET /user/admin/:email.
type AdminStatusResponse struct {
	Admin bool `json:"admin"`
}
