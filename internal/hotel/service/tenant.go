package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/smallbiznis/innledger/internal/auth/domain"
	"github.com/smallbiznis/innledger/internal/hotel/domain"
)

type tenantResolver struct {
	repo domain.Repository
}

// NewTenantResolver lets the auth service find the hotel behind an account
// without depending on the hotel service.
func NewTenantResolver(repo domain.Repository) authdomain.TenantResolver {
	return &tenantResolver{repo: repo}
}

func (r *tenantResolver) ResolveTenant(ctx context.Context, userID snowflake.ID) (authdomain.Tenant, error) {
	hotel, err := r.repo.FindByUserID(ctx, userID)
	if err != nil {
		return authdomain.Tenant{}, err
	}
	if hotel == nil {
		return authdomain.Tenant{}, authdomain.ErrAccountDisabled
	}
	return authdomain.Tenant{HotelID: hotel.ID, IsActive: hotel.IsActive}, nil
}
