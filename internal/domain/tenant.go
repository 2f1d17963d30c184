package domain

import "time"

// Tenant represents one onboarded store whose data is mirrored independently
// of all others. It owns every mirrored entity through its id.
type Tenant struct {
	ID           int64
	StoreName    string
	StoreDomain  string
	AccessToken  string
	IsActive     bool
	CreatedAt    time.Time
	LastSyncedAt *time.Time
}

// Credential carries what one admin API call needs for a tenant.
type Credential struct {
	ShopDomain  string
	AccessToken string
}

// Credential returns the tenant's admin API credential.
func (t *Tenant) Credential() Credential {
	return Credential{
		ShopDomain:  t.StoreDomain,
		AccessToken: t.AccessToken,
	}
}
