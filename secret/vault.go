package secret

import (
	"context"

	"github.com/go-playground/validator/v10"

	"github.com/xiansai/agent-sdk-go/sdkerr"
)

var validate = validator.New()

// Vault is the entry point to the scoped secret CRUD surface, per spec.md
// §4.10. Construct one per Agent and call Scope to narrow to a
// tenant/agent/user before issuing an operation.
type Vault struct {
	backend Backend
}

// NewVault constructs a Vault backed by backend (typically an
// ExecutingBackend wrapping a ServerBackend).
func NewVault(backend Backend) *Vault {
	return &Vault{backend: backend}
}

// Scope starts a new, empty scope. Chain TenantScope/AgentScope/UserScope to
// narrow it before issuing an operation.
func (v *Vault) Scope() *ScopeBuilder {
	return &ScopeBuilder{vault: v}
}

// ScopeBuilder narrows a Vault operation to a tenant/agent/user triple, per
// spec.md §4.10 (".tenantScope(t?).agentScope(a?).userScope(u?)").
type ScopeBuilder struct {
	vault *Vault
	scope scopeRequest
}

// TenantScope narrows the scope to tenant t.
func (b *ScopeBuilder) TenantScope(t string) *ScopeBuilder { b.scope.TenantID = t; return b }

// AgentScope narrows the scope to agent a.
func (b *ScopeBuilder) AgentScope(a string) *ScopeBuilder { b.scope.AgentName = a; return b }

// UserScope narrows the scope to user u.
func (b *ScopeBuilder) UserScope(u string) *ScopeBuilder { b.scope.UserID = u; return b }

// Create stores a new secret under the current scope. Returns a Conflict
// error if key already exists within the scope, per spec.md §4.10.
func (b *ScopeBuilder) Create(ctx context.Context, key, value string, additionalData map[string]any) (Record, error) {
	req := writeRequest{
		TenantID: b.scope.TenantID, AgentName: b.scope.AgentName, UserID: b.scope.UserID,
		Key: key, Value: value, AdditionalData: additionalData,
	}
	if err := validate.Struct(req); err != nil {
		return Record{}, sdkerr.Validationf("secret.Create", "invalid secret write request: %v", err)
	}
	return b.vault.backend.create(ctx, req)
}

// FetchByKey returns only {value, additionalData} for key within the
// current scope, per spec.md §4.10. Returns (nil, nil) when not found.
func (b *ScopeBuilder) FetchByKey(ctx context.Context, key string) (*FetchResult, error) {
	return b.vault.backend.fetchByKey(ctx, fetchRequest{scopeRequest: b.scope, Key: key})
}

// List returns every secret within the current scope, value omitted, per
// spec.md §4.10.
func (b *ScopeBuilder) List(ctx context.Context) ([]Record, error) {
	return b.vault.backend.list(ctx, b.scope)
}

// GetByID returns the full record for id within the current scope, per
// spec.md §4.10. Returns (nil, nil) when not found.
func (b *ScopeBuilder) GetByID(ctx context.Context, id string) (*Record, error) {
	return b.vault.backend.getByID(ctx, getByIDRequest{scopeRequest: b.scope, ID: id})
}

// Update replaces the value/additionalData of the secret id within the
// current scope.
func (b *ScopeBuilder) Update(ctx context.Context, id, value string, additionalData map[string]any) (Record, error) {
	req := updateRequest{scopeRequest: b.scope, ID: id, Value: value, AdditionalData: additionalData}
	if err := validate.Struct(req); err != nil {
		return Record{}, sdkerr.Validationf("secret.Update", "invalid secret write request: %v", err)
	}
	return b.vault.backend.update(ctx, req)
}

// Delete removes the secret id within the current scope. Returns true on
// success, false on not-found, per spec.md §4.10.
func (b *ScopeBuilder) Delete(ctx context.Context, id string) (bool, error) {
	return b.vault.backend.delete(ctx, deleteRequest{scopeRequest: b.scope, ID: id})
}
