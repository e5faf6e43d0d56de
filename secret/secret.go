// Package secret implements the scoped secret vault (spec.md §4.10): CRUD
// over encrypted secrets scoped by tenant/agent/user, validated with
// go-playground/validator struct tags and routed through the Context-Aware
// Executor so vault access is replay-safe from inside a workflow.
package secret

// Record is a full stored secret, returned by Create/GetByID/Update, per
// spec.md §4.10 ("getById returns full record").
type Record struct {
	ID             string         `json:"id"`
	Key            string         `json:"key"`
	Value          string         `json:"value,omitempty"`
	AdditionalData map[string]any `json:"additionalData,omitempty"`
	TenantID       string         `json:"tenantId,omitempty"`
	AgentName      string         `json:"agentName,omitempty"`
	UserID         string         `json:"userId,omitempty"`
}

// FetchResult is the decrypted-fetch-by-key response shape, per spec.md
// §4.10 ("Fetch-by-key returns only {value, additionalData}").
type FetchResult struct {
	Value          string         `json:"value"`
	AdditionalData map[string]any `json:"additionalData,omitempty"`
}

// writeRequest is validated before every Create/Update call, per spec.md
// §4.10 ("key ≤ 512 chars, non-empty on write").
type writeRequest struct {
	TenantID       string         `json:"tenantId,omitempty"`
	AgentName      string         `json:"agentName,omitempty"`
	UserID         string         `json:"userId,omitempty"`
	Key            string         `json:"key" validate:"required,max=512"`
	Value          string         `json:"value" validate:"required"`
	AdditionalData map[string]any `json:"additionalData,omitempty"`
}

type scopeRequest struct {
	TenantID, AgentName, UserID string
}

type fetchRequest struct {
	scopeRequest
	Key string
}

type getByIDRequest struct {
	scopeRequest
	ID string
}

type deleteRequest struct {
	scopeRequest
	ID string
}

type updateRequest struct {
	scopeRequest
	ID             string
	Value          string         `validate:"required"`
	AdditionalData map[string]any
}
