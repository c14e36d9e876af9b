package auth

import (
	"net/http"
	"strings"
)

// Policy determines required roles by request.
type Policy struct {
	ExemptPaths    map[string]struct{}
	ExemptPrefixes []string
}

// NewDefaultPolicy builds a default policy with exemptions.
func NewDefaultPolicy(exemptPaths []string, exemptPrefixes []string) Policy {
	set := make(map[string]struct{}, len(exemptPaths))
	for _, path := range exemptPaths {
		set[path] = struct{}{}
	}
	return Policy{ExemptPaths: set, ExemptPrefixes: exemptPrefixes}
}

// IsExempt returns true when a request should skip auth/RBAC.
func (p Policy) IsExempt(r *http.Request) bool {
	if r == nil {
		return true
	}
	if _, ok := p.ExemptPaths[r.URL.Path]; ok {
		return true
	}
	for _, prefix := range p.ExemptPrefixes {
		if strings.HasPrefix(r.URL.Path, prefix) {
			return true
		}
	}
	return false
}

// RequiredRole resolves required role for the request.
// Reads need viewer, changes need designer, deletes need admin.
func (p Policy) RequiredRole(r *http.Request) (Role, bool) {
	if r == nil {
		return "", false
	}
	path := r.URL.Path
	method := r.Method

	switch {
	case strings.Contains(path, "/simulation/calculate"):
		return RoleDesigner, true
	case strings.Contains(path, "/simulation/run"):
		return RoleDesigner, true
	case strings.Contains(path, "/simulation/optimal-hoists"):
		return RoleViewer, true
	case strings.Contains(path, "/documents/"):
		if method == http.MethodGet {
			return RoleViewer, true
		}
		return RoleDesigner, true
	case strings.HasPrefix(path, "/api/v1/simulation-results/"):
		return RoleViewer, true
	case path == "/api/v1/equipment-types":
		return RoleViewer, true
	}

	if strings.HasPrefix(path, "/api/") {
		switch method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			return RoleViewer, true
		case http.MethodDelete:
			return RoleAdmin, true
		default:
			return RoleDesigner, true
		}
	}
	return "", false
}
