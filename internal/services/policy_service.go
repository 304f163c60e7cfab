package services

import (
	"github.com/Sasmit28/CivicApp/domain"
	"github.com/casbin/casbin/v2"
)

// Role names as stored on citizens; casbin subjects carry a "role_" prefix
const (
	RoleCitizen = "citizen"
	RoleAdmin   = "admin"
)

// CasbinSubject converts a citizen role to its casbin subject
func CasbinSubject(role string) string {
	return "role_" + role
}

// DefaultPolicies are seeded when the policy store is empty
var DefaultPolicies = [][]string{
	{"role_admin", "/admin/*", "(GET|POST|DELETE)"},
	{"role_admin", "/reports*", "(GET|POST)"},
	{"role_admin", "/auth/logout", "POST"},
	{"role_citizen", "/reports*", "(GET|POST)"},
	{"role_citizen", "/auth/logout", "POST"},
}

// CasbinEnforcerWrapper wraps the real Casbin enforcer to implement our interface
type CasbinEnforcerWrapper struct {
	enforcer *casbin.Enforcer
}

// NewCasbinEnforcerWrapper creates a wrapper for the real Casbin enforcer
func NewCasbinEnforcerWrapper(enforcer *casbin.Enforcer) domain.CasbinEnforcer {
	return &CasbinEnforcerWrapper{enforcer: enforcer}
}

func (w *CasbinEnforcerWrapper) AddPolicy(params ...interface{}) (bool, error) {
	return w.enforcer.AddPolicy(params...)
}

func (w *CasbinEnforcerWrapper) RemovePolicy(params ...interface{}) (bool, error) {
	return w.enforcer.RemovePolicy(params...)
}

func (w *CasbinEnforcerWrapper) Enforce(rvals ...interface{}) (bool, error) {
	return w.enforcer.Enforce(rvals...)
}

func (w *CasbinEnforcerWrapper) GetPolicy() ([][]string, error) {
	return w.enforcer.GetPolicy()
}

func (w *CasbinEnforcerWrapper) SavePolicy() error {
	return w.enforcer.SavePolicy()
}

// PolicyServiceImpl implements domain.PolicyService using Casbin
type PolicyServiceImpl struct {
	enforcer domain.CasbinEnforcer
}

// NewPolicyService creates a new policy service
func NewPolicyService(enforcer *casbin.Enforcer) *PolicyServiceImpl {
	return &PolicyServiceImpl{
		enforcer: NewCasbinEnforcerWrapper(enforcer),
	}
}

// NewPolicyServiceWithEnforcer creates a new policy service with a CasbinEnforcer interface (for testing)
func NewPolicyServiceWithEnforcer(enforcer domain.CasbinEnforcer) *PolicyServiceImpl {
	return &PolicyServiceImpl{
		enforcer: enforcer,
	}
}

// AddPolicy implements domain.PolicyService
func (p *PolicyServiceImpl) AddPolicy(role, resource, action string) error {
	_, err := p.enforcer.AddPolicy(role, resource, action)
	if err != nil {
		return err
	}
	return p.enforcer.SavePolicy()
}

// RemovePolicy implements domain.PolicyService
func (p *PolicyServiceImpl) RemovePolicy(role, resource, action string) error {
	_, err := p.enforcer.RemovePolicy(role, resource, action)
	if err != nil {
		return err
	}
	return p.enforcer.SavePolicy()
}

// CheckPermission implements domain.PolicyService
func (p *PolicyServiceImpl) CheckPermission(role, resource, action string) (bool, error) {
	return p.enforcer.Enforce(role, resource, action)
}

// GetPolicies implements domain.PolicyService
func (p *PolicyServiceImpl) GetPolicies() [][]string {
	policies, _ := p.enforcer.GetPolicy()
	return policies
}

// SeedDefaults installs DefaultPolicies when no policy exists yet.
// It returns true when policies were added.
func (p *PolicyServiceImpl) SeedDefaults() (bool, error) {
	existing, err := p.enforcer.GetPolicy()
	if err != nil {
		return false, err
	}
	if len(existing) > 0 {
		return false, nil
	}
	for _, rule := range DefaultPolicies {
		if _, err := p.enforcer.AddPolicy(rule[0], rule[1], rule[2]); err != nil {
			return false, err
		}
	}
	return true, p.enforcer.SavePolicy()
}

var _ domain.PolicyService = (*PolicyServiceImpl)(nil)
