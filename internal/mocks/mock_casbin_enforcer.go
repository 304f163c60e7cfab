package mocks

import (
	"regexp"
	"strings"
	"sync"

	"github.com/Sasmit28/CivicApp/domain"
)

// MockCasbinEnforcer implements the CasbinEnforcer interface for testing
type MockCasbinEnforcer struct {
	AddPolicyFunc    func(params ...interface{}) (bool, error)
	RemovePolicyFunc func(params ...interface{}) (bool, error)
	EnforceFunc      func(rvals ...interface{}) (bool, error)
	GetPolicyFunc    func() ([][]string, error)
	SavePolicyFunc   func() error

	mu       sync.Mutex
	policies [][]string
}

// Compile-time interface compliance verification
var _ domain.CasbinEnforcer = (*MockCasbinEnforcer)(nil)

// NewMockCasbinEnforcer creates a new MockCasbinEnforcer with no policies
func NewMockCasbinEnforcer() *MockCasbinEnforcer {
	return &MockCasbinEnforcer{}
}

func toStrings(params []interface{}) []string {
	out := make([]string, len(params))
	for i, param := range params {
		if str, ok := param.(string); ok {
			out[i] = str
		}
	}
	return out
}

func samePolicy(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// AddPolicy adds a new policy rule; duplicates are reported as not added
func (m *MockCasbinEnforcer) AddPolicy(params ...interface{}) (bool, error) {
	if m.AddPolicyFunc != nil {
		return m.AddPolicyFunc(params...)
	}
	if len(params) < 3 {
		return false, nil
	}
	policy := toStrings(params)

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.policies {
		if samePolicy(p, policy) {
			return false, nil
		}
	}
	m.policies = append(m.policies, policy)
	return true, nil
}

// RemovePolicy removes a policy rule
func (m *MockCasbinEnforcer) RemovePolicy(params ...interface{}) (bool, error) {
	if m.RemovePolicyFunc != nil {
		return m.RemovePolicyFunc(params...)
	}
	target := toStrings(params)

	m.mu.Lock()
	defer m.mu.Unlock()
	for i, p := range m.policies {
		if samePolicy(p, target) {
			m.policies = append(m.policies[:i], m.policies[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// Enforce matches subject exactly, object with a trailing "*" wildcard and
// action as a regular expression, like the rbac_model.conf matcher
func (m *MockCasbinEnforcer) Enforce(rvals ...interface{}) (bool, error) {
	if m.EnforceFunc != nil {
		return m.EnforceFunc(rvals...)
	}
	if len(rvals) < 3 {
		return false, nil
	}
	req := toStrings(rvals)

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.policies {
		if len(p) < 3 || p[0] != req[0] {
			continue
		}
		obj := p[1]
		if i := strings.Index(obj, "*"); i >= 0 {
			if !strings.HasPrefix(req[1], obj[:i]) {
				continue
			}
		} else if obj != req[1] {
			continue
		}
		if ok, _ := regexp.MatchString(p[2], req[2]); ok {
			return true, nil
		}
	}
	return false, nil
}

// GetPolicy returns all policies
func (m *MockCasbinEnforcer) GetPolicy() ([][]string, error) {
	if m.GetPolicyFunc != nil {
		return m.GetPolicyFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([][]string, len(m.policies))
	for i, policy := range m.policies {
		result[i] = append([]string(nil), policy...)
	}
	return result, nil
}

// SavePolicy saves all policies
func (m *MockCasbinEnforcer) SavePolicy() error {
	if m.SavePolicyFunc != nil {
		return m.SavePolicyFunc()
	}
	return nil
}

// SetPolicies sets the internal policies (test helper)
func (m *MockCasbinEnforcer) SetPolicies(policies [][]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.policies = make([][]string, len(policies))
	for i, policy := range policies {
		m.policies[i] = append([]string(nil), policy...)
	}
}
