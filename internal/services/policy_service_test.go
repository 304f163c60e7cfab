package services

import (
	"errors"
	"testing"

	"github.com/Sasmit28/CivicApp/internal/mocks"
)

// createPolicyServiceForTest creates a PolicyService with mock Casbin enforcer
func createPolicyServiceForTest(t *testing.T) (*PolicyServiceImpl, *mocks.MockCasbinEnforcer) {
	t.Helper()

	enforcer := mocks.NewMockCasbinEnforcer()
	return NewPolicyServiceWithEnforcer(enforcer), enforcer
}

func TestPolicyServiceImpl_AddPolicy(t *testing.T) {
	tests := []struct {
		name               string
		setupMock          func(*mocks.MockCasbinEnforcer)
		expectedError      bool
		expectedSaveCalled bool
	}{
		{
			name:               "successful policy addition",
			setupMock:          func(enforcer *mocks.MockCasbinEnforcer) {},
			expectedSaveCalled: true,
		},
		{
			name: "enforcer error skips save",
			setupMock: func(enforcer *mocks.MockCasbinEnforcer) {
				enforcer.AddPolicyFunc = func(params ...interface{}) (bool, error) {
					return false, errors.New("adapter unavailable")
				}
			},
			expectedError: true,
		},
		{
			name: "save error is returned",
			setupMock: func(enforcer *mocks.MockCasbinEnforcer) {
				enforcer.SavePolicyFunc = func() error {
					return errors.New("write failed")
				}
			},
			expectedError:      true,
			expectedSaveCalled: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, enforcer := createPolicyServiceForTest(t)
			tt.setupMock(enforcer)

			saveCalled := false
			origSave := enforcer.SavePolicyFunc
			enforcer.SavePolicyFunc = func() error {
				saveCalled = true
				if origSave != nil {
					return origSave()
				}
				return nil
			}

			err := svc.AddPolicy("role_citizen", "/reports*", "GET")
			if tt.expectedError && err == nil {
				t.Fatal("expected error, got nil")
			}
			if !tt.expectedError && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if saveCalled != tt.expectedSaveCalled {
				t.Errorf("SavePolicy called = %v, want %v", saveCalled, tt.expectedSaveCalled)
			}
		})
	}
}

func TestPolicyServiceImpl_RemovePolicy(t *testing.T) {
	svc, enforcer := createPolicyServiceForTest(t)
	enforcer.SetPolicies([][]string{
		{"role_citizen", "/reports*", "(GET|POST)"},
		{"role_admin", "/admin/*", "(GET|POST|DELETE)"},
	})

	if err := svc.RemovePolicy("role_citizen", "/reports*", "(GET|POST)"); err != nil {
		t.Fatalf("RemovePolicy() error = %v", err)
	}

	policies := svc.GetPolicies()
	if len(policies) != 1 || policies[0][0] != "role_admin" {
		t.Errorf("GetPolicies() = %v, want only the admin rule", policies)
	}
}

func TestPolicyServiceImpl_CheckPermission(t *testing.T) {
	svc, enforcer := createPolicyServiceForTest(t)
	enforcer.SetPolicies(DefaultPolicies)

	tests := []struct {
		name     string
		role     string
		resource string
		action   string
		want     bool
	}{
		{"citizen lists reports", CasbinSubject(RoleCitizen), "/reports", "GET", true},
		{"citizen submits report", CasbinSubject(RoleCitizen), "/reports", "POST", true},
		{"citizen reads counts", CasbinSubject(RoleCitizen), "/reports/counts", "GET", true},
		{"citizen cannot delete reports", CasbinSubject(RoleCitizen), "/reports", "DELETE", false},
		{"citizen cannot administer policies", CasbinSubject(RoleCitizen), "/admin/policies", "GET", false},
		{"admin administers policies", CasbinSubject(RoleAdmin), "/admin/policies", "DELETE", true},
		{"admin logs out", CasbinSubject(RoleAdmin), "/auth/logout", "POST", true},
		{"unknown role denied", "role_guest", "/reports", "GET", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.CheckPermission(tt.role, tt.resource, tt.action)
			if err != nil {
				t.Fatalf("CheckPermission() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("CheckPermission(%s, %s, %s) = %v, want %v", tt.role, tt.resource, tt.action, got, tt.want)
			}
		})
	}
}

func TestPolicyServiceImpl_SeedDefaults(t *testing.T) {
	t.Run("empty store is seeded", func(t *testing.T) {
		svc, _ := createPolicyServiceForTest(t)

		seeded, err := svc.SeedDefaults()
		if err != nil {
			t.Fatalf("SeedDefaults() error = %v", err)
		}
		if !seeded {
			t.Error("SeedDefaults() = false, want true")
		}
		if got := len(svc.GetPolicies()); got != len(DefaultPolicies) {
			t.Errorf("policy count = %d, want %d", got, len(DefaultPolicies))
		}
	})

	t.Run("existing policies are kept", func(t *testing.T) {
		svc, enforcer := createPolicyServiceForTest(t)
		enforcer.SetPolicies([][]string{{"role_admin", "/admin/*", "GET"}})

		seeded, err := svc.SeedDefaults()
		if err != nil {
			t.Fatalf("SeedDefaults() error = %v", err)
		}
		if seeded {
			t.Error("SeedDefaults() = true, want false")
		}
		if got := len(svc.GetPolicies()); got != 1 {
			t.Errorf("policy count = %d, want 1", got)
		}
	})
}
