package model

import "testing"

func TestParseRole(t *testing.T) {
	tests := []struct {
		input string
		want  Role
		ok    bool
	}{
		{"Admin", RoleAdmin, true},
		{"admin", RoleAdmin, true},
		{"LOGISTICSOFFICER", RoleLogisticsOfficer, true},
		{" systemadmin ", RoleSystemAdmin, true},
		{"user", RoleUser, true},
		// Unknown roles fail-closed.
		{"manager", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseRole(tt.input)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseRole(%q) = %q, %v, want %q, %v", tt.input, got, ok, tt.want, tt.ok)
		}
	}
}

func TestRoleCapabilities(t *testing.T) {
	tests := []struct {
		role                                   Role
		approve, fulfill, repair, administrate bool
	}{
		{RoleUser, false, false, false, false},
		{RoleAdmin, true, false, false, false},
		{RoleLogisticsOfficer, false, true, true, false},
		{RoleSystemAdmin, true, true, true, true},
		{"logisticsofficer", false, true, true, false},
		{"unknown", false, false, false, false},
	}

	for _, tt := range tests {
		if got := tt.role.CanApprove(); got != tt.approve {
			t.Errorf("%q.CanApprove() = %v, want %v", tt.role, got, tt.approve)
		}
		if got := tt.role.CanFulfill(); got != tt.fulfill {
			t.Errorf("%q.CanFulfill() = %v, want %v", tt.role, got, tt.fulfill)
		}
		if got := tt.role.CanExecuteRepairs(); got != tt.repair {
			t.Errorf("%q.CanExecuteRepairs() = %v, want %v", tt.role, got, tt.repair)
		}
		if got := tt.role.IsAdministrative(); got != tt.administrate {
			t.Errorf("%q.IsAdministrative() = %v, want %v", tt.role, got, tt.administrate)
		}
	}
}

func TestRolesWith(t *testing.T) {
	got := RolesWith(Role.CanApprove)
	if len(got) != 2 || got[0] != RoleAdmin || got[1] != RoleSystemAdmin {
		t.Errorf("RolesWith(CanApprove) = %v", got)
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		password string
		wantErr  bool
	}{
		{"", true},
		{"short", true},
		{"1234567", true},
		{"12345678", false},
		{"a-valid-password", false},
	}

	for _, tt := range tests {
		err := ValidatePassword(tt.password)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidatePassword(%q) error = %v, wantErr %v", tt.password, err, tt.wantErr)
		}
	}
}
