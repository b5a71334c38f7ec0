package authz

import "context"

// Principal is the authenticated caller as delivered by the auth middleware.
type Principal struct {
	EmployeeID string
	TenantID   string
	Role       string
}

// Scope narrows a query to a set of employees. All=true means tenant-wide;
// otherwise only the listed employee ids match. An empty list matches nothing.
type Scope struct {
	All         bool
	EmployeeIDs []string
}

// Directory is the read-only slice of the employee directory scoping needs.
type Directory interface {
	DirectReportIDs(ctx context.Context, tenantID, managerID string) ([]string, error)
	TeamMemberIDs(ctx context.Context, tenantID, employeeID string) ([]string, error)
}

type ScopeResolver struct {
	directory Directory
}

func NewScopeResolver(directory Directory) *ScopeResolver {
	return &ScopeResolver{directory: directory}
}

// ApprovalScope decides which employees' pending requests the principal may
// act on: Admin/HR tenant-wide, everyone else their direct reports. Zero
// reports is a valid empty scope, not an error.
func (r *ScopeResolver) ApprovalScope(ctx context.Context, p Principal) (Scope, error) {
	if IsElevated(p.Role) {
		return Scope{All: true}, nil
	}

	ids, err := r.directory.DirectReportIDs(ctx, p.TenantID, p.EmployeeID)
	if err != nil {
		return Scope{}, err
	}
	return Scope{EmployeeIDs: ids}, nil
}

// CalendarScope decides whose approved leave the principal may see. The rule
// is team membership, deliberately different from the reporting chain used
// for approvals. No team means an empty scope.
func (r *ScopeResolver) CalendarScope(ctx context.Context, p Principal) (Scope, error) {
	if IsElevated(p.Role) {
		return Scope{All: true}, nil
	}

	ids, err := r.directory.TeamMemberIDs(ctx, p.TenantID, p.EmployeeID)
	if err != nil {
		return Scope{}, err
	}
	return Scope{EmployeeIDs: ids}, nil
}
