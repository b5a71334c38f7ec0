package authz

import (
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

// Roles are a closed set. The original system repeated ad-hoc role-string
// arrays per route; here every route goes through one casbin enforcement of a
// fixed role -> action table.
const (
	RoleAdmin    = "Admin"
	RoleHR       = "HR"
	RoleManager  = "Manager"
	RoleEmployee = "Employee"
)

const modelText = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
`

// policyRows is the full permission table. Resources: leave, employee,
// entitlement, tenant. Actions: create, read, approve, calendar, manage.
var policyRows = [][]string{
	{RoleEmployee, "leave", "create"},
	{RoleEmployee, "leave", "read"},
	{RoleEmployee, "leave", "cancel"},
	{RoleEmployee, "leave", "calendar"},
	{RoleEmployee, "employee", "read"},
	{RoleEmployee, "entitlement", "read"},

	{RoleManager, "leave", "approve"},

	{RoleHR, "leave", "approve"},
	{RoleHR, "employee", "create"},

	{RoleAdmin, "leave", "approve"},
	{RoleAdmin, "employee", "create"},
	{RoleAdmin, "tenant", "manage"},
}

// groupingRows let the wider roles inherit the employee baseline.
var groupingRows = [][]string{
	{RoleManager, RoleEmployee},
	{RoleHR, RoleEmployee},
	{RoleAdmin, RoleEmployee},
}

type Policy struct {
	enforcer *casbin.Enforcer
}

func NewPolicy() (*Policy, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}

	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, err
	}

	for _, g := range groupingRows {
		if _, err := e.AddGroupingPolicy(g[0], g[1]); err != nil {
			return nil, err
		}
	}
	for _, p := range policyRows {
		if _, err := e.AddPolicy(p[0], p[1], p[2]); err != nil {
			return nil, err
		}
	}

	return &Policy{enforcer: e}, nil
}

func (p *Policy) Enforce(role, resource, action string) (bool, error) {
	return p.enforcer.Enforce(role, resource, action)
}

// IsElevated reports whether the role sees tenant-wide data (Admin/HR).
func IsElevated(role string) bool {
	return role == RoleAdmin || role == RoleHR
}
