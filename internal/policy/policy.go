// Package policy decides what each role may see and do. Grants are a static
// role → permission table built once at startup and never mutated.
package policy

import (
	"github.com/opsdesk/admin-api/internal/domain"
)

// DefaultGrants is the role → permission table of the admin panel
var DefaultGrants = map[domain.Role][]domain.Permission{
	// Manager - full access to everything
	domain.RoleManager: domain.AllPermissions,

	// Content writer - content management, read-only clients and projects
	domain.RoleContentWriter: {
		domain.PermViewDashboard,
		domain.PermViewContent,
		domain.PermCreateContent,
		domain.PermEditContent,
		domain.PermDeleteContent,
		domain.PermViewClients,
		domain.PermViewProjects,
		domain.PermUploadDocuments,
		domain.PermViewDocuments,
	},

	// Designer - task work, read-only context
	domain.RoleDesigner: {
		domain.PermViewDashboard,
		domain.PermViewTasks,
		domain.PermEditTasks,
		domain.PermViewProjects,
		domain.PermViewClients,
		domain.PermViewContent,
	},

	// HR - employees, departments and user accounts
	domain.RoleHR: {
		domain.PermViewDashboard,
		domain.PermViewEmployees,
		domain.PermCreateEmployees,
		domain.PermEditEmployees,
		domain.PermDeleteEmployees,
		domain.PermViewDepartments,
		domain.PermCreateDepartments,
		domain.PermEditDepartments,
		domain.PermDeleteDepartments,
		domain.PermViewUsers,
		domain.PermCreateUsers,
		domain.PermEditUsers,
	},
}

// Assigned is implemented by records that have a single assignee (tasks)
type Assigned interface {
	AssigneeID() uint
}

// Engine answers permission questions against an immutable grant table
type Engine struct {
	grants map[domain.Role]map[domain.Permission]struct{}
}

// New builds an engine from a role → permission table. The input is copied.
func New(grants map[domain.Role][]domain.Permission) *Engine {
	e := &Engine{grants: make(map[domain.Role]map[domain.Permission]struct{}, len(grants))}
	for role, perms := range grants {
		set := make(map[domain.Permission]struct{}, len(perms))
		for _, p := range perms {
			set[p] = struct{}{}
		}
		e.grants[role] = set
	}
	return e
}

var defaultEngine = New(DefaultGrants)

// Default returns the process-wide engine built from DefaultGrants
func Default() *Engine {
	return defaultEngine
}

// IsAllowed reports whether the role holds the permission. Unknown roles and
// unknown tokens are denied.
func (e *Engine) IsAllowed(role domain.Role, permission domain.Permission) bool {
	set, ok := e.grants[role]
	if !ok {
		return false
	}
	_, ok = set[permission]
	return ok
}

// IsAllowedAny reports whether the role holds at least one of the permissions
func (e *Engine) IsAllowedAny(role domain.Role, permissions ...domain.Permission) bool {
	for _, p := range permissions {
		if e.IsAllowed(role, p) {
			return true
		}
	}
	return false
}

// CanActOnRecord checks a per-record permission. The only ownership exception
// is editing a task: the assignee may edit it without the edit_tasks grant.
func (e *Engine) CanActOnRecord(role domain.Role, permission domain.Permission, record any, currentUserID uint) bool {
	if e.IsAllowed(role, permission) {
		return true
	}
	if permission != domain.PermEditTasks {
		return false
	}
	owned, ok := record.(Assigned)
	if !ok {
		return false
	}
	return currentUserID != 0 && owned.AssigneeID() == currentUserID
}

// Permissions returns the permissions granted to a role
func (e *Engine) Permissions(role domain.Role) []domain.Permission {
	set := e.grants[role]
	result := make([]domain.Permission, 0, len(set))
	for _, p := range domain.AllPermissions {
		if _, ok := set[p]; ok {
			result = append(result, p)
		}
	}
	return result
}

// CanViewAny reports whether the role may list the resource
func (e *Engine) CanViewAny(role domain.Role, resource domain.Resource) bool {
	return e.IsAllowed(role, domain.PermissionFor(domain.ActionView, resource))
}

// CanCreate reports whether the role may create records of the resource.
// Tasks accept either create_tasks or assign_tasks; documents are created by
// uploading.
func (e *Engine) CanCreate(role domain.Role, resource domain.Resource) bool {
	switch resource {
	case domain.ResourceTasks:
		return e.IsAllowedAny(role, domain.PermCreateTasks, domain.PermAssignTasks)
	case domain.ResourceDocuments:
		return e.IsAllowed(role, domain.PermUploadDocuments)
	default:
		return e.IsAllowed(role, domain.PermissionFor(domain.ActionCreate, resource))
	}
}

// CanEdit reports whether the role may edit the record
func (e *Engine) CanEdit(role domain.Role, resource domain.Resource, record any, currentUserID uint) bool {
	return e.CanActOnRecord(role, domain.PermissionFor(domain.ActionEdit, resource), record, currentUserID)
}

// CanDelete reports whether the role may delete records of the resource
func (e *Engine) CanDelete(role domain.Role, resource domain.Resource) bool {
	return e.IsAllowed(role, domain.PermissionFor(domain.ActionDelete, resource))
}
