package domain

// Role represents the single role a user holds in the admin panel
type Role string

const (
	RoleManager       Role = "manager"
	RoleContentWriter Role = "content_writer"
	RoleDesigner      Role = "designer"
	RoleHR            Role = "hr"
)

// Roles lists every known role
var Roles = []Role{RoleManager, RoleContentWriter, RoleDesigner, RoleHR}

// IsValidRole reports whether s names a known role
func IsValidRole(s string) bool {
	for _, r := range Roles {
		if string(r) == s {
			return true
		}
	}
	return false
}

// Resource is the plural resource segment of a permission token
type Resource string

const (
	ResourceClients     Resource = "clients"
	ResourceProjects    Resource = "projects"
	ResourceInvoices    Resource = "invoices"
	ResourceEmployees   Resource = "employees"
	ResourceDepartments Resource = "departments"
	ResourceContent     Resource = "content"
	ResourceTasks       Resource = "tasks"
	ResourceDocuments   Resource = "documents"
	ResourceUsers       Resource = "users"
	ResourceDashboard   Resource = "dashboard"
	ResourceAnalytics   Resource = "analytics"
)

// Action is the verb segment of a permission token
type Action string

const (
	ActionView    Action = "view"
	ActionCreate  Action = "create"
	ActionEdit    Action = "edit"
	ActionDelete  Action = "delete"
	ActionApprove Action = "approve"
	ActionAssign  Action = "assign"
	ActionUpload  Action = "upload"
)

// Permission is a capability token of the form {action}_{resource}
type Permission string

// PermissionFor builds the token for an action on a resource
func PermissionFor(action Action, resource Resource) Permission {
	return Permission(string(action) + "_" + string(resource))
}

const (
	// Client permissions
	PermViewClients   Permission = "view_clients"
	PermCreateClients Permission = "create_clients"
	PermEditClients   Permission = "edit_clients"
	PermDeleteClients Permission = "delete_clients"

	// Project permissions
	PermViewProjects   Permission = "view_projects"
	PermCreateProjects Permission = "create_projects"
	PermEditProjects   Permission = "edit_projects"
	PermDeleteProjects Permission = "delete_projects"

	// Invoice permissions (also cover invoice items)
	PermViewInvoices   Permission = "view_invoices"
	PermCreateInvoices Permission = "create_invoices"
	PermEditInvoices   Permission = "edit_invoices"
	PermDeleteInvoices Permission = "delete_invoices"

	// Employee permissions
	PermViewEmployees   Permission = "view_employees"
	PermCreateEmployees Permission = "create_employees"
	PermEditEmployees   Permission = "edit_employees"
	PermDeleteEmployees Permission = "delete_employees"

	// Department permissions
	PermViewDepartments   Permission = "view_departments"
	PermCreateDepartments Permission = "create_departments"
	PermEditDepartments   Permission = "edit_departments"
	PermDeleteDepartments Permission = "delete_departments"

	// Content permissions
	PermViewContent    Permission = "view_content"
	PermCreateContent  Permission = "create_content"
	PermEditContent    Permission = "edit_content"
	PermDeleteContent  Permission = "delete_content"
	PermApproveContent Permission = "approve_content"

	// Task permissions
	PermViewTasks   Permission = "view_tasks"
	PermCreateTasks Permission = "create_tasks"
	PermEditTasks   Permission = "edit_tasks"
	PermDeleteTasks Permission = "delete_tasks"
	PermAssignTasks Permission = "assign_tasks"

	// Document permissions
	PermViewDocuments   Permission = "view_documents"
	PermUploadDocuments Permission = "upload_documents"
	PermEditDocuments   Permission = "edit_documents"
	PermDeleteDocuments Permission = "delete_documents"

	// User management permissions
	PermViewUsers   Permission = "view_users"
	PermCreateUsers Permission = "create_users"
	PermEditUsers   Permission = "edit_users"
	PermDeleteUsers Permission = "delete_users"

	// Dashboard access
	PermViewDashboard Permission = "view_dashboard"
	PermViewAnalytics Permission = "view_analytics"
)

// AllPermissions is the full permission catalogue
var AllPermissions = []Permission{
	PermViewClients, PermCreateClients, PermEditClients, PermDeleteClients,
	PermViewProjects, PermCreateProjects, PermEditProjects, PermDeleteProjects,
	PermViewInvoices, PermCreateInvoices, PermEditInvoices, PermDeleteInvoices,
	PermViewEmployees, PermCreateEmployees, PermEditEmployees, PermDeleteEmployees,
	PermViewDepartments, PermCreateDepartments, PermEditDepartments, PermDeleteDepartments,
	PermViewContent, PermCreateContent, PermEditContent, PermDeleteContent, PermApproveContent,
	PermViewTasks, PermCreateTasks, PermEditTasks, PermDeleteTasks, PermAssignTasks,
	PermViewDocuments, PermUploadDocuments, PermEditDocuments, PermDeleteDocuments,
	PermViewUsers, PermCreateUsers, PermEditUsers, PermDeleteUsers,
	PermViewDashboard, PermViewAnalytics,
}
