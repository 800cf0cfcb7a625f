package domain

import (
	"github.com/shopspring/decimal"
)

// Dates are rendered as YYYY-MM-DD and timestamps as RFC 3339 strings.

type ClientDTO struct {
	ID          uint         `json:"id"`
	Name        string       `json:"name"`
	CompanyName string       `json:"companyName,omitempty"`
	Email       string       `json:"email,omitempty"`
	Phone       string       `json:"phone,omitempty"`
	Address     string       `json:"address,omitempty"`
	City        string       `json:"city,omitempty"`
	State       string       `json:"state,omitempty"`
	PostalCode  string       `json:"postalCode,omitempty"`
	Country     string       `json:"country,omitempty"`
	Website     string       `json:"website,omitempty"`
	Industry    string       `json:"industry,omitempty"`
	Status      ClientStatus `json:"status"`
	Notes       string       `json:"notes,omitempty"`
	CreatedAt   string       `json:"createdAt"`
	UpdatedAt   string       `json:"updatedAt"`
}

// ProjectDTO carries the stored project fields plus derived progress and overdue state
type ProjectDTO struct {
	ID             uint            `json:"id"`
	ClientID       uint            `json:"clientId"`
	ClientName     string          `json:"clientName,omitempty"`
	Name           string          `json:"name"`
	Description    string          `json:"description,omitempty"`
	Status         ProjectStatus   `json:"status"`
	Priority       Priority        `json:"priority"`
	StartDate      *string         `json:"startDate,omitempty"`
	DueDate        *string         `json:"dueDate,omitempty"`
	CompletedDate  *string         `json:"completedDate,omitempty"`
	Budget         decimal.Decimal `json:"budget"`
	EstimatedHours *float64        `json:"estimatedHours,omitempty"`
	ActualHours    *float64        `json:"actualHours,omitempty"`
	AssignedTo     *uint           `json:"assignedTo,omitempty"`
	Progress       *int            `json:"progress"`
	ProgressLabel  string          `json:"progressLabel"`
	ProgressTier   string          `json:"progressTier,omitempty"`
	ProgressTone   string          `json:"progressTone"`
	IsOverdue      bool            `json:"isOverdue"`
	CreatedAt      string          `json:"createdAt"`
	UpdatedAt      string          `json:"updatedAt"`
}

// ProjectOptionDTO is one entry of a project dropdown
type ProjectOptionDTO struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// TaskDTO carries the stored task fields plus derived values
type TaskDTO struct {
	ID             uint       `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description,omitempty"`
	Status         TaskStatus `json:"status"`
	Priority       Priority   `json:"priority"`
	Type           TaskType   `json:"type"`
	AssignedTo     uint       `json:"assignedTo"`
	ProjectID      *uint      `json:"projectId,omitempty"`
	ProjectName    string     `json:"projectName,omitempty"`
	ClientID       *uint      `json:"clientId,omitempty"`
	DueDate        *string    `json:"dueDate,omitempty"`
	EstimatedHours *float64   `json:"estimatedHours,omitempty"`
	ActualHours    *float64   `json:"actualHours,omitempty"`
	StartTime      *string    `json:"startTime,omitempty"`
	EndTime        *string    `json:"endTime,omitempty"`
	Notes          string     `json:"notes,omitempty"`
	Progress       *int       `json:"progress"`
	ProgressLabel  string     `json:"progressLabel"`
	ProgressTier   string     `json:"progressTier,omitempty"`
	ProgressTone   string     `json:"progressTone"`
	IsOverdue      bool       `json:"isOverdue"`
	TimeSpentHours float64    `json:"timeSpentHours"`
	CreatedBy      uint       `json:"createdBy"`
	CreatedAt      string     `json:"createdAt"`
	UpdatedAt      string     `json:"updatedAt"`
}

// InvoiceDTO carries the stored invoice fields plus balance and overdue state
type InvoiceDTO struct {
	ID            uint             `json:"id"`
	ClientID      uint             `json:"clientId"`
	ClientName    string           `json:"clientName,omitempty"`
	ProjectID     *uint            `json:"projectId,omitempty"`
	InvoiceNumber string           `json:"invoiceNumber"`
	IssueDate     string           `json:"issueDate"`
	DueDate       string           `json:"dueDate"`
	Status        InvoiceStatus    `json:"status"`
	Subtotal      decimal.Decimal  `json:"subtotal"`
	TaxRate       decimal.Decimal  `json:"taxRate"`
	TaxAmount     decimal.Decimal  `json:"taxAmount"`
	TotalAmount   decimal.Decimal  `json:"totalAmount"`
	PaidAmount    decimal.Decimal  `json:"paidAmount"`
	Balance       decimal.Decimal  `json:"balance"`
	BalanceTone   string           `json:"balanceTone"`
	IsOverdue     bool             `json:"isOverdue"`
	PaymentDate   *string          `json:"paymentDate,omitempty"`
	Notes         string           `json:"notes,omitempty"`
	Items         []InvoiceItemDTO `json:"items,omitempty"`
	CreatedAt     string           `json:"createdAt"`
	UpdatedAt     string           `json:"updatedAt"`
}

type InvoiceItemDTO struct {
	ID          uint            `json:"id"`
	InvoiceID   uint            `json:"invoiceId"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Rate        decimal.Decimal `json:"rate"`
	Amount      decimal.Decimal `json:"amount"`
}

type DepartmentDTO struct {
	ID            uint   `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	ManagerID     *uint  `json:"managerId,omitempty"`
	EmployeeCount int64  `json:"employeeCount"`
	CreatedAt     string `json:"createdAt"`
	UpdatedAt     string `json:"updatedAt"`
}

type EmployeeDTO struct {
	ID              uint            `json:"id"`
	UserID          *uint           `json:"userId,omitempty"`
	EmployeeCode    string          `json:"employeeCode"`
	FirstName       string          `json:"firstName"`
	LastName        string          `json:"lastName"`
	FullName        string          `json:"fullName"`
	Email           string          `json:"email"`
	Phone           string          `json:"phone,omitempty"`
	DepartmentID    uint            `json:"departmentId"`
	DepartmentName  string          `json:"departmentName,omitempty"`
	Position        string          `json:"position"`
	Salary          decimal.Decimal `json:"salary"`
	HireDate        string          `json:"hireDate"`
	TerminationDate *string         `json:"terminationDate,omitempty"`
	Status          EmployeeStatus  `json:"status"`
	CreatedAt       string          `json:"createdAt"`
	UpdatedAt       string          `json:"updatedAt"`
}

type UserDTO struct {
	ID           uint    `json:"id"`
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	Role         Role    `json:"role"`
	DepartmentID *uint   `json:"departmentId,omitempty"`
	IsActive     bool    `json:"isActive"`
	Phone        string  `json:"phone,omitempty"`
	HireDate     *string `json:"hireDate,omitempty"`
	CreatedAt    string  `json:"createdAt"`
	UpdatedAt    string  `json:"updatedAt"`
}

// DocumentDTO carries document metadata plus display helpers derived from the file fields
type DocumentDTO struct {
	ID                uint             `json:"id"`
	Title             string           `json:"title"`
	Description       string           `json:"description,omitempty"`
	FilePath          string           `json:"filePath"`
	FileName          string           `json:"fileName"`
	FileSize          *int64           `json:"fileSize,omitempty"`
	FileSizeFormatted string           `json:"fileSizeFormatted"`
	FileExtension     string           `json:"fileExtension"`
	MimeType          string           `json:"mimeType,omitempty"`
	IsImage           bool             `json:"isImage"`
	IsPDF             bool             `json:"isPdf"`
	Category          DocumentCategory `json:"category"`
	ClientID          *uint            `json:"clientId,omitempty"`
	ProjectID         *uint            `json:"projectId,omitempty"`
	UploadedBy        uint             `json:"uploadedBy"`
	IsConfidential    bool             `json:"isConfidential"`
	CreatedAt         string           `json:"createdAt"`
	UpdatedAt         string           `json:"updatedAt"`
}

type ContentDTO struct {
	ID                uint          `json:"id"`
	Title             string        `json:"title"`
	Description       string        `json:"description,omitempty"`
	Type              ContentType   `json:"type"`
	Category          string        `json:"category,omitempty"`
	FilePath          string        `json:"filePath"`
	FileName          string        `json:"fileName"`
	FileSize          *int64        `json:"fileSize,omitempty"`
	FileSizeFormatted string        `json:"fileSizeFormatted"`
	MimeType          string        `json:"mimeType,omitempty"`
	AltText           string        `json:"altText,omitempty"`
	Tags              []string      `json:"tags"`
	Status            ContentStatus `json:"status"`
	ClientID          *uint         `json:"clientId,omitempty"`
	ProjectID         *uint         `json:"projectId,omitempty"`
	CreatedBy         uint          `json:"createdBy"`
	ApprovedBy        *uint         `json:"approvedBy,omitempty"`
	ApprovedAt        *string       `json:"approvedAt,omitempty"`
	CreatedAt         string        `json:"createdAt"`
	UpdatedAt         string        `json:"updatedAt"`
}

// StatDTO is one dashboard card
type StatDTO struct {
	Label       string `json:"label"`
	Value       string `json:"value"`
	Description string `json:"description,omitempty"`
	Tone        string `json:"tone"`
}

// DashboardDTO holds the stat cards for the acting user's role
type DashboardDTO struct {
	Role  Role      `json:"role"`
	Stats []StatDTO `json:"stats"`
}

// MeDTO describes the authenticated caller
type MeDTO struct {
	UserID      uint         `json:"userId"`
	Name        string       `json:"name"`
	Email       string       `json:"email,omitempty"`
	Role        Role         `json:"role"`
	Initials    string       `json:"initials,omitempty"`
	Permissions []Permission `json:"permissions"`
}

// ============================================================================
// Requests
// ============================================================================

type CreateClientRequest struct {
	Name        string       `json:"name" validate:"required,max=255"`
	CompanyName string       `json:"companyName" validate:"max=255"`
	Email       string       `json:"email" validate:"omitempty,email,max=255"`
	Phone       string       `json:"phone" validate:"max=50"`
	Address     string       `json:"address"`
	City        string       `json:"city" validate:"max=100"`
	State       string       `json:"state" validate:"max=100"`
	PostalCode  string       `json:"postalCode" validate:"max=20"`
	Country     string       `json:"country" validate:"max=100"`
	Website     string       `json:"website" validate:"omitempty,url,max=255"`
	Industry    string       `json:"industry" validate:"max=100"`
	Status      ClientStatus `json:"status" validate:"omitempty,oneof=active inactive prospective"`
	Notes       string       `json:"notes"`
}

type UpdateClientRequest = CreateClientRequest

type CreateProjectRequest struct {
	ClientID       uint            `json:"clientId" validate:"required"`
	Name           string          `json:"name" validate:"required,max=255"`
	Description    string          `json:"description"`
	Status         ProjectStatus   `json:"status" validate:"omitempty,oneof=planning in_progress review completed cancelled"`
	Priority       Priority        `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	StartDate      string          `json:"startDate" validate:"omitempty,datetime=2006-01-02"`
	DueDate        string          `json:"dueDate" validate:"omitempty,datetime=2006-01-02"`
	CompletedDate  string          `json:"completedDate" validate:"omitempty,datetime=2006-01-02"`
	Budget         decimal.Decimal `json:"budget" validate:"gte=0"`
	EstimatedHours *float64        `json:"estimatedHours" validate:"omitempty,gte=0"`
	ActualHours    *float64        `json:"actualHours" validate:"omitempty,gte=0"`
	AssignedTo     *uint           `json:"assignedTo"`
}

type UpdateProjectRequest = CreateProjectRequest

type CreateTaskRequest struct {
	Title          string     `json:"title" validate:"required,max=255"`
	Description    string     `json:"description"`
	Status         TaskStatus `json:"status" validate:"omitempty,oneof=todo in_progress review completed cancelled"`
	Priority       Priority   `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	Type           TaskType   `json:"type" validate:"omitempty,oneof=design development content meeting other"`
	AssignedTo     uint       `json:"assignedTo" validate:"required"`
	ProjectID      *uint      `json:"projectId"`
	ClientID       *uint      `json:"clientId"`
	DueDate        string     `json:"dueDate" validate:"omitempty,datetime=2006-01-02"`
	EstimatedHours *float64   `json:"estimatedHours" validate:"omitempty,gte=0"`
	ActualHours    *float64   `json:"actualHours" validate:"omitempty,gte=0"`
	Notes          string     `json:"notes"`
}

type UpdateTaskRequest = CreateTaskRequest

type CreateInvoiceRequest struct {
	ClientID      uint                       `json:"clientId" validate:"required"`
	ProjectID     *uint                      `json:"projectId"`
	InvoiceNumber string                     `json:"invoiceNumber" validate:"omitempty,max=50"`
	IssueDate     string                     `json:"issueDate" validate:"required,datetime=2006-01-02"`
	DueDate       string                     `json:"dueDate" validate:"required,datetime=2006-01-02"`
	Status        InvoiceStatus              `json:"status" validate:"omitempty,oneof=draft sent paid overdue cancelled"`
	Subtotal      decimal.Decimal            `json:"subtotal" validate:"gte=0"`
	TaxRate       decimal.Decimal            `json:"taxRate" validate:"gte=0,lte=100"`
	PaidAmount    decimal.Decimal            `json:"paidAmount" validate:"gte=0"`
	PaymentDate   string                     `json:"paymentDate" validate:"omitempty,datetime=2006-01-02"`
	Notes         string                     `json:"notes"`
	Items         []CreateInvoiceItemRequest `json:"items" validate:"dive"`
}

// UpdateInvoiceRequest replaces the invoice fields; items are managed through their own endpoints
type UpdateInvoiceRequest struct {
	ClientID      uint            `json:"clientId" validate:"required"`
	ProjectID     *uint           `json:"projectId"`
	InvoiceNumber string          `json:"invoiceNumber" validate:"required,max=50"`
	IssueDate     string          `json:"issueDate" validate:"required,datetime=2006-01-02"`
	DueDate       string          `json:"dueDate" validate:"required,datetime=2006-01-02"`
	Status        InvoiceStatus   `json:"status" validate:"required,oneof=draft sent paid overdue cancelled"`
	Subtotal      decimal.Decimal `json:"subtotal" validate:"gte=0"`
	TaxRate       decimal.Decimal `json:"taxRate" validate:"gte=0,lte=100"`
	PaidAmount    decimal.Decimal `json:"paidAmount" validate:"gte=0"`
	PaymentDate   string          `json:"paymentDate" validate:"omitempty,datetime=2006-01-02"`
	Notes         string          `json:"notes"`
}

type CreateInvoiceItemRequest struct {
	Description string          `json:"description" validate:"required,max=500"`
	Quantity    decimal.Decimal `json:"quantity" validate:"gte=0"`
	Rate        decimal.Decimal `json:"rate" validate:"gte=0"`
}

type UpdateInvoiceItemRequest = CreateInvoiceItemRequest

type CreateDepartmentRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description"`
	ManagerID   *uint  `json:"managerId"`
}

type UpdateDepartmentRequest = CreateDepartmentRequest

type CreateEmployeeRequest struct {
	UserID                *uint           `json:"userId"`
	EmployeeCode          string          `json:"employeeCode" validate:"required,max=50"`
	FirstName             string          `json:"firstName" validate:"required,max=100"`
	LastName              string          `json:"lastName" validate:"required,max=100"`
	Email                 string          `json:"email" validate:"required,email,max=255"`
	Phone                 string          `json:"phone" validate:"max=50"`
	Address               string          `json:"address"`
	DepartmentID          uint            `json:"departmentId" validate:"required"`
	Position              string          `json:"position" validate:"required,max=100"`
	Salary                decimal.Decimal `json:"salary" validate:"gte=0"`
	HireDate              string          `json:"hireDate" validate:"required,datetime=2006-01-02"`
	TerminationDate       string          `json:"terminationDate" validate:"omitempty,datetime=2006-01-02"`
	Status                EmployeeStatus  `json:"status" validate:"omitempty,oneof=active inactive terminated"`
	EmergencyContactName  string          `json:"emergencyContactName" validate:"max=200"`
	EmergencyContactPhone string          `json:"emergencyContactPhone" validate:"max=50"`
	Notes                 string          `json:"notes"`
}

type UpdateEmployeeRequest = CreateEmployeeRequest

type CreateUserRequest struct {
	Name         string `json:"name" validate:"required,max=255"`
	Email        string `json:"email" validate:"required,email,max=255"`
	Role         Role   `json:"role" validate:"required,oneof=manager content_writer designer hr"`
	DepartmentID *uint  `json:"departmentId"`
	IsActive     *bool  `json:"isActive"`
	Phone        string `json:"phone" validate:"max=50"`
	HireDate     string `json:"hireDate" validate:"omitempty,datetime=2006-01-02"`
}

type UpdateUserRequest = CreateUserRequest

type CreateDocumentRequest struct {
	Title          string           `json:"title" validate:"required,max=255"`
	Description    string           `json:"description"`
	FilePath       string           `json:"filePath" validate:"required,max=500"`
	FileName       string           `json:"fileName" validate:"required,max=255"`
	FileSize       *int64           `json:"fileSize" validate:"omitempty,gte=0"`
	MimeType       string           `json:"mimeType" validate:"max=100"`
	Category       DocumentCategory `json:"category" validate:"omitempty,oneof=contract proposal invoice receipt other"`
	ClientID       *uint            `json:"clientId"`
	ProjectID      *uint            `json:"projectId"`
	IsConfidential bool             `json:"isConfidential"`
}

type UpdateDocumentRequest = CreateDocumentRequest

type CreateContentRequest struct {
	Title       string      `json:"title" validate:"required,max=255"`
	Description string      `json:"description"`
	Type        ContentType `json:"type" validate:"required,oneof=image video document marketing_material"`
	Category    string      `json:"category" validate:"max=100"`
	FilePath    string      `json:"filePath" validate:"required,max=500"`
	FileName    string      `json:"fileName" validate:"required,max=255"`
	FileSize    *int64      `json:"fileSize" validate:"omitempty,gte=0"`
	MimeType    string      `json:"mimeType" validate:"max=100"`
	AltText     string      `json:"altText" validate:"max=255"`
	Tags        []string    `json:"tags" validate:"dive,max=50"`
	ClientID    *uint       `json:"clientId"`
	ProjectID   *uint       `json:"projectId"`
}

// UpdateContentRequest may also move content between draft and archived
type UpdateContentRequest struct {
	CreateContentRequest
	Status ContentStatus `json:"status" validate:"omitempty,oneof=draft archived"`
}

// BulkActionRequest lists the records a bulk action applies to
type BulkActionRequest struct {
	IDs []uint `json:"ids" validate:"required,min=1,max=500,dive,gt=0"`
}

// BatchItemResult explains why one record of a bulk action was not processed
type BatchItemResult struct {
	ID     uint   `json:"id"`
	Reason string `json:"reason"`
}

// BatchResult reports the outcome of a best-effort bulk action
type BatchResult struct {
	Processed []uint            `json:"processed"`
	Skipped   []BatchItemResult `json:"skipped"`
	Failed    []BatchItemResult `json:"failed"`
}

// NewBatchResult returns an empty result with non-nil slices
func NewBatchResult() *BatchResult {
	return &BatchResult{
		Processed: []uint{},
		Skipped:   []BatchItemResult{},
		Failed:    []BatchItemResult{},
	}
}

// ============================================================================
// Envelopes
// ============================================================================

type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}
