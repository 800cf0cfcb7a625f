package domain

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/opsdesk/admin-api/internal/derive"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// Priority is shared by projects and tasks
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// ClientStatus represents the relationship state of a client
type ClientStatus string

const (
	ClientStatusActive      ClientStatus = "active"
	ClientStatusInactive    ClientStatus = "inactive"
	ClientStatusProspective ClientStatus = "prospective"
)

// Client represents a customer organization
type Client struct {
	BaseModel
	Name        string       `gorm:"type:varchar(255);not null;index"`
	CompanyName string       `gorm:"type:varchar(255);column:company_name"`
	Email       string       `gorm:"type:varchar(255)"`
	Phone       string       `gorm:"type:varchar(50)"`
	Address     string       `gorm:"type:text"`
	City        string       `gorm:"type:varchar(100)"`
	State       string       `gorm:"type:varchar(100)"`
	PostalCode  string       `gorm:"type:varchar(20);column:postal_code"`
	Country     string       `gorm:"type:varchar(100)"`
	Website     string       `gorm:"type:varchar(255)"`
	Industry    string       `gorm:"type:varchar(100)"`
	Status      ClientStatus `gorm:"type:varchar(20);not null;default:'active';index"`
	Notes       string       `gorm:"type:text"`
	CreatedBy   uint         `gorm:"column:created_by"`
}

// ProjectStatus represents the lifecycle state of a project
type ProjectStatus string

const (
	ProjectStatusPlanning   ProjectStatus = "planning"
	ProjectStatusInProgress ProjectStatus = "in_progress"
	ProjectStatusReview     ProjectStatus = "review"
	ProjectStatusCompleted  ProjectStatus = "completed"
	ProjectStatusCancelled  ProjectStatus = "cancelled"
)

// ProjectTerminalStatuses are the statuses after which a project is no longer tracked as overdue
var ProjectTerminalStatuses = []string{string(ProjectStatusCompleted), string(ProjectStatusCancelled)}

// Project represents client work with an hour estimate and a due date
type Project struct {
	BaseModel
	ClientID       uint            `gorm:"not null;index:idx_projects_client_status,priority:1;column:client_id"`
	Client         *Client         `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE"`
	Name           string          `gorm:"type:varchar(255);not null"`
	Description    string          `gorm:"type:text"`
	Status         ProjectStatus   `gorm:"type:varchar(20);not null;default:'planning';index:idx_projects_client_status,priority:2"`
	Priority       Priority        `gorm:"type:varchar(20);not null;default:'medium'"`
	StartDate      *time.Time      `gorm:"type:date;column:start_date"`
	DueDate        *time.Time      `gorm:"type:date;column:due_date"`
	CompletedDate  *time.Time      `gorm:"type:date;column:completed_date"`
	Budget         decimal.Decimal `gorm:"type:decimal(12,2);default:0"`
	EstimatedHours *float64        `gorm:"column:estimated_hours"`
	ActualHours    *float64        `gorm:"column:actual_hours"`
	AssignedTo     *uint           `gorm:"column:assigned_to"`
	CreatedBy      uint            `gorm:"column:created_by"`
}

// TaskStatus represents the lifecycle state of a task
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusReview     TaskStatus = "review"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

// TaskTerminalStatuses are the statuses after which a task is no longer tracked as overdue
var TaskTerminalStatuses = []string{string(TaskStatusCompleted), string(TaskStatusCancelled)}

// TaskType classifies the kind of work
type TaskType string

const (
	TaskTypeDesign      TaskType = "design"
	TaskTypeDevelopment TaskType = "development"
	TaskTypeContent     TaskType = "content"
	TaskTypeMeeting     TaskType = "meeting"
	TaskTypeOther       TaskType = "other"
)

// Task is a unit of work assigned to a single user
type Task struct {
	BaseModel
	Title          string     `gorm:"type:varchar(255);not null"`
	Description    string     `gorm:"type:text"`
	Status         TaskStatus `gorm:"type:varchar(20);not null;default:'todo';index:idx_tasks_assignee_status,priority:2"`
	Priority       Priority   `gorm:"type:varchar(20);not null;default:'medium'"`
	Type           TaskType   `gorm:"type:varchar(20);not null;default:'other'"`
	AssignedTo     uint       `gorm:"not null;index:idx_tasks_assignee_status,priority:1;column:assigned_to"`
	ProjectID      *uint      `gorm:"column:project_id"`
	Project        *Project   `gorm:"foreignKey:ProjectID;constraint:OnDelete:SET NULL"`
	ClientID       *uint      `gorm:"column:client_id"`
	DueDate        *time.Time `gorm:"type:date;column:due_date"`
	EstimatedHours *float64   `gorm:"column:estimated_hours"`
	ActualHours    *float64   `gorm:"column:actual_hours"`
	StartTime      *time.Time `gorm:"column:start_time"`
	EndTime        *time.Time `gorm:"column:end_time"`
	Notes          string     `gorm:"type:text"`
	CreatedBy      uint       `gorm:"column:created_by"`
}

// AssigneeID returns the user the task is assigned to
func (t *Task) AssigneeID() uint {
	if t == nil {
		return 0
	}
	return t.AssignedTo
}

// InvoiceStatus represents the billing state of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusSent      InvoiceStatus = "sent"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusOverdue   InvoiceStatus = "overdue"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// InvoiceUnpaidStatuses are the statuses counted as outstanding
var InvoiceUnpaidStatuses = []InvoiceStatus{InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusOverdue}

// Invoice is a bill issued to a client. TaxAmount and TotalAmount are kept
// consistent with Subtotal and TaxRate by the invoice service.
type Invoice struct {
	BaseModel
	ClientID      uint            `gorm:"not null;index;column:client_id"`
	Client        *Client         `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE"`
	ProjectID     *uint           `gorm:"column:project_id"`
	Project       *Project        `gorm:"foreignKey:ProjectID;constraint:OnDelete:SET NULL"`
	InvoiceNumber string          `gorm:"type:varchar(50);not null;uniqueIndex;column:invoice_number"`
	IssueDate     time.Time       `gorm:"type:date;not null;column:issue_date"`
	DueDate       time.Time       `gorm:"type:date;not null;column:due_date"`
	Status        InvoiceStatus   `gorm:"type:varchar(20);not null;default:'draft';index"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TaxRate       decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0;column:tax_rate"`
	TaxAmount     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0;column:tax_amount"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0;column:total_amount"`
	PaidAmount    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0;column:paid_amount"`
	PaymentDate   *time.Time      `gorm:"type:date;column:payment_date"`
	Notes         string          `gorm:"type:text"`
	CreatedBy     uint            `gorm:"column:created_by"`
	Items         []InvoiceItem   `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
}

// InvoiceItem is a single billable line of an invoice
type InvoiceItem struct {
	BaseModel
	InvoiceID   uint            `gorm:"not null;index;column:invoice_id"`
	Description string          `gorm:"type:varchar(500);not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Rate        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
}

// BeforeSave keeps Amount equal to Quantity × Rate on every write
func (i *InvoiceItem) BeforeSave(tx *gorm.DB) error {
	i.Amount = derive.LineItemAmount(i.Quantity, i.Rate)
	return nil
}

// Department groups employees and users
type Department struct {
	BaseModel
	Name        string     `gorm:"type:varchar(255);not null"`
	Description string     `gorm:"type:text"`
	ManagerID   *uint      `gorm:"column:manager_id"`
	Employees   []Employee `gorm:"foreignKey:DepartmentID"`
}

// EmployeeStatus represents the employment state
type EmployeeStatus string

const (
	EmployeeStatusActive     EmployeeStatus = "active"
	EmployeeStatusInactive   EmployeeStatus = "inactive"
	EmployeeStatusTerminated EmployeeStatus = "terminated"
)

// Employee is an HR record, optionally linked to a user account
type Employee struct {
	BaseModel
	UserID                *uint           `gorm:"column:user_id"`
	EmployeeCode          string          `gorm:"type:varchar(50);not null;uniqueIndex;column:employee_code"`
	FirstName             string          `gorm:"type:varchar(100);not null;column:first_name"`
	LastName              string          `gorm:"type:varchar(100);not null;column:last_name"`
	Email                 string          `gorm:"type:varchar(255);not null;uniqueIndex"`
	Phone                 string          `gorm:"type:varchar(50)"`
	Address               string          `gorm:"type:text"`
	DepartmentID          uint            `gorm:"not null;index;column:department_id"`
	Department            *Department     `gorm:"foreignKey:DepartmentID"`
	Position              string          `gorm:"type:varchar(100);not null"`
	Salary                decimal.Decimal `gorm:"type:decimal(12,2);default:0"`
	HireDate              time.Time       `gorm:"type:date;not null;column:hire_date"`
	TerminationDate       *time.Time      `gorm:"type:date;column:termination_date"`
	Status                EmployeeStatus  `gorm:"type:varchar(20);not null;default:'active'"`
	EmergencyContactName  string          `gorm:"type:varchar(200);column:emergency_contact_name"`
	EmergencyContactPhone string          `gorm:"type:varchar(50);column:emergency_contact_phone"`
	Notes                 string          `gorm:"type:text"`
	CreatedBy             uint            `gorm:"column:created_by"`
}

// FullName returns the employee's full name
func (e *Employee) FullName() string {
	return e.FirstName + " " + e.LastName
}

// User is an account that signs in to the admin panel
type User struct {
	BaseModel
	Name         string     `gorm:"type:varchar(255);not null"`
	Email        string     `gorm:"type:varchar(255);not null;uniqueIndex"`
	Role         Role       `gorm:"type:varchar(30);not null;default:'content_writer'"`
	DepartmentID *uint      `gorm:"column:department_id"`
	IsActive     bool       `gorm:"not null;column:is_active"`
	Phone        string     `gorm:"type:varchar(50)"`
	HireDate     *time.Time `gorm:"type:date;column:hire_date"`
}

// DocumentCategory classifies a stored document
type DocumentCategory string

const (
	DocumentCategoryContract DocumentCategory = "contract"
	DocumentCategoryProposal DocumentCategory = "proposal"
	DocumentCategoryInvoice  DocumentCategory = "invoice"
	DocumentCategoryReceipt  DocumentCategory = "receipt"
	DocumentCategoryOther    DocumentCategory = "other"
)

// Document is metadata for a stored business file
type Document struct {
	BaseModel
	Title          string           `gorm:"type:varchar(255);not null"`
	Description    string           `gorm:"type:text"`
	FilePath       string           `gorm:"type:varchar(500);not null;column:file_path"`
	FileName       string           `gorm:"type:varchar(255);not null;column:file_name"`
	FileSize       *int64           `gorm:"column:file_size"`
	MimeType       string           `gorm:"type:varchar(100);column:mime_type"`
	Category       DocumentCategory `gorm:"type:varchar(20);not null;default:'other';index"`
	ClientID       *uint            `gorm:"index;column:client_id"`
	ProjectID      *uint            `gorm:"column:project_id"`
	UploadedBy     uint             `gorm:"column:uploaded_by"`
	IsConfidential bool             `gorm:"not null;default:false;column:is_confidential"`
}

// ContentType classifies a content asset
type ContentType string

const (
	ContentTypeImage             ContentType = "image"
	ContentTypeVideo             ContentType = "video"
	ContentTypeDocument          ContentType = "document"
	ContentTypeMarketingMaterial ContentType = "marketing_material"
)

// ContentStatus represents the approval state of a content asset
type ContentStatus string

const (
	ContentStatusDraft    ContentStatus = "draft"
	ContentStatusApproved ContentStatus = "approved"
	ContentStatusArchived ContentStatus = "archived"
)

// Content is a marketing or design asset that goes through approval
type Content struct {
	BaseModel
	Title       string        `gorm:"type:varchar(255);not null"`
	Description string        `gorm:"type:text"`
	Type        ContentType   `gorm:"type:varchar(30);not null;index"`
	Category    string        `gorm:"type:varchar(100)"`
	FilePath    string        `gorm:"type:varchar(500);not null;column:file_path"`
	FileName    string        `gorm:"type:varchar(255);not null;column:file_name"`
	FileSize    *int64        `gorm:"column:file_size"`
	MimeType    string        `gorm:"type:varchar(100);column:mime_type"`
	AltText     string        `gorm:"type:varchar(255);column:alt_text"`
	Tags        []string      `gorm:"type:text;serializer:json"`
	Status      ContentStatus `gorm:"type:varchar(20);not null;default:'draft';index"`
	ClientID    *uint         `gorm:"column:client_id"`
	ProjectID   *uint         `gorm:"column:project_id"`
	CreatedBy   uint          `gorm:"column:created_by"`
	ApprovedBy  *uint         `gorm:"column:approved_by"`
	ApprovedAt  *time.Time    `gorm:"column:approved_at"`
}

// TableName keeps the singular table name used by the admin panel
func (Content) TableName() string {
	return "content"
}

// Extension returns the lower-cased file extension without the dot
func (d *Document) Extension() string {
	ext := filepath.Ext(d.FileName)
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsImage reports whether the document is an image
func (d *Document) IsImage() bool {
	return strings.HasPrefix(d.MimeType, "image/")
}

// IsPDF reports whether the document is a PDF
func (d *Document) IsPDF() bool {
	return d.MimeType == "application/pdf"
}
