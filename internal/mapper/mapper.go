package mapper

import (
	"fmt"
	"time"

	"github.com/opsdesk/admin-api/internal/derive"
	"github.com/opsdesk/admin-api/internal/domain"
)

const (
	dateLayout      = "2006-01-02"
	timestampLayout = time.RFC3339
)

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

func formatTimestamp(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(timestampLayout)
	return &s
}

// progressFields fills the shared progress columns of projects and tasks
func progressFields(estimated, actual *float64) (progress *int, label, tier, tone string) {
	pct, ok := derive.ProgressPercent(estimated, actual)
	label = derive.ProgressLabel(pct, ok)
	if !ok {
		return nil, label, "", string(derive.ToneSecondary)
	}
	t := derive.ClassifyProgress(pct)
	return &pct, label, string(t), string(t.Tone())
}

// ToClientDTO converts Client to ClientDTO
func ToClientDTO(client *domain.Client) domain.ClientDTO {
	return domain.ClientDTO{
		ID:          client.ID,
		Name:        client.Name,
		CompanyName: client.CompanyName,
		Email:       client.Email,
		Phone:       client.Phone,
		Address:     client.Address,
		City:        client.City,
		State:       client.State,
		PostalCode:  client.PostalCode,
		Country:     client.Country,
		Website:     client.Website,
		Industry:    client.Industry,
		Status:      client.Status,
		Notes:       client.Notes,
		CreatedAt:   client.CreatedAt.UTC().Format(timestampLayout),
		UpdatedAt:   client.UpdatedAt.UTC().Format(timestampLayout),
	}
}

// ToProjectDTO converts Project to ProjectDTO, deriving progress and overdue state at now
func ToProjectDTO(project *domain.Project, now time.Time) domain.ProjectDTO {
	progress, label, tier, tone := progressFields(project.EstimatedHours, project.ActualHours)
	dto := domain.ProjectDTO{
		ID:             project.ID,
		ClientID:       project.ClientID,
		Name:           project.Name,
		Description:    project.Description,
		Status:         project.Status,
		Priority:       project.Priority,
		StartDate:      formatDate(project.StartDate),
		DueDate:        formatDate(project.DueDate),
		CompletedDate:  formatDate(project.CompletedDate),
		Budget:         project.Budget,
		EstimatedHours: project.EstimatedHours,
		ActualHours:    project.ActualHours,
		AssignedTo:     project.AssignedTo,
		Progress:       progress,
		ProgressLabel:  label,
		ProgressTier:   tier,
		ProgressTone:   tone,
		IsOverdue:      derive.EntityIsOverdue(project.DueDate, string(project.Status), domain.ProjectTerminalStatuses, now),
		CreatedAt:      project.CreatedAt.UTC().Format(timestampLayout),
		UpdatedAt:      project.UpdatedAt.UTC().Format(timestampLayout),
	}
	if project.Client != nil {
		dto.ClientName = project.Client.Name
	}
	return dto
}

// ToProjectOptionDTO converts Project to a dropdown entry
func ToProjectOptionDTO(project *domain.Project) domain.ProjectOptionDTO {
	return domain.ProjectOptionDTO{ID: project.ID, Name: project.Name}
}

// ToTaskDTO converts Task to TaskDTO, deriving progress, overdue state and time spent at now
func ToTaskDTO(task *domain.Task, now time.Time) domain.TaskDTO {
	progress, label, tier, tone := progressFields(task.EstimatedHours, task.ActualHours)
	dto := domain.TaskDTO{
		ID:             task.ID,
		Title:          task.Title,
		Description:    task.Description,
		Status:         task.Status,
		Priority:       task.Priority,
		Type:           task.Type,
		AssignedTo:     task.AssignedTo,
		ProjectID:      task.ProjectID,
		ClientID:       task.ClientID,
		DueDate:        formatDate(task.DueDate),
		EstimatedHours: task.EstimatedHours,
		ActualHours:    task.ActualHours,
		StartTime:      formatTimestamp(task.StartTime),
		EndTime:        formatTimestamp(task.EndTime),
		Notes:          task.Notes,
		Progress:       progress,
		ProgressLabel:  label,
		ProgressTier:   tier,
		ProgressTone:   tone,
		IsOverdue:      derive.EntityIsOverdue(task.DueDate, string(task.Status), domain.TaskTerminalStatuses, now),
		TimeSpentHours: derive.TaskTimeSpent(task.StartTime, task.EndTime),
		CreatedBy:      task.CreatedBy,
		CreatedAt:      task.CreatedAt.UTC().Format(timestampLayout),
		UpdatedAt:      task.UpdatedAt.UTC().Format(timestampLayout),
	}
	if task.Project != nil {
		dto.ProjectName = task.Project.Name
	}
	return dto
}

// ToInvoiceDTO converts Invoice to InvoiceDTO, deriving balance and overdue state at now
func ToInvoiceDTO(invoice *domain.Invoice, now time.Time) domain.InvoiceDTO {
	balance := derive.InvoiceBalance(invoice.TotalAmount, invoice.PaidAmount)
	dto := domain.InvoiceDTO{
		ID:            invoice.ID,
		ClientID:      invoice.ClientID,
		ProjectID:     invoice.ProjectID,
		InvoiceNumber: invoice.InvoiceNumber,
		IssueDate:     invoice.IssueDate.Format(dateLayout),
		DueDate:       invoice.DueDate.Format(dateLayout),
		Status:        invoice.Status,
		Subtotal:      invoice.Subtotal,
		TaxRate:       invoice.TaxRate,
		TaxAmount:     invoice.TaxAmount,
		TotalAmount:   invoice.TotalAmount,
		PaidAmount:    invoice.PaidAmount,
		Balance:       balance,
		BalanceTone:   string(derive.BalanceTone(balance)),
		IsOverdue:     derive.InvoiceIsOverdue(invoice.DueDate, string(invoice.Status), now),
		PaymentDate:   formatDate(invoice.PaymentDate),
		Notes:         invoice.Notes,
		CreatedAt:     invoice.CreatedAt.UTC().Format(timestampLayout),
		UpdatedAt:     invoice.UpdatedAt.UTC().Format(timestampLayout),
	}
	if invoice.Client != nil {
		dto.ClientName = invoice.Client.Name
	}
	if len(invoice.Items) > 0 {
		dto.Items = make([]domain.InvoiceItemDTO, len(invoice.Items))
		for i := range invoice.Items {
			dto.Items[i] = ToInvoiceItemDTO(&invoice.Items[i])
		}
	}
	return dto
}

// ToInvoiceItemDTO converts InvoiceItem to InvoiceItemDTO
func ToInvoiceItemDTO(item *domain.InvoiceItem) domain.InvoiceItemDTO {
	return domain.InvoiceItemDTO{
		ID:          item.ID,
		InvoiceID:   item.InvoiceID,
		Description: item.Description,
		Quantity:    item.Quantity,
		Rate:        item.Rate,
		Amount:      item.Amount,
	}
}

// ToDepartmentDTO converts Department to DepartmentDTO
func ToDepartmentDTO(department *domain.Department, employeeCount int64) domain.DepartmentDTO {
	return domain.DepartmentDTO{
		ID:            department.ID,
		Name:          department.Name,
		Description:   department.Description,
		ManagerID:     department.ManagerID,
		EmployeeCount: employeeCount,
		CreatedAt:     department.CreatedAt.UTC().Format(timestampLayout),
		UpdatedAt:     department.UpdatedAt.UTC().Format(timestampLayout),
	}
}

// ToEmployeeDTO converts Employee to EmployeeDTO
func ToEmployeeDTO(employee *domain.Employee) domain.EmployeeDTO {
	dto := domain.EmployeeDTO{
		ID:              employee.ID,
		UserID:          employee.UserID,
		EmployeeCode:    employee.EmployeeCode,
		FirstName:       employee.FirstName,
		LastName:        employee.LastName,
		FullName:        employee.FullName(),
		Email:           employee.Email,
		Phone:           employee.Phone,
		DepartmentID:    employee.DepartmentID,
		Position:        employee.Position,
		Salary:          employee.Salary,
		HireDate:        employee.HireDate.Format(dateLayout),
		TerminationDate: formatDate(employee.TerminationDate),
		Status:          employee.Status,
		CreatedAt:       employee.CreatedAt.UTC().Format(timestampLayout),
		UpdatedAt:       employee.UpdatedAt.UTC().Format(timestampLayout),
	}
	if employee.Department != nil {
		dto.DepartmentName = employee.Department.Name
	}
	return dto
}

// ToUserDTO converts User to UserDTO
func ToUserDTO(user *domain.User) domain.UserDTO {
	return domain.UserDTO{
		ID:           user.ID,
		Name:         user.Name,
		Email:        user.Email,
		Role:         user.Role,
		DepartmentID: user.DepartmentID,
		IsActive:     user.IsActive,
		Phone:        user.Phone,
		HireDate:     formatDate(user.HireDate),
		CreatedAt:    user.CreatedAt.UTC().Format(timestampLayout),
		UpdatedAt:    user.UpdatedAt.UTC().Format(timestampLayout),
	}
}

// ToDocumentDTO converts Document to DocumentDTO
func ToDocumentDTO(document *domain.Document) domain.DocumentDTO {
	return domain.DocumentDTO{
		ID:                document.ID,
		Title:             document.Title,
		Description:       document.Description,
		FilePath:          document.FilePath,
		FileName:          document.FileName,
		FileSize:          document.FileSize,
		FileSizeFormatted: derive.FormatByteSize(document.FileSize),
		FileExtension:     document.Extension(),
		MimeType:          document.MimeType,
		IsImage:           document.IsImage(),
		IsPDF:             document.IsPDF(),
		Category:          document.Category,
		ClientID:          document.ClientID,
		ProjectID:         document.ProjectID,
		UploadedBy:        document.UploadedBy,
		IsConfidential:    document.IsConfidential,
		CreatedAt:         document.CreatedAt.UTC().Format(timestampLayout),
		UpdatedAt:         document.UpdatedAt.UTC().Format(timestampLayout),
	}
}

// ToContentDTO converts Content to ContentDTO
func ToContentDTO(content *domain.Content) domain.ContentDTO {
	tags := content.Tags
	if tags == nil {
		tags = []string{}
	}
	return domain.ContentDTO{
		ID:                content.ID,
		Title:             content.Title,
		Description:       content.Description,
		Type:              content.Type,
		Category:          content.Category,
		FilePath:          content.FilePath,
		FileName:          content.FileName,
		FileSize:          content.FileSize,
		FileSizeFormatted: derive.FormatByteSize(content.FileSize),
		MimeType:          content.MimeType,
		AltText:           content.AltText,
		Tags:              tags,
		Status:            content.Status,
		ClientID:          content.ClientID,
		ProjectID:         content.ProjectID,
		CreatedBy:         content.CreatedBy,
		ApprovedBy:        content.ApprovedBy,
		ApprovedAt:        formatTimestamp(content.ApprovedAt),
		CreatedAt:         content.CreatedAt.UTC().Format(timestampLayout),
		UpdatedAt:         content.UpdatedAt.UTC().Format(timestampLayout),
	}
}

// FormatError creates a formatted error message
func FormatError(entity, operation string, err error) error {
	return fmt.Errorf("failed to %s %s: %w", operation, entity, err)
}
