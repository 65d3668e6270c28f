package tax

import (
	"time"

	"github.com/google/uuid"

	"github.com/taxpilot/backend/internal/domain/shared"
)

// ReturnStatus represents the lifecycle state of a tax return
type ReturnStatus string

const (
	ReturnStatusIntake      ReturnStatus = "intake"
	ReturnStatusInReview    ReturnStatus = "in_review"
	ReturnStatusReadyToFile ReturnStatus = "ready_to_file"
	ReturnStatusFiled       ReturnStatus = "filed"
	ReturnStatusAccepted    ReturnStatus = "accepted"
	ReturnStatusRejected    ReturnStatus = "rejected"
)

// FilingStatus is the IRS filing status declared on the return
type FilingStatus string

const (
	FilingStatusSingle          FilingStatus = "single"
	FilingStatusMarriedJoint    FilingStatus = "married_joint"
	FilingStatusMarriedSeparate FilingStatus = "married_separate"
	FilingStatusHeadOfHousehold FilingStatus = "head_of_household"
)

// TaxReturn is the aggregate root for a single client's return for a
// single tax year. One return per client per year is enforced by the
// persistence layer.
type TaxReturn struct {
	shared.OwnedAggregateRoot
	ClientID     uuid.UUID    `gorm:"type:uuid;not null;index:idx_returns_client_year,unique"`
	TaxYear      int          `gorm:"not null;index:idx_returns_client_year,unique"`
	FilingStatus FilingStatus `gorm:"type:varchar(20);not null"`
	Status       ReturnStatus `gorm:"type:varchar(20);not null;default:'intake'"`
	PreparerID   *uuid.UUID   `gorm:"type:uuid;index"`
	Notes        string       `gorm:"type:text"`
	FiledAt      *time.Time
	ResolvedAt   *time.Time
	RejectReason string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (TaxReturn) TableName() string {
	return "tax_returns"
}

// NewTaxReturn opens a return in the intake state
func NewTaxReturn(clientID uuid.UUID, taxYear int, filingStatus FilingStatus) (*TaxReturn, error) {
	if clientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CLIENT", "Client ID is required")
	}
	currentYear := time.Now().Year()
	if taxYear < 2000 || taxYear > currentYear {
		return nil, shared.NewDomainError("INVALID_TAX_YEAR", "Tax year is out of range")
	}
	if err := validateFilingStatus(filingStatus); err != nil {
		return nil, err
	}

	tr := &TaxReturn{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(),
		ClientID:           clientID,
		TaxYear:            taxYear,
		FilingStatus:       filingStatus,
		Status:             ReturnStatusIntake,
	}

	tr.AddDomainEvent(NewReturnOpenedEvent(tr))

	return tr, nil
}

// AssignPreparer assigns the preparer responsible for the return
func (tr *TaxReturn) AssignPreparer(preparerID uuid.UUID) error {
	if tr.IsResolved() {
		return shared.NewDomainError("RETURN_RESOLVED", "Cannot reassign a resolved return")
	}
	tr.PreparerID = &preparerID
	tr.UpdatedAt = time.Now()
	tr.IncrementVersion()
	return nil
}

// StartReview moves the return from intake to in review.
// A preparer must be assigned first.
func (tr *TaxReturn) StartReview() error {
	if tr.Status != ReturnStatusIntake {
		return shared.NewDomainError("INVALID_TRANSITION", "Only intake returns can enter review")
	}
	if tr.PreparerID == nil {
		return shared.NewDomainError("NO_PREPARER", "Assign a preparer before starting review")
	}
	tr.Status = ReturnStatusInReview
	tr.UpdatedAt = time.Now()
	tr.IncrementVersion()
	return nil
}

// MarkReady moves the return from in review to ready to file
func (tr *TaxReturn) MarkReady() error {
	if tr.Status != ReturnStatusInReview {
		return shared.NewDomainError("INVALID_TRANSITION", "Only in-review returns can be marked ready")
	}
	tr.Status = ReturnStatusReadyToFile
	tr.UpdatedAt = time.Now()
	tr.IncrementVersion()
	return nil
}

// File submits the return
func (tr *TaxReturn) File() error {
	if tr.Status != ReturnStatusReadyToFile {
		return shared.NewDomainError("INVALID_TRANSITION", "Only ready returns can be filed")
	}
	now := time.Now()
	tr.Status = ReturnStatusFiled
	tr.FiledAt = &now
	tr.UpdatedAt = now
	tr.IncrementVersion()

	tr.AddDomainEvent(NewReturnFiledEvent(tr))

	return nil
}

// Accept records acceptance of a filed return
func (tr *TaxReturn) Accept() error {
	if tr.Status != ReturnStatusFiled {
		return shared.NewDomainError("INVALID_TRANSITION", "Only filed returns can be accepted")
	}
	now := time.Now()
	tr.Status = ReturnStatusAccepted
	tr.ResolvedAt = &now
	tr.UpdatedAt = now
	tr.IncrementVersion()
	return nil
}

// Reject records rejection of a filed return. Rejected returns go back
// through review via ReopenReview.
func (tr *TaxReturn) Reject(reason string) error {
	if tr.Status != ReturnStatusFiled {
		return shared.NewDomainError("INVALID_TRANSITION", "Only filed returns can be rejected")
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Rejection reason is required")
	}
	now := time.Now()
	tr.Status = ReturnStatusRejected
	tr.RejectReason = reason
	tr.ResolvedAt = &now
	tr.UpdatedAt = now
	tr.IncrementVersion()
	return nil
}

// ReopenReview sends a rejected return back to review for correction
func (tr *TaxReturn) ReopenReview() error {
	if tr.Status != ReturnStatusRejected {
		return shared.NewDomainError("INVALID_TRANSITION", "Only rejected returns can be reopened")
	}
	tr.Status = ReturnStatusInReview
	tr.FiledAt = nil
	tr.ResolvedAt = nil
	tr.RejectReason = ""
	tr.UpdatedAt = time.Now()
	tr.IncrementVersion()
	return nil
}

// IsResolved returns true once the return reached a terminal state
func (tr *TaxReturn) IsResolved() bool {
	return tr.Status == ReturnStatusAccepted
}

func validateFilingStatus(fs FilingStatus) error {
	switch fs {
	case FilingStatusSingle, FilingStatusMarriedJoint, FilingStatusMarriedSeparate, FilingStatusHeadOfHousehold:
		return nil
	default:
		return shared.NewDomainError("INVALID_FILING_STATUS", "Invalid filing status")
	}
}
