package employee

import (
	"time"
)

type Employee struct {
	ID                  uint   `gorm:"primaryKey"`
	EmployeeNo          string `gorm:"uniqueIndex:uq_employee_no;not null"`
	FirstName           string `gorm:"size:50;not null"`
	MiddleName          string `gorm:"size:50"`
	LastName            string `gorm:"size:50;not null"`
	FullName            string
	Gender              string
	Email               string    `gorm:"uniqueIndex:uq_employee_email;not null"`
	DOB                 time.Time `gorm:"type:date"`
	DateJoined          time.Time `gorm:"type:date"`
	NationalInsuranceNo string    `gorm:"size:9;not null"`
	PaymentMethod       string
	StudentLoan         bool
	UnionMember         bool
	Address             string `gorm:"size:150;not null"`
	City                string `gorm:"size:50;not null"`
	Postcode            string `gorm:"size:10;not null"`
	Phone               string
	Designation         string `gorm:"not null"`
	ImageURL            *string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}
