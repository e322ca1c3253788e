package employee

import (
	"mime/multipart"
	"strings"
)

const DateLayout = "2006-01-02"

type IndexViewModel struct {
	ID          uint    `json:"id"`
	EmployeeNo  string  `json:"employee_no"`
	ImageURL    *string `json:"image_url"`
	FullName    string  `json:"full_name"`
	Gender      string  `json:"gender"`
	Designation string  `json:"designation"`
	City        string  `json:"city"`
	DateJoined  string  `json:"date_joined"`
}

// FormFields is the writable field set shared by the create and edit forms.
type FormFields struct {
	EmployeeNo          string `form:"employee_no" json:"employee_no" binding:"required,max=20"`
	FirstName           string `form:"first_name" json:"first_name" binding:"required,personname,max=50"`
	MiddleName          string `form:"middle_name" json:"middle_name" binding:"omitempty,personname,max=50"`
	LastName            string `form:"last_name" json:"last_name" binding:"required,personname,max=50"`
	Gender              string `form:"gender" json:"gender" binding:"required,oneof=Male Female Other"`
	Email               string `form:"email" json:"email" binding:"required,email"`
	DOB                 string `form:"dob" json:"dob" binding:"required,datetime=2006-01-02"`
	DateJoined          string `form:"date_joined" json:"date_joined" binding:"required,datetime=2006-01-02"`
	NationalInsuranceNo string `form:"national_insurance_no" json:"national_insurance_no" binding:"required,nino"`
	PaymentMethod       string `form:"payment_method" json:"payment_method" binding:"required,oneof=Cash Cheque BACS"`
	StudentLoan         bool   `form:"student_loan" json:"student_loan"`
	UnionMember         bool   `form:"union_member" json:"union_member"`
	Address             string `form:"address" json:"address" binding:"required,max=150"`
	City                string `form:"city" json:"city" binding:"required,max=50"`
	Postcode            string `form:"postcode" json:"postcode" binding:"required,max=10"`
	Phone               string `form:"phone" json:"phone" binding:"omitempty,max=20"`
	Designation         string `form:"designation" json:"designation" binding:"required,max=100"`
}

type CreateForm struct {
	FormFields
	Image *multipart.FileHeader `form:"image" json:"-"`
}

// FullName joins the non-empty name parts.
func (f FormFields) FullName() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{f.FirstName, f.MiddleName, f.LastName} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

type EditForm struct {
	ID uint `form:"id" json:"id" binding:"required"`
	FormFields
	Image *multipart.FileHeader `form:"image" json:"-"`
}

type DetailViewModel struct {
	ID                  uint    `json:"id"`
	EmployeeNo          string  `json:"employee_no"`
	FullName            string  `json:"full_name"`
	Gender              string  `json:"gender"`
	DOB                 string  `json:"dob"`
	DateJoined          string  `json:"date_joined"`
	Designation         string  `json:"designation"`
	NationalInsuranceNo string  `json:"national_insurance_no"`
	Phone               string  `json:"phone"`
	Email               string  `json:"email"`
	PaymentMethod       string  `json:"payment_method"`
	StudentLoan         bool    `json:"student_loan"`
	UnionMember         bool    `json:"union_member"`
	Address             string  `json:"address"`
	City                string  `json:"city"`
	ImageURL            *string `json:"image_url"`
	Postcode            string  `json:"postcode"`
}

type DeleteViewModel struct {
	ID       uint   `form:"id" json:"id"`
	FullName string `form:"full_name" json:"full_name"`
}

// FormView is what every form-rendering response carries.
type FormView struct {
	Form             any    `json:"form"`
	AntiForgeryToken string `json:"antiforgery_token"`
}
