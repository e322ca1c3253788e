package employee

import (
	"fmt"
	"strings"
	"time"
)

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

func parseDates(f FormFields) (dob, joined time.Time, err error) {
	dob, err = time.Parse(DateLayout, f.DOB)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parse dob: %w", err)
	}
	joined, err = time.Parse(DateLayout, f.DateJoined)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parse date_joined: %w", err)
	}
	return dob, joined, nil
}

func ToIndexViewModel(e Employee) IndexViewModel {
	return IndexViewModel{
		ID:          e.ID,
		EmployeeNo:  e.EmployeeNo,
		ImageURL:    e.ImageURL,
		FullName:    e.FullName,
		Gender:      e.Gender,
		Designation: e.Designation,
		City:        e.City,
		DateJoined:  formatDate(e.DateJoined),
	}
}

// normalizeNINO stores the number in the upper-case form the validator checks.
func normalizeNINO(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func ToIndexViewModels(list []Employee) []IndexViewModel {
	res := make([]IndexViewModel, len(list))
	for i, e := range list {
		res[i] = ToIndexViewModel(e)
	}
	return res
}

// NewEmployeeFromCreateForm copies the submitted fields one to one. ID and
// ImageURL are left for the persistence layer and the image store.
func NewEmployeeFromCreateForm(f CreateForm) (Employee, error) {
	dob, joined, err := parseDates(f.FormFields)
	if err != nil {
		return Employee{}, err
	}

	return Employee{
		EmployeeNo:          f.EmployeeNo,
		FirstName:           f.FirstName,
		MiddleName:          f.MiddleName,
		LastName:            f.LastName,
		FullName:            f.FullName(),
		Gender:              f.Gender,
		Email:               f.Email,
		DOB:                 dob,
		DateJoined:          joined,
		NationalInsuranceNo: normalizeNINO(f.NationalInsuranceNo),
		PaymentMethod:       f.PaymentMethod,
		StudentLoan:         f.StudentLoan,
		UnionMember:         f.UnionMember,
		Address:             f.Address,
		City:                f.City,
		Postcode:            f.Postcode,
		Phone:               f.Phone,
		Designation:         f.Designation,
	}, nil
}

func ToEditForm(e Employee) EditForm {
	return EditForm{
		ID: e.ID,
		FormFields: FormFields{
			EmployeeNo:          e.EmployeeNo,
			FirstName:           e.FirstName,
			MiddleName:          e.MiddleName,
			LastName:            e.LastName,
			Gender:              e.Gender,
			Email:               e.Email,
			DOB:                 formatDate(e.DOB),
			DateJoined:          formatDate(e.DateJoined),
			NationalInsuranceNo: e.NationalInsuranceNo,
			PaymentMethod:       e.PaymentMethod,
			StudentLoan:         e.StudentLoan,
			UnionMember:         e.UnionMember,
			Address:             e.Address,
			City:                e.City,
			Postcode:            e.Postcode,
			Phone:               e.Phone,
			Designation:         e.Designation,
		},
	}
}

// ApplyEditForm overwrites the editable fields of e. e.ID, e.ImageURL and
// e.FullName are never taken from the form. e is left untouched when the dates do not parse.
func ApplyEditForm(e *Employee, f EditForm) error {
	dob, joined, err := parseDates(f.FormFields)
	if err != nil {
		return err
	}

	e.EmployeeNo = f.EmployeeNo
	e.FirstName = f.FirstName
	e.MiddleName = f.MiddleName
	e.LastName = f.LastName
	e.Gender = f.Gender
	e.Email = f.Email
	e.DOB = dob
	e.DateJoined = joined
	e.NationalInsuranceNo = normalizeNINO(f.NationalInsuranceNo)
	e.PaymentMethod = f.PaymentMethod
	e.StudentLoan = f.StudentLoan
	e.UnionMember = f.UnionMember
	e.Address = f.Address
	e.City = f.City
	e.Postcode = f.Postcode
	e.Phone = f.Phone
	e.Designation = f.Designation
	return nil
}

func ToDetailViewModel(e Employee) DetailViewModel {
	return DetailViewModel{
		ID:                  e.ID,
		EmployeeNo:          e.EmployeeNo,
		FullName:            e.FullName,
		Gender:              e.Gender,
		DOB:                 formatDate(e.DOB),
		DateJoined:          formatDate(e.DateJoined),
		Designation:         e.Designation,
		NationalInsuranceNo: e.NationalInsuranceNo,
		Phone:               e.Phone,
		Email:               e.Email,
		PaymentMethod:       e.PaymentMethod,
		StudentLoan:         e.StudentLoan,
		UnionMember:         e.UnionMember,
		Address:             e.Address,
		City:                e.City,
		ImageURL:            e.ImageURL,
		Postcode:            e.Postcode,
	}
}

func ToDeleteViewModel(e Employee) DeleteViewModel {
	return DeleteViewModel{ID: e.ID, FullName: e.FullName}
}
