package events

import "time"

const EmployeeLifecycleTopic = "payway.employee.lifecycle.v1"

const (
	EmployeeCreated = "employee_created"
	EmployeeUpdated = "employee_updated"
	EmployeeDeleted = "employee_deleted"
)

type EmployeeLifecycleEvent struct {
	EventType  string    `json:"event_type"`
	RequestID  string    `json:"request_id,omitempty"`
	EmployeeID uint      `json:"employee_id"`
	EmployeeNo string    `json:"employee_no,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
