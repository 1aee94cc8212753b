package domain

type MailType string

const (
	MailAccountCreated        MailType = "account_created"
	MailPasswordResetComplete MailType = "password_reset_completed"
	MailLeaveDecided          MailType = "leave_decided"
)

type MailMessage struct {
	Type MailType `json:"type"`
	To   string   `json:"to"`
	Data any      `json:"data"`
}

type AccountCreatedMailData struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	EmployeeID string `json:"employeeId"`
	Role       Role   `json:"role"`
}

type PasswordResetMailData struct {
	Name        string `json:"name"`
	NewPassword string `json:"newPassword"`
}

type LeaveDecidedMailData struct {
	Name      string      `json:"name"`
	Reason    string      `json:"reason"`
	StartDate string      `json:"startDate"`
	EndDate   string      `json:"endDate"`
	Status    LeaveStatus `json:"status"`
}
