package model

type DashboardStats struct {
	TotalPatients       int   `db:"total_patients" json:"total_patients"`
	TotalDoctors        int   `db:"total_doctors" json:"total_doctors"`
	AppointmentsToday   int   `db:"appointments_today" json:"appointments_today"`
	ActiveAdmissions    int   `db:"active_admissions" json:"active_admissions"`
	UnpaidInvoices      int   `db:"unpaid_invoices" json:"unpaid_invoices"`
	UnpaidAmountCents   int64 `db:"unpaid_amount_cents" json:"unpaid_amount_cents"`
	UnreadNotifications int   `db:"unread_notifications" json:"unread_notifications"`
}
