package email

const (
	subjectWelcome           = "Welcome to the boatyard portal"
	subjectBookingFmt        = "Repair request %s received"
	subjectAssignmentFmt     = "A technician has been assigned to %s"
	subjectStatusUpdateFmt   = "Update on repair request %s"
	subjectCancellationFmt   = "Repair request %s cancelled"
	subjectInvoiceFmt        = "Invoice for repair request %s"
	subjectPaymentReceiptFmt = "Payment received for repair request %s"
	subjectReminderFmt       = "Reminder: your boat service %s is coming up"
)
