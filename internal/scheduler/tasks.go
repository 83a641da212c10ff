package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskRepairReminder = "repairs.reminder"

// RepairReminderPayload identifies the booking a reminder concerns.
type RepairReminderPayload struct {
	BookingID string `json:"bookingId"`
}

// reminderTaskID derives a stable task ID so a booking holds at most one
// pending reminder and cancellation can address it without a lookup.
func reminderTaskID(bookingID string) string {
	return "repairs:reminder:" + bookingID
}

func NewRepairReminderTask(payload RepairReminderPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRepairReminder, data), nil
}

func ParseRepairReminderPayload(task *asynq.Task) (RepairReminderPayload, error) {
	var payload RepairReminderPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return RepairReminderPayload{}, err
	}
	return payload, nil
}
