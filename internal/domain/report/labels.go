package report

import (
	"time"

	"github.com/cmlabs-hris/timecard-backend-go/internal/domain/timecard"
)

const DefaultLocale = "en"

var LocaleValues = []string{"en", "pt-BR"}

// DayStatus is the status shown for one attendance row.
type DayStatus string

const (
	DayStatusApproved   DayStatus = "approved"
	DayStatusPending    DayStatus = "pending"
	DayStatusRejected   DayStatus = "rejected"
	DayStatusInProgress DayStatus = "in_progress"
	DayStatusInvalid    DayStatus = "invalid"
)

// Labels are the display strings of one locale.
type Labels struct {
	Weekdays      [7]string
	Statuses      map[DayStatus]string
	ScheduleTypes map[timecard.ScheduleType]string
	NoSchedule    string
}

var locales = map[string]Labels{
	"en": {
		Weekdays: [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"},
		Statuses: map[DayStatus]string{
			DayStatusApproved:   "Approved",
			DayStatusPending:    "Pending",
			DayStatusRejected:   "Rejected",
			DayStatusInProgress: "In progress",
			DayStatusInvalid:    "Invalid",
		},
		ScheduleTypes: map[timecard.ScheduleType]string{
			timecard.ScheduleType5x2:          "5x2 (five days on, two off)",
			timecard.ScheduleType6x1:          "6x1 (six days on, one off)",
			timecard.ScheduleType12x36:        "12x36 (12h on, 36h off)",
			timecard.ScheduleTypeShift:        "Shift",
			timecard.ScheduleTypeFlexible:     "Flexible",
			timecard.ScheduleTypeIntermittent: "Intermittent",
		},
		NoSchedule: "No schedule",
	},
	"pt-BR": {
		Weekdays: [7]string{"Domingo", "Segunda-feira", "Terça-feira", "Quarta-feira", "Quinta-feira", "Sexta-feira", "Sábado"},
		Statuses: map[DayStatus]string{
			DayStatusApproved:   "Aprovado",
			DayStatusPending:    "Pendente",
			DayStatusRejected:   "Rejeitado",
			DayStatusInProgress: "Em andamento",
			DayStatusInvalid:    "Inválido",
		},
		ScheduleTypes: map[timecard.ScheduleType]string{
			timecard.ScheduleType5x2:          "5x2 (cinco dias de trabalho, dois de folga)",
			timecard.ScheduleType6x1:          "6x1 (seis dias de trabalho, um de folga)",
			timecard.ScheduleType12x36:        "12x36 (12h de trabalho, 36h de descanso)",
			timecard.ScheduleTypeShift:        "Turno",
			timecard.ScheduleTypeFlexible:     "Flexível",
			timecard.ScheduleTypeIntermittent: "Intermitente",
		},
		NoSchedule: "Sem escala",
	},
}

// LabelsFor returns the labels of locale, falling back to DefaultLocale.
func LabelsFor(locale string) Labels {
	if l, ok := locales[locale]; ok {
		return l
	}
	return locales[DefaultLocale]
}

func (l Labels) Weekday(d time.Weekday) string {
	return l.Weekdays[d]
}

func (l Labels) Status(s DayStatus) string {
	if label, ok := l.Statuses[s]; ok {
		return label
	}
	return string(s)
}

func (l Labels) ScheduleType(schedule *timecard.WorkSchedule) string {
	if schedule == nil {
		return l.NoSchedule
	}
	if label, ok := l.ScheduleTypes[schedule.Type]; ok {
		return label
	}
	return string(schedule.Type)
}
