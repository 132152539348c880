package model

import "time"

// Notification type names. The catalog only ever holds these values.
const (
	TypeTopPriorities        = "TOP_PRIORITIES"
	TypeScoreChanges         = "SCORE_CHANGES"
	TypeBudgetingAndSpending = "BUDGETING_AND_SPENDING"
	TypeProfileUpdates       = "PROFILE_UPDATES"
	TypeReportsAndRecaps     = "REPORTS_AND_RECAPS"
)

// TypeChoice pairs a notification type name with its display label.
type TypeChoice struct {
	Name  string
	Label string
}

// TypeChoices is the fixed vocabulary in catalog order.
var TypeChoices = []TypeChoice{
	{TypeTopPriorities, "Top Priorities"},
	{TypeScoreChanges, "Score Changes"},
	{TypeBudgetingAndSpending, "Budgeting & Spending"},
	{TypeProfileUpdates, "Profile Updates"},
	{TypeReportsAndRecaps, "Reports & Recaps"},
}

// IsValidTypeName reports whether name belongs to the vocabulary.
func IsValidTypeName(name string) bool {
	for _, c := range TypeChoices {
		if c.Name == name {
			return true
		}
	}
	return false
}

// TypeLabel returns the display label for name, or name itself if unknown.
func TypeLabel(name string) string {
	for _, c := range TypeChoices {
		if c.Name == name {
			return c.Label
		}
	}
	return name
}

type Frequency string

const (
	FrequencyInstantly    Frequency = "INSTANTLY"
	FrequencyPeriodically Frequency = "PERIODICALLY"
	FrequencyRarely       Frequency = "RARELY"
)

// DefaultFrequency is assigned to every seeded preference.
const DefaultFrequency = FrequencyInstantly

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyInstantly, FrequencyPeriodically, FrequencyRarely:
		return true
	}
	return false
}

type NotificationType struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"-"`
}

type NotificationPreference struct {
	ID               int64            `json:"id"`
	UserID           int64            `json:"-"`
	NotificationType NotificationType `json:"notification_type"`
	Frequency        Frequency        `json:"frequency"`
	Email            bool             `json:"email"`
	Push             bool             `json:"push"`
	SMS              bool             `json:"sms"`
	CreatedAt        time.Time        `json:"-"`
	UpdatedAt        time.Time        `json:"-"`
}

// PreferencePatch is a partial update. Nil fields are left unchanged.
type PreferencePatch struct {
	Frequency *Frequency
	Email     *bool
	Push      *bool
	SMS       *bool
}

// Apply copies the set fields of the patch onto p.
func (pp PreferencePatch) Apply(p *NotificationPreference) {
	if pp.Frequency != nil {
		p.Frequency = *pp.Frequency
	}
	if pp.Email != nil {
		p.Email = *pp.Email
	}
	if pp.Push != nil {
		p.Push = *pp.Push
	}
	if pp.SMS != nil {
		p.SMS = *pp.SMS
	}
}
