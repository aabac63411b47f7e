package models

// Email is the stored email record, shared by the API and the store backends
type Email struct {
	ID      int64  `json:"id" db:"id" gorm:"column:id;primaryKey;autoIncrement"`
	Subject string `json:"subject" db:"subject" gorm:"column:subject;type:text;not null"`
	Message string `json:"message" db:"message" gorm:"column:message;type:text;not null"`
}

// TableName keeps gorm on the same table name as the SQL backends
func (Email) TableName() string {
	return "Emails"
}

// NewEmail is the input for creating a record. The id is always assigned by the store.
type NewEmail struct {
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// EmailPatch is a partial update: nil fields keep their stored value
type EmailPatch struct {
	Subject *string `json:"subject"`
	Message *string `json:"message"`
}

// Empty reports whether the patch changes nothing
func (p EmailPatch) Empty() bool {
	return p.Subject == nil && p.Message == nil
}

// Apply merges the patch into e and returns the result
func (p EmailPatch) Apply(e Email) Email {
	if p.Subject != nil {
		e.Subject = *p.Subject
	}
	if p.Message != nil {
		e.Message = *p.Message
	}
	return e
}

// EmailFilter matches records by exact field values; nil fields match anything
type EmailFilter struct {
	Subject *string
	Message *string
}

// Matches reports whether e satisfies every set field of the filter
func (f EmailFilter) Matches(e Email) bool {
	if f.Subject != nil && e.Subject != *f.Subject {
		return false
	}
	if f.Message != nil && e.Message != *f.Message {
		return false
	}
	return true
}

// BySubject is a shorthand filter on the subject column
func BySubject(subject string) EmailFilter {
	return EmailFilter{Subject: &subject}
}
