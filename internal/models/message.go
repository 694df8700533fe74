package models

import "time"

// Message is a contact form submission.
type Message struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(32)"`
	UserID    string    `json:"userId" gorm:"index;type:varchar(32)"`
	UserName  string    `json:"userName" gorm:"type:varchar(100)"`
	UserEmail string    `json:"userEmail" gorm:"type:varchar(255)"`
	Subject   string    `json:"subject" gorm:"type:varchar(200)"`
	Message   string    `json:"message" gorm:"type:text"`
	CreatedAt time.Time `json:"createdAt"`
	Read      bool      `json:"read"`
}

// EnrichedMessage is a message together with the sender's phone number,
// looked up from the member store when messages are listed.
type EnrichedMessage struct {
	Message
	UserPhone *string `json:"userPhone"`
}
