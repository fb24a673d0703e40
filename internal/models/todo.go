package models

// Todo belongs to the user whose email is OwnerEmail. The link is not a
// foreign key.
type Todo struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	OwnerEmail string `gorm:"column:email;index;size:100;not null" json:"-"`
	Text       string `gorm:"column:todo_text;type:text" json:"todo_text"`
}
