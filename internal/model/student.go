package model

import "strings"

// TimestampLayout is the format of StudentRecord.CreatedAt.
const TimestampLayout = "2006-01-02 15:04:05"

// StudentRecord is one persisted CGPA submission. RollKey is unique.
type StudentRecord struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	RollKey   string  `gorm:"column:roll_key;uniqueIndex;not null" json:"rollKey"`
	Name      string  `gorm:"column:name" json:"name"`
	Roll      string  `gorm:"column:roll" json:"roll"`
	Number    string  `gorm:"column:number" json:"number"`
	Semester  int     `gorm:"column:semester" json:"semester"`
	SGPA1     float64 `gorm:"column:sgpa1" json:"sgpa1"`
	SGPA2     float64 `gorm:"column:sgpa2" json:"sgpa2"`
	CGPA      float64 `gorm:"column:cgpa" json:"cgpa"`
	CreatedAt string  `gorm:"column:created_at" json:"createdAt"`
}

func (StudentRecord) TableName() string {
	return "students"
}

// Submission is a coerced calculator request.
type Submission struct {
	Name         string
	Roll         string
	Number       string
	Semester     int
	SGPA1        float64
	SGPA2        float64
	Credit1      int
	Credit2      int
	Confirmation string
}

// RollKey derives the unique record key from the roll and contact number.
func (s Submission) RollKey() string {
	return RollKey(s.Roll, s.Number)
}

func RollKey(roll, number string) string {
	return strings.TrimSpace(roll) + strings.TrimSpace(number)
}
