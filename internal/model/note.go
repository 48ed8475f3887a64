package model

import "time"

const TableNameNote = "note"

// Note mapped from table <note>
type Note struct {
	ID        string    `gorm:"column:id;type:char(36);primaryKey" json:"id" form:"id"`
	Title     string    `gorm:"column:title;not null;default:''" json:"title" form:"title"`
	Content   string    `gorm:"column:content;type:text" json:"content" form:"content"`
	Tags      []NoteTag `gorm:"foreignKey:NoteID;references:ID;constraint:OnDelete:CASCADE" json:"tags"`
	CreatedAt time.Time `gorm:"column:created_at;index:idx_note_created_at" json:"createdAt" form:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updatedAt" form:"updatedAt"`
}

// TableName Note's table name
func (*Note) TableName() string {
	return TableNameNote
}

const TableNameNoteTag = "note_tag"

// NoteTag mapped from table <note_tag>
type NoteTag struct {
	ID     int64  `gorm:"column:id;primaryKey;autoIncrement" json:"id" form:"id"`
	NoteID string `gorm:"column:note_id;type:char(36);not null;index:idx_note_tag_note,priority:1" json:"noteId" form:"noteId"`
	Tag    string `gorm:"column:tag;size:128;not null" json:"tag" form:"tag"`
	Sort   int    `gorm:"column:sort;not null;default:0;index:idx_note_tag_note,priority:2" json:"sort" form:"sort"`
}

// TableName NoteTag's table name
func (*NoteTag) TableName() string {
	return TableNameNoteTag
}
