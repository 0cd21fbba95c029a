package store

import "guestbook/pkg/domain"

// EntryModel is the GORM row for a guestbook entry. The table name is chosen
// per store instance, see GormStore.
type EntryModel struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	Name      string `gorm:"type:text;not null"`
	Message   string `gorm:"type:text;not null"`
	Timestamp string `gorm:"column:timestamp;type:text;not null"`
}

func entryToModel(e domain.Entry) EntryModel {
	return EntryModel{
		Name:      e.Name,
		Message:   e.Message,
		Timestamp: e.Timestamp,
	}
}

func entryFromModel(m EntryModel) domain.Entry {
	return domain.Entry{
		ID:        m.ID,
		Name:      m.Name,
		Message:   m.Message,
		Timestamp: m.Timestamp,
	}
}
