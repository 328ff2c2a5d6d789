package repository

import (
	"errors"
	"sync/atomic"

	"gorm.io/gorm"
)

var (
	ErrDBNotReady = errors.New("database not initialized")
	// ErrNotPending is returned when a conditional transition finds the row already processed.
	ErrNotPending = errors.New("row is not pending")
)

// Page bounds list queries.
type Page struct {
	Limit  int
	Offset int
}

func (p Page) normalize(def, max int) Page {
	if p.Limit <= 0 || p.Limit > max {
		p.Limit = def
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// dbHandle holds a connection that can be injected after requests start arriving.
type dbHandle struct {
	p atomic.Pointer[gorm.DB]
}

func (h *dbHandle) SetDB(db *gorm.DB) {
	h.p.Store(db)
}

func (h *dbHandle) get() *gorm.DB {
	return h.p.Load()
}
