package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Primary keys are assigned in the application so inserts behave the same
// under postgres and the sqlite test driver.

func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func (p *Product) BeforeCreate(*gorm.DB) error   { ensureID(&p.ID); return nil }
func (s *Seller) BeforeCreate(*gorm.DB) error    { ensureID(&s.ID); return nil }
func (c *CartLine) BeforeCreate(*gorm.DB) error  { ensureID(&c.ID); return nil }
func (o *Order) BeforeCreate(*gorm.DB) error     { ensureID(&o.ID); return nil }
func (i *OrderItem) BeforeCreate(*gorm.DB) error { ensureID(&i.ID); return nil }
func (p *Promo) BeforeCreate(*gorm.DB) error     { ensureID(&p.ID); return nil }

func (n *Notification) BeforeCreate(*gorm.DB) error { ensureID(&n.ID); return nil }
func (e *OutboxEvent) BeforeCreate(*gorm.DB) error  { ensureID(&e.ID); return nil }
func (d *OutboxDLQ) BeforeCreate(*gorm.DB) error    { ensureID(&d.ID); return nil }
