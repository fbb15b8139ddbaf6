package models

import "github.com/bizhub/backend/internal/domain/partner"

// CustomerModel is the persistence model for partner.Customer
type CustomerModel struct {
	OwnedModel
	Name    string `gorm:"type:varchar(200);not null"`
	Email   string `gorm:"type:varchar(255);index"`
	Phone   string `gorm:"type:varchar(50)"`
	Address string `gorm:"type:text"`
	Notes   string `gorm:"type:text"`
}

func (CustomerModel) TableName() string {
	return "customers"
}

func (m *CustomerModel) ToDomain() *partner.Customer {
	return &partner.Customer{
		OwnedAggregateRoot: m.toOwned(),
		Name:               m.Name,
		Email:              m.Email,
		Phone:              m.Phone,
		Address:            m.Address,
		Notes:              m.Notes,
	}
}

func (m *CustomerModel) FromDomain(c *partner.Customer) {
	m.fromOwned(c.OwnedAggregateRoot)
	m.Name = c.Name
	m.Email = c.Email
	m.Phone = c.Phone
	m.Address = c.Address
	m.Notes = c.Notes
}

func CustomerModelFromDomain(c *partner.Customer) *CustomerModel {
	m := &CustomerModel{}
	m.FromDomain(c)
	return m
}
