package db

import (
	"fmt"

	"gorm.io/gorm"

	creditcarddomain "homecash/internal/domain/creditcard"
	expensedomain "homecash/internal/domain/expense"
	housedomain "homecash/internal/domain/house"
	invoicedomain "homecash/internal/domain/invoice"
	userdomain "homecash/internal/domain/user"
)

// Migrate creates or updates the schema for every domain model. Table and
// index definitions come from the gorm struct tags on the models themselves.
func Migrate(gormDB *gorm.DB) error {
	err := gormDB.AutoMigrate(
		&userdomain.User{},
		&housedomain.House{},
		&housedomain.HouseMember{},
		&creditcarddomain.CreditCard{},
		&expensedomain.Expense{},
		&expensedomain.Participant{},
		&invoicedomain.Invoice{},
		&invoicedomain.InvoiceExpense{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
