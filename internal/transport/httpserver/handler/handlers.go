package handler

import (
	"homecash/internal/auth"
	creditcarddomain "homecash/internal/domain/creditcard"
	expensedomain "homecash/internal/domain/expense"
	housedomain "homecash/internal/domain/house"
	invoicedomain "homecash/internal/domain/invoice"
	"homecash/pkg/logger"
)

type Handlers struct {
	Houses      *housedomain.Service
	Expenses    *expensedomain.Service
	CreditCards *creditcarddomain.Service
	Invoices    *invoicedomain.Service

	authenticator *auth.Authenticator
	tokens        *auth.TokenManager
	log           logger.Logger
}

func New(
	houses *housedomain.Service,
	expenses *expensedomain.Service,
	creditCards *creditcarddomain.Service,
	invoices *invoicedomain.Service,
	authenticator *auth.Authenticator,
	tokens *auth.TokenManager,
	log logger.Logger,
) *Handlers {
	return &Handlers{
		Houses:        houses,
		Expenses:      expenses,
		CreditCards:   creditCards,
		Invoices:      invoices,
		authenticator: authenticator,
		tokens:        tokens,
		log:           log,
	}
}
