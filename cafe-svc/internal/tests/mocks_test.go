package tests

import (
	httpapi "cafe-checkout/cafe-svc/internal/api/http"
	"cafe-checkout/cafe-svc/internal/mocks"
	"cafe-checkout/cafe-svc/internal/service"
	"cafe-checkout/cafe-svc/internal/workflow"
)

// The mocks are maintained by hand; these break the build when an interface
// drifts away from its mock.
var (
	_ service.BalanceAPI              = (*mocks.BalanceAPI)(nil)
	_ service.BalanceCache            = (*mocks.BalanceCache)(nil)
	_ service.BalanceServiceInterface = (*mocks.BalanceService)(nil)
	_ service.OrderRepository         = (*mocks.OrderRepository)(nil)
	_ service.OrderPublisher          = (*mocks.OrderPublisher)(nil)
	_ service.OrderServiceInterface   = (*mocks.OrderService)(nil)
	_ service.SalesStore              = (*mocks.SalesStore)(nil)
	_ service.QRGenerator             = (*mocks.QRGenerator)(nil)
	_ service.MessageReader           = (*mocks.MessageReader)(nil)

	_ workflow.Provider       = (*mocks.Provider)(nil)
	_ workflow.BusinessStore  = (*mocks.BusinessStore)(nil)
	_ workflow.OrderStore     = (*mocks.OrderStore)(nil)
	_ workflow.BalanceService = (*mocks.BalanceService)(nil)
	_ workflow.ReceiptFetcher = (*mocks.ReceiptFetcher)(nil)
	_ workflow.Notifier       = (*mocks.Notifier)(nil)

	_ httpapi.SalesReader = (*mocks.SalesStore)(nil)
	_ httpapi.ImagePinner = (*mocks.ImagePinner)(nil)
)
