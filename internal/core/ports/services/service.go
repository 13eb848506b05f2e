package services

// ServiceContainer holds the service facades handed to the HTTP layer.
type ServiceContainer struct {
	Account  AccountSvcFacade
	Voucher  VoucherSvcFacade
	Writeoff WriteoffSvcFacade
}
