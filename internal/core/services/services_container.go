package services

import (
	portsrepo "github.com/ledgerkeep/ledgerkeep/internal/core/ports/repositories"
	portssvc "github.com/ledgerkeep/ledgerkeep/internal/core/ports/services"
)

// RepositoryProvider bundles the repository facades the services are built from.
type RepositoryProvider struct {
	Account   portsrepo.AccountRepositoryFacade
	Voucher   portsrepo.VoucherRepositoryWithTx
	Reference portsrepo.ReferenceReader
}

// NewServiceContainer wires the full service graph from repositories and the
// write-off configuration.
func NewServiceContainer(repos RepositoryProvider, writeoffCfg WriteoffConfig) (*portssvc.ServiceContainer, error) {
	accountSvc := NewAccountService(repos.Account)

	writeoffSvc, err := NewWriteoffService(repos.Voucher, repos.Account, writeoffCfg)
	if err != nil {
		return nil, err
	}

	voucherSvc := NewVoucherService(repos.Voucher, accountSvc, repos.Reference, writeoffSvc)

	return &portssvc.ServiceContainer{
		Account:  accountSvc,
		Voucher:  voucherSvc,
		Writeoff: writeoffSvc,
	}, nil
}
