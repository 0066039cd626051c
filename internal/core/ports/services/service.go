package services

// ServiceContainer holds instances of all the application services.
type ServiceContainer struct {
	AccountTree AccountTreeSvc
	Ledger      LedgerSvcFacade
	Mapping     MappingResolverSvc
	Generators  GeneratorSvc
	Budget      BudgetSvcFacade
}
