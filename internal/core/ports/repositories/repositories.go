package repositories

// RepositoryProvider holds all repository interfaces needed by services.
type RepositoryProvider struct {
	TxManager   TransactionManager
	AccountRepo AccountRepositoryFacade
	LedgerRepo  LedgerRepositoryFacade
	MappingRepo MappingReader
	BudgetRepo  BudgetRepository
	BillingRepo BillingReader
	EventQueue  EventQueue
}
