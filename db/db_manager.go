package db

import (
	"context"
	"log"

	"imagerecog/models"
)

// Operation represents a database operation that needs to be executed
type Operation struct {
	Execute func() error
	Result  chan error
}

// OperationWithResult represents a database operation that returns a result
type OperationWithResult struct {
	Execute func() (interface{}, error)
	Result  chan OperationResult
}

// OperationResult contains the result of an operation
type OperationResult struct {
	Data  interface{}
	Error error
}

// DBManager manages serialized access to the database. All account mutations
// funnel through a single worker goroutine, which keeps the SQLite backend
// free of write contention while the HTTP handlers run concurrently.
type DBManager struct {
	opQueue       chan Operation
	resultOpQueue chan OperationWithResult
	stopping      chan struct{}
}

// NewDBManager creates a new database manager
func NewDBManager() *DBManager {
	m := &DBManager{
		opQueue:       make(chan Operation, 100),
		resultOpQueue: make(chan OperationWithResult, 100),
		stopping:      make(chan struct{}),
	}

	go m.worker()
	log.Println("Database access manager started")

	return m
}

// worker processes operations one at a time
func (m *DBManager) worker() {
	for {
		select {
		case op := <-m.opQueue:
			err := op.Execute()
			op.Result <- err
		case op := <-m.resultOpQueue:
			data, err := op.Execute()
			op.Result <- OperationResult{Data: data, Error: err}
		case <-m.stopping:
			return
		}
	}
}

// ExecuteOperation executes a database operation on the worker goroutine
func (m *DBManager) ExecuteOperation(execute func() error) error {
	resultChan := make(chan error, 1)
	m.opQueue <- Operation{
		Execute: execute,
		Result:  resultChan,
	}
	return <-resultChan
}

// ExecuteOperationWithResult executes a database operation that returns a result
func (m *DBManager) ExecuteOperationWithResult(execute func() (interface{}, error)) (interface{}, error) {
	resultChan := make(chan OperationResult, 1)
	m.resultOpQueue <- OperationWithResult{
		Execute: execute,
		Result:  resultChan,
	}
	result := <-resultChan
	return result.Data, result.Error
}

// Stop stops the database manager
func (m *DBManager) Stop() {
	close(m.stopping)
}

// Methods for specific repository operations

// CreateUser serializes access to account creation
func (m *DBManager) CreateUser(repo UserRepository, ctx context.Context, user *models.User) error {
	return m.ExecuteOperation(func() error {
		return repo.Create(ctx, user)
	})
}

// DebitToken serializes access to the conditional token decrement
func (m *DBManager) DebitToken(repo UserRepository, ctx context.Context, username string) (int, error) {
	result, err := m.ExecuteOperationWithResult(func() (interface{}, error) {
		return repo.DebitToken(ctx, username)
	})
	if err != nil {
		return 0, err
	}
	return result.(int), nil
}

// SetTokens serializes access to the refill overwrite
func (m *DBManager) SetTokens(repo UserRepository, ctx context.Context, username string, tokens int) error {
	return m.ExecuteOperation(func() error {
		return repo.UpdateTokens(ctx, username, tokens)
	})
}
