package repository

import (
	"context"
	"fmt"

	"productsapp/pkg/metrics"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

const serviceName = "productsapp"

type mongoTxManager struct {
	client *mongo.Client
}

// NewTxManager создает менеджер транзакций поверх MongoDB сессий.
// Требует replica set: на standalone mongod транзакции не поддерживаются
func NewTxManager(client *mongo.Client) TxManager {
	return &mongoTxManager{client: client}
}

// RunAtomic выполняет fn внутри одной MongoDB транзакции.
// Репозитории, вызванные с переданным в fn контекстом, автоматически
// попадают в сессию. Ошибка fn откатывает транзакцию целиком:
// конкурентные читатели видят либо состояние до, либо после, но
// никогда промежуточное. Транзитные ошибки коммита драйвер
// ретраит сам внутри WithTransaction
func (m *mongoTxManager) RunAtomic(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := m.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start mongo session: %w", err)
	}
	defer session.EndSession(ctx)

	txnOpts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		return nil, fn(sessCtx)
	}, txnOpts)

	metrics.RecordTransaction(serviceName, err == nil)

	if err != nil {
		return fmt.Errorf("transaction aborted: %w", err)
	}

	return nil
}
