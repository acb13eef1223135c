// firestore.go — production-бэкенд Store поверх Google Cloud Firestore.
package docstore

import (
	"context"
	"fmt"
	"log/slog"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/firestore/apiv1/firestorepb"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreStore — реализация Store поверх Firestore.
type FirestoreStore struct {
	client *firestore.Client
	logger *slog.Logger
}

// NewFirestoreStore создаёт подключение к Firestore.
// credentialsFile может быть пустым: тогда используются
// Application Default Credentials.
func NewFirestoreStore(ctx context.Context, projectID, credentialsFile string, logger *slog.Logger) (*FirestoreStore, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("подключение к Firestore: %w", err)
	}

	return &FirestoreStore{
		client: client,
		logger: logger.With(slog.String("component", "firestore")),
	}, nil
}

// Close закрывает подключение к Firestore.
func (s *FirestoreStore) Close() error {
	return s.client.Close()
}

// Query возвращает документы коллекции с учётом ограничений.
// Выборка по FieldDocumentID транслируется в прямое чтение документа.
func (s *FirestoreStore) Query(ctx context.Context, collection string, constraints ...Constraint) ([]Document, error) {
	if id, ok := documentIDLookup(constraints); ok {
		return s.getByID(ctx, collection, id)
	}

	q := s.client.Collection(collection).Query
	for _, c := range constraints {
		switch {
		case c.IsWhere():
			q = q.Where(c.Field, c.Op, c.Value)
		case c.IsOrderBy():
			dir := firestore.Asc
			if c.Desc {
				dir = firestore.Desc
			}
			q = q.OrderBy(c.Field, dir)
		case c.IsLimit():
			q = q.Limit(c.N)
		}
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var docs []Document
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, s.mapError(err, collection, constraints)
		}
		docs = append(docs, Document{ID: snap.Ref.ID, Fields: snap.Data()})
	}
	return docs, nil
}

// Count выполняет server-side агрегацию count по ограничениям.
func (s *FirestoreStore) Count(ctx context.Context, collection string, constraints ...Constraint) (int, error) {
	q := s.client.Collection(collection).Query
	for _, c := range constraints {
		if c.IsWhere() {
			q = q.Where(c.Field, c.Op, c.Value)
		}
	}

	res, err := q.NewAggregationQuery().WithCount("total").Get(ctx)
	if err != nil {
		return 0, s.mapError(err, collection, constraints)
	}

	v, ok := res["total"]
	if !ok {
		return 0, fmt.Errorf("коллекция %s: агрегация не вернула total", collection)
	}
	pb, ok := v.(*firestorepb.Value)
	if !ok {
		return 0, fmt.Errorf("коллекция %s: неожиданный тип агрегата %T", collection, v)
	}
	return int(pb.GetIntegerValue()), nil
}

// Insert добавляет документ с автогенерируемым ID.
func (s *FirestoreStore) Insert(ctx context.Context, collection string, fields map[string]any) (string, error) {
	ref, _, err := s.client.Collection(collection).Add(ctx, fields)
	if err != nil {
		return "", s.mapError(err, collection, nil)
	}
	return ref.ID, nil
}

// Ping проверяет доступность Firestore листингом коллекций.
func (s *FirestoreStore) Ping(ctx context.Context) error {
	iter := s.client.Collections(ctx)
	if _, err := iter.Next(); err != nil && err != iterator.Done {
		return s.mapError(err, "", nil)
	}
	return nil
}

// getByID читает документ напрямую по ID.
// Отсутствие документа не считается ошибкой: выборка пуста.
func (s *FirestoreStore) getByID(ctx context.Context, collection, id string) ([]Document, error) {
	snap, err := s.client.Collection(collection).Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, nil
	}
	if err != nil {
		return nil, s.mapError(err, collection, nil)
	}
	return []Document{{ID: snap.Ref.ID, Fields: snap.Data()}}, nil
}

// documentIDLookup распознаёт запрос вида Where(__name__, ==, id).
func documentIDLookup(constraints []Constraint) (string, bool) {
	for _, c := range constraints {
		if c.IsWhere() && c.Field == FieldDocumentID && c.Op == OpEqual {
			if id, ok := c.Value.(string); ok {
				return id, true
			}
		}
	}
	return "", false
}

// mapError транслирует gRPC-статусы Firestore в ошибки слоя хранилища.
func (s *FirestoreStore) mapError(err error, collection string, constraints []Constraint) error {
	switch status.Code(err) {
	case codes.FailedPrecondition:
		// Firestore отвечает FailedPrecondition на запросы без
		// составного индекса. Сообщение с URL создания индекса
		// уходит в лог, вызывающему возвращается типизированная ошибка.
		s.logger.Warn("Firestore требует составной индекс",
			slog.String("collection", collection),
			slog.String("details", err.Error()))
		return &IndexRequiredError{
			Collection: collection,
			Fields:     constraintFields(constraints),
		}
	case codes.Unavailable, codes.DeadlineExceeded:
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	default:
		return err
	}
}

// constraintFields собирает поля ограничений для IndexRequiredError.
func constraintFields(constraints []Constraint) []string {
	var fields []string
	for _, c := range constraints {
		if (c.IsWhere() || c.IsOrderBy()) && c.Field != FieldDocumentID {
			fields = append(fields, c.Field)
		}
	}
	return fields
}
