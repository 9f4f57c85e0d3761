package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreConfig selects the Firebase project and service-account credentials.
// CredentialsJSON wins over CredentialsFile; with neither set the application
// default credentials are used.
type FirestoreConfig struct {
	ProjectID       string
	CredentialsJSON []byte
	CredentialsFile string
}

type firestoreBackend struct {
	client *firestore.Client
}

// NewFirestore opens a Firestore client through the Firebase admin SDK and
// returns a Gateway over it.
func NewFirestore(ctx context.Context, cfg FirestoreConfig, logger *slog.Logger) (*Gateway, error) {
	var opts []option.ClientOption
	switch {
	case len(cfg.CredentialsJSON) > 0:
		opts = append(opts, option.WithCredentialsJSON(cfg.CredentialsJSON))
	case cfg.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	var fbCfg *firebase.Config
	if cfg.ProjectID != "" {
		fbCfg = &firebase.Config{ProjectID: cfg.ProjectID}
	}

	app, err := firebase.NewApp(ctx, fbCfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("store: init firebase app: %w", err)
	}
	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: open firestore: %w", err)
	}
	return newGateway(&firestoreBackend{client: client}, logger), nil
}

func (f *firestoreBackend) get(ctx context.Context, collection, key string) (Document, bool, error) {
	snap, err := f.client.Collection(collection).Doc(key).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, false, nil
		}
		return nil, false, err
	}
	if !snap.Exists() {
		return nil, false, nil
	}
	return Document(snap.Data()), true, nil
}

func (f *firestoreBackend) put(ctx context.Context, collection, key string, doc Document) error {
	_, err := f.client.Collection(collection).Doc(key).Set(ctx, map[string]any(doc))
	return err
}

func (f *firestoreBackend) list(ctx context.Context, collection string, q listQuery) ([]Document, error) {
	query := f.client.Collection(collection).Query
	if q.arrayField != "" {
		query = query.Where(q.arrayField, "array-contains", q.arrayValue)
	}
	if q.orderByDate {
		dir := firestore.Asc
		if q.desc {
			dir = firestore.Desc
		}
		query = query.OrderBy(fieldDate, dir)
	}
	if q.limit > 0 {
		query = query.Limit(q.limit)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var docs []Document
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		doc := Document(snap.Data())
		if _, ok := doc[fieldID]; !ok {
			doc[fieldID] = snap.Ref.ID
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (f *firestoreBackend) close() error {
	return f.client.Close()
}
