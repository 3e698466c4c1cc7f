package store

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/datastore"
)

const kind = "Game"

// Datastore keeps records in Google Cloud Datastore, one entity per game
// keyed by the game id.
type Datastore struct {
	client *datastore.Client
}

// NewDatastore connects to the given project. DATASTORE_EMULATOR_HOST is
// honoured by the client library.
func NewDatastore(ctx context.Context, projectID string) (*Datastore, error) {
	client, err := datastore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("datastore client: %w", err)
	}
	return &Datastore{client: client}, nil
}

func (d *Datastore) Save(ctx context.Context, rec Record) error {
	if _, err := d.client.Put(ctx, datastore.NameKey(kind, rec.ID, nil), &rec); err != nil {
		return fmt.Errorf("save game %s: %w", rec.ID, err)
	}
	return nil
}

func (d *Datastore) Load(ctx context.Context, id string) (Record, error) {
	var rec Record
	err := d.client.Get(ctx, datastore.NameKey(kind, id, nil), &rec)
	if errors.Is(err, datastore.ErrNoSuchEntity) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("load game %s: %w", id, err)
	}
	rec.ID = id
	return rec, nil
}

func (d *Datastore) Close() error { return d.client.Close() }
