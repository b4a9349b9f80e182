package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// blobRepo implements BlobRepo on the blobs table.
type blobRepo struct {
	db      *sql.DB
	dialect string
}

func (r *blobRepo) Load(ctx context.Context, key string) ([]byte, bool, error) {
	b := entsql.Dialect(r.dialect)
	query, args := b.Select("data").
		From(b.Table(tableBlobs)).
		Where(entsql.EQ("blob_key", key)).
		Query()

	var data []byte
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load blob %q: %w", key, err)
	}
	return data, true, nil
}

func (r *blobRepo) Save(ctx context.Context, key string, data []byte) error {
	if data == nil {
		data = []byte{}
	}
	query, args := entsql.Dialect(r.dialect).
		Insert(tableBlobs).
		Columns("blob_key", "data", "updated_ms").
		Values(key, data, time.Now().UnixMilli()).
		OnConflict(
			entsql.ConflictColumns("blob_key"),
			entsql.ResolveWithNewValues(),
		).
		Query()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save blob %q: %w", key, err)
	}
	return nil
}

func (r *blobRepo) Delete(ctx context.Context, key string) error {
	query, args := entsql.Dialect(r.dialect).
		Delete(tableBlobs).
		Where(entsql.EQ("blob_key", key)).
		Query()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete blob %q: %w", key, err)
	}
	return nil
}
