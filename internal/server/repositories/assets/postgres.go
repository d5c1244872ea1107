package assets

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/assetvault/internal/dbx"
	"github.com/dmitrijs2005/assetvault/internal/server/models"
	"github.com/dmitrijs2005/assetvault/internal/timex"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const assetColumns = 7

// maxInsertRows keeps one INSERT well below the PostgreSQL limit of 65535
// bind parameters.
var maxInsertRows = 1000

// InsertMany writes all assets or none. Batches larger than maxInsertRows
// are split into several statements sharing one transaction.
func (r *PostgresRepository) InsertMany(ctx context.Context, assets []*models.Asset) ([]string, error) {
	if len(assets) == 0 {
		return []string{}, nil
	}

	ids := make([]string, 0, len(assets))
	for _, a := range assets {
		id := a.ID
		if id == "" {
			id = uuid.NewString()
		}
		ids = append(ids, id)
	}

	chunks := dbx.Chunks(len(assets), maxInsertRows)
	var err error
	if len(chunks) == 1 {
		err = insertChunk(ctx, r.db, assets, ids)
	} else {
		err = dbx.InTx(ctx, r.db, func(ctx context.Context, tx dbx.DBTX) error {
			for _, c := range chunks {
				if err := insertChunk(ctx, tx, assets[c[0]:c[1]], ids[c[0]:c[1]]); err != nil {
					return err
				}
			}
			return nil
		})
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	for i, a := range assets {
		a.ID = ids[i]
	}
	return ids, nil
}

func insertChunk(ctx context.Context, db dbx.DBTX, assets []*models.Asset, ids []string) error {
	var sb strings.Builder
	sb.WriteString(`INSERT INTO assets (id, email, filename, url, public_id, resource_type, created_at) VALUES `)

	args := make([]any, 0, len(assets)*assetColumns)
	for i, a := range assets {
		if i > 0 {
			sb.WriteString(", ")
		}
		n := i * assetColumns
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d, $%d, $%d, $%d)", n+1, n+2, n+3, n+4, n+5, n+6, n+7)
		args = append(args, ids[i], a.Email, a.FileName, a.URL, a.PublicID, a.ResourceType, timex.FormatStored(a.CreatedAt))
	}

	_, err := db.ExecContext(ctx, sb.String(), args...)
	return err
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, owner string, skip, limit int64) ([]*models.Asset, error) {
	query :=
		`SELECT id, email, filename, url, public_id, resource_type, created_at FROM assets
		 WHERE email = $1
		 ORDER BY created_at DESC, id DESC
		 OFFSET $2`
	args := []any{owner, skip}
	if limit > 0 {
		query += ` LIMIT $3`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []*models.Asset{}
	for rows.Next() {
		a := &models.Asset{}
		var createdAt string
		if err := rows.Scan(&a.ID, &a.Email, &a.FileName, &a.URL, &a.PublicID, &a.ResourceType, &createdAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		if a.CreatedAt, err = timex.ParseStored(createdAt); err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

// DeleteByID reports zero for ids that are not UUIDs, since no row can match.
func (r *PostgresRepository) DeleteByID(ctx context.Context, owner, id string) (int64, error) {
	if _, err := uuid.Parse(id); err != nil {
		return 0, nil
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM assets WHERE id = $1 AND email = $2`, id, owner)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
