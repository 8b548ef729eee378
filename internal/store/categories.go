package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"taskdeck/internal/model"
	"taskdeck/internal/validate"
)

// seedCategories inserts the default categories once per database. Deleting
// them later does not bring them back.
func (s *Store) seedCategories(ctx context.Context) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var v string
		err := tx.QueryRowContext(ctx, `SELECT v FROM meta WHERE k = ?`, metaSeededKV).Scan(&v)
		if err == nil {
			return nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return storageErr("seed categories", err)
		}
		for _, c := range model.DefaultCategories(s.stamp()) {
			if err := insertCategory(ctx, tx, c); err != nil {
				return err
			}
		}
		_, err = tx.ExecContext(ctx, `INSERT INTO meta(k, v) VALUES(?, ?)`, metaSeededKV, "1")
		return storageErr("seed categories", err)
	})
}

func (s *Store) GetCategories(ctx context.Context) ([]model.Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT json FROM categories ORDER BY seq`)
	if err != nil {
		return nil, storageErr("get categories", err)
	}
	defer rows.Close()
	out := []model.Category{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, storageErr("scan category", err)
		}
		var c model.Category
		if err := json.Unmarshal([]byte(raw), &c); err != nil {
			return nil, storageErr("decode category", err)
		}
		out = append(out, c)
	}
	return out, storageErr("get categories", rows.Err())
}

func (s *Store) CreateCategory(ctx context.Context, in model.CategoryInput) (model.Category, error) {
	if err := validate.CategoryInput(in); err != nil {
		return model.Category{}, err
	}
	id, err := newRandomID("cat")
	if err != nil {
		return model.Category{}, err
	}
	c := model.Category{ID: id, Name: in.Name, Color: in.Color, Icon: in.Icon, CreatedAt: s.stamp()}
	if err := s.withTx(ctx, func(tx *sql.Tx) error { return insertCategory(ctx, tx, c) }); err != nil {
		return model.Category{}, err
	}
	return c, nil
}

func (s *Store) UpdateCategory(ctx context.Context, id string, patch model.CategoryPatch) (*model.Category, error) {
	if err := validate.CategoryPatch(patch); err != nil {
		return nil, err
	}
	var out *model.Category
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var raw string
		err := tx.QueryRowContext(ctx, `SELECT json FROM categories WHERE id = ?`, id).Scan(&raw)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return storageErr("load category", err)
		}
		var c model.Category
		if err := json.Unmarshal([]byte(raw), &c); err != nil {
			return storageErr("decode category", err)
		}
		c = patch.Apply(c)
		b, err := json.Marshal(c)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `UPDATE categories SET json = ? WHERE id = ?`, string(b), id); err != nil {
			return storageErr("save category", err)
		}
		out = &c
		return nil
	})
	return out, err
}

// DeleteCategory does not touch tasks that reference id.
func (s *Store) DeleteCategory(ctx context.Context, id string) (bool, error) {
	var n int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
		if err != nil {
			return storageErr("delete category", err)
		}
		n, _ = res.RowsAffected()
		return nil
	})
	return n > 0, err
}

func insertCategory(ctx context.Context, tx *sql.Tx, c model.Category) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `INSERT INTO categories(id, json) VALUES(?, ?)`, c.ID, string(raw))
	return storageErr("insert category", err)
}
