package db

import (
	"context"
	"errors"
	"fmt"

	"articles_api/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound возвращается, когда статьи с запрошенным id нет в таблице.
var ErrNotFound = errors.New("article not found")

// PgxPool — подмножество методов *pgxpool.Pool, которыми пользуется Database.
// В тестах его реализует pgxmock.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// Database инкапсулирует пул соединений к PostgreSQL.
type Database struct {
	Pool PgxPool
}

// NewDB создаёт новый пул соединений по connString и возвращает Database.
func NewDB(ctx context.Context, connString string) (*Database, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}
	return &Database{Pool: pool}, nil
}

// Close закрывает пул соединений.
func (db *Database) Close() {
	db.Pool.Close()
}

// Ping проверяет доступность базы.
func (db *Database) Ping(ctx context.Context) error {
	return db.Pool.Ping(ctx)
}

// Migrate создаёт таблицу articles, если её ещё нет.
func (db *Database) Migrate(ctx context.Context) error {
	_, err := db.Pool.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS articles (
            id SERIAL PRIMARY KEY,
            title TEXT NOT NULL,
            style TEXT NOT NULL,
            content TEXT NOT NULL,
            date_published TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now()
        )
    `)
	if err != nil {
		return fmt.Errorf("migrate articles: %w", err)
	}
	return nil
}

// ListArticles возвращает все статьи, упорядоченные по id.
// При пустой таблице возвращается пустой (не nil) срез.
func (db *Database) ListArticles(ctx context.Context) ([]models.Article, error) {
	rows, err := db.Pool.Query(ctx, `
        SELECT id, title, style, content, date_published
        FROM articles
        ORDER BY id
    `)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	defer rows.Close()

	articles := []models.Article{}
	for rows.Next() {
		var a models.Article
		if err := rows.Scan(&a.ID, &a.Title, &a.Style, &a.Content, &a.DatePublished); err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	return articles, nil
}

// GetArticle возвращает статью по id или ErrNotFound.
func (db *Database) GetArticle(ctx context.Context, id int) (models.Article, error) {
	var a models.Article
	err := db.Pool.QueryRow(ctx, `
        SELECT id, title, style, content, date_published
        FROM articles
        WHERE id = $1
    `, id).Scan(&a.ID, &a.Title, &a.Style, &a.Content, &a.DatePublished)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Article{}, ErrNotFound
	}
	if err != nil {
		return models.Article{}, fmt.Errorf("get article %d: %w", id, err)
	}
	return a, nil
}

// InsertArticle сохраняет статью. id и date_published назначает база,
// значения этих полей во входной структуре игнорируются.
func (db *Database) InsertArticle(ctx context.Context, draft models.Article) (models.Article, error) {
	var a models.Article
	err := db.Pool.QueryRow(ctx, `
        INSERT INTO articles (title, style, content)
        VALUES ($1, $2, $3)
        RETURNING id, title, style, content, date_published
    `, draft.Title, draft.Style, draft.Content).Scan(&a.ID, &a.Title, &a.Style, &a.Content, &a.DatePublished)
	if err != nil {
		return models.Article{}, fmt.Errorf("insert article: %w", err)
	}
	return a, nil
}

// DeleteArticle удаляет статью по id. Если строки нет — ErrNotFound.
func (db *Database) DeleteArticle(ctx context.Context, id int) error {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete article %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateArticle применяет к статье только заданные поля патча.
// NULL-параметр оставляет колонку без изменений; id и date_published не трогаются.
func (db *Database) UpdateArticle(ctx context.Context, id int, patch models.Patch) error {
	tag, err := db.Pool.Exec(ctx, `
        UPDATE articles
        SET title = COALESCE($2, title),
            style = COALESCE($3, style),
            content = COALESCE($4, content)
        WHERE id = $1
    `, id, patch.Title, patch.Style, patch.Content)
	if err != nil {
		return fmt.Errorf("update article %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
