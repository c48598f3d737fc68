package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"newsiq/internal/article"
	"newsiq/internal/category"
)

// Error definitions
var (
	ErrNotFound     = errors.New("record not found")
	ErrInvalidInput = errors.New("invalid input")
)

// idPrefix marks ids of articles served from this store.
const idPrefix = "custom-"

var articleColumns = []string{
	"id", "title", "description", "published_at", "source_name", "source_id",
	"category", "sentiment", "url", "image", "author", "content",
}

// allCategories are the selections meaning "no category filter".
func allCategories(c string) bool {
	switch strings.ToLower(strings.TrimSpace(c)) {
	case "", "all", "all news":
		return true
	}
	return false
}

// Articles lists stored articles for cat, newest first. Category matching is
// case-insensitive; "all" and "All News" match everything.
func (db *DB) Articles(ctx context.Context, cat string, limit int) ([]article.Article, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", ErrInvalidInput)
	}

	q := sq.Select(articleColumns...).
		From("articles").
		OrderBy("published_at DESC", "id ASC").
		Limit(uint64(limit))
	if !allCategories(cat) {
		q = q.Where(sq.Expr("category = ? COLLATE NOCASE", strings.TrimSpace(cat)))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query articles: %w", err)
	}
	defer rows.Close()

	articles := make([]article.Article, 0, limit)
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return articles, nil
}

// GetArticle loads one article by its store id ("custom-<n>").
func (db *DB) GetArticle(ctx context.Context, id string) (article.Article, error) {
	n, err := strconv.ParseInt(strings.TrimPrefix(id, idPrefix), 10, 64)
	if err != nil {
		return article.Article{}, fmt.Errorf("%w: bad article id %q", ErrInvalidInput, id)
	}

	query, args, err := sq.Select(articleColumns...).From("articles").Where(sq.Eq{"id": n}).ToSql()
	if err != nil {
		return article.Article{}, err
	}

	a, err := scanArticle(db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return article.Article{}, ErrNotFound
	}
	return a, err
}

// InsertArticle stores a and returns its store id. Category and sentiment are
// normalized so reads always honour the canonical sets.
func (db *DB) InsertArticle(ctx context.Context, a article.Article) (string, error) {
	if strings.TrimSpace(a.Title) == "" {
		return "", fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if strings.TrimSpace(a.Source.Name) == "" {
		return "", fmt.Errorf("%w: source name is required", ErrInvalidInput)
	}
	published := a.PublishedAt
	if published.IsZero() {
		published = time.Now()
	}

	query, args, err := sq.Insert("articles").
		Columns(articleColumns[1:]...).
		Values(
			strings.TrimSpace(a.Title),
			a.Description,
			published.UTC(),
			a.Source.Name,
			a.Source.ID,
			category.Normalize(a.Category),
			string(article.ParseSentiment(string(a.Sentiment))),
			a.URL,
			nullable(a.Image),
			nullable(a.Author),
			nullable(a.Content),
		).ToSql()
	if err != nil {
		return "", err
	}

	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return "", fmt.Errorf("insert article: %w", err)
	}
	n, err := res.LastInsertId()
	if err != nil {
		return "", err
	}
	return idPrefix + strconv.FormatInt(n, 10), nil
}

// CountArticles returns how many articles are stored.
func (db *DB) CountArticles(ctx context.Context) (int, error) {
	var n int
	err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM articles").Scan(&n)
	return n, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row rowScanner) (article.Article, error) {
	var (
		a                      article.Article
		id                     int64
		sentiment, cat         string
		image, author, content sql.NullString
	)
	err := row.Scan(&id, &a.Title, &a.Description, &a.PublishedAt, &a.Source.Name, &a.Source.ID,
		&cat, &sentiment, &a.URL, &image, &author, &content)
	if err != nil {
		return article.Article{}, err
	}

	a.ID = idPrefix + strconv.FormatInt(id, 10)
	a.PublishedAt = a.PublishedAt.UTC()
	a.Category = category.Normalize(cat)
	a.Sentiment = article.ParseSentiment(sentiment)
	a.Image = image.String
	a.Author = author.String
	a.Content = content.String
	a.SourceType = article.SourceInternal
	if a.Source.ID == "" {
		a.Source.ID = slug(a.Source.Name)
	}
	return a, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func slug(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), "-")
}
