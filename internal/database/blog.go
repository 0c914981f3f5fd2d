package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"estatehub/internal/models"
)

const blogColumns = `id, title, slug, content, author_id, is_published, published_date, created_at`

func (db *DB) CreateBlogPost(ctx context.Context, post *models.BlogPost) error {
	query := `INSERT INTO blog_posts (title, slug, content, author_id, is_published, published_date, created_at)
              VALUES (?, ?, ?, ?, ?, ?, ?)`
	now := time.Now().UTC()
	result, err := db.ExecContext(ctx, query,
		post.Title, post.Slug, post.Content, post.AuthorID, post.IsPublished, post.PublishedDate, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create blog post: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	post.ID = id
	post.CreatedAt = now
	return nil
}

func (db *DB) GetBlogPost(ctx context.Context, id int64) (*models.BlogPost, error) {
	post, err := scanBlogPost(db.QueryRowContext(ctx, `SELECT `+blogColumns+` FROM blog_posts WHERE id = ?`, id))
	if err != nil {
		return nil, notFound(err, "blog post", id)
	}
	return post, nil
}

func (db *DB) UpdateBlogPost(ctx context.Context, post *models.BlogPost) error {
	query := `UPDATE blog_posts SET title = ?, content = ?, is_published = ?, published_date = ? WHERE id = ?`
	result, err := db.ExecContext(ctx, query, post.Title, post.Content, post.IsPublished, post.PublishedDate, post.ID)
	if err != nil {
		return fmt.Errorf("failed to update blog post: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return notFound(sql.ErrNoRows, "blog post", post.ID)
	}
	return nil
}

func (db *DB) ListBlogPosts(ctx context.Context, publishedOnly bool) ([]*models.BlogPost, error) {
	query := `SELECT ` + blogColumns + ` FROM blog_posts`
	if publishedOnly {
		query += ` WHERE is_published = 1 ORDER BY published_date DESC, id DESC`
	} else {
		query += ` ORDER BY created_at DESC, id DESC`
	}

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list blog posts: %w", err)
	}
	defer rows.Close()

	var posts []*models.BlogPost
	for rows.Next() {
		p, err := scanBlogPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan blog post: %w", err)
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func scanBlogPost(row rowScanner) (*models.BlogPost, error) {
	var p models.BlogPost
	err := row.Scan(&p.ID, &p.Title, &p.Slug, &p.Content, &p.AuthorID, &p.IsPublished, &p.PublishedDate, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
