package domain

import "time"

// Comment is a stored discussion message on an article. The realtime layer
// reads its fields to build a message_posted event after persistence; it
// never mutates one.
type Comment struct {
	ID        int64     `db:"id"`
	ArticleID int64     `db:"article_id"`
	AuthorID  int64     `db:"author_id"`
	Content   string    `db:"content"`
	CreatedAt time.Time `db:"created_at"`
}
