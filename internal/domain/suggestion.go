package domain

import "time"

type Suggestion struct {
	ID          int64     `db:"id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	AuthorID    int64     `db:"author_id"`
	Votes       int       `db:"votes"`
	CreatedAt   time.Time `db:"created_at"`
}
